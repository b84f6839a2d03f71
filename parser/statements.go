package parser

import (
	"github.com/delbato/pragmatic-script/ast"
	"github.com/delbato/pragmatic-script/token"
)

// parseBlock parses a `{ ... }` block. The current token must be the
// opening brace.
func (p *Parser) parseBlock() *ast.Block {
	block := &ast.Block{Lbrace: p.curToken.StartPosition}
	p.nextToken()
	for !p.curTokenIs(token.RBRACE) {
		if p.curTokenIs(token.EOF) {
			p.failAt(p.curToken, "unterminated block")
			return nil
		}
		stmt := p.parseStatement()
		if p.err != nil {
			return nil
		}
		block.Stmts = append(block.Stmts, stmt)
		p.nextToken()
	}
	block.Rbrace = p.curToken.StartPosition
	return block
}

func (p *Parser) parseStatement() ast.Stmt {
	switch p.curToken.Type {
	case token.VAR:
		return p.parseVar()
	case token.RETURN:
		return p.parseReturn()
	case token.IF:
		return p.parseIf()
	case token.WHILE:
		return p.parseWhile()
	case token.LOOP:
		return p.parseLoop()
	case token.FOR:
		return p.parseFor()
	case token.BREAK:
		return p.parseBreak()
	case token.CONTINUE:
		return p.parseContinue()
	default:
		return p.parseExprStatement()
	}
}

// parseVar parses `var name: type = value;`. Both the type annotation
// and the initializer are mandatory.
func (p *Parser) parseVar() *ast.Var {
	stmt := &ast.Var{VarPos: p.curToken.StartPosition}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Name = p.parseIdentHere()
	if !p.expectPeek(token.COLON) {
		return nil
	}
	stmt.Type = p.parseTypeRef()
	if p.err != nil {
		return nil
	}
	if !p.expectPeek(token.ASSIGN) {
		return nil
	}
	p.nextToken()
	stmt.Value = p.parseExpression(LOWEST)
	if p.err != nil {
		return nil
	}
	if !p.expectPeek(token.SEMICOLON) {
		return nil
	}
	return stmt
}

// parseReturn parses `return;` and `return expr;`.
func (p *Parser) parseReturn() *ast.Return {
	stmt := &ast.Return{ReturnPos: p.curToken.StartPosition}
	if p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
		return stmt
	}
	p.nextToken()
	stmt.Value = p.parseExpression(LOWEST)
	if p.err != nil {
		return nil
	}
	if !p.expectPeek(token.SEMICOLON) {
		return nil
	}
	return stmt
}

func (p *Parser) parseIf() *ast.If {
	stmt := &ast.If{IfPos: p.curToken.StartPosition}
	p.nextToken()
	stmt.Cond = p.parseCondition()
	if p.err != nil {
		return nil
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	stmt.Body = p.parseBlock()
	if p.err != nil {
		return nil
	}
	if p.peekTokenIs(token.ELSE) {
		p.nextToken()
		if !p.expectPeek(token.LBRACE) {
			return nil
		}
		stmt.Else = p.parseBlock()
		if p.err != nil {
			return nil
		}
	}
	return stmt
}

func (p *Parser) parseWhile() *ast.While {
	stmt := &ast.While{WhilePos: p.curToken.StartPosition}
	p.nextToken()
	stmt.Cond = p.parseCondition()
	if p.err != nil {
		return nil
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	stmt.Body = p.parseBlock()
	return stmt
}

func (p *Parser) parseLoop() *ast.Loop {
	stmt := &ast.Loop{LoopPos: p.curToken.StartPosition}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	stmt.Body = p.parseBlock()
	return stmt
}

// parseFor parses `for name in iterable { body }`.
func (p *Parser) parseFor() *ast.For {
	stmt := &ast.For{ForPos: p.curToken.StartPosition}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Name = p.parseIdentHere()
	if !p.expectPeek(token.IN) {
		return nil
	}
	p.nextToken()
	stmt.Iter = p.parseCondition()
	if p.err != nil {
		return nil
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	stmt.Body = p.parseBlock()
	return stmt
}

func (p *Parser) parseBreak() *ast.Break {
	stmt := &ast.Break{BreakPos: p.curToken.StartPosition}
	if !p.expectPeek(token.SEMICOLON) {
		return nil
	}
	return stmt
}

func (p *Parser) parseContinue() *ast.Continue {
	stmt := &ast.Continue{ContinuePos: p.curToken.StartPosition}
	if !p.expectPeek(token.SEMICOLON) {
		return nil
	}
	return stmt
}

func (p *Parser) parseExprStatement() *ast.ExprStmt {
	stmt := &ast.ExprStmt{X: p.parseExpression(LOWEST)}
	if p.err != nil {
		return nil
	}
	if !p.expectPeek(token.SEMICOLON) {
		return nil
	}
	return stmt
}

// parseCondition parses a header expression with struct literals
// suppressed, so that the following `{` is read as the statement body.
func (p *Parser) parseCondition() ast.Expr {
	saved := p.structLitOK
	p.structLitOK = false
	expr := p.parseExpression(LOWEST)
	p.structLitOK = saved
	return expr
}
