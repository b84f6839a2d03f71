package parser

import (
	"strconv"

	"github.com/delbato/pragmatic-script/ast"
	"github.com/delbato/pragmatic-script/token"
)

func (p *Parser) parseExpression(precedence int) ast.Expr {
	if !p.enterExpr() {
		return nil
	}
	defer p.leaveExpr()

	prefix, ok := p.prefixParseFns[p.curToken.Type]
	if !ok {
		p.failAt(p.curToken, "unexpected token %q in expression", p.curToken.Literal)
		return nil
	}
	left := prefix()
	if p.err != nil {
		return nil
	}
	for !p.peekTokenIs(token.SEMICOLON) && precedence < p.peekPrecedence() {
		infix, ok := p.infixParseFns[p.peekToken.Type]
		if !ok {
			return left
		}
		p.nextToken()
		left = infix(left)
		if p.err != nil {
			return nil
		}
	}
	return left
}

func (p *Parser) parseIdent() ast.Expr {
	ident := p.parseIdentHere()
	if p.structLitOK && p.peekTokenIs(token.LBRACE) {
		return p.parseStructLit(ident)
	}
	return ident
}

func (p *Parser) parseInt() ast.Expr {
	value, err := strconv.ParseInt(p.curToken.Literal, 0, 64)
	if err != nil {
		p.failAt(p.curToken, "invalid integer literal %q", p.curToken.Literal)
		return nil
	}
	return &ast.Int{
		ValuePos: p.curToken.StartPosition,
		Literal:  p.curToken.Literal,
		Value:    value,
	}
}

func (p *Parser) parseFloat() ast.Expr {
	value, err := strconv.ParseFloat(p.curToken.Literal, 64)
	if err != nil {
		p.failAt(p.curToken, "invalid float literal %q", p.curToken.Literal)
		return nil
	}
	return &ast.Float{
		ValuePos: p.curToken.StartPosition,
		Literal:  p.curToken.Literal,
		Value:    value,
	}
}

func (p *Parser) parseString() ast.Expr {
	return &ast.String{
		ValuePos: p.curToken.StartPosition,
		Value:    p.curToken.Literal,
	}
}

func (p *Parser) parseBool() ast.Expr {
	return &ast.Bool{
		ValuePos: p.curToken.StartPosition,
		Value:    p.curTokenIs(token.TRUE),
	}
}

func (p *Parser) parsePrefixExpr() ast.Expr {
	expr := &ast.Prefix{
		OpPos: p.curToken.StartPosition,
		Op:    p.curToken.Literal,
	}
	p.nextToken()
	expr.X = p.parseExpression(PREFIX)
	if p.err != nil {
		return nil
	}
	return expr
}

func (p *Parser) parseInfixExpr(left ast.Expr) ast.Expr {
	expr := &ast.Infix{
		X:     left,
		OpPos: p.curToken.StartPosition,
		Op:    p.curToken.Literal,
	}
	precedence := p.curPrecedence()
	p.nextToken()
	expr.Y = p.parseExpression(precedence)
	if p.err != nil {
		return nil
	}
	return expr
}

// parseGroupedExpr restores struct literals inside parentheses, so
// `if (Point { x: 1; }).x < 2 { ... }` parses.
func (p *Parser) parseGroupedExpr() ast.Expr {
	saved := p.structLitOK
	p.structLitOK = true
	p.nextToken()
	expr := p.parseExpression(LOWEST)
	p.structLitOK = saved
	if p.err != nil {
		return nil
	}
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	return expr
}

// parseAssign parses `target = value` where target must be a variable
// or a field access.
func (p *Parser) parseAssign(left ast.Expr) ast.Expr {
	switch left.(type) {
	case *ast.Ident, *ast.GetField:
	default:
		p.failAt(p.curToken, "invalid assignment target")
		return nil
	}
	expr := &ast.Assign{X: left, OpPos: p.curToken.StartPosition}
	p.nextToken()
	// Right associative: a = b = c assigns c to b first
	expr.Value = p.parseExpression(ASSIGN - 1)
	if p.err != nil {
		return nil
	}
	return expr
}

func (p *Parser) parseCall(fn ast.Expr) ast.Expr {
	switch fn.(type) {
	case *ast.Ident, *ast.GetField:
	default:
		p.failAt(p.curToken, "expression is not callable")
		return nil
	}
	call := &ast.Call{Fun: fn, Lparen: p.curToken.StartPosition}
	saved := p.structLitOK
	p.structLitOK = true
	for !p.peekTokenIs(token.RPAREN) {
		if len(call.Args) > 0 {
			if !p.expectPeek(token.COMMA) {
				return nil
			}
		}
		p.nextToken()
		arg := p.parseExpression(LOWEST)
		if p.err != nil {
			return nil
		}
		call.Args = append(call.Args, arg)
	}
	p.structLitOK = saved
	p.nextToken()
	call.Rparen = p.curToken.StartPosition
	return call
}

func (p *Parser) parseGetField(left ast.Expr) ast.Expr {
	expr := &ast.GetField{X: left}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	expr.Name = p.parseIdentHere()
	return expr
}

// parseStructLit parses `TypeName { field: value, ... }`. The current
// token is the type name and the peek token is the opening brace.
// Fields are separated by commas or, matching container declarations,
// semicolons; the separator is optional before the closing brace.
func (p *Parser) parseStructLit(typeName *ast.Ident) ast.Expr {
	lit := &ast.StructLit{TypeName: typeName}
	p.nextToken()
	lit.Lbrace = p.curToken.StartPosition
	saved := p.structLitOK
	p.structLitOK = true
	for !p.peekTokenIs(token.RBRACE) {
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		field := &ast.FieldInit{Name: p.parseIdentHere()}
		if !p.expectPeek(token.COLON) {
			return nil
		}
		p.nextToken()
		field.Value = p.parseExpression(LOWEST)
		if p.err != nil {
			return nil
		}
		lit.Fields = append(lit.Fields, field)
		switch {
		case p.peekTokenIs(token.COMMA), p.peekTokenIs(token.SEMICOLON):
			p.nextToken()
		case p.peekTokenIs(token.RBRACE):
		default:
			p.failAt(p.peekToken, `expected "," or "}", found %q`,
				p.peekToken.Literal)
			return nil
		}
	}
	p.structLitOK = saved
	p.nextToken()
	lit.Rbrace = p.curToken.StartPosition
	return lit
}
