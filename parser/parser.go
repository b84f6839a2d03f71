// Package parser is used to parse PragmaticScript source code into an
// abstract syntax tree. It is a Pratt style recursive descent parser.
// Parsing stops at the first error, which is returned as a structured
// error carrying the offending position and source line.
package parser

import (
	"context"
	"fmt"

	"github.com/delbato/pragmatic-script/ast"
	"github.com/delbato/pragmatic-script/errz"
	"github.com/delbato/pragmatic-script/lexer"
	"github.com/delbato/pragmatic-script/token"
)

const defaultMaxDepth = 500

type (
	prefixParseFn func() ast.Expr
	infixParseFn  func(ast.Expr) ast.Expr
)

// Parse the given source code and return the corresponding AST, or an
// error if the source is malformed.
func Parse(ctx context.Context, input string, options ...Option) (*ast.Program, error) {
	p := New(input, options...)
	return p.Parse(ctx)
}

// Parser transforms a stream of tokens from the lexer into an AST.
type Parser struct {
	l *lexer.Lexer

	ctx context.Context

	curToken  token.Token
	peekToken token.Token

	// first error encountered; once set, parsing unwinds
	err error

	prefixParseFns map[token.Type]prefixParseFn
	infixParseFns  map[token.Type]infixParseFn

	// structLitOK is false while parsing the condition of an if, while
	// or for header, where `ident {` must start the statement body
	// rather than a struct literal. Parentheses restore it.
	structLitOK bool

	depth    int
	maxDepth int
}

// New returns a Parser for the given source code.
func New(input string, options ...Option) *Parser {
	p := &Parser{
		l:           lexer.New(input),
		structLitOK: true,
		maxDepth:    defaultMaxDepth,
	}
	for _, opt := range options {
		opt(p)
	}
	p.prefixParseFns = map[token.Type]prefixParseFn{
		token.IDENT:  p.parseIdent,
		token.INT:    p.parseInt,
		token.FLOAT:  p.parseFloat,
		token.STRING: p.parseString,
		token.TRUE:   p.parseBool,
		token.FALSE:  p.parseBool,
		token.BANG:   p.parsePrefixExpr,
		token.MINUS:  p.parsePrefixExpr,
		token.LPAREN: p.parseGroupedExpr,
	}
	p.infixParseFns = map[token.Type]infixParseFn{
		token.PLUS:      p.parseInfixExpr,
		token.MINUS:     p.parseInfixExpr,
		token.SLASH:     p.parseInfixExpr,
		token.ASTERISK:  p.parseInfixExpr,
		token.EQ:        p.parseInfixExpr,
		token.NOT_EQ:    p.parseInfixExpr,
		token.LT:        p.parseInfixExpr,
		token.LT_EQUALS: p.parseInfixExpr,
		token.GT:        p.parseInfixExpr,
		token.GT_EQUALS: p.parseInfixExpr,
		token.ASSIGN:    p.parseAssign,
		token.LPAREN:    p.parseCall,
		token.PERIOD:    p.parseGetField,
	}
	return p
}

// Parse runs the parser over the entire input and returns the program.
func (p *Parser) Parse(ctx context.Context) (*ast.Program, error) {
	p.ctx = ctx
	// Prime curToken and peekToken
	p.nextToken()
	p.nextToken()
	program := &ast.Program{}
	for !p.curTokenIs(token.EOF) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		decl := p.parseDecl()
		if p.err != nil {
			return nil, p.err
		}
		program.Decls = append(program.Decls, decl)
		p.nextToken()
	}
	return program, nil
}

func (p *Parser) nextToken() {
	if p.err != nil {
		return
	}
	p.curToken = p.peekToken
	tok, err := p.l.Next()
	if err != nil {
		p.err = err
		p.peekToken = token.Token{Type: token.EOF}
		return
	}
	p.peekToken = tok
}

func (p *Parser) curTokenIs(t token.Type) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t token.Type) bool {
	return p.peekToken.Type == t
}

// expectPeek advances if the next token has the given type and records
// an error otherwise.
func (p *Parser) expectPeek(t token.Type) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

func (p *Parser) curPrecedence() int {
	if prec, ok := precedences[p.curToken.Type]; ok {
		return prec
	}
	return LOWEST
}

func (p *Parser) peekPrecedence() int {
	if prec, ok := precedences[p.peekToken.Type]; ok {
		return prec
	}
	return LOWEST
}

func (p *Parser) enterExpr() bool {
	p.depth++
	if p.depth > p.maxDepth {
		p.failAt(p.curToken, "expression nesting too deep")
		return false
	}
	return true
}

func (p *Parser) leaveExpr() {
	p.depth--
}

// fail records the first parse error. Later errors are discarded since
// parsing unwinds immediately.
func (p *Parser) failAt(tok token.Token, format string, args ...interface{}) {
	if p.err != nil {
		return
	}
	pos := tok.StartPosition
	p.err = errz.Newf(errz.ErrParse, errz.SourceLocation{
		Filename: p.l.Filename(),
		Line:     pos.LineNumber(),
		Column:   pos.ColumnNumber(),
		Source:   p.l.GetLineText(tok),
	}, format, args...)
}

func (p *Parser) peekError(expected token.Type) {
	p.failAt(p.peekToken, "expected %s, found %q",
		describeToken(expected), p.peekToken.Literal)
}

func describeToken(t token.Type) string {
	switch t {
	case token.IDENT:
		return "an identifier"
	case token.SEMICOLON:
		return `";"`
	case token.COLON:
		return `":"`
	case token.LBRACE:
		return `"{"`
	case token.RBRACE:
		return `"}"`
	case token.LPAREN:
		return `"("`
	case token.RPAREN:
		return `")"`
	case token.ASSIGN:
		return `"="`
	case token.IN:
		return `"in"`
	default:
		return fmt.Sprintf("%q", string(t))
	}
}

// ---------------------------------------------------------------------------
// Declarations

func (p *Parser) parseDecl() ast.Decl {
	switch p.curToken.Type {
	case token.MODULE:
		return p.parseModule()
	case token.CONTAINER:
		return p.parseContainer()
	case token.IMPL:
		return p.parseImpl()
	case token.FUNCTION:
		return p.parseFunction()
	case token.IMPORT:
		return p.parseImport()
	default:
		p.failAt(p.curToken, "expected a declaration, found %q", p.curToken.Literal)
		return nil
	}
}

// parseModule parses `mod: name { decls }`.
func (p *Parser) parseModule() *ast.Module {
	mod := &ast.Module{ModPos: p.curToken.StartPosition}
	if !p.expectPeek(token.COLON) {
		return nil
	}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	mod.Name = p.parseIdentHere()
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	p.nextToken()
	for !p.curTokenIs(token.RBRACE) {
		if p.curTokenIs(token.EOF) {
			p.failAt(p.curToken, "unterminated module body")
			return nil
		}
		decl := p.parseDecl()
		if p.err != nil {
			return nil
		}
		mod.Decls = append(mod.Decls, decl)
		p.nextToken()
	}
	mod.Rbrace = p.curToken.StartPosition
	return mod
}

// parseContainer parses `cont: Name { field: type; ... }`.
func (p *Parser) parseContainer() *ast.Container {
	cont := &ast.Container{ContPos: p.curToken.StartPosition}
	if !p.expectPeek(token.COLON) {
		return nil
	}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	cont.Name = p.parseIdentHere()
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	for !p.peekTokenIs(token.RBRACE) {
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		field := &ast.Field{Name: p.parseIdentHere()}
		if !p.expectPeek(token.COLON) {
			return nil
		}
		field.Type = p.parseTypeRef()
		if p.err != nil {
			return nil
		}
		if !p.expectPeek(token.SEMICOLON) {
			return nil
		}
		cont.Fields = append(cont.Fields, field)
	}
	p.nextToken()
	cont.Rbrace = p.curToken.StartPosition
	return cont
}

// parseImpl parses `impl: Name { fn... }`.
func (p *Parser) parseImpl() *ast.Impl {
	impl := &ast.Impl{ImplPos: p.curToken.StartPosition}
	if !p.expectPeek(token.COLON) {
		return nil
	}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	impl.Name = p.parseIdentHere()
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	p.nextToken()
	for !p.curTokenIs(token.RBRACE) {
		if !p.curTokenIs(token.FUNCTION) {
			p.failAt(p.curToken, "expected a function declaration in impl block, found %q",
				p.curToken.Literal)
			return nil
		}
		fn := p.parseFunction()
		if p.err != nil {
			return nil
		}
		impl.Funcs = append(impl.Funcs, fn)
		p.nextToken()
	}
	impl.Rbrace = p.curToken.StartPosition
	return impl
}

// parseFunction parses `fn: name(a: int, b: float) ~ int { body }`.
// The return type annotation is optional and defaults to unit.
func (p *Parser) parseFunction() *ast.Function {
	fn := &ast.Function{FnPos: p.curToken.StartPosition}
	if !p.expectPeek(token.COLON) {
		return nil
	}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	fn.Name = p.parseIdentHere()
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	fn.Params = p.parseParams()
	if p.err != nil {
		return nil
	}
	if p.peekTokenIs(token.TILDE) {
		p.nextToken()
		fn.Return = p.parseTypeRef()
		if p.err != nil {
			return nil
		}
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	fn.Body = p.parseBlock()
	return fn
}

func (p *Parser) parseParams() []*ast.Param {
	var params []*ast.Param
	for !p.peekTokenIs(token.RPAREN) {
		if len(params) > 0 {
			if !p.expectPeek(token.COMMA) {
				return nil
			}
		}
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		param := &ast.Param{Name: p.parseIdentHere()}
		if !p.expectPeek(token.COLON) {
			return nil
		}
		param.Type = p.parseTypeRef()
		if p.err != nil {
			return nil
		}
		params = append(params, param)
	}
	p.nextToken()
	return params
}

// parseImport parses `import path::to::symbol = Alias;` where the alias
// is optional and defaults to the last path segment.
func (p *Parser) parseImport() *ast.Import {
	imp := &ast.Import{ImportPos: p.curToken.StartPosition}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	imp.Path = append(imp.Path, p.parseIdentHere())
	for p.peekTokenIs(token.DOUBLECOLON) {
		p.nextToken()
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		imp.Path = append(imp.Path, p.parseIdentHere())
	}
	if p.peekTokenIs(token.ASSIGN) {
		p.nextToken()
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		imp.Alias = p.parseIdentHere()
	}
	if !p.expectPeek(token.SEMICOLON) {
		return nil
	}
	imp.Semicolon = p.curToken.StartPosition
	return imp
}

// parseTypeRef advances to and parses a type name.
func (p *Parser) parseTypeRef() *ast.TypeRef {
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	return &ast.TypeRef{
		NamePos: p.curToken.StartPosition,
		Name:    p.curToken.Literal,
	}
}

// parseIdentHere builds an Ident node from the current token.
func (p *Parser) parseIdentHere() *ast.Ident {
	return &ast.Ident{
		NamePos: p.curToken.StartPosition,
		Name:    p.curToken.Literal,
	}
}
