// Package ast defines the abstract syntax tree representation of pgs code.
package ast

import "github.com/delbato/pragmatic-script/token"

// Node represents a portion of the syntax tree. All nodes have position
// information indicating where they appear in the source code.
type Node interface {
	// Pos returns the position of the first character belonging to the node.
	Pos() token.Position

	// End returns the position of the first character immediately after the node.
	End() token.Position

	// String returns a human friendly representation of the Node. This should
	// be similar to the original source code, but not necessarily identical.
	String() string
}

// Decl represents a top-level item: a module, container, impl block,
// function, or import.
type Decl interface {
	Node
	declNode()
}

// Stmt represents a statement node. Statements cause side effects but
// do not evaluate to a value.
type Stmt interface {
	Node
	stmtNode()
}

// Expr represents an expression node. Expressions evaluate to a value
// and may be embedded within other expressions.
type Expr interface {
	Node
	exprNode()
}

// Program is the root node of a parsed pgs source file. Its declarations
// form the implicit "root" module.
type Program struct {
	Decls []Decl
}

func (p *Program) Pos() token.Position {
	if len(p.Decls) > 0 {
		return p.Decls[0].Pos()
	}
	return token.NoPos
}

func (p *Program) End() token.Position {
	if n := len(p.Decls); n > 0 {
		return p.Decls[n-1].End()
	}
	return token.NoPos
}

func (p *Program) String() string {
	var out string
	for i, d := range p.Decls {
		if i > 0 {
			out += "\n"
		}
		out += d.String()
	}
	return out
}
