package ast

import (
	"bytes"

	"github.com/delbato/pragmatic-script/token"
)

// Block is a brace-delimited sequence of statements.
type Block struct {
	Lbrace token.Position // position of "{"
	Stmts  []Stmt         // statements in the block
	Rbrace token.Position // position of "}"
}

func (s *Block) stmtNode() {}

func (s *Block) Pos() token.Position { return s.Lbrace }
func (s *Block) End() token.Position { return s.Rbrace.Advance(1) }

func (s *Block) String() string {
	var out bytes.Buffer
	out.WriteString("{ ")
	for _, stmt := range s.Stmts {
		out.WriteString(stmt.String())
		out.WriteString(" ")
	}
	out.WriteString("}")
	return out.String()
}

// Var is a statement that declares a new typed variable with an initial
// value: "var name: type = expr;".
type Var struct {
	VarPos token.Position // position of "var" keyword
	Name   *Ident         // variable name
	Type   *TypeRef       // declared type
	Value  Expr           // initializer expression
}

func (s *Var) stmtNode() {}

func (s *Var) Pos() token.Position { return s.VarPos }
func (s *Var) End() token.Position { return s.Value.End() }

func (s *Var) String() string {
	var out bytes.Buffer
	out.WriteString("var ")
	out.WriteString(s.Name.Name)
	out.WriteString(": ")
	out.WriteString(s.Type.Name)
	out.WriteString(" = ")
	out.WriteString(s.Value.String())
	out.WriteString(";")
	return out.String()
}

// Return is a statement that exits the enclosing function, optionally with
// a value: "return expr;" or "return;".
type Return struct {
	ReturnPos token.Position // position of "return" keyword
	Value     Expr           // returned expression; nil for unit returns
}

func (s *Return) stmtNode() {}

func (s *Return) Pos() token.Position { return s.ReturnPos }
func (s *Return) End() token.Position {
	if s.Value != nil {
		return s.Value.End()
	}
	return s.ReturnPos.Advance(len("return"))
}

func (s *Return) String() string {
	if s.Value == nil {
		return "return;"
	}
	return "return " + s.Value.String() + ";"
}

// If is a conditional statement with an optional else block. There is no
// first-class "else if"; chained conditionals nest an If inside the Else
// block.
type If struct {
	IfPos token.Position // position of "if" keyword
	Cond  Expr           // condition
	Body  *Block         // executed when the condition is true
	Else  *Block         // executed otherwise; may be nil
}

func (s *If) stmtNode() {}

func (s *If) Pos() token.Position { return s.IfPos }
func (s *If) End() token.Position {
	if s.Else != nil {
		return s.Else.End()
	}
	return s.Body.End()
}

func (s *If) String() string {
	var out bytes.Buffer
	out.WriteString("if ")
	out.WriteString(s.Cond.String())
	out.WriteString(" ")
	out.WriteString(s.Body.String())
	if s.Else != nil {
		out.WriteString(" else ")
		out.WriteString(s.Else.String())
	}
	return out.String()
}

// While is a loop that re-checks its condition before each iteration.
type While struct {
	WhilePos token.Position // position of "while" keyword
	Cond     Expr           // loop condition
	Body     *Block         // loop body
}

func (s *While) stmtNode() {}

func (s *While) Pos() token.Position { return s.WhilePos }
func (s *While) End() token.Position { return s.Body.End() }

func (s *While) String() string {
	return "while " + s.Cond.String() + " " + s.Body.String()
}

// Loop is an unconditional loop, exited only via break or return.
type Loop struct {
	LoopPos token.Position // position of "loop" keyword
	Body    *Block         // loop body
}

func (s *Loop) stmtNode() {}

func (s *Loop) Pos() token.Position { return s.LoopPos }
func (s *Loop) End() token.Position { return s.Body.End() }

func (s *Loop) String() string {
	return "loop " + s.Body.String()
}

// For iterates a sequence-valued expression, binding each element to the
// named variable: "for name in expr { ... }".
type For struct {
	ForPos token.Position // position of "for" keyword
	Name   *Ident         // iteration variable
	Iter   Expr           // sequence-valued expression
	Body   *Block         // loop body
}

func (s *For) stmtNode() {}

func (s *For) Pos() token.Position { return s.ForPos }
func (s *For) End() token.Position { return s.Body.End() }

func (s *For) String() string {
	return "for " + s.Name.Name + " in " + s.Iter.String() + " " + s.Body.String()
}

// Break exits the innermost enclosing loop.
type Break struct {
	BreakPos token.Position // position of "break" keyword
}

func (s *Break) stmtNode() {}

func (s *Break) Pos() token.Position { return s.BreakPos }
func (s *Break) End() token.Position { return s.BreakPos.Advance(len("break")) }

func (s *Break) String() string { return "break;" }

// Continue skips to the next iteration of the innermost enclosing loop.
type Continue struct {
	ContinuePos token.Position // position of "continue" keyword
}

func (s *Continue) stmtNode() {}

func (s *Continue) Pos() token.Position { return s.ContinuePos }
func (s *Continue) End() token.Position {
	return s.ContinuePos.Advance(len("continue"))
}

func (s *Continue) String() string { return "continue;" }

// ExprStmt is an expression evaluated for its side effects, such as an
// assignment or a call whose result is discarded.
type ExprStmt struct {
	X Expr // the expression
}

func (s *ExprStmt) stmtNode() {}

func (s *ExprStmt) Pos() token.Position { return s.X.Pos() }
func (s *ExprStmt) End() token.Position { return s.X.End() }

func (s *ExprStmt) String() string { return s.X.String() + ";" }
