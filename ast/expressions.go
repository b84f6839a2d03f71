package ast

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/delbato/pragmatic-script/token"
)

// Ident is an expression node that refers to a symbol by name.
type Ident struct {
	NamePos token.Position // position of identifier
	Name    string         // identifier name
}

func (x *Ident) exprNode() {}

func (x *Ident) Pos() token.Position { return x.NamePos }
func (x *Ident) End() token.Position { return x.NamePos.Advance(len(x.Name)) }

func (x *Ident) String() string { return x.Name }

// Int is an expression node that holds an integer literal.
type Int struct {
	ValuePos token.Position // position of the literal
	Literal  string         // the literal text
	Value    int64          // the parsed value
}

func (x *Int) exprNode() {}

func (x *Int) Pos() token.Position { return x.ValuePos }
func (x *Int) End() token.Position { return x.ValuePos.Advance(len(x.Literal)) }

func (x *Int) String() string { return x.Literal }

// Float is an expression node that holds a floating point literal.
type Float struct {
	ValuePos token.Position // position of the literal
	Literal  string         // the literal text
	Value    float64        // the parsed value
}

func (x *Float) exprNode() {}

func (x *Float) Pos() token.Position { return x.ValuePos }
func (x *Float) End() token.Position { return x.ValuePos.Advance(len(x.Literal)) }

func (x *Float) String() string { return x.Literal }

// String is an expression node that holds a string literal. The Value holds
// the unescaped text.
type String struct {
	ValuePos token.Position // position of the opening quote
	Value    string         // the unescaped string value
}

func (x *String) exprNode() {}

func (x *String) Pos() token.Position { return x.ValuePos }
func (x *String) End() token.Position {
	return x.ValuePos.Advance(len(x.Value) + 2) // include the quotes
}

func (x *String) String() string { return strconv.Quote(x.Value) }

// Bool is an expression node that holds a boolean literal.
type Bool struct {
	ValuePos token.Position // position of "true" or "false"
	Value    bool           // the boolean value
}

func (x *Bool) exprNode() {}

func (x *Bool) Pos() token.Position { return x.ValuePos }
func (x *Bool) End() token.Position {
	if x.Value {
		return x.ValuePos.Advance(len("true"))
	}
	return x.ValuePos.Advance(len("false"))
}

func (x *Bool) String() string { return strconv.FormatBool(x.Value) }

// Prefix is an operator expression where the operator precedes the operand.
// Examples include "!done" and "-x".
type Prefix struct {
	OpPos token.Position // position of operator
	Op    string         // operator: "!" or "-"
	X     Expr           // operand
}

func (x *Prefix) exprNode() {}

func (x *Prefix) Pos() token.Position { return x.OpPos }
func (x *Prefix) End() token.Position { return x.X.End() }

func (x *Prefix) String() string {
	return "(" + x.Op + x.X.String() + ")"
}

// Infix is an operator expression where the operator is between the
// operands. Examples include "x + y" and "5 < 1".
type Infix struct {
	X     Expr           // left operand
	OpPos token.Position // position of operator
	Op    string         // operator: "+", "-", "*", "/", "==", etc.
	Y     Expr           // right operand
}

func (x *Infix) exprNode() {}

func (x *Infix) Pos() token.Position { return x.X.Pos() }
func (x *Infix) End() token.Position { return x.Y.End() }

func (x *Infix) String() string {
	return "(" + x.X.String() + " " + x.Op + " " + x.Y.String() + ")"
}

// Call is a function or method invocation. Fun is an *Ident for plain and
// imported functions, or a *GetField for method calls and module-qualified
// calls.
type Call struct {
	Fun    Expr           // function being called
	Lparen token.Position // position of "("
	Args   []Expr         // call arguments
	Rparen token.Position // position of ")"
}

func (x *Call) exprNode() {}

func (x *Call) Pos() token.Position { return x.Fun.Pos() }
func (x *Call) End() token.Position { return x.Rparen.Advance(1) }

func (x *Call) String() string {
	args := make([]string, 0, len(x.Args))
	for _, arg := range x.Args {
		args = append(args, arg.String())
	}
	return x.Fun.String() + "(" + strings.Join(args, ", ") + ")"
}

// GetField accesses a named member of an expression: a container field, a
// method (when it appears as the Fun of a Call), or a module member.
type GetField struct {
	X    Expr   // receiver expression
	Name *Ident // member name
}

func (x *GetField) exprNode() {}

func (x *GetField) Pos() token.Position { return x.X.Pos() }
func (x *GetField) End() token.Position { return x.Name.End() }

func (x *GetField) String() string {
	return x.X.String() + "." + x.Name.Name
}

// Assign writes a new value to an assignable target: a variable or a
// container field. Assignments evaluate to unit.
type Assign struct {
	X     Expr           // target: *Ident or *GetField
	OpPos token.Position // position of "="
	Value Expr           // the value to assign
}

func (x *Assign) exprNode() {}

func (x *Assign) Pos() token.Position { return x.X.Pos() }
func (x *Assign) End() token.Position { return x.Value.End() }

func (x *Assign) String() string {
	return x.X.String() + " = " + x.Value.String()
}

// FieldInit is a single "name: expr" entry in a struct literal.
type FieldInit struct {
	Name  *Ident // field name
	Value Expr   // field value
}

// StructLit constructs a new container instance:
// "Name { field: expr, ... }". The type name may be an import alias.
type StructLit struct {
	TypeName *Ident         // container type name or alias
	Lbrace   token.Position // position of "{"
	Fields   []*FieldInit   // field initializers
	Rbrace   token.Position // position of "}"
}

func (x *StructLit) exprNode() {}

func (x *StructLit) Pos() token.Position { return x.TypeName.Pos() }
func (x *StructLit) End() token.Position { return x.Rbrace.Advance(1) }

func (x *StructLit) String() string {
	var out bytes.Buffer
	out.WriteString(x.TypeName.Name)
	out.WriteString(" { ")
	for i, f := range x.Fields {
		if i > 0 {
			out.WriteString(", ")
		}
		out.WriteString(f.Name.Name)
		out.WriteString(": ")
		out.WriteString(f.Value.String())
	}
	out.WriteString(" }")
	return out.String()
}
