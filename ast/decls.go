package ast

import (
	"bytes"
	"strings"

	"github.com/delbato/pragmatic-script/token"
)

// TypeRef is a reference to a type by name, as written in source code.
// The name is either a primitive type name ("int", "float", "string",
// "bool") or the name of a container in scope.
type TypeRef struct {
	NamePos token.Position // position of the type name
	Name    string         // type name as written
}

func (t *TypeRef) Pos() token.Position { return t.NamePos }
func (t *TypeRef) End() token.Position { return t.NamePos.Advance(len(t.Name)) }

func (t *TypeRef) String() string { return t.Name }

// Field is a single named, typed container field.
type Field struct {
	Name *Ident   // field name
	Type *TypeRef // declared field type
}

func (f *Field) String() string { return f.Name.Name + ": " + f.Type.Name }

// Param is a single named, typed function parameter.
type Param struct {
	Name *Ident   // parameter name
	Type *TypeRef // declared parameter type
}

func (p *Param) String() string { return p.Name.Name + ": " + p.Type.Name }

// Module is a declaration of a named namespace holding nested declarations:
// "mod: name { ... }".
type Module struct {
	ModPos token.Position // position of "mod" keyword
	Name   *Ident         // module name
	Decls  []Decl         // declarations in the module
	Rbrace token.Position // position of closing "}"
}

func (d *Module) declNode() {}

func (d *Module) Pos() token.Position { return d.ModPos }
func (d *Module) End() token.Position { return d.Rbrace.Advance(1) }

func (d *Module) String() string {
	var out bytes.Buffer
	out.WriteString("mod: ")
	out.WriteString(d.Name.Name)
	out.WriteString(" { ")
	for _, decl := range d.Decls {
		out.WriteString(decl.String())
		out.WriteString(" ")
	}
	out.WriteString("}")
	return out.String()
}

// Container is a record type declaration: "cont: name { field: type; ... }".
type Container struct {
	ContPos token.Position // position of "cont" keyword
	Name    *Ident         // container name
	Fields  []*Field       // ordered fields
	Rbrace  token.Position // position of closing "}"
}

func (d *Container) declNode() {}

func (d *Container) Pos() token.Position { return d.ContPos }
func (d *Container) End() token.Position { return d.Rbrace.Advance(1) }

func (d *Container) String() string {
	var out bytes.Buffer
	out.WriteString("cont: ")
	out.WriteString(d.Name.Name)
	out.WriteString(" { ")
	for _, f := range d.Fields {
		out.WriteString(f.String())
		out.WriteString("; ")
	}
	out.WriteString("}")
	return out.String()
}

// Impl binds a set of method functions to a container type:
// "impl: name { fn: ... }".
type Impl struct {
	ImplPos token.Position // position of "impl" keyword
	Name    *Ident         // name of the container being implemented
	Funcs   []*Function    // method functions
	Rbrace  token.Position // position of closing "}"
}

func (d *Impl) declNode() {}

func (d *Impl) Pos() token.Position { return d.ImplPos }
func (d *Impl) End() token.Position { return d.Rbrace.Advance(1) }

func (d *Impl) String() string {
	var out bytes.Buffer
	out.WriteString("impl: ")
	out.WriteString(d.Name.Name)
	out.WriteString(" { ")
	for _, fn := range d.Funcs {
		out.WriteString(fn.String())
		out.WriteString(" ")
	}
	out.WriteString("}")
	return out.String()
}

// Function is a function declaration:
// "fn: name(param: type, ...) ~ returnType { ... }".
// The return type is optional; a function without one returns unit.
type Function struct {
	FnPos  token.Position // position of "fn" keyword
	Name   *Ident         // function name
	Params []*Param       // ordered, typed parameters
	Return *TypeRef       // declared return type; nil means unit
	Body   *Block         // function body
}

func (d *Function) declNode() {}

func (d *Function) Pos() token.Position { return d.FnPos }
func (d *Function) End() token.Position { return d.Body.End() }

func (d *Function) String() string {
	var out bytes.Buffer
	out.WriteString("fn: ")
	out.WriteString(d.Name.Name)
	out.WriteString("(")
	params := make([]string, 0, len(d.Params))
	for _, p := range d.Params {
		params = append(params, p.String())
	}
	out.WriteString(strings.Join(params, ", "))
	out.WriteString(")")
	if d.Return != nil {
		out.WriteString(" ~ ")
		out.WriteString(d.Return.Name)
	}
	out.WriteString(" ")
	out.WriteString(d.Body.String())
	return out.String()
}

// Import binds a local alias to a fully-qualified symbol in another module:
// "import path::to::symbol = alias;". The alias is optional and defaults to
// the final path segment: "import path::to::symbol;".
type Import struct {
	ImportPos token.Position // position of "import" keyword
	Path      []*Ident       // the "::"-separated import path
	Alias     *Ident         // local alias; nil means the last path segment
	Semicolon token.Position // position of terminating ";"
}

func (d *Import) declNode() {}

func (d *Import) Pos() token.Position { return d.ImportPos }
func (d *Import) End() token.Position { return d.Semicolon.Advance(1) }

// LocalName returns the name the imported symbol is bound to in the
// importing scope: the explicit alias if present, otherwise the final
// path segment.
func (d *Import) LocalName() string {
	if d.Alias != nil {
		return d.Alias.Name
	}
	return d.Path[len(d.Path)-1].Name
}

func (d *Import) String() string {
	var out bytes.Buffer
	out.WriteString("import ")
	segments := make([]string, 0, len(d.Path))
	for _, seg := range d.Path {
		segments = append(segments, seg.Name)
	}
	out.WriteString(strings.Join(segments, "::"))
	if d.Alias != nil {
		out.WriteString(" = ")
		out.WriteString(d.Alias.Name)
	}
	out.WriteString(";")
	return out.String()
}
