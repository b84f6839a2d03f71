package resolver

import (
	"github.com/delbato/pragmatic-script/ast"
	"github.com/delbato/pragmatic-script/types"
)

// Module is a node in the resolved module tree. The tree is rooted at
// the implicit "root" module that holds all top level declarations.
type Module struct {
	Name       string
	Path       string // fully qualified, e.g. "root::vec::math"
	Parent     *Module
	Children   map[string]*Module
	Functions  map[string]*Function
	Containers map[string]*Container
	Imports    map[string]*Symbol // local alias to resolved symbol
}

// Lookup finds a name in this module's own scope, without considering
// enclosing modules.
func (m *Module) Lookup(name string) (*Symbol, bool) {
	if fn, ok := m.Functions[name]; ok {
		return &Symbol{Kind: FuncSymbol, Func: fn}, true
	}
	if cont, ok := m.Containers[name]; ok {
		return &Symbol{Kind: ContainerSymbol, Container: cont}, true
	}
	if child, ok := m.Children[name]; ok {
		return &Symbol{Kind: ModuleSymbol, Module: child}, true
	}
	if sym, ok := m.Imports[name]; ok {
		return sym, true
	}
	return nil, false
}

// Function is a resolved script function or method.
type Function struct {
	Name          string
	QualifiedName string // e.g. "root::vec::length"
	Module        *Module
	Decl          *ast.Function
	Sig           types.Signature
	Container     *Container // set when the function is a method
}

// ContainerField is a named, typed field of a container.
type ContainerField struct {
	Name string
	Type types.Type
}

// Container is a resolved container type together with its impl methods.
type Container struct {
	Name          string
	QualifiedName string
	Decl          *ast.Container
	Fields        []ContainerField
	Methods       map[string]*Function

	fieldIndex map[string]int
}

// Type returns the container's type. Type identity uses the qualified
// name so that distinct containers with the same short name in
// different modules stay distinct.
func (c *Container) Type() types.Type {
	return types.NamedType(c.QualifiedName)
}

// FieldIndex returns the declaration-order index of the named field.
func (c *Container) FieldIndex(name string) (int, bool) {
	i, ok := c.fieldIndex[name]
	return i, ok
}

// NativeRef identifies a host function made visible through an import.
type NativeRef struct {
	Module string
	Name   string
	Sig    types.Signature
}

// QualifiedName returns the "module::name" form used at dispatch time.
func (n *NativeRef) QualifiedName() string {
	return n.Module + "::" + n.Name
}

// SymbolKind discriminates the possible targets of a name.
type SymbolKind int

const (
	FuncSymbol SymbolKind = iota
	ContainerSymbol
	ModuleSymbol
	NativeSymbol
)

// Symbol is a resolved reference to a function, container, module or
// native function.
type Symbol struct {
	Kind      SymbolKind
	Func      *Function
	Container *Container
	Module    *Module
	Native    *NativeRef
}

// CallKind discriminates how a call site dispatches.
type CallKind int

const (
	ScriptCall CallKind = iota
	MethodCall
	NativeCall
)

// CallInfo records the resolved target of a call expression.
type CallInfo struct {
	Kind     CallKind
	Func     *Function  // script and method calls
	Native   *NativeRef // native calls
	Receiver ast.Expr   // method calls only
}

// Info is the side table produced by resolution. The AST itself is
// never mutated; later stages look nodes up here.
type Info struct {

	// Types maps every expression to its static type.
	Types map[ast.Expr]types.Type

	// Calls maps each call expression to its resolved target.
	Calls map[*ast.Call]*CallInfo

	// StructLits maps struct literal expressions to their container.
	StructLits map[*ast.StructLit]*Container

	// Fields maps field access expressions to the declaration-order
	// index of the accessed field. Module member accesses and method
	// selectors are absent from this map.
	Fields map[*ast.GetField]int

	// Symbols maps identifier expressions that name a non-local symbol
	// (an imported module, function or container) to their resolution.
	// Identifiers naming local variables are absent from this map.
	Symbols map[*ast.Ident]*Symbol
}

func newInfo() *Info {
	return &Info{
		Types:      map[ast.Expr]types.Type{},
		Calls:      map[*ast.Call]*CallInfo{},
		StructLits: map[*ast.StructLit]*Container{},
		Fields:     map[*ast.GetField]int{},
		Symbols:    map[*ast.Ident]*Symbol{},
	}
}

// Program is the result of resolution: the module tree, flat views of
// all functions and containers in deterministic order, and the side
// table of annotations.
type Program struct {
	Root       *Module
	Functions  []*Function // declaration order, methods included
	Containers []*Container
	Natives    []*NativeRef // every native referenced by an import
	Info       *Info
}

// Function finds a function by qualified name.
func (p *Program) Function(qualifiedName string) (*Function, bool) {
	for _, fn := range p.Functions {
		if fn.QualifiedName == qualifiedName {
			return fn, true
		}
	}
	return nil, false
}
