// Package resolver builds the module tree for a parsed program, binds
// imports and impl methods, and type checks every declaration. The AST
// is left untouched; resolution results are returned as side tables
// that the compiler consumes.
package resolver

import (
	"sort"
	"strings"

	"github.com/delbato/pragmatic-script/ast"
	"github.com/delbato/pragmatic-script/errz"
	"github.com/delbato/pragmatic-script/token"
	"github.com/delbato/pragmatic-script/types"
)

// RootModuleName is the name of the implicit top level module.
const RootModuleName = "root"

// Resolve analyzes the given program and returns its resolved form, or
// the first resolution error encountered.
func Resolve(program *ast.Program, options ...Option) (*Program, error) {
	r := &Resolver{
		natives:        map[string]map[string]types.Signature{},
		containers:     map[string]*Container{},
		nativeRefs:     map[string]*NativeRef{},
		pendingImps:    map[*Module][]*ast.Impl{},
		pendingImports: map[*Module][]*ast.Import{},
	}
	for _, opt := range options {
		opt(r)
	}
	return r.resolve(program)
}

// Resolver holds state for a single resolution pass.
type Resolver struct {
	filename string
	source   string

	// natives maps native module name to function name to signature
	natives map[string]map[string]types.Signature

	program *Program

	// containers indexes every container by qualified name
	containers map[string]*Container

	// nativeRefs deduplicates native references across imports
	nativeRefs map[string]*NativeRef

	pendingImps    map[*Module][]*ast.Impl
	pendingImports map[*Module][]*ast.Import
}

// Option is a configuration function for a Resolver.
type Option func(*Resolver)

// WithFilename sets the filename reported in error locations.
func WithFilename(filename string) Option {
	return func(r *Resolver) { r.filename = filename }
}

// WithSource provides the original source text, so that error locations
// can carry the offending line.
func WithSource(source string) Option {
	return func(r *Resolver) { r.source = source }
}

// WithNatives declares the host functions available for import, as a
// map of native module name to function name to signature.
func WithNatives(natives map[string]map[string]types.Signature) Option {
	return func(r *Resolver) { r.natives = natives }
}

func (r *Resolver) resolve(program *ast.Program) (*Program, error) {
	root := newModule(RootModuleName, nil)
	r.program = &Program{Root: root, Info: newInfo()}

	// Pass 1: build the module tree and register declarations. Bodies
	// are not inspected yet, so siblings may reference each other in
	// any order.
	for _, decl := range program.Decls {
		if err := r.collectDecl(root, decl); err != nil {
			return nil, err
		}
	}

	// Pass 2: bind imports, container field types, impl methods and
	// function signatures, now that every name is known.
	if err := r.bindImports(root); err != nil {
		return nil, err
	}
	if err := r.bindContainers(root); err != nil {
		return nil, err
	}
	if err := r.bindImpls(root); err != nil {
		return nil, err
	}
	for _, fn := range r.program.Functions {
		if err := r.bindSignature(fn); err != nil {
			return nil, err
		}
	}

	// Pass 3: type check every function body.
	for _, fn := range r.program.Functions {
		if err := r.checkFunction(fn); err != nil {
			return nil, err
		}
	}
	return r.program, nil
}

func newModule(name string, parent *Module) *Module {
	m := &Module{
		Name:       name,
		Parent:     parent,
		Children:   map[string]*Module{},
		Functions:  map[string]*Function{},
		Containers: map[string]*Container{},
		Imports:    map[string]*Symbol{},
	}
	if parent == nil {
		m.Path = name
	} else {
		m.Path = parent.Path + "::" + name
	}
	return m
}

func (r *Resolver) collectDecl(mod *Module, decl ast.Decl) error {
	switch decl := decl.(type) {
	case *ast.Module:
		name := decl.Name.Name
		if err := r.checkFreshName(mod, name, decl.Pos()); err != nil {
			return err
		}
		child := newModule(name, mod)
		mod.Children[name] = child
		for _, inner := range decl.Decls {
			if err := r.collectDecl(child, inner); err != nil {
				return err
			}
		}
	case *ast.Function:
		name := decl.Name.Name
		if err := r.checkFreshName(mod, name, decl.Pos()); err != nil {
			return err
		}
		fn := &Function{
			Name:          name,
			QualifiedName: mod.Path + "::" + name,
			Module:        mod,
			Decl:          decl,
		}
		mod.Functions[name] = fn
		r.program.Functions = append(r.program.Functions, fn)
	case *ast.Container:
		name := decl.Name.Name
		if err := r.checkFreshName(mod, name, decl.Pos()); err != nil {
			return err
		}
		cont := &Container{
			Name:          name,
			QualifiedName: mod.Path + "::" + name,
			Decl:          decl,
			Methods:       map[string]*Function{},
			fieldIndex:    map[string]int{},
		}
		mod.Containers[name] = cont
		r.containers[cont.QualifiedName] = cont
		r.program.Containers = append(r.program.Containers, cont)
	case *ast.Impl:
		r.pendingImps[mod] = append(r.pendingImps[mod], decl)
	case *ast.Import:
		r.pendingImports[mod] = append(r.pendingImports[mod], decl)
	}
	return nil
}

func (r *Resolver) checkFreshName(mod *Module, name string, pos token.Position) error {
	if _, exists := mod.Lookup(name); exists {
		return r.errorAt(pos, "duplicate definition of %q in module %s",
			name, mod.Path)
	}
	return nil
}

// bindImports resolves each import path against the module tree and the
// declared native modules, then binds the alias in the importing module.
func (r *Resolver) bindImports(mod *Module) error {
	for _, imp := range r.pendingImports[mod] {
		sym, err := r.resolveImportPath(imp)
		if err != nil {
			return err
		}
		alias := imp.LocalName()
		// Importing a symbol under the name it already resolves to in
		// this module is a no-op, not a shadowing conflict.
		if existing, exists := mod.Lookup(alias); exists && !sameTarget(existing, sym) {
			return r.errorAt(imp.Pos(),
				"import alias %q shadows an existing name in module %s",
				alias, mod.Path)
		}
		mod.Imports[alias] = sym
	}
	for _, name := range sortedKeys(mod.Children) {
		if err := r.bindImports(mod.Children[name]); err != nil {
			return err
		}
	}
	return nil
}

func (r *Resolver) resolveImportPath(imp *ast.Import) (*Symbol, error) {
	first := imp.Path[0].Name

	// Native modules take priority over script modules for the first
	// segment, and their paths are exactly two segments long.
	if funcs, ok := r.natives[first]; ok {
		if len(imp.Path) != 2 {
			return nil, r.errorAt(imp.Pos(),
				"native import must name a single function in module %q", first)
		}
		name := imp.Path[1].Name
		sig, ok := funcs[name]
		if !ok {
			return nil, r.errorAt(imp.Path[1].Pos(),
				"unknown native function %s::%s", first, name)
		}
		ref := r.internNative(first, name, sig)
		return &Symbol{Kind: NativeSymbol, Native: ref}, nil
	}

	// Script paths are absolute: the first segment is either "root" or
	// a module directly under root.
	current := r.program.Root
	segments := imp.Path
	if first == RootModuleName {
		segments = segments[1:]
		if len(segments) == 0 {
			return nil, r.errorAt(imp.Pos(), "cannot import the root module")
		}
	}
	for i, seg := range segments {
		last := i == len(segments)-1
		if last {
			sym, ok := lookupDeclared(current, seg.Name)
			if !ok {
				return nil, r.errorAt(seg.Pos(), "unknown symbol %q in module %s",
					seg.Name, current.Path)
			}
			return sym, nil
		}
		child, ok := current.Children[seg.Name]
		if !ok {
			return nil, r.errorAt(seg.Pos(), "unknown module %q in %s",
				seg.Name, current.Path)
		}
		current = child
	}
	return nil, r.errorAt(imp.Pos(), "empty import path")
}

// sameTarget reports whether two symbols resolve to the same entity.
// Lookup allocates fresh Symbol values, so targets are compared instead
// of the symbols themselves.
func sameTarget(a, b *Symbol) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case ModuleSymbol:
		return a.Module == b.Module
	case FuncSymbol:
		return a.Func == b.Func
	case ContainerSymbol:
		return a.Container == b.Container
	case NativeSymbol:
		return a.Native == b.Native
	}
	return false
}

// lookupDeclared finds a declared (non-imported) name in a module.
// Import paths never traverse aliases, so chains of imports cannot
// form cycles.
func lookupDeclared(mod *Module, name string) (*Symbol, bool) {
	if fn, ok := mod.Functions[name]; ok {
		return &Symbol{Kind: FuncSymbol, Func: fn}, true
	}
	if cont, ok := mod.Containers[name]; ok {
		return &Symbol{Kind: ContainerSymbol, Container: cont}, true
	}
	if child, ok := mod.Children[name]; ok {
		return &Symbol{Kind: ModuleSymbol, Module: child}, true
	}
	return nil, false
}

func (r *Resolver) internNative(module, name string, sig types.Signature) *NativeRef {
	key := module + "::" + name
	if ref, ok := r.nativeRefs[key]; ok {
		return ref
	}
	ref := &NativeRef{Module: module, Name: name, Sig: sig}
	r.nativeRefs[key] = ref
	r.program.Natives = append(r.program.Natives, ref)
	return ref
}

// bindContainers resolves field types for every container in the tree.
func (r *Resolver) bindContainers(mod *Module) error {
	for _, name := range sortedKeys(mod.Containers) {
		cont := mod.Containers[name]
		for i, field := range cont.Decl.Fields {
			fieldType, err := r.resolveType(mod, field.Type)
			if err != nil {
				return err
			}
			cont.Fields = append(cont.Fields, ContainerField{
				Name: field.Name.Name,
				Type: fieldType,
			})
			if _, dup := cont.fieldIndex[field.Name.Name]; dup {
				return r.errorAt(field.Name.Pos(),
					"duplicate field %q in container %s", field.Name.Name, cont.Name)
			}
			cont.fieldIndex[field.Name.Name] = i
		}
	}
	for _, name := range sortedKeys(mod.Children) {
		if err := r.bindContainers(mod.Children[name]); err != nil {
			return err
		}
	}
	return nil
}

// bindImpls attaches each impl block's functions as methods of the
// named container, which must be declared in the same module.
func (r *Resolver) bindImpls(mod *Module) error {
	for _, impl := range r.pendingImps[mod] {
		cont, ok := mod.Containers[impl.Name.Name]
		if !ok {
			return r.errorAt(impl.Name.Pos(),
				"impl references unknown container %q in module %s",
				impl.Name.Name, mod.Path)
		}
		for _, fnDecl := range impl.Funcs {
			name := fnDecl.Name.Name
			if _, dup := cont.Methods[name]; dup {
				return r.errorAt(fnDecl.Name.Pos(),
					"duplicate method %q on container %s", name, cont.Name)
			}
			fn := &Function{
				Name:          name,
				QualifiedName: cont.QualifiedName + "::" + name,
				Module:        mod,
				Decl:          fnDecl,
				Container:     cont,
			}
			cont.Methods[name] = fn
			r.program.Functions = append(r.program.Functions, fn)
		}
	}
	for _, name := range sortedKeys(mod.Children) {
		if err := r.bindImpls(mod.Children[name]); err != nil {
			return err
		}
	}
	return nil
}

func (r *Resolver) bindSignature(fn *Function) error {
	params := make([]types.Type, 0, len(fn.Decl.Params))
	for _, param := range fn.Decl.Params {
		paramType, err := r.resolveType(fn.Module, param.Type)
		if err != nil {
			return err
		}
		params = append(params, paramType)
	}
	result := types.UnitType
	if fn.Decl.Return != nil {
		var err error
		result, err = r.resolveType(fn.Module, fn.Decl.Return)
		if err != nil {
			return err
		}
	}
	fn.Sig = types.Signature{Params: params, Result: result}

	// A method's first parameter is the receiver and must have the
	// container's type.
	if fn.Container != nil {
		if len(params) == 0 || !params[0].Equals(fn.Container.Type()) {
			return r.errorAt(fn.Decl.Name.Pos(),
				"method %s must take %s as its first parameter",
				fn.Name, fn.Container.Name)
		}
	}
	return nil
}

// resolveType maps a syntactic type name to a type. Primitive names are
// checked first, then containers visible in the module scope.
func (r *Resolver) resolveType(mod *Module, ref *ast.TypeRef) (types.Type, error) {
	if t, ok := types.Lookup(ref.Name); ok {
		return t, nil
	}
	for m := mod; m != nil; m = m.Parent {
		if sym, ok := m.Lookup(ref.Name); ok {
			if sym.Kind == ContainerSymbol {
				return sym.Container.Type(), nil
			}
			return types.Type{}, r.errorAt(ref.Pos(),
				"%q is not a type", ref.Name)
		}
	}
	return types.Type{}, r.errorAt(ref.Pos(), "unknown type %q", ref.Name)
}

// containerFor returns the container behind a container-kinded type.
func (r *Resolver) containerFor(t types.Type) (*Container, bool) {
	cont, ok := r.containers[t.Name]
	return cont, ok
}

func (r *Resolver) errorAt(pos token.Position, format string, args ...interface{}) error {
	return errz.Newf(errz.ErrResolve, errz.SourceLocation{
		Filename: r.filename,
		Line:     pos.LineNumber(),
		Column:   pos.ColumnNumber(),
		Source:   r.lineText(pos),
	}, format, args...)
}

// lineText extracts the source line containing the given position.
// Empty when the resolver was not given the source text.
func (r *Resolver) lineText(pos token.Position) string {
	start := pos.LineStart
	if start < 0 || start > len(r.source) {
		return ""
	}
	end := strings.IndexRune(r.source[start:], '\n')
	if end < 0 {
		return r.source[start:]
	}
	return r.source[start : start+end]
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
