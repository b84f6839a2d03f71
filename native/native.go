// Package native lets a host application expose Go functions to
// scripts. Functions are grouped into named modules; a script gains
// access to one with `import ext::name;` and calls it like any other
// function. Signatures declared here are enforced both at resolution
// time and again by the virtual machine before each invocation.
package native

import (
	"context"
	"fmt"
	"sort"

	"github.com/delbato/pragmatic-script/object"
	"github.com/delbato/pragmatic-script/types"
)

// Func is the Go calling convention for a native function. Arguments
// arrive in declaration order and the returned value must match the
// declared result type. The context is the one passed to the virtual
// machine's run call.
type Func func(ctx context.Context, args ...object.Value) (object.Value, error)

// Function pairs a typed signature with its Go implementation.
type Function struct {
	Name string
	Sig  types.Signature
	Fn   Func
}

// Module is a named group of native functions.
type Module struct {
	name  string
	funcs map[string]*Function
}

// Name of the module.
func (m *Module) Name() string { return m.name }

// Register adds a function to the module, replacing any previous
// registration under the same name.
func (m *Module) Register(name string, sig types.Signature, fn Func) {
	m.funcs[name] = &Function{Name: name, Sig: sig, Fn: fn}
}

// Get returns the named function.
func (m *Module) Get(name string) (*Function, bool) {
	fn, ok := m.funcs[name]
	return fn, ok
}

// Registry holds every native module a program may import. A Registry
// must be fully populated before compilation; it is read-only while a
// virtual machine runs against it.
type Registry struct {
	modules map[string]*Module
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{modules: map[string]*Module{}}
}

// Module returns the named module, creating it if needed.
func (r *Registry) Module(name string) *Module {
	if mod, ok := r.modules[name]; ok {
		return mod
	}
	mod := &Module{name: name, funcs: map[string]*Function{}}
	r.modules[name] = mod
	return mod
}

// Register adds a function to the named module.
func (r *Registry) Register(module, name string, sig types.Signature, fn Func) {
	r.Module(module).Register(name, sig, fn)
}

// Lookup finds a function by module and name.
func (r *Registry) Lookup(module, name string) (*Function, error) {
	mod, ok := r.modules[module]
	if !ok {
		return nil, fmt.Errorf("unknown native module %q", module)
	}
	fn, ok := mod.funcs[name]
	if !ok {
		return nil, fmt.Errorf("unknown native function %s::%s", module, name)
	}
	return fn, nil
}

// Signatures returns the declared signature of every registered
// function, keyed by module then function name. The resolver consumes
// this to type check native calls.
func (r *Registry) Signatures() map[string]map[string]types.Signature {
	out := make(map[string]map[string]types.Signature, len(r.modules))
	for name, mod := range r.modules {
		sigs := make(map[string]types.Signature, len(mod.funcs))
		for fnName, fn := range mod.funcs {
			sigs[fnName] = fn.Sig
		}
		out[name] = sigs
	}
	return out
}

// ModuleNames returns the registered module names, sorted.
func (r *Registry) ModuleNames() []string {
	names := make([]string, 0, len(r.modules))
	for name := range r.modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
