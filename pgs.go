// Package pgs is an embeddable scripting language for Go applications.
//
// Source code moves through a fixed pipeline: lexing, parsing,
// resolution, compilation, and finally execution on a stack based
// virtual machine. Compile covers the first four stages and returns an
// immutable program; Run executes a compiled program. A host exposes Go
// functions to scripts through a native.Registry.
//
//	registry := native.NewRegistry()
//	registry.Register("ext", "sqrt", sqrtSig, sqrtFn)
//
//	program, err := pgs.Compile(ctx, source, pgs.WithNatives(registry))
//	if err != nil {
//	    ...
//	}
//	result, err := pgs.Run(ctx, program, "main", registry)
package pgs

import (
	"context"
	"strings"

	"github.com/delbato/pragmatic-script/bytecode"
	"github.com/delbato/pragmatic-script/compiler"
	"github.com/delbato/pragmatic-script/native"
	"github.com/delbato/pragmatic-script/object"
	"github.com/delbato/pragmatic-script/parser"
	"github.com/delbato/pragmatic-script/resolver"
	"github.com/delbato/pragmatic-script/vm"
)

// CompileOption is a configuration function for Compile.
type CompileOption func(*compileConfig)

type compileConfig struct {
	filename string
	registry *native.Registry
}

// WithFilename sets the filename used in error locations.
func WithFilename(filename string) CompileOption {
	return func(c *compileConfig) { c.filename = filename }
}

// WithNatives declares the host functions scripts may import. The same
// registry, or one with identical signatures, must be passed to Run.
func WithNatives(registry *native.Registry) CompileOption {
	return func(c *compileConfig) { c.registry = registry }
}

// Compile runs a source text through the lexer, parser, resolver and
// compiler, returning an immutable program. The returned program may be
// executed any number of times, by any number of VMs concurrently. The
// context cancels compilation of large inputs.
func Compile(ctx context.Context, source string, options ...CompileOption) (*bytecode.Program, error) {
	var cfg compileConfig
	for _, opt := range options {
		opt(&cfg)
	}
	var parserOpts []parser.Option
	if cfg.filename != "" {
		parserOpts = append(parserOpts, parser.WithFilename(cfg.filename))
	}
	parsed, err := parser.Parse(ctx, source, parserOpts...)
	if err != nil {
		return nil, err
	}
	resolverOpts := []resolver.Option{
		resolver.WithFilename(cfg.filename),
		resolver.WithSource(source),
	}
	if cfg.registry != nil {
		resolverOpts = append(resolverOpts,
			resolver.WithNatives(cfg.registry.Signatures()))
	}
	resolved, err := resolver.Resolve(parsed, resolverOpts...)
	if err != nil {
		return nil, err
	}
	return compiler.Compile(resolved, compiler.WithFilename(cfg.filename))
}

// RunOption is a configuration function for Run.
type RunOption func(*runConfig)

type runConfig struct {
	args     []object.Value
	observer vm.Observer
}

// WithArgs passes arguments to the entry function.
func WithArgs(args ...object.Value) RunOption {
	return func(c *runConfig) { c.args = args }
}

// WithObserver installs an execution observer, e.g. a step limiter.
func WithObserver(observer vm.Observer) RunOption {
	return func(c *runConfig) { c.observer = observer }
}

// Run executes the named entry function of a compiled program. A bare
// name like "main" refers to a top level function; nested functions use
// their qualified form, e.g. "root::vec::length". The registry supplies
// the native functions the program was compiled against; pass nil if
// the program imports none.
func Run(ctx context.Context, program *bytecode.Program, entry string,
	registry *native.Registry, options ...RunOption) (object.Value, error) {

	var cfg runConfig
	for _, opt := range options {
		opt(&cfg)
	}
	if !strings.Contains(entry, "::") {
		entry = resolver.RootModuleName + "::" + entry
	}
	var vmOpts []vm.Option
	if registry != nil {
		vmOpts = append(vmOpts, vm.WithNatives(registry))
	}
	if cfg.observer != nil {
		vmOpts = append(vmOpts, vm.WithObserver(cfg.observer))
	}
	return vm.Run(ctx, program, entry, cfg.args, vmOpts...)
}

// Eval compiles and runs a source text's main function in one step.
// Intended for tests and short scripts; long lived embedders should
// compile once and run many times.
func Eval(ctx context.Context, source string, registry *native.Registry) (object.Value, error) {
	var compileOpts []CompileOption
	if registry != nil {
		compileOpts = append(compileOpts, WithNatives(registry))
	}
	program, err := Compile(ctx, source, compileOpts...)
	if err != nil {
		return nil, err
	}
	return Run(ctx, program, "main", registry)
}
