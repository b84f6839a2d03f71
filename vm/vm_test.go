package vm

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/deepnoodle-ai/wonton/assert"
	"github.com/delbato/pragmatic-script/bytecode"
	"github.com/delbato/pragmatic-script/compiler"
	"github.com/delbato/pragmatic-script/errz"
	"github.com/delbato/pragmatic-script/native"
	"github.com/delbato/pragmatic-script/object"
	"github.com/delbato/pragmatic-script/parser"
	"github.com/delbato/pragmatic-script/resolver"
	"github.com/delbato/pragmatic-script/types"
)

func testRegistry() *native.Registry {
	registry := native.NewRegistry()
	registry.Register("ext", "sqrt",
		types.Signature{
			Params: []types.Type{types.FloatType},
			Result: types.FloatType,
		},
		func(ctx context.Context, args ...object.Value) (object.Value, error) {
			return object.NewFloat(math.Sqrt(args[0].(*object.Float).Value())), nil
		})
	registry.Register("ext", "geti",
		types.Signature{Result: types.IntType},
		func(ctx context.Context, args ...object.Value) (object.Value, error) {
			return object.NewInt(42), nil
		})
	return registry
}

func compileSource(t *testing.T, source string, registry *native.Registry) *bytecode.Program {
	t.Helper()
	parsed, err := parser.Parse(context.Background(), source)
	assert.Nil(t, err)
	var opts []resolver.Option
	if registry != nil {
		opts = append(opts, resolver.WithNatives(registry.Signatures()))
	}
	resolved, err := resolver.Resolve(parsed, opts...)
	assert.Nil(t, err)
	program, err := compiler.Compile(resolved)
	assert.Nil(t, err)
	return program
}

func runMain(t *testing.T, source string, options ...Option) (object.Value, error) {
	t.Helper()
	program := compileSource(t, source, registryOf(options))
	return Run(context.Background(), program, "root::main", nil, options...)
}

// registryOf recovers the registry from the options so that a single
// test can compile and run against the same natives.
func registryOf(options []Option) *native.Registry {
	vm := &VM{}
	for _, opt := range options {
		opt(vm)
	}
	return vm.registry
}

func mustRunMain(t *testing.T, source string, options ...Option) object.Value {
	t.Helper()
	result, err := runMain(t, source, options...)
	assert.Nil(t, err)
	return result
}

func TestArithmetic(t *testing.T) {
	result := mustRunMain(t, `fn: main() ~ int { return (2 + 3) * 4; }`)
	assert.Equal(t, int64(20), result.(*object.Int).Value())
}

func TestFibonacci(t *testing.T) {
	result := mustRunMain(t, `
	fn: fib(n: int) ~ int {
		if n < 2 {
			return n;
		}
		return fib(n - 1) + fib(n - 2);
	}
	fn: main() ~ int { return fib(10); }`)
	assert.Equal(t, int64(55), result.(*object.Int).Value())
}

func TestZeroIterationWhile(t *testing.T) {
	result := mustRunMain(t, `
	fn: main() ~ int {
		var count: int = 0;
		while count > 0 {
			count = count - 1;
		}
		return count;
	}`)
	assert.Equal(t, int64(0), result.(*object.Int).Value())
}

func TestCountedWhile(t *testing.T) {
	result := mustRunMain(t, `
	fn: main() ~ int {
		var i: int = 0;
		var total: int = 0;
		while i < 5 {
			i = i + 1;
			total = total + i;
		}
		return total;
	}`)
	assert.Equal(t, int64(15), result.(*object.Int).Value())
}

func TestLoopBreakContinue(t *testing.T) {
	result := mustRunMain(t, `
	fn: main() ~ int {
		var i: int = 0;
		var total: int = 0;
		loop {
			i = i + 1;
			if i > 10 {
				break;
			}
			if i > 5 {
				continue;
			}
			total = total + i;
		}
		return total;
	}`)
	assert.Equal(t, int64(15), result.(*object.Int).Value())
}

func TestForLoop(t *testing.T) {
	result := mustRunMain(t, `
	fn: main() ~ int {
		var total: int = 0;
		for i in 5 {
			total = total + i;
		}
		return total;
	}`)
	assert.Equal(t, int64(10), result.(*object.Int).Value())
}

func TestForLoopBreak(t *testing.T) {
	result := mustRunMain(t, `
	fn: main() ~ int {
		var total: int = 0;
		for i in 100 {
			if i == 3 {
				break;
			}
			total = total + i;
		}
		return total;
	}`)
	assert.Equal(t, int64(3), result.(*object.Int).Value())
}

func TestVectorLength(t *testing.T) {
	result := mustRunMain(t, `
	import ext::sqrt;
	cont: Vector {
		x: float;
		y: float;
	}
	impl: Vector {
		fn: length(self: Vector) ~ float {
			return sqrt(self.x * self.x + self.y * self.y);
		}
	}
	fn: main() ~ float {
		var v: Vector = Vector { x: 3.0; y: 4.0; };
		return v.length();
	}`, WithNatives(testRegistry()))
	assert.Equal(t, 5.0, result.(*object.Float).Value())
}

func TestStructReferenceSemantics(t *testing.T) {
	result := mustRunMain(t, `
	cont: Counter { n: int; }
	fn: bump(c: Counter) {
		c.n = c.n + 1;
	}
	fn: main() ~ int {
		var c: Counter = Counter { n: 0; };
		bump(c);
		bump(c);
		return c.n;
	}`)
	assert.Equal(t, int64(2), result.(*object.Int).Value())
}

func TestModuleCall(t *testing.T) {
	result := mustRunMain(t, `
	mod: math {
		fn: square(x: int) ~ int { return x * x; }
	}
	import math::square = Sq;
	fn: main() ~ int { return Sq(6); }`)
	assert.Equal(t, int64(36), result.(*object.Int).Value())
}

func TestNativeCall(t *testing.T) {
	result := mustRunMain(t, `
	import ext::geti;
	fn: main() ~ int { return geti(); }`,
		WithNatives(testRegistry()))
	assert.Equal(t, int64(42), result.(*object.Int).Value())
}

func TestNativeSignatureMismatchNeverInvoked(t *testing.T) {
	// Compile against one signature, run with an incompatible one.
	compileRegistry := native.NewRegistry()
	compileRegistry.Register("ext", "geti",
		types.Signature{Result: types.IntType}, nil)
	program := compileSource(t, `
	import ext::geti;
	fn: main() ~ int { return geti(); }`, compileRegistry)

	invoked := false
	runRegistry := native.NewRegistry()
	runRegistry.Register("ext", "geti",
		types.Signature{
			Params: []types.Type{types.IntType},
			Result: types.IntType,
		},
		func(ctx context.Context, args ...object.Value) (object.Value, error) {
			invoked = true
			return object.NewInt(0), nil
		})

	_, err := Run(context.Background(), program, "root::main", nil,
		WithNatives(runRegistry))
	assert.NotNil(t, err)
	assert.False(t, invoked)
	assert.True(t, strings.Contains(err.Error(), "registered as"))
}

func TestMissingRegistry(t *testing.T) {
	program := compileSource(t, `
	import ext::geti;
	fn: main() ~ int { return geti(); }`, testRegistry())
	_, err := Run(context.Background(), program, "root::main", nil)
	assert.NotNil(t, err)
}

func TestDivisionByZero(t *testing.T) {
	_, err := runMain(t, `
	fn: main() ~ int {
		var zero: int = 0;
		return 1 / zero;
	}`)
	assert.NotNil(t, err)
	var structured *errz.StructuredError
	assert.True(t, errors.As(err, &structured))
	assert.Equal(t, errz.ErrRuntime, structured.Kind)
	assert.True(t, strings.Contains(structured.Message, "division by zero"))
}

func TestRuntimeErrorCarriesCallStack(t *testing.T) {
	_, err := runMain(t, `
	fn: inner() ~ int {
		var zero: int = 0;
		return 1 / zero;
	}
	fn: main() ~ int { return inner(); }`)
	var structured *errz.StructuredError
	assert.True(t, errors.As(err, &structured))
	assert.Len(t, structured.Stack, 2)
	assert.Equal(t, "root::inner", structured.Stack[0].Function)
	assert.Equal(t, "root::main", structured.Stack[1].Function)
}

func TestFrameOverflow(t *testing.T) {
	_, err := runMain(t, `
	fn: forever() ~ int { return forever(); }
	fn: main() ~ int { return forever(); }`)
	assert.NotNil(t, err)
	assert.True(t, strings.Contains(err.Error(), "stack overflow"))
}

func TestEntryArguments(t *testing.T) {
	program := compileSource(t, `
	fn: add(a: int, b: int) ~ int { return a + b; }`, nil)
	result, err := Run(context.Background(), program, "root::add",
		[]object.Value{object.NewInt(2), object.NewInt(40)})
	assert.Nil(t, err)
	assert.Equal(t, int64(42), result.(*object.Int).Value())

	_, err = Run(context.Background(), program, "root::add",
		[]object.Value{object.NewInt(2)})
	assert.NotNil(t, err)

	_, err = Run(context.Background(), program, "root::add",
		[]object.Value{object.NewInt(2), object.NewFloat(1.0)})
	assert.NotNil(t, err)
}

func TestUnknownEntry(t *testing.T) {
	program := compileSource(t, `fn: main() {}`, nil)
	_, err := Run(context.Background(), program, "root::missing", nil)
	assert.NotNil(t, err)
}

func TestUnitResult(t *testing.T) {
	result := mustRunMain(t, `fn: main() { var x: int = 1; }`)
	assert.Equal(t, object.Unit, result)
}

func TestStepLimiter(t *testing.T) {
	_, err := runMain(t, `
	fn: main() ~ int {
		var i: int = 0;
		loop {
			i = i + 1;
		}
	}`, WithObserver(NewStepLimiter(10_000)))
	assert.NotNil(t, err)
	assert.True(t, strings.Contains(err.Error(), "halted by observer"))
}

func TestContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	program := compileSource(t, `
	fn: main() ~ int {
		var i: int = 0;
		loop {
			i = i + 1;
		}
	}`, nil)
	_, err := Run(ctx, program, "root::main", nil)
	assert.NotNil(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestSharedProgramAcrossVMs(t *testing.T) {
	program := compileSource(t, `
	fn: main() ~ int {
		var total: int = 0;
		for i in 100 {
			total = total + i;
		}
		return total;
	}`, nil)
	done := make(chan int64, 4)
	for i := 0; i < 4; i++ {
		go func() {
			result, err := Run(context.Background(), program, "root::main", nil)
			if err != nil {
				done <- -1
				return
			}
			done <- result.(*object.Int).Value()
		}()
	}
	for i := 0; i < 4; i++ {
		assert.Equal(t, int64(4950), <-done)
	}
}
