package pgs

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/deepnoodle-ai/wonton/assert"
	"github.com/delbato/pragmatic-script/errz"
	"github.com/delbato/pragmatic-script/native"
	"github.com/delbato/pragmatic-script/object"
	"github.com/delbato/pragmatic-script/types"
	"github.com/delbato/pragmatic-script/vm"
)

func stdRegistry() *native.Registry {
	registry := native.NewRegistry()
	registry.Register("ext", "sqrt",
		types.Signature{
			Params: []types.Type{types.FloatType},
			Result: types.FloatType,
		},
		func(ctx context.Context, args ...object.Value) (object.Value, error) {
			return object.NewFloat(math.Sqrt(args[0].(*object.Float).Value())), nil
		})
	return registry
}

func TestEval(t *testing.T) {
	result, err := Eval(context.Background(),
		`fn: main() ~ int { return (2 + 3) * 4; }`, nil)
	assert.Nil(t, err)
	assert.Equal(t, int64(20), result.(*object.Int).Value())
}

func TestCompileOnceRunMany(t *testing.T) {
	program, err := Compile(context.Background(), `
	fn: double(x: int) ~ int { return x * 2; }`)
	assert.Nil(t, err)

	for i := int64(1); i <= 3; i++ {
		result, err := Run(context.Background(), program, "double", nil,
			WithArgs(object.NewInt(i)))
		assert.Nil(t, err)
		assert.Equal(t, i*2, result.(*object.Int).Value())
	}
}

func TestVectorExample(t *testing.T) {
	registry := stdRegistry()
	program, err := Compile(context.Background(), `
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
		var v: Vector = Vector { x: 3.0, y: 4.0 };
		return v.length();
	}`, WithNatives(registry), WithFilename("vector.pgs"))
	assert.Nil(t, err)

	result, err := Run(context.Background(), program, "main", registry)
	assert.Nil(t, err)
	assert.Equal(t, 5.0, result.(*object.Float).Value())
}

func TestQualifiedEntry(t *testing.T) {
	program, err := Compile(context.Background(), `
	mod: util {
		fn: answer() ~ int { return 42; }
	}`)
	assert.Nil(t, err)
	result, err := Run(context.Background(), program, "root::util::answer", nil)
	assert.Nil(t, err)
	assert.Equal(t, int64(42), result.(*object.Int).Value())
}

func TestCompileErrorsCarryStage(t *testing.T) {
	tests := []struct {
		name   string
		source string
		kind   errz.ErrorKind
	}{
		{"lex", `fn: main() { var s: string = "unterminated`, errz.ErrLex},
		{"parse", `fn main() {}`, errz.ErrParse},
		{"resolve", `fn: main() { missing(); }`, errz.ErrResolve},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(context.Background(), tt.source, WithFilename("bad.pgs"))
			assert.NotNil(t, err)
			var structured *errz.StructuredError
			assert.True(t, errors.As(err, &structured))
			assert.Equal(t, tt.kind, structured.Kind)
		})
	}
}

func TestCompileContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Compile(ctx, `fn: main() {}`)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestErrorFilename(t *testing.T) {
	_, err := Compile(context.Background(), `fn: main() { return missing; }`,
		WithFilename("script.pgs"))
	assert.NotNil(t, err)
	var structured *errz.StructuredError
	assert.True(t, errors.As(err, &structured))
	assert.Equal(t, "script.pgs", structured.Location.Filename)
}

func TestObserverOption(t *testing.T) {
	program, err := Compile(context.Background(), `
	fn: main() ~ int {
		var i: int = 0;
		loop {
			i = i + 1;
		}
	}`)
	assert.Nil(t, err)
	_, err = Run(context.Background(), program, "main", nil,
		WithObserver(vm.NewStepLimiter(1000)))
	assert.NotNil(t, err)
	assert.True(t, strings.Contains(err.Error(), "halted by observer"))
}

func TestRuntimeErrorSurfacesFromRun(t *testing.T) {
	program, err := Compile(context.Background(), `
	fn: main() ~ int {
		var zero: int = 0;
		return 10 / zero;
	}`)
	assert.Nil(t, err)
	_, err = Run(context.Background(), program, "main", nil)
	var structured *errz.StructuredError
	assert.True(t, errors.As(err, &structured))
	assert.Equal(t, errz.ErrRuntime, structured.Kind)
}
