package compiler

import (
	"context"
	"testing"

	"github.com/deepnoodle-ai/wonton/assert"
	"github.com/delbato/pragmatic-script/bytecode"
	"github.com/delbato/pragmatic-script/object"
	"github.com/delbato/pragmatic-script/op"
	"github.com/delbato/pragmatic-script/parser"
	"github.com/delbato/pragmatic-script/resolver"
	"github.com/delbato/pragmatic-script/types"
)

var testNatives = map[string]map[string]types.Signature{
	"ext": {
		"geti": {Result: types.IntType},
	},
}

func compileSource(t *testing.T, source string) *bytecode.Program {
	t.Helper()
	parsed, err := parser.Parse(context.Background(), source)
	assert.Nil(t, err)
	resolved, err := resolver.Resolve(parsed, resolver.WithNatives(testNatives))
	assert.Nil(t, err)
	program, err := Compile(resolved)
	assert.Nil(t, err)
	return program
}

func mainChunk(t *testing.T, program *bytecode.Program) *bytecode.Chunk {
	t.Helper()
	index, ok := program.FunctionIndex("root::main")
	assert.True(t, ok)
	chunk, err := program.Chunk(index)
	assert.Nil(t, err)
	return chunk
}

func TestCompileArithmetic(t *testing.T) {
	program := compileSource(t, `fn: main() ~ int { return (2 + 3) * 4; }`)
	chunk := mainChunk(t, program)
	assert.Equal(t, []op.Code{
		op.LoadConst, 0,
		op.LoadConst, 1,
		op.BinaryOp, op.Code(op.Add),
		op.LoadConst, 2,
		op.BinaryOp, op.Code(op.Multiply),
		op.ReturnValue,
		op.Nil,
		op.ReturnValue,
	}, chunk.Instructions)
	assert.Len(t, chunk.Constants, 3)
	assert.Equal(t, int64(2), chunk.Constants[0].(*object.Int).Value())
}

func TestConstantsDeduplicated(t *testing.T) {
	program := compileSource(t, `fn: main() ~ int { return 7 + 7; }`)
	chunk := mainChunk(t, program)
	assert.Len(t, chunk.Constants, 1)
}

func TestLocalSlots(t *testing.T) {
	program := compileSource(t, `
	fn: main() ~ int {
		var a: int = 1;
		var b: int = 2;
		return a + b;
	}`)
	chunk := mainChunk(t, program)
	assert.Equal(t, 0, chunk.ParamCount)
	assert.Equal(t, 2, chunk.LocalCount)
	assert.Equal(t, []op.Code{
		op.LoadConst, 0,
		op.StoreFast, 0,
		op.LoadConst, 1,
		op.StoreFast, 1,
		op.LoadFast, 0,
		op.LoadFast, 1,
		op.BinaryOp, op.Code(op.Add),
		op.ReturnValue,
		op.Nil,
		op.ReturnValue,
	}, chunk.Instructions)
}

func TestBlockShadowingClaimsNewSlot(t *testing.T) {
	program := compileSource(t, `
	fn: main() {
		var x: int = 1;
		if true {
			var x: float = 2.0;
		}
	}`)
	chunk := mainChunk(t, program)
	assert.Equal(t, 2, chunk.LocalCount)
}

func TestCompileIfElse(t *testing.T) {
	program := compileSource(t, `
	fn: main() ~ int {
		if true {
			return 1;
		} else {
			return 2;
		}
	}`)
	chunk := mainChunk(t, program)
	assert.Equal(t, []op.Code{
		op.True,
		op.PopJumpForwardIfFalse, 7,
		op.LoadConst, 0,
		op.ReturnValue,
		op.JumpForward, 5,
		op.LoadConst, 1,
		op.ReturnValue,
		op.Nil,
		op.ReturnValue,
	}, chunk.Instructions)
}

func TestCompileWhile(t *testing.T) {
	program := compileSource(t, `
	fn: main() ~ int {
		var i: int = 0;
		while i < 3 {
			i = i + 1;
		}
		return i;
	}`)
	chunk := mainChunk(t, program)
	assert.Equal(t, []op.Code{
		op.LoadConst, 0, // 0
		op.StoreFast, 0, // 2
		op.LoadFast, 0, // 4: loop start
		op.LoadConst, 1, // 6
		op.CompareOp, op.Code(op.LessThan), // 8
		op.PopJumpForwardIfFalse, 12, // 10 -> 22
		op.LoadFast, 0, // 12
		op.LoadConst, 2, // 14
		op.BinaryOp, op.Code(op.Add), // 16
		op.StoreFast, 0, // 18
		op.JumpBackward, 16, // 20 -> 4
		op.LoadFast, 0, // 22
		op.ReturnValue,
		op.Nil,
		op.ReturnValue,
	}, chunk.Instructions)
}

func TestCompileLoopWithBreak(t *testing.T) {
	program := compileSource(t, `
	fn: main() {
		loop {
			break;
		}
	}`)
	chunk := mainChunk(t, program)
	assert.Equal(t, []op.Code{
		op.JumpForward, 4, // 0 -> 4
		op.JumpBackward, 2, // 2 -> 0
		op.Nil,
		op.ReturnValue,
	}, chunk.Instructions)
}

func TestCompileForLoop(t *testing.T) {
	program := compileSource(t, `
	fn: main() ~ int {
		var total: int = 0;
		for i in 3 {
			total = total + i;
		}
		return total;
	}`)
	chunk := mainChunk(t, program)
	assert.Equal(t, 2, chunk.LocalCount)
	assert.Equal(t, []op.Code{
		op.LoadConst, 0, // 0: total = 0
		op.StoreFast, 0, // 2
		op.LoadConst, 1, // 4: 3
		op.GetIter,      // 6
		op.ForIter, 14, // 7: exhausted -> 21
		op.StoreFast, 1, // 9: i
		op.LoadFast, 0, // 11
		op.LoadFast, 1, // 13
		op.BinaryOp, op.Code(op.Add), // 15
		op.StoreFast, 0, // 17
		op.JumpBackward, 12, // 19 -> 7
		op.LoadFast, 0, // 21
		op.ReturnValue,
		op.Nil,
		op.ReturnValue,
	}, chunk.Instructions)
}

func TestCompileCallOperands(t *testing.T) {
	program := compileSource(t, `
	fn: add(a: int, b: int) ~ int { return a + b; }
	fn: main() ~ int { return add(1, 2); }`)

	addIndex, ok := program.FunctionIndex("root::add")
	assert.True(t, ok)
	chunk := mainChunk(t, program)
	assert.Equal(t, []op.Code{
		op.LoadConst, 0,
		op.LoadConst, 1,
		op.Call, op.Code(addIndex), 2,
		op.ReturnValue,
		op.Nil,
		op.ReturnValue,
	}, chunk.Instructions)
}

func TestCompileNativeCall(t *testing.T) {
	program := compileSource(t, `
	import ext::geti;
	fn: main() ~ int { return geti(); }`)

	natives := program.Natives()
	assert.Len(t, natives, 1)
	assert.Equal(t, "ext::geti", natives[0].QualifiedName())
	chunk := mainChunk(t, program)
	assert.Equal(t, []op.Code{
		op.CallNative, 0, 0,
		op.ReturnValue,
		op.Nil,
		op.ReturnValue,
	}, chunk.Instructions)
}

func TestCompileStructAndMethod(t *testing.T) {
	program := compileSource(t, `
	cont: Point {
		x: int;
		y: int;
	}
	impl: Point {
		fn: sum(self: Point) ~ int { return self.x + self.y; }
	}
	fn: main() ~ int {
		var p: Point = Point { y: 2; x: 1; };
		return p.sum();
	}`)

	structs := program.Structs()
	assert.Len(t, structs, 1)
	assert.Equal(t, "Point", structs[0].Name)
	assert.Equal(t, []string{"x", "y"}, structs[0].Fields)

	sumIndex, ok := program.FunctionIndex("root::Point::sum")
	assert.True(t, ok)

	// Field initializers are reordered into declaration order.
	chunk := mainChunk(t, program)
	assert.Equal(t, []op.Code{
		op.LoadConst, 0, // x: 1
		op.LoadConst, 1, // y: 2
		op.NewStruct, 0, 2,
		op.StoreFast, 0,
		op.LoadFast, 0,
		op.Call, op.Code(sumIndex), 1,
		op.ReturnValue,
		op.Nil,
		op.ReturnValue,
	}, chunk.Instructions)
	assert.Equal(t, int64(1), chunk.Constants[0].(*object.Int).Value())
}

func TestCompileFieldAssignment(t *testing.T) {
	program := compileSource(t, `
	cont: P { x: int; }
	fn: main() {
		var p: P = P { x: 1; };
		p.x = 2;
	}`)
	chunk := mainChunk(t, program)
	assert.Equal(t, []op.Code{
		op.LoadConst, 0,
		op.NewStruct, 0, 1,
		op.StoreFast, 0,
		op.LoadFast, 0,
		op.LoadConst, 1,
		op.StoreField, 0,
		op.Nil,
		op.ReturnValue,
	}, chunk.Instructions)
}

func TestDeterministicOutput(t *testing.T) {
	source := `
	mod: a { fn: one() ~ int { return 1; } }
	mod: b { fn: two() ~ int { return 2; } }
	fn: main() ~ int { return 3; }`
	first := compileSource(t, source)
	second := compileSource(t, source)
	assert.Len(t, second.Chunks(), len(first.Chunks()))
	for i, chunk := range first.Chunks() {
		assert.Equal(t, chunk.Name, second.Chunks()[i].Name)
		assert.Equal(t, chunk.Instructions, second.Chunks()[i].Instructions)
	}
}
