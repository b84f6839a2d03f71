// Package vm executes compiled bytecode. A VM owns its operand and call
// stacks exclusively, so one VM runs one call at a time, but any number
// of VM instances may execute the same immutable program concurrently.
package vm

import (
	"context"

	"github.com/delbato/pragmatic-script/bytecode"
	"github.com/delbato/pragmatic-script/errz"
	"github.com/delbato/pragmatic-script/native"
	"github.com/delbato/pragmatic-script/object"
	"github.com/delbato/pragmatic-script/op"
	"github.com/delbato/pragmatic-script/types"
)

const (
	// MaxStackDepth is the capacity of the operand stack.
	MaxStackDepth = 1024

	// MaxFrameDepth is the maximum call nesting.
	MaxFrameDepth = 1024

	// ctxCheckInterval is how many instructions run between context
	// cancellation checks.
	ctxCheckInterval = 1024
)

// VM is a stack based virtual machine for compiled programs.
type VM struct {
	program  *bytecode.Program
	registry *native.Registry
	observer Observer

	// natives holds the host functions bound to the program's native
	// table, index-aligned with program.Natives().
	natives []*native.Function

	stack   [MaxStackDepth]object.Value
	sp      int // points to the next free stack slot
	frames  [MaxFrameDepth]frame
	fp      int // number of active frames
	current *frame
	ip      int
}

// New returns a VM for the given program.
func New(program *bytecode.Program, options ...Option) *VM {
	vm := &VM{program: program}
	for _, opt := range options {
		opt(vm)
	}
	return vm
}

// Call runs the named function with the given arguments and returns its
// result. The call runs to completion before Call returns; the context
// is checked periodically inside the loop and passed through to native
// functions.
func (vm *VM) Call(ctx context.Context, entry string, args []object.Value) (object.Value, error) {
	index, ok := vm.program.FunctionIndex(entry)
	if !ok {
		return nil, errz.Newf(errz.ErrRuntime, errz.SourceLocation{},
			"unknown function %q", entry)
	}
	chunk, err := vm.program.Chunk(index)
	if err != nil {
		return nil, vm.runtimeError("%v", err)
	}
	if err := vm.bindNatives(); err != nil {
		return nil, err
	}
	if len(args) != chunk.ParamCount {
		return nil, vm.runtimeError(
			"function %s expects %d arguments, got %d",
			entry, chunk.ParamCount, len(args))
	}
	for i, arg := range args {
		if kindOf(arg) != chunk.Sig.Params[i].Kind {
			return nil, vm.runtimeError(
				"argument %d of %s must be %s, got %s",
				i+1, entry, chunk.Sig.Params[i], arg.Type())
		}
	}
	vm.sp = 0
	vm.fp = 1
	vm.current = &vm.frames[0]
	vm.current.activate(chunk, 0, 0)
	copy(vm.current.locals, args)
	vm.ip = 0
	return vm.eval(ctx)
}

// bindNatives resolves the program's native table against the registry
// and verifies that every registered signature still matches the one
// the program was compiled against.
func (vm *VM) bindNatives() error {
	decls := vm.program.Natives()
	if len(decls) == 0 {
		vm.natives = nil
		return nil
	}
	if vm.registry == nil {
		return vm.runtimeError("program requires native functions but no registry was provided")
	}
	vm.natives = make([]*native.Function, len(decls))
	for i, decl := range decls {
		fn, err := vm.registry.Lookup(decl.Module, decl.Name)
		if err != nil {
			return vm.runtimeError("%v", err)
		}
		if !fn.Sig.Equals(decl.Sig) {
			return vm.runtimeError(
				"native %s is registered as %s but the program expects %s",
				decl.QualifiedName(), fn.Sig, decl.Sig)
		}
		vm.natives[i] = fn
	}
	return nil
}

func (vm *VM) eval(ctx context.Context) (object.Value, error) {
	steps := 0
	for {
		if steps%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		steps++

		instructions := vm.current.chunk.Instructions
		if vm.ip >= len(instructions) {
			return nil, vm.runtimeError("instruction pointer out of range")
		}
		base := vm.ip
		if vm.observer != nil && !vm.observer.OnStep(vm.current.chunk, base) {
			return nil, vm.runtimeError("execution halted by observer")
		}
		opcode := instructions[vm.ip]
		vm.ip++

		switch opcode {

		case op.Nop:

		case op.Halt:
			return object.Unit, nil

		case op.LoadConst:
			index := vm.fetch()
			constants := vm.current.chunk.Constants
			if int(index) >= len(constants) {
				return nil, vm.runtimeError("invalid constant index %d", index)
			}
			if err := vm.push(constants[index]); err != nil {
				return nil, err
			}

		case op.Nil:
			if err := vm.push(object.Unit); err != nil {
				return nil, err
			}

		case op.True:
			if err := vm.push(object.True); err != nil {
				return nil, err
			}

		case op.False:
			if err := vm.push(object.False); err != nil {
				return nil, err
			}

		case op.LoadFast:
			index := vm.fetch()
			if err := vm.push(vm.current.locals[index]); err != nil {
				return nil, err
			}

		case op.StoreFast:
			index := vm.fetch()
			vm.current.locals[index] = vm.pop()

		case op.PopTop:
			vm.pop()

		case op.BinaryOp:
			opType := op.BinaryOpType(vm.fetch())
			right := vm.pop()
			left := vm.pop()
			result, err := object.BinaryOp(opType, left, right)
			if err != nil {
				return nil, vm.runtimeError("%v", err)
			}
			if err := vm.push(result); err != nil {
				return nil, err
			}

		case op.CompareOp:
			opType := op.CompareOpType(vm.fetch())
			right := vm.pop()
			left := vm.pop()
			result, err := object.Compare(opType, left, right)
			if err != nil {
				return nil, vm.runtimeError("%v", err)
			}
			if err := vm.push(result); err != nil {
				return nil, err
			}

		case op.UnaryNegative:
			result, err := object.Negate(vm.pop())
			if err != nil {
				return nil, vm.runtimeError("%v", err)
			}
			if err := vm.push(result); err != nil {
				return nil, err
			}

		case op.UnaryNot:
			result, err := object.Not(vm.pop())
			if err != nil {
				return nil, vm.runtimeError("%v", err)
			}
			if err := vm.push(result); err != nil {
				return nil, err
			}

		case op.JumpForward:
			delta := vm.fetch()
			vm.ip = base + int(delta)

		case op.JumpBackward:
			delta := vm.fetch()
			vm.ip = base - int(delta)

		case op.PopJumpForwardIfFalse:
			delta := vm.fetch()
			truthy, err := object.IsTruthy(vm.pop())
			if err != nil {
				return nil, vm.runtimeError("%v", err)
			}
			if !truthy {
				vm.ip = base + int(delta)
			}

		case op.GetIter:
			iter, err := object.NewIterator(vm.pop())
			if err != nil {
				return nil, vm.runtimeError("%v", err)
			}
			if err := vm.push(iter); err != nil {
				return nil, err
			}

		case op.ForIter:
			delta := vm.fetch()
			iter, ok := vm.peek().(object.Iterator)
			if !ok {
				return nil, vm.runtimeError("for loop expects an iterator")
			}
			value, ok := iter.Next()
			if !ok {
				vm.pop()
				vm.ip = base + int(delta)
				continue
			}
			if err := vm.push(value); err != nil {
				return nil, err
			}

		case op.NewStruct:
			structIndex := vm.fetch()
			fieldCount := int(vm.fetch())
			decl, err := vm.program.Struct(int(structIndex))
			if err != nil {
				return nil, vm.runtimeError("%v", err)
			}
			fields := make([]object.Value, fieldCount)
			for i := fieldCount - 1; i >= 0; i-- {
				fields[i] = vm.pop()
			}
			s := object.NewStruct(decl.Name, decl.Fields, fields)
			if err := vm.push(s); err != nil {
				return nil, err
			}

		case op.LoadField:
			index := vm.fetch()
			s, ok := vm.pop().(*object.Struct)
			if !ok {
				return nil, vm.runtimeError("field access on a non-struct value")
			}
			value, err := s.Get(int(index))
			if err != nil {
				return nil, vm.runtimeError("%v", err)
			}
			if err := vm.push(value); err != nil {
				return nil, err
			}

		case op.StoreField:
			index := vm.fetch()
			value := vm.pop()
			s, ok := vm.pop().(*object.Struct)
			if !ok {
				return nil, vm.runtimeError("field store on a non-struct value")
			}
			if err := s.Set(int(index), value); err != nil {
				return nil, vm.runtimeError("%v", err)
			}

		case op.Call:
			funcIndex := vm.fetch()
			argc := int(vm.fetch())
			if err := vm.call(int(funcIndex), argc); err != nil {
				return nil, err
			}

		case op.CallNative:
			nativeIndex := vm.fetch()
			argc := int(vm.fetch())
			if err := vm.callNative(ctx, int(nativeIndex), argc); err != nil {
				return nil, err
			}

		case op.ReturnValue:
			value := vm.pop()
			if vm.observer != nil {
				vm.observer.OnReturn(vm.current.chunk)
			}
			vm.sp = vm.current.baseSP
			vm.fp--
			if vm.fp == 0 {
				return value, nil
			}
			returnIP := vm.current.returnIP
			vm.current = &vm.frames[vm.fp-1]
			vm.ip = returnIP
			if err := vm.push(value); err != nil {
				return nil, err
			}

		default:
			return nil, vm.runtimeError("unknown opcode %d", opcode)
		}
	}
}

// call activates a script function. The argc topmost stack values
// become the callee's first local slots.
func (vm *VM) call(funcIndex, argc int) error {
	chunk, err := vm.program.Chunk(funcIndex)
	if err != nil {
		return vm.runtimeError("%v", err)
	}
	if vm.fp >= MaxFrameDepth {
		return vm.runtimeError("stack overflow: call depth exceeds %d", MaxFrameDepth)
	}
	if vm.observer != nil && !vm.observer.OnCall(chunk) {
		return vm.runtimeError("execution halted by observer")
	}
	frame := &vm.frames[vm.fp]
	vm.fp++
	frame.activate(chunk, vm.ip, vm.sp-argc)
	for i := argc - 1; i >= 0; i-- {
		frame.locals[i] = vm.pop()
	}
	vm.current = frame
	vm.ip = 0
	return nil
}

// callNative invokes a host function. Arity and argument kinds are
// validated against the declared signature before the function runs; on
// mismatch the function is never invoked.
func (vm *VM) callNative(ctx context.Context, nativeIndex, argc int) error {
	decl, err := vm.program.Native(nativeIndex)
	if err != nil {
		return vm.runtimeError("%v", err)
	}
	fn := vm.natives[nativeIndex]
	if argc != len(decl.Sig.Params) {
		return vm.runtimeError("native %s expects %d arguments, got %d",
			decl.QualifiedName(), len(decl.Sig.Params), argc)
	}
	args := make([]object.Value, argc)
	for i := argc - 1; i >= 0; i-- {
		args[i] = vm.pop()
	}
	for i, arg := range args {
		if kindOf(arg) != decl.Sig.Params[i].Kind {
			return vm.runtimeError(
				"argument %d of native %s must be %s, got %s",
				i+1, decl.QualifiedName(), decl.Sig.Params[i], arg.Type())
		}
	}
	result, err := fn.Fn(ctx, args...)
	if err != nil {
		return vm.runtimeError("native %s failed: %v", decl.QualifiedName(), err)
	}
	if result == nil {
		result = object.Unit
	}
	if kindOf(result) != decl.Sig.Result.Kind {
		return vm.runtimeError("native %s returned %s, expected %s",
			decl.QualifiedName(), result.Type(), decl.Sig.Result)
	}
	return vm.push(result)
}

func (vm *VM) fetch() op.Code {
	code := vm.current.chunk.Instructions[vm.ip]
	vm.ip++
	return code
}

func (vm *VM) push(value object.Value) error {
	if vm.sp >= MaxStackDepth {
		return vm.runtimeError("stack overflow: operand stack exceeds %d", MaxStackDepth)
	}
	vm.stack[vm.sp] = value
	vm.sp++
	return nil
}

func (vm *VM) pop() object.Value {
	vm.sp--
	value := vm.stack[vm.sp]
	vm.stack[vm.sp] = nil
	return value
}

func (vm *VM) peek() object.Value {
	return vm.stack[vm.sp-1]
}

// runtimeError builds a runtime error carrying the current call stack.
func (vm *VM) runtimeError(format string, args ...interface{}) error {
	stack := make([]errz.StackFrame, 0, vm.fp)
	for i := vm.fp - 1; i >= 0; i-- {
		if vm.frames[i].chunk == nil {
			continue
		}
		stack = append(stack, errz.StackFrame{
			Function: vm.frames[i].chunk.Name,
		})
	}
	return errz.NewRuntimeError(errz.SourceLocation{}, stack, format, args...)
}

// kindOf maps a runtime value to its static type kind.
func kindOf(v object.Value) types.Kind {
	switch v.(type) {
	case *object.Int:
		return types.Int
	case *object.Float:
		return types.Float
	case *object.String:
		return types.String
	case *object.Bool:
		return types.Bool
	case *object.Struct:
		return types.Container
	default:
		return types.Unit
	}
}

// Run constructs a VM and calls the entry function in one step.
func Run(ctx context.Context, program *bytecode.Program, entry string,
	args []object.Value, options ...Option) (object.Value, error) {
	return New(program, options...).Call(ctx, entry, args)
}
