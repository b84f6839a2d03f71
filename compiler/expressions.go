package compiler

import (
	"github.com/delbato/pragmatic-script/ast"
	"github.com/delbato/pragmatic-script/object"
	"github.com/delbato/pragmatic-script/op"
	"github.com/delbato/pragmatic-script/resolver"
)

func (c *Compiler) compileExpression(expr ast.Expr) error {
	switch expr := expr.(type) {
	case *ast.Int:
		return c.emitConstant(object.NewInt(expr.Value))
	case *ast.Float:
		return c.emitConstant(object.NewFloat(expr.Value))
	case *ast.String:
		return c.emitConstant(object.NewString(expr.Value))
	case *ast.Bool:
		if expr.Value {
			c.emit(op.True)
		} else {
			c.emit(op.False)
		}
		return nil
	case *ast.Ident:
		return c.compileIdent(expr)
	case *ast.Prefix:
		return c.compilePrefix(expr)
	case *ast.Infix:
		return c.compileInfix(expr)
	case *ast.Call:
		return c.compileCall(expr)
	case *ast.GetField:
		return c.compileGetField(expr)
	case *ast.StructLit:
		return c.compileStructLit(expr)
	case *ast.Assign:
		// A nested assignment leaves unit behind as its value.
		if err := c.compileAssign(expr); err != nil {
			return err
		}
		c.emit(op.Nil)
		return nil
	default:
		return c.errorAt(expr.Pos(), "cannot compile expression")
	}
}

func (c *Compiler) compileIdent(expr *ast.Ident) error {
	sym, ok := c.symbols.Lookup(expr.Name)
	if !ok {
		return c.errorAt(expr.Pos(), "undefined variable %q", expr.Name)
	}
	c.emit(op.LoadFast, op.Code(sym.Index))
	return nil
}

func (c *Compiler) compilePrefix(expr *ast.Prefix) error {
	if err := c.compileExpression(expr.X); err != nil {
		return err
	}
	switch expr.Op {
	case "-":
		c.emit(op.UnaryNegative)
	case "!":
		c.emit(op.UnaryNot)
	default:
		return c.errorAt(expr.OpPos, "unknown prefix operator %q", expr.Op)
	}
	return nil
}

func (c *Compiler) compileInfix(expr *ast.Infix) error {
	if err := c.compileExpression(expr.X); err != nil {
		return err
	}
	if err := c.compileExpression(expr.Y); err != nil {
		return err
	}
	switch expr.Op {
	case "+":
		c.emit(op.BinaryOp, op.Code(op.Add))
	case "-":
		c.emit(op.BinaryOp, op.Code(op.Subtract))
	case "*":
		c.emit(op.BinaryOp, op.Code(op.Multiply))
	case "/":
		c.emit(op.BinaryOp, op.Code(op.Divide))
	case "<":
		c.emit(op.CompareOp, op.Code(op.LessThan))
	case "<=":
		c.emit(op.CompareOp, op.Code(op.LessThanOrEqual))
	case ">":
		c.emit(op.CompareOp, op.Code(op.GreaterThan))
	case ">=":
		c.emit(op.CompareOp, op.Code(op.GreaterThanOrEqual))
	case "==":
		c.emit(op.CompareOp, op.Code(op.Equal))
	case "!=":
		c.emit(op.CompareOp, op.Code(op.NotEqual))
	default:
		return c.errorAt(expr.OpPos, "unknown operator %q", expr.Op)
	}
	return nil
}

// compileCall dispatches on the resolver's analysis of the call site.
// Arguments are pushed left to right; a method receiver goes first.
func (c *Compiler) compileCall(call *ast.Call) error {
	info, ok := c.program.Info.Calls[call]
	if !ok {
		return c.errorAt(call.Pos(), "unresolved call")
	}
	argc := len(call.Args)
	if info.Kind == resolver.MethodCall {
		if err := c.compileExpression(info.Receiver); err != nil {
			return err
		}
		argc++
	}
	for _, arg := range call.Args {
		if err := c.compileExpression(arg); err != nil {
			return err
		}
	}
	if argc > MaxOperand {
		return c.errorAt(call.Pos(), "too many call arguments")
	}
	switch info.Kind {
	case resolver.ScriptCall, resolver.MethodCall:
		index, ok := c.funcIndex[info.Func.QualifiedName]
		if !ok {
			return c.errorAt(call.Pos(), "unresolved function %q",
				info.Func.QualifiedName)
		}
		c.emit(op.Call, op.Code(index), op.Code(argc))
	case resolver.NativeCall:
		index, ok := c.nativeIndex[info.Native.QualifiedName()]
		if !ok {
			return c.errorAt(call.Pos(), "unresolved native %q",
				info.Native.QualifiedName())
		}
		c.emit(op.CallNative, op.Code(index), op.Code(argc))
	}
	return nil
}

func (c *Compiler) compileGetField(expr *ast.GetField) error {
	index, ok := c.program.Info.Fields[expr]
	if !ok {
		return c.errorAt(expr.Name.Pos(), "unresolved field %q", expr.Name.Name)
	}
	if err := c.compileExpression(expr.X); err != nil {
		return err
	}
	c.emit(op.LoadField, op.Code(index))
	return nil
}

// compileStructLit pushes field values in declaration order, reordering
// the written initializers as needed, then emits NewStruct.
func (c *Compiler) compileStructLit(lit *ast.StructLit) error {
	cont, ok := c.program.Info.StructLits[lit]
	if !ok {
		return c.errorAt(lit.Pos(), "unresolved container %q", lit.TypeName.Name)
	}
	index, ok := c.structIndex[cont.QualifiedName]
	if !ok {
		return c.errorAt(lit.Pos(), "unresolved container %q", cont.QualifiedName)
	}
	byIndex := make([]ast.Expr, len(cont.Fields))
	for _, init := range lit.Fields {
		i, ok := cont.FieldIndex(init.Name.Name)
		if !ok {
			return c.errorAt(init.Name.Pos(), "unresolved field %q", init.Name.Name)
		}
		byIndex[i] = init.Value
	}
	for _, value := range byIndex {
		if err := c.compileExpression(value); err != nil {
			return err
		}
	}
	c.emit(op.NewStruct, op.Code(index), op.Code(len(cont.Fields)))
	return nil
}

func (c *Compiler) compileAssign(assign *ast.Assign) error {
	switch target := assign.X.(type) {
	case *ast.Ident:
		if err := c.compileExpression(assign.Value); err != nil {
			return err
		}
		sym, ok := c.symbols.Lookup(target.Name)
		if !ok {
			return c.errorAt(target.Pos(), "undefined variable %q", target.Name)
		}
		c.emit(op.StoreFast, op.Code(sym.Index))
		return nil
	case *ast.GetField:
		index, ok := c.program.Info.Fields[target]
		if !ok {
			return c.errorAt(target.Name.Pos(), "unresolved field %q",
				target.Name.Name)
		}
		if err := c.compileExpression(target.X); err != nil {
			return err
		}
		if err := c.compileExpression(assign.Value); err != nil {
			return err
		}
		c.emit(op.StoreField, op.Code(index))
		return nil
	}
	return c.errorAt(assign.Pos(), "invalid assignment target")
}
