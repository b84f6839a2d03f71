package resolver

import (
	"github.com/delbato/pragmatic-script/ast"
	"github.com/delbato/pragmatic-script/types"
)

// checker walks one function body, maintaining the lexical scope stack
// and annotating the program's side tables.
type checker struct {
	r         *Resolver
	fn        *Function
	scopes    []map[string]types.Type
	loopDepth int
}

func (r *Resolver) checkFunction(fn *Function) error {
	c := &checker{r: r, fn: fn}
	c.pushScope()
	for i, param := range fn.Decl.Params {
		name := param.Name.Name
		if _, dup := c.scopes[0][name]; dup {
			return r.errorAt(param.Name.Pos(),
				"duplicate parameter %q in function %s", name, fn.Name)
		}
		c.scopes[0][name] = fn.Sig.Params[i]
	}
	if err := c.checkBlock(fn.Decl.Body); err != nil {
		return err
	}
	if !fn.Sig.Result.Equals(types.UnitType) && !blockReturns(fn.Decl.Body) {
		return r.errorAt(fn.Decl.Name.Pos(),
			"function %s declares return type %s but can fall off the end",
			fn.Name, fn.Sig.Result)
	}
	return nil
}

// blockReturns reports whether control cannot flow past the block. Only
// a trailing return, a fully covered if/else or a break-free loop count.
func blockReturns(block *ast.Block) bool {
	if len(block.Stmts) == 0 {
		return false
	}
	switch last := block.Stmts[len(block.Stmts)-1].(type) {
	case *ast.Return:
		return true
	case *ast.If:
		return last.Else != nil && blockReturns(last.Body) && blockReturns(last.Else)
	case *ast.Loop:
		return !containsBreak(last.Body)
	}
	return false
}

func containsBreak(block *ast.Block) bool {
	for _, stmt := range block.Stmts {
		switch stmt := stmt.(type) {
		case *ast.Break:
			return true
		case *ast.If:
			if containsBreak(stmt.Body) {
				return true
			}
			if stmt.Else != nil && containsBreak(stmt.Else) {
				return true
			}
		}
		// break inside a nested loop binds to that loop
	}
	return false
}

func (c *checker) pushScope() {
	c.scopes = append(c.scopes, map[string]types.Type{})
}

func (c *checker) popScope() {
	c.scopes = c.scopes[:len(c.scopes)-1]
}

func (c *checker) lookupVar(name string) (types.Type, bool) {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if t, ok := c.scopes[i][name]; ok {
			return t, true
		}
	}
	return types.Type{}, false
}

func (c *checker) checkBlock(block *ast.Block) error {
	c.pushScope()
	defer c.popScope()
	for _, stmt := range block.Stmts {
		if err := c.checkStatement(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (c *checker) checkStatement(stmt ast.Stmt) error {
	switch stmt := stmt.(type) {
	case *ast.Var:
		return c.checkVar(stmt)
	case *ast.Return:
		return c.checkReturn(stmt)
	case *ast.If:
		if err := c.checkCondition(stmt.Cond); err != nil {
			return err
		}
		if err := c.checkBlock(stmt.Body); err != nil {
			return err
		}
		if stmt.Else != nil {
			return c.checkBlock(stmt.Else)
		}
		return nil
	case *ast.While:
		if err := c.checkCondition(stmt.Cond); err != nil {
			return err
		}
		return c.checkLoopBody(stmt.Body)
	case *ast.Loop:
		return c.checkLoopBody(stmt.Body)
	case *ast.For:
		return c.checkFor(stmt)
	case *ast.Break:
		if c.loopDepth == 0 {
			return c.r.errorAt(stmt.Pos(), "break outside of a loop")
		}
		return nil
	case *ast.Continue:
		if c.loopDepth == 0 {
			return c.r.errorAt(stmt.Pos(), "continue outside of a loop")
		}
		return nil
	case *ast.ExprStmt:
		_, err := c.typeOf(stmt.X)
		return err
	default:
		return c.r.errorAt(stmt.Pos(), "unsupported statement")
	}
}

func (c *checker) checkLoopBody(body *ast.Block) error {
	c.loopDepth++
	defer func() { c.loopDepth-- }()
	return c.checkBlock(body)
}

func (c *checker) checkVar(stmt *ast.Var) error {
	declared, err := c.r.resolveType(c.fn.Module, stmt.Type)
	if err != nil {
		return err
	}
	actual, err := c.typeOf(stmt.Value)
	if err != nil {
		return err
	}
	if !declared.Equals(actual) {
		return c.r.errorAt(stmt.Value.Pos(),
			"cannot initialize %s variable %q with %s value",
			declared, stmt.Name.Name, actual)
	}
	name := stmt.Name.Name
	if _, dup := c.scopes[len(c.scopes)-1][name]; dup {
		return c.r.errorAt(stmt.Name.Pos(),
			"duplicate variable %q in this scope", name)
	}
	c.scopes[len(c.scopes)-1][name] = declared
	return nil
}

func (c *checker) checkReturn(stmt *ast.Return) error {
	want := c.fn.Sig.Result
	if stmt.Value == nil {
		if !want.Equals(types.UnitType) {
			return c.r.errorAt(stmt.Pos(),
				"function %s must return %s", c.fn.Name, want)
		}
		return nil
	}
	got, err := c.typeOf(stmt.Value)
	if err != nil {
		return err
	}
	if !want.Equals(got) {
		return c.r.errorAt(stmt.Value.Pos(),
			"function %s returns %s, not %s", c.fn.Name, want, got)
	}
	return nil
}

func (c *checker) checkFor(stmt *ast.For) error {
	iterType, err := c.typeOf(stmt.Iter)
	if err != nil {
		return err
	}
	if !iterType.Equals(types.IntType) {
		return c.r.errorAt(stmt.Iter.Pos(),
			"cannot iterate a %s value", iterType)
	}
	c.loopDepth++
	defer func() { c.loopDepth-- }()
	c.pushScope()
	defer c.popScope()
	c.scopes[len(c.scopes)-1][stmt.Name.Name] = types.IntType
	for _, s := range stmt.Body.Stmts {
		if err := c.checkStatement(s); err != nil {
			return err
		}
	}
	return nil
}

func (c *checker) checkCondition(cond ast.Expr) error {
	t, err := c.typeOf(cond)
	if err != nil {
		return err
	}
	if !t.Equals(types.BoolType) {
		return c.r.errorAt(cond.Pos(), "condition must be bool, not %s", t)
	}
	return nil
}

// typeOf computes and records the static type of an expression.
func (c *checker) typeOf(expr ast.Expr) (types.Type, error) {
	t, err := c.computeType(expr)
	if err != nil {
		return types.Type{}, err
	}
	c.r.program.Info.Types[expr] = t
	return t, nil
}

func (c *checker) computeType(expr ast.Expr) (types.Type, error) {
	switch expr := expr.(type) {
	case *ast.Int:
		return types.IntType, nil
	case *ast.Float:
		return types.FloatType, nil
	case *ast.String:
		return types.StringType, nil
	case *ast.Bool:
		return types.BoolType, nil
	case *ast.Ident:
		if t, ok := c.lookupVar(expr.Name); ok {
			return t, nil
		}
		return types.Type{}, c.r.errorAt(expr.Pos(),
			"unknown symbol %q", expr.Name)
	case *ast.Prefix:
		return c.checkPrefix(expr)
	case *ast.Infix:
		return c.checkInfix(expr)
	case *ast.Assign:
		return c.checkAssign(expr)
	case *ast.Call:
		return c.checkCall(expr)
	case *ast.GetField:
		return c.checkGetField(expr)
	case *ast.StructLit:
		return c.checkStructLit(expr)
	default:
		return types.Type{}, c.r.errorAt(expr.Pos(), "unsupported expression")
	}
}

func (c *checker) checkPrefix(expr *ast.Prefix) (types.Type, error) {
	operand, err := c.typeOf(expr.X)
	if err != nil {
		return types.Type{}, err
	}
	switch expr.Op {
	case "-":
		if !operand.IsNumeric() {
			return types.Type{}, c.r.errorAt(expr.Pos(),
				"cannot negate a %s value", operand)
		}
		return operand, nil
	case "!":
		if !operand.Equals(types.BoolType) {
			return types.Type{}, c.r.errorAt(expr.Pos(),
				"cannot apply ! to a %s value", operand)
		}
		return types.BoolType, nil
	}
	return types.Type{}, c.r.errorAt(expr.Pos(),
		"unknown prefix operator %q", expr.Op)
}

func (c *checker) checkInfix(expr *ast.Infix) (types.Type, error) {
	left, err := c.typeOf(expr.X)
	if err != nil {
		return types.Type{}, err
	}
	right, err := c.typeOf(expr.Y)
	if err != nil {
		return types.Type{}, err
	}
	switch expr.Op {
	case "+":
		if left.Equals(types.StringType) && right.Equals(types.StringType) {
			return types.StringType, nil
		}
		fallthrough
	case "-", "*", "/":
		if left.IsNumeric() && left.Equals(right) {
			return left, nil
		}
	case "==", "!=":
		if left.Equals(right) {
			return types.BoolType, nil
		}
	case "<", "<=", ">", ">=":
		if left.IsNumeric() && left.Equals(right) {
			return types.BoolType, nil
		}
	default:
		return types.Type{}, c.r.errorAt(expr.OpPos,
			"unknown operator %q", expr.Op)
	}
	return types.Type{}, c.r.errorAt(expr.OpPos,
		"operator %s is not defined for %s and %s", expr.Op, left, right)
}

// checkAssign validates an assignment. Assignments are statements in
// spirit: their type is unit, so they cannot be chained or nested.
func (c *checker) checkAssign(expr *ast.Assign) (types.Type, error) {
	value, err := c.typeOf(expr.Value)
	if err != nil {
		return types.Type{}, err
	}
	switch target := expr.X.(type) {
	case *ast.Ident:
		t, ok := c.lookupVar(target.Name)
		if !ok {
			return types.Type{}, c.r.errorAt(target.Pos(),
				"unknown variable %q", target.Name)
		}
		if !t.Equals(value) {
			return types.Type{}, c.r.errorAt(expr.Value.Pos(),
				"cannot assign %s value to %s variable %q",
				value, t, target.Name)
		}
	case *ast.GetField:
		fieldType, err := c.checkGetField(target)
		if err != nil {
			return types.Type{}, err
		}
		if !fieldType.Equals(value) {
			return types.Type{}, c.r.errorAt(expr.Value.Pos(),
				"cannot assign %s value to %s field %q",
				value, fieldType, target.Name.Name)
		}
	default:
		return types.Type{}, c.r.errorAt(expr.Pos(), "invalid assignment target")
	}
	return types.UnitType, nil
}

func (c *checker) checkCall(call *ast.Call) (types.Type, error) {
	switch fun := call.Fun.(type) {
	case *ast.Ident:
		return c.checkNamedCall(call, fun)
	case *ast.GetField:
		return c.checkSelectorCall(call, fun)
	}
	return types.Type{}, c.r.errorAt(call.Pos(), "expression is not callable")
}

// checkNamedCall handles `name(args)` where name is a function declared
// in an enclosing module or bound by an import.
func (c *checker) checkNamedCall(call *ast.Call, fun *ast.Ident) (types.Type, error) {
	if _, isVar := c.lookupVar(fun.Name); isVar {
		return types.Type{}, c.r.errorAt(fun.Pos(),
			"%q is a variable, not a function", fun.Name)
	}
	sym, ok := c.lookupSymbol(fun.Name)
	if !ok {
		return types.Type{}, c.r.errorAt(fun.Pos(),
			"unknown function %q", fun.Name)
	}
	c.r.program.Info.Symbols[fun] = sym
	switch sym.Kind {
	case FuncSymbol:
		if err := c.checkArgs(call, sym.Func.Sig, call.Args); err != nil {
			return types.Type{}, err
		}
		c.r.program.Info.Calls[call] = &CallInfo{Kind: ScriptCall, Func: sym.Func}
		return sym.Func.Sig.Result, nil
	case NativeSymbol:
		if err := c.checkArgs(call, sym.Native.Sig, call.Args); err != nil {
			return types.Type{}, err
		}
		c.r.program.Info.Calls[call] = &CallInfo{Kind: NativeCall, Native: sym.Native}
		return sym.Native.Sig.Result, nil
	case ContainerSymbol:
		return types.Type{}, c.r.errorAt(fun.Pos(),
			"%q is a container; use a struct literal to construct it", fun.Name)
	case ModuleSymbol:
		return types.Type{}, c.r.errorAt(fun.Pos(),
			"%q is a module, not a function", fun.Name)
	}
	return types.Type{}, c.r.errorAt(fun.Pos(), "unknown function %q", fun.Name)
}

// checkSelectorCall handles `x.name(args)`: either a member call on an
// imported module or a method call on a container-typed receiver.
func (c *checker) checkSelectorCall(call *ast.Call, fun *ast.GetField) (types.Type, error) {
	if ident, ok := fun.X.(*ast.Ident); ok {
		if _, isVar := c.lookupVar(ident.Name); !isVar {
			if sym, ok := c.lookupSymbol(ident.Name); ok && sym.Kind == ModuleSymbol {
				return c.checkModuleMemberCall(call, fun, ident, sym)
			}
		}
	}
	recvType, err := c.typeOf(fun.X)
	if err != nil {
		return types.Type{}, err
	}
	cont, ok := c.r.containerFor(recvType)
	if !ok {
		return types.Type{}, c.r.errorAt(fun.Name.Pos(),
			"cannot call method %q on a %s value", fun.Name.Name, recvType)
	}
	method, ok := cont.Methods[fun.Name.Name]
	if !ok {
		return types.Type{}, c.r.errorAt(fun.Name.Pos(),
			"container %s has no method %q", cont.Name, fun.Name.Name)
	}
	// The receiver fills the method's first parameter.
	args := append([]ast.Expr{fun.X}, call.Args...)
	if err := c.checkArgs(call, method.Sig, args); err != nil {
		return types.Type{}, err
	}
	c.r.program.Info.Calls[call] = &CallInfo{
		Kind:     MethodCall,
		Func:     method,
		Receiver: fun.X,
	}
	return method.Sig.Result, nil
}

func (c *checker) checkModuleMemberCall(call *ast.Call, fun *ast.GetField,
	ident *ast.Ident, sym *Symbol) (types.Type, error) {

	member, ok := lookupDeclared(sym.Module, fun.Name.Name)
	if !ok || member.Kind != FuncSymbol {
		return types.Type{}, c.r.errorAt(fun.Name.Pos(),
			"module %s has no function %q", sym.Module.Path, fun.Name.Name)
	}
	c.r.program.Info.Symbols[ident] = sym
	if err := c.checkArgs(call, member.Func.Sig, call.Args); err != nil {
		return types.Type{}, err
	}
	c.r.program.Info.Calls[call] = &CallInfo{Kind: ScriptCall, Func: member.Func}
	return member.Func.Sig.Result, nil
}

func (c *checker) checkArgs(call *ast.Call, sig types.Signature, args []ast.Expr) error {
	if len(args) != len(sig.Params) {
		return c.r.errorAt(call.Pos(),
			"call expects %d arguments, got %d", len(sig.Params), len(args))
	}
	for i, arg := range args {
		argType, err := c.typeOf(arg)
		if err != nil {
			return err
		}
		if !argType.Equals(sig.Params[i]) {
			return c.r.errorAt(arg.Pos(),
				"argument %d must be %s, got %s", i+1, sig.Params[i], argType)
		}
	}
	return nil
}

// lookupSymbol resolves a non-variable name against the enclosing
// module chain, innermost first.
func (c *checker) lookupSymbol(name string) (*Symbol, bool) {
	for m := c.fn.Module; m != nil; m = m.Parent {
		if sym, ok := m.Lookup(name); ok {
			return sym, true
		}
	}
	return nil, false
}

func (c *checker) checkGetField(expr *ast.GetField) (types.Type, error) {
	recvType, err := c.typeOf(expr.X)
	if err != nil {
		return types.Type{}, err
	}
	cont, ok := c.r.containerFor(recvType)
	if !ok {
		return types.Type{}, c.r.errorAt(expr.Name.Pos(),
			"cannot access field %q on a %s value", expr.Name.Name, recvType)
	}
	index, ok := cont.FieldIndex(expr.Name.Name)
	if !ok {
		return types.Type{}, c.r.errorAt(expr.Name.Pos(),
			"container %s has no field %q", cont.Name, expr.Name.Name)
	}
	c.r.program.Info.Fields[expr] = index
	return cont.Fields[index].Type, nil
}

// checkStructLit requires every field of the container to be initialized
// exactly once. Order is free; the compiler reorders into declaration
// order.
func (c *checker) checkStructLit(lit *ast.StructLit) (types.Type, error) {
	sym, ok := c.lookupSymbol(lit.TypeName.Name)
	if !ok || sym.Kind != ContainerSymbol {
		return types.Type{}, c.r.errorAt(lit.TypeName.Pos(),
			"unknown container %q", lit.TypeName.Name)
	}
	cont := sym.Container
	seen := make(map[string]bool, len(lit.Fields))
	for _, init := range lit.Fields {
		name := init.Name.Name
		index, ok := cont.FieldIndex(name)
		if !ok {
			return types.Type{}, c.r.errorAt(init.Name.Pos(),
				"container %s has no field %q", cont.Name, name)
		}
		if seen[name] {
			return types.Type{}, c.r.errorAt(init.Name.Pos(),
				"field %q initialized twice", name)
		}
		seen[name] = true
		valueType, err := c.typeOf(init.Value)
		if err != nil {
			return types.Type{}, err
		}
		if !valueType.Equals(cont.Fields[index].Type) {
			return types.Type{}, c.r.errorAt(init.Value.Pos(),
				"field %q must be %s, got %s",
				name, cont.Fields[index].Type, valueType)
		}
	}
	if len(seen) != len(cont.Fields) {
		for _, field := range cont.Fields {
			if !seen[field.Name] {
				return types.Type{}, c.r.errorAt(lit.Pos(),
					"missing field %q in %s literal", field.Name, cont.Name)
			}
		}
	}
	c.r.program.Info.StructLits[lit] = cont
	c.r.program.Info.Symbols[lit.TypeName] = sym
	return cont.Type(), nil
}
