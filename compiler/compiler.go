// Package compiler translates a resolved program into bytecode. Each
// function becomes one chunk. Compilation is a single pass over each
// function body, with forward jump targets backpatched once known.
package compiler

import (
	"math"

	"github.com/delbato/pragmatic-script/ast"
	"github.com/delbato/pragmatic-script/bytecode"
	"github.com/delbato/pragmatic-script/errz"
	"github.com/delbato/pragmatic-script/object"
	"github.com/delbato/pragmatic-script/op"
	"github.com/delbato/pragmatic-script/resolver"
	"github.com/delbato/pragmatic-script/token"
)

// Placeholder marks a forward jump operand that is patched later.
const Placeholder = math.MaxUint16

// MaxOperand is the largest value an instruction operand can hold.
const MaxOperand = math.MaxUint16 - 1

// Compile translates a resolved program into bytecode.
func Compile(program *resolver.Program, options ...Option) (*bytecode.Program, error) {
	c := &Compiler{
		program:     program,
		funcIndex:   map[string]int{},
		nativeIndex: map[string]int{},
		structIndex: map[string]int{},
	}
	for _, opt := range options {
		opt(c)
	}
	return c.compile()
}

// Option is a configuration function for a Compiler.
type Option func(*Compiler)

// WithFilename sets the filename reported in error locations.
func WithFilename(filename string) Option {
	return func(c *Compiler) { c.filename = filename }
}

// Compiler holds state for compiling one program.
type Compiler struct {
	filename string
	program  *resolver.Program

	funcIndex   map[string]int
	nativeIndex map[string]int
	structIndex map[string]int

	// per-function state
	chunk   *bytecode.Chunk
	symbols *SymbolTable
	loops   []*loop
}

// loop tracks the jump targets of one loop being compiled. Break jumps
// are backpatched when the loop's end is known.
type loop struct {
	start  int   // target of continue jumps
	breaks []int // positions of break jump instructions

	// iterOnStack is set for a for loop, whose iterator must be popped
	// when a break leaves the loop early.
	iterOnStack bool
}

func (c *Compiler) compile() (*bytecode.Program, error) {
	// Descriptor tables are indexed in resolution order, which follows
	// declaration order, so output is deterministic.
	natives := make([]bytecode.NativeDecl, 0, len(c.program.Natives))
	for i, ref := range c.program.Natives {
		c.nativeIndex[ref.QualifiedName()] = i
		natives = append(natives, bytecode.NativeDecl{
			Module: ref.Module,
			Name:   ref.Name,
			Sig:    ref.Sig,
		})
	}
	structs := make([]bytecode.StructDecl, 0, len(c.program.Containers))
	for i, cont := range c.program.Containers {
		c.structIndex[cont.QualifiedName] = i
		fields := make([]string, 0, len(cont.Fields))
		for _, field := range cont.Fields {
			fields = append(fields, field.Name)
		}
		structs = append(structs, bytecode.StructDecl{
			Name:   cont.Name,
			Fields: fields,
		})
	}
	for i, fn := range c.program.Functions {
		c.funcIndex[fn.QualifiedName] = i
	}
	chunks := make([]*bytecode.Chunk, 0, len(c.program.Functions))
	for _, fn := range c.program.Functions {
		chunk, err := c.compileFunction(fn)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, chunk)
	}
	return bytecode.NewProgram(chunks, natives, structs), nil
}

func (c *Compiler) compileFunction(fn *resolver.Function) (*bytecode.Chunk, error) {
	c.chunk = &bytecode.Chunk{
		Name:       fn.QualifiedName,
		ParamCount: len(fn.Decl.Params),
		Sig:        fn.Sig,
	}
	c.symbols = NewSymbolTable()
	c.loops = nil
	for _, param := range fn.Decl.Params {
		if _, err := c.symbols.Declare(param.Name.Name); err != nil {
			return nil, c.errorAt(param.Name.Pos(), "%v", err)
		}
	}
	if err := c.compileBlock(fn.Decl.Body); err != nil {
		return nil, err
	}
	// Falling off the end returns unit. The resolver guarantees this
	// is only reachable for unit functions.
	c.emit(op.Nil)
	c.emit(op.ReturnValue)
	c.chunk.LocalCount = c.symbols.Count()
	return c.chunk, nil
}

func (c *Compiler) compileBlock(block *ast.Block) error {
	c.symbols = c.symbols.NewBlock()
	defer func() { c.symbols = c.symbols.parent }()
	for _, stmt := range block.Stmts {
		if err := c.compileStatement(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (c *Compiler) compileStatement(stmt ast.Stmt) error {
	switch stmt := stmt.(type) {
	case *ast.Var:
		return c.compileVar(stmt)
	case *ast.Return:
		return c.compileReturn(stmt)
	case *ast.If:
		return c.compileIf(stmt)
	case *ast.While:
		return c.compileWhile(stmt)
	case *ast.Loop:
		return c.compileLoop(stmt)
	case *ast.For:
		return c.compileFor(stmt)
	case *ast.Break:
		return c.compileBreak(stmt)
	case *ast.Continue:
		return c.compileContinue(stmt)
	case *ast.ExprStmt:
		return c.compileExprStatement(stmt)
	default:
		return c.errorAt(stmt.Pos(), "cannot compile statement")
	}
}

func (c *Compiler) compileVar(stmt *ast.Var) error {
	if err := c.compileExpression(stmt.Value); err != nil {
		return err
	}
	sym, err := c.symbols.Declare(stmt.Name.Name)
	if err != nil {
		return c.errorAt(stmt.Name.Pos(), "%v", err)
	}
	c.emit(op.StoreFast, op.Code(sym.Index))
	return nil
}

func (c *Compiler) compileReturn(stmt *ast.Return) error {
	if stmt.Value == nil {
		c.emit(op.Nil)
	} else if err := c.compileExpression(stmt.Value); err != nil {
		return err
	}
	c.emit(op.ReturnValue)
	return nil
}

func (c *Compiler) compileIf(stmt *ast.If) error {
	if err := c.compileExpression(stmt.Cond); err != nil {
		return err
	}
	jumpOverBody := c.emit(op.PopJumpForwardIfFalse, Placeholder)
	if err := c.compileBlock(stmt.Body); err != nil {
		return err
	}
	if stmt.Else == nil {
		if err := c.patchForward(jumpOverBody); err != nil {
			return c.errorAt(stmt.Pos(), "%v", err)
		}
		return nil
	}
	jumpOverElse := c.emit(op.JumpForward, Placeholder)
	if err := c.patchForward(jumpOverBody); err != nil {
		return c.errorAt(stmt.Pos(), "%v", err)
	}
	if err := c.compileBlock(stmt.Else); err != nil {
		return err
	}
	if err := c.patchForward(jumpOverElse); err != nil {
		return c.errorAt(stmt.Pos(), "%v", err)
	}
	return nil
}

func (c *Compiler) compileWhile(stmt *ast.While) error {
	start := c.position()
	if err := c.compileExpression(stmt.Cond); err != nil {
		return err
	}
	exit := c.emit(op.PopJumpForwardIfFalse, Placeholder)
	c.loops = append(c.loops, &loop{start: start})
	if err := c.compileBlock(stmt.Body); err != nil {
		return err
	}
	if err := c.finishLoop(stmt.Pos(), start, exit); err != nil {
		return err
	}
	return nil
}

func (c *Compiler) compileLoop(stmt *ast.Loop) error {
	start := c.position()
	c.loops = append(c.loops, &loop{start: start})
	if err := c.compileBlock(stmt.Body); err != nil {
		return err
	}
	return c.finishLoop(stmt.Pos(), start, -1)
}

// compileFor lowers `for x in e` to GetIter followed by a ForIter test
// at the top of each iteration. The iterator stays on the stack for the
// duration of the loop; ForIter pops it on exhaustion and break pops it
// explicitly.
func (c *Compiler) compileFor(stmt *ast.For) error {
	if err := c.compileExpression(stmt.Iter); err != nil {
		return err
	}
	c.emit(op.GetIter)
	start := c.position()
	exit := c.emit(op.ForIter, Placeholder)
	c.symbols = c.symbols.NewBlock()
	defer func() { c.symbols = c.symbols.parent }()
	sym, err := c.symbols.Declare(stmt.Name.Name)
	if err != nil {
		return c.errorAt(stmt.Name.Pos(), "%v", err)
	}
	c.emit(op.StoreFast, op.Code(sym.Index))
	c.loops = append(c.loops, &loop{start: start, iterOnStack: true})
	for _, s := range stmt.Body.Stmts {
		if err := c.compileStatement(s); err != nil {
			return err
		}
	}
	return c.finishLoop(stmt.Pos(), start, exit)
}

// finishLoop emits the backward jump to the loop start, patches the
// conditional exit if there is one, and patches all break jumps to land
// after the loop.
func (c *Compiler) finishLoop(pos token.Position, start, exit int) error {
	delta := c.position() - start
	if delta > MaxOperand {
		return c.errorAt(pos, "loop body too large to compile")
	}
	c.emit(op.JumpBackward, op.Code(delta))
	if exit >= 0 {
		if err := c.patchForward(exit); err != nil {
			return c.errorAt(pos, "%v", err)
		}
	}
	current := c.loops[len(c.loops)-1]
	c.loops = c.loops[:len(c.loops)-1]
	for _, breakPos := range current.breaks {
		if err := c.patchForward(breakPos); err != nil {
			return c.errorAt(pos, "%v", err)
		}
	}
	return nil
}

func (c *Compiler) compileBreak(stmt *ast.Break) error {
	if len(c.loops) == 0 {
		return c.errorAt(stmt.Pos(), "break outside of a loop")
	}
	current := c.loops[len(c.loops)-1]
	if current.iterOnStack {
		c.emit(op.PopTop)
	}
	current.breaks = append(current.breaks, c.emit(op.JumpForward, Placeholder))
	return nil
}

func (c *Compiler) compileContinue(stmt *ast.Continue) error {
	if len(c.loops) == 0 {
		return c.errorAt(stmt.Pos(), "continue outside of a loop")
	}
	current := c.loops[len(c.loops)-1]
	delta := c.position() - current.start
	if delta > MaxOperand {
		return c.errorAt(stmt.Pos(), "loop body too large to compile")
	}
	c.emit(op.JumpBackward, op.Code(delta))
	return nil
}

// compileExprStatement discards the expression value. Assignments push
// nothing, so they get no PopTop.
func (c *Compiler) compileExprStatement(stmt *ast.ExprStmt) error {
	if assign, ok := stmt.X.(*ast.Assign); ok {
		return c.compileAssign(assign)
	}
	if err := c.compileExpression(stmt.X); err != nil {
		return err
	}
	c.emit(op.PopTop)
	return nil
}

// ---------------------------------------------------------------------------
// Instruction emission

// emit appends an instruction and returns its position in the chunk.
func (c *Compiler) emit(opcode op.Code, operands ...op.Code) int {
	pos := len(c.chunk.Instructions)
	c.chunk.Instructions = append(c.chunk.Instructions, opcode)
	c.chunk.Instructions = append(c.chunk.Instructions, operands...)
	return pos
}

// position returns the index the next instruction will occupy.
func (c *Compiler) position() int {
	return len(c.chunk.Instructions)
}

// patchForward sets the operand of the forward jump at instrPos so that
// it lands on the next instruction to be emitted. Deltas are measured
// from the jump instruction itself.
func (c *Compiler) patchForward(instrPos int) error {
	delta := c.position() - instrPos
	if delta > MaxOperand {
		return errz.New(errz.ErrCompile,
			"jump distance too large to compile", errz.SourceLocation{})
	}
	c.chunk.Instructions[instrPos+1] = op.Code(delta)
	return nil
}

// constant adds a constant to the chunk pool, reusing an existing equal
// entry, and returns its index.
func (c *Compiler) constant(value object.Value) (int, error) {
	for i, existing := range c.chunk.Constants {
		if existing.Equals(value) {
			return i, nil
		}
	}
	index := len(c.chunk.Constants)
	if index > MaxOperand {
		return 0, errz.New(errz.ErrCompile,
			"too many constants in one function", errz.SourceLocation{})
	}
	c.chunk.Constants = append(c.chunk.Constants, value)
	return index, nil
}

func (c *Compiler) emitConstant(value object.Value) error {
	index, err := c.constant(value)
	if err != nil {
		return err
	}
	c.emit(op.LoadConst, op.Code(index))
	return nil
}

func (c *Compiler) errorAt(pos token.Position, format string, args ...interface{}) error {
	return errz.Newf(errz.ErrCompile, errz.SourceLocation{
		Filename: c.filename,
		Line:     pos.LineNumber(),
		Column:   pos.ColumnNumber(),
	}, format, args...)
}
