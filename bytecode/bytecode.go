// Package bytecode defines the compiled form of a program. A Program
// and its chunks are immutable once built, so multiple virtual machine
// instances may execute the same Program concurrently.
package bytecode

import (
	"fmt"

	"github.com/delbato/pragmatic-script/object"
	"github.com/delbato/pragmatic-script/op"
	"github.com/delbato/pragmatic-script/types"
)

// Chunk is the compiled body of a single function. Instructions hold
// opcodes with their operands inline.
type Chunk struct {
	// Name is the fully qualified function name, e.g. "root::main".
	Name string

	// Instructions is the opcode stream.
	Instructions []op.Code

	// Constants referenced by LoadConst.
	Constants []object.Value

	// ParamCount is the number of parameters, stored in the first
	// local slots.
	ParamCount int

	// LocalCount is the total number of local slots, parameters
	// included.
	LocalCount int

	// Sig is the function's type signature.
	Sig types.Signature
}

// NativeDecl names a host function the program calls, together with the
// signature it was resolved against.
type NativeDecl struct {
	Module string
	Name   string
	Sig    types.Signature
}

// QualifiedName returns the "module::name" form.
func (n NativeDecl) QualifiedName() string {
	return n.Module + "::" + n.Name
}

// StructDecl is the runtime descriptor for a container type.
type StructDecl struct {
	Name   string // short container name, used by Inspect
	Fields []string
}

// Program is a compiled program: one chunk per function plus the
// descriptor tables the instruction operands index into.
type Program struct {
	chunks    []*Chunk
	funcIndex map[string]int
	natives   []NativeDecl
	structs   []StructDecl
}

// NewProgram assembles a Program from compiled chunks and descriptor
// tables. Instruction operands index into the given slices.
func NewProgram(chunks []*Chunk, natives []NativeDecl, structs []StructDecl) *Program {
	funcIndex := make(map[string]int, len(chunks))
	for i, chunk := range chunks {
		funcIndex[chunk.Name] = i
	}
	return &Program{
		chunks:    chunks,
		funcIndex: funcIndex,
		natives:   natives,
		structs:   structs,
	}
}

// Chunk returns the chunk at the given function index.
func (p *Program) Chunk(index int) (*Chunk, error) {
	if index < 0 || index >= len(p.chunks) {
		return nil, fmt.Errorf("invalid function index %d", index)
	}
	return p.chunks[index], nil
}

// Chunks returns all chunks in function-index order.
func (p *Program) Chunks() []*Chunk { return p.chunks }

// FunctionIndex returns the index of the named function.
func (p *Program) FunctionIndex(qualifiedName string) (int, bool) {
	i, ok := p.funcIndex[qualifiedName]
	return i, ok
}

// Native returns the native descriptor at the given index.
func (p *Program) Native(index int) (NativeDecl, error) {
	if index < 0 || index >= len(p.natives) {
		return NativeDecl{}, fmt.Errorf("invalid native index %d", index)
	}
	return p.natives[index], nil
}

// Natives returns all native descriptors.
func (p *Program) Natives() []NativeDecl { return p.natives }

// Struct returns the struct descriptor at the given index.
func (p *Program) Struct(index int) (StructDecl, error) {
	if index < 0 || index >= len(p.structs) {
		return StructDecl{}, fmt.Errorf("invalid struct index %d", index)
	}
	return p.structs[index], nil
}

// Structs returns all struct descriptors.
func (p *Program) Structs() []StructDecl { return p.structs }
