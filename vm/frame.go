package vm

import (
	"github.com/delbato/pragmatic-script/bytecode"
	"github.com/delbato/pragmatic-script/object"
)

// frame is one entry in the call stack. It owns the local slots of the
// activated function and remembers where to resume the caller.
type frame struct {
	chunk    *bytecode.Chunk
	locals   []object.Value
	returnIP int // caller's instruction pointer
	baseSP   int // operand stack height at activation
}

func (f *frame) activate(chunk *bytecode.Chunk, returnIP, baseSP int) {
	f.chunk = chunk
	f.returnIP = returnIP
	f.baseSP = baseSP
	if cap(f.locals) < chunk.LocalCount {
		f.locals = make([]object.Value, chunk.LocalCount)
	} else {
		f.locals = f.locals[:chunk.LocalCount]
		for i := range f.locals {
			f.locals[i] = nil
		}
	}
}
