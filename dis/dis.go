// Package dis provides a human readable disassembly of compiled chunks,
// for debugging the compiler and inspecting what a script turned into.
package dis

import (
	"fmt"
	"io"
	"strings"

	"github.com/deepnoodle-ai/wonton/color"
	"github.com/delbato/pragmatic-script/bytecode"
	"github.com/delbato/pragmatic-script/op"
)

// Options configures disassembly output.
type Options struct {
	// UseColor enables ANSI colors in the output.
	UseColor bool
}

// Program writes a disassembly of every chunk in the program.
func Program(w io.Writer, program *bytecode.Program, opts Options) error {
	for i, chunk := range program.Chunks() {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if err := Chunk(w, chunk, opts); err != nil {
			return err
		}
	}
	return nil
}

// Chunk writes a disassembly of one chunk.
func Chunk(w io.Writer, chunk *bytecode.Chunk, opts Options) error {
	header := fmt.Sprintf("%s %s (locals: %d)",
		chunk.Name, chunk.Sig, chunk.LocalCount)
	if opts.UseColor {
		header = color.Cyan.Apply(header)
	}
	if _, err := fmt.Fprintln(w, header); err != nil {
		return err
	}
	instructions := chunk.Instructions
	for ip := 0; ip < len(instructions); {
		info := op.GetInfo(instructions[ip])
		name := info.Name
		if name == "" {
			name = fmt.Sprintf("UNKNOWN<%d>", instructions[ip])
		}
		operands := make([]string, 0, info.OperandCount)
		for i := 0; i < info.OperandCount; i++ {
			operands = append(operands,
				fmt.Sprintf("%d", instructions[ip+1+i]))
		}
		line := fmt.Sprintf("%6d  %-26s %s",
			ip, name, strings.Join(operands, " "))
		if note := annotate(chunk, instructions[ip], operands); note != "" {
			if opts.UseColor {
				note = color.BrightBlack.Apply(note)
			}
			line += "  " + note
		}
		if _, err := fmt.Fprintln(w, strings.TrimRight(line, " ")); err != nil {
			return err
		}
		ip += 1 + info.OperandCount
	}
	return nil
}

// annotate returns a comment for operands that index into the constant
// pool, so that disassembly shows the value being loaded.
func annotate(chunk *bytecode.Chunk, opcode op.Code, operands []string) string {
	if opcode != op.LoadConst || len(operands) != 1 {
		return ""
	}
	var index int
	if _, err := fmt.Sscanf(operands[0], "%d", &index); err != nil {
		return ""
	}
	if index < 0 || index >= len(chunk.Constants) {
		return ""
	}
	return "(" + chunk.Constants[index].Inspect() + ")"
}
