package errz

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/deepnoodle-ai/wonton/assert"
)

func TestErrorString(t *testing.T) {
	err := New(ErrParse, "expected ;", SourceLocation{
		Filename: "main.pgs",
		Line:     3,
		Column:   7,
	})
	assert.Equal(t, "parse error: expected ; (main.pgs:3:7)", err.Error())
}

func TestErrorWithoutLocation(t *testing.T) {
	err := New(ErrRuntime, "division by zero", SourceLocation{})
	assert.Equal(t, "runtime error: division by zero", err.Error())
}

func TestKindStrings(t *testing.T) {
	assert.Equal(t, "lex error", ErrLex.String())
	assert.Equal(t, "parse error", ErrParse.String())
	assert.Equal(t, "resolve error", ErrResolve.String())
	assert.Equal(t, "compile error", ErrCompile.String())
	assert.Equal(t, "runtime error", ErrRuntime.String())
}

func TestUnwrap(t *testing.T) {
	cause := fmt.Errorf("underlying")
	err := New(ErrCompile, "wrapper", SourceLocation{}).WithCause(cause)
	assert.True(t, errors.Is(err, cause))
}

func TestNewf(t *testing.T) {
	err := Newf(ErrResolve, SourceLocation{Line: 1, Column: 1},
		"unknown symbol %q", "foo")
	assert.Equal(t, ErrResolve, err.Kind)
	assert.Equal(t, `unknown symbol "foo"`, err.Message)
}

func TestRuntimeErrorStack(t *testing.T) {
	err := NewRuntimeError(SourceLocation{}, []StackFrame{
		{Function: "root::inner"},
		{Function: "root::main"},
	}, "boom")
	assert.Equal(t, ErrRuntime, err.Kind)
	assert.Len(t, err.GetStack(), 2)
}

func TestFormatterPlain(t *testing.T) {
	err := New(ErrParse, "expected ;", SourceLocation{
		Filename: "main.pgs",
		Line:     2,
		Column:   11,
		Source:   "\tvar x: int 5;",
	})
	out := NewFormatter(false).Format(err)
	assert.True(t, strings.Contains(out, "parse error: expected ;"))
	assert.True(t, strings.Contains(out, "--> main.pgs:2:11"))
	assert.True(t, strings.Contains(out, "var x: int 5;"))
	assert.True(t, strings.Contains(out, "^"))
}

func TestFormatterStackTrace(t *testing.T) {
	err := NewRuntimeError(SourceLocation{}, []StackFrame{
		{Function: "root::inner"},
		{Function: "root::main"},
	}, "division by zero")
	out := NewFormatter(false).Format(err)
	assert.True(t, strings.Contains(out, "root::inner"))
	assert.True(t, strings.Contains(out, "root::main"))
}
