// Package errz defines the structured error types shared by every stage of
// the pgs pipeline. Each stage fails fast with a single error value carrying
// an error kind, a message, and a source location; runtime errors additionally
// carry a script-level stack trace.
package errz

import (
	"bytes"
	"fmt"
	"strings"
)

// ErrorKind represents the pipeline stage that produced an error.
type ErrorKind int

const (
	// ErrLex indicates an invalid lexical construct in the source text.
	ErrLex ErrorKind = iota
	// ErrParse indicates a structural mismatch while parsing.
	ErrParse
	// ErrResolve indicates an unknown symbol, duplicate definition,
	// unresolvable import, or declared-type mismatch.
	ErrResolve
	// ErrCompile indicates a construct that could not be lowered to bytecode.
	ErrCompile
	// ErrRuntime indicates a fault during VM execution.
	ErrRuntime
)

// String returns the string representation of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case ErrLex:
		return "lex error"
	case ErrParse:
		return "parse error"
	case ErrResolve:
		return "resolve error"
	case ErrCompile:
		return "compile error"
	case ErrRuntime:
		return "runtime error"
	default:
		return "error"
	}
}

// SourceLocation represents a position in source code.
type SourceLocation struct {
	Filename string
	Line     int    // 1-based line number
	Column   int    // 1-based column number
	Source   string // The line of source code
}

// String returns a formatted string representation of the source location.
func (s SourceLocation) String() string {
	if s.Filename != "" {
		return fmt.Sprintf("%s:%d:%d", s.Filename, s.Line, s.Column)
	}
	return fmt.Sprintf("%d:%d", s.Line, s.Column)
}

// IsZero returns true if the location has not been set.
func (s SourceLocation) IsZero() bool {
	return s.Line == 0 && s.Column == 0
}

// StackFrame represents a single frame in the script call stack.
type StackFrame struct {
	Function string
	Location SourceLocation
}

// String returns a formatted string representation of the stack frame.
func (f StackFrame) String() string {
	if f.Function != "" {
		return fmt.Sprintf("at %s (%s)", f.Function, f.Location.String())
	}
	return fmt.Sprintf("at %s", f.Location.String())
}

// FormatStackTrace formats a slice of stack frames as a human-readable string.
func FormatStackTrace(frames []StackFrame) string {
	if len(frames) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Stack trace:\n")
	for _, frame := range frames {
		b.WriteString("  ")
		b.WriteString(frame.String())
		b.WriteString("\n")
	}
	return b.String()
}

// StructuredError is a rich error type with a source location and, for
// runtime errors, a script stack trace. Every error returned across the pgs
// API boundary is a *StructuredError.
type StructuredError struct {
	Message  string
	Kind     ErrorKind
	Location SourceLocation
	Stack    []StackFrame
	Cause    error
}

// Error implements the error interface.
func (e *StructuredError) Error() string {
	if e.Location.IsZero() {
		return fmt.Sprintf("%s: %s", e.Kind.String(), e.Message)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Kind.String(), e.Message,
		e.Location.String())
}

// Unwrap returns the underlying cause of the error.
func (e *StructuredError) Unwrap() error {
	return e.Cause
}

// WithCause wraps the error with a cause.
func (e *StructuredError) WithCause(cause error) *StructuredError {
	e.Cause = cause
	return e
}

// GetStack returns the stack frames of the error.
func (e *StructuredError) GetStack() []StackFrame {
	return e.Stack
}

// GetLocation returns the source location of the error.
func (e *StructuredError) GetLocation() SourceLocation {
	return e.Location
}

// FriendlyErrorMessage returns a human-friendly error message with visual
// context including a source snippet and any stack trace.
func (e *StructuredError) FriendlyErrorMessage() string {
	var msg bytes.Buffer

	// Error header with location
	if e.Location.IsZero() {
		msg.WriteString(fmt.Sprintf("%s: %s\n", e.Kind.String(), e.Message))
	} else {
		msg.WriteString(fmt.Sprintf("%s: %s (%s)\n", e.Kind.String(),
			e.Message, e.Location.String()))
	}

	// Source snippet with caret
	if e.Location.Source != "" {
		msg.WriteString(" | ")
		msg.WriteString(e.Location.Source)
		msg.WriteString("\n")
		if e.Location.Column > 0 {
			msg.WriteString(" | ")
			msg.WriteString(strings.Repeat(" ", e.Location.Column-1))
			msg.WriteString("^\n")
		}
	}

	// Stack trace
	if len(e.Stack) > 0 {
		msg.WriteString("\n")
		msg.WriteString(FormatStackTrace(e.Stack))
	}

	return msg.String()
}

// New creates a new StructuredError with the given kind, message, and location.
func New(kind ErrorKind, message string, loc SourceLocation) *StructuredError {
	return &StructuredError{Message: message, Kind: kind, Location: loc}
}

// Newf creates a new StructuredError with a formatted message.
func Newf(kind ErrorKind, loc SourceLocation, format string, args ...any) *StructuredError {
	return &StructuredError{
		Message:  fmt.Sprintf(format, args...),
		Kind:     kind,
		Location: loc,
	}
}

// NewRuntimeError creates a runtime error with a location and stack trace.
func NewRuntimeError(loc SourceLocation, stack []StackFrame, format string, args ...any) *StructuredError {
	return &StructuredError{
		Message:  fmt.Sprintf(format, args...),
		Kind:     ErrRuntime,
		Location: loc,
		Stack:    stack,
	}
}
