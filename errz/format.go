package errz

import (
	"fmt"
	"strings"

	"github.com/deepnoodle-ai/wonton/color"
)

// Formatter formats structured errors with colors and a Rust-like style.
// The pipeline core never prints; embedders that want friendly output can
// use a Formatter to render the errors returned by each stage.
type Formatter struct {
	// UseColor enables ANSI color codes in output.
	UseColor bool
}

// NewFormatter creates a new error formatter.
func NewFormatter(useColor bool) *Formatter {
	return &Formatter{UseColor: useColor}
}

// Colors used for error formatting
var (
	colorError     = color.Red
	colorErrorBold = color.BrightRed
	colorLocation  = color.Cyan
	colorLineNum   = color.BrightBlack
	colorPipe      = color.BrightBlack
	colorCaret     = color.BrightRed
)

// Format renders the error with a header, a location arrow, a source snippet
// with a caret, and any stack trace.
func (f *Formatter) Format(err *StructuredError) string {
	var b strings.Builder

	// Header: "resolve error: message"
	label := err.Kind.String()
	if f.UseColor {
		b.WriteString(colorErrorBold.Apply(label))
		b.WriteString(colorError.Apply(": "))
	} else {
		b.WriteString(label)
		b.WriteString(": ")
	}
	b.WriteString(err.Message)
	b.WriteString("\n")

	loc := err.Location
	lineNumWidth := 2
	if loc.Line >= 100 {
		lineNumWidth = len(fmt.Sprintf("%d", loc.Line))
	}
	padding := strings.Repeat(" ", lineNumWidth)

	// Location arrow: "  --> file.pgs:10:5"
	if !loc.IsZero() || loc.Filename != "" {
		arrow := padding + "--> "
		if f.UseColor {
			b.WriteString(colorLocation.Apply(arrow + loc.String()))
		} else {
			b.WriteString(arrow + loc.String())
		}
		b.WriteString("\n")
	}

	// Source snippet with line number and caret
	if loc.Source != "" {
		lineNumStr := fmt.Sprintf("%*d", lineNumWidth, loc.Line)
		if f.UseColor {
			b.WriteString(colorLineNum.Apply(padding) + colorPipe.Apply(" |\n"))
			b.WriteString(colorLineNum.Apply(lineNumStr) + colorPipe.Apply(" | "))
			b.WriteString(loc.Source)
			b.WriteString("\n")
		} else {
			b.WriteString(padding + " |\n")
			b.WriteString(lineNumStr + " | ")
			b.WriteString(loc.Source)
			b.WriteString("\n")
		}
		if loc.Column > 0 {
			caret := strings.Repeat(" ", loc.Column-1) + "^"
			if f.UseColor {
				b.WriteString(colorLineNum.Apply(padding) + colorPipe.Apply(" | "))
				b.WriteString(colorCaret.Apply(caret))
			} else {
				b.WriteString(padding + " | " + caret)
			}
			b.WriteString("\n")
		}
	}

	if len(err.Stack) > 0 {
		b.WriteString("\n")
		b.WriteString(FormatStackTrace(err.Stack))
	}

	return b.String()
}
