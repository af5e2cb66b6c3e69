// Package tui provides terminal output for cardmark commands.
//
// Commands write through the Output interface so the same code path serves
// styled terminal text and machine-readable JSON (--output json).
package tui

import (
	"io"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Output provides methods for structured output to a terminal.
type Output interface {
	// Success prints a success message.
	Success(msg string)
	// Error prints an error message.
	Error(err error)
	// Warning prints a warning message.
	Warning(msg string)
	// Info prints an informational message.
	Info(msg string)
	// Fields prints labelled values in order.
	Fields(fields []Field)
	// Table prints rows under the given headers.
	Table(headers []string, rows [][]string)
	// JSON outputs a value as formatted JSON.
	JSON(v any) error
}

// Field is one labelled value.
type Field struct {
	Label string
	Value string
}

// NewOutput creates the appropriate output based on format.
func NewOutput(w io.Writer, format string) Output {
	if format == FormatJSON {
		return NewJSONOutput(w)
	}
	return NewTTYOutput(w)
}
