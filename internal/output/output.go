// Package output renders command results as text, JSON or YAML.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format selects how a result is rendered
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a --format value
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unknown format %q: want text, json or yaml", s)
	}
}

// Formatter writes results to a writer in one format
type Formatter struct {
	writer io.Writer
	format Format
	width  int
}

// New creates a formatter. A non-positive width disables table fitting.
func New(w io.Writer, format Format, width int) *Formatter {
	if format == "" {
		format = FormatText
	}
	return &Formatter{writer: w, format: format, width: width}
}

// Format returns the formatter's output format
func (f *Formatter) Format() Format {
	return f.format
}

// Width returns the terminal width used to fit tables, or 0
func (f *Formatter) Width() int {
	return f.width
}

// Writer returns the underlying writer
func (f *Formatter) Writer() io.Writer {
	return f.writer
}

// IsStructured reports whether output is machine-readable
func (f *Formatter) IsStructured() bool {
	return f.format == FormatJSON || f.format == FormatYAML
}

// Render writes v as JSON or YAML, or calls text for the text format
func (f *Formatter) Render(v interface{}, text func(*Formatter) error) error {
	switch f.format {
	case FormatJSON:
		return PrintJSON(f.writer, v)
	case FormatYAML:
		return PrintYAML(f.writer, v)
	default:
		return text(f)
	}
}

// NewTable creates a table bound to this formatter's writer and width
func (f *Formatter) NewTable(headers ...string) *Table {
	t := NewTable(f.writer, headers...)
	t.maxWidth = f.width
	return t
}

// PrintJSON writes v as indented JSON
func PrintJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	return nil
}

// PrintYAML writes v as YAML
func PrintYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding yaml: %w", err)
	}
	return enc.Close()
}

// PrintSuccessf prints a success line prefixed with a check mark
func PrintSuccessf(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, "✓ "+format+"\n", args...)
}

// PrintWarningf prints a warning line
func PrintWarningf(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, "⚠ "+format+"\n", args...)
}

// PrintInfof prints an informational line
func PrintInfof(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, "  "+format+"\n", args...)
}

// CountStr formats a count with its noun, e.g. "1 task" or "3 tasks"
func CountStr(count int, singular, plural string) string {
	return fmt.Sprintf("%d %s", count, Pluralize(count, singular, plural))
}
