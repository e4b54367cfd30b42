package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Text outputs plain text to the formatter's writer
func (f *Formatter) Text(format string, args ...interface{}) {
	fmt.Fprintf(f.writer, format, args...)
}

// Textln outputs plain text with a newline to the formatter's writer
func (f *Formatter) Textln(format string, args ...interface{}) {
	fmt.Fprintf(f.writer, format+"\n", args...)
}

// Line outputs a blank line
func (f *Formatter) Line() {
	fmt.Fprintln(f.writer)
}

// Table outputs tabular data in text format. Widths are measured in
// terminal cells so wide runes stay aligned.
type Table struct {
	writer   io.Writer
	headers  []string
	rows     [][]string
	widths   []int
	maxWidth int
}

// NewTable creates a new table with headers
func NewTable(w io.Writer, headers ...string) *Table {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	return &Table{
		writer:  w,
		headers: headers,
		rows:    [][]string{},
		widths:  widths,
	}
}

// AddRow adds a row to the table
func (t *Table) AddRow(cols ...string) {
	for i, c := range cols {
		if w := runewidth.StringWidth(c); i < len(t.widths) && w > t.widths[i] {
			t.widths[i] = w
		}
	}
	t.rows = append(t.rows, cols)
}

// Len returns the number of rows
func (t *Table) Len() int {
	return len(t.rows)
}

// Render outputs the table. When a max width is set the last column is
// truncated so each line fits.
func (t *Table) Render() {
	widths := t.fitWidths()

	t.renderRow(t.headers, widths)

	seps := make([]string, len(widths))
	for i, w := range widths {
		seps[i] = strings.Repeat("-", w)
	}
	t.renderRow(seps, widths)

	for _, row := range t.rows {
		t.renderRow(row, widths)
	}
}

func (t *Table) fitWidths() []int {
	widths := append([]int(nil), t.widths...)
	if t.maxWidth <= 0 || len(widths) == 0 {
		return widths
	}
	// Two leading spaces plus two between columns.
	used := 2 + 2*(len(widths)-1)
	for _, w := range widths[:len(widths)-1] {
		used += w
	}
	last := t.maxWidth - used
	if last < 4 {
		last = 4
	}
	if widths[len(widths)-1] > last {
		widths[len(widths)-1] = last
	}
	return widths
}

func (t *Table) renderRow(cols []string, widths []int) {
	var b strings.Builder
	b.WriteString("  ")
	for i, w := range widths {
		if i > 0 {
			b.WriteString("  ")
		}
		cell := ""
		if i < len(cols) {
			cell = Truncate(cols[i], w)
		}
		if i == len(widths)-1 {
			b.WriteString(cell)
			continue
		}
		b.WriteString(runewidth.FillRight(cell, w))
	}
	fmt.Fprintln(t.writer, strings.TrimRight(b.String(), " "))
}

// Truncate shortens s to at most maxWidth terminal cells, adding "..." if needed.
func Truncate(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	// When maxWidth too small for content + ellipsis, just cut
	if maxWidth <= 3 {
		return runewidth.Truncate(s, maxWidth, "")
	}
	return runewidth.Truncate(s, maxWidth, "...")
}

// Pluralize returns singular or plural form based on count
func Pluralize(count int, singular, plural string) string {
	if count == 1 {
		return singular
	}
	return plural
}

// Percent formats a 0..1 ratio as a whole percentage
func Percent(ratio float64) string {
	return fmt.Sprintf("%d%%", int(ratio*100+0.5))
}
