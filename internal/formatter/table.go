// Package formatter renders CLI output tables over text/tabwriter.
package formatter

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// Table renders rows in aligned columns under a header and separator line.
// A table with no rows renders nothing.
type Table struct {
	out      io.Writer
	headers  []string
	rows     [][]string
	maxWidth map[int]int // column index -> max width (0 = unlimited)
}

// NewTable creates a table that writes to w with the given column headers.
func NewTable(w io.Writer, headers ...string) *Table {
	return &Table{
		out:      w,
		headers:  headers,
		maxWidth: make(map[int]int),
	}
}

// SetMaxWidth caps the display width of a column (0-indexed). Values
// exceeding the limit are truncated with "...".
func (t *Table) SetMaxWidth(col, width int) *Table {
	t.maxWidth[col] = width
	return t
}

// AddRow appends a data row. Extra values beyond the header count are
// dropped; missing values are filled with empty strings.
func (t *Table) AddRow(values ...string) {
	row := make([]string, len(t.headers))
	for i := range row {
		if i < len(values) {
			row[i] = t.clip(i, values[i])
		}
	}
	t.rows = append(t.rows, row)
}

// Render writes the table. Must be called after all AddRow calls.
func (t *Table) Render() error {
	if len(t.rows) == 0 {
		return nil
	}

	w := tabwriter.NewWriter(t.out, 0, 0, 2, ' ', 0)

	//nolint:errcheck // tabwriter output, surfaced by Flush
	fmt.Fprintln(w, strings.Join(t.headers, "\t"))

	seps := make([]string, len(t.headers))
	for i, h := range t.headers {
		seps[i] = strings.Repeat("-", len(h))
	}
	//nolint:errcheck // tabwriter output, surfaced by Flush
	fmt.Fprintln(w, strings.Join(seps, "\t"))

	for _, row := range t.rows {
		//nolint:errcheck // tabwriter output, surfaced by Flush
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	return w.Flush()
}

func (t *Table) clip(col int, s string) string {
	max, ok := t.maxWidth[col]
	if !ok || max <= 0 || len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
