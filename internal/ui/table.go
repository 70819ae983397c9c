package ui

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// Column configures one table column.
type Column struct {
	Header   string
	MaxWidth int // 0 = unlimited; longer cells get ellipsized
}

// Table is a minimal left-aligned text table for command output
// (history listing). No borders, two-space gutters.
type Table struct {
	columns []Column
	rows    [][]string
}

func NewTable(columns ...Column) *Table {
	return &Table{columns: columns}
}

func (t *Table) AddRow(cells ...string) {
	row := make([]string, len(t.columns))
	for i := range t.columns {
		if i < len(cells) {
			row[i] = cells[i]
		}
	}
	t.rows = append(t.rows, row)
}

func (t *Table) Render(w io.Writer) {
	widths := make([]int, len(t.columns))
	for i, col := range t.columns {
		widths[i] = utf8.RuneCountInString(col.Header)
	}

	clipped := make([][]string, len(t.rows))
	for ri, row := range t.rows {
		clipped[ri] = make([]string, len(row))
		for i, cell := range row {
			cell = clip(cell, t.columns[i].MaxWidth)
			clipped[ri][i] = cell
			if n := utf8.RuneCountInString(cell); n > widths[i] {
				widths[i] = n
			}
		}
	}

	headers := make([]string, len(t.columns))
	for i, col := range t.columns {
		headers[i] = col.Header
	}
	writeRow(w, headers, widths)
	for _, row := range clipped {
		writeRow(w, row, widths)
	}
}

func writeRow(w io.Writer, cells []string, widths []int) {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		pad := widths[i] - utf8.RuneCountInString(cell)
		parts[i] = cell + strings.Repeat(" ", pad)
	}
	fmt.Fprintln(w, strings.TrimRight(strings.Join(parts, "  "), " "))
}

func clip(s string, maxWidth int) string {
	if maxWidth <= 0 || utf8.RuneCountInString(s) <= maxWidth {
		return s
	}
	runes := []rune(s)
	if maxWidth == 1 {
		return "…"
	}
	return string(runes[:maxWidth-1]) + "…"
}
