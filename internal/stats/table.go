package stats

import (
	"bufio"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// textTable is a titled plain-text table with optional right-aligned columns.
type textTable struct {
	title   string
	headers []string
	rows    [][]string
	right   map[int]bool
}

// widths returns the display width of every column.
func (t textTable) widths() []int {
	cols := len(t.headers)
	for _, row := range t.rows {
		cols = max(cols, len(row))
	}
	widths := make([]int, cols)
	measure := func(row []string) {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}
	measure(t.headers)
	for _, row := range t.rows {
		measure(row)
	}
	return widths
}

// lines renders the header, a rule and one line per row.
func (t textTable) lines() []string {
	widths := t.widths()
	if len(widths) == 0 {
		return nil
	}
	out := make([]string, 0, len(t.rows)+2)
	if len(t.headers) > 0 {
		out = append(out, t.formatRow(t.headers, widths))
		rule := make([]string, len(widths))
		for i, w := range widths {
			rule[i] = strings.Repeat("─", w)
		}
		out = append(out, strings.Join(rule, " "))
	}
	for _, row := range t.rows {
		out = append(out, t.formatRow(row, widths))
	}
	return out
}

func (t textTable) formatRow(row []string, widths []int) string {
	cells := make([]string, len(widths))
	for i, w := range widths {
		cell := ""
		if i < len(row) {
			cell = row[i]
		}
		if t.right[i] {
			cells[i] = runewidth.FillLeft(cell, w)
		} else {
			cells[i] = runewidth.FillRight(cell, w)
		}
	}
	return strings.TrimRight(strings.Join(cells, " "), " ")
}

// write prints the title, the table and a blank separator line.
func (t textTable) write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if t.title != "" {
		_, _ = bw.WriteString(t.title + "\n")
	}
	for _, line := range t.lines() {
		_, _ = bw.WriteString(line + "\n")
	}
	_, _ = bw.WriteString("\n")
	return bw.Flush()
}
