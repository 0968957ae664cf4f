package cli

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// ansiEscape matches SGR sequences such as colour swatches, which take no
// space on screen.
var ansiEscape = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// Table renders left-aligned columns sized to their widest visible cell.
type Table struct {
	headers []string
	rows    [][]string
	padding int
}

// NewTable creates a new table with the given headers.
func NewTable(headers []string) *Table {
	return &Table{
		headers: headers,
		padding: 2,
	}
}

// AddRow adds a row, padding or truncating it to the header count.
func (t *Table) AddRow(row []string) {
	normalised := make([]string, len(t.headers))
	copy(normalised, row)
	t.rows = append(t.rows, normalised)
}

// Render formats and returns the table as a string.
func (t *Table) Render() string {
	if len(t.headers) == 0 {
		return ""
	}

	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = visibleWidth(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			widths[i] = max(widths[i], visibleWidth(cell))
		}
	}

	var b strings.Builder
	gap := strings.Repeat(" ", t.padding)
	writeLine := func(cells []string) {
		parts := make([]string, len(cells))
		for i, cell := range cells {
			parts[i] = padRight(cell, widths[i])
		}
		b.WriteString(strings.TrimRight(strings.Join(parts, gap), " "))
		b.WriteByte('\n')
	}

	writeLine(t.headers)
	sep := make([]string, len(widths))
	for i, w := range widths {
		sep[i] = strings.Repeat("-", w)
	}
	writeLine(sep)
	for _, row := range t.rows {
		writeLine(row)
	}
	return b.String()
}

// visibleWidth counts the runes of s that occupy a terminal cell.
func visibleWidth(s string) int {
	return utf8.RuneCountInString(ansiEscape.ReplaceAllString(s, ""))
}

// padRight pads s with spaces to the given visible width.
func padRight(s string, width int) string {
	if n := visibleWidth(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}
