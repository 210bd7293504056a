package report

import (
	"fmt"
	"io"
	"strings"
)

// maxColWidth caps a column's display width for readability.
const maxColWidth = 25

// RenderTable writes a bordered fixed-width text table. Each column is
// as wide as its header or its longest value, capped at maxColWidth;
// headers and values are left-justified and truncated to fit.
func RenderTable(w io.Writer, columns []string, rows [][]string) {
	widths := colWidths(columns, rows)

	var border strings.Builder
	border.WriteByte('+')
	for _, width := range widths {
		border.WriteString(strings.Repeat("-", width+2))
		border.WriteByte('+')
	}

	fmt.Fprintf(w, "\n%s\n", border.String())
	fmt.Fprintln(w, formatRow(columns, widths))
	fmt.Fprintln(w, border.String())
	for _, row := range rows {
		fmt.Fprintln(w, formatRow(row, widths))
	}
	fmt.Fprintln(w, border.String())
}

func colWidths(columns []string, rows [][]string) []int {
	widths := make([]int, len(columns))
	for i, col := range columns {
		width := len(col)
		for _, row := range rows {
			if i < len(row) && len(row[i]) > width {
				width = len(row[i])
			}
		}
		if width > maxColWidth {
			width = maxColWidth
		}
		widths[i] = width
	}
	return widths
}

func formatRow(values []string, widths []int) string {
	parts := make([]string, len(widths))
	for i, width := range widths {
		val := ""
		if i < len(values) {
			val = values[i]
		}
		if len(val) > width {
			val = val[:width]
		}
		parts[i] = val + strings.Repeat(" ", width-len(val))
	}
	return "| " + strings.Join(parts, " | ") + " |"
}
