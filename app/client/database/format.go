package database

import (
	"fmt"
	"strings"

	"github.com/elliotchance/pie/v2"
	"github.com/mattn/go-runewidth"
)

const nullValue = "NULL"

func cellText(v any) string {
	if v == nil {
		return nullValue
	}
	return fmt.Sprint(v)
}

// FormatTable draws the result as a box table. Widths are measured in
// terminal cells so wide characters stay aligned.
func FormatTable(result *QueryResult) string {
	if len(result.Rows) == 0 {
		return "No rows returned."
	}

	widths := pie.Map(result.Columns, runewidth.StringWidth)
	cells := make([][]string, len(result.Rows))
	for r, row := range result.Rows {
		cells[r] = make([]string, len(result.Columns))
		for i := range result.Columns {
			var v any
			if i < len(row) {
				v = row[i]
			}
			cells[r][i] = cellText(v)
			widths[i] = max(widths[i], runewidth.StringWidth(cells[r][i]))
		}
	}

	var sb strings.Builder
	rule := func(left, mid, right string) {
		sb.WriteString(left)
		sb.WriteString(strings.Join(pie.Map(widths, func(w int) string { return strings.Repeat("─", w) }), mid))
		sb.WriteString(right)
		sb.WriteString("\n")
	}
	line := func(values []string) {
		padded := make([]string, len(values))
		for i, v := range values {
			padded[i] = runewidth.FillRight(v, widths[i])
		}
		sb.WriteString("│")
		sb.WriteString(strings.Join(padded, "│"))
		sb.WriteString("│\n")
	}

	rule("┌", "┬", "┐")
	line(result.Columns)
	rule("├", "┼", "┤")
	for _, row := range cells {
		line(row)
	}
	rule("└", "┴", "┘")

	return sb.String()
}

// Summary is the text returned by the select tool.
func Summary(result *QueryResult) string {
	return fmt.Sprintf("Query executed.\nColumns: %s\nRows: %d\nResult:\n%s",
		strings.Join(result.Columns, ", "), result.RowCount, FormatTable(result))
}
