package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/poku-e/kitchen/internal/view"
)

// StockTableView draws a view.StockTable with a cursor row and low-stock
// highlighting. A negative Cursor marks no row.
type StockTableView struct {
	Headers []string
	Table   view.StockTable
	Cursor  int
	ShowIDs bool
}

func (t StockTableView) headers() []string {
	if t.ShowIDs {
		return append([]string{"ID"}, t.Headers...)
	}
	return t.Headers
}

func (t StockTableView) cells(row view.StockRow) []string {
	if t.ShowIDs {
		return append([]string{row.ID}, row.Cells()...)
	}
	return row.Cells()
}

func (t StockTableView) View(styles Styles) string {
	var sb strings.Builder
	headers := t.headers()

	// Calculate column widths
	colWidths := make([]int, len(headers))
	for i, h := range headers {
		colWidths[i] = lipgloss.Width(h)
	}
	for _, row := range t.Table.Rows {
		for i, cell := range t.cells(row) {
			if i < len(colWidths) {
				colWidths[i] = max(colWidths[i], lipgloss.Width(cell))
			}
		}
	}
	// Add padding to widths because lipgloss Width includes padding
	for i := range colWidths {
		colWidths[i] += 2
	}

	headerStyle := styles.Bold.Padding(0, 1)
	sepStyle := styles.Muted

	sb.WriteString("  ")
	for i, h := range headers {
		sb.WriteString(headerStyle.Width(colWidths[i]).Render(h))
		if i < len(headers)-1 {
			sb.WriteString(sepStyle.Render("|"))
		}
	}
	sb.WriteString("\n")

	totalWidth := len(headers) - 1 + 2
	for _, w := range colWidths {
		totalWidth += w
	}
	sb.WriteString(sepStyle.Render(strings.Repeat("-", totalWidth)) + "\n")

	if len(t.Table.Rows) == 0 {
		sb.WriteString(styles.Muted.Render("  No items.") + "\n")
	}
	for r, row := range t.Table.Rows {
		rowStyle := styles.Body
		if row.LowStock {
			rowStyle = styles.LowStock
		}
		marker := "  "
		if r == t.Cursor {
			marker = styles.Selected.Render("> ")
			rowStyle = rowStyle.Bold(true)
		}
		sb.WriteString(marker)
		cells := t.cells(row)
		for i, cell := range cells {
			if i >= len(colWidths) {
				break
			}
			sb.WriteString(rowStyle.Padding(0, 1).Width(colWidths[i]).Render(cell))
			if i < len(cells)-1 {
				sb.WriteString(sepStyle.Render("|"))
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
