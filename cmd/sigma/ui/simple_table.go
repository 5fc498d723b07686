package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// DefaultMaxCellWidth caps a column so long inputs don't wrap the table.
const DefaultMaxCellWidth = 60

// SimpleTable renders static rows such as block lists and template indexes.
type SimpleTable struct {
	Title   string
	Headers []string
	Rows    [][]string
	// MaxCellWidth truncates wider cells with an ellipsis. Zero disables it.
	MaxCellWidth int
}

// NewSimpleTable creates a table with the given title and headers.
func NewSimpleTable(title string, headers []string) *SimpleTable {
	return &SimpleTable{
		Title:        title,
		Headers:      headers,
		Rows:         make([][]string, 0),
		MaxCellWidth: DefaultMaxCellWidth,
	}
}

// AddRow adds a row. Missing cells render empty; extra cells are ignored.
func (t *SimpleTable) AddRow(row ...string) {
	t.Rows = append(t.Rows, row)
}

// View renders the table. An empty table renders as "".
func (t *SimpleTable) View(styles Styles) string {
	if len(t.Rows) == 0 {
		return ""
	}

	var sb strings.Builder
	if t.Title != "" {
		sb.WriteString(styles.Title.Render(t.Title))
		sb.WriteString("\n")
	}

	cells := make([][]string, len(t.Rows))
	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = lipgloss.Width(h)
	}
	for r, row := range t.Rows {
		cells[r] = make([]string, len(t.Headers))
		for i := range t.Headers {
			if i < len(row) {
				cells[r][i] = truncate(row[i], t.MaxCellWidth)
			}
			if w := lipgloss.Width(cells[r][i]); w > widths[i] {
				widths[i] = w
			}
		}
	}

	// lipgloss Width includes padding
	for i := range widths {
		widths[i] += 2
	}

	headerStyle := styles.Bold.Padding(0, 1)
	rowStyle := styles.Body.Padding(0, 1)
	sep := styles.Muted.Render("|")

	writeRow := func(style lipgloss.Style, row []string) {
		for i, cell := range row {
			sb.WriteString(style.Width(widths[i]).Render(cell))
			if i < len(row)-1 {
				sb.WriteString(sep)
			}
		}
		sb.WriteString("\n")
	}

	writeRow(headerStyle, t.Headers)

	total := len(widths) - 1
	for _, w := range widths {
		total += w
	}
	sb.WriteString(styles.Muted.Render(strings.Repeat("-", total)))
	sb.WriteString("\n")

	for _, row := range cells {
		writeRow(rowStyle, row)
	}
	return sb.String()
}

func truncate(s string, max int) string {
	if max <= 0 || lipgloss.Width(s) <= max {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > max {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}
