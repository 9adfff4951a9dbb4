package presentation

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

const (
	maxColumnWidth = 60
	columnGap      = "  "
	ellipsis       = "…"
)

type tableRenderer struct {
	w      io.Writer
	header lipgloss.Style
	footer lipgloss.Style
}

// newTableRenderer styles headers for w's color profile. Writers that are not
// terminals get plain text.
func newTableRenderer(w io.Writer) *tableRenderer {
	r := lipgloss.NewRenderer(w)
	return &tableRenderer{
		w:      w,
		header: r.NewStyle().Bold(true),
		footer: r.NewStyle().Faint(true),
	}
}

// render writes an aligned table. Cells wider than maxColumnWidth are
// truncated; widths are measured in terminal cells.
func (t *tableRenderer) render(headers []string, rows [][]string, footer string) error {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i := range headers {
			if i < len(row) {
				widths[i] = max(widths[i], min(runewidth.StringWidth(row[i]), maxColumnWidth))
			}
		}
	}

	var b strings.Builder
	b.WriteString(t.header.Render(line(headers, widths)))
	b.WriteByte('\n')
	for _, row := range rows {
		b.WriteString(line(row, widths))
		b.WriteByte('\n')
	}
	if footer != "" {
		b.WriteString(t.footer.Render(footer))
		b.WriteByte('\n')
	}

	_, err := io.WriteString(t.w, b.String())
	return err
}

func line(cells []string, widths []int) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		cell := ""
		if i < len(cells) {
			cell = strings.ReplaceAll(cells[i], "\n", " ")
		}
		cell = runewidth.Truncate(cell, w, ellipsis)
		if i < len(widths)-1 {
			cell = runewidth.FillRight(cell, w)
		}
		parts[i] = cell
	}
	return strings.TrimRight(strings.Join(parts, columnGap), " ")
}
