package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// ProgressBar renders a Unicode progress bar with a done/total count.
func ProgressBar(done, total, width int) string {
	if total <= 0 {
		total = 1
	}
	if width < 5 {
		width = 28
	}
	filled := int(float64(done) / float64(total) * float64(width))
	if filled > width {
		filled = width
	}
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + fmt.Sprintf("] %d/%d", done, total)
}

// Panel draws lines inside a framed box using the current theme.
func Panel(w io.Writer, lines []string) {
	t := Current()
	border := lipgloss.NewStyle().
		Border(t.Border).
		Padding(0, 1)
	if !disableColor && (forceColor || IsTTY(w)) && t.BorderColor != "" {
		border = border.BorderForeground(t.BorderColor)
	}
	fmt.Fprintln(w, border.Render(strings.Join(lines, "\n")))
}

// Truncate shortens s to at most width terminal cells, marking the cut with "…".
func Truncate(s string, width int) string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}
