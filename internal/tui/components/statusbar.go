package components

import (
	"strings"

	"github.com/theirongolddev/iexpense/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// RenderStatusBar renders the bottom status bar: key hints on the left,
// an optional flash message in the middle and right-aligned totals.
func RenderStatusBar(width int, hints, flash, totals string) string {
	t := theme.Active

	style := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Width(width)
	flashStyle := lipgloss.NewStyle().Foreground(t.Warn)
	totalsStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Bold(true)

	left := " " + hints
	if flash != "" {
		left += "  " + flashStyle.Render(flash)
	}
	right := ""
	if totals != "" {
		right = totalsStyle.Render(totals) + " "
	}

	padding := width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}

	return style.Render(left + strings.Repeat(" ", padding) + right)
}
