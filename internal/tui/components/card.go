// Package components provides reusable TUI widgets for the iexpense list.
package components

import (
	"github.com/theirongolddev/iexpense/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Metric is one labelled value in a metric strip.
type Metric struct {
	Label string
	Value string
	Color lipgloss.Color // empty -> TextPrimary
}

// LayoutRow distributes totalWidth into n widths that sum to exactly totalWidth.
// First items absorb the remainder from integer division.
func LayoutRow(totalWidth, n int) []int {
	if n <= 0 {
		return nil
	}
	base := totalWidth / n
	remainder := totalWidth % n
	widths := make([]int, n)
	for i := range widths {
		widths[i] = base
		if i < remainder {
			widths[i]++
		}
	}
	return widths
}

// MetricCard renders a small bordered card with a label over a value.
// outerWidth is the total rendered width including border.
func MetricCard(m Metric, outerWidth int) string {
	t := theme.Active

	contentWidth := outerWidth - 2
	if contentWidth < 10 {
		contentWidth = 10
	}

	color := m.Color
	if color == "" {
		color = t.TextPrimary
	}

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Width(contentWidth).
		Padding(0, 1)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	valueStyle := lipgloss.NewStyle().Foreground(color).Bold(true)

	return cardStyle.Render(labelStyle.Render(m.Label) + "\n" + valueStyle.Render(m.Value))
}

// MetricStrip renders metrics side by side, summing to exactly totalWidth.
func MetricStrip(metrics []Metric, totalWidth int) string {
	if len(metrics) == 0 {
		return ""
	}
	widths := LayoutRow(totalWidth, len(metrics))
	cards := make([]string, len(metrics))
	for i, m := range metrics {
		cards[i] = MetricCard(m, widths[i])
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

// ContentCard renders a bordered card with an optional title. A focused
// card gets the accent border.
// outerWidth controls the total rendered width including border.
func ContentCard(title, body string, outerWidth int, focused bool) string {
	t := theme.Active

	contentWidth := outerWidth - 2
	if contentWidth < 10 {
		contentWidth = 10
	}

	border := t.Border
	if focused {
		border = t.BorderAccent
	}

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Width(contentWidth).
		Padding(0, 1)

	titleStyle := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Bold(true)

	content := ""
	if title != "" {
		content = titleStyle.Render(title) + "\n"
	}
	content += body

	return cardStyle.Render(content)
}

// CardInnerWidth returns the usable text width inside a ContentCard
// given its outer width (subtracts border + padding).
func CardInnerWidth(outerWidth int) int {
	w := outerWidth - 4 // 2 border + 2 padding
	if w < 10 {
		w = 10
	}
	return w
}
