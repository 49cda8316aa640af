package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Flexoki Dark palette for non-TUI output.
var (
	ColorBorder    = lipgloss.Color("#282726")
	ColorTextDim   = lipgloss.Color("#575653")
	ColorTextMuted = lipgloss.Color("#6F6E69")
	ColorText      = lipgloss.Color("#FFFCF0")
	ColorAccent    = lipgloss.Color("#3AA99F")
	ColorGreen     = lipgloss.Color("#879A39")
	ColorYellow    = lipgloss.Color("#D0A215")
	ColorRed       = lipgloss.Color("#D14D41")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText).
			Align(lipgloss.Center)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	valueStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	mutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	dimStyle = lipgloss.NewStyle().
			Foreground(ColorTextDim)

	levelStyles = map[Level]lipgloss.Style{
		LevelLow:  lipgloss.NewStyle().Foreground(ColorGreen),
		LevelMid:  lipgloss.NewStyle().Foreground(ColorYellow),
		LevelHigh: lipgloss.NewStyle().Foreground(ColorRed),
	}
)

// Table represents a bordered text table for CLI output. Cells may already
// carry ANSI styling; widths are measured visually.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	// RightAlign marks columns to right-align. Missing entries are left-aligned.
	RightAlign []bool
}

// Separator is a row value that renders as a horizontal rule.
var Separator = []string{"---"}

// AmountStyle returns the colour style for an amount level.
func AmountStyle(l Level) lipgloss.Style {
	return levelStyles[l]
}

// Muted renders s in the muted text colour.
func Muted(s string) string {
	return mutedStyle.Render(s)
}

// RenderTitle renders a centered title bar in a bordered box.
func RenderTitle(title string) string {
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Width(55).
		Align(lipgloss.Center).
		Padding(0, 1)

	return border.Render(titleStyle.Render(title))
}

// RenderTable renders a bordered table with headers and rows.
func RenderTable(t Table) string {
	numCols := len(t.Headers)
	for _, row := range t.Rows {
		if len(row) > numCols && !isSeparator(row) {
			numCols = len(row)
		}
	}
	if numCols == 0 {
		return ""
	}

	widths := make([]int, numCols)
	measure := func(row []string) {
		for i, cell := range row {
			if w := lipgloss.Width(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}
	measure(t.Headers)
	for _, row := range t.Rows {
		if !isSeparator(row) {
			measure(row)
		}
	}

	rule := func(left, mid, right string) string {
		parts := make([]string, numCols)
		for i, w := range widths {
			parts[i] = strings.Repeat("─", w+2)
		}
		return dimStyle.Render(left+strings.Join(parts, mid)+right) + "\n"
	}

	line := func(row []string, style lipgloss.Style) string {
		var b strings.Builder
		b.WriteString(dimStyle.Render("│"))
		for i := 0; i < numCols; i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			pad := strings.Repeat(" ", widths[i]-lipgloss.Width(cell))
			if i < len(t.RightAlign) && t.RightAlign[i] {
				cell = pad + style.Render(cell)
			} else {
				cell = style.Render(cell) + pad
			}
			b.WriteString(" " + cell + " ")
			b.WriteString(dimStyle.Render("│"))
		}
		b.WriteString("\n")
		return b.String()
	}

	var b strings.Builder
	if t.Title != "" {
		b.WriteString("  ")
		b.WriteString(headerStyle.Render(t.Title))
		b.WriteString("\n")
	}

	b.WriteString(rule("╭", "┬", "╮"))
	if len(t.Headers) > 0 {
		b.WriteString(line(t.Headers, headerStyle))
		b.WriteString(rule("├", "┼", "┤"))
	}
	for _, row := range t.Rows {
		if isSeparator(row) {
			b.WriteString(rule("├", "┼", "┤"))
			continue
		}
		b.WriteString(line(row, valueStyle))
	}
	b.WriteString(rule("╰", "┴", "╯"))

	return b.String()
}

func isSeparator(row []string) bool {
	return len(row) == 1 && row[0] == Separator[0]
}
