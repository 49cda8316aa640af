// Package tui provides the interactive Bubble Tea expense list for iexpense.
package tui

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/theirongolddev/iexpense/internal/cli"
	"github.com/theirongolddev/iexpense/internal/expense"
	"github.com/theirongolddev/iexpense/internal/logging"
	"github.com/theirongolddev/iexpense/internal/model"
	"github.com/theirongolddev/iexpense/internal/tui/components"
	"github.com/theirongolddev/iexpense/internal/tui/theme"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"golang.org/x/text/currency"
)

// Options configures the app.
type Options struct {
	// Categories are offered by the add form and shown first, in order.
	Categories    []string
	Currency      currency.Unit
	LowThreshold  float64
	HighThreshold float64
	Logger        *slog.Logger
}

// section is one category's slice of the list, in store order.
type section struct {
	category string
	items    []model.Expense
}

// App is the root Bubble Tea model.
type App struct {
	store *expense.Store
	opts  Options

	sections []section
	cursor   int // row index across all sections

	// UI state
	width    int
	height   int
	showHelp bool
	flash    string

	// Add form (huh)
	addForm *huh.Form
	addVals *AddValues

	keys   keyMap
	help   help.Model
	logger *slog.Logger
}

const (
	minTerminalWidth  = 40
	maxContentWidth   = 120
	minContentHeight  = 3
	metricStripHeight = 18 // below this terminal height the metric strip is hidden
)

// NewApp creates the TUI model over s.
func NewApp(s *expense.Store, opts Options) App {
	if len(opts.Categories) == 0 {
		opts.Categories = model.DefaultCategories()
	}
	if opts.LowThreshold == 0 && opts.HighThreshold == 0 {
		opts.LowThreshold, opts.HighThreshold = 10, 100
	}
	if opts.Currency == (currency.Unit{}) {
		opts.Currency = currency.USD
	}

	t := theme.Active
	h := help.New()
	h.Styles.ShortKey = lipgloss.NewStyle().Foreground(t.Accent)
	h.Styles.ShortDesc = lipgloss.NewStyle().Foreground(t.TextMuted)
	h.Styles.ShortSeparator = lipgloss.NewStyle().Foreground(t.TextDim)

	a := App{
		store:  s,
		opts:   opts,
		keys:   defaultKeyMap(),
		help:   h,
		logger: logging.For(opts.Logger, logging.ComponentTUI),
	}
	a.rebuild()
	return a
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		if a.addForm != nil {
			a.addForm = a.addForm.WithWidth(formWidth(msg.Width))
		}
		return a, nil

	case tea.KeyMsg:
		// Global: quit
		if key.Matches(msg, a.keys.ForceQuit) {
			return a, tea.Quit
		}

		// Add form intercepts all other keys
		if a.addForm != nil {
			return a.updateAddForm(msg)
		}

		// Any key dismisses help
		if a.showHelp {
			a.showHelp = false
			return a, nil
		}

		a.flash = ""

		switch {
		case key.Matches(msg, a.keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, a.keys.Help):
			a.showHelp = true
		case key.Matches(msg, a.keys.Up):
			if a.cursor > 0 {
				a.cursor--
			}
		case key.Matches(msg, a.keys.Down):
			if a.cursor < a.rowCount()-1 {
				a.cursor++
			}
		case key.Matches(msg, a.keys.Top):
			a.cursor = 0
		case key.Matches(msg, a.keys.Bottom):
			a.cursor = a.rowCount() - 1
			a.clampCursor()
		case key.Matches(msg, a.keys.Add):
			return a.openAddForm()
		case key.Matches(msg, a.keys.Delete):
			a.deleteSelected()
		}
		return a, nil
	}

	// huh drives itself with internal messages
	if a.addForm != nil {
		return a.updateAddForm(msg)
	}
	return a, nil
}

func (a App) openAddForm() (tea.Model, tea.Cmd) {
	a.addVals = &AddValues{Category: a.defaultCategory()}
	a.addForm = NewAddForm(a.opts.Categories, a.addVals)
	if a.width > 0 {
		a.addForm = a.addForm.WithWidth(formWidth(a.width))
	}
	return a, a.addForm.Init()
}

func (a App) updateAddForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.addForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.addForm = f
	}

	switch a.addForm.State {
	case huh.StateCompleted:
		a.submitAdd(*a.addVals)
		a.addForm = nil
		a.addVals = nil
		return a, nil
	case huh.StateAborted:
		a.addForm = nil
		a.addVals = nil
		return a, nil
	}

	return a, cmd
}

// submitAdd stores the form values and moves the cursor onto the new row.
func (a *App) submitAdd(v AddValues) {
	amount, err := cli.ParseAmount(v.Amount)
	if err != nil {
		a.flash = "Invalid amount"
		return
	}
	e := a.store.Add(v.Name, v.Category, amount)
	a.logger.Debug("expense added", "id", e.ID, "type", e.Type)
	a.rebuild()
	a.selectID(e.ID)
	a.flash = "Added " + e.Name
}

// deleteSelected removes the row under the cursor. The row's position
// within its own section is what the store resolves.
func (a *App) deleteSelected() {
	category, idx, e, ok := a.selected()
	if !ok {
		return
	}
	n := a.store.RemoveByCategory(category, idx)
	a.logger.Debug("expense removed", "id", e.ID, "type", category, "index", idx, "removed", n)
	a.rebuild()
	if n > 0 {
		a.flash = "Deleted " + e.Name
	}
}

// rebuild regroups the store into sections: configured categories first,
// then any others in first-seen order. Empty sections are skipped.
func (a *App) rebuild() {
	seen := make(map[string]struct{}, len(a.opts.Categories))
	order := make([]string, 0, len(a.opts.Categories))
	for _, c := range a.opts.Categories {
		seen[c] = struct{}{}
		order = append(order, c)
	}
	for _, c := range a.store.Categories() {
		if _, ok := seen[c]; !ok {
			seen[c] = struct{}{}
			order = append(order, c)
		}
	}

	var sections []section
	for _, c := range order {
		if items := a.store.ByCategory(c); len(items) > 0 {
			sections = append(sections, section{category: c, items: items})
		}
	}
	a.sections = sections
	a.clampCursor()
}

func (a App) rowCount() int {
	n := 0
	for _, s := range a.sections {
		n += len(s.items)
	}
	return n
}

func (a *App) clampCursor() {
	if n := a.rowCount(); a.cursor >= n {
		a.cursor = n - 1
	}
	if a.cursor < 0 {
		a.cursor = 0
	}
}

// selected returns the category, in-section index and record under the cursor.
func (a App) selected() (string, int, model.Expense, bool) {
	i := a.cursor
	for _, s := range a.sections {
		if i < len(s.items) {
			return s.category, i, s.items[i], true
		}
		i -= len(s.items)
	}
	return "", 0, model.Expense{}, false
}

func (a *App) selectID(id uuid.UUID) {
	row := 0
	for _, s := range a.sections {
		for _, e := range s.items {
			if e.ID == id {
				a.cursor = row
				return
			}
			row++
		}
	}
}

// defaultCategory preselects the cursor's category in the add form when it
// is one the form offers.
func (a App) defaultCategory() string {
	if category, _, _, ok := a.selected(); ok {
		for _, c := range a.opts.Categories {
			if c == category {
				return c
			}
		}
	}
	return a.opts.Categories[0]
}

func (a App) contentWidth() int {
	cw := a.width
	if cw > maxContentWidth {
		cw = maxContentWidth
	}
	return cw
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}

	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}

	if a.addForm != nil {
		return a.viewAddForm()
	}

	if a.showHelp {
		return a.viewHelp()
	}

	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := a.height
	if h < 5 {
		h = 5
	}

	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  iexpense needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)

	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewAddForm() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Padding(1, 2)

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center,
		cardStyle.Render(a.addForm.View()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)

	titleStyle := lipgloss.NewStyle().
		Foreground(t.AccentBright).
		Background(t.Surface).
		Bold(true)

	keyStyle := lipgloss.NewStyle().
		Foreground(t.Accent).
		Background(t.Surface).
		Bold(true)

	descStyle := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface)

	dimStyle := lipgloss.NewStyle().
		Foreground(t.TextDim).
		Background(t.Surface)

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n\n")

	for _, group := range a.keys.FullHelp() {
		for _, bind := range group {
			h := bind.Help()
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-8s", h.Key)),
				descStyle.Render(h.Desc))
		}
		b.WriteString("\n")
	}

	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center,
		cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	sum := expense.Summarize(a.store.Items())

	// 1. Header: title + metric strip
	header := a.renderHeader(sum, w, cw)

	// 2. Status bar
	noun := "expenses"
	if sum.Count == 1 {
		noun = "expense"
	}
	totals := fmt.Sprintf("%d %s · %s", sum.Count, noun, cli.FormatAmount(sum.Total, a.opts.Currency))
	statusBar := components.RenderStatusBar(w, a.help.ShortHelpView(a.keys.ShortHelp()), a.flash, totals)

	// 3. Content zone
	contentH := h - lipgloss.Height(header) - lipgloss.Height(statusBar)
	if contentH < minContentHeight {
		contentH = minContentHeight
	}

	content, cursorLine := a.renderSections(sum, cw)
	content = scrollTo(content, cursorLine, contentH)
	content = padHeight(truncateHeight(content, contentH), contentH)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)

	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) renderHeader(sum expense.Summary, w, cw int) string {
	t := theme.Active

	logoStyle := lipgloss.NewStyle().
		Foreground(t.AccentBright).
		Bold(true)
	subtitleStyle := lipgloss.NewStyle().
		Foreground(t.TextMuted)

	title := lipgloss.PlaceHorizontal(w, lipgloss.Left,
		logoStyle.Render(" ◈ iexpense")+subtitleStyle.Render(" · Expenses"),
		lipgloss.WithWhitespaceBackground(t.Background))

	if a.height < metricStripHeight {
		return title
	}

	metrics := []components.Metric{
		{Label: "Entries", Value: cli.FormatNumber(int64(sum.Count))},
		{Label: "Total", Value: cli.FormatAmount(sum.Total, a.opts.Currency), Color: t.Accent},
	}
	for _, c := range a.opts.Categories {
		total := sum.TotalFor(c)
		metrics = append(metrics, components.Metric{
			Label: c,
			Value: cli.FormatAmount(total, a.opts.Currency),
		})
	}
	strip := lipgloss.PlaceHorizontal(w, lipgloss.Center, components.MetricStrip(metrics, cw),
		lipgloss.WithWhitespaceBackground(t.Background))

	return title + "\n" + strip
}

// renderSections renders one card per section and reports the line the
// cursor row lands on.
func (a App) renderSections(sum expense.Summary, cw int) (string, int) {
	t := theme.Active

	if len(a.sections) == 0 {
		dim := lipgloss.NewStyle().Foreground(t.TextDim)
		return components.ContentCard("Expenses", dim.Render("No expenses yet. Press a to add one."), cw, false), 0
	}

	inner := components.CardInnerWidth(cw)
	var cards []string
	line, cursorLine, row := 0, 0, 0

	for _, s := range a.sections {
		var b strings.Builder
		focused := false
		for i, e := range s.items {
			selected := row == a.cursor
			if selected {
				focused = true
				cursorLine = line + 2 + i // top border + title
			}
			b.WriteString(a.renderRow(e, inner, selected))
			if i < len(s.items)-1 {
				b.WriteString("\n")
			}
			row++
		}

		card := components.ContentCard(a.sectionTitle(s, sum, inner), b.String(), cw, focused)
		cards = append(cards, card)
		line += lipgloss.Height(card)
	}

	return strings.Join(cards, "\n"), cursorLine
}

func (a App) sectionTitle(s section, sum expense.Summary, inner int) string {
	left := fmt.Sprintf("%s (%d)", s.category, len(s.items))
	right := cli.FormatAmount(sum.TotalFor(s.category), a.opts.Currency)
	gap := inner - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

func (a App) renderRow(e model.Expense, inner int, selected bool) string {
	t := theme.Active

	nameStyle := lipgloss.NewStyle().Foreground(t.TextPrimary)
	typeStyle := lipgloss.NewStyle().Foreground(t.TextDim)
	amountStyle := lipgloss.NewStyle().Foreground(a.levelColor(e.Amount))
	if selected {
		nameStyle = nameStyle.Background(t.SurfaceBright).Bold(true)
		typeStyle = typeStyle.Background(t.SurfaceBright)
		amountStyle = amountStyle.Background(t.SurfaceBright).Bold(true)
	}

	amount := cli.FormatAmount(e.Amount, a.opts.Currency)
	category := "  " + e.Type

	nameW := inner - lipgloss.Width(amount) - lipgloss.Width(category) - 1
	if nameW < 1 {
		nameW = 1
		category = ""
	}
	name := cli.Truncate(e.Name, nameW)
	gap := inner - lipgloss.Width(name) - lipgloss.Width(category) - lipgloss.Width(amount)
	if gap < 1 {
		gap = 1
	}
	pad := strings.Repeat(" ", gap)

	return nameStyle.Render(name) + typeStyle.Render(category+pad) + amountStyle.Render(amount)
}

func (a App) levelColor(amount float64) lipgloss.Color {
	t := theme.Active
	switch cli.AmountLevel(amount, a.opts.LowThreshold, a.opts.HighThreshold) {
	case cli.LevelLow:
		return t.AmountLow
	case cli.LevelMid:
		return t.AmountMid
	default:
		return t.AmountHigh
	}
}

// ─── Helpers ────────────────────────────────────────────────────

// scrollTo windows s to h lines, keeping line visible.
func scrollTo(s string, line, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= h {
		return s
	}
	off := 0
	if line >= h {
		off = line - h + 1
	}
	if off > len(lines)-h {
		off = len(lines) - h
	}
	return strings.Join(lines[off:off+h], "\n")
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	padding := strings.Repeat("\n", h-len(lines))
	return s + padding
}
