package tui

import (
	"github.com/theirongolddev/iexpense/internal/cli"

	"github.com/charmbracelet/huh"
)

// AddValues backs the add form fields. It lives behind a pointer so the
// bindings survive App being copied by value on every Update.
type AddValues struct {
	Name     string
	Category string
	Amount   string
}

const maxFormWidth = 60

// NewAddForm builds the add-expense form over vals. It is shared by the
// TUI and the `add` command.
func NewAddForm(categories []string, vals *AddValues) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Placeholder("Coffee").
				Value(&vals.Name),
			huh.NewSelect[string]().
				Title("Type").
				Options(huh.NewOptions(categories...)...).
				Value(&vals.Category),
			huh.NewInput().
				Title("Amount").
				Placeholder(cli.AmountHint()).
				Value(&vals.Amount).
				Validate(validateAmount),
		).Title("Add new expense"),
	).WithShowHelp(true)
}

func validateAmount(s string) error {
	_, err := cli.ParseAmount(s)
	return err
}

func formWidth(termWidth int) int {
	w := termWidth - 8
	if w > maxFormWidth {
		w = maxFormWidth
	}
	if w < 20 {
		w = 20
	}
	return w
}
