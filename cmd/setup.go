package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/theirongolddev/iexpense/internal/config"
	"github.com/theirongolddev/iexpense/internal/tui/theme"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/text/currency"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive configuration wizard",
	Args:  cobra.NoArgs,
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

type setupValues struct {
	currency   string
	theme      string
	categories string
}

func runSetup(_ *cobra.Command, _ []string) error {
	vals := &setupValues{
		currency:   config.Currency(cfg).String(),
		theme:      theme.ByName(cfg.Appearance.Theme).Name,
		categories: strings.Join(config.Categories(cfg), ", "),
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to iexpense").
				Description("A few settings. Run `iexpense setup` anytime to change them."),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Currency").
				Description("ISO 4217 code used to display amounts").
				Value(&vals.currency).
				Validate(validateCurrency),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(huh.NewOptions(theme.Names()...)...).
				Value(&vals.theme),
			huh.NewInput().
				Title("Categories").
				Description("Comma separated, shown in this order").
				Value(&vals.categories),
		),
	)

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Println("  Setup cancelled, nothing saved.")
			return nil
		}
		return fmt.Errorf("setup form: %w", err)
	}

	cfg.General.Currency = strings.ToUpper(strings.TrimSpace(vals.currency))
	cfg.Appearance.Theme = vals.theme
	cfg.Categories.Names = splitCategories(vals.categories)

	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.Path())
	fmt.Println("  Run `iexpense setup` anytime to reconfigure.")
	fmt.Println()

	return nil
}

func validateCurrency(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if _, err := currency.ParseISO(strings.ToUpper(s)); err != nil {
		return errors.New("not an ISO 4217 currency code")
	}
	return nil
}

// splitCategories parses the comma separated category list. Cleanup of
// blanks and duplicates happens in config.Categories.
func splitCategories(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
