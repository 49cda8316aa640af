package cmd

import (
	"errors"
	"fmt"

	"github.com/theirongolddev/iexpense/internal/cli"
	"github.com/theirongolddev/iexpense/internal/config"
	"github.com/theirongolddev/iexpense/internal/tui"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add an expense",
	Long:  "Add an expense. Without --name an interactive form is shown.",
	Args:  cobra.NoArgs,
	RunE:  runAdd,
}

var (
	addName   string
	addType   string
	addAmount string
)

func init() {
	addCmd.Flags().StringVarP(&addName, "name", "N", "", "Expense name")
	addCmd.Flags().StringVarP(&addType, "type", "t", "", "Category (default: first configured)")
	addCmd.Flags().StringVarP(&addAmount, "amount", "a", "", "Amount in your locale's notation, e.g. 12.50")
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, _ []string) error {
	categories := config.Categories(cfg)

	vals := tui.AddValues{Name: addName, Category: addType, Amount: addAmount}
	if vals.Category == "" {
		vals.Category = categories[0]
	}

	if !cmd.Flags().Changed("name") {
		err := tui.NewAddForm(formCategories(categories, vals.Category), &vals).Run()
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Println("  Cancelled.")
			return nil
		}
		if err != nil {
			return fmt.Errorf("add form: %w", err)
		}
	}

	amount, err := cli.ParseAmount(vals.Amount)
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", vals.Amount, err)
	}

	s, closeStore, err := openStore(warnOnFailure())
	if err != nil {
		return err
	}
	defer closeStore()

	e := s.Add(vals.Name, vals.Category, amount)

	cur := config.Currency(cfg)
	low, high := config.Thresholds(cfg)
	styled := cli.AmountStyle(cli.AmountLevel(e.Amount, low, high)).Render(cli.FormatAmount(e.Amount, cur))
	fmt.Printf("  Added %s (%s) %s\n", e.Name, e.Type, styled)
	return nil
}

// formCategories returns the options for the add form, appending current
// when it is not configured so a --type value stays selected.
func formCategories(configured []string, current string) []string {
	for _, c := range configured {
		if c == current {
			return configured
		}
	}
	return append(append([]string(nil), configured...), current)
}
