package cmd

import (
	"fmt"
	"strconv"

	"github.com/theirongolddev/iexpense/internal/cli"
	"github.com/theirongolddev/iexpense/internal/config"
	"github.com/theirongolddev/iexpense/internal/expense"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List expenses grouped by category",
	Long:    "List expenses grouped by category. The # column is the index `rm` takes.",
	Args:    cobra.NoArgs,
	RunE:    runList,
}

var listType string

func init() {
	listCmd.Flags().StringVarP(&listType, "type", "t", "", "Only show this category")
	rootCmd.AddCommand(listCmd)
}

func runList(_ *cobra.Command, _ []string) error {
	s, closeStore, err := openStore(warnOnFailure())
	if err != nil {
		return err
	}
	defer closeStore()

	if s.Len() == 0 {
		fmt.Println("\n  No expenses yet. Add one with `iexpense add`.")
		return nil
	}

	categories := listCategories(s, config.Categories(cfg))
	if listType != "" {
		categories = []string{listType}
	}

	cur := config.Currency(cfg)
	low, high := config.Thresholds(cfg)

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("EXPENSES  %d entries", s.Len())))

	shown := 0
	for _, cat := range categories {
		items := s.ByCategory(cat)
		if len(items) == 0 {
			continue
		}
		shown++

		rows := make([][]string, 0, len(items)+2)
		for i, e := range items {
			amount := cli.AmountStyle(cli.AmountLevel(e.Amount, low, high)).Render(cli.FormatAmount(e.Amount, cur))
			rows = append(rows, []string{cli.Muted(strconv.Itoa(i)), cli.Truncate(e.Name, 40), amount})
		}
		total := expense.Summarize(items).Total
		rows = append(rows, cli.Separator, []string{"", "Total", cli.FormatAmount(total, cur)})

		fmt.Println()
		fmt.Print(cli.RenderTable(cli.Table{
			Title:      cat,
			Headers:    []string{"#", "Name", "Amount"},
			Rows:       rows,
			RightAlign: []bool{true, false, true},
		}))
	}

	if shown == 0 {
		fmt.Printf("\n  No %s expenses.\n", listType)
	}
	return nil
}

// listCategories orders categories the way the TUI does: configured first,
// then the rest in first-seen order.
func listCategories(s *expense.Store, configured []string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, c := range append(append([]string(nil), configured...), s.Categories()...) {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
