package cmd

import (
	"fmt"

	"github.com/theirongolddev/iexpense/internal/cli"
	"github.com/theirongolddev/iexpense/internal/config"
	"github.com/theirongolddev/iexpense/internal/expense"

	"github.com/spf13/cobra"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Per-category totals",
	Args:  cobra.NoArgs,
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(_ *cobra.Command, _ []string) error {
	s, closeStore, err := openStore(warnOnFailure())
	if err != nil {
		return err
	}
	defer closeStore()

	if s.Len() == 0 {
		fmt.Println("\n  No expenses yet. Add one with `iexpense add`.")
		return nil
	}

	sum := expense.Summarize(s.Items())
	cur := config.Currency(cfg)

	fmt.Println()
	fmt.Println(cli.RenderTitle("EXPENSE SUMMARY"))
	fmt.Println()

	rows := make([][]string, 0, len(sum.Categories)+2)
	for _, ct := range sum.Categories {
		rows = append(rows, []string{
			ct.Category,
			cli.FormatNumber(int64(ct.Count)),
			cli.FormatAmount(ct.Total, cur),
			cli.FormatPercent(ct.SharePercent),
		})
	}
	rows = append(rows, cli.Separator, []string{
		"Total",
		cli.FormatNumber(int64(sum.Count)),
		cli.FormatAmount(sum.Total, cur),
		"",
	})

	fmt.Print(cli.RenderTable(cli.Table{
		Headers:    []string{"Category", "Entries", "Total", "Share"},
		Rows:       rows,
		RightAlign: []bool{false, true, true, true},
	}))

	return nil
}
