package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var rmCmd = &cobra.Command{
	Use:     "rm --type CATEGORY INDEX...",
	Aliases: []string{"remove"},
	Short:   "Remove expenses by their index within a category",
	Long: "Remove expenses by the # shown in `iexpense list` for the given category.\n" +
		"Indices that do not exist are ignored. Put -- before the indices when\n" +
		"one of them is negative, otherwise it is read as a flag.",
	Example: "  iexpense rm --type Personal 0 2\n  iexpense rm --type Business -- -1 3",
	Args: cobra.MinimumNArgs(1),
	RunE: runRemove,
}

var rmType string

func init() {
	rmCmd.Flags().StringVarP(&rmType, "type", "t", "", "Category the indices refer to (required)")
	_ = rmCmd.MarkFlagRequired("type")
	rootCmd.AddCommand(rmCmd)
}

func runRemove(cmd *cobra.Command, args []string) error {
	indices, err := parseIndices(args)
	if err != nil {
		return err
	}

	s, closeStore, err := openStore(warnOnFailure())
	if err != nil {
		return err
	}
	defer closeStore()

	out := cmd.OutOrStdout()
	n := s.RemoveByCategory(rmType, indices...)
	switch n {
	case 0:
		fmt.Fprintf(out, "  No %s expenses matched.\n", rmType)
	case 1:
		fmt.Fprintf(out, "  Removed 1 %s expense.\n", rmType)
	default:
		fmt.Fprintf(out, "  Removed %d %s expenses.\n", n, rmType)
	}
	return nil
}

func parseIndices(args []string) ([]int, error) {
	out := make([]int, 0, len(args))
	for _, a := range args {
		i, err := strconv.Atoi(a)
		if err != nil {
			return nil, fmt.Errorf("invalid index %q: %w", a, err)
		}
		out = append(out, i)
	}
	return out, nil
}
