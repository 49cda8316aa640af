package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Print the stored expenses as JSON",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

var exportIndent bool

func init() {
	exportCmd.Flags().BoolVar(&exportIndent, "indent", false, "Pretty-print the JSON")
	rootCmd.AddCommand(exportCmd)
}

func runExport(_ *cobra.Command, _ []string) error {
	s, closeStore, err := openStore(warnOnFailure())
	if err != nil {
		return err
	}
	defer closeStore()

	data, err := json.Marshal(s.Items())
	if err != nil {
		return fmt.Errorf("encoding expenses: %w", err)
	}
	if exportIndent {
		var buf bytes.Buffer
		if err := json.Indent(&buf, data, "", "  "); err != nil {
			return fmt.Errorf("indenting expenses: %w", err)
		}
		data = buf.Bytes()
	}

	_, err = fmt.Fprintln(os.Stdout, string(data))
	return err
}
