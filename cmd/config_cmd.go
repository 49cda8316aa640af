package cmd

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/iexpense/internal/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	fmt.Printf("  Config file: %s\n", config.Path())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	dbPath := config.DBPath(cfg)
	if flagDB != "" {
		dbPath = flagDB
	}
	if flagEphemeral {
		dbPath = "(in memory)"
	}

	fmt.Println("  [General]")
	fmt.Printf("    Database: %s\n", dbPath)
	fmt.Printf("    Currency: %s\n", config.Currency(cfg))
	fmt.Println()

	fmt.Println("  [Categories]")
	fmt.Printf("    Names: %s\n", strings.Join(config.Categories(cfg), ", "))
	fmt.Println()

	low, high := config.Thresholds(cfg)
	fmt.Println("  [Display]")
	fmt.Printf("    Low threshold:  %.2f\n", low)
	fmt.Printf("    High threshold: %.2f\n", high)
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  [Logging]")
	fmt.Printf("    Level: %s\n", config.LogLevel(cfg))
	fmt.Printf("    File:  %s\n", config.LogFile(cfg))
	fmt.Println()

	fmt.Println("  Run `iexpense setup` to reconfigure.")
	return nil
}
