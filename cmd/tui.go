package cmd

import (
	"fmt"

	"github.com/theirongolddev/iexpense/internal/config"
	"github.com/theirongolddev/iexpense/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive expense list",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	// The TUI owns the terminal; store failures only reach the log file.
	s, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	// Force TrueColor profile so all background styling produces ANSI codes
	// Without this, lipgloss may default to Ascii profile (no colors)
	lipgloss.SetColorProfile(termenv.TrueColor)

	low, high := config.Thresholds(cfg)
	app := tui.NewApp(s, tui.Options{
		Categories:    config.Categories(cfg),
		Currency:      config.Currency(cfg),
		LowThreshold:  low,
		HighThreshold: high,
		Logger:        logger,
	})
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
