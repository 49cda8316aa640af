// Package cmd implements the iexpense CLI commands.
package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/theirongolddev/iexpense/internal/cli"
	"github.com/theirongolddev/iexpense/internal/config"
	"github.com/theirongolddev/iexpense/internal/expense"
	"github.com/theirongolddev/iexpense/internal/logging"
	"github.com/theirongolddev/iexpense/internal/store"
	"github.com/theirongolddev/iexpense/internal/tui/theme"

	"github.com/spf13/cobra"
)

var (
	flagDB        string
	flagEphemeral bool
	flagQuiet     bool
)

// Resolved by prepare before any command runs.
var (
	cfg     = config.DefaultConfig()
	logger  = slog.New(slog.NewTextHandler(io.Discard, nil))
	logFile io.Closer
)

var rootCmd = &cobra.Command{
	Use:               "iexpense",
	Short:             "Personal expense tracker",
	Long:              "Track personal and business expenses from the terminal.",
	SilenceUsage:      true,
	PersistentPreRunE: prepare,
	PersistentPostRun: func(_ *cobra.Command, _ []string) { closeLog() },
	RunE:              runTUI,
}

// Execute is the main entry point called from main.go.
func Execute() {
	os.Exit(execute())
}

// execute runs the root command and returns the exit code. The log file is
// closed on every path, since os.Exit skips deferred calls.
func execute() int {
	defer closeLog()
	if err := rootCmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "Expense database path (default from config or IEXPENSE_DB)")
	rootCmd.PersistentFlags().BoolVar(&flagEphemeral, "ephemeral", false, "Keep expenses in memory only")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress warnings")
}

// prepare loads .env, config, theme and logging. Logs go to a file so the
// TUI keeps the terminal.
func prepare(cmd *cobra.Command, _ []string) error {
	if err := config.LoadEnv(); err != nil {
		warnf("%v", err)
	}

	c, err := config.Load()
	if err != nil {
		warnf("Config error, using defaults: %v", err)
	}
	cfg = c
	theme.SetActive(cfg.Appearance.Theme)
	cli.SetLocale(config.Locale(cfg))

	lc := logging.Config{Level: logging.ParseLevel(config.LogLevel(cfg))}
	if f, err := logging.OpenFile(config.LogFile(cfg)); err != nil {
		warnf("Log file unavailable: %v", err)
	} else {
		lc.Output = f
		logFile = f
	}
	logger = logging.Setup(lc)
	logging.For(logger, logging.ComponentCLI).Debug("command start",
		"command", cmd.Name(), "ephemeral", flagEphemeral)
	return nil
}

func closeLog() {
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
}

// openStore builds the expense store over the SQLite database, or over
// memory with --ephemeral. The returned func releases the database.
func openStore(opts ...expense.Option) (*expense.Store, func(), error) {
	log := logging.For(logger, logging.ComponentStore)
	opts = append([]expense.Option{
		expense.WithLogger(log),
		expense.WithChangeHandler(func(ev expense.Event) {
			log.Debug("expenses changed", "op", string(ev.Op), "count", len(ev.Items))
		}),
	}, opts...)

	if flagEphemeral {
		return expense.New(store.NewMemory(), opts...), func() {}, nil
	}

	path := flagDB
	if path == "" {
		path = config.DBPath(cfg)
	}
	kv, err := store.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening expense database: %w", err)
	}
	logging.For(logger, logging.ComponentKV).Debug("opened database", "path", path)

	return expense.New(kv, opts...), func() { _ = kv.Close() }, nil
}

// warnOnFailure reports swallowed store failures on stderr for the
// one-shot commands.
func warnOnFailure() expense.Option {
	return expense.WithErrorHandler(func(_ expense.Op, err error) {
		warnf("warning: %v", err)
	})
}

func warnf(format string, args ...any) {
	if flagQuiet {
		return
	}
	fmt.Fprintf(os.Stderr, "  "+format+"\n", args...)
}
