// Package logging configures structured logging with log/slog.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Component names attached to log records.
const (
	ComponentStore = "store"
	ComponentKV    = "kv"
	ComponentTUI   = "tui"
	ComponentCLI   = "cli"
)

// Config holds logging configuration options.
type Config struct {
	// Level is the minimum level to output.
	Level slog.Level
	// JSON switches from text to JSON records.
	JSON bool
	// Output receives records. Defaults to io.Discard so nothing reaches
	// the terminal unless asked for.
	Output io.Writer
}

// ParseLevel converts a level name to slog.Level. Unknown names map to warn.
func ParseLevel(level string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// Setup builds a logger from cfg and installs it as the slog default.
func Setup(cfg Config) *slog.Logger {
	if cfg.Output == nil {
		cfg.Output = io.Discard
	}

	opts := &slog.HandlerOptions{Level: cfg.Level}

	var handler slog.Handler
	if cfg.JSON {
		handler = slog.NewJSONHandler(cfg.Output, opts)
	} else {
		handler = slog.NewTextHandler(cfg.Output, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// OpenFile opens path for appending, creating parent directories.
func OpenFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("creating log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600) //nolint:gosec // path comes from config
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	return f, nil
}

// For returns a child logger tagged with a component name.
func For(l *slog.Logger, component string) *slog.Logger {
	if l == nil {
		l = slog.Default()
	}
	return l.With("component", component)
}
