// Package config loads and saves the iexpense TOML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/theirongolddev/iexpense/internal/model"
	"github.com/theirongolddev/iexpense/internal/store"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config holds all iexpense configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Categories CategoriesConfig `toml:"categories"`
	Display    DisplayConfig    `toml:"display"`
	Appearance AppearanceConfig `toml:"appearance"`
	Logging    LoggingConfig    `toml:"logging"`
}

// GeneralConfig holds storage and locale preferences. Locale is a POSIX or
// BCP 47 name such as "de_DE" and controls number formatting.
type GeneralConfig struct {
	DBPath   string `toml:"db_path,omitempty"`
	Currency string `toml:"currency,omitempty"`
	Locale   string `toml:"locale,omitempty"`
}

// CategoriesConfig lists the categories offered by the add form.
type CategoriesConfig struct {
	Names []string `toml:"names"`
}

// DisplayConfig holds the amount colouring thresholds.
type DisplayConfig struct {
	LowThreshold  float64 `toml:"low_threshold"`
	HighThreshold float64 `toml:"high_threshold"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// LoggingConfig controls the diagnostic log file.
type LoggingConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Categories: CategoriesConfig{
			Names: model.DefaultCategories(),
		},
		Display: DisplayConfig{
			LowThreshold:  10,
			HighThreshold: 100,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		Logging: LoggingConfig{
			Level: "warn",
		},
	}
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "iexpense")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "iexpense")
}

// Path returns the full path to the config file.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// LoadEnv loads a .env file from the working directory into the process
// environment. A missing file is not an error; existing variables win.
func LoadEnv() error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("loading .env: %w", err)
	}
	return nil
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(Path())
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(Path(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(Path())
	return err == nil
}

// DBPath returns the database path from env var or config, in that order,
// falling back to the default data location.
func DBPath(cfg Config) string {
	if p := os.Getenv("IEXPENSE_DB"); p != "" {
		return p
	}
	if cfg.General.DBPath != "" {
		return cfg.General.DBPath
	}
	return store.DefaultPath()
}

// LogFile returns the log file path, defaulting to the data directory.
func LogFile(cfg Config) string {
	if cfg.Logging.File != "" {
		return cfg.Logging.File
	}
	return filepath.Join(store.DataDir(), "iexpense.log")
}

// LogLevel returns the log level name from LOG_LEVEL or config.
func LogLevel(cfg Config) string {
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		return lvl
	}
	return cfg.Logging.Level
}

// Categories returns the configured category names with blanks and
// duplicates dropped, or the shipped defaults when none remain.
func Categories(cfg Config) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, name := range cfg.Categories.Names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	if len(out) == 0 {
		return model.DefaultCategories()
	}
	return out
}

// Thresholds returns the low/high amount thresholds, swapping them if the
// config has them inverted.
func Thresholds(cfg Config) (low, high float64) {
	low, high = cfg.Display.LowThreshold, cfg.Display.HighThreshold
	if low > high {
		low, high = high, low
	}
	return low, high
}
