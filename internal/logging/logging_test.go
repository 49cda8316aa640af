package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" INFO ":  slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelWarn,
		"verbose": slog.LevelWarn,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestSetupJSONWithComponent(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	var buf bytes.Buffer
	logger := Setup(Config{Level: slog.LevelInfo, JSON: true, Output: &buf})
	For(logger, ComponentStore).Info("loaded", "count", 3)
	logger.Debug("hidden")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d records, want 1: %q", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("record is not JSON: %v", err)
	}
	if rec["component"] != ComponentStore || rec["msg"] != "loaded" {
		t.Fatalf("record = %v", rec)
	}
}

func TestOpenFileCreatesDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "iexpense.log")
	f, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	if _, err := f.WriteString("x\n"); err != nil {
		t.Fatal(err)
	}
	_ = f.Close()

	f, err = OpenFile(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	_, _ = f.WriteString("y\n")
	_ = f.Close()

	data, _ := os.ReadFile(path)
	if string(data) != "x\ny\n" {
		t.Fatalf("log contents = %q, want appended lines", data)
	}
}
