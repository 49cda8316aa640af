// Package store provides the key/value backends the expense store persists
// through: a SQLite-backed table and an in-memory map.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/avast/retry-go"

	_ "modernc.org/sqlite" // register sqlite driver
)

const (
	writeAttempts = 5
	writeDelay    = 20 * time.Millisecond
)

// KV is a SQLite-backed key/value table.
type KV struct {
	db *sql.DB
}

// Open opens or creates the key/value database at the given path.
func Open(dbPath string) (*KV, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=busy_timeout(2000)")
	if err != nil {
		return nil, fmt.Errorf("opening kv db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &KV{db: db}, nil
}

// Close closes the database.
func (k *KV) Close() error {
	return k.db.Close()
}

// Get returns the value stored under key. found is false when the key is
// absent.
func (k *KV) Get(key string) ([]byte, bool, error) {
	var value []byte
	err := k.db.QueryRow("SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading %q: %w", key, err)
	}
	return value, true, nil
}

// Set stores value under key, replacing any previous value. Writes that hit
// a locked database (another iexpense process) are retried briefly.
func (k *KV) Set(key string, value []byte) error {
	now := time.Now().UTC().Format(time.RFC3339)
	err := retry.Do(
		func() error {
			_, err := k.db.Exec(`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
				ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
				key, value, now)
			return err
		},
		retry.Attempts(writeAttempts),
		retry.Delay(writeDelay),
		retry.RetryIf(isBusy),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return fmt.Errorf("writing %q: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (k *KV) Delete(key string) error {
	_, err := k.db.Exec("DELETE FROM kv WHERE key = ?", key)
	return err
}

// Keys returns all stored keys in sorted order.
func (k *KV) Keys() ([]string, error) {
	rows, err := k.db.Query("SELECT key FROM kv ORDER BY key")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

func isBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "SQLITE_BUSY")
}

// DataDir returns the XDG-compliant data directory.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "iexpense")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "iexpense")
}

// DefaultPath returns the default database location.
func DefaultPath() string {
	return filepath.Join(DataDir(), "expenses.db")
}
