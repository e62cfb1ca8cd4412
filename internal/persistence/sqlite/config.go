package sqlite

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Config holds SQLite connection settings.
type Config struct {
	// Path is the database file path, or MemoryPath.
	Path string

	// BusyTimeout sets how long a connection waits for another writer.
	BusyTimeout time.Duration

	// JournalMode sets the SQLite journal mode (WAL, DELETE, TRUNCATE, etc.)
	JournalMode string

	// Synchronous sets the synchronous mode (FULL, NORMAL, OFF)
	Synchronous string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DefaultConfig returns settings suited to a single file shared by a few writers.
func DefaultConfig(path string) Config {
	return Config{
		Path:            path,
		BusyTimeout:     5 * time.Second,
		JournalMode:     "WAL",
		Synchronous:     "NORMAL",
		MaxOpenConns:    4,
		MaxIdleConns:    2,
		ConnMaxLifetime: 5 * time.Minute,
	}
}

// MemoryConfig returns settings for an in-memory database. A single connection
// keeps every query on the same database.
func MemoryConfig() Config {
	return Config{
		Path:            MemoryPath,
		BusyTimeout:     time.Second,
		JournalMode:     "MEMORY",
		Synchronous:     "OFF",
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: 0,
	}
}

var (
	validJournalModes = map[string]bool{"DELETE": true, "TRUNCATE": true, "PERSIST": true, "MEMORY": true, "WAL": true, "OFF": true}
	validSyncModes    = map[string]bool{"OFF": true, "NORMAL": true, "FULL": true, "EXTRA": true}
)

// Validate reports every invalid setting.
func (c Config) Validate() error {
	var problems []error
	if strings.TrimSpace(c.Path) == "" {
		problems = append(problems, errors.New("path cannot be empty"))
	}
	if c.BusyTimeout < 0 {
		problems = append(problems, errors.New("busy timeout cannot be negative"))
	}
	if c.JournalMode != "" && !validJournalModes[strings.ToUpper(c.JournalMode)] {
		problems = append(problems, fmt.Errorf("invalid journal mode: %s", c.JournalMode))
	}
	if c.Synchronous != "" && !validSyncModes[strings.ToUpper(c.Synchronous)] {
		problems = append(problems, fmt.Errorf("invalid synchronous mode: %s", c.Synchronous))
	}
	if c.MaxOpenConns < 0 || c.MaxIdleConns < 0 {
		problems = append(problems, errors.New("connection limits cannot be negative"))
	}
	if c.Path == MemoryPath && c.MaxOpenConns != 1 {
		problems = append(problems, errors.New("in-memory databases need exactly one open connection"))
	}
	return errors.Join(problems...)
}

// DSN renders the connection string understood by modernc.org/sqlite. Pragmas are
// passed as _pragma parameters so every pooled connection applies them.
func (c Config) DSN() string {
	query := url.Values{}
	if c.BusyTimeout > 0 {
		query.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", c.BusyTimeout.Milliseconds()))
	}
	if c.JournalMode != "" {
		query.Add("_pragma", fmt.Sprintf("journal_mode(%s)", strings.ToUpper(c.JournalMode)))
	}
	if c.Synchronous != "" {
		query.Add("_pragma", fmt.Sprintf("synchronous(%s)", strings.ToUpper(c.Synchronous)))
	}
	if len(query) == 0 {
		return c.Path
	}
	return c.Path + "?" + query.Encode()
}

// ensureDirectory creates the parent directory of a file database.
func (c Config) ensureDirectory() error {
	if c.Path == MemoryPath {
		return nil
	}
	dir := filepath.Dir(c.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create database directory %s: %w", dir, err)
	}
	return nil
}
