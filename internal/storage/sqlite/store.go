package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store keeps per-browser key-value state in a SQLite database.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open initializes a new SQLite store and runs the required migrations.
func Open(dbPath string, logger *slog.Logger) (*Store, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("empty database path")
	}

	if logger == nil {
		logger = slog.Default()
	}

	if err := ensureDir(dbPath); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_busy_timeout=5000", dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	conn.SetMaxOpenConns(1)
	conn.SetConnMaxLifetime(0)

	s := &Store{db: conn, logger: logger}
	if err := s.migrate(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return s, nil
}

// Close releases the database resources.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func ensureDir(dbPath string) error {
	dir := filepath.Dir(dbPath)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS browser_state (
            browser_id TEXT NOT NULL,
            key TEXT NOT NULL,
            value TEXT NOT NULL,
            updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
            PRIMARY KEY (browser_id, key)
        );`,
		`CREATE INDEX IF NOT EXISTS idx_browser_state_updated ON browser_state(updated_at);`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// Read returns the value stored under key for a browser.
func (s *Store) Read(ctx context.Context, browserID, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM browser_state WHERE browser_id = ? AND key = ?`, browserID, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read %s: %w", key, err)
	}
	return value, true, nil
}

// Write inserts or replaces the value under key for a browser.
func (s *Store) Write(ctx context.Context, browserID, key, value string) error {
	if strings.TrimSpace(browserID) == "" {
		return fmt.Errorf("browser id must not be empty")
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO browser_state(browser_id, key, value) VALUES(?, ?, ?)
        ON CONFLICT(browser_id, key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`, browserID, key, value)
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// Clear removes key for a browser. Missing keys are not an error.
func (s *Store) Clear(ctx context.Context, browserID, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM browser_state WHERE browser_id = ? AND key = ?`, browserID, key); err != nil {
		return fmt.Errorf("clear %s: %w", key, err)
	}
	return nil
}

// Touch marks every row of a browser as used now so the sweep keeps it.
func (s *Store) Touch(ctx context.Context, browserID string) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE browser_state SET updated_at = CURRENT_TIMESTAMP WHERE browser_id = ?`, browserID); err != nil {
		return fmt.Errorf("touch browser state: %w", err)
	}
	return nil
}

// DeleteStale drops every row not used since before.
func (s *Store) DeleteStale(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM browser_state WHERE updated_at < ?`, before.UTC().Format("2006-01-02 15:04:05"))
	if err != nil {
		return 0, fmt.Errorf("delete stale state: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if affected > 0 {
		s.logger.Info("removed stale browser state", slog.Int64("rows", affected))
	}
	return affected, nil
}

// Browser scopes the store to one browser profile.
func (s *Store) Browser(browserID string) *BrowserState {
	return &BrowserState{store: s, id: browserID}
}

// BrowserState is the key-value area of a single browser profile.
type BrowserState struct {
	store *Store
	id    string
}

func (b *BrowserState) Read(ctx context.Context, key string) (string, bool, error) {
	return b.store.Read(ctx, b.id, key)
}

func (b *BrowserState) Write(ctx context.Context, key, value string) error {
	return b.store.Write(ctx, b.id, key, value)
}

func (b *BrowserState) Touch(ctx context.Context) error {
	return b.store.Touch(ctx, b.id)
}

func (b *BrowserState) Clear(ctx context.Context, key string) error {
	return b.store.Clear(ctx, b.id, key)
}
