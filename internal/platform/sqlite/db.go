package sqlite

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// CurrentSchemaVersion is the latest schema version.
// Bump this when adding migrations.
const CurrentSchemaVersion = 1

// Open opens (creating if needed) the SQLite database at path and
// brings its schema up to date. The parent directory is created with
// restricted permissions. If logger is nil, the default logger is used.
func Open(path string, logger *slog.Logger) (*sql.DB, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		// Explicit chmod (best-effort, may not work on all platforms)
		_ = os.Chmod(dir, 0o700)
	}

	// Open database with pragmas in connection string (applies to all connections)
	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Verify WAL mode is active
	if err := verifyWALMode(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	// Run migrations (this creates the file if it doesn't exist)
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	// Set file permissions after file exists (best-effort)
	_ = os.Chmod(path, 0o600)

	logger.Debug("sqlite database ready",
		slog.String("path", path),
		slog.Int("schema_version", CurrentSchemaVersion))
	return db, nil
}

// migrate applies schema migrations based on user_version.
func migrate(db *sql.DB) error {
	version, err := GetUserVersion(db)
	if err != nil {
		return err
	}

	// Migration 0 -> 1: cards and review_logs (v1)
	if version < 1 {
		schema := `
		CREATE TABLE IF NOT EXISTS cards (
		  key             TEXT PRIMARY KEY,
		  due_ms          INTEGER NOT NULL,
		  stability       REAL NOT NULL,
		  difficulty      REAL NOT NULL,
		  elapsed_days    REAL NOT NULL,
		  scheduled_days  REAL NOT NULL,
		  reps            INTEGER NOT NULL,
		  lapses          INTEGER NOT NULL,
		  learning_steps  INTEGER NOT NULL,
		  state           TEXT NOT NULL,
		  last_review_ms  INTEGER,
		  created_at_ms   INTEGER NOT NULL,
		  updated_at_ms   INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_cards_due ON cards(due_ms);

		CREATE TABLE IF NOT EXISTS review_logs (
		  id              TEXT PRIMARY KEY,
		  key             TEXT NOT NULL,
		  rating          TEXT NOT NULL,
		  reviewed_at_ms  INTEGER NOT NULL,
		  state           TEXT NOT NULL,
		  interval_days   REAL NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_review_logs_reviewed_at
		ON review_logs(reviewed_at_ms);

		CREATE INDEX IF NOT EXISTS idx_review_logs_key
		ON review_logs(key);
		`
		if _, err := db.Exec(schema); err != nil {
			return fmt.Errorf("migration 1 failed: %w", err)
		}
		if err := SetUserVersion(db, 1); err != nil {
			return err
		}
	}

	// Future migrations go here:
	// if version < 2 { ... }

	return nil
}

// verifyWALMode checks that WAL mode is active (set via connection string).
func verifyWALMode(db *sql.DB) error {
	var journalMode string
	if err := db.QueryRow("PRAGMA journal_mode;").Scan(&journalMode); err != nil {
		return fmt.Errorf("failed to verify journal mode: %w", err)
	}
	if journalMode != "wal" {
		return fmt.Errorf("expected WAL mode, got %s", journalMode)
	}
	return nil
}

// GetUserVersion returns the current schema version (user_version pragma).
func GetUserVersion(db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRow("PRAGMA user_version;").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get user_version: %w", err)
	}
	return version, nil
}

// SetUserVersion sets the schema version (user_version pragma).
func SetUserVersion(db *sql.DB, version int) error {
	_, err := db.Exec(fmt.Sprintf("PRAGMA user_version=%d", version))
	if err != nil {
		return fmt.Errorf("failed to set user_version: %w", err)
	}
	return nil
}
