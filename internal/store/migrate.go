package store

import (
	"database/sql"
	"fmt"
)

// Migrate applies the store's schema: one row per analysis run, one row
// per violation it reported, and one row per non-fatal diagnostic
// (unknown-variable reads, unsupported syntax).
func Migrate(db *sql.DB) error {
	if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	sqlStmt := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		source_file TEXT NOT NULL,
		target_func TEXT NOT NULL,
		debloated_path TEXT,
		status TEXT NOT NULL,
		started_at INTEGER NOT NULL,
		finished_at INTEGER
	);
	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs (started_at DESC);

	CREATE TABLE IF NOT EXISTS violations (
		id TEXT PRIMARY KEY,
		run_id TEXT NOT NULL,
		kind_left TEXT NOT NULL,
		op TEXT NOT NULL,
		kind_right TEXT NOT NULL,
		loc TEXT NOT NULL,
		source_line TEXT,
		severity TEXT NOT NULL,
		FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_violations_run_id ON violations (run_id);

	CREATE TABLE IF NOT EXISTS diagnostics (
		id TEXT PRIMARY KEY,
		run_id TEXT NOT NULL,
		code TEXT NOT NULL,
		message TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_diagnostics_run_id ON diagnostics (run_id);
	`

	if _, err := db.Exec(sqlStmt); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return nil
}
