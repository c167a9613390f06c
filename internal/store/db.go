// Package store persists runs and their violation/diagnostic history to
// SQLite, so a later invocation (or another tool) can query what a past
// analysis found without re-running it.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/google/uuid"

	"github.com/oxhq/typeinfer/internal/report"
)

const maxRetries = 5

// execWithRetry wraps Exec with retry logic for "database is locked" errors,
// which SQLite raises under WAL contention from concurrent invocations.
func execWithRetry(db *sql.DB, query string, args ...any) (sql.Result, error) {
	var res sql.Result
	var err error
	for range maxRetries {
		res, err = db.Exec(query, args...)
		if err == nil {
			return res, nil
		}
		if strings.Contains(err.Error(), "database is locked") {
			time.Sleep(250 * time.Millisecond)
			continue
		}
		return nil, err
	}
	return nil, fmt.Errorf("execWithRetry: database is locked after %d retries: %w", maxRetries, err)
}

// QuickCheck runs PRAGMA quick_check and returns an error if the database
// file is not healthy.
func QuickCheck(db *sql.DB) error {
	row := db.QueryRow("PRAGMA quick_check;")
	var result string
	if err := row.Scan(&result); err != nil {
		return fmt.Errorf("quick_check scan error: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("quick_check failed: %s", result)
	}
	return nil
}

// DBConn is a *sql.DB that runs a quick_check before closing.
type DBConn struct {
	*sql.DB
}

// Close runs a final health check, then closes the underlying connection.
func (conn *DBConn) Close() error {
	if err := QuickCheck(conn.DB); err != nil {
		fmt.Fprintf(os.Stderr, "WARNING: quick_check failed on close: %v\n", err)
	}
	return conn.DB.Close()
}

// Open opens (creating if absent) the SQLite database at path, applies the
// schema migrations, and runs an initial health check.
func Open(path string) (*DBConn, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, report.Wrap(report.ErrIO, "failed to create database directory", err)
		}
	}

	dsn := fmt.Sprintf("%s?_busy_timeout=5000&_foreign_keys=ON&_journal_mode=WAL&_synchronous=NORMAL&_temp_store=MEMORY", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, report.Wrap(report.ErrIO, "failed to open database", err)
	}

	if err := Migrate(db); err != nil {
		db.Close()
		return nil, report.Wrap(report.ErrIO, "failed to apply migrations", err)
	}
	if err := QuickCheck(db); err != nil {
		db.Close()
		return nil, report.Wrap(report.ErrIO, "initial quick_check failed", err)
	}

	return &DBConn{db}, nil
}

// Run is one persisted analysis invocation.
type Run struct {
	ID            string
	SourceFile    string
	TargetFunc    string
	DebloatedPath string
	Status        string
	StartedAt     int64
	FinishedAt    *int64
}

// StartRun inserts a new run row with a fresh UUID and status "running".
func StartRun(db *sql.DB, sourceFile, targetFunc, debloatedPath string, startedAt int64) (string, error) {
	id := uuid.NewString()
	_, err := execWithRetry(db,
		`INSERT INTO runs (id, source_file, target_func, debloated_path, status, started_at) VALUES (?, ?, ?, ?, 'running', ?)`,
		id, sourceFile, targetFunc, debloatedPath, startedAt)
	if err != nil {
		return "", report.Wrap(report.ErrIO, "failed to insert run", err)
	}
	return id, nil
}

// FinishRun marks a run complete.
func FinishRun(db *sql.DB, runID, status string, finishedAt int64) error {
	_, err := execWithRetry(db, `UPDATE runs SET status = ?, finished_at = ? WHERE id = ?`, status, finishedAt, runID)
	if err != nil {
		return report.Wrap(report.ErrIO, "failed to finish run", err)
	}
	return nil
}

// SaveViolations persists every violation found during a run.
func SaveViolations(db *sql.DB, runID string, violations []report.Violation) error {
	for _, v := range violations {
		_, err := execWithRetry(db,
			`INSERT INTO violations (id, run_id, kind_left, op, kind_right, loc, source_line, severity) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			uuid.NewString(), runID, v.KindLeft.String(), v.Op.String(), v.KindRight.String(), v.Loc, v.SourceLine, v.Severity)
		if err != nil {
			return report.Wrap(report.ErrIO, "failed to insert violation", err)
		}
	}
	return nil
}

// SaveDiagnostics persists every non-fatal diagnostic message recorded
// during a run.
func SaveDiagnostics(db *sql.DB, runID string, messages []string, now int64) error {
	for _, m := range messages {
		code, msg := splitDiagnostic(m)
		_, err := execWithRetry(db,
			`INSERT INTO diagnostics (id, run_id, code, message, created_at) VALUES (?, ?, ?, ?, ?)`,
			uuid.NewString(), runID, code, msg, now)
		if err != nil {
			return report.Wrap(report.ErrIO, "failed to insert diagnostic", err)
		}
	}
	return nil
}

// splitDiagnostic splits a StreamDiagnostics-formatted line
// ("[CODE] message") back into its code and message parts.
func splitDiagnostic(line string) (code, message string) {
	if !strings.HasPrefix(line, "[") {
		return "", line
	}
	end := strings.Index(line, "]")
	if end < 0 {
		return "", line
	}
	return line[1:end], strings.TrimSpace(line[end+1:])
}
