// Package history persists completed benchmark runs to a SQLite database so
// past timings can be listed and compared across runs.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/harrison/benchrunner/internal/report"
)

// schemaSQL creates the history tables. Statements are idempotent so the
// schema can be re-applied on every open.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS benchmark_runs (
    id TEXT PRIMARY KEY,
    started_at TIMESTAMP NOT NULL,
    duration_secs REAL NOT NULL,
    run_command TEXT NOT NULL,
    trials_attempted INTEGER NOT NULL,
    trials_parsed INTEGER NOT NULL,
    average_secs REAL NOT NULL,
    output_file TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS benchmark_trials (
    run_id TEXT NOT NULL REFERENCES benchmark_runs(id) ON DELETE CASCADE,
    trial INTEGER NOT NULL,
    elapsed_secs REAL NOT NULL,
    PRIMARY KEY (run_id, trial)
);

CREATE INDEX IF NOT EXISTS idx_benchmark_runs_started_at
    ON benchmark_runs(started_at DESC);
`

// RunRecord is one persisted benchmark run.
type RunRecord struct {
	ID              string
	StartedAt       time.Time
	Duration        time.Duration
	RunCommand      string
	TrialsAttempted int
	TrialsParsed    int
	AverageSecs     float64
	OutputFile      string
	Trials          []report.TrialResult
}

// Store manages the SQLite database of benchmark runs.
type Store struct {
	db     *sql.DB
	dbPath string
}

// NewStore creates a Store and initializes the database schema.
// The parent directory is created for file-based databases.
func NewStore(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// busy_timeout must come first so subsequent statements wait on locks
	// instead of failing immediately.
	pragmas := []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	}

	for _, pragma := range pragmas {
		if err := execWithRetry(db, pragma, 5, 10*time.Millisecond); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// execWithRetry executes a SQL statement with backoff retry on lock errors
// that can occur during concurrent initialization of the same database file.
func execWithRetry(db *sql.DB, stmt string, maxRetries int, baseDelay time.Duration) error {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		_, err := db.Exec(stmt)
		if err == nil {
			return nil
		}
		if !strings.Contains(err.Error(), "database is locked") {
			return err
		}
		lastErr = err
		time.Sleep(baseDelay * time.Duration(1<<attempt))
	}
	return lastErr
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordRun persists a completed report and returns the generated run ID.
func (s *Store) RecordRun(ctx context.Context, rep *report.Report, runCommand, outputFile string) (string, error) {
	if rep == nil {
		return "", fmt.Errorf("report cannot be nil")
	}

	id := uuid.NewString()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() // no-op if committed

	_, err = tx.ExecContext(ctx, `
		INSERT INTO benchmark_runs
			(id, started_at, duration_secs, run_command, trials_attempted, trials_parsed, average_secs, output_file)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		rep.StartedAt.UTC(),
		rep.Duration.Seconds(),
		runCommand,
		rep.Attempted,
		len(rep.Trials),
		rep.Average,
		outputFile,
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	for _, tr := range rep.Trials {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO benchmark_trials (run_id, trial, elapsed_secs)
			VALUES (?, ?, ?)`,
			id, tr.Trial, tr.Seconds,
		)
		if err != nil {
			return "", fmt.Errorf("insert trial %d: %w", tr.Trial, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit transaction: %w", err)
	}

	return id, nil
}

// ListRuns returns the most recent runs, newest first, without their
// per-trial rows. limit <= 0 means no limit.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	query := `
		SELECT id, started_at, duration_secs, run_command, trials_attempted, trials_parsed, average_secs, output_file
		FROM benchmark_runs
		ORDER BY started_at DESC`

	var rows *sql.Rows
	var err error
	if limit > 0 {
		query += " LIMIT ?"
		rows, err = s.db.QueryContext(ctx, query, limit)
	} else {
		rows, err = s.db.QueryContext(ctx, query)
	}
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var r RunRecord
		var durationSecs float64
		if err := rows.Scan(&r.ID, &r.StartedAt, &durationSecs, &r.RunCommand,
			&r.TrialsAttempted, &r.TrialsParsed, &r.AverageSecs, &r.OutputFile); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Duration = time.Duration(durationSecs * float64(time.Second))
		runs = append(runs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	return runs, nil
}

// GetRun returns a single run including its per-trial rows.
// Returns sql.ErrNoRows (wrapped) when the ID is unknown.
func (s *Store) GetRun(ctx context.Context, id string) (*RunRecord, error) {
	var r RunRecord
	var durationSecs float64

	err := s.db.QueryRowContext(ctx, `
		SELECT id, started_at, duration_secs, run_command, trials_attempted, trials_parsed, average_secs, output_file
		FROM benchmark_runs
		WHERE id = ?`, id,
	).Scan(&r.ID, &r.StartedAt, &durationSecs, &r.RunCommand,
		&r.TrialsAttempted, &r.TrialsParsed, &r.AverageSecs, &r.OutputFile)
	if err != nil {
		return nil, fmt.Errorf("query run %s: %w", id, err)
	}
	r.Duration = time.Duration(durationSecs * float64(time.Second))

	rows, err := s.db.QueryContext(ctx, `
		SELECT trial, elapsed_secs
		FROM benchmark_trials
		WHERE run_id = ?
		ORDER BY trial`, id)
	if err != nil {
		return nil, fmt.Errorf("query trials for run %s: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var tr report.TrialResult
		if err := rows.Scan(&tr.Trial, &tr.Seconds); err != nil {
			return nil, fmt.Errorf("scan trial: %w", err)
		}
		r.Trials = append(r.Trials, tr)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trials: %w", err)
	}

	return &r, nil
}
