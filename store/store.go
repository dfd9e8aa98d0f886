// Package store persists completed analysis runs in a SQLite database.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // register sqlite driver

	"github.com/signalbox/signalbox/analysis"
)

// ErrNotFound is returned when no run exists under the requested ID.
var ErrNotFound = errors.New("run not found")

const schemaSQL = `
CREATE TABLE IF NOT EXISTS runs (
	id              TEXT PRIMARY KEY,
	source          TEXT NOT NULL,
	framework       TEXT NOT NULL,
	confidence      TEXT NOT NULL,
	score           REAL NOT NULL,
	original_cost   REAL NOT NULL,
	optimized_cost  REAL NOT NULL,
	savings         REAL NOT NULL,
	savings_percent REAL NOT NULL,
	started_at      TEXT NOT NULL,
	completed_at    TEXT NOT NULL,
	payload         TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_completed ON runs(completed_at DESC);
`

// Store is a SQLite-backed run archive.
type Store struct {
	db *sql.DB
}

// Open opens or creates the run database at the given path.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
		return nil, fmt.Errorf("creating store dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("opening store db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// RunSummary is the listing view of a stored run.
type RunSummary struct {
	ID             string
	Source         string
	Framework      string
	Confidence     string
	Score          float64
	OriginalCost   float64
	OptimizedCost  float64
	Savings        float64
	SavingsPercent float64
	CompletedAt    time.Time
}

// SaveRun stores a completed run. Saving an existing ID replaces it.
func (s *Store) SaveRun(ctx context.Context, run *analysis.Run) error {
	payload, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("encoding run %s: %w", run.ID, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `INSERT OR REPLACE INTO runs
		(id, source, framework, confidence, score,
		 original_cost, optimized_cost, savings, savings_percent,
		 started_at, completed_at, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Source, run.Detection.Framework, string(run.Detection.Confidence),
		run.Detection.ConfidenceScore,
		run.Workflow.TotalOriginalCost, run.Workflow.TotalOptimizedCost,
		run.Workflow.TotalSavings, run.Workflow.SavingsPercent,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.CompletedAt.UTC().Format(time.RFC3339Nano),
		string(payload),
	)
	if err != nil {
		return err
	}
	return tx.Commit()
}

// GetRun loads a stored run by ID.
func (s *Store) GetRun(ctx context.Context, id string) (*analysis.Run, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, "SELECT payload FROM runs WHERE id = ?", id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	var run analysis.Run
	if err := json.Unmarshal([]byte(payload), &run); err != nil {
		return nil, fmt.Errorf("decoding run %s: %w", id, err)
	}
	return &run, nil
}

// ListRuns returns summaries of stored runs, most recent first.
func (s *Store) ListRuns(ctx context.Context) ([]RunSummary, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT
		id, source, framework, confidence, score,
		original_cost, optimized_cost, savings, savings_percent, completed_at
		FROM runs ORDER BY completed_at DESC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []RunSummary
	for rows.Next() {
		var r RunSummary
		var completed string
		if err := rows.Scan(&r.ID, &r.Source, &r.Framework, &r.Confidence, &r.Score,
			&r.OriginalCost, &r.OptimizedCost, &r.Savings, &r.SavingsPercent, &completed); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339Nano, completed); err == nil {
			r.CompletedAt = t
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// DeleteRun removes a stored run.
func (s *Store) DeleteRun(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM runs WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}
