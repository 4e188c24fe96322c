// Package store persists benchmark runs: a SQLite registry of run
// metadata plus the per-run artifact directories (prompts, responses,
// results, metrics) under the logs root.
package store

import (
	"context"
	"database/sql"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/idiomlab/rebusbench/internal/model"
)

// Store is the run registry.
type Store struct {
	db      *sql.DB
	logsDir string
}

const migration = `
CREATE TABLE IF NOT EXISTS runs (
	id           TEXT PRIMARY KEY,
	label        TEXT NOT NULL UNIQUE,
	backend      TEXT NOT NULL,
	model        TEXT NOT NULL,
	prompt_style TEXT NOT NULL,
	status       TEXT NOT NULL DEFAULT 'running',
	total        INTEGER NOT NULL DEFAULT 0,
	failed       INTEGER NOT NULL DEFAULT 0,
	created_at   DATETIME NOT NULL,
	updated_at   DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
`

// Open opens (creating if needed) the registry database and ensures the
// logs root exists.
func Open(dbPath, logsDir string) (*Store, error) {
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return nil, eris.Wrap(err, "store: create logs dir")
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, eris.Wrap(err, "store: open sqlite")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "store: exec %s", pragma)
		}
	}
	if _, err := db.Exec(migration); err != nil {
		db.Close()
		return nil, eris.Wrap(err, "store: migrate")
	}

	return &Store{db: db, logsDir: logsDir}, nil
}

// Close closes the registry database.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateRun registers a new run, assigning an ID and timestamps.
func (s *Store) CreateRun(ctx context.Context, run *model.Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	run.CreatedAt = now
	run.UpdatedAt = now
	if run.Status == "" {
		run.Status = model.RunStatusRunning
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, label, backend, model, prompt_style, status, total, failed, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Label, run.Backend, run.Model, run.PromptStyle,
		run.Status, run.Total, run.Failed, run.CreatedAt, run.UpdatedAt,
	)
	if err != nil {
		return eris.Wrapf(err, "store: create run %s", run.Label)
	}
	return nil
}

// FinishRun records a run's terminal status and sample counts.
func (s *Store) FinishRun(ctx context.Context, label, status string, total, failed int) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE runs SET status = ?, total = ?, failed = ?, updated_at = ?
		WHERE label = ?`,
		status, total, failed, time.Now().UTC(), label,
	)
	if err != nil {
		return eris.Wrapf(err, "store: finish run %s", label)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return eris.Errorf("store: run %s not found", label)
	}
	return nil
}

// GetRun looks a run up by label.
func (s *Store) GetRun(ctx context.Context, label string) (*model.Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, label, backend, model, prompt_style, status, total, failed, created_at, updated_at
		FROM runs WHERE label = ?`, label,
	)
	var run model.Run
	err := row.Scan(&run.ID, &run.Label, &run.Backend, &run.Model, &run.PromptStyle,
		&run.Status, &run.Total, &run.Failed, &run.CreatedAt, &run.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, eris.Errorf("store: run %s not found", label)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "store: get run %s", label)
	}
	return &run, nil
}

// ListRuns returns runs newest first, up to limit (0 = all).
func (s *Store) ListRuns(ctx context.Context, limit int) ([]model.Run, error) {
	query := `
		SELECT id, label, backend, model, prompt_style, status, total, failed, created_at, updated_at
		FROM runs ORDER BY created_at DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "store: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		var run model.Run
		if err := rows.Scan(&run.ID, &run.Label, &run.Backend, &run.Model, &run.PromptStyle,
			&run.Status, &run.Total, &run.Failed, &run.CreatedAt, &run.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "store: scan run")
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
