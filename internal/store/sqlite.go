package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/prodscope/prodscope/internal/apperr"
	"github.com/prodscope/prodscope/internal/model"
)

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	kind       TEXT NOT NULL,
	status     TEXT NOT NULL,
	request    BLOB NOT NULL,
	result     BLOB,
	error      TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_kind ON runs(kind);
CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
`

// SQLiteStore persists runs in a local sqlite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens (creating if needed) a sqlite database at path.
func NewSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrapf(err, "opening sqlite database %s", path)
	}

	// WAL keeps readers from blocking the writer during long runs.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "applying %s", p)
		}
	}

	return &SQLiteStore{db: db}, nil
}

// Migrate creates the runs table if it does not exist.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteMigration); err != nil {
		return eris.Wrap(err, "running sqlite migration")
	}
	return nil
}

func (s *SQLiteStore) CreateRun(ctx context.Context, kind model.RunKind, request json.RawMessage) (*model.Run, error) {
	now := time.Now().UTC()
	run := &model.Run{
		ID:        uuid.New().String(),
		Kind:      kind,
		Status:    model.RunStatusRunning,
		Request:   request,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, kind, status, request, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, string(run.Kind), string(run.Status), []byte(run.Request), run.CreatedAt, run.UpdatedAt)
	if err != nil {
		return nil, eris.Wrap(err, "inserting run")
	}
	return run, nil
}

func (s *SQLiteStore) CompleteRun(ctx context.Context, runID string, result json.RawMessage) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, result = ?, updated_at = ? WHERE id = ?`,
		string(model.RunStatusComplete), []byte(result), time.Now().UTC(), runID)
	if err != nil {
		return eris.Wrap(err, "completing run")
	}
	return checkRowsAffected(res, runID)
}

func (s *SQLiteStore) FailRun(ctx context.Context, runID string, msg string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, error = ?, updated_at = ? WHERE id = ?`,
		string(model.RunStatusFailed), msg, time.Now().UTC(), runID)
	if err != nil {
		return eris.Wrap(err, "failing run")
	}
	return checkRowsAffected(res, runID)
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, kind, status, request, result, error, created_at, updated_at
		 FROM runs WHERE id = ?`, runID)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("run %s not found", runID)
	}
	if err != nil {
		return nil, eris.Wrap(err, "fetching run")
	}
	return run, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]*model.Run, error) {
	query := `SELECT id, kind, status, request, result, error, created_at, updated_at FROM runs WHERE 1=1`
	var args []any
	if filter.Kind != "" {
		query += " AND kind = ?"
		args = append(args, string(filter.Kind))
	}
	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, string(filter.Status))
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "listing runs")
	}
	defer rows.Close()

	var runs []*model.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, eris.Wrap(err, "scanning run")
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// scannable covers both *sql.Row and *sql.Rows.
type scannable interface {
	Scan(dest ...any) error
}

func scanRun(row scannable) (*model.Run, error) {
	var (
		run             model.Run
		kind, status    string
		request, result []byte
	)
	err := row.Scan(&run.ID, &kind, &status, &request, &result, &run.Error, &run.CreatedAt, &run.UpdatedAt)
	if err != nil {
		return nil, err
	}
	run.Kind = model.RunKind(kind)
	run.Status = model.RunStatus(status)
	run.Request = request
	run.Result = result
	return &run, nil
}

func checkRowsAffected(res sql.Result, runID string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "checking rows affected")
	}
	if n == 0 {
		return apperr.NotFound("run %s not found", runID)
	}
	return nil
}
