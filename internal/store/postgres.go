package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/prodscope/prodscope/internal/apperr"
	"github.com/prodscope/prodscope/internal/db"
	"github.com/prodscope/prodscope/internal/model"
)

const postgresMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id         UUID PRIMARY KEY,
	kind       TEXT NOT NULL,
	status     TEXT NOT NULL,
	request    JSONB NOT NULL,
	result     JSONB,
	error      TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_kind ON runs(kind);
CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
`

const (
	stmtCreateRun   = "createRun"
	stmtCompleteRun = "completeRun"
	stmtFailRun     = "failRun"
	stmtGetRun      = "getRun"
)

// preparedStatements is registered on every new connection so the hot-path
// queries skip parsing after the first use.
var preparedStatements = map[string]string{
	stmtCreateRun: `INSERT INTO runs (id, kind, status, request, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
	stmtCompleteRun: `UPDATE runs SET status = $1, result = $2, updated_at = $3 WHERE id = $4`,
	stmtFailRun:     `UPDATE runs SET status = $1, error = $2, updated_at = $3 WHERE id = $4`,
	stmtGetRun: `SELECT id, kind, status, request, result, error, created_at, updated_at
		FROM runs WHERE id = $1`,
}

// PoolConfig bounds the postgres connection pool.
type PoolConfig struct {
	MaxConns int32
	MinConns int32
}

// DefaultPoolConfig suits a single service instance.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{MaxConns: 8, MinConns: 1}
}

// PostgresStore persists runs in postgres via a pgx pool.
type PostgresStore struct {
	pool db.Pool
}

// NewPostgres connects to postgres, registers prepared statements, and
// verifies the connection with a ping.
func NewPostgres(ctx context.Context, dsn string, poolCfg PoolConfig) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, eris.Wrap(err, "parsing postgres DSN")
	}
	cfg.MaxConns = poolCfg.MaxConns
	cfg.MinConns = poolCfg.MinConns
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return fmt.Errorf("preparing %s: %w", name, err)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, eris.Wrap(err, "creating postgres pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "pinging postgres")
	}
	return &PostgresStore{pool: pool}, nil
}

// Migrate creates the runs table if it does not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, postgresMigration); err != nil {
		return eris.Wrap(err, "running postgres migration")
	}
	return nil
}

func (s *PostgresStore) CreateRun(ctx context.Context, kind model.RunKind, request json.RawMessage) (*model.Run, error) {
	now := time.Now().UTC()
	run := &model.Run{
		ID:        uuid.New().String(),
		Kind:      kind,
		Status:    model.RunStatusRunning,
		Request:   request,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := s.pool.Exec(ctx, stmtCreateRun,
		run.ID, string(run.Kind), string(run.Status), []byte(run.Request), run.CreatedAt, run.UpdatedAt)
	if err != nil {
		return nil, eris.Wrap(err, "inserting run")
	}
	return run, nil
}

func (s *PostgresStore) CompleteRun(ctx context.Context, runID string, result json.RawMessage) error {
	tag, err := s.pool.Exec(ctx, stmtCompleteRun,
		string(model.RunStatusComplete), []byte(result), time.Now().UTC(), runID)
	if err != nil {
		return eris.Wrap(err, "completing run")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("run %s not found", runID)
	}
	return nil
}

func (s *PostgresStore) FailRun(ctx context.Context, runID string, msg string) error {
	tag, err := s.pool.Exec(ctx, stmtFailRun,
		string(model.RunStatusFailed), msg, time.Now().UTC(), runID)
	if err != nil {
		return eris.Wrap(err, "failing run")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("run %s not found", runID)
	}
	return nil
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.pool.QueryRow(ctx, stmtGetRun, runID)
	run, err := scanPgRun(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("run %s not found", runID)
	}
	if err != nil {
		return nil, eris.Wrap(err, "fetching run")
	}
	return run, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]*model.Run, error) {
	query := `SELECT id, kind, status, request, result, error, created_at, updated_at FROM runs`
	var (
		args  []any
		where []string
	)
	if filter.Kind != "" {
		args = append(args, string(filter.Kind))
		where = append(where, fmt.Sprintf("kind = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	for i, cond := range where {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "listing runs")
	}
	defer rows.Close()

	var runs []*model.Run
	for rows.Next() {
		run, err := scanPgRun(rows)
		if err != nil {
			return nil, eris.Wrap(err, "scanning run")
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func scanPgRun(row pgx.Row) (*model.Run, error) {
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
