// Package store persists research, prioritization, and simulation runs.
// Two backends are provided: sqlite for single-node deployments and the
// default local workflow, postgres for shared deployments.
package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/prodscope/prodscope/internal/config"
	"github.com/prodscope/prodscope/internal/model"
)

// RunFilter narrows ListRuns results. Zero values mean "no constraint".
type RunFilter struct {
	Kind   model.RunKind
	Status model.RunStatus
	Limit  int
	Offset int
}

// Store is the persistence interface for runs.
type Store interface {
	// CreateRun inserts a new run in the running state and returns it.
	CreateRun(ctx context.Context, kind model.RunKind, request json.RawMessage) (*model.Run, error)

	// CompleteRun marks a run complete and stores its result payload.
	CompleteRun(ctx context.Context, runID string, result json.RawMessage) error

	// FailRun marks a run failed with an error message.
	FailRun(ctx context.Context, runID string, msg string) error

	// GetRun fetches a run by ID.
	GetRun(ctx context.Context, runID string) (*model.Run, error)

	// ListRuns returns runs matching the filter, newest first.
	ListRuns(ctx context.Context, filter RunFilter) ([]*model.Run, error)

	// Migrate creates or updates the schema.
	Migrate(ctx context.Context) error

	// Close releases the underlying connections.
	Close() error
}

// New selects a backend from config. Supported drivers: sqlite, postgres.
func New(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.Store.Driver {
	case "sqlite", "":
		return NewSQLite(cfg.Store.DSN)
	case "postgres":
		return NewPostgres(ctx, cfg.Store.DSN, DefaultPoolConfig())
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
