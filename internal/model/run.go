package model

import (
	"encoding/json"
	"time"
)

// RunKind distinguishes stored run records.
type RunKind string

const (
	RunKindResearch   RunKind = "research"
	RunKindSimulation RunKind = "simulation"
	RunKindPrioritize RunKind = "prioritize"
)

// RunStatus tracks the lifecycle of a stored run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run is a persisted record of one pipeline execution, request and result
// stored as raw JSON so the store stays schema-stable across result shapes.
type Run struct {
	ID        string          `json:"id"`
	Kind      RunKind         `json:"kind"`
	Status    RunStatus       `json:"status"`
	Request   json.RawMessage `json:"request"`
	Result    json.RawMessage `json:"result,omitempty"`
	Error     string          `json:"error,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
