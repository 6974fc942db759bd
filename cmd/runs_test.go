package main

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/prodscope/prodscope/internal/model"
)

func TestFormatRunsList(t *testing.T) {
	created := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	runs := []*model.Run{
		{ID: "run-1", Kind: model.RunKindResearch, Status: model.RunStatusComplete, CreatedAt: created},
		{ID: "run-2", Kind: model.RunKindSimulation, Status: model.RunStatusFailed, CreatedAt: created,
			Error: strings.Repeat("x", 80)},
	}

	var sb strings.Builder
	formatRunsList(&sb, runs)
	out := sb.String()

	assert.Contains(t, out, "run-1")
	assert.Contains(t, out, "research")
	assert.Contains(t, out, "2026-03-14 09:30:00")
	// Long error messages are truncated for the table view.
	assert.Contains(t, out, strings.Repeat("x", 57)+"...")
	assert.NotContains(t, out, strings.Repeat("x", 70))
}
