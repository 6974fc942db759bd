package prioritize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prodscope/prodscope/internal/apperr"
)

func TestOpportunity(t *testing.T) {
	tests := []struct {
		name                     string
		importance, satisfaction float64
		want                     float64
	}{
		{"underserved", 9, 2, 16},
		{"perfectly served", 8, 8, 8},
		{"overserved never penalized", 5, 9, 5},
		{"max", 10, 0, 20},
		{"min", 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Opportunity(tt.importance, tt.satisfaction)
			assert.InDelta(t, tt.want, got, 1e-9)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, 20.0)
		})
	}
}

func TestComputeRICE(t *testing.T) {
	score, err := ComputeRICE(10000, 2, 0.8, 4)
	require.NoError(t, err)
	assert.InDelta(t, 4000.0, score, 1e-9)
}

func TestComputeRICEValidation(t *testing.T) {
	tests := []struct {
		name       string
		reach      int
		impact     float64
		confidence float64
		effort     float64
		field      string
	}{
		{"negative reach", -1, 1, 0.5, 1, "reach"},
		{"confidence above one", 10, 1, 1.5, 1, "confidence"},
		{"negative confidence", 10, 1, -0.1, 1, "confidence"},
		{"zero effort", 10, 1, 0.5, 0, "effort"},
		{"negative effort", 10, 1, 0.5, -2, "effort"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ComputeRICE(tt.reach, tt.impact, tt.confidence, tt.effort)
			require.Error(t, err)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestPercentileRanks(t *testing.T) {
	ranks := percentileRanks([]float64{10, 30, 20})
	assert.InDelta(t, 0.0, ranks[0], 1e-9)
	assert.InDelta(t, 100.0, ranks[1], 1e-9)
	assert.InDelta(t, 50.0, ranks[2], 1e-9)
}

func TestPercentileRanksTiesShareRank(t *testing.T) {
	ranks := percentileRanks([]float64{5, 5, 10})
	assert.InDelta(t, ranks[0], ranks[1], 1e-9)
	assert.InDelta(t, 100.0, ranks[2], 1e-9)
}

func TestPercentileRanksSingle(t *testing.T) {
	ranks := percentileRanks([]float64{42})
	require.Len(t, ranks, 1)
	assert.InDelta(t, 100.0, ranks[0], 1e-9)
}

func TestPercentileRanksEmpty(t *testing.T) {
	assert.Empty(t, percentileRanks(nil))
}
