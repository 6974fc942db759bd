package prioritize

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prodscope/prodscope/internal/apperr"
	"github.com/prodscope/prodscope/internal/config"
	"github.com/prodscope/prodscope/internal/llm"
	"github.com/prodscope/prodscope/internal/model"
)

func newTestEngine() *Engine {
	return NewEngine(&config.Config{
		Scoring: config.ScoringConfig{JTBDWeight: 1, RICEWeight: 1, TotalPopulation: 1_000_000},
	}, llm.NewMock())
}

func TestPrioritizeRanksAndScores(t *testing.T) {
	engine := newTestEngine()

	resp, err := engine.Prioritize(context.Background(), model.PrioritizeRequest{
		ProblemStatement: "meal planning is tedious",
		TargetUsers:      "busy parents",
		PainPoints: []model.PainPoint{
			{Description: "low severity gripe", Severity: model.SeverityLow, Frequency: 1},
			{Description: "constant blocker", Severity: model.SeverityHigh, Frequency: 8, Quote: "I gave up"},
			{Description: "medium annoyance", Severity: model.SeverityMedium, Frequency: 3},
		},
	})
	require.NoError(t, err)
	require.Len(t, resp.PrioritizedPainPoints, 3)
	assert.Equal(t, 3, resp.TotalAnalyzed)

	top := resp.PrioritizedPainPoints[0]
	assert.Equal(t, 1, top.Rank)
	assert.Equal(t, "constant blocker", top.PainPoint.Description)
	assert.Equal(t, top.PainPoint.Description, resp.TopOpportunity)
	require.NotNil(t, top.Why.MarketData)
	assert.Equal(t, "food & meal planning", top.Why.MarketData.Category)
	assert.NotEmpty(t, top.Why.WhyTopPriority)
	assert.Equal(t, []string{"I gave up"}, top.Why.QuoteSamples)

	for i, p := range resp.PrioritizedPainPoints {
		assert.Equal(t, i+1, p.Rank)
		assert.GreaterOrEqual(t, p.FinalScore, 0.0)
		assert.LessOrEqual(t, p.FinalScore, 200.0)
		assert.GreaterOrEqual(t, p.JTBD.OpportunityScore, 0.0)
		assert.LessOrEqual(t, p.JTBD.OpportunityScore, 20.0)
		if i > 0 {
			assert.LessOrEqual(t, p.FinalScore, resp.PrioritizedPainPoints[i-1].FinalScore)
		}
	}
	// Ranks only appear after sorting, so no market data below the top.
	assert.Nil(t, resp.PrioritizedPainPoints[1].Why.MarketData)
}

func TestPrioritizeEmptyInput(t *testing.T) {
	engine := newTestEngine()

	_, err := engine.Prioritize(context.Background(), model.PrioritizeRequest{})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestPrioritizeStableTieOrder(t *testing.T) {
	engine := newTestEngine()

	// Identical pain points produce identical scores; input order must hold.
	resp, err := engine.Prioritize(context.Background(), model.PrioritizeRequest{
		ProblemStatement: "generic problem",
		PainPoints: []model.PainPoint{
			{Description: "first", Severity: model.SeverityMedium, Frequency: 2},
			{Description: "second", Severity: model.SeverityMedium, Frequency: 2},
			{Description: "third", Severity: model.SeverityMedium, Frequency: 2},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "first", resp.PrioritizedPainPoints[0].PainPoint.Description)
	assert.Equal(t, "second", resp.PrioritizedPainPoints[1].PainPoint.Description)
	assert.Equal(t, "third", resp.PrioritizedPainPoints[2].PainPoint.Description)
}

func TestAlignPersonas(t *testing.T) {
	pp := model.PainPoint{Description: "sync keeps failing"}
	personas := []model.Persona{
		{Name: "Primary Pat", PainPoints: []string{"sync keeps failing", "other"}},
		{Name: "Secondary Sam", PainPoints: []string{"a", "b", "sync keeps failing"}},
		{Name: "Unaffected Uma", PainPoints: []string{"something else"}},
	}

	a := alignPersonas(pp, personas)
	assert.Equal(t, model.AffinityPrimary, a.Affinities["Primary Pat"])
	assert.Equal(t, model.AffinitySecondary, a.Affinities["Secondary Sam"])
	assert.Equal(t, model.AffinityNone, a.Affinities["Unaffected Uma"])
	assert.ElementsMatch(t, []string{"Primary Pat", "Secondary Sam"}, a.AffectedPersonas)
	assert.InDelta(t, 2.0/3.0, a.Coverage, 1e-9)
}

func TestAlignPersonasNoPersonas(t *testing.T) {
	a := alignPersonas(model.PainPoint{Description: "x"}, nil)
	assert.Empty(t, a.AffectedPersonas)
	assert.InDelta(t, 0.0, a.Coverage, 1e-9)
}

func TestCategorize(t *testing.T) {
	assert.Equal(t, "health & fitness", categorize("my gym app keeps crashing").name)
	assert.Equal(t, "transportation", categorize("cab booking", "urban commuters").name)
	assert.Equal(t, "general software", categorize("something unrelated").name)
}

func TestEstimateReach(t *testing.T) {
	cat := marketCategories[0] // penetration 0.35

	high := estimateReach(cat, model.PainPoint{Severity: model.SeverityHigh, Frequency: 10}, 1_000_000)
	low := estimateReach(cat, model.PainPoint{Severity: model.SeverityLow, Frequency: 1}, 1_000_000)
	assert.Greater(t, high, low)
	assert.Equal(t, 175000, high) // 1M * 0.35 * 0.5 * 1.0
	assert.GreaterOrEqual(t, low, 0)
}
