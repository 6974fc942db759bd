package sim

import (
	"fmt"

	"github.com/prodscope/prodscope/internal/llm"
	"github.com/prodscope/prodscope/internal/model"
)

// aiAdjustmentLimit bounds the contextual correction either way.
const aiAdjustmentLimit = 50

// ChurnCalculator turns accumulated frustration into a churn probability.
type ChurnCalculator struct {
	baseRisk float64
}

// NewChurnCalculator creates a calculator with the given base risk.
func NewChurnCalculator(baseRisk float64) *ChurnCalculator {
	return &ChurnCalculator{baseRisk: baseRisk}
}

// patienceMultiplier amplifies formula risk for impatient users.
func patienceMultiplier(p model.PatienceLevel) float64 {
	switch p {
	case model.PatienceLow:
		return 2.0
	case model.PatienceHigh:
		return 1.0
	default:
		return 1.5
	}
}

// riskLevel buckets a churn probability.
func riskLevel(p float64) model.RiskLevel {
	switch {
	case p < 30:
		return model.RiskLow
	case p < 50:
		return model.RiskMedium
	case p < 75:
		return model.RiskHigh
	default:
		return model.RiskCritical
	}
}

// CalculatedRisk computes the formula risk for the accumulated events under
// the given patience, before any contextual adjustment.
func (c *ChurnCalculator) CalculatedRisk(events []model.FrustrationEvent, patience model.PatienceLevel) float64 {
	formula := c.baseRisk
	for _, e := range events {
		formula += e.RiskAdded
	}
	return clamp(formula*patienceMultiplier(patience), 0, 100)
}

// Analyze computes the full churn breakdown for the accumulated events.
// Repeated events sum; an event hitting twice hurts twice. The contextual
// adjustment is clamped to +/-50 points and the final probability to
// [0, 100].
func (c *ChurnCalculator) Analyze(events []model.FrustrationEvent, patience model.PatienceLevel, adj llm.ChurnAdjustment) model.ChurnAnalysis {
	formula := c.baseRisk
	for _, e := range events {
		formula += e.RiskAdded
	}

	mult := patienceMultiplier(patience)
	calculated := clamp(formula*mult, 0, 100)

	adjustment := clamp(adj.Adjustment, -aiAdjustmentLimit, aiAdjustmentLimit)
	final := clamp(calculated+adjustment, 0, 100)

	reasoning := adj.Reasoning
	if reasoning == "" {
		reasoning = fmt.Sprintf("%d frustration events at %s patience", len(events), patience)
	}

	return model.ChurnAnalysis{
		BaseRisk:              c.baseRisk,
		FrustrationEvents:     events,
		FormulaRisk:           formula,
		PatienceMultiplier:    mult,
		CalculatedRisk:        calculated,
		AIAdjustment:          adjustment,
		AIAdjustments:         adj.Factors,
		FinalChurnProbability: final,
		RiskLevel:             riskLevel(final),
		Reasoning:             reasoning,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
