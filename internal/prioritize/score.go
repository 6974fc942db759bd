package prioritize

import (
	"github.com/prodscope/prodscope/internal/apperr"
)

// Opportunity computes the JTBD opportunity score from importance and
// satisfaction, both on a 0-10 scale. Underserved jobs (satisfaction below
// importance) score above importance; overserved ones never score below it.
// Range is [0, 20].
func Opportunity(importance, satisfaction float64) float64 {
	gap := importance - satisfaction
	if gap < 0 {
		gap = 0
	}
	return importance + gap
}

// ComputeRICE computes Reach * Impact * Confidence / Effort, validating each
// input range.
func ComputeRICE(reach int, impact, confidence, effort float64) (float64, error) {
	if reach < 0 {
		return 0, apperr.Validation("rice reach must be >= 0, got %d", reach)
	}
	if confidence < 0 || confidence > 1 {
		return 0, apperr.Validation("rice confidence must be in [0, 1], got %g", confidence)
	}
	if effort <= 0 {
		return 0, apperr.Validation("rice effort must be > 0, got %g", effort)
	}
	return float64(reach) * impact * confidence / effort, nil
}

// percentileRanks maps each value to its percentile rank within the batch,
// 0-100. Ties share a rank; a single-element batch ranks 100.
func percentileRanks(values []float64) []float64 {
	n := len(values)
	ranks := make([]float64, n)
	if n == 0 {
		return ranks
	}
	if n == 1 {
		ranks[0] = 100
		return ranks
	}
	for i, v := range values {
		below := 0
		for j, w := range values {
			if j != i && w < v {
				below++
			}
		}
		ranks[i] = float64(below) / float64(n-1) * 100
	}
	return ranks
}
