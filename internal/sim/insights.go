package sim

import (
	"fmt"
	"sort"

	"github.com/prodscope/prodscope/internal/model"
)

// hotspotThreshold is the churn probability above which a step counts as a
// hotspot.
const hotspotThreshold = 50

const maxHotspots = 3

// eventRecommendations maps frustration events to product recommendations.
var eventRecommendations = map[string]string{
	"long_wait":                  "Add progress feedback during waits; users tolerate delays they can see moving",
	"no_cabs_5min":               "Show estimated availability up front and offer scheduling when supply is short",
	"long_wait_3to5min":          "Set wait expectations early; a visible countdown beats an open-ended spinner",
	"feature_unavailable":        "Surface unavailable features with a clear alternative instead of a dead end",
	"error_encountered":          "Replace raw errors with recovery paths that preserve the user's progress",
	"retry_required":             "Make retries one tap and carry over everything already entered",
	"unexpected_cost":            "Disclose all costs before commitment; surprise fees are a top churn driver",
	"price_higher_than_expected": "Lock quoted prices through checkout or explain changes before charging",
	"poor_quality":               "Tighten quality checks on the core output; it is the product's one job",
	"lack_of_feedback":           "Acknowledge every user action within a second, even if the work takes longer",
	"driver_cancellation":        "Auto-rebook on provider cancellation instead of sending the user back to the start",
	"no_availability":            "Offer a waitlist or nearest alternative when nothing is available",
	"redirect_failure":           "Keep users inside the product; every external handoff is a place to lose them",
	"slow_response":              "Budget per-interaction latency; consistent small delays compound into churn",
	"payment_failure":            "Add automatic payment retry with alternative methods before failing the order",
	"data_loss":                  "Persist work continuously; a single data loss ends most user relationships",
	"security_concern":           "Address security doubts explicitly at the moment they arise",
}

type insights struct {
	summary         []string
	hotspots        []string
	recommendations []string
}

// buildInsights derives the cross-scenario summary, churn hotspots and
// recommendations.
func buildInsights(scenarios []model.Scenario) insights {
	var out insights
	if len(scenarios) == 0 {
		return out
	}

	var totalChurn float64
	outcomes := map[string]int{}
	for _, sc := range scenarios {
		totalChurn += sc.FinalChurnProbability
		outcomes[sc.Outcome]++
	}
	avgChurn := totalChurn / float64(len(scenarios))

	out.summary = append(out.summary,
		fmt.Sprintf("Average churn probability across %d scenarios: %.1f%%", len(scenarios), avgChurn))
	out.summary = append(out.summary,
		fmt.Sprintf("Outcomes: %d succeeded, %d partial, %d churned",
			outcomes[outcomeSuccess], outcomes[outcomePartial], outcomes[outcomeChurned]))
	if repeated := countRepeated(scenarios); repeated > 0 {
		out.summary = append(out.summary,
			fmt.Sprintf("%d scenario(s) repeated an already-covered failure mode", repeated))
	}

	out.hotspots = findHotspots(scenarios)
	out.recommendations = recommend(scenarios)
	return out
}

func countRepeated(scenarios []model.Scenario) int {
	n := 0
	for _, sc := range scenarios {
		if sc.RepeatedFailure {
			n++
		}
	}
	return n
}

// findHotspots returns the steps whose churn crossed the threshold, ordered
// by how often they did so across scenarios, capped at three.
func findHotspots(scenarios []model.Scenario) []string {
	counts := map[string]int{}
	for _, sc := range scenarios {
		for _, step := range sc.Steps {
			if step.ChurnAnalysis != nil && step.ChurnAnalysis.FinalChurnProbability > hotspotThreshold {
				counts[step.Description]++
			}
		}
	}

	type hotspot struct {
		desc  string
		count int
	}
	list := make([]hotspot, 0, len(counts))
	for desc, count := range counts {
		list = append(list, hotspot{desc, count})
	}
	sort.SliceStable(list, func(a, b int) bool {
		if list[a].count != list[b].count {
			return list[a].count > list[b].count
		}
		return list[a].desc < list[b].desc
	})

	out := make([]string, 0, maxHotspots)
	for i, h := range list {
		if i >= maxHotspots {
			break
		}
		out = append(out, fmt.Sprintf("%s (high churn in %d scenario(s))", h.desc, h.count))
	}
	return out
}

// recommend maps the three most frequent frustration events to product
// recommendations.
func recommend(scenarios []model.Scenario) []string {
	// Events accumulate across a scenario's steps, so the last churn
	// analysis holds the scenario's full event list; count from there to
	// avoid double counting the running tally.
	counts := map[string]int{}
	for _, sc := range scenarios {
		for i := len(sc.Steps) - 1; i >= 0; i-- {
			if sc.Steps[i].ChurnAnalysis != nil {
				for _, e := range sc.Steps[i].ChurnAnalysis.FrustrationEvents {
					counts[e.Event]++
				}
				break
			}
		}
	}

	type eventCount struct {
		event string
		count int
	}
	list := make([]eventCount, 0, len(counts))
	for e, c := range counts {
		list = append(list, eventCount{e, c})
	}
	sort.SliceStable(list, func(a, b int) bool {
		if list[a].count != list[b].count {
			return list[a].count > list[b].count
		}
		return list[a].event < list[b].event
	})

	out := make([]string, 0, 3)
	for i, ec := range list {
		if i >= 3 {
			break
		}
		if rec, ok := eventRecommendations[ec.event]; ok {
			out = append(out, rec)
		} else {
			out = append(out, fmt.Sprintf("Investigate recurring %q frustration (%d occurrence(s))", ec.event, ec.count))
		}
	}
	return out
}

// scenarioInsights summarizes a single scenario: its peak churn step, its
// decision load and total journey time.
func scenarioInsights(sc model.Scenario) []string {
	var out []string

	peak := -1.0
	peakStep := 0
	decisions := 0
	for _, step := range sc.Steps {
		if step.ChurnAnalysis != nil && step.ChurnAnalysis.FinalChurnProbability > peak {
			peak = step.ChurnAnalysis.FinalChurnProbability
			peakStep = step.StepNumber
		}
		if step.IsDecisionPoint {
			decisions++
		}
	}

	if peak >= 0 {
		out = append(out, fmt.Sprintf("Churn peaked at %.1f%% on step %d", peak, peakStep))
	}
	if decisions > 0 {
		out = append(out, fmt.Sprintf("User faced %d decision point(s)", decisions))
	}
	if n := len(sc.Steps); n > 0 {
		out = append(out, fmt.Sprintf("Journey took %.0f seconds over %d steps", sc.Steps[n-1].TimeElapsed, n))
	}
	return out
}
