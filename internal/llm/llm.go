// Package llm defines the language-model operations used by the research,
// prioritization and simulation pipelines, with a Claude-backed
// implementation and a deterministic offline one for demos and tests.
package llm

import (
	"context"

	"github.com/prodscope/prodscope/internal/model"
)

// RICEEstimate is the model-estimated portion of a RICE score. Reach comes
// from market sizing, not from the model.
type RICEEstimate struct {
	Impact          float64            `json:"impact"`
	ImpactReasoning string             `json:"impact_reasoning"`
	Confidence      float64            `json:"confidence"`
	ConfidenceBasis string             `json:"confidence_basis"`
	Effort          float64            `json:"effort"`
	EffortBreakdown map[string]float64 `json:"effort_breakdown"`
}

// OutlineStep is one planned step inside a scenario outline. Frustration
// events reference catalog event names and are resolved to weights by the
// simulator.
type OutlineStep struct {
	Type              model.StepType         `json:"step_type"`
	Description       string                 `json:"description"`
	UserAction        string                 `json:"user_action,omitempty"`
	SystemResponse    string                 `json:"system_response,omitempty"`
	FrustrationEvents []string               `json:"frustration_events,omitempty"`
	DecisionOptions   []model.DecisionOption `json:"decision_options,omitempty"`
}

// ScenarioOutline is a planned journey before simulation. The simulator
// walks the steps, computes churn and resolves decision points.
type ScenarioOutline struct {
	Name        string             `json:"scenario_name"`
	Type        model.ScenarioType `json:"scenario_type"`
	Description string             `json:"description"`
	Steps       []OutlineStep      `json:"steps"`
}

// Decision is the resolved choice at a decision point.
type Decision struct {
	OptionID  string `json:"option_id"`
	Reasoning string `json:"reasoning"`
}

// ChurnAdjustment is the contextual correction applied on top of the churn
// formula, itemized by factor. The total is clamped to [-50, 50] before use.
type ChurnAdjustment struct {
	Adjustment float64            `json:"adjustment"`
	Factors    []model.Adjustment `json:"factors,omitempty"`
	Reasoning  string             `json:"reasoning"`
}

// Client is the set of language-model operations the pipelines depend on.
type Client interface {
	// ExtractPainPoints pulls structured complaints out of raw discussion
	// items. Malformed entries in the model output are skipped; if nothing
	// parseable comes back from non-empty input the call fails.
	ExtractPainPoints(ctx context.Context, problem, targetUsers string, items []model.SearchItem) ([]model.PainPoint, error)

	// GeneratePersonas synthesizes n user archetypes from researched pain
	// points.
	GeneratePersonas(ctx context.Context, problem, targetUsers string, painPoints []model.PainPoint, n int) ([]model.Persona, error)

	// ScoreJTBD rates importance and satisfaction for one pain point. The
	// opportunity score is computed by the caller, not trusted from the
	// model.
	ScoreJTBD(ctx context.Context, problem string, pp model.PainPoint) (model.JTBDScore, error)

	// EstimateRICE rates impact, confidence and effort for one pain point.
	EstimateRICE(ctx context.Context, problem string, pp model.PainPoint) (RICEEstimate, error)

	// GenerateVirtualUser builds a simulated user profile, optionally
	// grounded in a research persona.
	GenerateVirtualUser(ctx context.Context, problem, targetUsers string, persona *model.Persona) (model.VirtualUser, error)

	// GenerateScenarios plans n journey outlines through the product flow.
	GenerateScenarios(ctx context.Context, user model.VirtualUser, problem, productFlow string, n int) ([]ScenarioOutline, error)

	// Decide picks one of the offered options at a decision point. With
	// strict set, the prompt insists on the exact output format; callers
	// use it for the single retry after an invalid choice.
	Decide(ctx context.Context, user model.VirtualUser, situation string, options []model.DecisionOption, strict bool) (Decision, error)

	// AdjustChurn produces the contextual adjustment for one step's churn
	// probability.
	AdjustChurn(ctx context.Context, user model.VirtualUser, situation string, calculatedRisk float64, events []model.FrustrationEvent) (ChurnAdjustment, error)
}
