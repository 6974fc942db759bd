// Package sim runs virtual users through planned product-flow scenarios,
// tracking frustration, decisions and churn probability step by step.
package sim

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/prodscope/prodscope/internal/apperr"
	"github.com/prodscope/prodscope/internal/config"
	"github.com/prodscope/prodscope/internal/llm"
	"github.com/prodscope/prodscope/internal/model"
)

// Step durations in seconds, by kind.
const (
	durationAction   = 5
	durationSystem   = 2
	durationDecision = 10
	durationWait     = 120
	durationDefault  = 3
)

const fallbackDecisionReasoning = "fallback: no valid decision returned"

// Outcome strings by final churn probability.
const (
	outcomeChurned = "User churned - Gave up completely"
	outcomePartial = "Partial success - Completed with significant frustration"
	outcomeSuccess = "Success - Completed the journey"
)

// Simulator orchestrates simulation runs.
type Simulator struct {
	cfg     *config.Config
	llm     llm.Client
	catalog *Catalog
}

// NewSimulator creates a Simulator. A catalog path in the config replaces
// the built-in frustration weights.
func NewSimulator(cfg *config.Config, llmClient llm.Client) (*Simulator, error) {
	catalog := DefaultCatalog()
	if cfg.Sim.CatalogPath != "" {
		loaded, err := LoadCatalog(cfg.Sim.CatalogPath)
		if err != nil {
			return nil, err
		}
		catalog = loaded
	}
	return &Simulator{
		cfg:     cfg,
		llm:     llmClient,
		catalog: catalog,
	}, nil
}

// Simulate generates a virtual user, plans scenarios and walks each one.
func (s *Simulator) Simulate(ctx context.Context, req model.SimulationRequest) (*model.SimulationResponse, error) {
	if strings.TrimSpace(req.ProblemStatement) == "" {
		return nil, apperr.Validation("problem_statement is required")
	}
	if strings.TrimSpace(req.ProductFlow) == "" {
		return nil, apperr.Validation("product_flow is required")
	}
	if req.NumScenarios < 1 {
		return nil, apperr.Validation("num_scenarios must be >= 1, got %d", req.NumScenarios)
	}
	n := req.NumScenarios
	if s.cfg.Sim.MaxScenarios > 0 && n > s.cfg.Sim.MaxScenarios {
		n = s.cfg.Sim.MaxScenarios
	}

	user, err := s.llm.GenerateVirtualUser(ctx, req.ProblemStatement, req.TargetUsers, req.Persona)
	if err != nil {
		return nil, err
	}
	if user.BaseChurnRisk == 0 {
		user.BaseChurnRisk = s.cfg.Sim.BaseRisk
	}
	// The generated user carries their own base risk into the formula.
	churn := NewChurnCalculator(user.BaseChurnRisk)

	outlines, err := s.llm.GenerateScenarios(ctx, user, req.ProblemStatement, req.ProductFlow, n)
	if err != nil {
		return nil, err
	}
	outlines = ensureHappyPathFirst(outlines)
	if len(outlines) > n {
		outlines = outlines[:n]
	}

	scenarios := make([]model.Scenario, 0, len(outlines))
	seenFailures := map[string]bool{}
	for i, outline := range outlines {
		scenario, err := s.runScenario(ctx, user, churn, outline, i+1)
		if err != nil {
			return nil, err
		}
		// A scenario whose entire failure signature was already covered
		// adds little; flag it rather than silently padding the report.
		key := failureKey(outline)
		if key != "" {
			if seenFailures[key] {
				scenario.RepeatedFailure = true
			}
			seenFailures[key] = true
		}
		scenarios = append(scenarios, scenario)
	}

	zap.S().Infow("simulation complete",
		"user", user.Name,
		"scenarios", len(scenarios),
	)

	insights := buildInsights(scenarios)
	return &model.SimulationResponse{
		VirtualUser:     user,
		Scenarios:       scenarios,
		SummaryInsights: insights.summary,
		ChurnHotspots:   insights.hotspots,
		Recommendations: insights.recommendations,
	}, nil
}

// ensureHappyPathFirst moves a happy-path outline to the front, or relabels
// the first outline (stripping its frustration events) when the planner
// produced none.
func ensureHappyPathFirst(outlines []llm.ScenarioOutline) []llm.ScenarioOutline {
	if len(outlines) == 0 {
		return outlines
	}
	for i, o := range outlines {
		if o.Type == model.ScenarioHappyPath {
			outlines[0], outlines[i] = outlines[i], outlines[0]
			return outlines
		}
	}
	outlines[0].Type = model.ScenarioHappyPath
	for i := range outlines[0].Steps {
		outlines[0].Steps[i].FrustrationEvents = nil
		if outlines[0].Steps[i].Type == model.StepError {
			outlines[0].Steps[i].Type = model.StepSystemResponse
		}
	}
	return outlines
}

// failureKey is a scenario's failure signature: its sorted distinct
// frustration events. Empty for clean journeys.
func failureKey(o llm.ScenarioOutline) string {
	set := map[string]bool{}
	for _, step := range o.Steps {
		for _, e := range step.FrustrationEvents {
			set[e] = true
		}
	}
	if len(set) == 0 {
		return ""
	}
	events := make([]string, 0, len(set))
	for e := range set {
		events = append(events, e)
	}
	sort.Strings(events)
	return strings.Join(events, "+")
}

func (s *Simulator) runScenario(ctx context.Context, user model.VirtualUser, churn *ChurnCalculator, outline llm.ScenarioOutline, number int) (model.Scenario, error) {
	scenario := model.Scenario{
		ScenarioID:  fmt.Sprintf("scenario-%03d", number),
		Name:        outline.Name,
		Type:        outline.Type,
		Description: outline.Description,
	}

	var accumulated []model.FrustrationEvent
	var elapsed float64
	finalChurn := -1.0

	for i, out := range outline.Steps {
		step := model.Step{
			StepNumber:     i + 1,
			Type:           out.Type,
			Description:    out.Description,
			UserAction:     out.UserAction,
			SystemResponse: out.SystemResponse,
		}

		step.StepDuration = stepDuration(out)
		elapsed += step.StepDuration
		step.TimeElapsed = elapsed

		for _, event := range out.FrustrationEvents {
			accumulated = append(accumulated, model.FrustrationEvent{
				Event:     event,
				RiskAdded: s.eventRisk(user, event),
			})
		}

		if len(out.FrustrationEvents) > 0 || out.Type == model.StepError {
			adj, err := s.llm.AdjustChurn(ctx, user, out.Description, churn.CalculatedRisk(accumulated, user.PatienceLevel), accumulated)
			if err != nil {
				return model.Scenario{}, err
			}
			analysis := churn.Analyze(accumulated, user.PatienceLevel, adj)
			step.ChurnAnalysis = &analysis
			finalChurn = analysis.FinalChurnProbability
		}

		step.FrustrationLevel = clamp(float64(len(accumulated))*2.5, 0, 10)
		step.EmotionalState = emotionalState(step, finalChurn)

		if out.Type == model.StepDecisionPoint && len(out.DecisionOptions) > 0 {
			if err := s.decide(ctx, user, out, &step); err != nil {
				return model.Scenario{}, err
			}
		}

		scenario.Steps = append(scenario.Steps, step)
	}

	if finalChurn < 0 {
		// Clean journey: churn is just base risk under this user's patience.
		analysis := churn.Analyze(nil, user.PatienceLevel, llm.ChurnAdjustment{
			Reasoning: "no frustration events encountered",
		})
		finalChurn = analysis.FinalChurnProbability
	}

	scenario.FinalChurnProbability = finalChurn
	scenario.Outcome = outcome(finalChurn)
	scenario.KeyInsights = scenarioInsights(scenario)
	return scenario, nil
}

// eventRisk resolves an event's catalog weight plus any personal trigger.
func (s *Simulator) eventRisk(user model.VirtualUser, event string) float64 {
	risk := s.catalog.Weight(event)
	for _, trigger := range user.FrustrationTriggers {
		if trigger.Trigger == event {
			risk += trigger.Impact
		}
	}
	return risk
}

// decide resolves a decision point. A choice naming an unknown option or
// arriving without reasoning gets one strict retry; after that the first
// offered option stands in.
func (s *Simulator) decide(ctx context.Context, user model.VirtualUser, out llm.OutlineStep, step *model.Step) error {
	step.IsDecisionPoint = true
	step.DecisionOptions = out.DecisionOptions

	d, err := s.llm.Decide(ctx, user, out.Description, out.DecisionOptions, false)
	if err != nil {
		return err
	}
	if !validDecision(d, out.DecisionOptions) {
		zap.S().Warnw("invalid decision, retrying with strict format",
			"chosen", d.OptionID,
			"step", step.StepNumber,
		)
		d, err = s.llm.Decide(ctx, user, out.Description, out.DecisionOptions, true)
		if err != nil {
			return err
		}
	}
	if !validDecision(d, out.DecisionOptions) {
		d = llm.Decision{
			OptionID:  out.DecisionOptions[0].OptionID,
			Reasoning: fallbackDecisionReasoning,
		}
	}

	step.ChosenOption = d.OptionID
	step.DecisionReasoning = d.Reasoning
	return nil
}

// validDecision requires a known option id and a non-blank reasoning. A bare
// id with no reasoning reads as a malformed reply, not a choice.
func validDecision(d llm.Decision, options []model.DecisionOption) bool {
	if strings.TrimSpace(d.Reasoning) == "" {
		return false
	}
	for _, o := range options {
		if o.OptionID == d.OptionID {
			return true
		}
	}
	return false
}

func stepDuration(out llm.OutlineStep) float64 {
	if strings.Contains(strings.ToLower(out.Description), "wait") {
		return durationWait
	}
	switch out.Type {
	case model.StepDecisionPoint:
		return durationDecision
	case model.StepAction:
		return durationAction
	case model.StepSystemResponse:
		return durationSystem
	default:
		return durationDefault
	}
}

func emotionalState(step model.Step, churn float64) model.EmotionalState {
	if step.Type == model.StepSuccess {
		if churn >= 30 {
			return model.EmotionSatisfied
		}
		return model.EmotionDelighted
	}
	switch {
	case churn < 0:
		return model.EmotionNeutral
	case churn < 30:
		return model.EmotionHopeful
	case churn < 50:
		return model.EmotionFrustrated
	case churn < 75:
		return model.EmotionAnnoyed
	default:
		return model.EmotionAngry
	}
}

func outcome(churn float64) string {
	switch {
	case churn > 75:
		return outcomeChurned
	case churn > 50:
		return outcomePartial
	default:
		return outcomeSuccess
	}
}
