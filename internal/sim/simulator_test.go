package sim

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

func testConfig() *config.Config {
	return &config.Config{
		Sim: config.SimConfig{BaseRisk: 10, MaxScenarios: 10},
	}
}

func newTestSimulator(t *testing.T, client llm.Client) *Simulator {
	t.Helper()
	s, err := NewSimulator(testConfig(), client)
	require.NoError(t, err)
	return s
}

// overrideLLM wraps the deterministic mock, overriding selected methods.
type overrideLLM struct {
	llm.Client
	virtualUser func() (model.VirtualUser, error)
	scenarios   func(n int) ([]llm.ScenarioOutline, error)
	decide      func(strict bool) (llm.Decision, error)
}

func (o *overrideLLM) GenerateVirtualUser(ctx context.Context, problem, targetUsers string, persona *model.Persona) (model.VirtualUser, error) {
	if o.virtualUser != nil {
		return o.virtualUser()
	}
	return o.Client.GenerateVirtualUser(ctx, problem, targetUsers, persona)
}

func (o *overrideLLM) GenerateScenarios(ctx context.Context, user model.VirtualUser, problem, flow string, n int) ([]llm.ScenarioOutline, error) {
	if o.scenarios != nil {
		return o.scenarios(n)
	}
	return o.Client.GenerateScenarios(ctx, user, problem, flow, n)
}

func (o *overrideLLM) Decide(ctx context.Context, user model.VirtualUser, s string, opts []model.DecisionOption, strict bool) (llm.Decision, error) {
	if o.decide != nil {
		return o.decide(strict)
	}
	return o.Client.Decide(ctx, user, s, opts, strict)
}

var validRequest = model.SimulationRequest{
	ProblemStatement: "booking a ride takes too long",
	TargetUsers:      "urban commuters",
	ProductFlow:      "open app, request ride, wait for driver, complete trip",
	NumScenarios:     3,
}

func TestSimulateEndToEnd(t *testing.T) {
	s := newTestSimulator(t, llm.NewMock())

	resp, err := s.Simulate(context.Background(), validRequest)
	require.NoError(t, err)

	assert.NotEmpty(t, resp.VirtualUser.Name)
	assert.InDelta(t, 10.0, resp.VirtualUser.BaseChurnRisk, 1e-9)
	require.Len(t, resp.Scenarios, 3)
	assert.Equal(t, model.ScenarioHappyPath, resp.Scenarios[0].Type)
	assert.NotEmpty(t, resp.SummaryInsights)

	for _, sc := range resp.Scenarios {
		assert.NotEmpty(t, sc.ScenarioID)
		assert.NotEmpty(t, sc.Outcome)
		assert.GreaterOrEqual(t, sc.FinalChurnProbability, 0.0)
		assert.LessOrEqual(t, sc.FinalChurnProbability, 100.0)

		var prev float64
		for i, step := range sc.Steps {
			assert.Equal(t, i+1, step.StepNumber)
			assert.GreaterOrEqual(t, step.TimeElapsed, prev, "time must not decrease")
			prev = step.TimeElapsed
		}
	}
}

func TestSimulateValidation(t *testing.T) {
	s := newTestSimulator(t, llm.NewMock())

	tests := []struct {
		name   string
		mutate func(*model.SimulationRequest)
	}{
		{"empty problem", func(r *model.SimulationRequest) { r.ProblemStatement = " " }},
		{"empty flow", func(r *model.SimulationRequest) { r.ProductFlow = "" }},
		{"zero scenarios", func(r *model.SimulationRequest) { r.NumScenarios = 0 }},
		{"negative scenarios", func(r *model.SimulationRequest) { r.NumScenarios = -2 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest
			tt.mutate(&req)
			_, err := s.Simulate(context.Background(), req)
			require.Error(t, err)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		})
	}
}

func TestSimulateCapsScenarioCount(t *testing.T) {
	cfg := testConfig()
	cfg.Sim.MaxScenarios = 2
	s, err := NewSimulator(cfg, llm.NewMock())
	require.NoError(t, err)

	req := validRequest
	req.NumScenarios = 8
	resp, err := s.Simulate(context.Background(), req)
	require.NoError(t, err)
	assert.Len(t, resp.Scenarios, 2)
}

func TestSimulateMovesHappyPathFirst(t *testing.T) {
	client := &overrideLLM{Client: llm.NewMock()}
	client.scenarios = func(int) ([]llm.ScenarioOutline, error) {
		return []llm.ScenarioOutline{
			{Name: "fails", Type: model.ScenarioFailure, Steps: []llm.OutlineStep{
				{Type: model.StepError, Description: "breaks", FrustrationEvents: []string{"error_encountered"}},
			}},
			{Name: "works", Type: model.ScenarioHappyPath, Steps: []llm.OutlineStep{
				{Type: model.StepSuccess, Description: "done"},
			}},
		}, nil
	}
	s := newTestSimulator(t, client)

	req := validRequest
	req.NumScenarios = 2
	resp, err := s.Simulate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "works", resp.Scenarios[0].Name)
	assert.Equal(t, model.ScenarioHappyPath, resp.Scenarios[0].Type)
}

func TestSimulateRelabelsWhenNoHappyPath(t *testing.T) {
	client := &overrideLLM{Client: llm.NewMock()}
	client.scenarios = func(int) ([]llm.ScenarioOutline, error) {
		return []llm.ScenarioOutline{
			{Name: "fails", Type: model.ScenarioFailure, Steps: []llm.OutlineStep{
				{Type: model.StepError, Description: "breaks", FrustrationEvents: []string{"error_encountered"}},
			}},
		}, nil
	}
	s := newTestSimulator(t, client)

	req := validRequest
	req.NumScenarios = 1
	resp, err := s.Simulate(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, resp.Scenarios, 1)
	assert.Equal(t, model.ScenarioHappyPath, resp.Scenarios[0].Type)
	// Relabelled happy paths carry no frustration.
	for _, step := range resp.Scenarios[0].Steps {
		assert.Nil(t, step.ChurnAnalysis)
	}
}

func TestSimulateFlagsRepeatedFailures(t *testing.T) {
	client := &overrideLLM{Client: llm.NewMock()}
	failing := llm.ScenarioOutline{Name: "same failure", Type: model.ScenarioFailure, Steps: []llm.OutlineStep{
		{Type: model.StepError, Description: "payment bounces", FrustrationEvents: []string{"payment_failure"}},
	}}
	client.scenarios = func(int) ([]llm.ScenarioOutline, error) {
		second := failing
		second.Name = "same failure again"
		return []llm.ScenarioOutline{
			{Name: "works", Type: model.ScenarioHappyPath, Steps: []llm.OutlineStep{{Type: model.StepSuccess, Description: "done"}}},
			failing,
			second,
		}, nil
	}
	s := newTestSimulator(t, client)

	resp, err := s.Simulate(context.Background(), validRequest)
	require.NoError(t, err)
	require.Len(t, resp.Scenarios, 3)
	assert.False(t, resp.Scenarios[1].RepeatedFailure)
	assert.True(t, resp.Scenarios[2].RepeatedFailure)
}

func decisionOutline() []llm.ScenarioOutline {
	return []llm.ScenarioOutline{
		{Name: "works", Type: model.ScenarioHappyPath, Steps: []llm.OutlineStep{
			{Type: model.StepDecisionPoint, Description: "pick a plan", DecisionOptions: []model.DecisionOption{
				{OptionID: "monthly", Description: "Monthly plan"},
				{OptionID: "annual", Description: "Annual plan"},
			}},
		}},
	}
}

func TestDecisionInvalidChoiceRetriesStrict(t *testing.T) {
	client := &overrideLLM{Client: llm.NewMock()}
	client.scenarios = func(int) ([]llm.ScenarioOutline, error) { return decisionOutline(), nil }

	var strictCalls int
	client.decide = func(strict bool) (llm.Decision, error) {
		if !strict {
			return llm.Decision{OptionID: "weekly", Reasoning: "not offered"}, nil
		}
		strictCalls++
		return llm.Decision{OptionID: "annual", Reasoning: "better value"}, nil
	}
	s := newTestSimulator(t, client)

	req := validRequest
	req.NumScenarios = 1
	resp, err := s.Simulate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, strictCalls)

	step := resp.Scenarios[0].Steps[0]
	assert.True(t, step.IsDecisionPoint)
	assert.Equal(t, "annual", step.ChosenOption)
}

func TestDecisionFallsBackToFirstOption(t *testing.T) {
	client := &overrideLLM{Client: llm.NewMock()}
	client.scenarios = func(int) ([]llm.ScenarioOutline, error) { return decisionOutline(), nil }
	client.decide = func(bool) (llm.Decision, error) {
		return llm.Decision{OptionID: "weekly"}, nil
	}
	s := newTestSimulator(t, client)

	req := validRequest
	req.NumScenarios = 1
	resp, err := s.Simulate(context.Background(), req)
	require.NoError(t, err)

	step := resp.Scenarios[0].Steps[0]
	assert.Equal(t, "monthly", step.ChosenOption)
	assert.Equal(t, fallbackDecisionReasoning, step.DecisionReasoning)
}

func TestDecisionMissingReasoningRetriesStrict(t *testing.T) {
	client := &overrideLLM{Client: llm.NewMock()}
	client.scenarios = func(int) ([]llm.ScenarioOutline, error) { return decisionOutline(), nil }

	var strictCalls int
	client.decide = func(strict bool) (llm.Decision, error) {
		if !strict {
			return llm.Decision{OptionID: "monthly", Reasoning: ""}, nil
		}
		strictCalls++
		return llm.Decision{OptionID: "monthly", Reasoning: "sticking with the cheaper plan"}, nil
	}
	s := newTestSimulator(t, client)

	req := validRequest
	req.NumScenarios = 1
	resp, err := s.Simulate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, strictCalls)

	step := resp.Scenarios[0].Steps[0]
	assert.Equal(t, "monthly", step.ChosenOption)
	assert.Equal(t, "sticking with the cheaper plan", step.DecisionReasoning)
}

func TestDecisionMissingReasoningFallsBack(t *testing.T) {
	client := &overrideLLM{Client: llm.NewMock()}
	client.scenarios = func(int) ([]llm.ScenarioOutline, error) { return decisionOutline(), nil }
	client.decide = func(bool) (llm.Decision, error) {
		return llm.Decision{OptionID: "annual", Reasoning: "   "}, nil
	}
	s := newTestSimulator(t, client)

	req := validRequest
	req.NumScenarios = 1
	resp, err := s.Simulate(context.Background(), req)
	require.NoError(t, err)

	step := resp.Scenarios[0].Steps[0]
	assert.Equal(t, "monthly", step.ChosenOption)
	assert.NotEmpty(t, step.DecisionReasoning)
	assert.Equal(t, fallbackDecisionReasoning, step.DecisionReasoning)
}

func TestChurnUsesGeneratedUserBaseRisk(t *testing.T) {
	client := &overrideLLM{Client: llm.NewMock()}
	client.virtualUser = func() (model.VirtualUser, error) {
		return model.VirtualUser{
			Name:          "Dana",
			PatienceLevel: model.PatienceHigh,
			BaseChurnRisk: 30,
		}, nil
	}
	client.scenarios = func(int) ([]llm.ScenarioOutline, error) {
		return []llm.ScenarioOutline{
			{Name: "works", Type: model.ScenarioHappyPath, Steps: []llm.OutlineStep{
				{Type: model.StepSuccess, Description: "done"},
			}},
			{Name: "fails", Type: model.ScenarioFailure, Steps: []llm.OutlineStep{
				{Type: model.StepError, Description: "breaks", FrustrationEvents: []string{"error_encountered"}},
			}},
		}, nil
	}
	s := newTestSimulator(t, client)

	req := validRequest
	req.NumScenarios = 2
	resp, err := s.Simulate(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, resp.Scenarios, 2)

	// Clean journey at high patience is exactly the user's own base risk,
	// not the configured default of 10.
	assert.InDelta(t, 30.0, resp.Scenarios[0].FinalChurnProbability, 1e-9)

	require.NotNil(t, resp.Scenarios[1].Steps[0].ChurnAnalysis)
	assert.InDelta(t, 30.0, resp.Scenarios[1].Steps[0].ChurnAnalysis.BaseRisk, 1e-9)
}

func TestStepDuration(t *testing.T) {
	tests := []struct {
		name string
		step llm.OutlineStep
		want float64
	}{
		{"action", llm.OutlineStep{Type: model.StepAction, Description: "taps button"}, 5},
		{"system", llm.OutlineStep{Type: model.StepSystemResponse, Description: "loads"}, 2},
		{"decision", llm.OutlineStep{Type: model.StepDecisionPoint, Description: "chooses"}, 10},
		{"wait dominates type", llm.OutlineStep{Type: model.StepAction, Description: "Waits for the driver"}, 120},
		{"other", llm.OutlineStep{Type: model.StepError, Description: "breaks"}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, stepDuration(tt.step), 1e-9)
		})
	}
}

func TestPersonalTriggerAddsRisk(t *testing.T) {
	s := newTestSimulator(t, llm.NewMock())
	user := model.VirtualUser{
		FrustrationTriggers: []model.FrustrationTrigger{{Trigger: "payment_failure", Impact: 15}},
	}

	assert.InDelta(t, 50.0, s.eventRisk(user, "payment_failure"), 1e-9) // 35 + 15
	assert.InDelta(t, 40.0, s.eventRisk(user, "data_loss"), 1e-9)       // untouched
}

func TestOutcomeBuckets(t *testing.T) {
	assert.Equal(t, outcomeSuccess, outcome(50))
	assert.Equal(t, outcomePartial, outcome(50.1))
	assert.Equal(t, outcomePartial, outcome(75))
	assert.Equal(t, outcomeChurned, outcome(75.1))
}
