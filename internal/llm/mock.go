package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/prodscope/prodscope/internal/model"
)

type mock struct{}

// NewMock returns a deterministic offline Client. Demo mode and tests use it
// so the full pipeline runs without an API key.
func NewMock() Client {
	return &mock{}
}

func (m *mock) ExtractPainPoints(_ context.Context, _, _ string, items []model.SearchItem) ([]model.PainPoint, error) {
	points := make([]model.PainPoint, 0, len(items))
	for _, item := range items {
		pp := model.PainPoint{
			Description: item.Title,
			Severity:    severityFromScore(item.Score),
			SourceURL:   item.URL,
			Frequency:   1 + len(item.Comments),
		}
		if len(item.Comments) > 0 {
			pp.Quote = item.Comments[0].Text
		} else {
			pp.Quote = item.Body
		}
		points = append(points, pp)
	}
	return points, nil
}

func severityFromScore(score int) model.Severity {
	switch {
	case score >= 500:
		return model.SeverityHigh
	case score >= 100:
		return model.SeverityMedium
	default:
		return model.SeverityLow
	}
}

func (m *mock) GeneratePersonas(_ context.Context, _, targetUsers string, painPoints []model.PainPoint, n int) ([]model.Persona, error) {
	archetypes := []struct {
		name, occupation, location string
		age                        int
		savvy                      model.TechSavviness
	}{
		{"Maya Chen", "Marketing Manager", "Austin, TX", 34, model.TechSavvinessHigh},
		{"Derek Olsen", "High School Teacher", "Columbus, OH", 47, model.TechSavvinessMedium},
		{"Priya Raman", "Freelance Designer", "Seattle, WA", 28, model.TechSavvinessHigh},
		{"Tom Kowalski", "Warehouse Supervisor", "Cleveland, OH", 52, model.TechSavvinessLow},
		{"Alicia Fuentes", "Nurse Practitioner", "Phoenix, AZ", 39, model.TechSavvinessMedium},
	}

	personas := make([]model.Persona, 0, n)
	for i := 0; i < n; i++ {
		a := archetypes[i%len(archetypes)]
		p := model.Persona{
			Name:          a.name,
			Age:           a.age,
			Occupation:    a.occupation,
			Location:      a.location,
			Background:    fmt.Sprintf("%s juggles a busy schedule as a %s, representative of %s.", a.name, strings.ToLower(a.occupation), targetUsers),
			Goals:         []string{"Solve the problem without adding a new chore", "Trust the tool enough to stick with it"},
			Behaviors:     []string{"Tries free tiers before paying", "Abandons tools after two bad sessions"},
			Quote:         "I don't need another app to manage. I need the problem to go away.",
			TechSavviness: a.savvy,
		}
		// Spread the researched pain points across personas so each has a
		// distinct primary concern.
		for j := i; j < len(painPoints); j += n {
			p.PainPoints = append(p.PainPoints, painPoints[j].Description)
		}
		if len(p.PainPoints) == 0 && len(painPoints) > 0 {
			p.PainPoints = append(p.PainPoints, painPoints[0].Description)
		}
		personas = append(personas, p)
	}
	return personas, nil
}

func (m *mock) ScoreJTBD(_ context.Context, _ string, pp model.PainPoint) (model.JTBDScore, error) {
	var importance float64
	switch pp.Severity {
	case model.SeverityHigh:
		importance = 9
	case model.SeverityMedium:
		importance = 7
	default:
		importance = 5
	}
	// More frequent complaints mean current tools satisfy less.
	satisfaction := clamp(7-float64(pp.Frequency), 1, 7)

	return model.JTBDScore{
		JobStatement: fmt.Sprintf("When I hit %q, I want it handled so I can get on with my day.",
			strings.ToLower(pp.Description)),
		Importance:       importance,
		Satisfaction:     satisfaction,
		OpportunityScore: importance + max(importance-satisfaction, 0),
		Reasoning:        "Derived from reported severity and how often the complaint recurs.",
	}, nil
}

func (m *mock) EstimateRICE(_ context.Context, _ string, pp model.PainPoint) (RICEEstimate, error) {
	var impact, effort float64
	switch pp.Severity {
	case model.SeverityHigh:
		impact, effort = 2, 3
	case model.SeverityMedium:
		impact, effort = 1, 2
	default:
		impact, effort = 0.5, 1
	}
	return RICEEstimate{
		Impact:          impact,
		ImpactReasoning: "Scaled from reported severity.",
		Confidence:      clamp(0.5+0.1*float64(pp.Frequency), 0.5, 0.9),
		ConfidenceBasis: "More independent reports raise confidence in the signal.",
		Effort:          effort,
		EffortBreakdown: map[string]float64{
			"design":      effort * 0.25,
			"engineering": effort * 0.5,
			"validation":  effort * 0.25,
		},
	}, nil
}

func (m *mock) GenerateVirtualUser(_ context.Context, problem, _ string, persona *model.Persona) (model.VirtualUser, error) {
	user := model.VirtualUser{
		Name:           "Jordan Reyes",
		Age:            33,
		Occupation:     "Operations Analyst",
		Location:       "Denver, CO",
		ProblemContext: fmt.Sprintf("Needs a dependable answer to: %s", problem),
		PrimaryGoal:    "Get through the flow quickly and without surprises",
		PatienceLevel:  model.PatienceMedium,
		Sensitivities: []model.Sensitivity{
			{Name: "time", Level: 8, Description: "Hates waiting without feedback"},
			{Name: "cost", Level: 6, Description: "Compares prices before committing"},
			{Name: "reliability", Level: 9, Description: "One data loss and they are gone"},
		},
		Traits: []model.Trait{
			{Name: "persistence", Value: 6, Description: "Retries once, rarely twice"},
			{Name: "exploration", Value: 4, Description: "Sticks to the obvious path"},
		},
		FrustrationTriggers: []model.FrustrationTrigger{
			{Trigger: "long_wait", Threshold: 120, Impact: 10},
			{Trigger: "payment_failure", Threshold: 1, Impact: 15},
		},
	}
	if persona != nil {
		user.Name = persona.Name
		user.Age = persona.Age
		user.Occupation = persona.Occupation
		user.Location = persona.Location
		user.PersonaSource = persona.Name
		if len(persona.Goals) > 0 {
			user.PrimaryGoal = persona.Goals[0]
		}
		switch persona.TechSavviness {
		case model.TechSavvinessLow:
			user.PatienceLevel = model.PatienceLow
		case model.TechSavvinessHigh:
			user.PatienceLevel = model.PatienceHigh
		}
	}
	return user, nil
}

func (m *mock) GenerateScenarios(_ context.Context, user model.VirtualUser, _, productFlow string, n int) ([]ScenarioOutline, error) {
	outlines := make([]ScenarioOutline, 0, n)

	outlines = append(outlines, ScenarioOutline{
		Name:        "Everything works first try",
		Type:        model.ScenarioHappyPath,
		Description: fmt.Sprintf("%s moves through %q with no obstacles.", user.Name, productFlow),
		Steps: []OutlineStep{
			{Type: model.StepAction, Description: "Opens the product and starts the flow", UserAction: "Starts the flow"},
			{Type: model.StepSystemResponse, Description: "Flow responds immediately with clear next steps", SystemResponse: "Shows the first screen"},
			{Type: model.StepAction, Description: "Completes the main task", UserAction: "Fills in what is needed and confirms"},
			{Type: model.StepSuccess, Description: "Task completes and the user gets what they came for"},
		},
	})

	failures := []struct {
		name, desc, event string
	}{
		{"Nothing available when needed", "The core resource is unavailable at the critical moment.", "no_availability"},
		{"Price jumps at confirmation", "The final price is higher than what was shown up front.", "price_higher_than_expected"},
		{"Payment fails at checkout", "The payment step errors out after everything else went fine.", "payment_failure"},
		{"Progress lost midway", "A crash loses the user's work partway through.", "data_loss"},
		{"Endless spinner", "The system goes quiet with no feedback for minutes.", "long_wait"},
		{"Feature missing", "The option the user needs is not offered.", "feature_unavailable"},
		{"Error then retry", "An error forces the user to redo a step.", "retry_required"},
		{"Slow every step", "Each interaction lags enough to notice.", "slow_response"},
	}

	for i := 1; i < n; i++ {
		f := failures[(i-1)%len(failures)]
		sType := model.ScenarioFailure
		if i%2 == 0 {
			sType = model.ScenarioEdgeCase
		}
		outlines = append(outlines, ScenarioOutline{
			Name:        f.name,
			Type:        sType,
			Description: f.desc,
			Steps: []OutlineStep{
				{Type: model.StepAction, Description: "Opens the product and starts the flow", UserAction: "Starts the flow"},
				{Type: model.StepError, Description: f.desc, FrustrationEvents: []string{f.event}},
				{Type: model.StepDecisionPoint, Description: "Decides whether to push on or bail", DecisionOptions: []model.DecisionOption{
					{OptionID: "retry", Description: "Try again", Consequences: "Costs time, might work"},
					{OptionID: "workaround", Description: "Look for another way inside the product", Consequences: "Uncertain"},
					{OptionID: "abandon", Description: "Give up and leave", Consequences: "Problem unsolved"},
				}},
				{Type: model.StepSystemResponse, Description: "The flow continues based on the choice", SystemResponse: "Processes the chosen path"},
			},
		})
	}
	return outlines, nil
}

func (m *mock) Decide(_ context.Context, user model.VirtualUser, _ string, options []model.DecisionOption, _ bool) (Decision, error) {
	if len(options) == 0 {
		return Decision{}, nil
	}
	// Low patience bails when bailing is on the table.
	if user.PatienceLevel == model.PatienceLow {
		for _, o := range options {
			if o.OptionID == "abandon" {
				return Decision{OptionID: o.OptionID, Reasoning: "Out of patience, not worth another attempt."}, nil
			}
		}
	}
	return Decision{
		OptionID:  options[0].OptionID,
		Reasoning: fmt.Sprintf("Takes the most direct route toward %q.", user.PrimaryGoal),
	}, nil
}

func (m *mock) AdjustChurn(_ context.Context, user model.VirtualUser, _ string, _ float64, events []model.FrustrationEvent) (ChurnAdjustment, error) {
	var factors []model.Adjustment
	switch {
	case len(events) > 1:
		factors = append(factors, model.Adjustment{Factor: "repeated_failures", Adjustment: 15})
	case len(events) == 1:
		factors = append(factors, model.Adjustment{Factor: "first_failure", Adjustment: -5})
	}
	if user.PatienceLevel == model.PatienceLow {
		factors = append(factors, model.Adjustment{Factor: "high_urgency", Adjustment: 10})
	}

	var total float64
	for _, f := range factors {
		total += f.Adjustment
	}
	return ChurnAdjustment{
		Adjustment: total,
		Factors:    factors,
		Reasoning:  "Context-derived correction from failure repetition and urgency.",
	}, nil
}
