package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/prodscope/prodscope/internal/apperr"
	"github.com/prodscope/prodscope/internal/model"
	"github.com/prodscope/prodscope/internal/resilience"
	"github.com/prodscope/prodscope/pkg/anthropic"
)

type claude struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	retry     resilience.RetryConfig
}

// NewClaude returns a Client backed by the Anthropic API.
func NewClaude(client anthropic.Client, modelID string, maxTokens int64) Client {
	return &claude{
		client:    client,
		model:     modelID,
		maxTokens: maxTokens,
		retry:     resilience.DefaultRetryConfig(),
	}
}

// complete sends one user message and returns the text reply. The API client
// marks overload and 5xx responses as transient, so the default retry
// classification backs off on those and fails fast on everything else.
func (c *claude) complete(ctx context.Context, phase, system, user string, temperature *float64) (string, error) {
	cfg := c.retry
	cfg.OnRetry = resilience.RetryLogger("anthropic", phase)

	resp, err := resilience.DoVal(ctx, cfg, func(ctx context.Context) (*anthropic.MessageResponse, error) {
		return c.client.CreateMessage(ctx, anthropic.MessageRequest{
			Model:       c.model,
			MaxTokens:   c.maxTokens,
			System:      system,
			Messages:    []anthropic.Message{{Role: "user", Content: user}},
			Temperature: temperature,
		})
	})
	if err != nil {
		return "", apperr.Upstream(phase, err)
	}

	resp.Usage.LogCost(c.model, phase)
	return resp.Text, nil
}

func (c *claude) ExtractPainPoints(ctx context.Context, problem, targetUsers string, items []model.SearchItem) ([]model.PainPoint, error) {
	if len(items) == 0 {
		return nil, nil
	}

	text, err := c.complete(ctx, "extract", extractSystem, extractPrompt(problem, targetUsers, items), nil)
	if err != nil {
		return nil, err
	}

	raw, err := extractJSONArray(text)
	if err != nil {
		return nil, apperr.Parse("extract", err)
	}

	var entries []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, apperr.Parse("extract", eris.Wrap(err, "unmarshal pain point array"))
	}

	points := make([]model.PainPoint, 0, len(entries))
	for _, entry := range entries {
		var pp model.PainPoint
		if err := json.Unmarshal(entry, &pp); err != nil {
			continue
		}
		if pp.Description == "" {
			continue
		}
		pp.Severity = normalizeSeverity(pp.Severity)
		if pp.Frequency < 1 {
			pp.Frequency = 1
		}
		points = append(points, pp)
	}

	if len(points) == 0 {
		return nil, apperr.Parse("extract", eris.New("no parseable pain points in model output"))
	}
	return points, nil
}

func normalizeSeverity(s model.Severity) model.Severity {
	switch strings.ToLower(string(s)) {
	case "low":
		return model.SeverityLow
	case "high":
		return model.SeverityHigh
	default:
		return model.SeverityMedium
	}
}

func (c *claude) GeneratePersonas(ctx context.Context, problem, targetUsers string, painPoints []model.PainPoint, n int) ([]model.Persona, error) {
	text, err := c.complete(ctx, "personas", personaSystem, personaPrompt(problem, targetUsers, painPoints, n), nil)
	if err != nil {
		return nil, err
	}

	raw, err := extractJSONArray(text)
	if err != nil {
		return nil, apperr.Parse("personas", err)
	}

	var entries []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, apperr.Parse("personas", eris.Wrap(err, "unmarshal persona array"))
	}

	personas := make([]model.Persona, 0, len(entries))
	for _, entry := range entries {
		var p model.Persona
		if err := json.Unmarshal(entry, &p); err != nil {
			continue
		}
		if p.Name == "" {
			continue
		}
		personas = append(personas, p)
	}

	if len(personas) == 0 {
		return nil, apperr.Parse("personas", eris.New("no parseable personas in model output"))
	}
	if len(personas) > n {
		personas = personas[:n]
	}
	return personas, nil
}

func (c *claude) ScoreJTBD(ctx context.Context, problem string, pp model.PainPoint) (model.JTBDScore, error) {
	text, err := c.complete(ctx, "jtbd", jtbdSystem, jtbdPrompt(problem, pp), nil)
	if err != nil {
		return model.JTBDScore{}, err
	}

	raw, err := extractJSONObject(text)
	if err != nil {
		return model.JTBDScore{}, apperr.Parse("jtbd", err)
	}

	var score model.JTBDScore
	if err := json.Unmarshal([]byte(raw), &score); err != nil {
		return model.JTBDScore{}, apperr.Parse("jtbd", eris.Wrap(err, "unmarshal jtbd score"))
	}

	score.Importance = clamp(score.Importance, 0, 10)
	score.Satisfaction = clamp(score.Satisfaction, 0, 10)
	// Never trust the model's arithmetic.
	score.OpportunityScore = score.Importance + max(score.Importance-score.Satisfaction, 0)
	return score, nil
}

func (c *claude) EstimateRICE(ctx context.Context, problem string, pp model.PainPoint) (RICEEstimate, error) {
	text, err := c.complete(ctx, "rice", riceSystem, ricePrompt(problem, pp), nil)
	if err != nil {
		return RICEEstimate{}, err
	}

	raw, err := extractJSONObject(text)
	if err != nil {
		return RICEEstimate{}, apperr.Parse("rice", err)
	}

	var est RICEEstimate
	if err := json.Unmarshal([]byte(raw), &est); err != nil {
		return RICEEstimate{}, apperr.Parse("rice", eris.Wrap(err, "unmarshal rice estimate"))
	}

	est.Impact = clamp(est.Impact, 0.25, 3)
	if est.Confidence > 1 {
		// Models occasionally answer in percent.
		est.Confidence /= 100
	}
	est.Confidence = clamp(est.Confidence, 0, 1)
	if est.Effort < 0.25 {
		est.Effort = 0.25
	}
	return est, nil
}

func (c *claude) GenerateVirtualUser(ctx context.Context, problem, targetUsers string, persona *model.Persona) (model.VirtualUser, error) {
	text, err := c.complete(ctx, "virtual_user", virtualUserSystem, virtualUserPrompt(problem, targetUsers, persona), ptr(0.9))
	if err != nil {
		return model.VirtualUser{}, err
	}

	raw, err := extractJSONObject(text)
	if err != nil {
		return model.VirtualUser{}, apperr.Parse("virtual_user", err)
	}

	var user model.VirtualUser
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return model.VirtualUser{}, apperr.Parse("virtual_user", eris.Wrap(err, "unmarshal virtual user"))
	}
	if user.Name == "" {
		return model.VirtualUser{}, apperr.Parse("virtual_user", eris.New("virtual user missing name"))
	}
	if !model.ValidPatience(user.PatienceLevel) {
		user.PatienceLevel = model.PatienceMedium
	}
	if persona != nil {
		user.PersonaSource = persona.Name
	}
	return user, nil
}

func (c *claude) GenerateScenarios(ctx context.Context, user model.VirtualUser, problem, productFlow string, n int) ([]ScenarioOutline, error) {
	text, err := c.complete(ctx, "scenarios", scenarioSystem, scenarioPrompt(user, problem, productFlow, n), ptr(0.8))
	if err != nil {
		return nil, err
	}

	raw, err := extractJSONArray(text)
	if err != nil {
		return nil, apperr.Parse("scenarios", err)
	}

	var entries []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, apperr.Parse("scenarios", eris.Wrap(err, "unmarshal scenario array"))
	}

	outlines := make([]ScenarioOutline, 0, len(entries))
	for _, entry := range entries {
		var o ScenarioOutline
		if err := json.Unmarshal(entry, &o); err != nil {
			continue
		}
		if o.Name == "" || len(o.Steps) == 0 {
			continue
		}
		outlines = append(outlines, o)
	}

	if len(outlines) == 0 {
		return nil, apperr.Parse("scenarios", eris.New("no parseable scenarios in model output"))
	}
	return outlines, nil
}

func (c *claude) Decide(ctx context.Context, user model.VirtualUser, situation string, options []model.DecisionOption, strict bool) (Decision, error) {
	text, err := c.complete(ctx, "decision", decisionSystem, decisionPrompt(user, situation, options, strict), ptr(0.7))
	if err != nil {
		return Decision{}, err
	}

	raw, err := extractJSONObject(text)
	if err != nil {
		return Decision{}, apperr.Parse("decision", err)
	}

	var d Decision
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return Decision{}, apperr.Parse("decision", eris.Wrap(err, "unmarshal decision"))
	}
	return d, nil
}

func (c *claude) AdjustChurn(ctx context.Context, user model.VirtualUser, situation string, calculatedRisk float64, events []model.FrustrationEvent) (ChurnAdjustment, error) {
	text, err := c.complete(ctx, "churn_adjustment", churnSystem, churnPrompt(user, situation, calculatedRisk, events), nil)
	if err != nil {
		return ChurnAdjustment{}, err
	}

	raw, err := extractJSONObject(text)
	if err != nil {
		return ChurnAdjustment{}, apperr.Parse("churn_adjustment", err)
	}

	var adj ChurnAdjustment
	if err := json.Unmarshal([]byte(raw), &adj); err != nil {
		return ChurnAdjustment{}, apperr.Parse("churn_adjustment", eris.Wrap(err, "unmarshal churn adjustment"))
	}
	return adj, nil
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

func ptr(f float64) *float64 {
	return &f
}

const extractSystem = `You are a product researcher extracting user pain points from online discussions. Respond only with a JSON array.`

func extractPrompt(problem, targetUsers string, items []model.SearchItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Problem space: %s\nTarget users: %s\n\n", problem, targetUsers)
	b.WriteString("Discussions:\n")
	for i, item := range items {
		fmt.Fprintf(&b, "\n--- Post %d (%s, score %d) ---\nTitle: %s\n", i+1, item.Channel, item.Score, item.Title)
		if item.Body != "" {
			fmt.Fprintf(&b, "Body: %s\n", item.Body)
		}
		fmt.Fprintf(&b, "URL: %s\n", item.URL)
		for _, c := range item.Comments {
			fmt.Fprintf(&b, "Comment (%d points): %s\n", c.Score, c.Text)
		}
	}
	b.WriteString(`
Extract the distinct user pain points from these discussions. For each, return:
- "description": one-sentence summary of the pain point
- "quote": a representative verbatim quote from the text above
- "severity": "Low", "Medium" or "High"
- "source_url": the URL of the post the quote came from
- "frequency": how many separate posts or comments express it

Return a JSON array of pain point objects and nothing else.`)
	return b.String()
}

const personaSystem = `You are a UX researcher synthesizing user personas from research data. Respond only with a JSON array.`

func personaPrompt(problem, targetUsers string, painPoints []model.PainPoint, n int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Problem space: %s\nTarget users: %s\n\nResearched pain points:\n", problem, targetUsers)
	for i, pp := range painPoints {
		fmt.Fprintf(&b, "%d. [%s] %s (seen %dx)\n", i+1, pp.Severity, pp.Description, pp.Frequency)
	}
	fmt.Fprintf(&b, `
Create %d distinct user personas grounded in these pain points. Each persona object needs:
"name", "age", "occupation", "location", "background", "goals" (array),
"pain_points" (array, ordered most to least pressing), "behaviors" (array),
"quote" (first person, in their voice), "tech_savviness" ("Low"/"Medium"/"High"),
"motivations" (array), "frustrations" (array).

Return a JSON array of %d persona objects and nothing else.`, n, n)
	return b.String()
}

const jtbdSystem = `You are a product strategist applying the Jobs-to-be-Done opportunity framework. Respond only with a JSON object.`

func jtbdPrompt(problem string, pp model.PainPoint) string {
	return fmt.Sprintf(`Problem space: %s

Pain point: %s
Severity: %s
Representative quote: %q

Frame this as a job the user is trying to get done, then rate:
- "importance": how much getting this job done matters to them, 0-10
- "satisfaction": how well current solutions do it, 0-10

Return a JSON object with "job_statement" ("When ... I want to ... so I can ..."),
"importance", "satisfaction" and "reasoning". Nothing else.`, problem, pp.Description, pp.Severity, pp.Quote)
}

const riceSystem = `You are a product manager scoring a feature opportunity with the RICE framework. Respond only with a JSON object.`

func ricePrompt(problem string, pp model.PainPoint) string {
	return fmt.Sprintf(`Problem space: %s

Pain point to address: %s
Severity: %s

Estimate:
- "impact": per-user impact of solving it, on the RICE scale (0.25 minimal, 0.5 low, 1 medium, 2 high, 3 massive)
- "impact_reasoning": one sentence
- "confidence": 0.0-1.0, how sure you are about reach and impact
- "confidence_basis": one sentence
- "effort": person-months to ship a first solution, minimum 0.25
- "effort_breakdown": object mapping workstream name to person-months

Return a JSON object with exactly those keys. Nothing else.`, problem, pp.Description, pp.Severity)
}

const virtualUserSystem = `You are creating a realistic simulated user for product journey testing. Respond only with a JSON object.`

func virtualUserPrompt(problem, targetUsers string, persona *model.Persona) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Problem space: %s\nTarget users: %s\n", problem, targetUsers)
	if persona != nil {
		fmt.Fprintf(&b, "\nGround the user in this researched persona:\nName: %s, %d, %s in %s\nBackground: %s\nPain points: %s\nQuote: %q\n",
			persona.Name, persona.Age, persona.Occupation, persona.Location,
			persona.Background, strings.Join(persona.PainPoints, "; "), persona.Quote)
	}
	b.WriteString(`
Create one specific, believable user. Return a JSON object with:
"name", "age", "occupation", "location", "problem_context" (their situation right now),
"primary_goal", "patience_level" ("low"/"medium"/"high"),
"sensitivities" (array of {"name","level" 0-10,"description"}),
"traits" (array of {"name","value" 0-10,"description"}),
"frustration_triggers" (array of {"trigger","threshold","impact"}).
Nothing else.`)
	return b.String()
}

const scenarioSystem = `You are planning user journey test scenarios through a product flow. Respond only with a JSON array.`

func scenarioPrompt(user model.VirtualUser, problem, productFlow string, n int) string {
	return fmt.Sprintf(`Product flow under test: %s
Problem space: %s

Simulated user: %s, %d, %s. Goal: %s. Patience: %s.

Plan %d journey scenarios. The FIRST must have "scenario_type": "happy_path" where
everything works. The rest are "edge_case" or "failure" scenarios, each failing in a
DIFFERENT way (no two scenarios may share the same sole point of failure).

Each scenario object:
- "scenario_name", "scenario_type", "description"
- "steps": array of step objects in journey order, each with:
  - "step_type": "action", "system_response", "decision_point", "error" or "success"
  - "description"
  - "user_action" (for action steps), "system_response" (for system steps)
  - "frustration_events": array of event names from this catalog, only where the step
    genuinely frustrates: long_wait, no_cabs_5min, long_wait_3to5min, feature_unavailable,
    error_encountered, retry_required, unexpected_cost, price_higher_than_expected,
    poor_quality, lack_of_feedback, driver_cancellation, no_availability, redirect_failure,
    slow_response, payment_failure, data_loss, security_concern
  - "decision_options": for decision_point steps, array of
    {"option_id","description","consequences"} with 2-4 options

Return a JSON array of %d scenario objects and nothing else.`,
		productFlow, problem, user.Name, user.Age, user.Occupation, user.PrimaryGoal, user.PatienceLevel, n, n)
}

const decisionSystem = `You are simulating a specific user's decision at a fork in their product journey. Respond only with a JSON object.`

func decisionPrompt(user model.VirtualUser, situation string, options []model.DecisionOption, strict bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s, %d, %s. Goal: %s. Patience: %s.\n\nSituation: %s\n\nOptions:\n",
		user.Name, user.Age, user.Occupation, user.PrimaryGoal, user.PatienceLevel, situation)
	for _, o := range options {
		fmt.Fprintf(&b, "- %s: %s", o.OptionID, o.Description)
		if o.Consequences != "" {
			fmt.Fprintf(&b, " (%s)", o.Consequences)
		}
		b.WriteString("\n")
	}
	b.WriteString("\nDecide as this user would. Return a JSON object with \"option_id\" and \"reasoning\".")
	if strict {
		b.WriteString("\nIMPORTANT: \"option_id\" MUST be copied verbatim from the option list above. Return ONLY the JSON object, no prose, no code fences.")
	}
	return b.String()
}

const churnSystem = `You are assessing how a specific user's context shifts their probability of abandoning a product. Respond only with a JSON object.`

func churnPrompt(user model.VirtualUser, situation string, calculatedRisk float64, events []model.FrustrationEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "User: %s, %d, %s. Goal: %s. Patience: %s.\nContext: %s\n\nSituation at this step: %s\n",
		user.Name, user.Age, user.Occupation, user.PrimaryGoal, user.PatienceLevel, user.ProblemContext, situation)
	fmt.Fprintf(&b, "\nFormula-based churn risk so far: %.1f%%\nFrustration events this step:\n", calculatedRisk)
	for _, e := range events {
		fmt.Fprintf(&b, "- %s (+%.0f)\n", e.Event, e.RiskAdded)
	}
	b.WriteString(`
Judge whether this user's specific context makes the formula risk too high or too low.
Consider sunk cost, urgency, ease of alternatives, and whether failures are repeating.
Return a JSON object with:
- "adjustment": points to add or subtract, between -50 and 50
- "factors": array of {"factor","adjustment"} itemizing the total
- "reasoning": one or two sentences
Nothing else.`)
	return b.String()
}
