package model

// PatienceLevel amplifies a virtual user's sensitivity to frustration.
type PatienceLevel string

const (
	PatienceLow    PatienceLevel = "low"
	PatienceMedium PatienceLevel = "medium"
	PatienceHigh   PatienceLevel = "high"
)

// ValidPatience reports whether p is a member of the closed patience set.
func ValidPatience(p PatienceLevel) bool {
	switch p {
	case PatienceLow, PatienceMedium, PatienceHigh:
		return true
	}
	return false
}

// Sensitivity is one thing a virtual user cares about, rated 0-10.
type Sensitivity struct {
	Name        string  `json:"name"`
	Level       float64 `json:"level"`
	Description string  `json:"description,omitempty"`
}

// Trait is one behavioral characteristic, rated 0-10.
type Trait struct {
	Name        string  `json:"name"`
	Value       float64 `json:"value"`
	Description string  `json:"description,omitempty"`
}

// FrustrationTrigger is a user-specific event that adds extra churn risk on
// top of the catalog weight when hit.
type FrustrationTrigger struct {
	Trigger   string  `json:"trigger"`
	Threshold float64 `json:"threshold"`
	Impact    float64 `json:"impact"`
}

// VirtualUser is the simulated user profile. Created once per simulation
// request and immutable thereafter.
type VirtualUser struct {
	Name                string               `json:"name"`
	Age                 int                  `json:"age"`
	Occupation          string               `json:"occupation"`
	Location            string               `json:"location"`
	ProblemContext      string               `json:"problem_context"`
	PrimaryGoal         string               `json:"primary_goal"`
	Sensitivities       []Sensitivity        `json:"sensitivities"`
	Traits              []Trait              `json:"traits"`
	PatienceLevel       PatienceLevel        `json:"patience_level"`
	FrustrationTriggers []FrustrationTrigger `json:"frustration_triggers,omitempty"`
	BaseChurnRisk       float64              `json:"base_churn_risk"`
	PersonaSource       string               `json:"persona_source,omitempty"`
}

// StepType is the closed set of journey step kinds.
type StepType string

const (
	StepAction         StepType = "action"
	StepSystemResponse StepType = "system_response"
	StepDecisionPoint  StepType = "decision_point"
	StepError          StepType = "error"
	StepSuccess        StepType = "success"
)

// EmotionalState tracks the simulated user's mood at a step.
type EmotionalState string

const (
	EmotionNeutral    EmotionalState = "neutral"
	EmotionSatisfied  EmotionalState = "satisfied"
	EmotionHopeful    EmotionalState = "hopeful"
	EmotionFrustrated EmotionalState = "frustrated"
	EmotionAnnoyed    EmotionalState = "annoyed"
	EmotionAngry      EmotionalState = "angry"
	EmotionDelighted  EmotionalState = "delighted"
)

// RiskLevel buckets a churn probability.
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

// FrustrationEvent is a named, weighted negative occurrence in a step.
type FrustrationEvent struct {
	Event     string  `json:"event"`
	RiskAdded float64 `json:"risk_added"`
}

// Adjustment is one itemized contextual factor inside the AI adjustment.
type Adjustment struct {
	Factor     string  `json:"factor"`
	Adjustment float64 `json:"adjustment"`
}

// ChurnAnalysis is the full breakdown of a churn probability computation.
//
//	formula_risk    = base_risk + sum(risk_added)
//	calculated_risk = formula_risk * patience_multiplier, capped [0,100]
//	final           = clamp(calculated_risk + ai_adjustment, 0, 100)
type ChurnAnalysis struct {
	BaseRisk              float64            `json:"base_risk"`
	FrustrationEvents     []FrustrationEvent `json:"frustration_events"`
	FormulaRisk           float64            `json:"formula_risk"`
	PatienceMultiplier    float64            `json:"patience_multiplier"`
	CalculatedRisk        float64            `json:"calculated_risk"`
	AIAdjustment          float64            `json:"ai_adjustment"`
	AIAdjustments         []Adjustment       `json:"ai_adjustments,omitempty"`
	FinalChurnProbability float64            `json:"final_churn_probability"`
	RiskLevel             RiskLevel          `json:"risk_level"`
	Reasoning             string             `json:"reasoning"`
}

// DecisionOption is one choice offered at a decision point.
type DecisionOption struct {
	OptionID     string `json:"option_id"`
	Description  string `json:"description"`
	Consequences string `json:"consequences,omitempty"`
}

// Step is a single step in a simulated journey. Decision fields are present
// iff Type == StepDecisionPoint. TimeElapsed is cumulative seconds and
// non-decreasing within a scenario.
type Step struct {
	StepNumber        int              `json:"step_number"`
	Type              StepType         `json:"step_type"`
	Description       string           `json:"description"`
	UserAction        string           `json:"user_action,omitempty"`
	SystemResponse    string           `json:"system_response,omitempty"`
	EmotionalState    EmotionalState   `json:"emotional_state"`
	FrustrationLevel  float64          `json:"frustration_level"`
	ChurnAnalysis     *ChurnAnalysis   `json:"churn_analysis,omitempty"`
	IsDecisionPoint   bool             `json:"is_decision_point"`
	DecisionOptions   []DecisionOption `json:"decision_options,omitempty"`
	ChosenOption      string           `json:"chosen_option,omitempty"`
	DecisionReasoning string           `json:"decision_reasoning,omitempty"`
	TimeElapsed       float64          `json:"time_elapsed"`
	StepDuration      float64          `json:"step_duration"`
}

// ScenarioType is the closed set of scenario kinds.
type ScenarioType string

const (
	ScenarioHappyPath ScenarioType = "happy_path"
	ScenarioEdgeCase  ScenarioType = "edge_case"
	ScenarioFailure   ScenarioType = "failure"
)

// Scenario is a complete simulated user journey.
type Scenario struct {
	ScenarioID            string       `json:"scenario_id"`
	Name                  string       `json:"scenario_name"`
	Type                  ScenarioType `json:"scenario_type"`
	Description           string       `json:"description"`
	Steps                 []Step       `json:"steps"`
	Outcome               string       `json:"outcome"`
	FinalChurnProbability float64      `json:"final_churn_probability"`
	KeyInsights           []string     `json:"key_insights,omitempty"`
	RepeatedFailure       bool         `json:"repeated_failure,omitempty"`
}

// SimulationRequest is the input for a simulation run.
type SimulationRequest struct {
	ProblemStatement string   `json:"problem_statement"`
	TargetUsers      string   `json:"target_users"`
	ProductFlow      string   `json:"product_flow"`
	NumScenarios     int      `json:"num_scenarios,omitempty"`
	Persona          *Persona `json:"persona,omitempty"` // optional import from research
}

// SimulationResponse is the complete simulation output.
type SimulationResponse struct {
	VirtualUser     VirtualUser `json:"virtual_user"`
	Scenarios       []Scenario  `json:"scenarios"`
	SummaryInsights []string    `json:"summary_insights"`
	ChurnHotspots   []string    `json:"churn_hotspots"`
	Recommendations []string    `json:"recommendations"`
}
