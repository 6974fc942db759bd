package model

// TechSavviness is the closed set of persona tech-comfort levels.
type TechSavviness string

const (
	TechSavvinessLow    TechSavviness = "Low"
	TechSavvinessMedium TechSavviness = "Medium"
	TechSavvinessHigh   TechSavviness = "High"
)

// Persona is a synthesized user archetype grounded in researched pain points.
// Immutable once generated.
type Persona struct {
	Name             string        `json:"name"`
	Age              int           `json:"age"`
	Occupation       string        `json:"occupation"`
	Location         string        `json:"location"`
	Background       string        `json:"background"`
	ImageDescription string        `json:"image_description,omitempty"`
	Goals            []string      `json:"goals"`
	PainPoints       []string      `json:"pain_points"`
	Behaviors        []string      `json:"behaviors"`
	Quote            string        `json:"quote"`
	TechSavviness    TechSavviness `json:"tech_savviness"`
	ShoppingFreq     string        `json:"shopping_frequency,omitempty"`
	AvgSpend         string        `json:"avg_spend,omitempty"`
	Motivations      []string      `json:"motivations,omitempty"`
	Frustrations     []string      `json:"frustrations,omitempty"`
}

// PersonaRequest is the input for persona generation.
type PersonaRequest struct {
	PainPoints       []PainPoint `json:"pain_points"`
	ProblemStatement string      `json:"problem_statement"`
	TargetUsers      string      `json:"target_users"`
	NumPersonas      int         `json:"num_personas,omitempty"`
}

// PersonaResponse is the output of persona generation.
type PersonaResponse struct {
	Personas          []Persona `json:"personas"`
	TotalPersonas     int       `json:"total_personas"`
	BasedOnPainPoints int       `json:"based_on_pain_points"`
}
