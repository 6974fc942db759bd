package model

// JTBDScore captures a Jobs-to-be-Done opportunity analysis for one pain point.
// OpportunityScore = Importance + max(Importance - Satisfaction, 0), range 0-20.
type JTBDScore struct {
	JobStatement     string  `json:"job_statement"`
	Importance       float64 `json:"importance"`
	Satisfaction     float64 `json:"satisfaction"`
	OpportunityScore float64 `json:"opportunity_score"`
	Reasoning        string  `json:"reasoning"`
}

// RICEScore is a Reach/Impact/Confidence/Effort breakdown.
// Score = Reach * Impact * Confidence / Effort.
type RICEScore struct {
	Reach              int                `json:"reach"`
	ReachJustification string             `json:"reach_justification,omitempty"`
	Impact             float64            `json:"impact"`
	ImpactReasoning    string             `json:"impact_reasoning,omitempty"`
	Confidence         float64            `json:"confidence"`
	ConfidenceBasis    string             `json:"confidence_basis,omitempty"`
	Effort             float64            `json:"effort"`
	EffortBreakdown    map[string]float64 `json:"effort_breakdown,omitempty"`
	Score              float64            `json:"rice_score"`
}

// Affinity labels how central a pain point is to a persona.
type Affinity string

const (
	AffinityPrimary   Affinity = "Primary"
	AffinitySecondary Affinity = "Secondary"
	AffinityNone      Affinity = "None"
)

// PersonaAlignment records which personas a pain point affects.
type PersonaAlignment struct {
	AffectedPersonas []string            `json:"affected_personas"`
	Affinities       map[string]Affinity `json:"affinities"`
	Coverage         float64             `json:"coverage"` // affected / total, in [0,1]
}

// MarketData is category-level market sizing context.
type MarketData struct {
	Category      string   `json:"category"`
	TAM           string   `json:"tam,omitempty"`
	SAM           string   `json:"sam,omitempty"`
	SOM           string   `json:"som,omitempty"`
	MarketSizeUSD float64  `json:"market_size_usd,omitempty"`
	GrowthRate    string   `json:"growth_rate,omitempty"`
	Sources       []string `json:"sources,omitempty"`
}

// Justification is the evidence trail behind a priority ranking.
type Justification struct {
	WhyTopPriority string      `json:"why_top_priority"`
	Evidence       []string    `json:"evidence"`
	MarketData     *MarketData `json:"market_data,omitempty"`
	QuoteSamples   []string    `json:"quote_samples,omitempty"`
}

// PrioritizedPainPoint wraps a PainPoint with its full prioritization
// analysis. FinalScore is two stacked 0-100 components (JTBD + RICE
// percentile), so its range is [0,200]. Rank is 1-based; ties keep input
// order.
type PrioritizedPainPoint struct {
	PainPointID string           `json:"pain_point_id"`
	PainPoint   PainPoint        `json:"pain_point"`
	Rank        int              `json:"priority_rank"`
	FinalScore  float64          `json:"final_score"`
	JTBD        JTBDScore        `json:"jtbd"`
	RICE        RICEScore        `json:"rice"`
	Alignment   PersonaAlignment `json:"persona_alignment"`
	Why         Justification    `json:"justification"`
}

// PrioritizeRequest is the input for the prioritization engine.
type PrioritizeRequest struct {
	PainPoints       []PainPoint       `json:"pain_points"`
	Personas         []Persona         `json:"personas"`
	ProblemStatement string            `json:"problem_statement"`
	TargetUsers      string            `json:"target_users"`
	MarketContext    map[string]string `json:"market_context,omitempty"`
}

// PrioritizeResponse is the ranked output of the prioritization engine.
type PrioritizeResponse struct {
	PrioritizedPainPoints []PrioritizedPainPoint `json:"prioritized_pain_points"`
	TotalAnalyzed         int                    `json:"total_analyzed"`
	TopOpportunity        string                 `json:"top_opportunity"`
	Methodology           string                 `json:"methodology"`
}
