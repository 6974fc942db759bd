// Package prioritize ranks researched pain points by stacking a JTBD
// opportunity component and a batch-relative RICE component, with persona
// alignment reported alongside.
package prioritize

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/prodscope/prodscope/internal/apperr"
	"github.com/prodscope/prodscope/internal/config"
	"github.com/prodscope/prodscope/internal/llm"
	"github.com/prodscope/prodscope/internal/model"
)

// scoringConcurrency caps concurrent per-pain-point model calls.
const scoringConcurrency = 4

const methodology = "JTBD opportunity (rescaled 0-100) + RICE percentile rank (0-100), weighted 1:1 by default; persona alignment reported alongside"

// Engine ranks pain points.
type Engine struct {
	cfg *config.Config
	llm llm.Client
}

// NewEngine creates a prioritization Engine.
func NewEngine(cfg *config.Config, llmClient llm.Client) *Engine {
	return &Engine{cfg: cfg, llm: llmClient}
}

// Prioritize scores and ranks the given pain points. Ranking is stable:
// equal final scores keep their input order.
func (e *Engine) Prioritize(ctx context.Context, req model.PrioritizeRequest) (*model.PrioritizeResponse, error) {
	if len(req.PainPoints) == 0 {
		return nil, apperr.Validation("pain_points must not be empty")
	}

	cat := categorize(req.ProblemStatement, req.TargetUsers)
	population := e.cfg.Scoring.TotalPopulation

	scored := make([]model.PrioritizedPainPoint, len(req.PainPoints))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(scoringConcurrency)
	for i, pp := range req.PainPoints {
		g.Go(func() error {
			jtbd, err := e.llm.ScoreJTBD(gctx, req.ProblemStatement, pp)
			if err != nil {
				return err
			}
			jtbd.OpportunityScore = Opportunity(jtbd.Importance, jtbd.Satisfaction)

			est, err := e.llm.EstimateRICE(gctx, req.ProblemStatement, pp)
			if err != nil {
				return err
			}

			reach := estimateReach(cat, pp, population)
			riceScore, err := ComputeRICE(reach, est.Impact, est.Confidence, est.Effort)
			if err != nil {
				return err
			}

			scored[i] = model.PrioritizedPainPoint{
				PainPointID: fmt.Sprintf("pp-%03d", i+1),
				PainPoint:   pp,
				JTBD:        jtbd,
				RICE: model.RICEScore{
					Reach:              reach,
					ReachJustification: fmt.Sprintf("%.0f%% category penetration of %d addressable users, scaled by severity and signal frequency", cat.penetration*100, population),
					Impact:             est.Impact,
					ImpactReasoning:    est.ImpactReasoning,
					Confidence:         est.Confidence,
					ConfidenceBasis:    est.ConfidenceBasis,
					Effort:             est.Effort,
					EffortBreakdown:    est.EffortBreakdown,
					Score:              riceScore,
				},
				Alignment: alignPersonas(pp, req.Personas),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// RICE scores only mean something relative to the batch, so the second
	// component is a percentile rank rather than the raw product.
	riceScores := make([]float64, len(scored))
	for i, s := range scored {
		riceScores[i] = s.RICE.Score
	}
	percentiles := percentileRanks(riceScores)

	jtbdWeight := e.cfg.Scoring.JTBDWeight
	riceWeight := e.cfg.Scoring.RICEWeight
	if jtbdWeight == 0 && riceWeight == 0 {
		jtbdWeight, riceWeight = 1, 1
	}

	for i := range scored {
		jtbdComponent := scored[i].JTBD.OpportunityScore / 20 * 100
		scored[i].FinalScore = jtbdWeight*jtbdComponent + riceWeight*percentiles[i]
	}

	sort.SliceStable(scored, func(a, b int) bool {
		return scored[a].FinalScore > scored[b].FinalScore
	})
	for i := range scored {
		scored[i].Rank = i + 1
		scored[i].Why = justify(scored[i], cat, i == 0)
	}

	return &model.PrioritizeResponse{
		PrioritizedPainPoints: scored,
		TotalAnalyzed:         len(scored),
		TopOpportunity:        scored[0].PainPoint.Description,
		Methodology:           methodology,
	}, nil
}

// alignPersonas labels how central a pain point is to each persona. A pain
// point appearing in a persona's top two listed pains is Primary, anywhere
// else in the list Secondary.
func alignPersonas(pp model.PainPoint, personas []model.Persona) model.PersonaAlignment {
	alignment := model.PersonaAlignment{
		AffectedPersonas: []string{},
		Affinities:       map[string]model.Affinity{},
	}
	for _, persona := range personas {
		affinity := model.AffinityNone
		for idx, listed := range persona.PainPoints {
			if listed != pp.Description {
				continue
			}
			if idx < 2 {
				affinity = model.AffinityPrimary
			} else {
				affinity = model.AffinitySecondary
			}
			break
		}
		alignment.Affinities[persona.Name] = affinity
		if affinity != model.AffinityNone {
			alignment.AffectedPersonas = append(alignment.AffectedPersonas, persona.Name)
		}
	}
	if len(personas) > 0 {
		alignment.Coverage = float64(len(alignment.AffectedPersonas)) / float64(len(personas))
	}
	return alignment
}

func justify(p model.PrioritizedPainPoint, cat marketCategory, top bool) model.Justification {
	j := model.Justification{
		Evidence: []string{
			fmt.Sprintf("Reported %dx across sources at %s severity", p.PainPoint.Frequency, p.PainPoint.Severity),
			fmt.Sprintf("JTBD opportunity %.1f/20 (importance %.1f, satisfaction %.1f)", p.JTBD.OpportunityScore, p.JTBD.Importance, p.JTBD.Satisfaction),
			fmt.Sprintf("RICE %.0f (reach %d, impact %.2g, confidence %.0f%%, effort %.2g person-months)",
				p.RICE.Score, p.RICE.Reach, p.RICE.Impact, p.RICE.Confidence*100, p.RICE.Effort),
		},
	}
	if p.PainPoint.Quote != "" {
		j.QuoteSamples = []string{p.PainPoint.Quote}
	}
	if p.PainPoint.SourceURL != "" {
		j.Evidence = append(j.Evidence, "Source: "+p.PainPoint.SourceURL)
	}
	if top {
		data := cat.data
		j.MarketData = &data
		j.WhyTopPriority = fmt.Sprintf(
			"Highest combined score (%.1f): the largest gap between importance and satisfaction in the batch, with competitive reach in the %s category.",
			p.FinalScore, cat.data.Category)
	}
	return j
}
