// Package research orchestrates the discovery pipeline: fetch raw
// discussions from a source, extract structured pain points, and synthesize
// personas from them.
package research

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/prodscope/prodscope/internal/apperr"
	"github.com/prodscope/prodscope/internal/config"
	"github.com/prodscope/prodscope/internal/llm"
	"github.com/prodscope/prodscope/internal/model"
	"github.com/prodscope/prodscope/internal/source"
)

const defaultNumPersonas = 3

// Service runs the research pipeline.
type Service struct {
	cfg *config.Config
	llm llm.Client

	// selectSource is swappable for tests.
	selectSource func(*config.Config, model.SourceName) (source.Source, error)
}

// NewService creates a research Service.
func NewService(cfg *config.Config, llmClient llm.Client) *Service {
	return &Service{
		cfg:          cfg,
		llm:          llmClient,
		selectSource: source.Select,
	}
}

// Research fetches discussions and extracts pain points. A source that
// returns nothing yields an empty result, not an error; the pipeline only
// fails when a step fails.
func (s *Service) Research(ctx context.Context, req model.ResearchRequest) (*model.ResearchResponse, error) {
	if strings.TrimSpace(req.ProblemStatement) == "" {
		return nil, apperr.Validation("problem_statement is required")
	}

	name := req.Source
	if name == "" {
		name = model.SourceAuto
	}
	src, err := s.selectSource(s.cfg, name)
	if err != nil {
		return nil, err
	}

	limits := source.Limits{
		MaxItems:           s.cfg.Research.MaxPosts,
		MaxCommentsPerItem: s.cfg.Research.MaxCommentsPerPost,
		DaysBack:           s.cfg.Research.DaysBack,
	}

	fetchCtx := ctx
	if s.cfg.Research.TimeoutSecs > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, time.Duration(s.cfg.Research.TimeoutSecs)*time.Second)
		defer cancel()
	}

	items, err := src.Fetch(fetchCtx, req.ProblemStatement, limits)
	if err != nil {
		return nil, err
	}

	totalComments := 0
	for _, item := range items {
		totalComments += len(item.Comments)
	}
	zap.S().Infow("fetched discussions",
		"source", src.Name(),
		"posts", len(items),
		"comments", totalComments,
	)

	resp := &model.ResearchResponse{
		PainPoints:            []model.PainPoint{},
		Source:                string(src.Name()),
		TotalPostsAnalyzed:    len(items),
		TotalCommentsAnalyzed: totalComments,
	}
	if len(items) == 0 {
		return resp, nil
	}

	points, err := s.llm.ExtractPainPoints(ctx, req.ProblemStatement, req.TargetUsers, items)
	if err != nil {
		return nil, err
	}
	resp.PainPoints = points
	return resp, nil
}

// Personas synthesizes user archetypes from previously extracted pain points.
func (s *Service) Personas(ctx context.Context, req model.PersonaRequest) (*model.PersonaResponse, error) {
	if len(req.PainPoints) == 0 {
		return nil, apperr.Validation("pain_points must not be empty")
	}

	n := req.NumPersonas
	if n == 0 {
		n = defaultNumPersonas
	}
	if n < 2 || n > 5 {
		return nil, apperr.Validation("num_personas must be between 2 and 5")
	}

	personas, err := s.llm.GeneratePersonas(ctx, req.ProblemStatement, req.TargetUsers, req.PainPoints, n)
	if err != nil {
		return nil, err
	}

	return &model.PersonaResponse{
		Personas:          personas,
		TotalPersonas:     len(personas),
		BasedOnPainPoints: len(req.PainPoints),
	}, nil
}
