package research

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prodscope/prodscope/internal/apperr"
	"github.com/prodscope/prodscope/internal/config"
	"github.com/prodscope/prodscope/internal/llm"
	"github.com/prodscope/prodscope/internal/model"
	"github.com/prodscope/prodscope/internal/source"
)

type stubSource struct {
	name  model.SourceName
	items []model.SearchItem
	err   error
}

func (s *stubSource) Name() model.SourceName { return s.name }

func (s *stubSource) Fetch(context.Context, string, source.Limits) ([]model.SearchItem, error) {
	return s.items, s.err
}

func newTestService(src source.Source) *Service {
	svc := NewService(&config.Config{
		Research: config.ResearchConfig{MaxPosts: 10, MaxCommentsPerPost: 5, DaysBack: 30},
	}, llm.NewMock())
	svc.selectSource = func(*config.Config, model.SourceName) (source.Source, error) {
		return src, nil
	}
	return svc
}

func TestResearchPipeline(t *testing.T) {
	svc := newTestService(&stubSource{
		name: model.SourceHackerNews,
		items: []model.SearchItem{
			{Title: "complaint one", URL: "u1", Score: 600, Comments: []model.Comment{{Text: "c1"}, {Text: "c2"}}},
			{Title: "complaint two", URL: "u2", Score: 50},
		},
	})

	resp, err := svc.Research(context.Background(), model.ResearchRequest{
		ProblemStatement: "meal planning is tedious",
		TargetUsers:      "busy parents",
	})
	require.NoError(t, err)
	assert.Equal(t, "hackernews", resp.Source)
	assert.Equal(t, 2, resp.TotalPostsAnalyzed)
	assert.Equal(t, 2, resp.TotalCommentsAnalyzed)
	require.Len(t, resp.PainPoints, 2)
	assert.Equal(t, model.SeverityHigh, resp.PainPoints[0].Severity)
}

func TestResearchEmptyProblemStatement(t *testing.T) {
	svc := newTestService(&stubSource{name: model.SourceDemo})

	_, err := svc.Research(context.Background(), model.ResearchRequest{ProblemStatement: "   "})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestResearchEmptySourceResultIsNotAnError(t *testing.T) {
	svc := newTestService(&stubSource{name: model.SourceHackerNews})

	resp, err := svc.Research(context.Background(), model.ResearchRequest{ProblemStatement: "niche topic"})
	require.NoError(t, err)
	assert.Empty(t, resp.PainPoints)
	assert.NotNil(t, resp.PainPoints)
	assert.Equal(t, 0, resp.TotalPostsAnalyzed)
}

func TestResearchFetchFailurePropagates(t *testing.T) {
	svc := newTestService(&stubSource{
		name: model.SourceReddit,
		err:  apperr.Upstream("fetch", eris.New("rate limited")),
	})

	_, err := svc.Research(context.Background(), model.ResearchRequest{ProblemStatement: "anything"})
	require.Error(t, err)
	assert.Equal(t, apperr.KindUpstreamUnavailable, apperr.KindOf(err))
	assert.Equal(t, "fetch", apperr.StepOf(err))
}

func TestPersonasValidatesInput(t *testing.T) {
	svc := newTestService(&stubSource{name: model.SourceDemo})

	_, err := svc.Personas(context.Background(), model.PersonaRequest{})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestPersonasCountBounds(t *testing.T) {
	svc := newTestService(&stubSource{name: model.SourceDemo})
	pains := []model.PainPoint{{Description: "a"}}

	for _, n := range []int{1, 6, -1} {
		_, err := svc.Personas(context.Background(), model.PersonaRequest{PainPoints: pains, NumPersonas: n})
		require.Error(t, err, "num_personas=%d", n)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	}

	resp, err := svc.Personas(context.Background(), model.PersonaRequest{PainPoints: pains, NumPersonas: 5})
	require.NoError(t, err)
	assert.Equal(t, 5, resp.TotalPersonas)
}

func TestPersonasDefaultsCount(t *testing.T) {
	svc := newTestService(&stubSource{name: model.SourceDemo})

	resp, err := svc.Personas(context.Background(), model.PersonaRequest{
		PainPoints: []model.PainPoint{{Description: "a"}, {Description: "b"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, resp.TotalPersonas)
	assert.Equal(t, 2, resp.BasedOnPainPoints)
	require.Len(t, resp.Personas, 3)
}
