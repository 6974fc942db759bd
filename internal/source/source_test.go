package source

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prodscope/prodscope/internal/apperr"
	"github.com/prodscope/prodscope/internal/config"
	"github.com/prodscope/prodscope/internal/model"
	"github.com/prodscope/prodscope/pkg/hackernews"
	"github.com/prodscope/prodscope/pkg/reddit"
)

func baseConfig() *config.Config {
	return &config.Config{
		HackerNews: config.HackerNewsConfig{BaseURL: "https://hn.algolia.com/api/v1"},
	}
}

func TestSelectAutoPriority(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   model.SourceName
	}{
		{
			name:   "youtube wins when keyed",
			mutate: func(c *config.Config) { c.YouTube.Key = "yt-key" },
			want:   model.SourceYouTube,
		},
		{
			name:   "hackernews is the keyless default",
			mutate: func(c *config.Config) {},
			want:   model.SourceHackerNews,
		},
		{
			name: "reddit when hackernews disabled",
			mutate: func(c *config.Config) {
				c.HackerNews.BaseURL = ""
				c.Reddit.ClientID = "id"
				c.Reddit.ClientSecret = "secret"
			},
			want: model.SourceReddit,
		},
		{
			name: "producthunt when nothing else configured",
			mutate: func(c *config.Config) {
				c.HackerNews.BaseURL = ""
				c.ProductHunt.Token = "tok"
			},
			want: model.SourceProductHunt,
		},
		{
			name: "demo fixtures when no credentials at all",
			mutate: func(c *config.Config) {
				c.HackerNews.BaseURL = ""
			},
			want: model.SourceDemo,
		},
		{
			name: "demo mode overrides credentials",
			mutate: func(c *config.Config) {
				c.YouTube.Key = "yt-key"
				c.DemoMode = true
			},
			want: model.SourceDemo,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := baseConfig()
			tt.mutate(cfg)
			src, err := Select(cfg, model.SourceAuto)
			require.NoError(t, err)
			assert.Equal(t, tt.want, src.Name())
		})
	}
}

func TestSelectExplicitWithoutCredentials(t *testing.T) {
	for _, name := range []model.SourceName{model.SourceYouTube, model.SourceReddit, model.SourceProductHunt} {
		t.Run(string(name), func(t *testing.T) {
			_, err := Select(baseConfig(), name)
			require.Error(t, err)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		})
	}
}

func TestSelectUnknownSource(t *testing.T) {
	_, err := Select(baseConfig(), model.SourceName("myspace"))
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

type stubHN struct {
	stories  []hackernews.Story
	comments map[string][]hackernews.Comment
	err      error
}

func (s *stubHN) SearchStories(_ context.Context, _ string, _ int) ([]hackernews.Story, error) {
	return s.stories, s.err
}

func (s *stubHN) StoryComments(_ context.Context, id string, _ int) ([]hackernews.Comment, error) {
	return s.comments[id], nil
}

func TestHackerNewsFetch(t *testing.T) {
	src := NewHackerNews(&stubHN{
		stories: []hackernews.Story{
			{ObjectID: "1", Title: "Ask HN: why do todo apps all fail", Points: 90, NumComments: 2, CreatedAt: "2026-08-01T00:00:00Z"},
			{ObjectID: "2", Title: "Show HN: yet another planner", URL: "https://example.com", Points: 10},
		},
		comments: map[string][]hackernews.Comment{
			"1": {{Text: "They fail because maintaining them is a second job", Author: "a", Points: 5}},
		},
	})

	items, err := src.Fetch(context.Background(), "todo apps", Limits{MaxItems: 10, MaxCommentsPerItem: 5})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "https://news.ycombinator.com/item?id=1", items[0].URL)
	assert.Equal(t, "HackerNews", items[0].Channel)
	require.Len(t, items[0].Comments, 1)
	assert.Empty(t, items[1].Comments)
}

func TestHackerNewsFetchRateLimited(t *testing.T) {
	src := NewHackerNews(&stubHN{err: hackernews.ErrRateLimited})

	_, err := src.Fetch(context.Background(), "q", Limits{MaxItems: 5})
	require.Error(t, err)
	assert.Equal(t, apperr.KindUpstreamUnavailable, apperr.KindOf(err))
	assert.Equal(t, "fetch", apperr.StepOf(err))
}

type stubReddit struct {
	posts    []reddit.Post
	comments map[string][]reddit.Comment
}

func (s *stubReddit) SearchPosts(_ context.Context, _ string, _ int, _ string) ([]reddit.Post, error) {
	return s.posts, nil
}

func (s *stubReddit) PostComments(_ context.Context, id string, _ int) ([]reddit.Comment, error) {
	return s.comments[id], nil
}

func TestRedditFetch(t *testing.T) {
	src := NewReddit(&stubReddit{
		posts: []reddit.Post{
			{ID: "p1", Title: "t", Permalink: "/r/x/p1", Subreddit: "x", Score: 5, NumComments: 1, CreatedUTC: 1700000000},
		},
		comments: map[string][]reddit.Comment{
			"p1": {{Body: "a sufficiently long comment body", Score: 2, Author: "u"}},
		},
	})

	items, err := src.Fetch(context.Background(), "q", Limits{MaxItems: 5, MaxCommentsPerItem: 3, DaysBack: 30})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "r/x", items[0].Channel)
	assert.Equal(t, int64(1700000000), items[0].CreatedUnix)
	require.Len(t, items[0].Comments, 1)
}

func TestTimeFilter(t *testing.T) {
	assert.Equal(t, "day", timeFilter(1))
	assert.Equal(t, "week", timeFilter(7))
	assert.Equal(t, "month", timeFilter(30))
	assert.Equal(t, "year", timeFilter(180))
	assert.Equal(t, "all", timeFilter(5000))
}

func TestMockFetchThemes(t *testing.T) {
	src := NewMock()

	tests := []struct {
		query   string
		channel string
	}{
		{"meal planning for busy families", "r/MealPrepSunday"},
		{"fitness tracking app", "r/fitness"},
		{"anything else at all", "r/productivity"},
	}
	for _, tt := range tests {
		items, err := src.Fetch(context.Background(), tt.query, Limits{MaxItems: 10, MaxCommentsPerItem: 5})
		require.NoError(t, err)
		require.NotEmpty(t, items)
		assert.Equal(t, tt.channel, items[0].Channel)
	}
}

func TestMockFetchLimits(t *testing.T) {
	src := NewMock()

	items, err := src.Fetch(context.Background(), "meal planning", Limits{MaxItems: 2, MaxCommentsPerItem: 1})
	require.NoError(t, err)
	require.Len(t, items, 2)
	for _, item := range items {
		assert.LessOrEqual(t, len(item.Comments), 1)
		assert.Equal(t, len(item.Comments), item.NumComments)
	}
}
