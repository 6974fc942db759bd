package source

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/prodscope/prodscope/internal/apperr"
	"github.com/prodscope/prodscope/internal/model"
	"github.com/prodscope/prodscope/pkg/hackernews"
)

// commentFanout caps concurrent per-item comment fetches.
const commentFanout = 4

type hackerNewsSource struct {
	client hackernews.Client
}

// NewHackerNews wraps a Hacker News client as a Source.
func NewHackerNews(client hackernews.Client) Source {
	return &hackerNewsSource{client: client}
}

func (s *hackerNewsSource) Name() model.SourceName {
	return model.SourceHackerNews
}

func (s *hackerNewsSource) Fetch(ctx context.Context, query string, limits Limits) ([]model.SearchItem, error) {
	stories, err := s.client.SearchStories(ctx, query, limits.MaxItems)
	if err != nil {
		return nil, apperr.Upstream("fetch", err)
	}

	items := make([]model.SearchItem, len(stories))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(commentFanout)
	for i, story := range stories {
		g.Go(func() error {
			item := model.SearchItem{
				Title:       story.Title,
				Body:        story.Text,
				URL:         story.PermaURL(),
				Channel:     "HackerNews",
				Score:       story.Points,
				NumComments: story.NumComments,
				CreatedUnix: story.CreatedUnix(),
			}
			if story.NumComments > 0 && limits.MaxCommentsPerItem > 0 {
				comments, err := s.client.StoryComments(gctx, story.ObjectID, limits.MaxCommentsPerItem)
				if err != nil {
					// A story with unreadable comments still contributes
					// its title and text.
					comments = nil
				}
				for _, c := range comments {
					item.Comments = append(item.Comments, model.Comment{
						Text:   c.Text,
						Score:  c.Points,
						Author: c.Author,
					})
				}
			}
			items[i] = item
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, apperr.Upstream("fetch", err)
	}
	return items, nil
}
