package source

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/prodscope/prodscope/internal/apperr"
	"github.com/prodscope/prodscope/internal/model"
	"github.com/prodscope/prodscope/pkg/reddit"
)

type redditSource struct {
	client reddit.Client
}

// NewReddit wraps a Reddit client as a Source.
func NewReddit(client reddit.Client) Source {
	return &redditSource{client: client}
}

func (s *redditSource) Name() model.SourceName {
	return model.SourceReddit
}

// timeFilter maps a days-back window onto Reddit's closed time-filter set.
func timeFilter(daysBack int) string {
	switch {
	case daysBack <= 1:
		return "day"
	case daysBack <= 7:
		return "week"
	case daysBack <= 31:
		return "month"
	case daysBack <= 366:
		return "year"
	default:
		return "all"
	}
}

func (s *redditSource) Fetch(ctx context.Context, query string, limits Limits) ([]model.SearchItem, error) {
	posts, err := s.client.SearchPosts(ctx, query, limits.MaxItems, timeFilter(limits.DaysBack))
	if err != nil {
		return nil, apperr.Upstream("fetch", err)
	}

	items := make([]model.SearchItem, len(posts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(commentFanout)
	for i, post := range posts {
		g.Go(func() error {
			item := model.SearchItem{
				Title:       post.Title,
				Body:        post.SelfText,
				URL:         post.URL(),
				Channel:     "r/" + post.Subreddit,
				Score:       post.Score,
				NumComments: post.NumComments,
				CreatedUnix: int64(post.CreatedUTC),
			}
			if post.NumComments > 0 && limits.MaxCommentsPerItem > 0 {
				comments, err := s.client.PostComments(gctx, post.ID, limits.MaxCommentsPerItem)
				if err != nil {
					comments = nil
				}
				for _, c := range comments {
					item.Comments = append(item.Comments, model.Comment{
						Text:   c.Body,
						Score:  c.Score,
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
