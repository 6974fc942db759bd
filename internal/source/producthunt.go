package source

import (
	"context"

	"github.com/prodscope/prodscope/internal/apperr"
	"github.com/prodscope/prodscope/internal/model"
	"github.com/prodscope/prodscope/pkg/producthunt"
)

type productHuntSource struct {
	client producthunt.Client
}

// NewProductHunt wraps a Product Hunt client as a Source.
func NewProductHunt(client producthunt.Client) Source {
	return &productHuntSource{client: client}
}

func (s *productHuntSource) Name() model.SourceName {
	return model.SourceProductHunt
}

func (s *productHuntSource) Fetch(ctx context.Context, query string, limits Limits) ([]model.SearchItem, error) {
	// Comments ride along in the GraphQL response, so no fan-out here.
	posts, err := s.client.SearchPosts(ctx, query, limits.MaxItems)
	if err != nil {
		return nil, apperr.Upstream("fetch", err)
	}

	items := make([]model.SearchItem, 0, len(posts))
	for _, post := range posts {
		item := model.SearchItem{
			Title:       post.Name + ": " + post.Tagline,
			Body:        post.Description,
			URL:         post.URL,
			Channel:     "ProductHunt",
			Score:       post.VotesCount,
			NumComments: len(post.Comments),
			CreatedUnix: post.CreatedAt.Unix(),
		}
		max := limits.MaxCommentsPerItem
		for i, c := range post.Comments {
			if max > 0 && i >= max {
				break
			}
			item.Comments = append(item.Comments, model.Comment{
				Text:  c.Body,
				Score: c.Votes,
			})
		}
		items = append(items, item)
	}
	return items, nil
}
