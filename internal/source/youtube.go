package source

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/prodscope/prodscope/internal/apperr"
	"github.com/prodscope/prodscope/internal/model"
	"github.com/prodscope/prodscope/pkg/youtube"
)

type youtubeSource struct {
	client youtube.Client
}

// NewYouTube wraps a YouTube client as a Source.
func NewYouTube(client youtube.Client) Source {
	return &youtubeSource{client: client}
}

func (s *youtubeSource) Name() model.SourceName {
	return model.SourceYouTube
}

func (s *youtubeSource) Fetch(ctx context.Context, query string, limits Limits) ([]model.SearchItem, error) {
	var after time.Time
	if limits.DaysBack > 0 {
		after = time.Now().AddDate(0, 0, -limits.DaysBack)
	}

	videos, err := s.client.SearchVideos(ctx, query, limits.MaxItems, after)
	if err != nil {
		return nil, apperr.Upstream("fetch", err)
	}

	items := make([]model.SearchItem, len(videos))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(commentFanout)
	for i, video := range videos {
		g.Go(func() error {
			item := model.SearchItem{
				Title:       video.Title,
				Body:        video.Description,
				URL:         video.URL(),
				Channel:     video.Channel,
				CreatedUnix: video.PublishedAt.Unix(),
			}
			if limits.MaxCommentsPerItem > 0 {
				// Disabled comments and per-video fetch failures both
				// degrade to a comment-less item.
				comments, err := s.client.VideoComments(gctx, video.ID, limits.MaxCommentsPerItem)
				if err != nil {
					comments = nil
				}
				item.NumComments = len(comments)
				for _, c := range comments {
					item.Comments = append(item.Comments, model.Comment{
						Text:   c.Text,
						Score:  c.LikeCount,
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
