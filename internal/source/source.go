// Package source normalizes the discussion providers behind a single Fetch
// interface and picks the best-available provider for a research run.
package source

import (
	"context"

	"go.uber.org/zap"

	"github.com/prodscope/prodscope/internal/apperr"
	"github.com/prodscope/prodscope/internal/config"
	"github.com/prodscope/prodscope/internal/model"
	"github.com/prodscope/prodscope/pkg/hackernews"
	"github.com/prodscope/prodscope/pkg/producthunt"
	"github.com/prodscope/prodscope/pkg/reddit"
	"github.com/prodscope/prodscope/pkg/youtube"
)

// Limits bounds a single fetch.
type Limits struct {
	MaxItems           int
	MaxCommentsPerItem int
	DaysBack           int
}

// Source fetches raw discussion items for a query from one provider.
type Source interface {
	Name() model.SourceName
	Fetch(ctx context.Context, query string, limits Limits) ([]model.SearchItem, error)
}

// Select resolves a requested source name to a concrete Source. With
// SourceAuto it picks the highest-priority provider that has credentials
// configured, falling back to the demo fixtures when none do. DemoMode
// forces the fixtures regardless of credentials.
func Select(cfg *config.Config, name model.SourceName) (Source, error) {
	if cfg.DemoMode {
		return NewMock(), nil
	}

	switch name {
	case model.SourceAuto:
		return selectAuto(cfg), nil
	case model.SourceYouTube:
		if cfg.YouTube.Key == "" {
			return nil, errMissingCredentials("youtube")
		}
		return NewYouTube(youtube.NewClient(cfg.YouTube.Key, youtubeOpts(cfg)...)), nil
	case model.SourceReddit:
		if cfg.Reddit.ClientID == "" || cfg.Reddit.ClientSecret == "" {
			return nil, errMissingCredentials("reddit")
		}
		return NewReddit(reddit.NewClient(cfg.Reddit.ClientID, cfg.Reddit.ClientSecret, cfg.Reddit.UserAgent, redditOpts(cfg)...)), nil
	case model.SourceHackerNews:
		return NewHackerNews(hackernews.NewClient(hackerNewsOpts(cfg)...)), nil
	case model.SourceProductHunt:
		if cfg.ProductHunt.Token == "" {
			return nil, errMissingCredentials("producthunt")
		}
		return NewProductHunt(producthunt.NewClient(cfg.ProductHunt.Token, productHuntOpts(cfg)...)), nil
	case model.SourceDemo:
		return NewMock(), nil
	default:
		return nil, errUnknownSource(string(name))
	}
}

// selectAuto walks the provider priority order and returns the first one
// that is usable. Hacker News needs no key, so it catches every run that
// has no YouTube key unless it has been disabled by blanking its base URL.
func selectAuto(cfg *config.Config) Source {
	if cfg.YouTube.Key != "" {
		return NewYouTube(youtube.NewClient(cfg.YouTube.Key, youtubeOpts(cfg)...))
	}
	if cfg.HackerNews.BaseURL != "" {
		return NewHackerNews(hackernews.NewClient(hackerNewsOpts(cfg)...))
	}
	if cfg.Reddit.ClientID != "" && cfg.Reddit.ClientSecret != "" {
		return NewReddit(reddit.NewClient(cfg.Reddit.ClientID, cfg.Reddit.ClientSecret, cfg.Reddit.UserAgent, redditOpts(cfg)...))
	}
	if cfg.ProductHunt.Token != "" {
		return NewProductHunt(producthunt.NewClient(cfg.ProductHunt.Token, productHuntOpts(cfg)...))
	}
	zap.S().Infow("no source credentials configured, using demo fixtures")
	return NewMock()
}

func errMissingCredentials(provider string) error {
	return apperr.Validation("source %q requested but credentials are not configured", provider)
}

func errUnknownSource(name string) error {
	return apperr.Validation("unknown source %q", name)
}

func youtubeOpts(cfg *config.Config) []youtube.Option {
	var opts []youtube.Option
	if cfg.YouTube.BaseURL != "" {
		opts = append(opts, youtube.WithBaseURL(cfg.YouTube.BaseURL))
	}
	return opts
}

func redditOpts(cfg *config.Config) []reddit.Option {
	var opts []reddit.Option
	if cfg.Reddit.BaseURL != "" {
		opts = append(opts, reddit.WithBaseURL(cfg.Reddit.BaseURL))
	}
	return opts
}

func hackerNewsOpts(cfg *config.Config) []hackernews.Option {
	var opts []hackernews.Option
	if cfg.HackerNews.BaseURL != "" {
		opts = append(opts, hackernews.WithBaseURL(cfg.HackerNews.BaseURL))
	}
	return opts
}

func productHuntOpts(cfg *config.Config) []producthunt.Option {
	var opts []producthunt.Option
	if cfg.ProductHunt.BaseURL != "" {
		opts = append(opts, producthunt.WithBaseURL(cfg.ProductHunt.BaseURL))
	}
	return opts
}
