// Package youtube wraps the YouTube Data API v3 search and commentThreads
// endpoints.
package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/prodscope/prodscope/internal/resilience"
)

const defaultBaseURL = "https://www.googleapis.com/youtube/v3"

var (
	// ErrQuotaExceeded indicates the daily API quota was exhausted or the
	// key was rejected.
	ErrQuotaExceeded = eris.New("youtube: quota exceeded")
	// ErrCommentsDisabled indicates the video has comments turned off.
	ErrCommentsDisabled = eris.New("youtube: comments disabled")
)

// Client defines the YouTube operations used by the research pipeline.
type Client interface {
	// SearchVideos searches for videos matching the query, newest first
	// within the relevance ordering, published after the given time.
	SearchVideos(ctx context.Context, query string, limit int, publishedAfter time.Time) ([]Video, error)
	// VideoComments returns up to limit top-level comments for a video.
	VideoComments(ctx context.Context, videoID string, limit int) ([]Comment, error)
}

// Video is one search result.
type Video struct {
	ID          string
	Title       string
	Description string
	Channel     string
	PublishedAt time.Time
}

// URL returns the public watch URL for the video.
func (v Video) URL() string {
	return "https://www.youtube.com/watch?v=" + v.ID
}

// Comment is one top-level video comment.
type Comment struct {
	Text      string
	Author    string
	LikeCount int
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a YouTube client using an API key.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Every(200*time.Millisecond), 3),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type searchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title        string    `json:"title"`
			Description  string    `json:"description"`
			ChannelTitle string    `json:"channelTitle"`
			PublishedAt  time.Time `json:"publishedAt"`
		} `json:"snippet"`
	} `json:"items"`
}

func (c *httpClient) SearchVideos(ctx context.Context, query string, limit int, publishedAfter time.Time) ([]Video, error) {
	params := url.Values{
		"part":       {"snippet"},
		"q":          {query},
		"type":       {"video"},
		"order":      {"relevance"},
		"maxResults": {fmt.Sprint(limit)},
		"key":        {c.apiKey},
	}
	if !publishedAfter.IsZero() {
		params.Set("publishedAfter", publishedAfter.UTC().Format(time.RFC3339))
	}

	body, err := c.get(ctx, "/search", params)
	if err != nil {
		return nil, err
	}

	var sr searchResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, eris.Wrap(err, "youtube: unmarshal search response")
	}

	videos := make([]Video, 0, len(sr.Items))
	for _, item := range sr.Items {
		if item.ID.VideoID == "" {
			continue
		}
		videos = append(videos, Video{
			ID:          item.ID.VideoID,
			Title:       item.Snippet.Title,
			Description: item.Snippet.Description,
			Channel:     item.Snippet.ChannelTitle,
			PublishedAt: item.Snippet.PublishedAt,
		})
	}
	return videos, nil
}

type commentThreadsResponse struct {
	Items []struct {
		Snippet struct {
			TopLevelComment struct {
				Snippet struct {
					TextDisplay  string `json:"textDisplay"`
					AuthorName   string `json:"authorDisplayName"`
					LikeCount    int    `json:"likeCount"`
					TextOriginal string `json:"textOriginal"`
				} `json:"snippet"`
			} `json:"topLevelComment"`
		} `json:"snippet"`
	} `json:"items"`
}

func (c *httpClient) VideoComments(ctx context.Context, videoID string, limit int) ([]Comment, error) {
	params := url.Values{
		"part":       {"snippet"},
		"videoId":    {videoID},
		"order":      {"relevance"},
		"textFormat": {"plainText"},
		"maxResults": {fmt.Sprint(limit)},
		"key":        {c.apiKey},
	}

	body, err := c.get(ctx, "/commentThreads", params)
	if err != nil {
		return nil, err
	}

	var cr commentThreadsResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		return nil, eris.Wrap(err, "youtube: unmarshal comments response")
	}

	comments := make([]Comment, 0, len(cr.Items))
	for _, item := range cr.Items {
		sn := item.Snippet.TopLevelComment.Snippet
		text := sn.TextOriginal
		if text == "" {
			text = sn.TextDisplay
		}
		if len(text) < 20 {
			continue
		}
		comments = append(comments, Comment{
			Text:      text,
			Author:    sn.AuthorName,
			LikeCount: sn.LikeCount,
		})
	}
	return comments, nil
}

func (c *httpClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "youtube: rate limiter wait")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "youtube: create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "youtube: send request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "youtube: read response")
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return body, nil
	case http.StatusForbidden:
		// The Data API reports both quota exhaustion and disabled comments
		// as 403 with a reason code.
		if isReason(body, "commentsDisabled") {
			return nil, ErrCommentsDisabled
		}
		return nil, ErrQuotaExceeded
	case http.StatusTooManyRequests:
		return nil, resilience.NewTransientError(ErrQuotaExceeded, resp.StatusCode)
	default:
		err := eris.Errorf("youtube: unexpected status %d: %s", resp.StatusCode, string(body))
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(err, resp.StatusCode)
		}
		return nil, err
	}
}

func isReason(body []byte, reason string) bool {
	var er struct {
		Error struct {
			Errors []struct {
				Reason string `json:"reason"`
			} `json:"errors"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &er); err != nil {
		return false
	}
	for _, e := range er.Error.Errors {
		if e.Reason == reason {
			return true
		}
	}
	return false
}
