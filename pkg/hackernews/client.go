// Package hackernews provides a client for the Algolia Hacker News Search
// API. No credentials are required.
package hackernews

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/prodscope/prodscope/internal/resilience"
)

const defaultBaseURL = "https://hn.algolia.com/api/v1"

// ErrRateLimited indicates the API rejected the call with 429.
var ErrRateLimited = eris.New("hackernews: rate limited")

// Client defines the Hacker News search operations.
type Client interface {
	// SearchStories returns stories matching the query, newest-relevance
	// first, at most limit items.
	SearchStories(ctx context.Context, query string, limit int) ([]Story, error)
	// StoryComments returns up to limit comments for a story.
	StoryComments(ctx context.Context, storyID string, limit int) ([]Comment, error)
}

// Story is a single Hacker News story hit.
type Story struct {
	ObjectID    string `json:"objectID"`
	Title       string `json:"title"`
	Text        string `json:"story_text"`
	URL         string `json:"url"`
	Author      string `json:"author"`
	Points      int    `json:"points"`
	NumComments int    `json:"num_comments"`
	CreatedAt   string `json:"created_at"`
}

// PermaURL returns the story URL, falling back to the HN item page.
func (s Story) PermaURL() string {
	if s.URL != "" {
		return s.URL
	}
	return "https://news.ycombinator.com/item?id=" + s.ObjectID
}

// CreatedUnix parses the story creation time; zero on failure.
func (s Story) CreatedUnix() int64 {
	t, err := time.Parse(time.RFC3339, s.CreatedAt)
	if err != nil {
		return 0
	}
	return t.Unix()
}

// Comment is a single comment hit.
type Comment struct {
	Text   string `json:"comment_text"`
	Author string `json:"author"`
	Points int    `json:"points"`
}

type searchResponse struct {
	Hits []json.RawMessage `json:"hits"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
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
	baseURL string
	http    *http.Client
}

// NewClient creates an Algolia HN Search client.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) SearchStories(ctx context.Context, query string, limit int) ([]Story, error) {
	params := url.Values{
		"query":       {query},
		"tags":        {"story"},
		"hitsPerPage": {fmt.Sprint(limit)},
	}

	body, err := c.get(ctx, "/search", params)
	if err != nil {
		return nil, err
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, eris.Wrap(err, "hackernews: unmarshal search response")
	}

	stories := make([]Story, 0, len(resp.Hits))
	for _, raw := range resp.Hits {
		var s Story
		if err := json.Unmarshal(raw, &s); err != nil {
			continue // skip malformed hits
		}
		if s.ObjectID == "" {
			continue
		}
		stories = append(stories, s)
	}
	return stories, nil
}

func (c *httpClient) StoryComments(ctx context.Context, storyID string, limit int) ([]Comment, error) {
	params := url.Values{
		"tags":        {"comment,story_" + storyID},
		"hitsPerPage": {fmt.Sprint(limit)},
	}

	body, err := c.get(ctx, "/search", params)
	if err != nil {
		return nil, err
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, eris.Wrap(err, "hackernews: unmarshal comments response")
	}

	comments := make([]Comment, 0, len(resp.Hits))
	for _, raw := range resp.Hits {
		var cm Comment
		if err := json.Unmarshal(raw, &cm); err != nil {
			continue
		}
		cm.Text = stripHTML(cm.Text)
		if len(cm.Text) < 20 {
			continue // too short to carry a pain point
		}
		comments = append(comments, cm)
	}
	return comments, nil
}

func (c *httpClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "hackernews: create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "hackernews: send request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "hackernews: read response")
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return body, nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, resilience.NewTransientError(ErrRateLimited, resp.StatusCode)
	default:
		err := eris.Errorf("hackernews: unexpected status %d: %s", resp.StatusCode, string(body))
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(err, resp.StatusCode)
		}
		return nil, err
	}
}

var tagRe = regexp.MustCompile(`<[^>]+>`)

var entityReplacer = strings.NewReplacer(
	"&gt;", ">",
	"&lt;", "<",
	"&amp;", "&",
	"&#x27;", "'",
	"&quot;", `"`,
)

// stripHTML removes markup from Algolia comment text.
func stripHTML(text string) string {
	return strings.TrimSpace(entityReplacer.Replace(tagRe.ReplaceAllString(text, "")))
}
