// Package reddit provides a minimal Reddit search client using the OAuth2
// client-credentials ("application only") flow.
package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/prodscope/prodscope/internal/resilience"
)

const (
	defaultBaseURL  = "https://oauth.reddit.com"
	defaultAuthURL  = "https://www.reddit.com/api/v1/access_token"
	tokenSafetyLead = 30 * time.Second
)

var (
	// ErrUnauthorized indicates bad or missing credentials.
	ErrUnauthorized = eris.New("reddit: unauthorized")
	// ErrRateLimited indicates the API rejected the call with 429.
	ErrRateLimited = eris.New("reddit: rate limited")
)

// Client defines the Reddit operations used by the research pipeline.
type Client interface {
	// SearchPosts searches all of Reddit for posts matching the query.
	SearchPosts(ctx context.Context, query string, limit int, timeFilter string) ([]Post, error)
	// PostComments returns up to limit top comments for a post.
	PostComments(ctx context.Context, postID string, limit int) ([]Comment, error)
}

// Post is one search hit.
type Post struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	SelfText    string  `json:"selftext"`
	Permalink   string  `json:"permalink"`
	Subreddit   string  `json:"subreddit"`
	Score       int     `json:"score"`
	NumComments int     `json:"num_comments"`
	CreatedUTC  float64 `json:"created_utc"`
}

// URL returns the canonical reddit.com URL for the post.
func (p Post) URL() string {
	return "https://reddit.com" + p.Permalink
}

// Comment is one post comment.
type Comment struct {
	Body   string `json:"body"`
	Score  int    `json:"score"`
	Author string `json:"author"`
}

// listing mirrors Reddit's envelope shape for both posts and comments.
type listing struct {
	Data struct {
		Children []struct {
			Data json.RawMessage `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithAuthURL overrides the token endpoint.
func WithAuthURL(u string) Option {
	return func(c *httpClient) {
		c.authURL = u
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	clientID     string
	clientSecret string
	userAgent    string
	baseURL      string
	authURL      string
	http         *http.Client
	limiter      *rate.Limiter

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// NewClient creates a Reddit client with the given app credentials.
func NewClient(clientID, clientSecret, userAgent string, opts ...Option) Client {
	c := &httpClient{
		clientID:     clientID,
		clientSecret: clientSecret,
		userAgent:    userAgent,
		baseURL:      defaultBaseURL,
		authURL:      defaultAuthURL,
		http: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		// Reddit allows 100 requests per minute per app.
		limiter: rate.NewLimiter(rate.Every(600*time.Millisecond), 5),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) SearchPosts(ctx context.Context, query string, limit int, timeFilter string) ([]Post, error) {
	params := url.Values{
		"q":     {query},
		"sort":  {"relevance"},
		"t":     {timeFilter},
		"limit": {fmt.Sprint(limit)},
	}

	body, err := c.get(ctx, "/search", params)
	if err != nil {
		return nil, err
	}

	var l listing
	if err := json.Unmarshal(body, &l); err != nil {
		return nil, eris.Wrap(err, "reddit: unmarshal search response")
	}

	posts := make([]Post, 0, len(l.Data.Children))
	for _, child := range l.Data.Children {
		var p Post
		if err := json.Unmarshal(child.Data, &p); err != nil {
			continue
		}
		if p.ID == "" {
			continue
		}
		posts = append(posts, p)
	}
	return posts, nil
}

func (c *httpClient) PostComments(ctx context.Context, postID string, limit int) ([]Comment, error) {
	params := url.Values{
		"sort":  {"top"},
		"limit": {fmt.Sprint(limit)},
	}

	body, err := c.get(ctx, "/comments/"+postID, params)
	if err != nil {
		return nil, err
	}

	// The comments endpoint returns [postListing, commentListing].
	var listings []listing
	if err := json.Unmarshal(body, &listings); err != nil {
		return nil, eris.Wrap(err, "reddit: unmarshal comments response")
	}
	if len(listings) < 2 {
		return nil, nil
	}

	comments := make([]Comment, 0, limit)
	for _, child := range listings[1].Data.Children {
		var cm Comment
		if err := json.Unmarshal(child.Data, &cm); err != nil {
			continue
		}
		if len(cm.Body) < 20 {
			continue
		}
		comments = append(comments, cm)
		if len(comments) >= limit {
			break
		}
	}
	return comments, nil
}

func (c *httpClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "reddit: rate limiter wait")
	}

	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "reddit: create request")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "reddit: send request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "reddit: read response")
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return body, nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, ErrUnauthorized
	case http.StatusTooManyRequests:
		return nil, resilience.NewTransientError(ErrRateLimited, resp.StatusCode)
	default:
		err := eris.Errorf("reddit: unexpected status %d: %s", resp.StatusCode, string(body))
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(err, resp.StatusCode)
		}
		return nil, err
	}
}

// accessToken returns a cached app-only token, refreshing when near expiry.
func (c *httpClient) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExpiry.Add(-tokenSafetyLead)) {
		return c.token, nil
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.authURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", eris.Wrap(err, "reddit: create token request")
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", eris.Wrap(err, "reddit: token request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", eris.Wrap(err, "reddit: read token response")
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return "", ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		return "", eris.Errorf("reddit: token status %d: %s", resp.StatusCode, string(body))
	}

	var tok struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &tok); err != nil {
		return "", eris.Wrap(err, "reddit: unmarshal token response")
	}
	if tok.AccessToken == "" {
		return "", ErrUnauthorized
	}

	c.token = tok.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	return c.token, nil
}
