// Package producthunt wraps the Product Hunt GraphQL API v2.
package producthunt

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/prodscope/prodscope/internal/resilience"
)

const defaultBaseURL = "https://api.producthunt.com/v2/api/graphql"

var (
	// ErrUnauthorized indicates a bad or missing developer token.
	ErrUnauthorized = eris.New("producthunt: unauthorized")
	// ErrRateLimited indicates the API complexity budget was exhausted.
	ErrRateLimited = eris.New("producthunt: rate limited")
)

// Client defines the Product Hunt operations used by the research pipeline.
type Client interface {
	// SearchPosts returns recent posts whose topic matches the query.
	SearchPosts(ctx context.Context, topic string, limit int) ([]Post, error)
}

// Post is one launched product with its discussion comments.
type Post struct {
	ID          string
	Name        string
	Tagline     string
	Description string
	URL         string
	VotesCount  int
	CreatedAt   time.Time
	Comments    []Comment
}

// Comment is one discussion comment on a post.
type Comment struct {
	Body  string
	Votes int
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the GraphQL endpoint.
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
	token   string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a Product Hunt client using a developer token.
func NewClient(token string, opts ...Option) Client {
	c := &httpClient{
		token:   token,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 20 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Every(time.Second), 2),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

const searchQuery = `query($topic: String!, $first: Int!) {
  posts(topic: $topic, first: $first, order: VOTES) {
    edges {
      node {
        id
        name
        tagline
        description
        url
        votesCount
        createdAt
        comments(first: 5, order: VOTES_COUNT) {
          edges { node { body votesCount } }
        }
      }
    }
  }
}`

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type searchResponse struct {
	Data struct {
		Posts struct {
			Edges []struct {
				Node struct {
					ID          string    `json:"id"`
					Name        string    `json:"name"`
					Tagline     string    `json:"tagline"`
					Description string    `json:"description"`
					URL         string    `json:"url"`
					VotesCount  int       `json:"votesCount"`
					CreatedAt   time.Time `json:"createdAt"`
					Comments    struct {
						Edges []struct {
							Node struct {
								Body       string `json:"body"`
								VotesCount int    `json:"votesCount"`
							} `json:"node"`
						} `json:"edges"`
					} `json:"comments"`
				} `json:"node"`
			} `json:"edges"`
		} `json:"posts"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func (c *httpClient) SearchPosts(ctx context.Context, topic string, limit int) ([]Post, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "producthunt: rate limiter wait")
	}

	payload, err := json.Marshal(graphqlRequest{
		Query:     searchQuery,
		Variables: map[string]any{"topic": topic, "first": limit},
	})
	if err != nil {
		return nil, eris.Wrap(err, "producthunt: marshal query")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, eris.Wrap(err, "producthunt: create request")
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "producthunt: send request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "producthunt: read response")
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, ErrUnauthorized
	case http.StatusTooManyRequests:
		return nil, resilience.NewTransientError(ErrRateLimited, resp.StatusCode)
	default:
		err := eris.Errorf("producthunt: unexpected status %d: %s", resp.StatusCode, string(body))
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(err, resp.StatusCode)
		}
		return nil, err
	}

	var sr searchResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, eris.Wrap(err, "producthunt: unmarshal response")
	}
	if len(sr.Errors) > 0 {
		return nil, eris.Errorf("producthunt: graphql error: %s", sr.Errors[0].Message)
	}

	posts := make([]Post, 0, len(sr.Data.Posts.Edges))
	for _, edge := range sr.Data.Posts.Edges {
		n := edge.Node
		if n.ID == "" {
			continue
		}
		p := Post{
			ID:          n.ID,
			Name:        n.Name,
			Tagline:     n.Tagline,
			Description: n.Description,
			URL:         n.URL,
			VotesCount:  n.VotesCount,
			CreatedAt:   n.CreatedAt,
		}
		for _, ce := range n.Comments.Edges {
			if len(ce.Node.Body) < 20 {
				continue
			}
			p.Comments = append(p.Comments, Comment{Body: ce.Node.Body, Votes: ce.Node.VotesCount})
		}
		posts = append(posts, p)
	}
	return posts, nil
}
