package producthunt

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prodscope/prodscope/internal/resilience"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient("test-token", WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
}

func TestSearchPosts(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		var req graphqlRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "productivity", req.Variables["topic"])

		w.Write([]byte(`{"data":{"posts":{"edges":[
			{"node":{"id":"ph1","name":"FocusFlow","tagline":"Plan less, do more","description":"A daily planner","url":"https://producthunt.com/posts/focusflow","votesCount":310,"createdAt":"2026-08-01T09:00:00Z","comments":{"edges":[
				{"node":{"body":"Love it but the calendar sync keeps breaking for me","votesCount":12}},
				{"node":{"body":"nice","votesCount":1}}
			]}}},
			{"node":{"id":"","name":"skipped"}}
		]}}}`))
	})

	posts, err := client.SearchPosts(context.Background(), "productivity", 10)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "FocusFlow", posts[0].Name)
	assert.Equal(t, 310, posts[0].VotesCount)
	require.Len(t, posts[0].Comments, 1)
	assert.Equal(t, 12, posts[0].Comments[0].Votes)
}

func TestSearchPostsGraphQLError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"errors":[{"message":"complexity limit reached"}]}`))
	})

	_, err := client.SearchPosts(context.Background(), "productivity", 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "complexity limit reached")
}

func TestSearchPostsUnauthorized(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.SearchPosts(context.Background(), "productivity", 10)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestSearchPostsRateLimited(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.SearchPosts(context.Background(), "productivity", 10)
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.True(t, resilience.IsTransient(err))
}

func TestSearchPostsServerErrorTransient(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := client.SearchPosts(context.Background(), "productivity", 10)
	require.Error(t, err)
	assert.True(t, resilience.IsTransient(err))
}
