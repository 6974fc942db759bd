package youtube

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prodscope/prodscope/internal/resilience"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient("test-key", WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
}

func TestSearchVideos(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		assert.Equal(t, "fitness app review", r.URL.Query().Get("q"))
		assert.NotEmpty(t, r.URL.Query().Get("publishedAfter"))
		w.Write([]byte(`{"items":[
			{"id":{"videoId":"v1"},"snippet":{"title":"Why I quit my fitness app","description":"Too many paywalls","channelTitle":"FitReviews","publishedAt":"2026-08-01T10:00:00Z"}},
			{"id":{},"snippet":{"title":"a channel result, skipped"}},
			{"id":{"videoId":"v2"},"snippet":{"title":"Honest review","channelTitle":"GymTalk","publishedAt":"2026-08-10T10:00:00Z"}}
		]}`))
	})

	after := time.Date(2026, 7, 30, 0, 0, 0, 0, time.UTC)
	videos, err := client.SearchVideos(context.Background(), "fitness app review", 10, after)
	require.NoError(t, err)
	require.Len(t, videos, 2)
	assert.Equal(t, "https://www.youtube.com/watch?v=v1", videos[0].URL())
	assert.Equal(t, "FitReviews", videos[0].Channel)
}

func TestVideoComments(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/commentThreads", r.URL.Path)
		assert.Equal(t, "v1", r.URL.Query().Get("videoId"))
		w.Write([]byte(`{"items":[
			{"snippet":{"topLevelComment":{"snippet":{"textOriginal":"The tracking broke after the last update and support never replied","authorDisplayName":"c1","likeCount":40}}}},
			{"snippet":{"topLevelComment":{"snippet":{"textOriginal":"same","authorDisplayName":"c2","likeCount":2}}}}
		]}`))
	})

	comments, err := client.VideoComments(context.Background(), "v1", 10)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "c1", comments[0].Author)
	assert.Equal(t, 40, comments[0].LikeCount)
}

func TestQuotaExceeded(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"errors":[{"reason":"quotaExceeded"}]}}`))
	})

	_, err := client.SearchVideos(context.Background(), "q", 5, time.Time{})
	assert.ErrorIs(t, err, ErrQuotaExceeded)
	// Daily quota exhaustion via 403 does not recover within a retry window.
	assert.False(t, resilience.IsTransient(err))
}

func TestRateLimitedTransient(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.SearchVideos(context.Background(), "q", 5, time.Time{})
	assert.ErrorIs(t, err, ErrQuotaExceeded)
	assert.True(t, resilience.IsTransient(err))
}

func TestCommentsDisabled(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"errors":[{"reason":"commentsDisabled"}]}}`))
	})

	_, err := client.VideoComments(context.Background(), "v1", 5)
	assert.ErrorIs(t, err, ErrCommentsDisabled)
}

func TestUnexpectedStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.SearchVideos(context.Background(), "q", 5, time.Time{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 500")
	assert.True(t, resilience.IsTransient(err))
}
