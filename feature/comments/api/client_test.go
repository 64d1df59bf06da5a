package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c := NewClient(Config{
		BaseURL:      baseURL,
		AppAuthKey:   "app-key",
		AniListToken: "identity-token",
		PageRetries:  2,
	}, zap.NewNop())
	// Shrink delays so tests run quickly.
	c.cooldown = 30 * time.Millisecond
	c.pageDelay = 0
	c.retryDelay = 0
	c.token = "session-token"
	return c
}

func writeComments(w http.ResponseWriter, ids ...int64) {
	comments := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		comments = append(comments, map[string]any{
			"comment_id": id,
			"user_id":    7,
			"media_id":   101,
			"content":    fmt.Sprintf("comment %d", id),
		})
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"comments": comments})
}

func TestAuthenticate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/authenticate", r.URL.Path)
		require.Equal(t, "app-key", r.Header.Get("appauth"))
		require.NoError(t, r.ParseForm())
		require.Equal(t, "identity-token", r.FormValue("token"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"authToken": "fresh-session",
			"user":      map[string]any{"username": "mirror-bot"},
		})
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	c.token = ""
	err := c.Authenticate(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "fresh-session", c.token)
}

func TestAuthenticate_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	err := c.Authenticate(context.Background())
	assert.ErrorIs(t, err, ErrAuthFailed)
}

func TestFetchMediaComments_Paginates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "session-token", r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/comments/101/1":
			writeComments(w, 1, 2)
		case "/comments/101/2":
			writeComments(w, 3)
		case "/comments/101/3":
			writeComments(w) // empty page ends the sequence
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	res, err := c.FetchMediaComments(context.Background(), 101)
	require.NoError(t, err)
	assert.False(t, res.Partial)
	assert.Len(t, res.Comments, 3)
}

func TestFetchMediaComments_NotFoundIsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	res, err := c.FetchMediaComments(context.Background(), 102)
	require.NoError(t, err)
	assert.False(t, res.Partial)
	assert.Empty(t, res.Comments)
}

func TestFetchMediaComments_RateLimitRetriesSamePage(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/comments/101/1":
			if atomic.AddInt32(&calls, 1) == 1 {
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			writeComments(w, 1)
		case "/comments/101/2":
			writeComments(w)
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	start := time.Now()
	res, err := c.FetchMediaComments(context.Background(), 101)
	require.NoError(t, err)

	// Same final result as an immediate 200, after at least one cooldown.
	assert.False(t, res.Partial)
	assert.Len(t, res.Comments, 1)
	assert.GreaterOrEqual(t, time.Since(start), c.cooldown)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestFetchMediaComments_UnexpectedStatusIsPartial(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/comments/101/1":
			writeComments(w, 1, 2)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	res, err := c.FetchMediaComments(context.Background(), 101)
	require.NoError(t, err)

	// Records fetched before the failure are kept, but the target is
	// flagged so it is not recorded as fully scraped.
	assert.True(t, res.Partial)
	assert.Len(t, res.Comments, 2)
}

func TestFetchMediaComments_TransportErrorsBounded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Hijack and drop the connection to simulate a network failure.
		hj, ok := w.(http.Hijacker)
		require.True(t, ok)
		conn, _, err := hj.Hijack()
		require.NoError(t, err)
		_ = conn.Close()
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	res, err := c.FetchMediaComments(context.Background(), 101)
	require.NoError(t, err)
	assert.True(t, res.Partial)
	assert.Empty(t, res.Comments)
}

func TestFetchComment(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/comments/5":
			if atomic.AddInt32(&calls, 1) == 1 {
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"comment_id": 5, "content": "hello"})
		case "/comments/6":
			w.WriteHeader(http.StatusNotFound)
		case "/comments/7":
			w.WriteHeader(http.StatusBadGateway)
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	t.Run("rate limited then found", func(t *testing.T) {
		raw, err := c.FetchComment(context.Background(), 5)
		require.NoError(t, err)
		assert.Equal(t, "hello", raw["content"])
	})

	t.Run("confirmed absent", func(t *testing.T) {
		_, err := c.FetchComment(context.Background(), 6)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("unexpected status is not absence", func(t *testing.T) {
		_, err := c.FetchComment(context.Background(), 7)
		assert.ErrorIs(t, err, ErrUnexpectedStatus)
		assert.False(t, errors.Is(err, ErrNotFound))
	})
}
