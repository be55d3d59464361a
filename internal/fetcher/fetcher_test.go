package fetcher_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/minisearch/internal/fetcher"
)

const testUserAgent = "MiniGoogleBot/1.0"

func newFetcher(retries int) *fetcher.Fetcher {
	return fetcher.New(fetcher.Config{
		UserAgent:      testUserAgent,
		RequestTimeout: 5 * time.Second,
		RetryCount:     retries,
		RetryBackoff:   time.Millisecond,
	})
}

func TestFetch_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		assert.Equal(t, testUserAgent, r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte("<html>ok</html>"))
	}))
	defer srv.Close()

	body, err := newFetcher(3).Fetch(context.Background(), srv.URL+"/page")
	require.NoError(t, err)
	assert.Equal(t, "<html>ok</html>", string(body))
}

func TestFetch_RetriesThenSucceeds(t *testing.T) {
	t.Parallel()

	var attempts atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte("finally"))
	}))
	defer srv.Close()

	body, err := newFetcher(3).Fetch(context.Background(), srv.URL+"/flaky")
	require.NoError(t, err)
	assert.Equal(t, "finally", string(body))
	assert.Equal(t, int64(3), attempts.Load())
}

func TestFetch_ExhaustsRetries(t *testing.T) {
	t.Parallel()

	var attempts atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		attempts.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newFetcher(3).Fetch(context.Background(), srv.URL+"/down")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 3 attempts")
	assert.Equal(t, int64(3), attempts.Load())
}

func TestFetch_NonOKStatusIsError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	_, err := newFetcher(1).Fetch(context.Background(), srv.URL+"/nocontent")
	assert.Error(t, err)
}

func TestFetch_RobotsDisallowed(t *testing.T) {
	t.Parallel()

	var pageFetched atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			_, _ = w.Write([]byte("User-agent: *\nDisallow: /private/\n"))
			return
		}
		pageFetched.Store(true)
		_, _ = w.Write([]byte("secret"))
	}))
	defer srv.Close()

	f := newFetcher(3)

	_, err := f.Fetch(context.Background(), srv.URL+"/private/page")
	assert.ErrorIs(t, err, fetcher.ErrRobotsDisallowed)
	assert.False(t, pageFetched.Load(), "disallowed page must never be requested")

	// Paths outside the disallowed prefix still fetch.
	body, err := f.Fetch(context.Background(), srv.URL+"/public")
	require.NoError(t, err)
	assert.Equal(t, "secret", string(body))
}

func TestFetch_ContextCancelledBetweenRetries(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := fetcher.New(fetcher.Config{
		UserAgent:      testUserAgent,
		RequestTimeout: 5 * time.Second,
		RetryCount:     5,
		RetryBackoff:   time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := f.Fetch(ctx, srv.URL+"/down")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
