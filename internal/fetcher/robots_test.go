package fetcher_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jonesrussell/minisearch/internal/fetcher"
)

func newRobotsCache() *fetcher.RobotsCache {
	return fetcher.NewRobotsCache(&http.Client{Timeout: 5 * time.Second}, testUserAgent)
}

func TestCanFetch_RespectsDisallow(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/robots.txt", r.URL.Path)
		_, _ = w.Write([]byte("User-agent: *\nDisallow: /admin/\n"))
	}))
	defer srv.Close()

	cache := newRobotsCache()
	ctx := context.Background()

	assert.False(t, cache.CanFetch(ctx, srv.URL+"/admin/users"))
	assert.True(t, cache.CanFetch(ctx, srv.URL+"/docs"))
	assert.True(t, cache.CanFetch(ctx, srv.URL+"/"))
}

func TestCanFetch_MissingRobotsAllowsAll(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	assert.True(t, newRobotsCache().CanFetch(context.Background(), srv.URL+"/anything"))
}

func TestCanFetch_ServerErrorAllowsAll(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	assert.True(t, newRobotsCache().CanFetch(context.Background(), srv.URL+"/anything"))
}

func TestCanFetch_UnreachableHostAllowsAll(t *testing.T) {
	t.Parallel()

	cache := fetcher.NewRobotsCache(&http.Client{Timeout: 200 * time.Millisecond}, testUserAgent)

	// Reserved TEST-NET-1 address, nothing listens there.
	assert.True(t, cache.CanFetch(context.Background(), "http://192.0.2.1/page"))
}

func TestCanFetch_FetchesOriginOnce(t *testing.T) {
	t.Parallel()

	var robotsHits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		robotsHits.Add(1)
		_, _ = w.Write([]byte("User-agent: *\nAllow: /\n"))
	}))
	defer srv.Close()

	cache := newRobotsCache()
	ctx := context.Background()

	for range 5 {
		assert.True(t, cache.CanFetch(ctx, srv.URL+"/page"))
	}

	assert.Equal(t, int64(1), robotsHits.Load())
}

func TestCanFetch_MalformedURL(t *testing.T) {
	t.Parallel()

	cache := newRobotsCache()
	ctx := context.Background()

	assert.False(t, cache.CanFetch(ctx, "not a url"))
	assert.False(t, cache.CanFetch(ctx, "/relative/path"))
	assert.False(t, cache.CanFetch(ctx, ""))
}
