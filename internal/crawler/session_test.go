package crawler_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/minisearch/internal/crawler"
	"github.com/jonesrussell/minisearch/internal/logger"
	"github.com/jonesrussell/minisearch/internal/storage"
)

func newTestStore(t *testing.T) *storage.Store {
	t.Helper()

	store, err := storage.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return store
}

// newMiniSite serves a small site from a path -> HTML map. Unknown paths,
// including /robots.txt, return 404.
func newMiniSite(t *testing.T, pages map[string]string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		html, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(html))
	}))
	t.Cleanup(srv.Close)

	return srv
}

func sessionConfig(seeds []string) crawler.Config {
	return crawler.Config{
		SeedURLs:       seeds,
		MaxPages:       100,
		WorkerCount:    2,
		UserAgent:      "MiniGoogleBot/1.0",
		RequestTimeout: 5 * time.Second,
		RetryCount:     1,
		NextTimeout:    50 * time.Millisecond,
	}
}

func TestSession_CrawlsConnectedSite(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	srv := newMiniSite(t, map[string]string{
		"/a": `<html><head><title>Page A</title></head>
<body>Alpha content <a href="/b">b</a> <a href="/c">c</a></body></html>`,
		"/b": `<html><head><title>Page B</title></head>
<body>Beta content <a href="/a">a</a></body></html>`,
		"/c": `<html><head><title>Page C</title></head><body>Gamma content</body></html>`,
	})

	session := crawler.NewSession(sessionConfig([]string{srv.URL + "/a"}), store, logger.NewNoop(), nil)
	stats := session.Run(context.Background())

	assert.Equal(t, 3, stats.PagesCrawled)
	assert.Equal(t, 3, stats.URLsSeen)

	ctx := context.Background()

	n, err := store.DocumentCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	links, err := store.LinkCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, links) // a->b, a->c, b->a

	aID, err := store.GetPageID(ctx, srv.URL+"/a")
	require.NoError(t, err)
	page, err := store.GetPage(ctx, aID)
	require.NoError(t, err)
	assert.Equal(t, "Page A", page.Title.String)
	assert.Contains(t, page.CleanedText.String, "Alpha content")
}

func TestSession_DeadLinkLeavesPlaceholder(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	srv := newMiniSite(t, map[string]string{
		"/a": `<html><head><title>Page A</title></head>
<body><a href="/missing">missing</a></body></html>`,
	})

	session := crawler.NewSession(sessionConfig([]string{srv.URL + "/a"}), store, logger.NewNoop(), nil)
	stats := session.Run(context.Background())

	// The dead target was attempted but only /a was stored as content.
	assert.Equal(t, 1, stats.PagesCrawled)
	assert.Equal(t, 2, stats.URLsSeen)

	ctx := context.Background()

	id, err := store.GetPageID(ctx, srv.URL+"/missing")
	require.NoError(t, err, "the link target must exist as a placeholder")

	page, err := store.GetPage(ctx, id)
	require.NoError(t, err)
	assert.False(t, page.Title.Valid, "placeholder must have no title")
	assert.False(t, page.CleanedText.Valid, "placeholder must have no text")

	links, err := store.LinkCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, links)
}

func TestSession_RecrawlDoesNotDuplicate(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	srv := newMiniSite(t, map[string]string{
		"/a": `<html><head><title>A</title></head><body><a href="/b">b</a></body></html>`,
		"/b": `<html><head><title>B</title></head><body>leaf</body></html>`,
	})

	cfg := sessionConfig([]string{srv.URL + "/a"})
	ctx := context.Background()

	crawler.NewSession(cfg, store, logger.NewNoop(), nil).Run(ctx)
	crawler.NewSession(cfg, store, logger.NewNoop(), nil).Run(ctx)

	n, err := store.DocumentCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n, "a second session over the same site adds no rows")

	links, err := store.LinkCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, links)
}

func TestSession_StopsAtPageCap(t *testing.T) {
	t.Parallel()

	// A chain long enough that the cap, not the frontier, ends the session.
	pages := make(map[string]string, 20)
	for i := range 20 {
		pages[fmt.Sprintf("/p%d", i)] = fmt.Sprintf(
			`<html><head><title>P%d</title></head><body><a href="/p%d">next</a></body></html>`, i, i+1)
	}

	store := newTestStore(t)
	srv := newMiniSite(t, pages)

	cfg := sessionConfig([]string{srv.URL + "/p0"})
	cfg.MaxPages = 3
	cfg.WorkerCount = 1

	stats := crawler.NewSession(cfg, store, logger.NewNoop(), nil).Run(context.Background())

	assert.Equal(t, 3, stats.PagesCrawled)
}

func TestSession_ContextCancellation(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		time.Sleep(50 * time.Millisecond)
		_, _ = w.Write([]byte(`<html><body><a href="/more">more</a></body></html>`))
	}))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		crawler.NewSession(sessionConfig([]string{srv.URL + "/start"}), store, logger.NewNoop(), nil).Run(ctx)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("session did not stop after context cancellation")
	}
}

func TestManager_SingleSessionAtATime(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		time.Sleep(100 * time.Millisecond)
		_, _ = w.Write([]byte(`<html><head><title>Slow</title></head><body>slow page</body></html>`))
	}))
	t.Cleanup(srv.Close)

	mgr := crawler.NewManager(sessionConfig([]string{srv.URL + "/slow"}), store, logger.NewNoop(), nil)

	id, err := mgr.Start(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.True(t, mgr.Running())

	_, err = mgr.Start(context.Background())
	assert.ErrorIs(t, err, crawler.ErrAlreadyRunning)

	assert.Eventually(t, func() bool { return !mgr.Running() },
		5*time.Second, 20*time.Millisecond, "session must finish and release the manager")

	stats, ok := mgr.LastStats()
	require.True(t, ok)
	assert.Equal(t, 1, stats.PagesCrawled)

	// A new session may start once the previous one finished.
	_, err = mgr.Start(context.Background())
	require.NoError(t, err)
	assert.Eventually(t, func() bool { return !mgr.Running() }, 5*time.Second, 20*time.Millisecond)
}
