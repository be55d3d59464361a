// Package fetcher provides HTTP fetching for the crawler, including
// robots.txt compliance checking with per-origin caching.
package fetcher

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/temoto/robotstxt"
)

// robotsTxtPath is the well-known path for robots.txt files.
const robotsTxtPath = "/robots.txt"

// maxRobotsBodyBytes limits the size of robots.txt responses we will read.
const maxRobotsBodyBytes = 512 * 1024 // 512 KB

// RobotsCache checks and caches robots.txt rules per scheme://host origin.
// A fetch or parse failure caches the origin as allow-all.
type RobotsCache struct {
	httpClient *http.Client
	userAgent  string
	cache      map[string]*robotsEntry // keyed by scheme://host
	mu         sync.Mutex
}

type robotsEntry struct {
	data     *robotstxt.RobotsData
	allowAll bool
}

// NewRobotsCache creates a RobotsCache sharing the given HTTP client.
func NewRobotsCache(httpClient *http.Client, userAgent string) *RobotsCache {
	return &RobotsCache{
		httpClient: httpClient,
		userAgent:  userAgent,
		cache:      make(map[string]*robotsEntry),
	}
}

// CanFetch reports whether the configured user agent may fetch the URL.
// The first check for an origin fetches and caches its robots.txt.
// Malformed URLs are treated as not fetchable.
func (r *RobotsCache) CanFetch(ctx context.Context, rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return false
	}

	origin := strings.ToLower(parsed.Scheme + "://" + parsed.Host)
	entry := r.getOrFetch(ctx, origin)

	if entry.allowAll {
		return true
	}

	return entry.data.TestAgent(parsed.Path, r.userAgent)
}

// getOrFetch returns the cached entry for the origin, fetching robots.txt
// on first access. The lock is held across the fetch so an origin is
// fetched at most once.
func (r *RobotsCache) getOrFetch(ctx context.Context, origin string) *robotsEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry, ok := r.cache[origin]; ok {
		return entry
	}

	entry := r.fetch(ctx, origin)
	r.cache[origin] = entry

	return entry
}

// fetch retrieves and parses robots.txt for the origin. Any failure,
// including non-2xx responses, yields an allow-all entry.
func (r *RobotsCache) fetch(ctx context.Context, origin string) *robotsEntry {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, origin+robotsTxtPath, http.NoBody)
	if err != nil {
		return &robotsEntry{allowAll: true}
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return &robotsEntry{allowAll: true}
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &robotsEntry{allowAll: true}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRobotsBodyBytes))
	if err != nil {
		return &robotsEntry{allowAll: true}
	}

	data, err := robotstxt.FromBytes(body)
	if err != nil {
		return &robotsEntry{allowAll: true}
	}

	return &robotsEntry{data: data}
}
