package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxResponseBodyBytes limits the size of fetched page responses.
const maxResponseBodyBytes = 10 * 1024 * 1024 // 10 MB

// defaultRetryBackoff is the sleep between fetch attempts.
const defaultRetryBackoff = time.Second

// ErrRobotsDisallowed is returned when robots.txt forbids fetching a URL.
var ErrRobotsDisallowed = errors.New("fetcher: disallowed by robots.txt")

// Config configures a Fetcher.
type Config struct {
	UserAgent      string
	RequestTimeout time.Duration
	RetryCount     int
	// RetryBackoff overrides the sleep between attempts. Zero means 1s.
	RetryBackoff time.Duration
}

// Fetcher performs HTTP GETs with bounded retries and robots.txt gating.
// It is stateless across URLs except for the shared HTTP client and the
// robots cache, and is safe for concurrent use.
type Fetcher struct {
	client     *http.Client
	robots     *RobotsCache
	userAgent  string
	retryCount int
	backoff    time.Duration
}

// New creates a Fetcher. The per-attempt request timeout is enforced by the
// shared HTTP client; the same client serves robots.txt lookups so
// persistent connections are reused.
func New(cfg Config) *Fetcher {
	client := &http.Client{Timeout: cfg.RequestTimeout}

	retries := cfg.RetryCount
	if retries < 1 {
		retries = 1
	}

	backoff := cfg.RetryBackoff
	if backoff == 0 {
		backoff = defaultRetryBackoff
	}

	return &Fetcher{
		client:     client,
		robots:     NewRobotsCache(client, cfg.UserAgent),
		userAgent:  cfg.UserAgent,
		retryCount: retries,
		backoff:    backoff,
	}
}

// Fetch retrieves the body of the URL. It returns ErrRobotsDisallowed when
// robots.txt forbids the fetch, and the last attempt's error after the retry
// budget is exhausted. Only HTTP 200 responses count as success.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if !f.robots.CanFetch(ctx, url) {
		return nil, ErrRobotsDisallowed
	}

	var lastErr error
	for attempt := 1; attempt <= f.retryCount; attempt++ {
		body, err := f.attempt(ctx, url)
		if err == nil {
			return body, nil
		}
		lastErr = err

		if attempt < f.retryCount {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(f.backoff):
			}
		}
	}

	return nil, fmt.Errorf("fetch %q after %d attempts: %w", url, f.retryCount, lastErr)
}

// attempt performs a single GET.
func (f *Fetcher) attempt(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBodyBytes))
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return body, nil
}
