// Package frontier implements the in-memory URL queue for a crawl session:
// FIFO delivery, visited-set deduplication and completion signaling.
package frontier

import (
	"context"
	"sync"
	"time"
)

// pollInterval is how often Next and Join re-check their condition.
const pollInterval = 10 * time.Millisecond

// Frontier is the dynamic set of URLs to crawl paired with the set of URLs
// ever enqueued. A URL is delivered to at most one caller of Next. All
// methods are safe for concurrent use.
type Frontier struct {
	mu         sync.Mutex
	visited    map[string]struct{}
	queue      []string
	unfinished int
}

// New creates an empty Frontier.
func New() *Frontier {
	return &Frontier{visited: make(map[string]struct{})}
}

// Add enqueues the URL if it has never been seen in this session.
// The visited check and the push are one critical section, so a URL is
// accepted exactly once. Returns true on first sight.
func (f *Frontier) Add(url string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, dup := f.visited[url]; dup {
		return false
	}

	f.visited[url] = struct{}{}
	f.queue = append(f.queue, url)
	f.unfinished++

	return true
}

// Next pops the head of the queue, waiting up to timeout for one to appear.
// The second return value is false when the deadline expires empty.
func (f *Frontier) Next(timeout time.Duration) (string, bool) {
	deadline := time.Now().Add(timeout)

	for {
		f.mu.Lock()
		if len(f.queue) > 0 {
			url := f.queue[0]
			f.queue = f.queue[1:]
			f.mu.Unlock()
			return url, true
		}
		f.mu.Unlock()

		if !time.Now().Before(deadline) {
			return "", false
		}
		time.Sleep(pollInterval)
	}
}

// Done signals that one delivered URL has been fully processed.
func (f *Frontier) Done() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.unfinished > 0 {
		f.unfinished--
	}
}

// Join blocks until every accepted URL has been processed or the context is
// cancelled. Returns true when the frontier drained.
func (f *Frontier) Join(ctx context.Context) bool {
	for {
		f.mu.Lock()
		drained := f.unfinished == 0
		f.mu.Unlock()

		if drained {
			return true
		}

		select {
		case <-ctx.Done():
			return false
		case <-time.After(pollInterval):
		}
	}
}

// Size returns the number of queued, undelivered URLs.
func (f *Frontier) Size() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.queue)
}

// SeenCount returns the number of URLs ever accepted in this session.
func (f *Frontier) SeenCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.visited)
}

// Visited reports whether the URL was ever accepted in this session.
func (f *Frontier) Visited(url string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	_, ok := f.visited[url]
	return ok
}
