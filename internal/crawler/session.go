// Package crawler runs crawl sessions: a pool of workers draining the URL
// frontier through the fetch/parse/persist pipeline.
package crawler

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonesrussell/minisearch/internal/fetcher"
	"github.com/jonesrussell/minisearch/internal/frontier"
	"github.com/jonesrussell/minisearch/internal/logger"
	"github.com/jonesrussell/minisearch/internal/metrics"
)

// defaultNextTimeout is how long a worker waits for the frontier to yield
// a URL before looping.
const defaultNextTimeout = time.Second

// Config configures a crawl session.
type Config struct {
	SeedURLs             []string
	MaxPages             int
	WorkerCount          int
	UserAgent            string
	RequestTimeout       time.Duration
	RetryCount           int
	DelayBetweenRequests time.Duration
	// NextTimeout overrides the frontier poll timeout. Zero means 1s.
	NextTimeout time.Duration
}

// PageStore is the subset of the storage API a crawl session writes to.
type PageStore interface {
	UpsertPage(ctx context.Context, url, title, content, cleanedText string) (int64, error)
	UpsertPlaceholder(ctx context.Context, url string) (int64, error)
	GetPageID(ctx context.Context, url string) (int64, error)
	AddLink(ctx context.Context, sourceID, targetID int64) error
}

// Fetcher retrieves page bodies.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Stats summarizes a finished crawl session.
type Stats struct {
	PagesCrawled int           `json:"pages_crawled"`
	URLsSeen     int           `json:"urls_seen"`
	Duration     time.Duration `json:"duration"`
}

// Session is a single bounded crawl over the web graph. A Session is used
// once: create, Run, discard.
type Session struct {
	cfg      Config
	store    PageStore
	fetch    Fetcher
	frontier *frontier.Frontier
	log      logger.Interface
	metrics  *metrics.Metrics

	pages  atomic.Int64
	cancel context.CancelFunc
}

// NewSession creates a crawl session with its own frontier and fetcher.
func NewSession(cfg Config, store PageStore, log logger.Interface, m *metrics.Metrics) *Session {
	if cfg.NextTimeout == 0 {
		cfg.NextTimeout = defaultNextTimeout
	}

	return &Session{
		cfg:   cfg,
		store: store,
		fetch: fetcher.New(fetcher.Config{
			UserAgent:      cfg.UserAgent,
			RequestTimeout: cfg.RequestTimeout,
			RetryCount:     cfg.RetryCount,
		}),
		frontier: frontier.New(),
		log:      log,
		metrics:  m,
	}
}

// Run seeds the frontier and blocks until the session finishes: the frontier
// drains, the page cap is reached, or the context is cancelled. Workers
// observe the stop signal between items.
func (s *Session) Run(ctx context.Context) Stats {
	start := time.Now()

	for _, seed := range s.cfg.SeedURLs {
		s.frontier.Add(seed)
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	defer cancel()

	s.log.Info("crawl session starting",
		"seeds", len(s.cfg.SeedURLs),
		"workers", s.cfg.WorkerCount,
		"max_pages", s.cfg.MaxPages,
	)

	g := new(errgroup.Group)

	for i := range s.cfg.WorkerCount {
		g.Go(func() error {
			s.worker(runCtx, i)
			return nil
		})
	}

	// Stop the workers once every accepted URL has been processed.
	g.Go(func() error {
		if s.frontier.Join(runCtx) {
			cancel()
		}
		return nil
	})

	_ = g.Wait()

	stats := Stats{
		PagesCrawled: int(s.pages.Load()),
		URLsSeen:     s.frontier.SeenCount(),
		Duration:     time.Since(start),
	}

	s.log.Info("crawl session finished",
		"pages_crawled", stats.PagesCrawled,
		"urls_seen", stats.URLsSeen,
		"duration", stats.Duration.String(),
	)

	return stats
}
