package crawler

import (
	"context"
	"errors"
	"time"

	"github.com/jonesrussell/minisearch/internal/logger"
	"github.com/jonesrussell/minisearch/internal/parser"
	"github.com/jonesrussell/minisearch/internal/storage"
)

// worker is one crawl worker loop. It pulls URLs until the context is
// cancelled or the session page cap is reached; transient emptiness of the
// frontier never makes it exit.
func (s *Session) worker(ctx context.Context, id int) {
	log := s.log.With("worker_id", id)
	log.Debug("worker started")

	for {
		select {
		case <-ctx.Done():
			log.Debug("worker stopping")
			return
		default:
		}

		if s.pages.Load() >= int64(s.cfg.MaxPages) {
			log.Info("page cap reached, stopping session")
			s.cancel()
			return
		}

		url, ok := s.frontier.Next(s.cfg.NextTimeout)
		if !ok {
			continue
		}

		s.processURL(ctx, log, url)
	}
}

// processURL runs one URL through fetch, parse, persist and link recording.
// Failures are logged and swallowed: one URL never kills the worker. The
// frontier is always signalled, success or not.
func (s *Session) processURL(ctx context.Context, log logger.Interface, url string) {
	defer s.frontier.Done()

	// Politeness delay before every fetch.
	if s.cfg.DelayBetweenRequests > 0 {
		select {
		case <-ctx.Done():
			return
		case <-time.After(s.cfg.DelayBetweenRequests):
		}
	}

	log.Info("crawling", "url", url)

	body, err := s.fetch.Fetch(ctx, url)
	if err != nil {
		log.Warn("fetch failed", "url", url, "error", err.Error())
		if s.metrics != nil {
			s.metrics.FetchErrors.Inc()
		}
		return
	}

	page, err := parser.Parse(body, url)
	if err != nil {
		log.Warn("parse failed", "url", url, "error", err.Error())
		return
	}

	srcID, err := s.store.UpsertPage(ctx, url, page.Title, page.RawContent, page.CleanedText)
	if err != nil {
		log.Error("store page failed", "url", url, "error", err.Error())
		return
	}

	s.pages.Add(1)
	if s.metrics != nil {
		s.metrics.PagesCrawled.Inc()
	}

	s.recordOutlinks(ctx, log, srcID, page.Links)
}

// recordOutlinks enqueues each outlink for future crawling and commits the
// edge immediately, creating a placeholder page when the target has not been
// fetched yet. The link graph is therefore complete before PageRank runs.
func (s *Session) recordOutlinks(ctx context.Context, log logger.Interface, srcID int64, links []string) {
	for _, link := range links {
		if s.frontier.Add(link) {
			log.Debug("queued", "url", link)
		}

		tgtID, err := s.store.GetPageID(ctx, link)
		if errors.Is(err, storage.ErrNotFound) {
			tgtID, err = s.store.UpsertPlaceholder(ctx, link)
		}
		if err != nil {
			log.Warn("resolve link target failed", "url", link, "error", err.Error())
			continue
		}

		if linkErr := s.store.AddLink(ctx, srcID, tgtID); linkErr != nil {
			log.Warn("store link failed", "url", link, "error", linkErr.Error())
			continue
		}

		if s.metrics != nil {
			s.metrics.LinksDiscovered.Inc()
		}
	}
}
