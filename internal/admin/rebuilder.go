// Package admin coordinates the batch rebuild tasks.
package admin

import (
	"context"
	"errors"
	"sync"

	"github.com/jonesrussell/minisearch/internal/indexer"
	"github.com/jonesrussell/minisearch/internal/logger"
	"github.com/jonesrussell/minisearch/internal/pagerank"
)

// ErrRebuildInProgress is returned when a rebuild is requested while one is
// still running.
var ErrRebuildInProgress = errors.New("admin: rebuild already in progress")

// Rebuilder serializes full rebuilds: the inverted index rebuild followed by
// the PageRank recompute. The two are never run concurrently with themselves
// or with each other; they may overlap a crawl, which the next rebuild
// corrects.
type Rebuilder struct {
	indexer  *indexer.Indexer
	pagerank *pagerank.Computer
	log      logger.Interface

	mu      sync.Mutex
	running bool
}

// NewRebuilder creates a Rebuilder.
func NewRebuilder(ix *indexer.Indexer, pr *pagerank.Computer, log logger.Interface) *Rebuilder {
	return &Rebuilder{indexer: ix, pagerank: pr, log: log}
}

// Start launches the rebuild in the background. Returns
// ErrRebuildInProgress when one is already running.
func (r *Rebuilder) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return ErrRebuildInProgress
	}
	r.running = true

	go func() {
		defer func() {
			r.mu.Lock()
			r.running = false
			r.mu.Unlock()
		}()

		if err := r.Run(ctx); err != nil {
			r.log.Error("rebuild failed", "error", err.Error())
		}
	}()

	return nil
}

// Run executes the rebuild synchronously. A storage error aborts the whole
// rebuild and leaves the previous good state intact.
func (r *Rebuilder) Run(ctx context.Context) error {
	if err := r.indexer.Rebuild(ctx); err != nil {
		return err
	}

	if err := r.pagerank.Compute(ctx); err != nil {
		return err
	}

	r.log.Info("indexing and pagerank complete")

	return nil
}

// Running reports whether a rebuild is active.
func (r *Rebuilder) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.running
}
