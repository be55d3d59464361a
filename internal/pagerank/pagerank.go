// Package pagerank computes damped PageRank over the stored link graph.
//
// The computation uses the pull-dangling variant: each iteration gathers the
// rank mass sitting on pages with no outlinks and redistributes it uniformly
// alongside the teleport term, so total probability is preserved.
package pagerank

import (
	"context"
	"fmt"

	"github.com/jonesrussell/minisearch/internal/logger"
	"github.com/jonesrussell/minisearch/internal/storage"
)

// Store is the subset of the storage API PageRank uses.
type Store interface {
	ListPages(ctx context.Context) ([]storage.PageRef, error)
	IterLinks(ctx context.Context) ([]storage.Link, error)
	UpdatePageRank(ctx context.Context, id int64, score float64) error
}

// Config holds the PageRank parameters.
type Config struct {
	DampingFactor float64
	Iterations    int
}

// Computer runs batch PageRank computations.
type Computer struct {
	store Store
	cfg   Config
	log   logger.Interface
}

// New creates a Computer.
func New(store Store, cfg Config, log logger.Interface) *Computer {
	return &Computer{store: store, cfg: cfg, log: log}
}

// Compute loads the link graph, runs the fixed number of damped iterations
// and persists a score for every page. On a non-empty graph the scores sum
// to 1 up to floating point error. An empty page set is a no-op.
func (c *Computer) Compute(ctx context.Context) error {
	c.log.Info("calculating pagerank",
		"damping", c.cfg.DampingFactor,
		"iterations", c.cfg.Iterations,
	)

	pages, err := c.store.ListPages(ctx)
	if err != nil {
		return fmt.Errorf("list pages: %w", err)
	}

	n := len(pages)
	if n == 0 {
		c.log.Info("no pages, skipping pagerank")
		return nil
	}

	ids := make([]int64, n)
	known := make(map[int64]struct{}, n)
	for i, page := range pages {
		ids[i] = page.ID
		known[page.ID] = struct{}{}
	}

	outlinks, err := c.loadOutlinks(ctx, known)
	if err != nil {
		return err
	}

	ranks := c.iterate(ids, outlinks)

	c.log.Info("saving pagerank scores", "pages", n)
	for id, score := range ranks {
		if updateErr := c.store.UpdatePageRank(ctx, id, score); updateErr != nil {
			return fmt.Errorf("persist pagerank for page %d: %w", id, updateErr)
		}
	}

	return nil
}

// loadOutlinks builds the adjacency map source -> targets, keeping only
// edges whose endpoints are in the loaded page set.
func (c *Computer) loadOutlinks(ctx context.Context, known map[int64]struct{}) (map[int64][]int64, error) {
	links, err := c.store.IterLinks(ctx)
	if err != nil {
		return nil, fmt.Errorf("load links: %w", err)
	}

	outlinks := make(map[int64][]int64, len(known))
	for _, link := range links {
		if _, ok := known[link.SourceID]; !ok {
			continue
		}
		if _, ok := known[link.TargetID]; !ok {
			continue
		}
		outlinks[link.SourceID] = append(outlinks[link.SourceID], link.TargetID)
	}

	return outlinks, nil
}

// iterate runs the damped power iteration and returns the final rank vector.
func (c *Computer) iterate(ids []int64, outlinks map[int64][]int64) map[int64]float64 {
	n := len(ids)
	d := c.cfg.DampingFactor

	ranks := make(map[int64]float64, n)
	for _, id := range ids {
		ranks[id] = 1.0 / float64(n)
	}

	var dangling []int64
	for _, id := range ids {
		if len(outlinks[id]) == 0 {
			dangling = append(dangling, id)
		}
	}

	for range c.cfg.Iterations {
		danglingSum := 0.0
		for _, id := range dangling {
			danglingSum += ranks[id]
		}

		contrib := make(map[int64]float64, n)
		for _, src := range ids {
			targets := outlinks[src]
			if len(targets) == 0 {
				continue
			}
			share := ranks[src] / float64(len(targets))
			for _, tgt := range targets {
				contrib[tgt] += share
			}
		}

		base := (1.0 - d) / float64(n)
		danglingVal := d * danglingSum / float64(n)

		next := make(map[int64]float64, n)
		for _, id := range ids {
			next[id] = base + danglingVal + d*contrib[id]
		}

		ranks = next
	}

	return ranks
}
