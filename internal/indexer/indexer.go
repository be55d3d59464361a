// Package indexer rebuilds the inverted index from stored page text.
package indexer

import (
	"context"
	"fmt"

	"github.com/jonesrussell/minisearch/internal/logger"
	"github.com/jonesrussell/minisearch/internal/storage"
	"github.com/jonesrussell/minisearch/internal/textproc"
)

// Store is the subset of the storage API the indexer uses.
type Store interface {
	ListPages(ctx context.Context) ([]storage.PageRef, error)
	GetCleanedText(ctx context.Context, id int64) (string, error)
	SavePostings(ctx context.Context, docID int64, termFreqs map[string]int) error
}

// Indexer performs full index rebuilds. The operation is idempotent: two
// rebuilds over unchanged content produce identical postings.
type Indexer struct {
	store Store
	proc  *textproc.Processor
	log   logger.Interface
}

// New creates an Indexer.
func New(store Store, proc *textproc.Processor, log logger.Interface) *Indexer {
	return &Indexer{store: store, proc: proc, log: log}
}

// Rebuild tokenizes every page with non-empty cleaned text and replaces its
// postings. A storage error aborts the rebuild, leaving the previous good
// postings of unprocessed documents intact.
func (ix *Indexer) Rebuild(ctx context.Context) error {
	ix.log.Info("building inverted index")

	pages, err := ix.store.ListPages(ctx)
	if err != nil {
		return fmt.Errorf("list pages: %w", err)
	}

	indexed := 0
	for _, page := range pages {
		text, textErr := ix.store.GetCleanedText(ctx, page.ID)
		if textErr != nil {
			return fmt.Errorf("read text for page %d: %w", page.ID, textErr)
		}

		tokens := ix.proc.Process(text)
		if len(tokens) == 0 {
			// Placeholders and empty pages carry nothing to index.
			ix.log.Debug("skipping page without content", "page_id", page.ID, "url", page.URL)
			continue
		}

		freqs := make(map[string]int, len(tokens))
		for _, tok := range tokens {
			freqs[tok]++
		}

		if saveErr := ix.store.SavePostings(ctx, page.ID, freqs); saveErr != nil {
			return fmt.Errorf("save postings for page %d: %w", page.ID, saveErr)
		}
		indexed++
	}

	ix.log.Info("inverted index built", "pages_indexed", indexed, "pages_total", len(pages))

	return nil
}
