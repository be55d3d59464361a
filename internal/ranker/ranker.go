// Package ranker executes keyword queries against the inverted index,
// combining TF·IDF with PageRank and attaching snippets.
package ranker

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/jonesrussell/minisearch/internal/logger"
	"github.com/jonesrussell/minisearch/internal/storage"
	"github.com/jonesrussell/minisearch/internal/textproc"
)

// maxResults is the result list cap.
const maxResults = 10

// Store is the subset of the storage API the ranker reads.
type Store interface {
	DocumentCount(ctx context.Context) (int, error)
	DocFrequency(ctx context.Context, word string) (int, error)
	PostingList(ctx context.Context, word string) ([]storage.Posting, error)
}

// Config holds the linear combination weights of the final score.
type Config struct {
	PageRankWeight float64
	TFIDFWeight    float64
}

// Result is one ranked hit.
type Result struct {
	URL      string  `json:"url"`
	Title    string  `json:"title"`
	Snippet  string  `json:"snippet"`
	Score    float64 `json:"score"`
	PageRank float64 `json:"pagerank"`
}

// Ranker scores documents term-at-a-time.
type Ranker struct {
	store Store
	proc  *textproc.Processor
	cfg   Config
	log   logger.Interface
}

// New creates a Ranker.
func New(store Store, proc *textproc.Processor, cfg Config, log logger.Interface) *Ranker {
	return &Ranker{store: store, proc: proc, cfg: cfg, log: log}
}

// candidate accumulates the score and display fields of one document.
type candidate struct {
	docID    int64
	url      string
	title    string
	pagerank float64
	text     string
	tfidf    float64
}

// Search runs the query and returns at most ten results ordered by final
// score descending. Only documents matching at least one query term are
// ranked; a repeated query term contributes once per occurrence.
func (r *Ranker) Search(ctx context.Context, query string) ([]Result, error) {
	tokens := r.proc.Process(query)
	if len(tokens) == 0 {
		return nil, nil
	}

	total, err := r.store.DocumentCount(ctx)
	if err != nil {
		return nil, fmt.Errorf("document count: %w", err)
	}
	if total == 0 {
		return nil, nil
	}

	candidates := make(map[int64]*candidate)

	for _, term := range tokens {
		df, dfErr := r.store.DocFrequency(ctx, term)
		if dfErr != nil {
			return nil, fmt.Errorf("doc frequency: %w", dfErr)
		}
		if df == 0 {
			continue
		}

		idf := math.Log(float64(total) / float64(df))

		postings, listErr := r.store.PostingList(ctx, term)
		if listErr != nil {
			return nil, fmt.Errorf("posting list: %w", listErr)
		}

		for _, posting := range postings {
			cand, seen := candidates[posting.DocID]
			if !seen {
				cand = &candidate{
					docID:    posting.DocID,
					url:      posting.URL,
					title:    posting.Title.String,
					pagerank: posting.PageRank,
					text:     posting.CleanedText.String,
				}
				candidates[posting.DocID] = cand
			}
			cand.tfidf += float64(posting.TF) * idf * r.cfg.TFIDFWeight
		}
	}

	results := make([]Result, 0, len(candidates))
	for _, cand := range candidates {
		results = append(results, Result{
			URL:      cand.url,
			Title:    cand.title,
			Snippet:  makeSnippet(cand.text, tokens),
			Score:    cand.tfidf + cand.pagerank*r.cfg.PageRankWeight,
			PageRank: cand.pagerank,
		})
	}

	// Descending by score; ties broken by URL for a stable order.
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].URL < results[j].URL
	})

	if len(results) > maxResults {
		results = results[:maxResults]
	}

	return results, nil
}
