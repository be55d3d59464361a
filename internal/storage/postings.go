package storage

import (
	"context"
	"fmt"
)

// SavePostings replaces the postings of a document with the given term
// frequencies. The replacement is atomic: either the whole map is stored
// or the previous postings remain intact.
func (s *Store) SavePostings(ctx context.Context, docID int64, termFreqs map[string]int) error {
	if len(termFreqs) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin postings transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if _, delErr := tx.ExecContext(ctx,
		`DELETE FROM keywords WHERE doc_id = ?`, docID,
	); delErr != nil {
		return fmt.Errorf("clear postings for doc %d: %w", docID, delErr)
	}

	stmt, prepErr := tx.PreparexContext(ctx,
		`INSERT INTO keywords (word, doc_id, term_frequency) VALUES (?, ?, ?)`,
	)
	if prepErr != nil {
		return fmt.Errorf("prepare postings insert: %w", prepErr)
	}
	defer stmt.Close()

	for word, tf := range termFreqs {
		if _, insErr := stmt.ExecContext(ctx, word, docID, tf); insErr != nil {
			return fmt.Errorf("insert posting (%q, %d): %w", word, docID, insErr)
		}
	}

	if commitErr := tx.Commit(); commitErr != nil {
		return fmt.Errorf("commit postings transaction: %w", commitErr)
	}

	return nil
}

// DocFrequency returns the number of distinct documents containing the word.
func (s *Store) DocFrequency(ctx context.Context, word string) (int, error) {
	var df int
	if err := s.db.GetContext(ctx, &df,
		`SELECT COUNT(DISTINCT doc_id) FROM keywords WHERE word = ?`, word,
	); err != nil {
		return 0, fmt.Errorf("doc frequency for %q: %w", word, err)
	}

	return df, nil
}

// PostingList returns the postings of a word joined with the page fields
// needed for scoring. Order is unspecified.
func (s *Store) PostingList(ctx context.Context, word string) ([]Posting, error) {
	query := `
		SELECT k.doc_id, k.term_frequency, p.url, p.title, p.pagerank, p.cleaned_text
		FROM keywords k
		JOIN pages p ON k.doc_id = p.id
		WHERE k.word = ?
	`

	var postings []Posting
	if err := s.db.SelectContext(ctx, &postings, query, word); err != nil {
		return nil, fmt.Errorf("posting list for %q: %w", word, err)
	}

	return postings, nil
}
