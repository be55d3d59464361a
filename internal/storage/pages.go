package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// UpsertPage inserts a page or, when the URL already exists, overwrites its
// title, content and cleaned text and bumps crawled_at. The page id is
// returned in both cases and never changes across upserts.
func (s *Store) UpsertPage(ctx context.Context, url, title, content, cleanedText string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO pages (url, title, content, cleaned_text)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			title        = excluded.title,
			content      = excluded.content,
			cleaned_text = excluded.cleaned_text,
			crawled_at   = CURRENT_TIMESTAMP
		RETURNING id
	`

	var id int64
	if err := s.db.QueryRowxContext(ctx, query, url, title, content, cleanedText).Scan(&id); err != nil {
		return 0, fmt.Errorf("upsert page %q: %w", url, err)
	}

	return id, nil
}

// UpsertPlaceholder ensures a page row exists for the URL without touching
// any content a previous crawl may have stored, and returns its id.
func (s *Store) UpsertPlaceholder(ctx context.Context, url string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin placeholder transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if _, execErr := tx.ExecContext(ctx,
		`INSERT INTO pages (url) VALUES (?) ON CONFLICT(url) DO NOTHING`, url,
	); execErr != nil {
		return 0, fmt.Errorf("insert placeholder %q: %w", url, execErr)
	}

	var id int64
	if getErr := tx.GetContext(ctx, &id, `SELECT id FROM pages WHERE url = ?`, url); getErr != nil {
		return 0, fmt.Errorf("select placeholder id %q: %w", url, getErr)
	}

	if commitErr := tx.Commit(); commitErr != nil {
		return 0, fmt.Errorf("commit placeholder transaction: %w", commitErr)
	}

	return id, nil
}

// GetPageID returns the id of the page with the given URL,
// or ErrNotFound when the URL is unknown.
func (s *Store) GetPageID(ctx context.Context, url string) (int64, error) {
	var id int64
	err := s.db.GetContext(ctx, &id, `SELECT id FROM pages WHERE url = ?`, url)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("get page id %q: %w", url, err)
	}

	return id, nil
}

// GetPage returns the full page row, or ErrNotFound when the id is unknown.
func (s *Store) GetPage(ctx context.Context, id int64) (Page, error) {
	var page Page
	err := s.db.GetContext(ctx, &page, `SELECT * FROM pages WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Page{}, ErrNotFound
	}
	if err != nil {
		return Page{}, fmt.Errorf("get page %d: %w", id, err)
	}

	return page, nil
}

// ListPages returns every page's id and URL, ordered by id.
func (s *Store) ListPages(ctx context.Context) ([]PageRef, error) {
	var pages []PageRef
	if err := s.db.SelectContext(ctx, &pages, `SELECT id, url FROM pages ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}

	return pages, nil
}

// GetCleanedText returns the cleaned text of a page, or ErrNotFound when the
// id is unknown. A placeholder page yields an empty string.
func (s *Store) GetCleanedText(ctx context.Context, id int64) (string, error) {
	var text sql.NullString
	err := s.db.GetContext(ctx, &text, `SELECT cleaned_text FROM pages WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get cleaned text for page %d: %w", id, err)
	}

	return text.String, nil
}

// UpdatePageRank sets the PageRank score of a page.
func (s *Store) UpdatePageRank(ctx context.Context, id int64, score float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx,
		`UPDATE pages SET pagerank = ? WHERE id = ?`, score, id,
	); err != nil {
		return fmt.Errorf("update pagerank for page %d: %w", id, err)
	}

	return nil
}

// DocumentCount returns the total number of pages.
func (s *Store) DocumentCount(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM pages`); err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}

	return n, nil
}
