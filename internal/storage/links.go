package storage

import (
	"context"
	"fmt"
)

// AddLink records a directed edge between two pages. It is idempotent and
// a no-op when either id is unset or when the edge would be a self-loop.
func (s *Store) AddLink(ctx context.Context, sourceID, targetID int64) error {
	if sourceID == 0 || targetID == 0 {
		return nil
	}
	if sourceID == targetID {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO links (source_id, target_id) VALUES (?, ?)`,
		sourceID, targetID,
	); err != nil {
		return fmt.Errorf("add link %d -> %d: %w", sourceID, targetID, err)
	}

	return nil
}

// IterLinks returns every edge of the stored link graph.
func (s *Store) IterLinks(ctx context.Context) ([]Link, error) {
	var links []Link
	if err := s.db.SelectContext(ctx, &links,
		`SELECT source_id, target_id FROM links`,
	); err != nil {
		return nil, fmt.Errorf("iterate links: %w", err)
	}

	return links, nil
}

// LinkCount returns the number of edges in the link graph.
func (s *Store) LinkCount(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM links`); err != nil {
		return 0, fmt.Errorf("count links: %w", err)
	}

	return n, nil
}
