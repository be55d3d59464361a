package storage

import (
	"database/sql"
	"time"
)

// Page is a crawled or referenced document. A page whose Title, Content and
// CleanedText are all unset is a placeholder: it has been referenced by
// another page's outlink but not yet fetched.
type Page struct {
	ID          int64          `db:"id"`
	URL         string         `db:"url"`
	Title       sql.NullString `db:"title"`
	Content     sql.NullString `db:"content"`
	CleanedText sql.NullString `db:"cleaned_text"`
	PageRank    float64        `db:"pagerank"`
	CrawledAt   time.Time      `db:"crawled_at"`
}

// PageRef identifies a page without carrying its content.
type PageRef struct {
	ID  int64  `db:"id"`
	URL string `db:"url"`
}

// Link is a directed edge between two pages.
type Link struct {
	SourceID int64 `db:"source_id"`
	TargetID int64 `db:"target_id"`
}

// Posting is one row of the indexed join between keywords and pages,
// as returned by PostingList.
type Posting struct {
	DocID       int64          `db:"doc_id"`
	TF          int            `db:"term_frequency"`
	URL         string         `db:"url"`
	Title       sql.NullString `db:"title"`
	PageRank    float64        `db:"pagerank"`
	CleanedText sql.NullString `db:"cleaned_text"`
}
