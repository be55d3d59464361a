// Package storage provides durable persistence for pages, the link graph,
// keyword postings and PageRank scores on top of SQLite.
package storage

import (
	"fmt"
	"strings"
	"sync"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // SQLite driver
)

// schema defines the three tables and their lookup indexes.
const schema = `
CREATE TABLE IF NOT EXISTS pages (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	url          TEXT UNIQUE NOT NULL,
	title        TEXT,
	content      TEXT,
	cleaned_text TEXT,
	pagerank     REAL DEFAULT 0.0,
	crawled_at   TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS links (
	source_id INTEGER NOT NULL,
	target_id INTEGER NOT NULL,
	PRIMARY KEY (source_id, target_id),
	FOREIGN KEY (source_id) REFERENCES pages(id),
	FOREIGN KEY (target_id) REFERENCES pages(id)
);

CREATE TABLE IF NOT EXISTS keywords (
	word           TEXT NOT NULL,
	doc_id         INTEGER NOT NULL,
	term_frequency INTEGER NOT NULL,
	PRIMARY KEY (word, doc_id),
	FOREIGN KEY (doc_id) REFERENCES pages(id)
);

CREATE INDEX IF NOT EXISTS idx_keywords_word ON keywords(word);
CREATE INDEX IF NOT EXISTS idx_pages_url ON pages(url);
`

// Store is a process-wide handle to the search engine database.
// Writers are serialized by a mutex; SQLite allows a single writer at a time
// and the busy timeout covers the rest.
type Store struct {
	db *sqlx.DB
	mu sync.Mutex // serializes writers
}

// Open opens (creating if necessary) the database at path and initializes
// the schema. The special path ":memory:" opens an in-memory database.
func Open(path string) (*Store, error) {
	dsn := path
	if path == ":memory:" {
		// URI form so connection parameters can be appended. With a single
		// pooled connection each Store gets its own private database.
		dsn = "file::memory:"
	}
	if strings.Contains(dsn, "?") {
		dsn += "&" + dsnParams
	} else {
		dsn += "?" + dsnParams
	}

	db, err := sqlx.Connect("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database %q: %w", path, err)
	}

	// SQLite admits one writer; a single pooled connection sidesteps
	// SQLITE_BUSY between our own connections.
	db.SetMaxOpenConns(1)

	if _, execErr := db.Exec(schema); execErr != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", execErr)
	}

	return &Store{db: db}, nil
}

// dsnParams are the connection parameters appended to every DSN.
const dsnParams = "_time_format=sqlite&_pragma=busy_timeout(5000)"

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
