package crawler

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/jonesrussell/minisearch/internal/logger"
	"github.com/jonesrussell/minisearch/internal/metrics"
)

// ErrAlreadyRunning is returned when a crawl is requested while one is active.
var ErrAlreadyRunning = errors.New("crawler: session already running")

// Manager starts background crawl sessions and guarantees at most one is
// active at a time.
type Manager struct {
	cfg     Config
	store   PageStore
	log     logger.Interface
	metrics *metrics.Metrics

	mu        sync.Mutex
	running   bool
	sessionID string
	lastStats *Stats
}

// NewManager creates a Manager.
func NewManager(cfg Config, store PageStore, log logger.Interface, m *metrics.Metrics) *Manager {
	return &Manager{
		cfg:     cfg,
		store:   store,
		log:     log,
		metrics: m,
	}
}

// Start launches a crawl session in the background and returns its id.
// Returns ErrAlreadyRunning when a session is still active. The session
// stops when it drains, hits the page cap, or ctx is cancelled.
func (m *Manager) Start(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return "", ErrAlreadyRunning
	}

	id := uuid.NewString()
	m.running = true
	m.sessionID = id

	session := NewSession(m.cfg, m.store, m.log.With("session_id", id), m.metrics)

	go func() {
		stats := session.Run(ctx)

		m.mu.Lock()
		m.running = false
		m.lastStats = &stats
		m.mu.Unlock()
	}()

	return id, nil
}

// Running reports whether a crawl session is active.
func (m *Manager) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.running
}

// LastStats returns the stats of the most recently finished session.
func (m *Manager) LastStats() (Stats, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.lastStats == nil {
		return Stats{}, false
	}
	return *m.lastStats, true
}
