package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/minisearch/internal/admin"
	"github.com/jonesrussell/minisearch/internal/crawler"
	"github.com/jonesrussell/minisearch/internal/logger"
	"github.com/jonesrussell/minisearch/internal/metrics"
	"github.com/jonesrussell/minisearch/internal/ranker"
)

// StatsStore is the subset of the storage API the stats endpoint reads.
type StatsStore interface {
	DocumentCount(ctx context.Context) (int, error)
	LinkCount(ctx context.Context) (int, error)
}

// Handler holds the HTTP request handlers.
type Handler struct {
	ranker   *ranker.Ranker
	crawls   *crawler.Manager
	rebuilds *admin.Rebuilder
	store    StatsStore
	metrics  *metrics.Metrics
	log      logger.Interface
	runCtx   context.Context
}

// NewHandler creates a Handler. runCtx is the lifetime context handed to
// background crawl and rebuild tasks; cancelling it stops them.
func NewHandler(
	runCtx context.Context,
	rk *ranker.Ranker,
	crawls *crawler.Manager,
	rebuilds *admin.Rebuilder,
	store StatsStore,
	m *metrics.Metrics,
	log logger.Interface,
) *Handler {
	return &Handler{
		ranker:   rk,
		crawls:   crawls,
		rebuilds: rebuilds,
		store:    store,
		metrics:  m,
		log:      log,
		runCtx:   runCtx,
	}
}

// searchResponse is the /search payload.
type searchResponse struct {
	Query   string          `json:"query"`
	Count   int             `json:"count"`
	Results []ranker.Result `json:"results"`
}

// messageResponse is the payload of the admin trigger endpoints.
type messageResponse struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

// errorResponse is the payload of failed requests.
type errorResponse struct {
	Error string `json:"error"`
}

// Root handles GET /.
func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, messageResponse{
		Message: "Welcome to minisearch. Use /search?q=query to search.",
	})
}

// Search handles GET /search?q=...
func (h *Handler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, errorResponse{
			Error: "query parameter 'q' is required",
		})
		return
	}

	start := time.Now()

	results, err := h.ranker.Search(c.Request.Context(), query)
	if err != nil {
		h.log.Error("search failed", "query", query, "error", err.Error())
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "search failed"})
		return
	}

	if h.metrics != nil {
		h.metrics.QueriesTotal.Inc()
		h.metrics.QueryDuration.Observe(time.Since(start).Seconds())
	}

	if results == nil {
		results = []ranker.Result{}
	}

	c.JSON(http.StatusOK, searchResponse{
		Query:   query,
		Count:   len(results),
		Results: results,
	})
}

// TriggerCrawl handles POST /admin/crawl.
func (h *Handler) TriggerCrawl(c *gin.Context) {
	id, err := h.crawls.Start(h.runCtx)
	if errors.Is(err, crawler.ErrAlreadyRunning) {
		c.JSON(http.StatusOK, messageResponse{Message: "Crawler already running"})
		return
	}
	if err != nil {
		h.log.Error("start crawl failed", "error", err.Error())
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to start crawler"})
		return
	}

	c.JSON(http.StatusOK, messageResponse{
		Message:   "Crawler started in background",
		SessionID: id,
	})
}

// TriggerIndex handles POST /admin/index. The rebuild runs the inverted
// index pass followed by the PageRank recompute.
func (h *Handler) TriggerIndex(c *gin.Context) {
	err := h.rebuilds.Start(h.runCtx)
	if errors.Is(err, admin.ErrRebuildInProgress) {
		c.JSON(http.StatusOK, messageResponse{Message: "Indexing already in progress"})
		return
	}
	if err != nil {
		h.log.Error("start rebuild failed", "error", err.Error())
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to start indexing"})
		return
	}

	c.JSON(http.StatusOK, messageResponse{Message: "Indexing started in background"})
}

// statsResponse is the /admin/stats payload.
type statsResponse struct {
	Documents      int            `json:"documents"`
	Links          int            `json:"links"`
	CrawlerRunning bool           `json:"crawler_running"`
	RebuildRunning bool           `json:"rebuild_running"`
	LastCrawl      *crawler.Stats `json:"last_crawl,omitempty"`
}

// Stats handles GET /admin/stats.
func (h *Handler) Stats(c *gin.Context) {
	ctx := c.Request.Context()

	docs, err := h.store.DocumentCount(ctx)
	if err != nil {
		h.log.Error("stats failed", "error", err.Error())
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to read stats"})
		return
	}

	links, err := h.store.LinkCount(ctx)
	if err != nil {
		h.log.Error("stats failed", "error", err.Error())
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to read stats"})
		return
	}

	resp := statsResponse{
		Documents:      docs,
		Links:          links,
		CrawlerRunning: h.crawls.Running(),
		RebuildRunning: h.rebuilds.Running(),
	}
	if stats, ok := h.crawls.LastStats(); ok {
		resp.LastCrawl = &stats
	}

	c.JSON(http.StatusOK, resp)
}

// Health handles GET /healthz.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
