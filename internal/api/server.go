// Package api implements the HTTP surface of the search engine.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/minisearch/internal/config"
	"github.com/jonesrussell/minisearch/internal/logger"
	"github.com/jonesrussell/minisearch/internal/metrics"
)

// shutdownTimeout bounds graceful shutdown.
const shutdownTimeout = 10 * time.Second

// Server wraps the gin engine and the http.Server lifecycle.
type Server struct {
	engine *gin.Engine
	cfg    config.ServerConfig
	log    logger.Interface
}

// NewServer builds the router and registers all routes.
func NewServer(cfg config.ServerConfig, handler *Handler, m *metrics.Metrics, log logger.Interface) *Server {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	SetupRoutes(engine, handler, m)

	return &Server{engine: engine, cfg: cfg, log: log}
}

// SetupRoutes registers every route on the engine.
func SetupRoutes(engine *gin.Engine, handler *Handler, m *metrics.Metrics) {
	engine.GET("/", handler.Root)
	engine.GET("/healthz", handler.Health)
	engine.GET("/search", handler.Search)

	if m != nil {
		engine.GET("/metrics", gin.WrapH(m.Handler()))
	}

	adminGroup := engine.Group("/admin")
	{
		adminGroup.POST("/crawl", handler.TriggerCrawl)
		adminGroup.POST("/index", handler.TriggerIndex)
		adminGroup.GET("/stats", handler.Stats)
	}
}

// Engine exposes the router, mainly for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Run serves HTTP until the context is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.engine,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	s.log.Info("http server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	return nil
}
