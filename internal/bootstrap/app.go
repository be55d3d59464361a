// Package bootstrap wires the application components together for the CLI
// commands and the HTTP server.
package bootstrap

import (
	"fmt"

	"github.com/jonesrussell/minisearch/internal/admin"
	"github.com/jonesrussell/minisearch/internal/config"
	"github.com/jonesrussell/minisearch/internal/crawler"
	"github.com/jonesrussell/minisearch/internal/indexer"
	"github.com/jonesrussell/minisearch/internal/logger"
	"github.com/jonesrussell/minisearch/internal/metrics"
	"github.com/jonesrussell/minisearch/internal/pagerank"
	"github.com/jonesrussell/minisearch/internal/ranker"
	"github.com/jonesrussell/minisearch/internal/storage"
	"github.com/jonesrussell/minisearch/internal/textproc"
)

// App holds the fully wired application. The Store is the only component
// owning an external resource; Close releases it.
type App struct {
	Config    *config.Config
	Log       *logger.Logger
	Store     *storage.Store
	Metrics   *metrics.Metrics
	Processor *textproc.Processor
	Ranker    *ranker.Ranker
	Rebuilder *admin.Rebuilder
	Crawls    *crawler.Manager
}

// New loads configuration and constructs every component. The store is an
// explicit handle passed to each constructor; nothing here is a singleton.
func New(cfgFile string, debug bool) (*App, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	logCfg := cfg.Logging
	if debug {
		logCfg.Level = "debug"
		logCfg.Development = true
	}

	log, err := logger.New(logCfg)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	store, err := storage.Open(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, err
	}

	m := metrics.New()
	proc := textproc.New(cfg.Indexer.UseStemming)

	ix := indexer.New(store, proc, log)
	pr := pagerank.New(store, pagerank.Config{
		DampingFactor: cfg.PageRank.DampingFactor,
		Iterations:    cfg.PageRank.Iterations,
	}, log)

	return &App{
		Config:    cfg,
		Log:       log,
		Store:     store,
		Metrics:   m,
		Processor: proc,
		Ranker: ranker.New(store, proc, ranker.Config{
			PageRankWeight: cfg.Ranker.PageRankWeight,
			TFIDFWeight:    cfg.Ranker.TFIDFWeight,
		}, log),
		Rebuilder: admin.NewRebuilder(ix, pr, log),
		Crawls:    crawler.NewManager(CrawlerConfig(cfg), store, log, m),
	}, nil
}

// CrawlerConfig maps the loaded configuration onto a crawl session config.
func CrawlerConfig(cfg *config.Config) crawler.Config {
	return crawler.Config{
		SeedURLs:             cfg.Crawler.SeedURLs,
		MaxPages:             cfg.Crawler.MaxPages,
		WorkerCount:          cfg.Crawler.WorkerCount,
		UserAgent:            cfg.Crawler.UserAgent,
		RequestTimeout:       cfg.Crawler.RequestTimeout,
		RetryCount:           cfg.Crawler.RetryCount,
		DelayBetweenRequests: cfg.Crawler.DelayBetweenRequests,
	}
}

// Close releases the application's resources.
func (a *App) Close() {
	if a.Store != nil {
		_ = a.Store.Close()
	}
	if a.Log != nil {
		_ = a.Log.Sync()
	}
}
