// Package config loads and validates application configuration.
//
// Configuration is resolved in order of precedence: environment variables
// (MINISEARCH_ prefix), an optional YAML config file, then built-in defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/jonesrussell/minisearch/internal/logger"
)

// envPrefix is the prefix for environment variable overrides,
// e.g. MINISEARCH_CRAWLER_USER_AGENT.
const envPrefix = "MINISEARCH"

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Storage  StorageConfig  `yaml:"storage" mapstructure:"storage"`
	Crawler  CrawlerConfig  `yaml:"crawler" mapstructure:"crawler"`
	Indexer  IndexerConfig  `yaml:"indexer" mapstructure:"indexer"`
	PageRank PageRankConfig `yaml:"pagerank" mapstructure:"pagerank"`
	Ranker   RankerConfig   `yaml:"ranker" mapstructure:"ranker"`
	Logging  logger.Config  `yaml:"logging" mapstructure:"logging"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         int           `yaml:"port" mapstructure:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	Debug        bool          `yaml:"debug" mapstructure:"debug"`
}

// StorageConfig holds persistence configuration.
type StorageConfig struct {
	// DatabasePath is the on-disk location of the SQLite database.
	// The value ":memory:" selects an in-memory database.
	DatabasePath string `yaml:"database_path" mapstructure:"database_path"`
}

// CrawlerConfig holds crawl session configuration.
type CrawlerConfig struct {
	SeedURLs []string `yaml:"seed_urls" mapstructure:"seed_urls"`
	// MaxDepth is reserved; it is parsed and validated but the current
	// worker loop does not enforce a depth cap.
	MaxDepth             int           `yaml:"max_depth" mapstructure:"max_depth"`
	MaxPages             int           `yaml:"max_pages" mapstructure:"max_pages"`
	UserAgent            string        `yaml:"user_agent" mapstructure:"user_agent"`
	RequestTimeout       time.Duration `yaml:"request_timeout" mapstructure:"request_timeout"`
	RetryCount           int           `yaml:"retry_count" mapstructure:"retry_count"`
	DelayBetweenRequests time.Duration `yaml:"delay_between_requests" mapstructure:"delay_between_requests"`
	WorkerCount          int           `yaml:"worker_count" mapstructure:"worker_count"`
}

// IndexerConfig holds inverted index configuration.
type IndexerConfig struct {
	UseStemming bool `yaml:"use_stemming" mapstructure:"use_stemming"`
}

// PageRankConfig holds PageRank computation configuration.
type PageRankConfig struct {
	DampingFactor float64 `yaml:"damping_factor" mapstructure:"damping_factor"`
	Iterations    int     `yaml:"iterations" mapstructure:"iterations"`
}

// RankerConfig holds query scoring configuration.
type RankerConfig struct {
	PageRankWeight float64 `yaml:"pagerank_weight" mapstructure:"pagerank_weight"`
	TFIDFWeight    float64 `yaml:"tfidf_weight" mapstructure:"tfidf_weight"`
}

// Load reads configuration from the given file (optional), the environment
// and defaults. An empty path falls back to config file discovery in the
// working directory.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// Config file is optional; defaults and env cover everything.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && path != "" {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults applies default values for every setting.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.debug", false)

	v.SetDefault("storage.database_path", "search_engine.db")

	v.SetDefault("crawler.seed_urls", []string{
		"https://www.python.org",
		"https://en.wikipedia.org/wiki/Web_crawler",
		"https://fastapi.tiangolo.com/",
		"https://docs.docker.com/",
	})
	v.SetDefault("crawler.max_depth", 2)
	v.SetDefault("crawler.max_pages", 100)
	v.SetDefault("crawler.user_agent", "MiniGoogleBot/1.0")
	v.SetDefault("crawler.request_timeout", 10*time.Second)
	v.SetDefault("crawler.retry_count", 3)
	v.SetDefault("crawler.delay_between_requests", time.Second)
	v.SetDefault("crawler.worker_count", 5)

	v.SetDefault("indexer.use_stemming", true)

	v.SetDefault("pagerank.damping_factor", 0.85)
	v.SetDefault("pagerank.iterations", 20)

	v.SetDefault("ranker.pagerank_weight", 10.0)
	v.SetDefault("ranker.tfidf_weight", 1.0)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.encoding", "console")
	v.SetDefault("logging.development", false)
}

// Validate checks the configuration for inconsistent or unusable values.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Storage.DatabasePath == "" {
		return errors.New("storage.database_path must not be empty")
	}
	if c.Crawler.MaxPages <= 0 {
		return errors.New("crawler.max_pages must be positive")
	}
	if c.Crawler.MaxDepth < 0 {
		return errors.New("crawler.max_depth must not be negative")
	}
	if c.Crawler.UserAgent == "" {
		return errors.New("crawler.user_agent must not be empty")
	}
	if c.Crawler.RetryCount < 1 {
		return errors.New("crawler.retry_count must be at least 1")
	}
	if c.Crawler.RequestTimeout <= 0 {
		return errors.New("crawler.request_timeout must be positive")
	}
	if c.Crawler.WorkerCount < 1 {
		return errors.New("crawler.worker_count must be at least 1")
	}
	if c.PageRank.DampingFactor <= 0 || c.PageRank.DampingFactor >= 1 {
		return fmt.Errorf("pagerank.damping_factor %v must be in (0, 1)", c.PageRank.DampingFactor)
	}
	if c.PageRank.Iterations < 1 {
		return errors.New("pagerank.iterations must be at least 1")
	}
	return nil
}
