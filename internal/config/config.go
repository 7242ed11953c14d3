// Package config loads the process-wide, read-only settings object.
// Environment variables are the source of truth (spec.md §9); an optional
// YAML file seeds defaults that environment variables then override.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the single settings record passed by reference to every
// component at construction time.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Cache      CacheConfig      `yaml:"cache"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Ingestion  IngestionConfig  `yaml:"ingestion"`
	Search     SearchConfig     `yaml:"search"`
	Feed       FeedConfig       `yaml:"feed"`
	Reco       RecoConfig       `yaml:"reco"`
	Logging    LoggingConfig    `yaml:"logging"`
	CORS       CORSConfig       `yaml:"cors"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
}

type ServerConfig struct {
	Port        string `yaml:"port"`
	MetricsPort string `yaml:"metrics_port"`
}

type DatabaseConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Database        string        `yaml:"database"`
	SSLMode         string        `yaml:"ssl_mode"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

type CacheConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type EmbeddingConfig struct {
	Provider   string `yaml:"provider"` // "local" | "langchain"
	Dimension  int    `yaml:"dimension"`
	MaxRetries int    `yaml:"max_retries"`
}

type IngestionConfig struct {
	MaxIssuesPerRepo     int           `yaml:"max_issues_per_repo"`
	GathererConcurrency  int           `yaml:"gatherer_concurrency"`
	MaxInflightPublishes int           `yaml:"max_inflight_publishes"`
	PublishTimeout       time.Duration `yaml:"publish_timeout"`
	JanitorMinIssues     int           `yaml:"janitor_min_issues"`
	PopularityFloor      int           `yaml:"popularity_floor"`
}

type SearchConfig struct {
	CandidateLimit int           `yaml:"candidate_limit"`
	RRFK           int           `yaml:"rrf_k"`
	CacheTTL       time.Duration `yaml:"cache_ttl"`
	DefaultPageSize int          `yaml:"default_page_size"`
	MaxPageSize     int          `yaml:"max_page_size"`
}

type FeedConfig struct {
	DefaultPageSize int `yaml:"default_page_size"`
	MaxPageSize     int `yaml:"max_page_size"`
	WhyThisTopK     int `yaml:"why_this_top_k"`
}

type RecoConfig struct {
	FlushMaxSeconds   int           `yaml:"flush_max_seconds"`
	FlushBatchSize    int           `yaml:"flush_batch_size"`
	DedupTTL          time.Duration `yaml:"dedup_ttl"`
	BatchContextTTL   time.Duration `yaml:"batch_context_ttl"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// RateLimitConfig is the shared token-bucket shape from spec.md §5: a
// count of requests allowed per window, per (ip|flow_id) key.
type RateLimitConfig struct {
	RequestsPerWindow int           `yaml:"requests_per_window"`
	Window            time.Duration `yaml:"window"`
}

// DSN renders a libpq connection string for postgres.Open/NewPgxConnConfig.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// Defaults returns the config populated with the defaults named throughout
// spec.md (CANDIDATE_LIMIT=300, RRF_K=60, page_size=20/50, gatherer
// concurrency=10, MAX_INFLIGHT~1000, embedding dimension=768, ...).
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{Port: "8080", MetricsPort: "9090"},
		Database: DatabaseConfig{
			Host: "localhost", Port: 5432, User: "issuefeed", Database: "issuefeed",
			SSLMode: "disable", MaxOpenConns: 25, MaxIdleConns: 5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Cache: CacheConfig{Addr: "localhost:6379", DB: 0, TTL: 5 * time.Minute},
		Embedding: EmbeddingConfig{
			Provider: "local", Dimension: 768, MaxRetries: 3,
		},
		Ingestion: IngestionConfig{
			MaxIssuesPerRepo: 200, GathererConcurrency: 10,
			MaxInflightPublishes: 1000, PublishTimeout: 10 * time.Second,
			JanitorMinIssues: 1000, PopularityFloor: 50,
		},
		Search: SearchConfig{
			CandidateLimit: 300, RRFK: 60, CacheTTL: 5 * time.Minute,
			DefaultPageSize: 20, MaxPageSize: 50,
		},
		Feed: FeedConfig{DefaultPageSize: 20, MaxPageSize: 50, WhyThisTopK: 3},
		Reco: RecoConfig{
			FlushMaxSeconds: 60, FlushBatchSize: 1000,
			DedupTTL: 24 * time.Hour, BatchContextTTL: 30 * time.Minute,
		},
		Logging: LoggingConfig{Level: "info", Format: "json"},
		RateLimit: RateLimitConfig{
			RequestsPerWindow: 60, Window: time.Minute,
		},
	}
}

// Load reads path as YAML over the defaults, then applies environment
// variable overrides, then validates the result.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.loadFromEnv()

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromEnv builds a Config from defaults and environment variables only,
// with no YAML file: the path taken by cmd/worker, which has no config
// file mounted in most deployments.
func LoadFromEnv() (*Config, error) {
	cfg := Defaults()
	cfg.loadFromEnv()
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFromEnv() {
	setString(&c.Server.Port, "PORT")
	setString(&c.Server.MetricsPort, "METRICS_PORT")

	setString(&c.Database.Host, "DB_HOST")
	setInt(&c.Database.Port, "DB_PORT")
	setString(&c.Database.User, "DB_USER")
	setString(&c.Database.Password, "DB_PASSWORD")
	setString(&c.Database.Database, "DB_NAME")
	setString(&c.Database.SSLMode, "DB_SSL_MODE")

	setString(&c.Cache.Addr, "REDIS_ADDR")
	setString(&c.Cache.Password, "REDIS_PASSWORD")
	setInt(&c.Cache.DB, "REDIS_DB")

	setString(&c.Embedding.Provider, "EMBEDDING_PROVIDER")
	setInt(&c.Embedding.Dimension, "EMBEDDING_DIM")

	setInt(&c.Ingestion.MaxIssuesPerRepo, "MAX_ISSUES_PER_REPO")
	setInt(&c.Ingestion.GathererConcurrency, "GATHERER_CONCURRENCY")
	setInt(&c.Ingestion.MaxInflightPublishes, "MAX_INFLIGHT")
	setInt(&c.Ingestion.JanitorMinIssues, "JANITOR_MIN_ISSUES")

	setInt(&c.Reco.FlushMaxSeconds, "RECO_FLUSH_MAX_SECONDS")
	setInt(&c.Reco.FlushBatchSize, "RECO_EVENTS_FLUSH_BATCH_SIZE")

	setString(&c.Logging.Level, "LOG_LEVEL")
	setString(&c.Logging.Format, "LOG_FORMAT")

	setInt(&c.RateLimit.RequestsPerWindow, "RATE_LIMIT_REQUESTS_PER_WINDOW")
}

func setString(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}

func setInt(dst *int, env string) {
	if v := os.Getenv(env); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func validate(c *Config) error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Embedding.Dimension <= 0 {
		return fmt.Errorf("embedding dimension must be greater than 0")
	}
	switch c.Embedding.Provider {
	case "local", "langchain":
	default:
		return fmt.Errorf("unsupported embedding provider: %s", c.Embedding.Provider)
	}
	if c.Ingestion.GathererConcurrency <= 0 {
		return fmt.Errorf("gatherer concurrency must be greater than 0")
	}
	if c.Search.MaxPageSize <= 0 || c.Search.DefaultPageSize <= 0 {
		return fmt.Errorf("search page sizes must be greater than 0")
	}
	if c.Search.DefaultPageSize > c.Search.MaxPageSize {
		return fmt.Errorf("search default page size must not exceed max page size")
	}
	if c.Feed.DefaultPageSize > c.Feed.MaxPageSize {
		return fmt.Errorf("feed default page size must not exceed max page size")
	}
	for _, origin := range c.CORS.AllowedOrigins {
		if origin == "*" {
			return fmt.Errorf("wildcard CORS origin is not permitted")
		}
	}
	if c.RateLimit.RequestsPerWindow <= 0 || c.RateLimit.Window <= 0 {
		return fmt.Errorf("rate limit requests_per_window and window must be greater than 0")
	}
	return nil
}
