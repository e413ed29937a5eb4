// Bookrec - Reading Community Book Recommendation Service
// Copyright 2026 Bookrec Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads and validates bookrec configuration.
//
// Configuration is resolved in three layers, each overriding the last:
// struct defaults, an optional YAML file, and environment variables with
// the BOOKREC_ prefix (BOOKREC_SERVER_PORT=8080 sets server.port).
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration for the service.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Logging   LoggingConfig   `koanf:"logging"`
	Recommend RecommendConfig `koanf:"recommend"`
	Ingest    IngestConfig    `koanf:"ingest"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// RateLimit is the per-IP request budget per minute. Zero disables
	// rate limiting.
	RateLimit int `koanf:"rate_limit"`

	// CORSAllowedOrigins lists origins allowed by the CORS middleware.
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`
}

// DatabaseConfig holds SQLite settings.
type DatabaseConfig struct {
	// Path is the SQLite database file path. ":memory:" is accepted for
	// tests.
	Path string `koanf:"path"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// RecommendConfig holds recommendation engine settings.
type RecommendConfig struct {
	// CacheTTL is how long computed recommendation lists are memoized.
	CacheTTL time.Duration `koanf:"cache_ttl"`

	// PopularLimit caps the popularity ranking output.
	PopularLimit int `koanf:"popular_limit"`

	// SimilarLimit caps "similar to this book" output.
	SimilarLimit int `koanf:"similar_limit"`

	// HistoryLimit caps view-history based output.
	HistoryLimit int `koanf:"history_limit"`

	// NetworkLimit caps favourites-network output.
	NetworkLimit int `koanf:"network_limit"`

	// CorrelationLimit caps rating-correlation output.
	CorrelationLimit int `koanf:"correlation_limit"`

	// MinDocFreq drops vectorizer terms present in fewer documents.
	MinDocFreq int `koanf:"min_doc_freq"`

	// MinSeedRating is the minimum rating for a review to seed the
	// rating-correlation strategy.
	MinSeedRating int `koanf:"min_seed_rating"`

	// MaxSeeds caps how many of a user's top ratings seed the
	// rating-correlation strategy.
	MaxSeeds int `koanf:"max_seeds"`

	// MinAverageRating filters rating-correlation results.
	MinAverageRating float64 `koanf:"min_average_rating"`
}

// IngestConfig holds upstream catalog ingestion settings.
type IngestConfig struct {
	Enabled bool   `koanf:"enabled"`
	BaseURL string `koanf:"base_url"`

	// Workers is the fixed size of the detail-fetch worker pool.
	Workers int `koanf:"workers"`

	// RatePerSecond limits outbound requests to the catalog API.
	RatePerSecond float64 `koanf:"rate_per_second"`

	Timeout time.Duration `koanf:"timeout"`
}

// Default returns a Config with all default values applied.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:               "0.0.0.0",
			Port:               8080,
			ReadTimeout:        15 * time.Second,
			WriteTimeout:       30 * time.Second,
			ShutdownTimeout:    10 * time.Second,
			RateLimit:          300,
			CORSAllowedOrigins: []string{"*"},
		},
		Database: DatabaseConfig{
			Path: "bookrec.db",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Recommend: RecommendConfig{
			CacheTTL:         30 * time.Second,
			PopularLimit:     20,
			SimilarLimit:     12,
			HistoryLimit:     20,
			NetworkLimit:     20,
			CorrelationLimit: 20,
			MinDocFreq:       3,
			MinSeedRating:    4,
			MaxSeeds:         20,
			MinAverageRating: 3.0,
		},
		Ingest: IngestConfig{
			Enabled:       true,
			BaseURL:       "https://www.googleapis.com/books/v1",
			Workers:       4,
			RatePerSecond: 2,
			Timeout:       20 * time.Second,
		},
	}
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateDatabase,
		c.validateRecommend,
		c.validateIngest,
	}

	for _, validate := range validators {
		if err := validate(); err != nil {
			return err
		}
	}

	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range 1-65535", c.Server.Port)
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("server.rate_limit must not be negative")
	}
	return nil
}

func (c *Config) validateDatabase() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path must not be empty")
	}
	return nil
}

func (c *Config) validateRecommend() error {
	r := c.Recommend
	if r.CacheTTL <= 0 {
		return fmt.Errorf("recommend.cache_ttl must be positive")
	}
	for name, limit := range map[string]int{
		"popular_limit":     r.PopularLimit,
		"similar_limit":     r.SimilarLimit,
		"history_limit":     r.HistoryLimit,
		"network_limit":     r.NetworkLimit,
		"correlation_limit": r.CorrelationLimit,
	} {
		if limit <= 0 {
			return fmt.Errorf("recommend.%s must be positive", name)
		}
	}
	if r.MinDocFreq < 1 {
		return fmt.Errorf("recommend.min_doc_freq must be at least 1")
	}
	if r.MinSeedRating < 0 || r.MinSeedRating > 5 {
		return fmt.Errorf("recommend.min_seed_rating %d out of range 0-5", r.MinSeedRating)
	}
	if r.MaxSeeds < 1 {
		return fmt.Errorf("recommend.max_seeds must be at least 1")
	}
	return nil
}

func (c *Config) validateIngest() error {
	if !c.Ingest.Enabled {
		return nil
	}
	if c.Ingest.BaseURL == "" {
		return fmt.Errorf("ingest.base_url must not be empty when ingest is enabled")
	}
	if c.Ingest.Workers < 1 {
		return fmt.Errorf("ingest.workers must be at least 1")
	}
	if c.Ingest.RatePerSecond <= 0 {
		return fmt.Errorf("ingest.rate_per_second must be positive")
	}
	return nil
}
