// Bookrec - Reading Community Book Recommendation Service
// Copyright 2026 Bookrec Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists config file locations searched in order.
// The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/bookrec/config.yaml",
	"/etc/bookrec/config.yml",
}

// ConfigPathEnvVar overrides the config file path when set.
const ConfigPathEnvVar = "BOOKREC_CONFIG"

// envPrefix is the prefix for environment variable overrides.
const envPrefix = "BOOKREC_"

// envMappings maps environment variable names (without the prefix,
// lowercased) to koanf config paths. Explicit mapping avoids ambiguity
// between section separators and underscores inside key names.
var envMappings = map[string]string{
	"server_host":             "server.host",
	"server_port":             "server.port",
	"server_read_timeout":     "server.read_timeout",
	"server_write_timeout":    "server.write_timeout",
	"server_shutdown_timeout": "server.shutdown_timeout",
	"server_rate_limit":       "server.rate_limit",
	"server_cors_origins":     "server.cors_allowed_origins",

	"database_path": "database.path",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	"recommend_cache_ttl":          "recommend.cache_ttl",
	"recommend_popular_limit":      "recommend.popular_limit",
	"recommend_similar_limit":      "recommend.similar_limit",
	"recommend_history_limit":      "recommend.history_limit",
	"recommend_network_limit":      "recommend.network_limit",
	"recommend_correlation_limit":  "recommend.correlation_limit",
	"recommend_min_doc_freq":       "recommend.min_doc_freq",
	"recommend_min_seed_rating":    "recommend.min_seed_rating",
	"recommend_min_average_rating": "recommend.min_average_rating",

	"ingest_enabled":  "ingest.enabled",
	"ingest_base_url": "ingest.base_url",
	"ingest_workers":  "ingest.workers",
	"ingest_rate":     "ingest.rate_per_second",
	"ingest_timeout":  "ingest.timeout",
}

// Load builds the effective configuration: defaults, then the YAML file
// (if one exists), then environment overrides, then validation.
func Load() (*Config, error) {
	return LoadFrom(resolveConfigPath())
}

// LoadFrom loads configuration using the given config file path. An
// empty path skips the file layer.
func LoadFrom(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", configPath, err)
		}
	}

	envProvider := env.Provider(envPrefix, ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// resolveConfigPath returns the config file to load, or "" if none.
func resolveConfigPath() string {
	if path := os.Getenv(ConfigPathEnvVar); path != "" {
		return path
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// envTransformFunc maps an environment variable name to a koanf path.
// Unknown variables are dropped so unrelated BOOKREC_* variables cannot
// inject arbitrary keys.
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
	return envMappings[key]
}
