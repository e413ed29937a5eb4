// Bookrec - Reading Community Book Recommendation Service
// Copyright 2026 Bookrec Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package main is the entry point for the Bookrec server.
//
// Bookrec is a reading-community backend: it keeps a catalog of books
// imported from the Google Books API, records reviews, shelves and view
// history, and serves five kinds of recommendations (popularity,
// content similarity for a book and for a user's viewing history, a
// favourites network, and rating correlation).
//
// # Startup order
//
//  1. Configuration: Koanf v2 layering defaults, config.yaml, and
//     BOOKREC_* environment variables
//  2. Logging: zerolog initialized from the logging config
//  3. Catalog store: SQLite (WAL mode) with schema applied
//  4. Recommendation engine: algorithm suite plus in-memory result cache
//  5. Ingest (optional): rate-limited Google Books client behind a
//     circuit breaker
//  6. HTTP server: chi router with request IDs, logging, CORS, per-IP
//     rate limits and Prometheus metrics
//
// # Signal handling
//
// SIGINT and SIGTERM trigger a graceful shutdown: the listener stops
// accepting connections, in-flight requests get the configured drain
// window, then the store closes.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"bookrec/internal/api"
	"bookrec/internal/cache"
	"bookrec/internal/catalog"
	"bookrec/internal/config"
	"bookrec/internal/ingest"
	"bookrec/internal/logging"
	"bookrec/internal/recommend"
	"bookrec/internal/recommend/algorithms"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("db_path", cfg.Database.Path).
		Bool("ingest_enabled", cfg.Ingest.Enabled).
		Msg("Starting Bookrec")

	store, err := catalog.Open(cfg.Database.Path)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open catalog store")
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing catalog store")
		}
	}()

	resultCache := cache.New(cfg.Recommend.CacheTTL)
	engine := recommend.NewEngine(
		catalog.NewRecommendSource(store),
		algorithms.Suite{},
		resultCache,
		recommend.Config{
			CacheTTL:         cfg.Recommend.CacheTTL,
			PopularLimit:     cfg.Recommend.PopularLimit,
			SimilarLimit:     cfg.Recommend.SimilarLimit,
			HistoryLimit:     cfg.Recommend.HistoryLimit,
			NetworkLimit:     cfg.Recommend.NetworkLimit,
			CorrelationLimit: cfg.Recommend.CorrelationLimit,
			MinDocFreq:       cfg.Recommend.MinDocFreq,
			MinSeedRating:    cfg.Recommend.MinSeedRating,
			MaxSeeds:         cfg.Recommend.MaxSeeds,
			MinAverageRating: cfg.Recommend.MinAverageRating,
		},
	)

	var importer *ingest.Importer
	if cfg.Ingest.Enabled {
		client := ingest.NewClient(cfg.Ingest)
		importer = ingest.NewImporter(client, store, cfg.Ingest.Workers)
		logging.Info().Str("base_url", cfg.Ingest.BaseURL).
			Int("workers", cfg.Ingest.Workers).Msg("Catalog ingestion enabled")
	}

	handler := api.NewHandler(store, engine, importer)
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      api.NewRouter(cfg.Server, handler),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stop:
		logging.Info().Str("signal", sig.String()).Msg("Shutting down")
	case err := <-errCh:
		logging.Error().Err(err).Msg("HTTP server failed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logging.Error().Err(err).Msg("Graceful shutdown incomplete")
	}
	logging.Info().Msg("Server stopped")
}
