// Bookrec - Reading Community Book Recommendation Service
// Copyright 2026 Bookrec Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package ingest

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"bookrec/internal/catalog"
	"bookrec/internal/logging"
	"bookrec/internal/metrics"
)

// Upserter is the slice of the catalog store the importer needs.
type Upserter interface {
	UpsertBook(ctx context.Context, b catalog.Book) (int64, error)
}

// Stats summarizes one import run.
type Stats struct {
	Fetched  int64 `json:"fetched"`
	Imported int64 `json:"imported"`
	Skipped  int64 `json:"skipped"`
	Failed   int64 `json:"failed"`
}

// Importer pages search results out of the volumes API and writes the
// mapped books through a fixed-size worker pool.
type Importer struct {
	client  *Client
	store   Upserter
	workers int
	log     zerolog.Logger
}

// NewImporter builds an importer with the given pool size.
func NewImporter(client *Client, store Upserter, workers int) *Importer {
	if workers <= 0 {
		workers = 4
	}
	return &Importer{
		client:  client,
		store:   store,
		workers: workers,
		log:     logging.Component("ingest"),
	}
}

// Run imports every volume the API returns for each query. The producer
// pages through results while workers map and upsert concurrently; a
// fetch error stops paging for that query but already-queued volumes
// still land.
func (imp *Importer) Run(ctx context.Context, queries []string) (Stats, error) {
	start := time.Now()
	var stats Stats
	volumes := make(chan Volume, imp.workers*2)

	var wg sync.WaitGroup
	for i := 0; i < imp.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			imp.worker(ctx, volumes, &stats)
		}()
	}

	var fetchErr error
	for _, query := range queries {
		if err := imp.producePages(ctx, query, volumes, &stats); err != nil {
			imp.log.Error().Err(err).Str("query", query).Msg("Import paging aborted")
			if fetchErr == nil {
				fetchErr = err
			}
		}
	}
	close(volumes)
	wg.Wait()

	metrics.IngestDuration.Observe(time.Since(start).Seconds())
	imp.log.Info().Int64("fetched", stats.Fetched).Int64("imported", stats.Imported).
		Int64("skipped", stats.Skipped).Int64("failed", stats.Failed).
		Dur("duration", time.Since(start)).Msg("Import run finished")
	return stats, fetchErr
}

func (imp *Importer) producePages(ctx context.Context, query string, out chan<- Volume, stats *Stats) error {
	// The API serves short pages mid-stream, so the next startIndex
	// follows what actually arrived rather than the page size.
	for startIndex := 0; ; {
		page, err := imp.client.Search(ctx, query, startIndex, maxPageSize)
		if err != nil {
			return err
		}
		if len(page.Items) == 0 {
			return nil
		}
		for _, v := range page.Items {
			atomic.AddInt64(&stats.Fetched, 1)
			select {
			case out <- v:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		startIndex += len(page.Items)
		if startIndex >= page.TotalItems {
			return nil
		}
	}
}

func (imp *Importer) worker(ctx context.Context, volumes <-chan Volume, stats *Stats) {
	for v := range volumes {
		book, err := mapVolume(v)
		if err != nil {
			atomic.AddInt64(&stats.Skipped, 1)
			metrics.IngestErrors.WithLabelValues("map").Inc()
			continue
		}
		if _, err := imp.store.UpsertBook(ctx, book); err != nil {
			atomic.AddInt64(&stats.Failed, 1)
			metrics.IngestErrors.WithLabelValues("store").Inc()
			imp.log.Warn().Err(err).Str("isbn13", book.ISBN13).Msg("Volume rejected by store")
			continue
		}
		atomic.AddInt64(&stats.Imported, 1)
		metrics.IngestVolumesProcessed.Inc()
	}
}
