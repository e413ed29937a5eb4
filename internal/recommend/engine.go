// Bookrec - Reading Community Book Recommendation Service
// Copyright 2026 Bookrec Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package recommend

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"bookrec/internal/cache"
	"bookrec/internal/logging"
	"bookrec/internal/metrics"
)

// Cache key prefixes, one per recommendation kind.
const (
	keyPopular     = "books-based-on-ratings"
	keySimilar     = "content-based-recommendations"
	keyHistory     = "books-based-on-viewings"
	keyFavourites  = "other-users-favourite-books"
	keyCorrelation = "books-rating-correlation"
)

// Algorithms is the ranking strategy set the engine delegates to. It is
// implemented by the algorithms package and injected at construction so
// the engine stays testable with stub rankers.
type Algorithms interface {
	// Popularity ranks the whole catalog.
	Popularity(books []Book, limit int) []Scored

	// SimilarToBook ranks books by content similarity to one book.
	SimilarToBook(books []Book, bookID int64, minDocFreq, limit int) []Scored

	// SimilarToHistory ranks books against a set of viewed books.
	SimilarToHistory(books []Book, viewed []int64, minDocFreq, limit int) []Scored

	// FavouritesNetwork ranks books favoured by similar users.
	FavouritesNetwork(books []Book, pairs []FavouritePair, userID int64, limit int) []Scored

	// RatingCorrelation ranks books whose ratings correlate with the
	// user's highly rated ones.
	RatingCorrelation(books []Book, ratings, userRatings []Rating, minSeedRating, maxSeeds int, minAverageRating float64, limit int) []Scored
}

// Config tunes the engine's limits and thresholds.
type Config struct {
	CacheTTL         time.Duration
	PopularLimit     int
	SimilarLimit     int
	HistoryLimit     int
	NetworkLimit     int
	CorrelationLimit int
	MinDocFreq       int
	MinSeedRating    int
	MaxSeeds         int
	MinAverageRating float64
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
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
	}
}

func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if c.CacheTTL <= 0 {
		c.CacheTTL = d.CacheTTL
	}
	if c.PopularLimit <= 0 {
		c.PopularLimit = d.PopularLimit
	}
	if c.SimilarLimit <= 0 {
		c.SimilarLimit = d.SimilarLimit
	}
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = d.HistoryLimit
	}
	if c.NetworkLimit <= 0 {
		c.NetworkLimit = d.NetworkLimit
	}
	if c.CorrelationLimit <= 0 {
		c.CorrelationLimit = d.CorrelationLimit
	}
	if c.MinDocFreq <= 0 {
		c.MinDocFreq = d.MinDocFreq
	}
	if c.MinSeedRating <= 0 {
		c.MinSeedRating = d.MinSeedRating
	}
	if c.MaxSeeds <= 0 {
		c.MaxSeeds = d.MaxSeeds
	}
	if c.MinAverageRating <= 0 {
		c.MinAverageRating = d.MinAverageRating
	}
}

// Engine serves the five recommendation kinds over a Source, caching
// each result briefly so bursts of identical requests compute once.
type Engine struct {
	source Source
	algos  Algorithms
	cache  cache.Cacher
	cfg    Config
	log    zerolog.Logger
}

// NewEngine builds an engine. The cache is required; pass cache.New
// with the configured TTL.
func NewEngine(source Source, algos Algorithms, cacher cache.Cacher, cfg Config) *Engine {
	cfg.applyDefaults()
	return &Engine{
		source: source,
		algos:  algos,
		cache:  cacher,
		cfg:    cfg,
		log:    logging.Component("recommend"),
	}
}

// decorate converts scored books into client-facing recommendations.
func decorate(scored []Scored) []Recommendation {
	recs := make([]Recommendation, len(scored))
	for i, s := range scored {
		recs[i] = Recommendation{
			BookID:    s.Book.ID,
			Title:     s.Book.Title,
			Thumbnail: s.Book.Thumbnail,
			URL:       s.Book.SelfLink,
			Score:     s.Score,
		}
	}
	return recs
}

// cached runs compute under the given cache key, recording cache and
// timing metrics per recommendation kind.
func (e *Engine) cached(kind, key string, compute func() ([]Recommendation, error)) ([]Recommendation, error) {
	if hit, ok := e.cache.Get(key); ok {
		if recs, ok := hit.([]Recommendation); ok {
			metrics.RecordCacheLookup(kind, true)
			return recs, nil
		}
	}
	metrics.RecordCacheLookup(kind, false)

	start := time.Now()
	recs, err := compute()
	if err != nil {
		return nil, err
	}
	duration := time.Since(start)
	metrics.RecordRecommendation(kind, duration, len(recs))
	e.log.Debug().Str("kind", kind).Int("results", len(recs)).
		Dur("duration", duration).Msg("Recommendations computed")

	e.cache.SetWithTTL(key, recs, e.cfg.CacheTTL)
	return recs, nil
}

// Popular returns the catalog-wide popularity ranking.
func (e *Engine) Popular(ctx context.Context) ([]Recommendation, error) {
	return e.cached("popular", keyPopular, func() ([]Recommendation, error) {
		books, err := e.source.Books(ctx)
		if err != nil {
			return nil, fmt.Errorf("load books: %w", err)
		}
		return decorate(e.algos.Popularity(books, e.cfg.PopularLimit)), nil
	})
}

// SimilarToBook returns books similar in content to the given book.
func (e *Engine) SimilarToBook(ctx context.Context, bookID int64) ([]Recommendation, error) {
	key := fmt.Sprintf("%s-%d", keySimilar, bookID)
	return e.cached("similar", key, func() ([]Recommendation, error) {
		books, err := e.source.Books(ctx)
		if err != nil {
			return nil, fmt.Errorf("load books: %w", err)
		}
		scored := e.algos.SimilarToBook(books, bookID, e.cfg.MinDocFreq, e.cfg.SimilarLimit)
		return decorate(scored), nil
	})
}

// FromHistory returns books similar to what the user recently viewed.
func (e *Engine) FromHistory(ctx context.Context, userID int64) ([]Recommendation, error) {
	key := fmt.Sprintf("%s-%d", keyHistory, userID)
	return e.cached("history", key, func() ([]Recommendation, error) {
		books, err := e.source.Books(ctx)
		if err != nil {
			return nil, fmt.Errorf("load books: %w", err)
		}
		viewed, err := e.source.ViewHistory(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("load view history: %w", err)
		}
		scored := e.algos.SimilarToHistory(books, viewed, e.cfg.MinDocFreq, e.cfg.HistoryLimit)
		return decorate(scored), nil
	})
}

// FromFavourites returns books favoured by users with similar taste.
func (e *Engine) FromFavourites(ctx context.Context, userID int64) ([]Recommendation, error) {
	key := fmt.Sprintf("%s-%d", keyFavourites, userID)
	return e.cached("favourites", key, func() ([]Recommendation, error) {
		books, err := e.source.Books(ctx)
		if err != nil {
			return nil, fmt.Errorf("load books: %w", err)
		}
		pairs, err := e.source.FavouritePairs(ctx)
		if err != nil {
			return nil, fmt.Errorf("load favourite pairs: %w", err)
		}
		scored := e.algos.FavouritesNetwork(books, pairs, userID, e.cfg.NetworkLimit)
		return decorate(scored), nil
	})
}

// FromRatings returns books whose rating patterns correlate with the
// user's highly rated books.
func (e *Engine) FromRatings(ctx context.Context, userID int64) ([]Recommendation, error) {
	key := fmt.Sprintf("%s-%d", keyCorrelation, userID)
	return e.cached("correlation", key, func() ([]Recommendation, error) {
		books, err := e.source.Books(ctx)
		if err != nil {
			return nil, fmt.Errorf("load books: %w", err)
		}
		ratings, err := e.source.Ratings(ctx)
		if err != nil {
			return nil, fmt.Errorf("load ratings: %w", err)
		}
		userRatings, err := e.source.UserRatings(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("load user ratings: %w", err)
		}
		scored := e.algos.RatingCorrelation(books, ratings, userRatings,
			e.cfg.MinSeedRating, e.cfg.MaxSeeds, e.cfg.MinAverageRating, e.cfg.CorrelationLimit)
		return decorate(scored), nil
	})
}

// Invalidate clears all cached recommendation results. Call after bulk
// catalog changes so clients see fresh rankings immediately.
func (e *Engine) Invalidate() {
	e.cache.Clear()
}
