// Bookrec - Reading Community Book Recommendation Service
// Copyright 2026 Bookrec Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package algorithms

import (
	"math"
	"sort"

	"bookrec/internal/recommend"
)

// RatingCorrelationConfig configures the rating-correlation recommender.
type RatingCorrelationConfig struct {
	// MinSeedRating is the lowest rating that makes one of the user's
	// own reviews a seed.
	MinSeedRating int

	// MaxSeeds caps how many of the user's top-rated books seed the
	// correlation walk.
	MaxSeeds int

	// MinAverageRating filters low-rated books out of the final list.
	MinAverageRating float64
}

// RatingCorrelation recommends books whose rating patterns correlate
// with the books a user rated highly.
//
// Ratings are pivoted into a user-by-title matrix; titles are the axis
// so that reissues sharing a title pool their ratings, and a duplicated
// title resolves to its first book in catalog order. For each seed (the
// user's own reviews rated at least MinSeedRating, best first, capped at
// MaxSeeds) the seed title's column is correlated against every other
// column using Pearson correlation over the users who rated both.
// Columns sharing fewer than two raters with the seed, or with zero
// variance on the shared raters, carry no signal and are skipped.
//
// Each correlated title accumulates
//
//	corr(seed, title) * (2*rating - 2.5)
//
// so a 5-star seed pushes correlated titles up by 7.5 times the
// correlation while low seeds push weakly. The top titles are then
// mapped back to books, dropping any whose catalog average rating falls
// below MinAverageRating, preserving rank order.
func RatingCorrelation(books []recommend.Book, ratings []recommend.Rating, userRatings []recommend.Rating, cfg RatingCorrelationConfig, limit int) []recommend.Scored {
	if len(books) == 0 || len(ratings) == 0 || len(userRatings) == 0 {
		return nil
	}
	if cfg.MinSeedRating <= 0 {
		cfg.MinSeedRating = 4
	}
	if cfg.MaxSeeds <= 0 {
		cfg.MaxSeeds = 20
	}

	// Title columns in catalog order; each title owned by its first book.
	titleCol := make(map[string]int)
	var colBooks []recommend.Book
	bookTitle := make(map[int64]string, len(books))
	for _, b := range books {
		bookTitle[b.ID] = b.Title
		if _, ok := titleCol[b.Title]; !ok {
			titleCol[b.Title] = len(colBooks)
			colBooks = append(colBooks, b)
		}
	}

	// Pivot ratings into per-column user->rating maps. A user rating
	// several books of the same title contributes their mean.
	columns := make([]map[int64]cell, len(colBooks))
	for i := range columns {
		columns[i] = make(map[int64]cell)
	}
	for _, r := range ratings {
		title, ok := bookTitle[r.BookID]
		if !ok {
			continue
		}
		col := titleCol[title]
		c := columns[col][r.UserID]
		c.sum += float64(r.Rating)
		c.count++
		columns[col][r.UserID] = c
	}

	// Seeds: the user's best reviews first, ties by review order.
	seeds := make([]recommend.Rating, 0, len(userRatings))
	for _, r := range userRatings {
		if r.Rating >= cfg.MinSeedRating {
			seeds = append(seeds, r)
		}
	}
	sort.SliceStable(seeds, func(i, j int) bool { return seeds[i].Rating > seeds[j].Rating })
	if len(seeds) > cfg.MaxSeeds {
		seeds = seeds[:cfg.MaxSeeds]
	}
	if len(seeds) == 0 {
		return nil
	}

	scores := make([]float64, len(colBooks))
	touched := make([]bool, len(colBooks))
	for _, seed := range seeds {
		title, ok := bookTitle[seed.BookID]
		if !ok {
			continue
		}
		seedCol := titleCol[title]
		weight := 2*float64(seed.Rating) - 2.5
		for col := range columns {
			corr, ok := pearsonPairwise(columns[seedCol], columns[col])
			if !ok {
				continue
			}
			scores[col] += corr * weight
			touched[col] = true
		}
	}

	var ranked []recommend.Scored
	for col, b := range colBooks {
		if touched[col] {
			ranked = append(ranked, recommend.Scored{Book: b, Score: scores[col]})
		}
	}
	sortScoredDesc(ranked)
	ranked = topScored(ranked, limit)

	// Quality floor applies after ranking so it trims, never reorders.
	filtered := ranked[:0]
	for _, s := range ranked {
		if s.Book.AverageRating >= cfg.MinAverageRating {
			filtered = append(filtered, s)
		}
	}
	return filtered
}

// cell accumulates one user's ratings on one title column; its value is
// the mean.
type cell struct {
	sum   float64
	count int
}

func (c cell) mean() float64 { return c.sum / float64(c.count) }

// pearsonPairwise computes Pearson correlation between two title columns
// over the users present in both. Fewer than two shared raters, or zero
// variance on either side, gives no defined correlation.
func pearsonPairwise(a, b map[int64]cell) (float64, bool) {
	var xs, ys []float64
	for userID, ca := range a {
		cb, ok := b[userID]
		if !ok {
			continue
		}
		xs = append(xs, ca.mean())
		ys = append(ys, cb.mean())
	}
	n := float64(len(xs))
	if n < 2 {
		return 0, false
	}

	var sumX, sumY float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
	}
	meanX, meanY := sumX/n, sumY/n

	var cov, varX, varY float64
	for i := range xs {
		dx, dy := xs[i]-meanX, ys[i]-meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return 0, false
	}
	return cov / math.Sqrt(varX*varY), true
}
