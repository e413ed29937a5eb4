// Bookrec - Reading Community Book Recommendation Service
// Copyright 2026 Bookrec Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package algorithms

import "bookrec/internal/recommend"

// ratingQuantile selects the minimum-votes threshold m: a book must
// out-vote roughly the bottom 70% of the catalog before its own average
// counts for much.
const ratingQuantile = 0.70

// Popularity ranks the whole catalog by a blend of Bayesian weighted
// rating and favourite count.
//
// The weighted rating follows the IMDb formula:
//
//	W = (R*v + C*m) / (v + m)
//
// where R is the book's average rating, v its ratings count, C the mean
// average rating across the catalog, and m the 70th percentile of
// ratings counts. Books with v+m == 0 score 0. W and the favourite
// counts are then min-max normalized and averaged:
//
//	score = 0.5*norm(W) + 0.5*norm(favourites)
//
// Ties keep corpus order. Returns at most limit books.
func Popularity(books []recommend.Book, limit int) []recommend.Scored {
	if len(books) == 0 {
		return nil
	}

	counts := make([]float64, len(books))
	var ratingSum float64
	for i, b := range books {
		counts[i] = float64(b.RatingsCount)
		ratingSum += b.AverageRating
	}
	m := quantile(counts, ratingQuantile)
	c := ratingSum / float64(len(books))

	weighted := make([]float64, len(books))
	favourites := make([]float64, len(books))
	for i, b := range books {
		v := float64(b.RatingsCount)
		if v+m > 0 {
			weighted[i] = (b.AverageRating*v + c*m) / (v + m)
		}
		favourites[i] = float64(b.FavouriteCount)
	}

	normW := minMaxNormalize(weighted)
	normF := minMaxNormalize(favourites)

	scored := make([]recommend.Scored, len(books))
	for i, b := range books {
		scored[i] = recommend.Scored{Book: b, Score: 0.5*normW[i] + 0.5*normF[i]}
	}
	sortScoredDesc(scored)
	return topScored(scored, limit)
}
