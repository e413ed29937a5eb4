// Bookrec - Reading Community Book Recommendation Service
// Copyright 2026 Bookrec Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package algorithms

import "bookrec/internal/recommend"

// Suite adapts the package's ranking functions to the engine's strategy
// interface. It is stateless; content models are fitted per call and
// the engine's result cache absorbs the cost of repeated fits.
type Suite struct{}

var _ recommend.Algorithms = Suite{}

// Popularity ranks the whole catalog.
func (Suite) Popularity(books []recommend.Book, limit int) []recommend.Scored {
	return Popularity(books, limit)
}

// SimilarToBook ranks books by content similarity to one book.
func (Suite) SimilarToBook(books []recommend.Book, bookID int64, minDocFreq, limit int) []recommend.Scored {
	m := NewContentModel(books, ContentConfig{MinDocFreq: minDocFreq})
	return m.SimilarToBook(bookID, limit)
}

// SimilarToHistory ranks books against a set of viewed books.
func (Suite) SimilarToHistory(books []recommend.Book, viewed []int64, minDocFreq, limit int) []recommend.Scored {
	m := NewContentModel(books, ContentConfig{MinDocFreq: minDocFreq})
	return m.SimilarToHistory(viewed, limit)
}

// FavouritesNetwork ranks books favoured by similar users.
func (Suite) FavouritesNetwork(books []recommend.Book, pairs []recommend.FavouritePair, userID int64, limit int) []recommend.Scored {
	return FavouritesNetwork(books, pairs, userID, limit)
}

// RatingCorrelation ranks books whose rating patterns correlate with
// the user's highly rated ones.
func (Suite) RatingCorrelation(books []recommend.Book, ratings, userRatings []recommend.Rating, minSeedRating, maxSeeds int, minAverageRating float64, limit int) []recommend.Scored {
	return RatingCorrelation(books, ratings, userRatings, RatingCorrelationConfig{
		MinSeedRating:    minSeedRating,
		MaxSeeds:         maxSeeds,
		MinAverageRating: minAverageRating,
	}, limit)
}
