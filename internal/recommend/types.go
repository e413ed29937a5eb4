// Bookrec - Reading Community Book Recommendation Service
// Copyright 2026 Bookrec Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package recommend computes book recommendations for the reading
// community: catalog-wide popularity, content similarity over book
// descriptions, and two collaborative filters built from favourites and
// ratings. The engine is read-only over a Source snapshot and caches
// results briefly so repeated requests do not recompute.
package recommend

import "context"

// Book is the recommender's view of a catalog entry.
type Book struct {
	ID             int64
	ISBN13         string
	Title          string
	Authors        []string
	Categories     []string
	Description    string
	Thumbnail      string
	SelfLink       string
	AverageRating  float64
	RatingsCount   int
	FavouriteCount int
}

// Rating is one user's rating of one book.
type Rating struct {
	UserID int64
	BookID int64
	Rating int
}

// FavouritePair is one (user, book) favourite edge.
type FavouritePair struct {
	UserID int64
	BookID int64
}

// Scored pairs a book with the raw score an algorithm assigned it.
type Scored struct {
	Book  Book
	Score float64
}

// Recommendation is a single ranked result. URL points at the book's
// canonical catalog link.
type Recommendation struct {
	BookID    int64   `json:"book_id"`
	Title     string  `json:"title"`
	Thumbnail string  `json:"thumbnail,omitempty"`
	URL       string  `json:"url,omitempty"`
	Score     float64 `json:"score"`
}

// Source supplies the catalog snapshots the engine computes over. All
// slices are point-in-time copies; the engine never mutates them.
type Source interface {
	// Books returns the full corpus in a stable order.
	Books(ctx context.Context) ([]Book, error)

	// Ratings returns every rating in insertion order.
	Ratings(ctx context.Context) ([]Rating, error)

	// UserRatings returns one user's ratings in insertion order.
	UserRatings(ctx context.Context, userID int64) ([]Rating, error)

	// FavouritePairs returns every favourite edge ordered by user then
	// book.
	FavouritePairs(ctx context.Context) ([]FavouritePair, error)

	// ViewHistory returns the IDs of books a user viewed, most recent
	// first.
	ViewHistory(ctx context.Context, userID int64) ([]int64, error)
}
