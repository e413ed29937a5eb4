// Bookrec - Reading Community Book Recommendation Service
// Copyright 2026 Bookrec Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package catalog owns the book catalog data model and its SQLite store:
// books, reviews, shelf membership, and per-session view history.
//
// The rating aggregate on a book (average_rating, ratings_count) is kept
// equal to the mean and count of its live review rows; every review
// mutation and the aggregate recompute run in one transaction.
package catalog

import (
	"errors"
	"time"
)

// Sentinel errors returned by the store.
var (
	ErrBookNotFound   = errors.New("catalog: book not found")
	ErrReviewNotFound = errors.New("catalog: review not found")
	ErrDuplicateISBN  = errors.New("catalog: isbn13 already exists")
	ErrReviewExists   = errors.New("catalog: user already reviewed this book")
)

// Book is a catalog entry. FavouriteCount is derived from shelf
// membership and populated by list queries; it is not a stored column.
type Book struct {
	ID            int64      `json:"id"`
	ISBN13        string     `json:"isbn13"`
	Title         string     `json:"title"`
	Authors       []string   `json:"authors"`
	Publisher     string     `json:"publisher,omitempty"`
	PublishedDate *time.Time `json:"published_date,omitempty"`

	// Description may be empty; recommendation code treats a missing
	// description as the empty string, never as a null.
	Description string `json:"description,omitempty"`

	Categories []string `json:"categories"`
	Thumbnail  string   `json:"thumbnail,omitempty"`
	SelfLink   string   `json:"self_link,omitempty"`

	AverageRating  float64 `json:"average_rating"`
	RatingsCount   int     `json:"ratings_count"`
	FavouriteCount int     `json:"favourite_count"`
}

// Review is one user's rating and comment for a book. A (user, book)
// pair has at most one review.
type Review struct {
	ID         int64     `json:"id"`
	BookID     int64     `json:"book_id"`
	UserID     int64     `json:"user_id"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at"`
	Edited     bool      `json:"edited"`
}

// FavouritePair is one edge of the user-book favourites relation.
type FavouritePair struct {
	UserID int64
	BookID int64
}
