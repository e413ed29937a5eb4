// Bookrec - Reading Community Book Recommendation Service
// Copyright 2026 Bookrec Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package catalog

import (
	"context"

	"bookrec/internal/recommend"
)

// RecommendSource adapts the store to the recommendation engine's data
// interface.
type RecommendSource struct {
	store *Store
}

// NewRecommendSource wraps a store for the engine.
func NewRecommendSource(store *Store) *RecommendSource {
	return &RecommendSource{store: store}
}

var _ recommend.Source = (*RecommendSource)(nil)

func toRecommendBook(b Book) recommend.Book {
	return recommend.Book{
		ID:             b.ID,
		ISBN13:         b.ISBN13,
		Title:          b.Title,
		Authors:        b.Authors,
		Categories:     b.Categories,
		Description:    b.Description,
		Thumbnail:      b.Thumbnail,
		SelfLink:       b.SelfLink,
		AverageRating:  b.AverageRating,
		RatingsCount:   b.RatingsCount,
		FavouriteCount: b.FavouriteCount,
	}
}

// Books returns the corpus ordered by book ID.
func (p *RecommendSource) Books(ctx context.Context) ([]recommend.Book, error) {
	books, err := p.store.ListBooks(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]recommend.Book, len(books))
	for i, b := range books {
		out[i] = toRecommendBook(b)
	}
	return out, nil
}

func toRecommendRatings(reviews []Review) []recommend.Rating {
	out := make([]recommend.Rating, len(reviews))
	for i, r := range reviews {
		out[i] = recommend.Rating{UserID: r.UserID, BookID: r.BookID, Rating: r.Rating}
	}
	return out
}

// Ratings returns every review's rating in insertion order.
func (p *RecommendSource) Ratings(ctx context.Context) ([]recommend.Rating, error) {
	reviews, err := p.store.ListReviews(ctx)
	if err != nil {
		return nil, err
	}
	return toRecommendRatings(reviews), nil
}

// UserRatings returns one user's ratings in insertion order.
func (p *RecommendSource) UserRatings(ctx context.Context, userID int64) ([]recommend.Rating, error) {
	reviews, err := p.store.ListReviewsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toRecommendRatings(reviews), nil
}

// FavouritePairs returns every favourite edge ordered by user then book.
func (p *RecommendSource) FavouritePairs(ctx context.Context) ([]recommend.FavouritePair, error) {
	pairs, err := p.store.ListFavouritePairs(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]recommend.FavouritePair, len(pairs))
	for i, fp := range pairs {
		out[i] = recommend.FavouritePair{UserID: fp.UserID, BookID: fp.BookID}
	}
	return out, nil
}

// ViewHistory returns the IDs of books a user viewed, most recent first.
func (p *RecommendSource) ViewHistory(ctx context.Context, userID int64) ([]int64, error) {
	return p.store.ViewHistory(ctx, userID)
}
