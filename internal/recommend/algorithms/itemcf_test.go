// Bookrec - Reading Community Book Recommendation Service
// Copyright 2026 Bookrec Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package algorithms

import (
	"testing"

	"bookrec/internal/recommend"
)

func ratingCfg() RatingCorrelationConfig {
	return RatingCorrelationConfig{MinSeedRating: 4, MaxSeeds: 20, MinAverageRating: 3.0}
}

// correlationFixture builds three titles where T1 and T2 move together
// across raters while T3 moves against them.
func correlationFixture() ([]recommend.Book, []recommend.Rating) {
	books := []recommend.Book{
		{ID: 1, Title: "T1", AverageRating: 4.0},
		{ID: 2, Title: "T2", AverageRating: 4.5},
		{ID: 3, Title: "T3", AverageRating: 3.5},
	}
	ratings := []recommend.Rating{
		{UserID: 101, BookID: 1, Rating: 5}, {UserID: 101, BookID: 2, Rating: 5}, {UserID: 101, BookID: 3, Rating: 1},
		{UserID: 102, BookID: 1, Rating: 4}, {UserID: 102, BookID: 2, Rating: 4}, {UserID: 102, BookID: 3, Rating: 2},
		{UserID: 103, BookID: 1, Rating: 1}, {UserID: 103, BookID: 2, Rating: 2}, {UserID: 103, BookID: 3, Rating: 5},
	}
	return books, ratings
}

func TestRatingCorrelationEmptyInputs(t *testing.T) {
	books, ratings := correlationFixture()
	user := []recommend.Rating{{UserID: 9, BookID: 1, Rating: 5}}
	if got := RatingCorrelation(nil, ratings, user, ratingCfg(), 20); got != nil {
		t.Errorf("no books: got %v", got)
	}
	if got := RatingCorrelation(books, nil, user, ratingCfg(), 20); got != nil {
		t.Errorf("no ratings: got %v", got)
	}
	if got := RatingCorrelation(books, ratings, nil, ratingCfg(), 20); got != nil {
		t.Errorf("no user ratings: got %v", got)
	}
}

func TestRatingCorrelationNoQualifyingSeeds(t *testing.T) {
	books, ratings := correlationFixture()
	user := []recommend.Rating{{UserID: 9, BookID: 1, Rating: 3}}
	if got := RatingCorrelation(books, ratings, user, ratingCfg(), 20); got != nil {
		t.Errorf("low-rated seeds should yield nothing, got %v", got)
	}
}

func TestRatingCorrelationSurfacesCorrelatedTitle(t *testing.T) {
	books, ratings := correlationFixture()
	user := []recommend.Rating{{UserID: 9, BookID: 1, Rating: 5}}
	got := RatingCorrelation(books, ratings, user, ratingCfg(), 20)
	if len(got) < 2 {
		t.Fatalf("got %v, want at least T1 and T2", got)
	}
	// The seed's own perfectly-correlated column leads, then T2 which
	// tracks it across raters. T3, anticorrelated, scores negative.
	if got[0].Book.Title != "T1" || got[1].Book.Title != "T2" {
		t.Errorf("order = %q, %q; want T1, T2", got[0].Book.Title, got[1].Book.Title)
	}
	if got[1].Score <= 0 {
		t.Errorf("correlated title score = %v, want positive", got[1].Score)
	}
	for _, s := range got {
		if s.Book.Title == "T3" && s.Score >= got[1].Score {
			t.Errorf("anticorrelated T3 score %v not below T2 %v", s.Score, got[1].Score)
		}
	}
}

func TestRatingCorrelationAverageRatingFloor(t *testing.T) {
	books, ratings := correlationFixture()
	books[2].AverageRating = 2.0 // T3 drops below the floor
	user := []recommend.Rating{{UserID: 9, BookID: 1, Rating: 5}}
	got := RatingCorrelation(books, ratings, user, ratingCfg(), 20)
	for _, s := range got {
		if s.Book.Title == "T3" {
			t.Errorf("book below average-rating floor recommended")
		}
	}
}

func TestRatingCorrelationSingleRaterNoSignal(t *testing.T) {
	// One book, one rating: no column pair has two shared raters.
	books := []recommend.Book{{ID: 1, Title: "Lone", AverageRating: 5}}
	ratings := []recommend.Rating{{UserID: 9, BookID: 1, Rating: 5}}
	user := ratings
	if got := RatingCorrelation(books, ratings, user, ratingCfg(), 20); got != nil {
		t.Errorf("single rater: got %v, want nil", got)
	}
}

func TestRatingCorrelationConstantColumnExcluded(t *testing.T) {
	// Every shared rater gave T2 the same value: zero variance, no
	// correlation, so T2 never accumulates a score.
	books := []recommend.Book{
		{ID: 1, Title: "T1", AverageRating: 4},
		{ID: 2, Title: "T2", AverageRating: 4},
	}
	ratings := []recommend.Rating{
		{UserID: 101, BookID: 1, Rating: 5}, {UserID: 101, BookID: 2, Rating: 3},
		{UserID: 102, BookID: 1, Rating: 1}, {UserID: 102, BookID: 2, Rating: 3},
	}
	user := []recommend.Rating{{UserID: 9, BookID: 1, Rating: 5}}
	got := RatingCorrelation(books, ratings, user, ratingCfg(), 20)
	for _, s := range got {
		if s.Book.Title == "T2" {
			t.Errorf("zero-variance column recommended")
		}
	}
}

func TestRatingCorrelationDuplicateTitlesCollapse(t *testing.T) {
	// Two editions share a title; the column maps to the first book in
	// catalog order.
	books := []recommend.Book{
		{ID: 1, Title: "Twice", AverageRating: 4},
		{ID: 2, Title: "Twice", AverageRating: 4},
		{ID: 3, Title: "Other", AverageRating: 4},
	}
	ratings := []recommend.Rating{
		{UserID: 101, BookID: 1, Rating: 5}, {UserID: 101, BookID: 3, Rating: 5},
		{UserID: 102, BookID: 2, Rating: 1}, {UserID: 102, BookID: 3, Rating: 1},
	}
	user := []recommend.Rating{{UserID: 9, BookID: 1, Rating: 5}}
	got := RatingCorrelation(books, ratings, user, ratingCfg(), 20)
	for _, s := range got {
		if s.Book.ID == 2 {
			t.Errorf("duplicate title resolved to book 2, want first book 1")
		}
	}
	// Ratings on both editions pooled into one column, giving the pair
	// two shared raters with Other.
	var sawOther bool
	for _, s := range got {
		if s.Book.Title == "Other" {
			sawOther = true
		}
	}
	if !sawOther {
		t.Errorf("pooled duplicate-title ratings produced no correlation with Other")
	}
}

func TestRatingCorrelationSeedCap(t *testing.T) {
	books, ratings := correlationFixture()
	cfg := ratingCfg()
	cfg.MaxSeeds = 1
	// Two seeds qualify; only the higher-rated first one may be used.
	user := []recommend.Rating{
		{UserID: 9, BookID: 3, Rating: 4},
		{UserID: 9, BookID: 1, Rating: 5},
	}
	got := RatingCorrelation(books, ratings, user, cfg, 20)
	if len(got) == 0 {
		t.Fatal("no results")
	}
	// With only the T1 seed active, T1's own column leads.
	if got[0].Book.Title != "T1" {
		t.Errorf("top = %q, want T1", got[0].Book.Title)
	}
}
