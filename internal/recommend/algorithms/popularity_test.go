// Bookrec - Reading Community Book Recommendation Service
// Copyright 2026 Bookrec Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package algorithms

import (
	"testing"

	"bookrec/internal/recommend"
)

func TestPopularityEmptyCorpus(t *testing.T) {
	if got := Popularity(nil, 20); got != nil {
		t.Errorf("Popularity(nil) = %v, want nil", got)
	}
}

func TestPopularityRanksHighlyRatedAndFavoured(t *testing.T) {
	books := []recommend.Book{
		{ID: 1, Title: "Obscure", AverageRating: 5.0, RatingsCount: 1, FavouriteCount: 0},
		{ID: 2, Title: "Beloved", AverageRating: 4.6, RatingsCount: 900, FavouriteCount: 50},
		{ID: 3, Title: "Middling", AverageRating: 3.0, RatingsCount: 400, FavouriteCount: 5},
		{ID: 4, Title: "Panned", AverageRating: 1.5, RatingsCount: 800, FavouriteCount: 0},
	}
	got := Popularity(books, 20)
	if len(got) != 4 {
		t.Fatalf("got %d results, want 4", len(got))
	}
	if got[0].Book.ID != 2 {
		t.Errorf("top book = %d, want 2 (many good ratings and favourites)", got[0].Book.ID)
	}
	// A single perfect rating must not beat a well-attested book: the
	// vote threshold pulls it toward the catalog mean.
	if got[len(got)-1].Book.ID == 2 {
		t.Errorf("well-attested book ranked last")
	}
	for i := 1; i < len(got); i++ {
		if got[i].Score > got[i-1].Score {
			t.Errorf("scores not descending at %d: %v > %v", i, got[i].Score, got[i-1].Score)
		}
	}
}

func TestPopularityDegenerateColumns(t *testing.T) {
	// Identical books: both normalized columns collapse, all scores zero,
	// and corpus order is preserved.
	books := []recommend.Book{
		{ID: 1, AverageRating: 4, RatingsCount: 10, FavouriteCount: 2},
		{ID: 2, AverageRating: 4, RatingsCount: 10, FavouriteCount: 2},
		{ID: 3, AverageRating: 4, RatingsCount: 10, FavouriteCount: 2},
	}
	got := Popularity(books, 20)
	for i, s := range got {
		if s.Score != 0 {
			t.Errorf("score[%d] = %v, want 0", i, s.Score)
		}
		if s.Book.ID != int64(i+1) {
			t.Errorf("order[%d] = %d, want %d", i, s.Book.ID, i+1)
		}
	}
}

func TestPopularityNoRatingsAnywhere(t *testing.T) {
	// With zero ratings everywhere v+m == 0; weighted ratings stay 0 and
	// only favourites rank.
	books := []recommend.Book{
		{ID: 1, FavouriteCount: 1},
		{ID: 2, FavouriteCount: 9},
	}
	got := Popularity(books, 20)
	if got[0].Book.ID != 2 {
		t.Errorf("top book = %d, want 2", got[0].Book.ID)
	}
}

func TestPopularityLimit(t *testing.T) {
	var books []recommend.Book
	for i := 1; i <= 30; i++ {
		books = append(books, recommend.Book{ID: int64(i), RatingsCount: i, AverageRating: 3, FavouriteCount: i})
	}
	if got := Popularity(books, 20); len(got) != 20 {
		t.Errorf("got %d results, want 20", len(got))
	}
}
