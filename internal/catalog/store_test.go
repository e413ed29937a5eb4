// Bookrec - Reading Community Book Recommendation Service
// Copyright 2026 Bookrec Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package catalog

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seedBook(t *testing.T, s *Store, isbn, title string) int64 {
	t.Helper()
	id, err := s.UpsertBook(context.Background(), Book{
		ISBN13:      isbn,
		Title:       title,
		Authors:     []string{"Author One"},
		Categories:  []string{"Fiction"},
		Description: "A book about " + title,
	})
	if err != nil {
		t.Fatalf("UpsertBook(%s): %v", title, err)
	}
	return id
}

func TestUpsertBookInsertAndUpdate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	pub := time.Date(2009, 4, 1, 0, 0, 0, 0, time.UTC)
	id, err := s.UpsertBook(ctx, Book{
		ISBN13:        "9780000000001",
		Title:         "The Go Programming Language",
		Authors:       []string{"Alan Donovan", "Brian Kernighan"},
		Publisher:     "Addison-Wesley",
		PublishedDate: &pub,
		Description:   "The authoritative resource.",
		Categories:    []string{"Computers", "Programming"},
		Thumbnail:     "http://example.com/t.jpg",
	})
	if err != nil {
		t.Fatalf("UpsertBook: %v", err)
	}

	got, err := s.GetBookByISBN(ctx, "9780000000001")
	if err != nil {
		t.Fatalf("GetBookByISBN: %v", err)
	}
	if got.ID != id {
		t.Errorf("ID = %d, want %d", got.ID, id)
	}
	if len(got.Authors) != 2 || got.Authors[0] != "Alan Donovan" {
		t.Errorf("Authors = %v", got.Authors)
	}
	if got.PublishedDate == nil || got.PublishedDate.Year() != 2009 {
		t.Errorf("PublishedDate = %v", got.PublishedDate)
	}

	// Same ISBN updates in place and keeps the ID.
	id2, err := s.UpsertBook(ctx, Book{
		ISBN13: "9780000000001",
		Title:  "The Go Programming Language, 2nd",
	})
	if err != nil {
		t.Fatalf("UpsertBook again: %v", err)
	}
	if id2 != id {
		t.Errorf("upsert changed ID: %d -> %d", id, id2)
	}
	got, _ = s.GetBook(ctx, id)
	if got.Title != "The Go Programming Language, 2nd" {
		t.Errorf("Title = %q after upsert", got.Title)
	}
}

func TestGetBookNotFound(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.GetBook(context.Background(), 42); !errors.Is(err, ErrBookNotFound) {
		t.Errorf("GetBook(42) err = %v, want ErrBookNotFound", err)
	}
	if _, err := s.GetBookByISBN(context.Background(), "978"); !errors.Is(err, ErrBookNotFound) {
		t.Errorf("GetBookByISBN err = %v, want ErrBookNotFound", err)
	}
}

func TestReviewLifecycleKeepsAggregatesConsistent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	bookID := seedBook(t, s, "9780000000002", "Dune")

	r1, err := s.AddReview(ctx, bookID, 1, 5, "great")
	if err != nil {
		t.Fatalf("AddReview: %v", err)
	}
	if _, err := s.AddReview(ctx, bookID, 2, 2, "meh"); err != nil {
		t.Fatalf("AddReview second: %v", err)
	}

	b, _ := s.GetBook(ctx, bookID)
	if b.RatingsCount != 2 {
		t.Errorf("RatingsCount = %d, want 2", b.RatingsCount)
	}
	if math.Abs(b.AverageRating-3.5) > 1e-9 {
		t.Errorf("AverageRating = %v, want 3.5", b.AverageRating)
	}

	// Same user reviewing the same book again is rejected.
	if _, err := s.AddReview(ctx, bookID, 1, 4, "again"); !errors.Is(err, ErrReviewExists) {
		t.Errorf("duplicate review err = %v, want ErrReviewExists", err)
	}

	if err := s.UpdateReview(ctx, r1.ID, 1, 3, "on reflection"); err != nil {
		t.Fatalf("UpdateReview: %v", err)
	}
	b, _ = s.GetBook(ctx, bookID)
	if math.Abs(b.AverageRating-2.5) > 1e-9 {
		t.Errorf("AverageRating after update = %v, want 2.5", b.AverageRating)
	}

	reviews, err := s.ListReviewsForUser(ctx, 1)
	if err != nil {
		t.Fatalf("ListReviewsForUser: %v", err)
	}
	if len(reviews) != 1 || !reviews[0].Edited || reviews[0].Rating != 3 {
		t.Errorf("reviews = %+v, want one edited rating-3 review", reviews)
	}

	if err := s.DeleteReview(ctx, r1.ID, 1); err != nil {
		t.Fatalf("DeleteReview: %v", err)
	}
	b, _ = s.GetBook(ctx, bookID)
	if b.RatingsCount != 1 || math.Abs(b.AverageRating-2.0) > 1e-9 {
		t.Errorf("after delete count=%d avg=%v, want 1/2.0", b.RatingsCount, b.AverageRating)
	}

	// Deleting everything resets the aggregate to zero, not NaN.
	rest, _ := s.ListReviews(ctx)
	if err := s.DeleteReview(ctx, rest[0].ID, rest[0].UserID); err != nil {
		t.Fatalf("DeleteReview last: %v", err)
	}
	b, _ = s.GetBook(ctx, bookID)
	if b.RatingsCount != 0 || b.AverageRating != 0 {
		t.Errorf("empty aggregate count=%d avg=%v, want 0/0", b.RatingsCount, b.AverageRating)
	}
}

func TestReviewOwnership(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	bookID := seedBook(t, s, "9780000000003", "Hyperion")

	r, err := s.AddReview(ctx, bookID, 7, 4, "")
	if err != nil {
		t.Fatalf("AddReview: %v", err)
	}
	if err := s.UpdateReview(ctx, r.ID, 8, 1, "not mine"); !errors.Is(err, ErrReviewNotFound) {
		t.Errorf("update by other user err = %v, want ErrReviewNotFound", err)
	}
	if err := s.DeleteReview(ctx, r.ID, 8); !errors.Is(err, ErrReviewNotFound) {
		t.Errorf("delete by other user err = %v, want ErrReviewNotFound", err)
	}
}

func TestAddReviewInvalidRating(t *testing.T) {
	s := newTestStore(t)
	bookID := seedBook(t, s, "9780000000004", "Foundation")
	for _, rating := range []int{0, 6, -1} {
		if _, err := s.AddReview(context.Background(), bookID, 1, rating, ""); err == nil {
			t.Errorf("AddReview rating=%d succeeded, want error", rating)
		}
	}
}

func TestShelfMutationsAndFavouriteCount(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	bookID := seedBook(t, s, "9780000000005", "Neuromancer")

	if err := s.SetShelf(ctx, 1, bookID, ShelfFavourite, ShelfAdd); err != nil {
		t.Fatalf("SetShelf add: %v", err)
	}
	// Adds are idempotent.
	if err := s.SetShelf(ctx, 1, bookID, ShelfFavourite, ShelfAdd); err != nil {
		t.Fatalf("SetShelf add twice: %v", err)
	}
	if err := s.SetShelf(ctx, 2, bookID, ShelfFavourite, ShelfAdd); err != nil {
		t.Fatalf("SetShelf second user: %v", err)
	}
	if err := s.SetShelf(ctx, 1, bookID, ShelfToRead, ShelfAdd); err != nil {
		t.Fatalf("SetShelf to_read: %v", err)
	}

	b, _ := s.GetBook(ctx, bookID)
	if b.FavouriteCount != 2 {
		t.Errorf("FavouriteCount = %d, want 2", b.FavouriteCount)
	}

	pairs, err := s.ListFavouritePairs(ctx)
	if err != nil {
		t.Fatalf("ListFavouritePairs: %v", err)
	}
	if len(pairs) != 2 {
		t.Fatalf("pairs = %v, want 2 favourite edges", pairs)
	}

	shelf, err := s.ListShelf(ctx, 1, ShelfToRead)
	if err != nil {
		t.Fatalf("ListShelf: %v", err)
	}
	if len(shelf) != 1 || shelf[0].ID != bookID {
		t.Errorf("to_read shelf = %v", shelf)
	}

	if err := s.SetShelf(ctx, 1, bookID, ShelfFavourite, ShelfRemove); err != nil {
		t.Fatalf("SetShelf remove: %v", err)
	}
	b, _ = s.GetBook(ctx, bookID)
	if b.FavouriteCount != 1 {
		t.Errorf("FavouriteCount after remove = %d, want 1", b.FavouriteCount)
	}
	// Removing an absent entry is a no-op.
	if err := s.SetShelf(ctx, 1, bookID, ShelfFavourite, ShelfRemove); err != nil {
		t.Errorf("remove absent entry: %v", err)
	}
}

func TestSetShelfUnknownBook(t *testing.T) {
	s := newTestStore(t)
	err := s.SetShelf(context.Background(), 1, 99, ShelfFavourite, ShelfAdd)
	if !errors.Is(err, ErrBookNotFound) {
		t.Errorf("err = %v, want ErrBookNotFound", err)
	}
}

func TestParseShelf(t *testing.T) {
	for _, tc := range []struct {
		in      string
		want    Shelf
		wantErr bool
	}{
		{"favourite", ShelfFavourite, false},
		{"reading_now", ShelfReadingNow, false},
		{"to_read", ShelfToRead, false},
		{"have_read", ShelfHaveRead, false},
		{"favorites", "", true},
		{"", "", true},
	} {
		got, err := ParseShelf(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseShelf(%q) err = %v, wantErr %v", tc.in, err, tc.wantErr)
		}
		if got != tc.want {
			t.Errorf("ParseShelf(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestViewHistoryOrderAndCap(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	var ids []int64
	for i := 0; i < viewHistoryCap+5; i++ {
		ids = append(ids, seedBook(t, s, fmt.Sprintf("97800000100%02d", i), fmt.Sprintf("Book %d", i)))
	}
	for _, id := range ids {
		if err := s.RecordView(ctx, 1, id); err != nil {
			t.Fatalf("RecordView(%d): %v", id, err)
		}
	}

	history, err := s.ViewHistory(ctx, 1)
	if err != nil {
		t.Fatalf("ViewHistory: %v", err)
	}
	if len(history) != viewHistoryCap {
		t.Fatalf("history length = %d, want %d", len(history), viewHistoryCap)
	}
	// Most recent first; the oldest views were trimmed.
	if history[0] != ids[len(ids)-1] {
		t.Errorf("history[0] = %d, want %d", history[0], ids[len(ids)-1])
	}
	for _, old := range ids[:5] {
		for _, h := range history {
			if h == old {
				t.Errorf("trimmed book %d still in history", old)
			}
		}
	}

	// Other users have independent histories.
	other, _ := s.ViewHistory(ctx, 2)
	if len(other) != 0 {
		t.Errorf("user 2 history = %v, want empty", other)
	}
}

func TestRecentlyAdded(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		seedBook(t, s, fmt.Sprintf("978000002000%d", i), fmt.Sprintf("Recent %d", i))
	}
	books, err := s.RecentlyAdded(ctx, 3)
	if err != nil {
		t.Fatalf("RecentlyAdded: %v", err)
	}
	if len(books) != 3 {
		t.Fatalf("got %d books, want 3", len(books))
	}
	if books[0].Title != "Recent 4" || books[2].Title != "Recent 2" {
		t.Errorf("order = %q..%q, want newest first", books[0].Title, books[2].Title)
	}
}

func TestRecommendSourceRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	bookID := seedBook(t, s, "9780000030001", "Snow Crash")
	if _, err := s.AddReview(ctx, bookID, 3, 5, ""); err != nil {
		t.Fatalf("AddReview: %v", err)
	}
	if err := s.SetShelf(ctx, 3, bookID, ShelfFavourite, ShelfAdd); err != nil {
		t.Fatalf("SetShelf: %v", err)
	}
	if err := s.RecordView(ctx, 3, bookID); err != nil {
		t.Fatalf("RecordView: %v", err)
	}

	src := NewRecommendSource(s)
	books, err := src.Books(ctx)
	if err != nil {
		t.Fatalf("Books: %v", err)
	}
	if len(books) != 1 || books[0].FavouriteCount != 1 || books[0].RatingsCount != 1 {
		t.Errorf("books = %+v", books)
	}
	ratings, _ := src.Ratings(ctx)
	if len(ratings) != 1 || ratings[0].Rating != 5 || ratings[0].UserID != 3 {
		t.Errorf("ratings = %+v", ratings)
	}
	pairs, _ := src.FavouritePairs(ctx)
	if len(pairs) != 1 || pairs[0].BookID != bookID {
		t.Errorf("pairs = %+v", pairs)
	}
	history, _ := src.ViewHistory(ctx, 3)
	if len(history) != 1 || history[0] != bookID {
		t.Errorf("history = %v", history)
	}
}
