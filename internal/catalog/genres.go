// Bookrec - Reading Community Book Recommendation Service
// Copyright 2026 Bookrec Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"bookrec/internal/metrics"
)

// minGenreRating filters the genre listing to books the community rates
// favourably.
const minGenreRating = 3.0

// SetFavouriteGenres replaces a user's favourite genre list.
func (s *Store) SetFavouriteGenres(ctx context.Context, userID int64, genres []string) error {
	return s.inTx(ctx, "set_genres", func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM user_genres WHERE user_id = ?", userID); err != nil {
			metrics.DBQueryErrors.WithLabelValues("set_genres").Inc()
			return fmt.Errorf("clear genres: %w", err)
		}
		for _, genre := range genres {
			if genre == "" {
				continue
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO user_genres (user_id, genre) VALUES (?, ?)
				 ON CONFLICT(user_id, genre) DO NOTHING`, userID, genre); err != nil {
				metrics.DBQueryErrors.WithLabelValues("set_genres").Inc()
				return fmt.Errorf("insert genre %q: %w", genre, err)
			}
		}
		return nil
	})
}

// FavouriteGenres returns a user's favourite genres in lexical order.
func (s *Store) FavouriteGenres(ctx context.Context, userID int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT genre FROM user_genres WHERE user_id = ? ORDER BY genre", userID)
	if err != nil {
		metrics.DBQueryErrors.WithLabelValues("list_genres").Inc()
		return nil, fmt.Errorf("list genres: %w", err)
	}
	defer rows.Close()

	var genres []string
	for rows.Next() {
		var g string
		if err := rows.Scan(&g); err != nil {
			return nil, fmt.Errorf("list genres scan: %w", err)
		}
		genres = append(genres, g)
	}
	return genres, rows.Err()
}

// BooksByFavouriteGenres returns well-rated books matching any of the
// user's favourite genres, in catalog order. A user with no stored
// genres gets every well-rated book.
func (s *Store) BooksByFavouriteGenres(ctx context.Context, userID int64) ([]Book, error) {
	genres, err := s.FavouriteGenres(ctx, userID)
	if err != nil {
		return nil, err
	}
	books, err := s.queryBooks(ctx, "books_by_genres",
		"SELECT "+bookColumns+" FROM books b WHERE b.average_rating >= ? ORDER BY b.id",
		minGenreRating)
	if err != nil {
		return nil, err
	}
	if len(genres) == 0 {
		return books, nil
	}

	// Categories live as JSON arrays in the row; intersect after decode.
	wanted := make(map[string]struct{}, len(genres))
	for _, g := range genres {
		wanted[g] = struct{}{}
	}
	var matched []Book
	for _, b := range books {
		for _, c := range b.Categories {
			if _, ok := wanted[c]; ok {
				matched = append(matched, b)
				break
			}
		}
	}
	return matched, nil
}
