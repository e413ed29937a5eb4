// Bookrec - Reading Community Book Recommendation Service
// Copyright 2026 Bookrec Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"bookrec/internal/metrics"
)

// recomputeAggregates refreshes a book's average_rating and ratings_count
// from its live review rows. Must run inside the same transaction as the
// review mutation so the aggregate can never drift from the rows.
func recomputeAggregates(ctx context.Context, tx *sql.Tx, bookID int64) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE books SET
			ratings_count = (SELECT COUNT(*) FROM reviews WHERE book_id = ?),
			average_rating = COALESCE((SELECT AVG(rating) FROM reviews WHERE book_id = ?), 0)
		 WHERE id = ?`,
		bookID, bookID, bookID)
	if err != nil {
		return fmt.Errorf("recompute aggregates for book %d: %w", bookID, err)
	}
	return nil
}

func (s *Store) inTx(ctx context.Context, op string, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		metrics.DBQueryErrors.WithLabelValues(op).Inc()
		return fmt.Errorf("%s begin: %w", op, err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		metrics.DBQueryErrors.WithLabelValues(op).Inc()
		return fmt.Errorf("%s commit: %w", op, err)
	}
	return nil
}

// AddReview creates a review and recomputes the book's rating aggregate
// in one transaction. A user may review a given book once.
func (s *Store) AddReview(ctx context.Context, bookID, userID int64, rating int, comment string) (Review, error) {
	if rating < 1 || rating > 5 {
		return Review{}, fmt.Errorf("catalog: rating %d out of range 1-5", rating)
	}
	if _, err := s.GetBook(ctx, bookID); err != nil {
		return Review{}, err
	}

	var created Review
	err := s.inTx(ctx, "add_review", func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx,
			`INSERT INTO reviews (book_id, user_id, rating, comment)
			 VALUES (?, ?, ?, ?)
			 RETURNING id, created_at, modified_at`,
			bookID, userID, rating, comment)
		var createdAt, modifiedAt string
		if err := row.Scan(&created.ID, &createdAt, &modifiedAt); err != nil {
			if isUniqueViolation(err) {
				return ErrReviewExists
			}
			metrics.DBQueryErrors.WithLabelValues("add_review").Inc()
			return fmt.Errorf("insert review: %w", err)
		}
		created.BookID = bookID
		created.UserID = userID
		created.Rating = rating
		created.Comment = comment
		return recomputeAggregates(ctx, tx, bookID)
	})
	if err != nil {
		return Review{}, err
	}
	s.log.Info().Int64("book_id", bookID).Int64("user_id", userID).
		Int("rating", rating).Msg("Review added")
	return created, nil
}

// UpdateReview edits a user's own review and recomputes the aggregate in
// the same transaction. The review is flagged as edited.
func (s *Store) UpdateReview(ctx context.Context, reviewID, userID int64, rating int, comment string) error {
	if rating < 1 || rating > 5 {
		return fmt.Errorf("catalog: rating %d out of range 1-5", rating)
	}
	return s.inTx(ctx, "update_review", func(tx *sql.Tx) error {
		var bookID int64
		err := tx.QueryRowContext(ctx,
			`UPDATE reviews SET rating = ?, comment = ?, edited = 1,
				modified_at = strftime('%Y-%m-%dT%H:%M:%fZ','now')
			 WHERE id = ? AND user_id = ?
			 RETURNING book_id`,
			rating, comment, reviewID, userID).Scan(&bookID)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrReviewNotFound
		}
		if err != nil {
			metrics.DBQueryErrors.WithLabelValues("update_review").Inc()
			return fmt.Errorf("update review %d: %w", reviewID, err)
		}
		return recomputeAggregates(ctx, tx, bookID)
	})
}

// DeleteReview removes a user's own review and recomputes the aggregate
// in the same transaction.
func (s *Store) DeleteReview(ctx context.Context, reviewID, userID int64) error {
	return s.inTx(ctx, "delete_review", func(tx *sql.Tx) error {
		var bookID int64
		err := tx.QueryRowContext(ctx,
			"DELETE FROM reviews WHERE id = ? AND user_id = ? RETURNING book_id",
			reviewID, userID).Scan(&bookID)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrReviewNotFound
		}
		if err != nil {
			metrics.DBQueryErrors.WithLabelValues("delete_review").Inc()
			return fmt.Errorf("delete review %d: %w", reviewID, err)
		}
		return recomputeAggregates(ctx, tx, bookID)
	})
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
