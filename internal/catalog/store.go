// Bookrec - Reading Community Book Recommendation Service
// Copyright 2026 Bookrec Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package catalog

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"bookrec/internal/logging"
	"bookrec/internal/metrics"
)

//go:embed schema.sql
var schemaSQL string

// viewHistoryCap bounds the per-user view history retained for
// history-based recommendations.
const viewHistoryCap = 50

// Store is the SQLite-backed catalog.
type Store struct {
	db  *sql.DB
	log zerolog.Logger
}

// Open opens (creating if needed) the catalog database at path and
// applies the schema. Pass ":memory:" for an in-memory store.
func Open(path string) (*Store, error) {
	dsn := path
	if path != ":memory:" {
		dsn = fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path)
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open catalog db: %w", err)
	}
	// modernc sqlite is single-writer; serialize access through one conn
	// so concurrent request handlers queue instead of hitting SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply catalog schema: %w", err)
	}

	s := &Store{db: db, log: logging.Component("catalog")}
	s.log.Info().Str("path", path).Msg("Catalog store opened")
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the underlying handle for unit-of-work code in this package.
func (s *Store) DB() *sql.DB { return s.db }

func encodeList(values []string) string {
	if len(values) == 0 {
		return "[]"
	}
	b, err := json.Marshal(values)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func decodeList(raw string) []string {
	if raw == "" || raw == "[]" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		// Legacy comma-joined values degrade gracefully.
		return strings.Split(raw, ",")
	}
	return out
}

func encodeDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format("2006-01-02")
}

func decodeDate(raw sql.NullString) *time.Time {
	if !raw.Valid || raw.String == "" {
		return nil
	}
	for _, layout := range []string{"2006-01-02", "2006-01", "2006"} {
		if t, err := time.Parse(layout, raw.String); err == nil {
			return &t
		}
	}
	return nil
}

// UpsertBook inserts a book or, when the ISBN-13 already exists, updates
// its descriptive fields in place. Rating aggregates are never touched
// here; they belong to the review unit of work. Returns the book ID.
func (s *Store) UpsertBook(ctx context.Context, b Book) (int64, error) {
	const q = `
		INSERT INTO books (isbn13, title, authors, publisher, published_date,
			description, categories, thumbnail, self_link)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(isbn13) DO UPDATE SET
			title = excluded.title,
			authors = excluded.authors,
			publisher = excluded.publisher,
			published_date = excluded.published_date,
			description = excluded.description,
			categories = excluded.categories,
			thumbnail = excluded.thumbnail,
			self_link = excluded.self_link
		RETURNING id`
	var id int64
	err := s.db.QueryRowContext(ctx, q,
		b.ISBN13, b.Title, encodeList(b.Authors), b.Publisher, encodeDate(b.PublishedDate),
		b.Description, encodeList(b.Categories), b.Thumbnail, b.SelfLink,
	).Scan(&id)
	if err != nil {
		metrics.DBQueryErrors.WithLabelValues("upsert_book").Inc()
		return 0, fmt.Errorf("upsert book %s: %w", b.ISBN13, err)
	}
	return id, nil
}

const bookColumns = `
	b.id, b.isbn13, b.title, b.authors, b.publisher, b.published_date,
	b.description, b.categories, b.thumbnail, b.self_link,
	b.average_rating, b.ratings_count,
	(SELECT COUNT(*) FROM shelf_entries se
	 WHERE se.book_id = b.id AND se.shelf = 'favourite') AS favourite_count`

func scanBook(row interface{ Scan(...any) error }) (Book, error) {
	var (
		b                  Book
		authors, cats      string
		published          sql.NullString
		publisher          sql.NullString
		desc, thumb, sLink sql.NullString
	)
	err := row.Scan(&b.ID, &b.ISBN13, &b.Title, &authors, &publisher, &published,
		&desc, &cats, &thumb, &sLink, &b.AverageRating, &b.RatingsCount, &b.FavouriteCount)
	if err != nil {
		return Book{}, err
	}
	b.Authors = decodeList(authors)
	b.Categories = decodeList(cats)
	b.Publisher = publisher.String
	b.PublishedDate = decodeDate(published)
	b.Description = desc.String
	b.Thumbnail = thumb.String
	b.SelfLink = sLink.String
	return b, nil
}

// GetBook fetches one book by ID.
func (s *Store) GetBook(ctx context.Context, id int64) (Book, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+bookColumns+" FROM books b WHERE b.id = ?", id)
	b, err := scanBook(row)
	if err == sql.ErrNoRows {
		return Book{}, ErrBookNotFound
	}
	if err != nil {
		metrics.DBQueryErrors.WithLabelValues("get_book").Inc()
		return Book{}, fmt.Errorf("get book %d: %w", id, err)
	}
	return b, nil
}

// GetBookByISBN fetches one book by its ISBN-13.
func (s *Store) GetBookByISBN(ctx context.Context, isbn13 string) (Book, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+bookColumns+" FROM books b WHERE b.isbn13 = ?", isbn13)
	b, err := scanBook(row)
	if err == sql.ErrNoRows {
		return Book{}, ErrBookNotFound
	}
	if err != nil {
		metrics.DBQueryErrors.WithLabelValues("get_book_isbn").Inc()
		return Book{}, fmt.Errorf("get book isbn %s: %w", isbn13, err)
	}
	return b, nil
}

func (s *Store) queryBooks(ctx context.Context, op, query string, args ...any) ([]Book, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		metrics.DBQueryErrors.WithLabelValues(op).Inc()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var books []Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("%s scan: %w", op, err)
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

// ListBooks returns the full corpus ordered by ID, with favourite counts.
func (s *Store) ListBooks(ctx context.Context) ([]Book, error) {
	return s.queryBooks(ctx, "list_books", "SELECT "+bookColumns+" FROM books b ORDER BY b.id")
}

// RecentlyAdded returns the newest catalog entries, most recent first.
func (s *Store) RecentlyAdded(ctx context.Context, limit int) ([]Book, error) {
	return s.queryBooks(ctx, "recently_added",
		"SELECT "+bookColumns+" FROM books b ORDER BY b.created_at DESC, b.id DESC LIMIT ?", limit)
}

// ListReviews returns every review in insertion order.
func (s *Store) ListReviews(ctx context.Context) ([]Review, error) {
	return s.queryReviews(ctx, "list_reviews",
		`SELECT id, book_id, user_id, rating, comment, created_at, modified_at, edited
		 FROM reviews ORDER BY id`)
}

// ListReviewsForUser returns one user's reviews in insertion order.
func (s *Store) ListReviewsForUser(ctx context.Context, userID int64) ([]Review, error) {
	return s.queryReviews(ctx, "list_reviews_user",
		`SELECT id, book_id, user_id, rating, comment, created_at, modified_at, edited
		 FROM reviews WHERE user_id = ? ORDER BY id`, userID)
}

func (s *Store) queryReviews(ctx context.Context, op, query string, args ...any) ([]Review, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		metrics.DBQueryErrors.WithLabelValues(op).Inc()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var reviews []Review
	for rows.Next() {
		var (
			r                 Review
			created, modified string
			edited            int
		)
		if err := rows.Scan(&r.ID, &r.BookID, &r.UserID, &r.Rating, &r.Comment,
			&created, &modified, &edited); err != nil {
			return nil, fmt.Errorf("%s scan: %w", op, err)
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		r.ModifiedAt, _ = time.Parse(time.RFC3339Nano, modified)
		r.Edited = edited != 0
		reviews = append(reviews, r)
	}
	return reviews, rows.Err()
}

// ListFavouritePairs returns every (user, book) favourite edge ordered by
// user then book, the input of the favourites-network recommender.
func (s *Store) ListFavouritePairs(ctx context.Context) ([]FavouritePair, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, book_id FROM shelf_entries
		 WHERE shelf = 'favourite' ORDER BY user_id, book_id`)
	if err != nil {
		metrics.DBQueryErrors.WithLabelValues("list_favourites").Inc()
		return nil, fmt.Errorf("list favourite pairs: %w", err)
	}
	defer rows.Close()

	var pairs []FavouritePair
	for rows.Next() {
		var p FavouritePair
		if err := rows.Scan(&p.UserID, &p.BookID); err != nil {
			return nil, fmt.Errorf("list favourite pairs scan: %w", err)
		}
		pairs = append(pairs, p)
	}
	return pairs, rows.Err()
}

// SetShelf applies one shelf mutation for a user. Adds are idempotent;
// removing an absent entry is a no-op.
func (s *Store) SetShelf(ctx context.Context, userID, bookID int64, shelf Shelf, op ShelfOp) error {
	if _, err := s.GetBook(ctx, bookID); err != nil {
		return err
	}
	switch op {
	case ShelfAdd:
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO shelf_entries (user_id, book_id, shelf) VALUES (?, ?, ?)
			 ON CONFLICT(user_id, book_id, shelf) DO NOTHING`,
			userID, bookID, string(shelf))
		if err != nil {
			metrics.DBQueryErrors.WithLabelValues("shelf_add").Inc()
			return fmt.Errorf("add to shelf %s: %w", shelf, err)
		}
	case ShelfRemove:
		_, err := s.db.ExecContext(ctx,
			"DELETE FROM shelf_entries WHERE user_id = ? AND book_id = ? AND shelf = ?",
			userID, bookID, string(shelf))
		if err != nil {
			metrics.DBQueryErrors.WithLabelValues("shelf_remove").Inc()
			return fmt.Errorf("remove from shelf %s: %w", shelf, err)
		}
	default:
		return fmt.Errorf("catalog: unknown shelf op %d", op)
	}
	s.log.Debug().Int64("user_id", userID).Int64("book_id", bookID).
		Str("shelf", string(shelf)).Str("op", op.String()).Msg("Shelf updated")
	return nil
}

// ListShelf returns the books on one of a user's shelves, newest first.
func (s *Store) ListShelf(ctx context.Context, userID int64, shelf Shelf) ([]Book, error) {
	return s.queryBooks(ctx, "list_shelf",
		"SELECT "+bookColumns+` FROM books b
		 JOIN shelf_entries se ON se.book_id = b.id
		 WHERE se.user_id = ? AND se.shelf = ?
		 ORDER BY se.added_at DESC, b.id DESC`, userID, string(shelf))
}

// RecordView marks a book as viewed by a user. Re-viewing refreshes the
// timestamp; each user's history is trimmed to the newest entries so the
// history recommender sees a bounded window.
func (s *Store) RecordView(ctx context.Context, userID, bookID int64) error {
	if _, err := s.GetBook(ctx, bookID); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO view_history (user_id, book_id) VALUES (?, ?)
		 ON CONFLICT(user_id, book_id) DO UPDATE SET
			viewed_at = strftime('%Y-%m-%dT%H:%M:%fZ','now')`,
		userID, bookID)
	if err != nil {
		metrics.DBQueryErrors.WithLabelValues("record_view").Inc()
		return fmt.Errorf("record view: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`DELETE FROM view_history WHERE user_id = ? AND book_id NOT IN (
			SELECT book_id FROM view_history WHERE user_id = ?
			ORDER BY viewed_at DESC, book_id DESC LIMIT ?)`,
		userID, userID, viewHistoryCap)
	if err != nil {
		metrics.DBQueryErrors.WithLabelValues("trim_views").Inc()
		return fmt.Errorf("trim view history: %w", err)
	}
	return nil
}

// ViewHistory returns the IDs of books a user has viewed, most recent
// first.
func (s *Store) ViewHistory(ctx context.Context, userID int64) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT book_id FROM view_history WHERE user_id = ?
		 ORDER BY viewed_at DESC, book_id DESC`, userID)
	if err != nil {
		metrics.DBQueryErrors.WithLabelValues("view_history").Inc()
		return nil, fmt.Errorf("view history: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("view history scan: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
