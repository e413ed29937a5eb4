// Bookrec - Reading Community Book Recommendation Service
// Copyright 2026 Bookrec Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"

	"bookrec/internal/catalog"
)

func decodeBody(r *http.Request, dst interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}

// GetBook handles GET /api/v1/books/{isbn13}.
func (h *Handler) GetBook(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := handlerContext(r)
	defer cancel()

	book, err := h.store.GetBookByISBN(ctx, chi.URLParam(r, "isbn13"))
	if errors.Is(err, catalog.ErrBookNotFound) {
		respondError(w, http.StatusNotFound, "BOOK_NOT_FOUND", "No book with that ISBN", nil)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load book", err)
		return
	}
	respondData(w, http.StatusOK, book, 1)
}

// RecordView handles POST /api/v1/users/{userID}/views.
func (h *Handler) RecordView(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "INVALID_USER_ID", "Invalid user ID", nil)
		return
	}
	var req struct {
		BookID int64 `json:"book_id"`
	}
	if err := decodeBody(r, &req); err != nil || req.BookID <= 0 {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "book_id is required", err)
		return
	}

	ctx, cancel := handlerContext(r)
	defer cancel()
	err := h.store.RecordView(ctx, userID, req.BookID)
	if errors.Is(err, catalog.ErrBookNotFound) {
		respondError(w, http.StatusNotFound, "BOOK_NOT_FOUND", "No book with that ID", nil)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to record view", err)
		return
	}
	respondData(w, http.StatusOK, nil, 0)
}

// ListShelf handles GET /api/v1/users/{userID}/shelves/{shelf}.
func (h *Handler) ListShelf(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "INVALID_USER_ID", "Invalid user ID", nil)
		return
	}
	shelf, err := catalog.ParseShelf(chi.URLParam(r, "shelf"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_SHELF", "Unknown shelf", err)
		return
	}

	ctx, cancel := handlerContext(r)
	defer cancel()
	books, err := h.store.ListShelf(ctx, userID, shelf)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load shelf", err)
		return
	}
	respondData(w, http.StatusOK, books, len(books))
}

// AddToShelf handles POST /api/v1/users/{userID}/shelves/{shelf}.
func (h *Handler) AddToShelf(w http.ResponseWriter, r *http.Request) {
	h.mutateShelf(w, r, catalog.ShelfAdd)
}

// RemoveFromShelf handles
// DELETE /api/v1/users/{userID}/shelves/{shelf}/{bookID}.
func (h *Handler) RemoveFromShelf(w http.ResponseWriter, r *http.Request) {
	h.mutateShelf(w, r, catalog.ShelfRemove)
}

func (h *Handler) mutateShelf(w http.ResponseWriter, r *http.Request, op catalog.ShelfOp) {
	userID, ok := userIDParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "INVALID_USER_ID", "Invalid user ID", nil)
		return
	}
	shelf, err := catalog.ParseShelf(chi.URLParam(r, "shelf"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_SHELF", "Unknown shelf", err)
		return
	}

	var bookID int64
	switch op {
	case catalog.ShelfAdd:
		var req struct {
			BookID int64 `json:"book_id"`
		}
		if err := decodeBody(r, &req); err != nil || req.BookID <= 0 {
			respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "book_id is required", err)
			return
		}
		bookID = req.BookID
	case catalog.ShelfRemove:
		bookID, err = strconv.ParseInt(chi.URLParam(r, "bookID"), 10, 64)
		if err != nil || bookID <= 0 {
			respondError(w, http.StatusBadRequest, "INVALID_BOOK_ID", "Invalid book ID", err)
			return
		}
	}

	ctx, cancel := handlerContext(r)
	defer cancel()
	err = h.store.SetShelf(ctx, userID, bookID, shelf, op)
	if errors.Is(err, catalog.ErrBookNotFound) {
		respondError(w, http.StatusNotFound, "BOOK_NOT_FOUND", "No book with that ID", nil)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update shelf", err)
		return
	}
	respondData(w, http.StatusOK, nil, 0)
}

type reviewRequest struct {
	BookID  int64  `json:"book_id"`
	UserID  int64  `json:"user_id"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// CreateReview handles POST /api/v1/reviews.
func (h *Handler) CreateReview(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Malformed request body", err)
		return
	}
	if req.BookID <= 0 || req.UserID <= 0 {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "book_id and user_id are required", nil)
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "rating must be between 1 and 5", nil)
		return
	}

	ctx, cancel := handlerContext(r)
	defer cancel()
	review, err := h.store.AddReview(ctx, req.BookID, req.UserID, req.Rating, req.Comment)
	switch {
	case errors.Is(err, catalog.ErrBookNotFound):
		respondError(w, http.StatusNotFound, "BOOK_NOT_FOUND", "No book with that ID", nil)
	case errors.Is(err, catalog.ErrReviewExists):
		respondError(w, http.StatusConflict, "REVIEW_EXISTS", "User already reviewed this book", nil)
	case err != nil:
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create review", err)
	default:
		respondData(w, http.StatusCreated, review, 1)
	}
}

// UpdateReview handles PUT /api/v1/reviews/{reviewID}.
func (h *Handler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	reviewID, err := strconv.ParseInt(chi.URLParam(r, "reviewID"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REVIEW_ID", "Invalid review ID", err)
		return
	}
	var req reviewRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Malformed request body", err)
		return
	}
	if req.UserID <= 0 || req.Rating < 1 || req.Rating > 5 {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "user_id and a 1-5 rating are required", nil)
		return
	}

	ctx, cancel := handlerContext(r)
	defer cancel()
	err = h.store.UpdateReview(ctx, reviewID, req.UserID, req.Rating, req.Comment)
	if errors.Is(err, catalog.ErrReviewNotFound) {
		respondError(w, http.StatusNotFound, "REVIEW_NOT_FOUND", "No such review for this user", nil)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update review", err)
		return
	}
	respondData(w, http.StatusOK, nil, 0)
}

// DeleteReview handles DELETE /api/v1/reviews/{reviewID}.
func (h *Handler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	reviewID, err := strconv.ParseInt(chi.URLParam(r, "reviewID"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REVIEW_ID", "Invalid review ID", err)
		return
	}
	userID, err := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)
	if err != nil || userID <= 0 {
		respondError(w, http.StatusBadRequest, "INVALID_USER_ID", "user_id query parameter is required", err)
		return
	}

	ctx, cancel := handlerContext(r)
	defer cancel()
	err = h.store.DeleteReview(ctx, reviewID, userID)
	if errors.Is(err, catalog.ErrReviewNotFound) {
		respondError(w, http.StatusNotFound, "REVIEW_NOT_FOUND", "No such review for this user", nil)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete review", err)
		return
	}
	respondData(w, http.StatusOK, nil, 0)
}

// Import handles POST /api/v1/import, running a synchronous catalog
// import and invalidating cached recommendations on success.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	if h.importer == nil {
		respondError(w, http.StatusServiceUnavailable, "INGEST_DISABLED", "Catalog ingestion is disabled", nil)
		return
	}
	var req struct {
		Queries []string `json:"queries"`
	}
	if err := decodeBody(r, &req); err != nil || len(req.Queries) == 0 {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "queries is required", err)
		return
	}

	stats, err := h.importer.Run(r.Context(), req.Queries)
	if err != nil {
		respondError(w, http.StatusBadGateway, "INGEST_ERROR", "Import failed", err)
		return
	}
	h.engine.Invalidate()
	respondData(w, http.StatusOK, stats, int(stats.Imported))
}
