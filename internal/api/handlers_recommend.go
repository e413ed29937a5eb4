// Bookrec - Reading Community Book Recommendation Service
// Copyright 2026 Bookrec Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"bookrec/internal/catalog"
	"bookrec/internal/recommend"
)

// recentLimit is how many catalog entries the recent endpoint returns.
const recentLimit = 20

func (h *Handler) respondRecommendations(w http.ResponseWriter, recs []recommend.Recommendation, err error) {
	if err != nil {
		respondError(w, http.StatusInternalServerError, "RECOMMEND_ERROR", "Failed to compute recommendations", err)
		return
	}
	respondData(w, http.StatusOK, recs, len(recs))
}

// Popular handles GET /api/v1/recommendations/popular.
func (h *Handler) Popular(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := handlerContext(r)
	defer cancel()
	recs, err := h.engine.Popular(ctx)
	h.respondRecommendations(w, recs, err)
}

// Recent handles GET /api/v1/recommendations/recent.
func (h *Handler) Recent(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := handlerContext(r)
	defer cancel()
	books, err := h.store.RecentlyAdded(ctx, recentLimit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load recent books", err)
		return
	}
	respondData(w, http.StatusOK, books, len(books))
}

// SimilarBooks handles GET /api/v1/books/{isbn13}/similar.
func (h *Handler) SimilarBooks(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := handlerContext(r)
	defer cancel()

	isbn := chi.URLParam(r, "isbn13")
	book, err := h.store.GetBookByISBN(ctx, isbn)
	if errors.Is(err, catalog.ErrBookNotFound) {
		respondError(w, http.StatusNotFound, "BOOK_NOT_FOUND", "No book with that ISBN", nil)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load book", err)
		return
	}

	recs, err := h.engine.SimilarToBook(ctx, book.ID)
	h.respondRecommendations(w, recs, err)
}

// HistoryRecommendations handles
// GET /api/v1/users/{userID}/recommendations/history.
func (h *Handler) HistoryRecommendations(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "INVALID_USER_ID", "Invalid user ID", nil)
		return
	}
	ctx, cancel := handlerContext(r)
	defer cancel()
	recs, err := h.engine.FromHistory(ctx, userID)
	h.respondRecommendations(w, recs, err)
}

// FavouritesRecommendations handles
// GET /api/v1/users/{userID}/recommendations/favourites.
func (h *Handler) FavouritesRecommendations(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "INVALID_USER_ID", "Invalid user ID", nil)
		return
	}
	ctx, cancel := handlerContext(r)
	defer cancel()
	recs, err := h.engine.FromFavourites(ctx, userID)
	h.respondRecommendations(w, recs, err)
}

// RatingsRecommendations handles
// GET /api/v1/users/{userID}/recommendations/ratings.
func (h *Handler) RatingsRecommendations(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "INVALID_USER_ID", "Invalid user ID", nil)
		return
	}
	ctx, cancel := handlerContext(r)
	defer cancel()
	recs, err := h.engine.FromRatings(ctx, userID)
	h.respondRecommendations(w, recs, err)
}
