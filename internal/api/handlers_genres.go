// Bookrec - Reading Community Book Recommendation Service
// Copyright 2026 Bookrec Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"net/http"
)

// ListGenres handles GET /api/v1/users/{userID}/genres.
func (h *Handler) ListGenres(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "INVALID_USER_ID", "Invalid user ID", nil)
		return
	}
	ctx, cancel := handlerContext(r)
	defer cancel()
	genres, err := h.store.FavouriteGenres(ctx, userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load genres", err)
		return
	}
	respondData(w, http.StatusOK, genres, len(genres))
}

// SetGenres handles PUT /api/v1/users/{userID}/genres, replacing the
// user's favourite genre list.
func (h *Handler) SetGenres(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "INVALID_USER_ID", "Invalid user ID", nil)
		return
	}
	var req struct {
		Genres []string `json:"genres"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Malformed request body", err)
		return
	}

	ctx, cancel := handlerContext(r)
	defer cancel()
	if err := h.store.SetFavouriteGenres(ctx, userID, req.Genres); err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to store genres", err)
		return
	}
	respondData(w, http.StatusOK, nil, 0)
}

// GenreRecommendations handles
// GET /api/v1/users/{userID}/recommendations/genres: well-rated books
// matching the user's favourite genres.
func (h *Handler) GenreRecommendations(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "INVALID_USER_ID", "Invalid user ID", nil)
		return
	}
	ctx, cancel := handlerContext(r)
	defer cancel()
	books, err := h.store.BooksByFavouriteGenres(ctx, userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load genre picks", err)
		return
	}
	respondData(w, http.StatusOK, books, len(books))
}
