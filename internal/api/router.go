// Bookrec - Reading Community Book Recommendation Service
// Copyright 2026 Bookrec Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bookrec/internal/config"
	"bookrec/internal/middleware"
)

// NewRouter assembles the full route tree and middleware stack.
func NewRouter(cfg config.ServerConfig, h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestLogger)

	allowedOrigins := cfg.CORSAllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.RateLimit > 0 {
			r.Use(httprate.LimitByIP(cfg.RateLimit, time.Minute))
		}
		r.Use(middleware.Prometheus)

		r.Get("/health", h.Health)

		r.Route("/recommendations", func(r chi.Router) {
			r.Get("/popular", h.Popular)
			r.Get("/recent", h.Recent)
		})

		r.Route("/books/{isbn13}", func(r chi.Router) {
			r.Get("/", h.GetBook)
			r.Get("/similar", h.SimilarBooks)
		})

		r.Route("/users/{userID}", func(r chi.Router) {
			r.Route("/recommendations", func(r chi.Router) {
				r.Get("/history", h.HistoryRecommendations)
				r.Get("/favourites", h.FavouritesRecommendations)
				r.Get("/ratings", h.RatingsRecommendations)
				r.Get("/genres", h.GenreRecommendations)
			})
			r.Post("/views", h.RecordView)
			r.Get("/genres", h.ListGenres)
			r.Put("/genres", h.SetGenres)
			r.Route("/shelves/{shelf}", func(r chi.Router) {
				r.Get("/", h.ListShelf)
				r.Post("/", h.AddToShelf)
				r.Delete("/{bookID}", h.RemoveFromShelf)
			})
		})

		r.Route("/reviews", func(r chi.Router) {
			r.Post("/", h.CreateReview)
			r.Put("/{reviewID}", h.UpdateReview)
			r.Delete("/{reviewID}", h.DeleteReview)
		})

		r.Post("/import", h.Import)
	})

	return r
}
