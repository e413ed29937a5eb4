// Bookrec - Reading Community Book Recommendation Service
// Copyright 2026 Bookrec Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"bookrec/internal/catalog"
	"bookrec/internal/ingest"
	"bookrec/internal/logging"
	"bookrec/internal/recommend"
)

// handlerTimeout bounds every handler's downstream work.
const handlerTimeout = 10 * time.Second

// Handler serves the HTTP API over the catalog store and the
// recommendation engine.
type Handler struct {
	store    *catalog.Store
	engine   *recommend.Engine
	importer *ingest.Importer
	log      zerolog.Logger
}

// NewHandler builds a handler. importer may be nil when catalog
// ingestion is disabled; the import endpoint then reports the feature
// unavailable.
func NewHandler(store *catalog.Store, engine *recommend.Engine, importer *ingest.Importer) *Handler {
	return &Handler{
		store:    store,
		engine:   engine,
		importer: importer,
		log:      logging.Component("api"),
	}
}

func handlerContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), handlerTimeout)
}

// userIDParam parses the {userID} route parameter.
func userIDParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	return id, err == nil && id > 0
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondData(w, http.StatusOK, map[string]string{"status": "ok"}, 0)
}
