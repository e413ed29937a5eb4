// Bookrec - Reading Community Book Recommendation Service
// Copyright 2026 Bookrec Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"

	"bookrec/internal/cache"
	"bookrec/internal/catalog"
	"bookrec/internal/config"
	"bookrec/internal/recommend"
	"bookrec/internal/recommend/algorithms"
)

type testServer struct {
	store  *catalog.Store
	server *httptest.Server
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store, err := catalog.Open(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	engine := recommend.NewEngine(
		catalog.NewRecommendSource(store),
		algorithms.Suite{},
		cache.New(time.Minute),
		recommend.Config{MinDocFreq: 1},
	)
	handler := NewHandler(store, engine, nil)
	srv := httptest.NewServer(NewRouter(config.ServerConfig{}, handler))
	t.Cleanup(srv.Close)
	return &testServer{store: store, server: srv}
}

func (ts *testServer) seedBook(t *testing.T, isbn, title, description string) int64 {
	t.Helper()
	id, err := ts.store.UpsertBook(context.Background(), catalog.Book{
		ISBN13:      isbn,
		Title:       title,
		Description: description,
		Authors:     []string{"Test Author"},
		Categories:  []string{"Fiction"},
	})
	if err != nil {
		t.Fatalf("seed book: %v", err)
	}
	return id
}

func (ts *testServer) do(t *testing.T, method, path, body string) (*http.Response, APIResponse) {
	t.Helper()
	var reqBody *strings.Reader
	if body == "" {
		reqBody = strings.NewReader("")
	} else {
		reqBody = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, ts.server.URL+path, reqBody)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := ts.server.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var envelope APIResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return resp, envelope
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	resp, env := ts.do(t, http.MethodGet, "/api/v1/health", "")
	if resp.StatusCode != http.StatusOK || env.Status != "success" {
		t.Errorf("status = %d/%s", resp.StatusCode, env.Status)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("no X-Request-ID header")
	}
}

func TestPopularEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.seedBook(t, "9780000000101", "Alpha", "a tale of alpine climbing and survival")
	ts.seedBook(t, "9780000000102", "Beta", "a tale of deep sea diving and survival")

	resp, env := ts.do(t, http.MethodGet, "/api/v1/recommendations/popular", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if env.Status != "success" || env.Metadata.Count != 2 {
		t.Errorf("envelope = %+v", env)
	}
}

func TestGetBookAndNotFound(t *testing.T) {
	ts := newTestServer(t)
	ts.seedBook(t, "9780000000103", "Gamma", "desc")

	resp, env := ts.do(t, http.MethodGet, "/api/v1/books/9780000000103/", "")
	if resp.StatusCode != http.StatusOK || env.Status != "success" {
		t.Errorf("get: %d/%s", resp.StatusCode, env.Status)
	}

	resp, env = ts.do(t, http.MethodGet, "/api/v1/books/9999999999999/", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing book status = %d, want 404", resp.StatusCode)
	}
	if env.Error == nil || env.Error.Code != "BOOK_NOT_FOUND" {
		t.Errorf("error = %+v", env.Error)
	}
}

func TestSimilarBooksEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.seedBook(t, "9780000000104", "Original", "a wandering knight returns to a ruined castle")
	ts.seedBook(t, "9780000000105", "Twin", "a wandering knight returns to a ruined castle")

	resp, env := ts.do(t, http.MethodGet, "/api/v1/books/9780000000104/similar", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if env.Metadata.Count != 1 {
		t.Errorf("count = %d, want 1 (the twin)", env.Metadata.Count)
	}

	resp, _ = ts.do(t, http.MethodGet, "/api/v1/books/0000000000000/similar", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown ISBN status = %d, want 404", resp.StatusCode)
	}
}

func TestReviewLifecycleOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	bookID := ts.seedBook(t, "9780000000106", "Reviewed", "desc")

	body := fmt.Sprintf(`{"book_id":%d,"user_id":1,"rating":5,"comment":"great"}`, bookID)
	resp, env := ts.do(t, http.MethodPost, "/api/v1/reviews/", body)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d: %+v", resp.StatusCode, env)
	}

	// Duplicate review conflicts.
	resp, env = ts.do(t, http.MethodPost, "/api/v1/reviews/", body)
	if resp.StatusCode != http.StatusConflict || env.Error.Code != "REVIEW_EXISTS" {
		t.Errorf("duplicate = %d/%+v", resp.StatusCode, env.Error)
	}

	// Invalid rating rejected.
	bad := fmt.Sprintf(`{"book_id":%d,"user_id":2,"rating":9}`, bookID)
	resp, _ = ts.do(t, http.MethodPost, "/api/v1/reviews/", bad)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("invalid rating status = %d", resp.StatusCode)
	}

	// Update own review, then verify the aggregate moved.
	reviews, _ := ts.store.ListReviewsForUser(context.Background(), 1)
	update := `{"user_id":1,"rating":2,"comment":"on reflection"}`
	resp, _ = ts.do(t, http.MethodPut, fmt.Sprintf("/api/v1/reviews/%d", reviews[0].ID), update)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("update status = %d", resp.StatusCode)
	}
	b, _ := ts.store.GetBook(context.Background(), bookID)
	if b.AverageRating != 2.0 {
		t.Errorf("average = %v after update, want 2.0", b.AverageRating)
	}

	// Delete requires the owning user.
	resp, _ = ts.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/reviews/%d?user_id=42", reviews[0].ID), "")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("foreign delete status = %d, want 404", resp.StatusCode)
	}
	resp, _ = ts.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/reviews/%d?user_id=1", reviews[0].ID), "")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("delete status = %d", resp.StatusCode)
	}
}

func TestShelfEndpoints(t *testing.T) {
	ts := newTestServer(t)
	bookID := ts.seedBook(t, "9780000000107", "Shelved", "desc")

	body := fmt.Sprintf(`{"book_id":%d}`, bookID)
	resp, _ := ts.do(t, http.MethodPost, "/api/v1/users/1/shelves/favourite/", body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("add status = %d", resp.StatusCode)
	}

	resp, env := ts.do(t, http.MethodGet, "/api/v1/users/1/shelves/favourite/", "")
	if resp.StatusCode != http.StatusOK || env.Metadata.Count != 1 {
		t.Errorf("list = %d count %d", resp.StatusCode, env.Metadata.Count)
	}

	resp, _ = ts.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/users/1/shelves/favourite/%d", bookID), "")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("remove status = %d", resp.StatusCode)
	}
	resp, env = ts.do(t, http.MethodGet, "/api/v1/users/1/shelves/favourite/", "")
	if env.Metadata.Count != 0 {
		t.Errorf("count after remove = %d", env.Metadata.Count)
	}

	resp, _ = ts.do(t, http.MethodPost, "/api/v1/users/1/shelves/nonsense/", body)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad shelf status = %d", resp.StatusCode)
	}
}

func TestViewAndHistoryRecommendations(t *testing.T) {
	ts := newTestServer(t)
	b1 := ts.seedBook(t, "9780000000108", "Seen", "a heist crew plans one last vault job in winter")
	ts.seedBook(t, "9780000000109", "Like Seen", "a heist crew plans one last vault job in winter")

	resp, _ := ts.do(t, http.MethodPost, "/api/v1/users/3/views", fmt.Sprintf(`{"book_id":%d}`, b1))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("record view status = %d", resp.StatusCode)
	}

	resp, env := ts.do(t, http.MethodGet, "/api/v1/users/3/recommendations/history", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("history status = %d", resp.StatusCode)
	}
	if env.Metadata.Count != 1 {
		t.Errorf("count = %d, want the unseen twin only", env.Metadata.Count)
	}
}

func TestRecommendationUserIDValidation(t *testing.T) {
	ts := newTestServer(t)
	for _, path := range []string{
		"/api/v1/users/0/recommendations/history",
		"/api/v1/users/-2/recommendations/favourites",
		"/api/v1/users/abc/recommendations/ratings",
	} {
		resp, env := ts.do(t, http.MethodGet, path, "")
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s status = %d, want 400", path, resp.StatusCode)
		}
		if env.Error == nil || env.Error.Code != "INVALID_USER_ID" {
			t.Errorf("%s error = %+v", path, env.Error)
		}
	}
}

func TestImportDisabled(t *testing.T) {
	ts := newTestServer(t)
	resp, env := ts.do(t, http.MethodPost, "/api/v1/import", `{"queries":["q"]}`)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", resp.StatusCode)
	}
	if env.Error == nil || env.Error.Code != "INGEST_DISABLED" {
		t.Errorf("error = %+v", env.Error)
	}
}

func TestGenreEndpoints(t *testing.T) {
	ts := newTestServer(t)
	bookID := ts.seedBook(t, "9780000000120", "Liked Fiction", "desc")
	ts.seedBook(t, "9780000000121", "Unrated Fiction", "desc")

	// One 4-star review lifts the book over the rating floor.
	review := fmt.Sprintf(`{"book_id":%d,"user_id":9,"rating":4}`, bookID)
	if resp, _ := ts.do(t, http.MethodPost, "/api/v1/reviews/", review); resp.StatusCode != http.StatusCreated {
		t.Fatalf("seed review status = %d", resp.StatusCode)
	}

	resp, _ := ts.do(t, http.MethodPut, "/api/v1/users/1/genres", `{"genres":["Fiction","History"]}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("set genres status = %d", resp.StatusCode)
	}

	resp, env := ts.do(t, http.MethodGet, "/api/v1/users/1/genres", "")
	if resp.StatusCode != http.StatusOK || env.Metadata.Count != 2 {
		t.Errorf("list genres = %d count %d", resp.StatusCode, env.Metadata.Count)
	}

	resp, env = ts.do(t, http.MethodGet, "/api/v1/users/1/recommendations/genres", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("genre recs status = %d", resp.StatusCode)
	}
	if env.Metadata.Count != 1 {
		t.Errorf("count = %d, want only the well-rated Fiction book", env.Metadata.Count)
	}
}

func TestRecentEndpoint(t *testing.T) {
	ts := newTestServer(t)
	for i := 0; i < 3; i++ {
		ts.seedBook(t, fmt.Sprintf("978000000011%d", i), fmt.Sprintf("R%d", i), "desc")
	}
	resp, env := ts.do(t, http.MethodGet, "/api/v1/recommendations/recent", "")
	if resp.StatusCode != http.StatusOK || env.Metadata.Count != 3 {
		t.Errorf("recent = %d count %d", resp.StatusCode, env.Metadata.Count)
	}
}
