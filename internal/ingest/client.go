// Bookrec - Reading Community Book Recommendation Service
// Copyright 2026 Bookrec Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ingest imports book volumes from the Google Books API into
// the catalog. Fetching is rate limited and wrapped in a circuit
// breaker; mapping enforces the catalog's ISBN-13 requirement.
package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"bookrec/internal/config"
	"bookrec/internal/logging"
	"bookrec/internal/metrics"
)

// maxPageSize is the largest page the volumes API serves.
const maxPageSize = 40

// SearchPage is one page of a volumes search response.
type SearchPage struct {
	TotalItems int      `json:"totalItems"`
	Items      []Volume `json:"items"`
}

// Volume is one volume entry as served by the API.
type Volume struct {
	ID         string     `json:"id"`
	SelfLink   string     `json:"selfLink"`
	VolumeInfo VolumeInfo `json:"volumeInfo"`
}

// VolumeInfo carries the book metadata of a volume.
type VolumeInfo struct {
	Title               string               `json:"title"`
	Authors             []string             `json:"authors"`
	Publisher           string               `json:"publisher"`
	PublishedDate       string               `json:"publishedDate"`
	Description         string               `json:"description"`
	IndustryIdentifiers []IndustryIdentifier `json:"industryIdentifiers"`
	Categories          []string             `json:"categories"`
	ImageLinks          ImageLinks           `json:"imageLinks"`
}

// IndustryIdentifier is one ISBN (or other identifier) of a volume.
type IndustryIdentifier struct {
	Type       string `json:"type"`
	Identifier string `json:"identifier"`
}

// ImageLinks holds the cover URLs a volume offers, by size.
type ImageLinks struct {
	SmallThumbnail string `json:"smallThumbnail"`
	Thumbnail      string `json:"thumbnail"`
	Small          string `json:"small"`
	Medium         string `json:"medium"`
	Large          string `json:"large"`
	ExtraLarge     string `json:"extraLarge"`
}

// Client fetches volume pages from the Google Books API.
//
// Requests pass through a token-bucket rate limiter and a circuit
// breaker. The breaker opens after a 60% failure rate over at least ten
// requests, the same thresholds used for other upstream dependencies.
type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[*SearchPage]
	limiter *rate.Limiter
	log     zerolog.Logger
}

// NewClient builds a client from the ingest configuration.
func NewClient(cfg config.IngestConfig) *Client {
	const cbName = "google-books"
	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0)

	log := logging.Component("ingest")
	breaker := gobreaker.NewCircuitBreaker[*SearchPage](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).
				Str("to", to.String()).Msg("Circuit breaker state change")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(breakerStateValue(to))
		},
	})

	perSecond := cfg.RatePerSecond
	if perSecond <= 0 {
		perSecond = 2
	}
	burst := int(perSecond)
	if burst < 1 {
		burst = 1
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}

	return &Client{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: timeout},
		breaker: breaker,
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
		log:     log,
	}
}

func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	default:
		return 2
	}
}

// Search fetches one page of volumes for a query. startIndex is
// zero-based; pageSize is clamped to the API maximum.
func (c *Client) Search(ctx context.Context, query string, startIndex, pageSize int) (*SearchPage, error) {
	if pageSize <= 0 || pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	u := fmt.Sprintf("%s/volumes?q=%s&startIndex=%d&maxResults=%d",
		c.baseURL, url.QueryEscape(query), startIndex, pageSize)

	page, err := c.breaker.Execute(func() (*SearchPage, error) {
		return c.fetch(ctx, u)
	})
	if err != nil {
		metrics.IngestErrors.WithLabelValues("fetch").Inc()
		return nil, fmt.Errorf("search %q at %d: %w", query, startIndex, err)
	}
	return page, nil
}

func (c *Client) fetch(ctx context.Context, rawURL string) (*SearchPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("upstream status %d: %s", resp.StatusCode, body)
	}

	var page SearchPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &page, nil
}
