// Bookrec - Reading Community Book Recommendation Service
// Copyright 2026 Bookrec Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package ingest

import (
	"errors"
	"strings"
	"time"

	"bookrec/internal/catalog"
)

// placeholderThumbnail covers volumes shipping no cover art at all.
const placeholderThumbnail = "https://books.google.com/googlebooks/images/no_cover_thumb.gif"

// ErrNoISBN13 marks a volume that cannot enter the catalog because it
// carries no ISBN-13 identifier.
var ErrNoISBN13 = errors.New("ingest: volume has no ISBN-13")

// mapVolume converts an API volume into a catalog book. Volumes without
// an ISBN-13 are rejected; everything else degrades to zero values.
func mapVolume(v Volume) (catalog.Book, error) {
	isbn := isbn13(v.VolumeInfo.IndustryIdentifiers)
	if isbn == "" {
		return catalog.Book{}, ErrNoISBN13
	}
	return catalog.Book{
		ISBN13:        isbn,
		Title:         v.VolumeInfo.Title,
		Authors:       v.VolumeInfo.Authors,
		Publisher:     v.VolumeInfo.Publisher,
		PublishedDate: parsePublishedDate(v.VolumeInfo.PublishedDate),
		Description:   v.VolumeInfo.Description,
		Categories:    splitCategories(v.VolumeInfo.Categories),
		Thumbnail:     pickThumbnail(v.VolumeInfo.ImageLinks),
		SelfLink:      v.SelfLink,
	}, nil
}

func isbn13(ids []IndustryIdentifier) string {
	for _, id := range ids {
		if id.Type == "ISBN_13" {
			return id.Identifier
		}
	}
	return ""
}

// pickThumbnail prefers the largest cover the volume offers.
func pickThumbnail(links ImageLinks) string {
	for _, u := range []string{
		links.ExtraLarge,
		links.Large,
		links.Medium,
		links.Small,
		links.Thumbnail,
		links.SmallThumbnail,
	} {
		if u != "" {
			return u
		}
	}
	return placeholderThumbnail
}

// splitCategories explodes the API's slash-joined category paths
// ("Fiction / Fantasy / Epic") into deduplicated single categories.
// Dedupe is case-insensitive; the first-seen spelling and order win.
func splitCategories(raw []string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, path := range raw {
		for _, part := range strings.Split(path, "/") {
			c := strings.TrimSpace(part)
			if c == "" {
				continue
			}
			key := strings.ToLower(c)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, c)
		}
	}
	return out
}

// parsePublishedDate accepts the three precisions the API serves: a
// year, a year-month, or a full date. Anything else maps to nil.
func parsePublishedDate(raw string) *time.Time {
	for _, layout := range []string{"2006-01-02", "2006-01", "2006"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}
