// Bookrec - Reading Community Book Recommendation Service
// Copyright 2026 Bookrec Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package algorithms

import (
	"strings"

	"bookrec/internal/recommend"
)

// ContentConfig configures the content similarity model.
type ContentConfig struct {
	// MinDocFreq is passed through to TF-IDF vectorization.
	MinDocFreq int
}

// ContentModel is the fitted content-similarity model over a catalog
// snapshot. Each book's document is its description joined with its
// authors and categories, so books share signal through any of the
// three. Rows are addressed by book ID.
type ContentModel struct {
	books   []recommend.Book
	rowByID map[int64]int
	matrix  *TFIDFMatrix
}

// NewContentModel fits the TF-IDF matrix for the given books.
func NewContentModel(books []recommend.Book, cfg ContentConfig) *ContentModel {
	if cfg.MinDocFreq <= 0 {
		cfg.MinDocFreq = 3
	}
	docs := make([]string, len(books))
	for i, b := range books {
		docs[i] = buildDocument(b)
	}
	v := NewVectorizer(VectorizerConfig{
		MinDocFreq: cfg.MinDocFreq,
		NgramMin:   1,
		NgramMax:   3,
	})
	m := &ContentModel{
		books:   books,
		rowByID: make(map[int64]int, len(books)),
		matrix:  v.Fit(docs),
	}
	for i, b := range books {
		m.rowByID[b.ID] = i
	}
	return m
}

func buildDocument(b recommend.Book) string {
	parts := make([]string, 0, 3)
	if b.Description != "" {
		parts = append(parts, b.Description)
	}
	if len(b.Authors) > 0 {
		parts = append(parts, strings.Join(b.Authors, ", "))
	}
	if len(b.Categories) > 0 {
		parts = append(parts, strings.Join(b.Categories, ", "))
	}
	return strings.Join(parts, " ")
}

// VocabSize reports the fitted vocabulary size.
func (m *ContentModel) VocabSize() int { return m.matrix.VocabSize() }

// SimilarToBook ranks the catalog by cosine similarity to one book,
// excluding the book itself. Unknown IDs and a degenerate corpus (no
// vocabulary survived fitting) yield an empty result.
func (m *ContentModel) SimilarToBook(bookID int64, limit int) []recommend.Scored {
	row, ok := m.rowByID[bookID]
	if !ok || m.matrix.VocabSize() == 0 {
		return nil
	}
	sims := m.matrix.CosineSimilarities(row)
	scored := make([]recommend.Scored, 0, len(sims)-1)
	for i, sim := range sims {
		if i == row {
			continue
		}
		scored = append(scored, recommend.Scored{Book: m.books[i], Score: sim})
	}
	sortScoredDesc(scored)
	return topScored(scored, limit)
}

// SimilarToHistory ranks the catalog against a user's viewed books by
// summing, per catalog book, its sigmoid-kernel similarity to every
// viewed book. Viewed books are zeroed out of the result. Unknown IDs in
// the history are skipped; an empty effective history or degenerate
// corpus yields an empty result.
func (m *ContentModel) SimilarToHistory(viewedIDs []int64, limit int) []recommend.Scored {
	if m.matrix.VocabSize() == 0 {
		return nil
	}
	viewedRows := make(map[int]struct{}, len(viewedIDs))
	total := make([]float64, m.matrix.Len())
	for _, id := range viewedIDs {
		row, ok := m.rowByID[id]
		if !ok {
			continue
		}
		viewedRows[row] = struct{}{}
		for i, sim := range m.matrix.SigmoidSimilarities(row, 0) {
			total[i] += sim
		}
	}
	if len(viewedRows) == 0 {
		return nil
	}

	scored := make([]recommend.Scored, 0, len(total)-len(viewedRows))
	for i, score := range total {
		if _, viewed := viewedRows[i]; viewed {
			continue
		}
		scored = append(scored, recommend.Scored{Book: m.books[i], Score: score})
	}
	sortScoredDesc(scored)
	return topScored(scored, limit)
}
