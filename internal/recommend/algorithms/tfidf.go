// Bookrec - Reading Community Book Recommendation Service
// Copyright 2026 Bookrec Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package algorithms

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// wordPattern extracts word tokens of one or more word characters.
var wordPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// accentFolder decomposes characters and strips combining marks, so
// "café" tokenizes as "cafe". Lowercasing happens separately.
var accentFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// VectorizerConfig configures TF-IDF document vectorization.
type VectorizerConfig struct {
	// MinDocFreq drops terms appearing in fewer documents than this.
	MinDocFreq int

	// NgramMin and NgramMax bound the word n-gram sizes extracted.
	NgramMin int
	NgramMax int
}

// Vectorizer turns documents into L2-normalized TF-IDF vectors over a
// vocabulary of word n-grams. Stop words are removed before n-grams are
// formed, and accents are stripped so diacritic variants share terms.
//
// IDF uses the smoothed form
//
//	idf(t) = ln((1+n) / (1+df(t))) + 1
//
// which keeps every kept term's weight positive.
type Vectorizer struct {
	minDocFreq int
	ngramMin   int
	ngramMax   int
}

// NewVectorizer creates a vectorizer, applying defaults for zero fields.
func NewVectorizer(cfg VectorizerConfig) *Vectorizer {
	if cfg.MinDocFreq <= 0 {
		cfg.MinDocFreq = 1
	}
	if cfg.NgramMin <= 0 {
		cfg.NgramMin = 1
	}
	if cfg.NgramMax < cfg.NgramMin {
		cfg.NgramMax = cfg.NgramMin
	}
	return &Vectorizer{
		minDocFreq: cfg.MinDocFreq,
		ngramMin:   cfg.NgramMin,
		ngramMax:   cfg.NgramMax,
	}
}

// sparseVec is one document row: parallel slices of term index and
// weight, sorted by index.
type sparseVec struct {
	idx []int
	val []float64
}

// dot computes the inner product of two index-sorted sparse vectors.
func (a sparseVec) dot(b sparseVec) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(a.idx) && j < len(b.idx) {
		switch {
		case a.idx[i] == b.idx[j]:
			sum += a.val[i] * b.val[j]
			i++
			j++
		case a.idx[i] < b.idx[j]:
			i++
		default:
			j++
		}
	}
	return sum
}

// norm returns the Euclidean length of the vector.
func (a sparseVec) norm() float64 {
	var sum float64
	for _, v := range a.val {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// TFIDFMatrix holds the fitted document vectors.
type TFIDFMatrix struct {
	rows      []sparseVec
	vocabSize int
}

// Len returns the number of document rows.
func (m *TFIDFMatrix) Len() int { return len(m.rows) }

// VocabSize returns the number of kept vocabulary terms.
func (m *TFIDFMatrix) VocabSize() int { return m.vocabSize }

// tokenize lowercases, folds accents, splits into word tokens and drops
// stop words.
func tokenize(doc string) []string {
	folded, _, err := transform.String(accentFolder, strings.ToLower(doc))
	if err != nil {
		folded = strings.ToLower(doc)
	}
	raw := wordPattern.FindAllString(folded, -1)
	tokens := raw[:0]
	for _, t := range raw {
		if _, stop := englishStopWords[t]; !stop {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

// ngrams expands tokens into space-joined n-grams of sizes [min, max].
func (v *Vectorizer) ngrams(tokens []string) []string {
	var terms []string
	for n := v.ngramMin; n <= v.ngramMax; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			terms = append(terms, strings.Join(tokens[i:i+n], " "))
		}
	}
	return terms
}

// Fit builds the TF-IDF matrix for docs. Rows align with the input
// order. An empty corpus, or one where no term survives the document
// frequency cutoff, yields a matrix with zero vocabulary.
func (v *Vectorizer) Fit(docs []string) *TFIDFMatrix {
	termsPerDoc := make([][]string, len(docs))
	docFreq := make(map[string]int)
	for i, doc := range docs {
		terms := v.ngrams(tokenize(doc))
		termsPerDoc[i] = terms
		seen := make(map[string]struct{}, len(terms))
		for _, t := range terms {
			if _, ok := seen[t]; !ok {
				seen[t] = struct{}{}
				docFreq[t]++
			}
		}
	}

	vocab := make([]string, 0, len(docFreq))
	for t, df := range docFreq {
		if df >= v.minDocFreq {
			vocab = append(vocab, t)
		}
	}
	sort.Strings(vocab)

	index := make(map[string]int, len(vocab))
	idf := make([]float64, len(vocab))
	n := float64(len(docs))
	for i, t := range vocab {
		index[t] = i
		idf[i] = math.Log((1+n)/(1+float64(docFreq[t]))) + 1
	}

	m := &TFIDFMatrix{rows: make([]sparseVec, len(docs)), vocabSize: len(vocab)}
	for i, terms := range termsPerDoc {
		counts := make(map[int]float64)
		for _, t := range terms {
			if j, ok := index[t]; ok {
				counts[j]++
			}
		}
		row := sparseVec{
			idx: make([]int, 0, len(counts)),
			val: make([]float64, 0, len(counts)),
		}
		for j := range counts {
			row.idx = append(row.idx, j)
		}
		sort.Ints(row.idx)
		for _, j := range row.idx {
			row.val = append(row.val, counts[j]*idf[j])
		}
		if l2 := row.norm(); l2 > 0 {
			for k := range row.val {
				row.val[k] /= l2
			}
		}
		m.rows[i] = row
	}
	return m
}

// CosineSimilarities returns the cosine similarity of row i against
// every row. Rows are unit length, so this is a plain dot product.
func (m *TFIDFMatrix) CosineSimilarities(i int) []float64 {
	sims := make([]float64, len(m.rows))
	for j := range m.rows {
		sims[j] = m.rows[i].dot(m.rows[j])
	}
	return sims
}

// SigmoidSimilarities returns tanh(gamma*dot + 1) of row i against every
// row, the sigmoid kernel with coef0 fixed at 1. gamma defaults to
// 1/vocabSize when non-positive.
func (m *TFIDFMatrix) SigmoidSimilarities(i int, gamma float64) []float64 {
	if gamma <= 0 && m.vocabSize > 0 {
		gamma = 1 / float64(m.vocabSize)
	}
	sims := make([]float64, len(m.rows))
	for j := range m.rows {
		sims[j] = math.Tanh(gamma*m.rows[i].dot(m.rows[j]) + 1)
	}
	return sims
}
