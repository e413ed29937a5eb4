// Bookrec - Reading Community Book Recommendation Service
// Copyright 2026 Bookrec Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package algorithms

import (
	"math"
	"sort"

	"bookrec/internal/recommend"
)

// sortScoredDesc orders by score descending, keeping the original
// (corpus) order between equal scores.
func sortScoredDesc(scored []recommend.Scored) {
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
}

// topScored truncates a score-sorted slice to at most limit entries.
func topScored(scored []recommend.Scored, limit int) []recommend.Scored {
	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}

// minMaxNormalize rescales values into [0, 1]. A constant column carries
// no ranking signal and collapses to all zeros.
func minMaxNormalize(values []float64) []float64 {
	if len(values) == 0 {
		return nil
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	out := make([]float64, len(values))
	if hi == lo {
		return out
	}
	for i, v := range values {
		out[i] = (v - lo) / (hi - lo)
	}
	return out
}

// quantile computes the q-th quantile of values using linear
// interpolation between closest ranks.
func quantile(values []float64, q float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	pos := q * float64(len(sorted)-1)
	lower := int(math.Floor(pos))
	upper := int(math.Ceil(pos))
	if lower == upper {
		return sorted[lower]
	}
	frac := pos - float64(lower)
	return sorted[lower]*(1-frac) + sorted[upper]*frac
}
