// Bookrec - Reading Community Book Recommendation Service
// Copyright 2026 Bookrec Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package algorithms implements the recommendation computations the
// engine runs over catalog snapshots.
//
// # Algorithm Categories
//
//   - Popularity: Bayesian weighted rating blended with favourite counts
//   - Content-Based: TF-IDF similarity over descriptions, authors and
//     categories, for both single-book and view-history queries
//   - Collaborative Filtering: user-user cosine over favourites, and
//     item-item Pearson correlation over ratings
//
// All computations are pure functions (or immutable fitted models) over
// the slices passed in; nothing here holds references to its inputs
// after returning, so results are safe to cache.
package algorithms
