// Bookrec - Reading Community Book Recommendation Service
// Copyright 2026 Bookrec Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package algorithms

import (
	"math"

	"bookrec/internal/recommend"
)

// FavouritesNetwork recommends books favoured by users with similar
// taste. Each user is a binary vector over the catalog (1 where the
// user favourited the book); the requesting user's vector is compared
// against every user by cosine similarity, and each book accumulates
//
//	score(book) = sum over users of sim(user) * favourited(user, book)
//
// The requester's own favourites are zeroed so only new books surface,
// and books no similar user favourited are dropped. Ties keep corpus
// order. A non-positive userID (no authenticated user) or a user with
// no favourites yields an empty result.
func FavouritesNetwork(books []recommend.Book, pairs []recommend.FavouritePair, userID int64, limit int) []recommend.Scored {
	if userID <= 0 || len(books) == 0 || len(pairs) == 0 {
		return nil
	}

	bookRow := make(map[int64]int, len(books))
	for i, b := range books {
		bookRow[b.ID] = i
	}

	// Build each user's favourite set as a row of catalog indexes.
	userBooks := make(map[int64]map[int]struct{})
	for _, p := range pairs {
		row, ok := bookRow[p.BookID]
		if !ok {
			continue
		}
		set := userBooks[p.UserID]
		if set == nil {
			set = make(map[int]struct{})
			userBooks[p.UserID] = set
		}
		set[row] = struct{}{}
	}

	mine := userBooks[userID]
	if len(mine) == 0 {
		return nil
	}
	myNorm := math.Sqrt(float64(len(mine)))

	scores := make([]float64, len(books))
	for uid, theirs := range userBooks {
		if uid == userID {
			continue
		}
		var overlap float64
		for row := range mine {
			if _, ok := theirs[row]; ok {
				overlap++
			}
		}
		if overlap == 0 {
			continue
		}
		sim := overlap / (myNorm * math.Sqrt(float64(len(theirs))))
		for row := range theirs {
			scores[row] += sim
		}
	}
	for row := range mine {
		scores[row] = 0
	}

	var scored []recommend.Scored
	for i, score := range scores {
		if score > 0 {
			scored = append(scored, recommend.Scored{Book: books[i], Score: score})
		}
	}
	sortScoredDesc(scored)
	return topScored(scored, limit)
}
