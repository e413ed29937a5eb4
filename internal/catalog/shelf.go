// Bookrec - Reading Community Book Recommendation Service
// Copyright 2026 Bookrec Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package catalog

import "fmt"

// Shelf identifies one of the fixed user-book relations. Mutations are
// dispatched through an explicit switch on this type, never through
// name-based reflection.
type Shelf string

const (
	ShelfFavourite  Shelf = "favourite"
	ShelfReadingNow Shelf = "reading_now"
	ShelfToRead     Shelf = "to_read"
	ShelfHaveRead   Shelf = "have_read"
)

// Shelves lists all valid shelves in a fixed order.
var Shelves = []Shelf{ShelfFavourite, ShelfReadingNow, ShelfToRead, ShelfHaveRead}

// ParseShelf converts a route/request value into a Shelf.
func ParseShelf(s string) (Shelf, error) {
	switch Shelf(s) {
	case ShelfFavourite, ShelfReadingNow, ShelfToRead, ShelfHaveRead:
		return Shelf(s), nil
	default:
		return "", fmt.Errorf("catalog: unknown shelf %q", s)
	}
}

// ShelfOp is a shelf mutation.
type ShelfOp int

const (
	ShelfAdd ShelfOp = iota
	ShelfRemove
)

// String returns a human-readable operation name.
func (op ShelfOp) String() string {
	switch op {
	case ShelfAdd:
		return "add"
	case ShelfRemove:
		return "remove"
	default:
		return "unknown"
	}
}
