// Cinelens - MovieLens Matrix Factorization Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinelens

package movielens

import (
	"sort"
)

// Index is a bijection between sparse native IDs and dense positions [0, Len).
// Positions follow ascending native ID order. An Index is immutable.
type Index struct {
	ids []int
	pos map[int]int
}

// NewIndex builds an Index over the distinct values of ids.
func NewIndex(ids []int) *Index {
	seen := make(map[int]struct{}, len(ids))
	distinct := make([]int, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		distinct = append(distinct, id)
	}
	sort.Ints(distinct)

	pos := make(map[int]int, len(distinct))
	for i, id := range distinct {
		pos[id] = i
	}
	return &Index{ids: distinct, pos: pos}
}

// BuildUserIndex indexes the distinct user IDs found in ratings.
func BuildUserIndex(ratings []Rating) *Index {
	ids := make([]int, len(ratings))
	for i, r := range ratings {
		ids[i] = r.UserID
	}
	return NewIndex(ids)
}

// BuildMovieIndex indexes the distinct catalog movie IDs, so movies without
// ratings still get a position.
func BuildMovieIndex(movies []Movie) *Index {
	ids := make([]int, len(movies))
	for i, m := range movies {
		ids[i] = m.ID
	}
	return NewIndex(ids)
}

// Lookup returns the dense position of a native ID.
func (x *Index) Lookup(id int) (int, bool) {
	i, ok := x.pos[id]
	return i, ok
}

// ID returns the native ID at a dense position.
func (x *Index) ID(i int) (int, bool) {
	if i < 0 || i >= len(x.ids) {
		return 0, false
	}
	return x.ids[i], true
}

// Len returns the number of indexed IDs.
func (x *Index) Len() int {
	return len(x.ids)
}

// IDs returns a copy of the native IDs in dense order.
func (x *Index) IDs() []int {
	out := make([]int, len(x.ids))
	copy(out, x.ids)
	return out
}
