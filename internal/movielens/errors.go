// Cinelens - MovieLens Matrix Factorization Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinelens

package movielens

import (
	"errors"
	"fmt"
)

// ErrOrphanRatings is returned by Load under OrphanReject when ratings
// reference movies that are not in the catalog.
var ErrOrphanRatings = errors.New("ratings reference movies missing from the catalog")

// ParseError describes the first malformed line found under MalformedStrict.
type ParseError struct {
	File   string
	Line   int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s line %d: %s", e.File, e.Line, e.Reason)
}

// FetchError reports a non-success HTTP status for one of the dataset files.
type FetchError struct {
	// What is "Movies" or "Ratings".
	What       string
	StatusCode int
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s fetch failed: %d", e.What, e.StatusCode)
}
