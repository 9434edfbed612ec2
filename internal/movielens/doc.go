// Cinelens - MovieLens Matrix Factorization Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinelens

// Package movielens reads the MovieLens 100K catalog (u.item) and ratings
// (u.data) and builds the dense index spaces the factorization model trains on.
//
// # File Formats
//
// u.item is pipe-delimited; field 0 is the movie ID and field 1 the title,
// usually suffixed with the release year:
//
//	242|Kolya (1996)|24-Jan-1997||http://us.imdb.com/M/title-exact?Kolya%20(1996)|0|0|...
//
// u.data is whitespace-delimited: user ID, movie ID, rating, timestamp.
// The timestamp is ignored.
//
//	196	242	3	881250949
//
// # Malformed Lines
//
// Parsing runs under a MalformedPolicy. MalformedSkip drops bad lines and
// counts them in the ParseReport; MalformedStrict stops at the first bad line
// with a *ParseError naming the file and line number.
//
// # Indexes
//
// BuildUserIndex and BuildMovieIndex collect distinct native IDs, sort them
// ascending and assign dense positions 0..N-1. The result depends only on the
// set of IDs, never on input order.
//
// # Loading
//
// Load fetches both files concurrently from local paths or http(s) URLs,
// waits for both, then parses them and applies the OrphanPolicy to ratings
// whose movie is missing from the catalog.
package movielens
