// Cinelens - MovieLens Matrix Factorization Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinelens

package movielens

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/encoding/charmap"

	"github.com/tomtom215/cinelens/internal/logging"
	"github.com/tomtom215/cinelens/internal/metrics"
)

// OrphanPolicy decides what happens to ratings whose movie ID is not in the catalog.
type OrphanPolicy string

const (
	// OrphanDrop removes such ratings at ingestion and counts them.
	OrphanDrop OrphanPolicy = "drop"

	// OrphanReject fails the load with ErrOrphanRatings.
	OrphanReject OrphanPolicy = "reject"
)

// ParseOrphanPolicy converts a configuration string to an OrphanPolicy.
func ParseOrphanPolicy(s string) (OrphanPolicy, error) {
	switch OrphanPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case OrphanDrop, "":
		return OrphanDrop, nil
	case OrphanReject:
		return OrphanReject, nil
	default:
		return "", fmt.Errorf("unknown orphan rating policy %q", s)
	}
}

// LoadOptions configures Load.
type LoadOptions struct {
	MoviesSource  string
	RatingsSource string
	Malformed     MalformedPolicy
	Orphans       OrphanPolicy

	// Latin1Movies decodes u.item from ISO-8859-1, the encoding MovieLens 100K uses.
	Latin1Movies bool
}

// Dataset is an immutable snapshot of a loaded MovieLens dataset.
type Dataset struct {
	Movies  []Movie
	Ratings []Rating

	Users      *Index
	MovieIndex *Index

	MoviesReport   ParseReport
	RatingsReport  ParseReport
	OrphansDropped int

	byID map[int]int
}

// Summary holds the counts reported after a load.
type Summary struct {
	MovieCount     int `json:"movie_count"`
	RatingCount    int `json:"rating_count"`
	UserCount      int `json:"user_count"`
	SkippedMovies  int `json:"skipped_movie_lines"`
	SkippedRatings int `json:"skipped_rating_lines"`
	OrphansDropped int `json:"orphan_ratings_dropped"`
}

// NewDataset indexes parsed records and applies the orphan policy.
// Both indexes are built after orphan ratings are removed.
func NewDataset(movies []Movie, ratings []Rating, orphans OrphanPolicy) (*Dataset, error) {
	byID := make(map[int]int, len(movies))
	for i, m := range movies {
		if _, dup := byID[m.ID]; !dup {
			byID[m.ID] = i
		}
	}

	kept := make([]Rating, 0, len(ratings))
	dropped := 0
	for i, r := range ratings {
		if _, ok := byID[r.MovieID]; ok {
			kept = append(kept, r)
			continue
		}
		if orphans == OrphanReject {
			return nil, fmt.Errorf("%w: movie %d (rating %d)", ErrOrphanRatings, r.MovieID, i+1)
		}
		dropped++
	}

	return &Dataset{
		Movies:         movies,
		Ratings:        kept,
		Users:          BuildUserIndex(kept),
		MovieIndex:     BuildMovieIndex(movies),
		OrphansDropped: dropped,
		byID:           byID,
	}, nil
}

// Movie returns the first catalog entry with the given ID.
func (d *Dataset) Movie(id int) (Movie, bool) {
	i, ok := d.byID[id]
	if !ok {
		return Movie{}, false
	}
	return d.Movies[i], true
}

// Summary returns the load counts.
func (d *Dataset) Summary() Summary {
	return Summary{
		MovieCount:     len(d.Movies),
		RatingCount:    len(d.Ratings),
		UserCount:      d.Users.Len(),
		SkippedMovies:  d.MoviesReport.Skipped,
		SkippedRatings: d.RatingsReport.Skipped,
		OrphansDropped: d.OrphansDropped,
	}
}

// Load fetches both dataset files concurrently, waits for both, then parses
// and indexes them. Any fetch or parse failure aborts the whole load.
func Load(ctx context.Context, fetcher *Fetcher, opts LoadOptions) (*Dataset, error) {
	var movieData, ratingData []byte

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		movieData, err = fetcher.Fetch(gctx, "Movies", opts.MoviesSource)
		return err
	})
	g.Go(func() error {
		var err error
		ratingData, err = fetcher.Fetch(gctx, "Ratings", opts.RatingsSource)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var movieReader io.Reader = bytes.NewReader(movieData)
	if opts.Latin1Movies {
		movieReader = charmap.ISO8859_1.NewDecoder().Reader(movieReader)
	}

	movies, moviesReport, err := ParseMovies(movieReader, opts.Malformed)
	if err != nil {
		return nil, fmt.Errorf("parse movies: %w", err)
	}
	ratings, ratingsReport, err := ParseRatings(bytes.NewReader(ratingData), opts.Malformed)
	if err != nil {
		return nil, fmt.Errorf("parse ratings: %w", err)
	}

	ds, err := NewDataset(movies, ratings, opts.Orphans)
	if err != nil {
		return nil, err
	}
	ds.MoviesReport = moviesReport
	ds.RatingsReport = ratingsReport

	metrics.DatasetSkippedLines.WithLabelValues("movies").Add(float64(moviesReport.Skipped))
	metrics.DatasetSkippedLines.WithLabelValues("ratings").Add(float64(ratingsReport.Skipped))
	metrics.OrphanRatingsDropped.Add(float64(ds.OrphansDropped))

	if moviesReport.Skipped > 0 || ratingsReport.Skipped > 0 {
		logging.Warn().
			Int("movie_lines_skipped", moviesReport.Skipped).
			Int("rating_lines_skipped", ratingsReport.Skipped).
			Ints("first_skipped_rating_lines", ratingsReport.SkippedLines).
			Msg("Skipped malformed dataset lines")
	}
	if ds.OrphansDropped > 0 {
		logging.Warn().
			Int("dropped", ds.OrphansDropped).
			Msg("Dropped ratings for movies missing from the catalog")
	}

	return ds, nil
}
