// Cinelens - MovieLens Matrix Factorization Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinelens

package movielens

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

const testItems = "1|Toy Story (1995)|01-Jan-1995\n2|GoldenEye (1995)|01-Jan-1995\n3|Four Rooms (1995)|01-Jan-1995\n"

const testRatings = "196\t1\t3\t881250949\n186\t2\t3\t891717742\n22\t1\t1\t878887116\n244\t3\t2\t880606923\n"

func TestNewDataset_OrphanPolicies(t *testing.T) {
	t.Parallel()

	movies := []Movie{{ID: 1, Title: "Toy Story"}, {ID: 2, Title: "GoldenEye"}}
	ratings := []Rating{
		{UserID: 10, MovieID: 1, Rating: 4},
		{UserID: 11, MovieID: 99, Rating: 5},
		{UserID: 12, MovieID: 2, Rating: 3},
	}

	t.Run("drop", func(t *testing.T) {
		t.Parallel()

		ds, err := NewDataset(movies, ratings, OrphanDrop)
		if err != nil {
			t.Fatalf("NewDataset() error = %v", err)
		}
		if ds.OrphansDropped != 1 || len(ds.Ratings) != 2 {
			t.Errorf("dropped %d, kept %d; want 1 and 2", ds.OrphansDropped, len(ds.Ratings))
		}
		if _, ok := ds.Users.Lookup(11); ok {
			t.Error("user with only orphan ratings should not be indexed")
		}
		if ds.Users.Len() != 2 || ds.MovieIndex.Len() != 2 {
			t.Errorf("users=%d movies=%d, want 2 and 2", ds.Users.Len(), ds.MovieIndex.Len())
		}
	})

	t.Run("reject", func(t *testing.T) {
		t.Parallel()

		_, err := NewDataset(movies, ratings, OrphanReject)
		if !errors.Is(err, ErrOrphanRatings) {
			t.Fatalf("NewDataset() error = %v, want ErrOrphanRatings", err)
		}
		if !strings.Contains(err.Error(), "movie 99") {
			t.Errorf("error %q should name the missing movie", err)
		}
	})
}

func TestDataset_Movie(t *testing.T) {
	t.Parallel()

	year := 1995
	ds, err := NewDataset([]Movie{
		{ID: 5, Title: "Copycat", Year: &year},
		{ID: 5, Title: "Copycat duplicate"},
	}, nil, OrphanDrop)
	if err != nil {
		t.Fatalf("NewDataset() error = %v", err)
	}

	m, ok := ds.Movie(5)
	if !ok || m.Title != "Copycat" {
		t.Errorf("Movie(5) = %+v, %v; want first catalog entry", m, ok)
	}
	if m.DisplayTitle() != "Copycat (1995)" {
		t.Errorf("DisplayTitle() = %q, want %q", m.DisplayTitle(), "Copycat (1995)")
	}
	if _, ok := ds.Movie(6); ok {
		t.Error("Movie(6) should be missing")
	}
}

func writeDataset(t *testing.T, items, ratings string) (string, string) {
	t.Helper()

	dir := t.TempDir()
	itemPath := filepath.Join(dir, "u.item")
	dataPath := filepath.Join(dir, "u.data")
	if err := os.WriteFile(itemPath, []byte(items), 0o600); err != nil {
		t.Fatalf("write u.item: %v", err)
	}
	if err := os.WriteFile(dataPath, []byte(ratings), 0o600); err != nil {
		t.Fatalf("write u.data: %v", err)
	}
	return itemPath, dataPath
}

func TestLoad_LocalFiles(t *testing.T) {
	t.Parallel()

	itemPath, dataPath := writeDataset(t, testItems+"garbage\n", testRatings)

	ds, err := Load(context.Background(), NewFetcher(time.Second), LoadOptions{
		MoviesSource:  itemPath,
		RatingsSource: dataPath,
		Malformed:     MalformedSkip,
		Orphans:       OrphanDrop,
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	s := ds.Summary()
	if s.MovieCount != 3 || s.RatingCount != 4 || s.UserCount != 4 {
		t.Errorf("Summary() = %+v, want 3 movies, 4 ratings, 4 users", s)
	}
	if s.SkippedMovies != 1 {
		t.Errorf("SkippedMovies = %d, want 1", s.SkippedMovies)
	}
}

func TestLoad_StrictPolicyFails(t *testing.T) {
	t.Parallel()

	itemPath, dataPath := writeDataset(t, testItems, testRatings+"1 2\n")

	_, err := Load(context.Background(), NewFetcher(time.Second), LoadOptions{
		MoviesSource:  itemPath,
		RatingsSource: dataPath,
		Malformed:     MalformedStrict,
		Orphans:       OrphanDrop,
	})
	var pe *ParseError
	if !errors.As(err, &pe) || pe.Line != 5 {
		t.Fatalf("Load() error = %v, want *ParseError at line 5", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, dataPath := writeDataset(t, testItems, testRatings)

	_, err := Load(context.Background(), NewFetcher(time.Second), LoadOptions{
		MoviesSource:  filepath.Join(t.TempDir(), "missing.item"),
		RatingsSource: dataPath,
	})
	if err == nil || !strings.HasPrefix(err.Error(), "Movies fetch failed") {
		t.Fatalf("Load() error = %v, want Movies fetch failure", err)
	}
}

func TestLoad_HTTP(t *testing.T) {
	t.Parallel()

	// "Kolya" spelled with a Latin-1 e-acute to exercise decoding.
	latin1Items := testItems + "242|Koly\xe9 (1996)|24-Jan-1997\n"

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/u.item":
			_, _ = w.Write([]byte(latin1Items))
		case "/u.data":
			_, _ = w.Write([]byte(testRatings))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	ds, err := Load(context.Background(), NewFetcher(5*time.Second), LoadOptions{
		MoviesSource:  srv.URL + "/u.item",
		RatingsSource: srv.URL + "/u.data",
		Malformed:     MalformedStrict,
		Orphans:       OrphanReject,
		Latin1Movies:  true,
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	m, ok := ds.Movie(242)
	if !ok || m.Title != "Kolyé" || m.Year == nil || *m.Year != 1996 {
		t.Errorf("Movie(242) = %+v, want decoded title Kolyé (1996)", m)
	}
}

func TestLoad_HTTPStatusFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/u.data" {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(testItems))
	}))
	defer srv.Close()

	_, err := Load(context.Background(), NewFetcher(5*time.Second), LoadOptions{
		MoviesSource:  srv.URL + "/u.item",
		RatingsSource: srv.URL + "/u.data",
	})

	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("Load() error = %v, want *FetchError", err)
	}
	if err.Error() != "Ratings fetch failed: 503" {
		t.Errorf("error = %q, want %q", err.Error(), "Ratings fetch failed: 503")
	}
}

func TestFetcher_BreakerOpensAfterRepeatedFailures(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := NewFetcher(time.Second)
	for i := 0; i < 5; i++ {
		_, _ = f.Fetch(context.Background(), "Movies", srv.URL+"/u.item")
	}

	if n := hits.Load(); n != 3 {
		t.Errorf("server saw %d requests, want 3 before the breaker opened", n)
	}
	if f.State() != "open" {
		t.Errorf("State() = %q, want open", f.State())
	}
}
