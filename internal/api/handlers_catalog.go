// Cinelens - MovieLens Matrix Factorization Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinelens

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/cinelens/internal/validation"
)

// Default and maximum sizes of the movies listing.
const (
	defaultSearchLimit = 10
	maxMoviesLimit     = 2000
)

// Users lists every user with at least one rating, ascending by ID.
func (h *Handler) Users(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	users, err := h.session.Users()
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondList(w, users, start)
}

// Movies lists the catalog in file order, or with ?q= the movies whose
// title has a word starting with q.
func (h *Handler) Movies(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	req := validation.MoviesRequest{
		Query: r.URL.Query().Get("q"),
		Limit: getIntParam(r, "limit", maxMoviesLimit),
	}
	if req.Query != "" && !r.URL.Query().Has("limit") {
		req.Limit = defaultSearchLimit
	}
	if !validateRequest(w, &req) {
		return
	}

	if req.Query != "" {
		movies, err := h.session.SearchMovies(req.Query, req.Limit)
		if err != nil {
			respondDomainError(w, r, err)
			return
		}
		respondList(w, movies, start)
		return
	}

	movies, err := h.session.Movies()
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	if len(movies) > req.Limit {
		movies = movies[:req.Limit]
	}
	respondList(w, movies, start)
}
