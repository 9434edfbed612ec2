// Cinelens - MovieLens Matrix Factorization Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinelens

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/cinelens/internal/recommend/storage"
	"github.com/tomtom215/cinelens/internal/validation"
)

const defaultRunsLimit = 20

// Runs lists training runs, newest first.
func (h *Handler) Runs(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if h.history == nil {
		respondError(w, r, http.StatusServiceUnavailable, CodeUnavailable, "training history is not available", nil)
		return
	}

	req := validation.RunsRequest{Limit: getIntParam(r, "limit", defaultRunsLimit)}
	if !validateRequest(w, &req) {
		return
	}

	runs, err := h.history.List(r.Context(), req.Limit)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondList(w, runs, start)
}

// Run returns one training run with its per-epoch log.
func (h *Handler) Run(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if h.history == nil {
		respondError(w, r, http.StatusServiceUnavailable, CodeUnavailable, "training history is not available", nil)
		return
	}

	req := validation.RunRequest{ID: chi.URLParam(r, "id")}
	if !validateRequest(w, &req) {
		return
	}

	run, err := h.history.Get(r.Context(), req.ID)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, run, start)
}

// Models lists saved model snapshots, newest first. With snapshots disabled
// the list is empty.
func (h *Handler) Models(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if h.models == nil {
		respondList(w, []storage.Metadata{}, start)
		return
	}

	list, err := h.models.List(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondList(w, list, start)
}
