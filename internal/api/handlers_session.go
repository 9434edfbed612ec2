// Cinelens - MovieLens Matrix Factorization Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinelens

package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/tomtom215/cinelens/internal/models"
	"github.com/tomtom215/cinelens/internal/recommend"
)

// Load reloads the dataset. By default it answers 202 and loads in the
// background; with ?wait=true it answers 200 with the dataset summary once
// the load finished.
func (h *Handler) Load(w http.ResponseWriter, r *http.Request) {
	wait := wantWait(r)
	if !wait {
		if st := h.session.Status(); st.State.Busy() {
			respondError(w, r, http.StatusConflict, CodeBusy, recommend.ErrBusy.Error(), nil)
			return
		}
	}

	ctx, done, ok := h.beginOperation(r)
	if !ok {
		respondShuttingDown(w, r)
		return
	}

	if wait {
		defer done()
		start := time.Now()
		summary, err := h.session.Load(ctx)
		if err != nil {
			respondDomainError(w, r, err)
			return
		}
		respondSuccess(w, http.StatusOK, summary, start)
		return
	}

	h.background(ctx, done, "load", func(ctx context.Context) error {
		_, err := h.session.Load(ctx)
		return err
	})
	h.accepted(w, "load")
}

// Train starts a training run on the loaded dataset, in the background unless
// ?wait=true is given. A run that fails is reported through /status and the
// progress stream.
func (h *Handler) Train(w http.ResponseWriter, r *http.Request) {
	wait := wantWait(r)
	if !wait {
		st := h.session.Status()
		switch {
		case st.State.Busy():
			respondError(w, r, http.StatusConflict, CodeBusy, recommend.ErrBusy.Error(), nil)
			return
		case st.Dataset == nil:
			respondError(w, r, http.StatusConflict, CodeNotLoaded, recommend.ErrNotLoaded.Error(), nil)
			return
		}
	}

	ctx, done, ok := h.beginOperation(r)
	if !ok {
		respondShuttingDown(w, r)
		return
	}

	if wait {
		defer done()
		start := time.Now()
		if err := h.session.Train(ctx); err != nil {
			respondDomainError(w, r, err)
			return
		}
		respondSuccess(w, http.StatusOK, h.session.Status(), start)
		return
	}

	h.background(ctx, done, "train", h.session.Train)
	h.accepted(w, "train")
}

func respondShuttingDown(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Retry-After", "5")
	respondError(w, r, http.StatusServiceUnavailable, CodeUnavailable, "server is shutting down", nil)
}

func (h *Handler) accepted(w http.ResponseWriter, operation string) {
	respondSuccess(w, http.StatusAccepted, models.OperationResponse{
		Operation: operation,
		Accepted:  true,
		State:     h.session.Status().State.String(),
	}, time.Time{})
}

func wantWait(r *http.Request) bool {
	wait, err := strconv.ParseBool(r.URL.Query().Get("wait"))
	return err == nil && wait
}
