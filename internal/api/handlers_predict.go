// Cinelens - MovieLens Matrix Factorization Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinelens

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/tomtom215/cinelens/internal/models"
	"github.com/tomtom215/cinelens/internal/recommend"
	"github.com/tomtom215/cinelens/internal/validation"
)

// Predict scores ?user= and ?movie=.
//
// When the model is not ready or a selection is missing, the error response
// still carries the prediction payload, whose text is the message to show.
func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req validation.PredictRequest
	var err error
	if req.User, err = parseOptionalInt(r, "user"); err != nil {
		respondError(w, r, http.StatusBadRequest, CodeValidation, "user must be an integer", nil)
		return
	}
	if req.Movie, err = parseOptionalInt(r, "movie"); err != nil {
		respondError(w, r, http.StatusBadRequest, CodeValidation, "movie must be an integer", nil)
		return
	}
	if !validateRequest(w, &req) {
		return
	}

	p, err := h.session.Predict(req.User, req.Movie)
	switch {
	case err == nil:
		respondJSON(w, http.StatusOK, &models.APIResponse{
			Status: models.StatusSuccess,
			Data:   p,
			Metadata: models.Metadata{
				Timestamp:   time.Now(),
				QueryTimeMS: time.Since(start).Milliseconds(),
				Cached:      p.Cached,
			},
		})
	case errors.Is(err, recommend.ErrNotReady), errors.Is(err, recommend.ErrMissingSelection):
		status, code := classifyError(err)
		respondErrorData(w, r, status, code, p.Text, p, nil)
	default:
		respondDomainError(w, r, err)
	}
}
