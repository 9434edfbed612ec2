// Cinelens - MovieLens Matrix Factorization Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinelens

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/cinelens/internal/history"
	"github.com/tomtom215/cinelens/internal/recommend"
)

// Error codes.
const (
	CodeValidation       = "VALIDATION_ERROR"
	CodeNotReady         = "NOT_READY"
	CodeMissingSelection = "MISSING_SELECTION"
	CodeNotLoaded        = "NOT_LOADED"
	CodeBusy             = "BUSY"
	CodeUnknownUser      = "UNKNOWN_USER"
	CodeUnknownMovie     = "UNKNOWN_MOVIE"
	CodeNotFound         = "NOT_FOUND"
	CodeUnavailable      = "SERVICE_UNAVAILABLE"
	CodeRateLimited      = "RATE_LIMIT_EXCEEDED"
	CodeInternal         = "INTERNAL_ERROR"
)

// ErrFeatureDisabled is reported when an optional collaborator is not wired.
var ErrFeatureDisabled = errors.New("feature disabled")

// classifyError maps a domain error to an HTTP status and error code.
func classifyError(err error) (int, string) {
	switch {
	case errors.Is(err, recommend.ErrNotReady):
		return http.StatusServiceUnavailable, CodeNotReady
	case errors.Is(err, recommend.ErrMissingSelection):
		return http.StatusBadRequest, CodeMissingSelection
	case errors.Is(err, recommend.ErrNotLoaded):
		return http.StatusConflict, CodeNotLoaded
	case errors.Is(err, recommend.ErrBusy):
		return http.StatusConflict, CodeBusy
	case errors.Is(err, recommend.ErrUnknownUser):
		return http.StatusNotFound, CodeUnknownUser
	case errors.Is(err, recommend.ErrUnknownMovie):
		return http.StatusNotFound, CodeUnknownMovie
	case errors.Is(err, history.ErrRunNotFound):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, ErrFeatureDisabled):
		return http.StatusServiceUnavailable, CodeUnavailable
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}
