// Cinelens - MovieLens Matrix Factorization Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinelens

package validation

// PredictRequest carries the two selections of a prediction. Either may be
// absent; the session answers that with its own message rather than an error.
type PredictRequest struct {
	User  *int `query:"user" validate:"omitempty,gt=0"`
	Movie *int `query:"movie" validate:"omitempty,gt=0"`
}

// MoviesRequest lists or searches the catalog.
type MoviesRequest struct {
	Query string `query:"q" validate:"omitempty,max=100,nocontrol"`
	Limit int    `query:"limit" validate:"min=1,max=2000"`
}

// RunsRequest lists training history.
type RunsRequest struct {
	Limit int `query:"limit" validate:"min=1,max=100"`
}

// RunRequest fetches one training run.
type RunRequest struct {
	ID string `query:"id" validate:"required,uuid"`
}
