// Cinelens - MovieLens Matrix Factorization Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinelens

package recommend

import "errors"

var (
	// ErrNotReady is returned by Predict when no trained model is available
	// or a training run is in progress.
	ErrNotReady = errors.New("model not ready")

	// ErrMissingSelection is returned by Predict when the user or movie is not chosen.
	ErrMissingSelection = errors.New("user and movie must both be selected")

	// ErrUnknownUser is returned when a user ID has no rating in the loaded dataset.
	ErrUnknownUser = errors.New("unknown user")

	// ErrUnknownMovie is returned when a movie ID is not in the loaded catalog.
	ErrUnknownMovie = errors.New("unknown movie")

	// ErrBusy is returned when a load or train is requested while one is running.
	ErrBusy = errors.New("session busy")

	// ErrNotLoaded is returned when an operation needs a dataset and none is loaded.
	ErrNotLoaded = errors.New("dataset not loaded")

	// ErrIndexOutOfRange is returned by Model.Predict for indices outside the tables.
	ErrIndexOutOfRange = errors.New("embedding index out of range")

	// ErrNoTrainingData is returned when the split leaves no rows to fit.
	ErrNoTrainingData = errors.New("no training rows")

	// ErrSnapshotMismatch is returned when a stored model does not fit the loaded dataset.
	ErrSnapshotMismatch = errors.New("model snapshot does not match dataset")
)
