// Cinelens - MovieLens Matrix Factorization Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinelens

// Package recommend trains and serves a matrix factorization model for
// MovieLens ratings.
//
// # Architecture
//
// The package has three layers:
//
//   - Model: two embedding tables and a dot product, with no bias terms
//     and no output activation
//   - Trainer: mini-batch Adam on mean squared error, with a trailing
//     validation split used only for monitoring
//   - Session: the lifecycle state machine that loads a dataset, trains,
//     and answers predictions
//
// # Lifecycle
//
// A Session moves through Idle, Loading, Training, Ready and Failed:
//
//	Idle --Load--> Loading --ok--> Idle --Train--> Training --ok--> Ready
//	                  |                               |
//	                  +------------error--------------+--> Failed
//
// Load and Train return ErrBusy while either is running. Predict answers
// only in Ready and returns ErrNotReady otherwise, without touching the
// model.
//
// # Predictions
//
// Raw dot products are clamped into [1, 5] and banded: high at 4 or more,
// low at 2 or less, medium otherwise. IDs missing from the loaded indexes
// yield ErrUnknownUser or ErrUnknownMovie.
//
// # Usage
//
//	cfg := recommend.DefaultConfig()
//	session, err := recommend.NewSession(cfg, loader, logger)
//	if err != nil {
//	    return err
//	}
//	if err := session.Start(ctx); err != nil {
//	    return err
//	}
//	p, err := session.Predict(&userID, &movieID)
//
// # Determinism
//
// Weight initialization and per-epoch shuffling derive from
// Config.Model.Seed, so equal seeds and inputs give equal models.
//
// # Thread Safety
//
// Session is safe for concurrent use. Transitions hold an internal mutex;
// fitting runs without it and publishes the finished model atomically.
// Observers are invoked synchronously and must not call back into
// Load or Train.
package recommend
