// Cinelens - MovieLens Matrix Factorization Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinelens

// Package history records training runs in BadgerDB.
//
// Each run is stored as a JSON document under "run:<start nanos>:<id>",
// with "run_id:<id>" pointing at it. Epochs are appended as they finish,
// so an interrupted run still shows how far it got. With an empty path the
// database lives in memory and history is lost on restart.
package history
