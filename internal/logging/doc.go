// Cinelens - MovieLens Matrix Factorization Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinelens

// Package logging provides the zerolog-based structured logging used across Cinelens.
//
// A global logger is configured once at startup:
//
//	logging.Init(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//
//	logging.Info().Int("ratings", n).Msg("Dataset loaded")
//	logging.Error().Err(err).Msg("Training failed")
//
// Training runs and HTTP requests carry correlation and request IDs in their
// context; logging.Ctx(ctx) returns a logger with those IDs attached.
//
// Two adapters let third-party libraries write into the same stream:
//
//   - SlogHandler, used by the suture supervisor through sutureslog
//   - WatermillAdapter, used by the progress event bus
//
// # Configuration
//
// Environment Variables:
//
//	LOG_LEVEL   - trace, debug, info, warn, error (default: info)
//	LOG_FORMAT  - json, console (default: json)
//	LOG_CALLER  - include caller file:line (default: false)
package logging
