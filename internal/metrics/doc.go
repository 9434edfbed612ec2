// Cinelens - MovieLens Matrix Factorization Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinelens

// Package metrics defines the Prometheus metrics exported on /metrics.
//
// Metrics are package-level collectors registered with the default registry
// through promauto. Helper functions group updates that always happen
// together, for example RecordEpoch after every training epoch.
//
// Metric families:
//
//   - cinelens_dataset_*: fetch latency, record counts, skipped lines
//   - cinelens_session_state, cinelens_training_*, cinelens_model_*
//   - cinelens_predictions_total and prediction cache hit/miss counters
//   - cinelens_api_*: request counts, latency, in-flight requests
//   - cinelens_websocket_*: progress stream clients and dropped messages
package metrics
