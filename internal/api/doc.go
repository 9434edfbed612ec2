// Cinelens - MovieLens Matrix Factorization Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinelens

/*
Package api provides the HTTP API of Cinelens.

It exposes the recommender session over JSON: dataset loading, training,
the user and movie listings, rating prediction, training history, saved
model snapshots, and a WebSocket stream of state changes and per-epoch
progress.

Routes (all under /api/v1 except /metrics):

	GET  /health              liveness, session state, fetch breaker state
	GET  /status              session status with dataset summary and last epoch
	POST /load                reload the dataset (202, or 200 with ?wait=true)
	POST /train               train a new model (202, or 200 with ?wait=true)
	GET  /users               users that have ratings, ascending
	GET  /movies              catalog in file order; ?q= searches titles
	GET  /predict             ?user=&movie= predicted rating with band and text
	GET  /runs                training runs, newest first
	GET  /runs/{id}           one run with its epoch log
	GET  /models              saved model snapshots
	GET  /ws                  progress stream
	GET  /metrics             Prometheus metrics

Responses:

Every JSON endpoint answers with models.APIResponse. Errors carry a stable
code from the Code constants. Predict reports "not ready" (503) and "missing
selection" (400) with the prediction payload as data, so clients can show
its text directly.

Middleware:

Requests pass through request ID assignment, real IP extraction, panic
recovery, and CORS (go-chi/cors). API routes add per-IP rate limiting
(go-chi/httprate), security headers, and Prometheus request metrics. Load and
train additionally go through middleware.OperationLimiter, since each one
replaces the dataset or the model.
*/
package api
