// Cinelens - MovieLens Matrix Factorization Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinelens

/*
Package middleware provides HTTP middleware for the API router.

All middleware has the chi signature func(http.Handler) http.Handler.

  - RequestID: X-Request-ID propagation into the logging context
  - PrometheusMetrics: request count, latency and in-flight gauge, labelled
    by chi route pattern
  - OperationLimiter: per-client token bucket (golang.org/x/time/rate) for
    dataset loads and training runs, which are far more expensive than any
    other request and are already limited per IP by httprate

Usage:

	limiter := middleware.NewOperationLimiter(30*time.Second, 2)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)
	r.With(limiter.Middleware).Post("/api/v1/train", h.Train)
*/
package middleware
