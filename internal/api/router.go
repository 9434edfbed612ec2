// Cinelens - MovieLens Matrix Factorization Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinelens

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/cinelens/internal/middleware"
)

// Router assembles the HTTP routes.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
	opLimiter     *middleware.OperationLimiter
}

// NewRouter creates a Router. A nil opLimiter leaves load and train unthrottled
// beyond the per-IP limit.
func NewRouter(handler *Handler, mw *ChiMiddleware, opLimiter *middleware.OperationLimiter) *Router {
	if mw == nil {
		mw = NewChiMiddleware(nil)
	}
	return &Router{handler: handler, chiMiddleware: mw, opLimiter: opLimiter}
}

// Setup returns the root handler.
//
//	GET  /api/v1/health
//	GET  /api/v1/status
//	POST /api/v1/load          ?wait=true
//	POST /api/v1/train         ?wait=true
//	GET  /api/v1/users
//	GET  /api/v1/movies        ?q= &limit=
//	GET  /api/v1/predict       ?user= &movie=
//	GET  /api/v1/runs          ?limit=
//	GET  /api/v1/runs/{id}
//	GET  /api/v1/models
//	GET  /api/v1/ws
//	GET  /metrics
func (router *Router) Setup() http.Handler {
	h := router.handler
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(APISecurityHeaders())
		r.Use(middleware.PrometheusMetrics)

		r.With(router.chiMiddleware.RateLimitHealth()).Get("/health", h.Health)

		r.Group(func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimit())

			// The progress stream is long-lived and must not be compressed.
			r.Get("/ws", h.WebSocket)

			r.Group(func(r chi.Router) {
				r.Use(chimiddleware.Compress(5, "application/json"))

				r.Get("/status", h.Status)
				r.Get("/users", h.Users)
				r.Get("/movies", h.Movies)
				r.Get("/predict", h.Predict)
				r.Get("/runs", h.Runs)
				r.Get("/runs/{id}", h.Run)
				r.Get("/models", h.Models)
			})

			r.Group(func(r chi.Router) {
				if router.opLimiter != nil {
					r.Use(router.opLimiter.Middleware)
				}
				r.Post("/load", h.Load)
				r.Post("/train", h.Train)
			})
		})
	})

	r.Handle("/metrics", promhttp.Handler())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusNotFound, CodeNotFound, "no route for "+r.Method+" "+r.URL.Path, nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", r.Method+" is not allowed on "+r.URL.Path, nil)
	})

	return r
}
