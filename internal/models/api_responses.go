// Cinelens - MovieLens Matrix Factorization Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinelens

package models

import (
	"time"
)

// Response status values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// APIResponse is the envelope of every JSON endpoint.
//
// Successful response:
//
//	{
//	  "status": "success",
//	  "data": {"user_id": 196, "movie_id": 242, "value": 3.91, "band": "medium", ...},
//	  "metadata": {"timestamp": "2026-01-05T12:00:00Z", "query_time_ms": 1}
//	}
//
// Error response:
//
//	{
//	  "status": "error",
//	  "data": null,
//	  "error": {"code": "UNKNOWN_USER", "message": "unknown user id: 9999"},
//	  "metadata": {"timestamp": "2026-01-05T12:00:00Z"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata describes how a response was produced.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
	Cached      bool      `json:"cached,omitempty"`
	Count       *int      `json:"count,omitempty"`
}

// APIError is a machine-readable error.
//
// Codes:
//   - VALIDATION_ERROR: malformed query parameters
//   - NOT_READY: no trained model is serving
//   - NOT_LOADED: training requested before a dataset was loaded
//   - BUSY: a load or training run is in progress
//   - UNKNOWN_USER, UNKNOWN_MOVIE: the id is not in the loaded dataset
//   - NOT_FOUND: the resource does not exist
//   - RATE_LIMIT_EXCEEDED: too many requests
//   - INTERNAL_ERROR: anything else
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	Status        string  `json:"status"` // "healthy" or "degraded"
	State         string  `json:"state"`
	Version       string  `json:"version"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	ModelVersion  int     `json:"model_version"`
	WSClients     int     `json:"ws_clients"`
	FetchBreaker  string  `json:"fetch_breaker,omitempty"`
}

// OperationResponse acknowledges an accepted load or train request.
type OperationResponse struct {
	Operation string `json:"operation"` // "load" or "train"
	Accepted  bool   `json:"accepted"`
	State     string `json:"state"`
}
