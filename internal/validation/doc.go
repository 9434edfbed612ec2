// Cinelens - MovieLens Matrix Factorization Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinelens

// Package validation validates API requests with go-playground/validator v10.
//
// A single validator instance is built on first use and shared; it caches
// struct metadata and is safe for concurrent use. Field names in messages
// come from the query or json tag, so a failure on PredictRequest.User
// reads "user must be greater than 0".
//
// Custom rules:
//   - nocontrol: the string contains no control characters
//
// Usage:
//
//	req := validation.RunsRequest{Limit: limit}
//	if err := validation.ValidateStruct(&req); err != nil {
//	    apiErr := err.ToAPIError()
//	    respondError(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
//	    return
//	}
package validation
