// Cinelens - MovieLens Matrix Factorization Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinelens

/*
Package models defines the JSON shapes of the HTTP API.

Every endpoint answers with an APIResponse envelope whose status is either
"success" with a data payload or "error" with an APIError. Domain payloads
such as predictions, session status and training runs are defined by the
packages that own them (recommend, history, storage) and travel in Data.
*/
package models
