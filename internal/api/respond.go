// Cinelens - MovieLens Matrix Factorization Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinelens

package api

import (
	"hash/fnv"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/cinelens/internal/logging"
	"github.com/tomtom215/cinelens/internal/models"
	"github.com/tomtom215/cinelens/internal/validation"
)

// respondJSON writes response with an ETag. Cache-Control is no-store since
// every resource tracks live session state.
func respondJSON(w http.ResponseWriter, status int, response *models.APIResponse) {
	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("ETag", generateETag(data))
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

func generateETag(data []byte) string {
	h := fnv.New32a()
	_, _ = h.Write(data)
	return `"` + strconv.FormatUint(uint64(h.Sum32()), 16) + `"`
}

// respondSuccess writes a success envelope. start, when non-zero, fills
// query_time_ms.
func respondSuccess(w http.ResponseWriter, status int, data interface{}, start time.Time) {
	meta := models.Metadata{Timestamp: time.Now()}
	if !start.IsZero() {
		meta.QueryTimeMS = time.Since(start).Milliseconds()
	}
	respondJSON(w, status, &models.APIResponse{
		Status:   models.StatusSuccess,
		Data:     data,
		Metadata: meta,
	})
}

// respondList writes a success envelope carrying the item count.
func respondList[T any](w http.ResponseWriter, items []T, start time.Time) {
	if items == nil {
		items = []T{}
	}
	count := len(items)
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: models.StatusSuccess,
		Data:   items,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
			Count:       &count,
		},
	})
}

// respondError writes an error envelope. err, when given, is logged with the
// request's IDs.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, err error) {
	respondErrorData(w, r, status, code, message, nil, err)
}

func respondErrorData(w http.ResponseWriter, r *http.Request, status int, code, message string, data interface{}, err error) {
	if err != nil {
		logging.Ctx(r.Context()).Warn().
			Str("code", code).
			Str("path", r.URL.Path).
			Str("error", sanitizeLogValue(err.Error())).
			Msg("API error")
	}
	respondJSON(w, status, &models.APIResponse{
		Status:   models.StatusError,
		Data:     data,
		Metadata: models.Metadata{Timestamp: time.Now()},
		Error:    &models.APIError{Code: code, Message: message},
	})
}

// respondDomainError maps err through classifyError.
func respondDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classifyError(err)
	var logErr error
	if status >= http.StatusInternalServerError {
		logErr = err
	}
	respondError(w, r, status, code, err.Error(), logErr)
}

// validateRequest validates req and writes a 400 on failure.
func validateRequest(w http.ResponseWriter, req interface{}) bool {
	verr := validation.ValidateStruct(req)
	if verr == nil {
		return true
	}
	apiErr := verr.ToAPIError()
	respondJSON(w, http.StatusBadRequest, &models.APIResponse{
		Status:   models.StatusError,
		Metadata: models.Metadata{Timestamp: time.Now()},
		Error: &models.APIError{
			Code:    apiErr.Code,
			Message: apiErr.Message,
			Details: apiErr.Details,
		},
	})
	return false
}

// parseOptionalInt parses an integer query parameter. An absent or empty
// parameter yields nil.
func parseOptionalInt(r *http.Request, key string) (*int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// getIntParam returns an integer query parameter or defaultValue when the
// parameter is absent or malformed.
func getIntParam(r *http.Request, key string, defaultValue int) int {
	v, err := parseOptionalInt(r, key)
	if err != nil || v == nil {
		return defaultValue
	}
	return *v
}

// sanitizeLogValue strips line breaks so user input cannot forge log lines.
func sanitizeLogValue(s string) string {
	return strings.NewReplacer("\n", " ", "\r", " ").Replace(s)
}
