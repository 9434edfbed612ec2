// Cinelens - MovieLens Matrix Factorization Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinelens

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/cinelens/internal/models"
	"github.com/tomtom215/cinelens/internal/recommend"
)

// Health reports liveness. A Failed session is reported as degraded but
// still answers 200, since the process can recover with a new load.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	st := h.session.Status()

	resp := models.HealthResponse{
		Status:        "healthy",
		State:         st.State.String(),
		Version:       h.version,
		UptimeSeconds: time.Since(h.startTime).Seconds(),
		ModelVersion:  st.ModelVersion,
	}
	if st.State == recommend.StateFailed {
		resp.Status = "degraded"
	}
	if h.wsHub != nil {
		resp.WSClients = h.wsHub.GetClientCount()
	}
	if h.breaker != nil {
		resp.FetchBreaker = h.breaker()
	}

	respondSuccess(w, http.StatusOK, resp, time.Time{})
}

// Status returns the session status.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, http.StatusOK, h.session.Status(), time.Time{})
}
