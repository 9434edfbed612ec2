// Cinelens - MovieLens Matrix Factorization Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinelens

package api

import (
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/cinelens/internal/logging"
	ws "github.com/tomtom215/cinelens/internal/websocket"
)

// WebSocket upgrades to the progress stream. The first frame is the current
// session status; state changes and epochs follow as they happen.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	if h.wsHub == nil {
		respondError(w, r, http.StatusServiceUnavailable, CodeUnavailable, "progress stream unavailable", nil)
		return
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		h.logger.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := ws.NewClient(h.wsHub, conn)
	client.Enqueue(ws.Message{Type: ws.MessageTypeStatus, Data: h.session.Status()})

	// Register is not drained while the hub restarts under the supervisor.
	timer := time.NewTimer(h.wsRegisterTimeout)
	defer timer.Stop()
	select {
	case h.wsHub.Register <- client:
		client.Start()
	case <-r.Context().Done():
		_ = conn.Close()
	case <-timer.C:
		logger := logging.WithContextIDs(r.Context(), h.logger)
		logger.Warn().Msg("websocket hub not accepting clients, closing connection")
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "hub unavailable"),
			time.Now().Add(time.Second))
		_ = conn.Close()
	}
}

// checkWebSocketOrigin accepts requests without an Origin (non-browser
// clients) and browser requests from an allowed origin.
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if slices.Contains(h.origins, "*") || slices.Contains(h.origins, origin) {
		return true
	}
	h.logger.Warn().Str("origin", sanitizeLogValue(origin)).Msg("websocket connection rejected from unauthorized origin")
	return false
}
