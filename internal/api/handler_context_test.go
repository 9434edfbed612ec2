// Cinelens - MovieLens Matrix Factorization Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinelens

package api

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cinelens/internal/logging"
	"github.com/tomtom215/cinelens/internal/middleware"
)

// lockedBuffer is a log sink safe for concurrent writers.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// captureLogs routes the global logger into a buffer until the test ends.
func captureLogs(t *testing.T) *lockedBuffer {
	t.Helper()
	buf := &lockedBuffer{}
	prev := logging.Logger()
	logging.SetLogger(zerolog.New(buf))
	t.Cleanup(func() { logging.SetLogger(prev) })
	return buf
}

// logLine returns the first captured line containing msg.
func logLine(buf *lockedBuffer, msg string) string {
	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.Contains(line, msg) {
			return line
		}
	}
	return ""
}

// Not parallel: swaps the global logger.
func TestRequestIDsReachLogs(t *testing.T) {
	buf := captureLogs(t)

	t.Run("error response", func(t *testing.T) {
		session := newFakeSession()
		session.loadErr = errors.New("Ratings fetch failed: 503")
		h := newTestHandler(t, session, HandlerOptions{})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/load?wait=true", nil)
		req.Header.Set(middleware.RequestIDHeader, "req-load-1")
		w := httptest.NewRecorder()
		middleware.RequestID(http.HandlerFunc(h.Load)).ServeHTTP(w, req)

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("status = %d, want 500", w.Code)
		}
		if got := session.lastRequestID(); got != "req-load-1" {
			t.Errorf("session saw request ID %q, want req-load-1", got)
		}
		line := logLine(buf, "Ratings fetch failed: 503")
		if !strings.Contains(line, `"request_id":"req-load-1"`) || !strings.Contains(line, `"correlation_id"`) {
			t.Errorf("API error log lacks request IDs: %q", line)
		}
	})

	t.Run("background operation", func(t *testing.T) {
		session := loadedSession()
		session.trainErr = errors.New("train diverged")
		h := newTestHandler(t, session, HandlerOptions{})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/train", nil)
		req.Header.Set(middleware.RequestIDHeader, "req-train-7")
		w := httptest.NewRecorder()
		middleware.RequestID(http.HandlerFunc(h.Train)).ServeHTTP(w, req)

		if w.Code != http.StatusAccepted {
			t.Fatalf("status = %d, want 202", w.Code)
		}
		waitFor(t, func() bool { return logLine(buf, "train diverged") != "" })

		line := logLine(buf, "train diverged")
		if !strings.Contains(line, `"request_id":"req-train-7"`) {
			t.Errorf("background log lacks request_id: %q", line)
		}
		if !strings.Contains(line, `"operation":"train"`) {
			t.Errorf("background log lacks operation: %q", line)
		}
		if got := session.lastRequestID(); got != "req-train-7" {
			t.Errorf("session saw request ID %q, want req-train-7", got)
		}
	})
}

func TestOperationsRefusedAfterShutdown(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		target string
		call   func(h *Handler) http.HandlerFunc
	}{
		{name: "load", target: "/api/v1/load", call: func(h *Handler) http.HandlerFunc { return h.Load }},
		{name: "load wait", target: "/api/v1/load?wait=true", call: func(h *Handler) http.HandlerFunc { return h.Load }},
		{name: "train", target: "/api/v1/train", call: func(h *Handler) http.HandlerFunc { return h.Train }},
		{name: "train wait", target: "/api/v1/train?wait=true", call: func(h *Handler) http.HandlerFunc { return h.Train }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			session := loadedSession()
			h := newTestHandler(t, session, HandlerOptions{})

			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if err := h.Shutdown(ctx); err != nil {
				t.Fatalf("Shutdown() error = %v", err)
			}

			w := httptest.NewRecorder()
			tt.call(h)(w, httptest.NewRequest(http.MethodPost, tt.target, nil))

			if w.Code != http.StatusServiceUnavailable {
				t.Fatalf("status = %d, want 503", w.Code)
			}
			if w.Header().Get("Retry-After") == "" {
				t.Error("missing Retry-After header")
			}
			if env := decodeEnvelope(t, w); env.Error == nil || env.Error.Code != CodeUnavailable {
				t.Errorf("error = %+v, want %s", env.Error, CodeUnavailable)
			}
			if session.loads.Load() != 0 || session.trains.Load() != 0 {
				t.Error("no operation may start after shutdown")
			}
		})
	}
}
