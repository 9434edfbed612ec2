// Cinelens - MovieLens Matrix Factorization Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinelens

package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/tomtom215/cinelens/internal/models"
)

// idleLimiterTTL is how long an unused client limiter is kept.
const idleLimiterTTL = time.Hour

// OperationLimiter throttles expensive operations (dataset loads and training
// runs) per client with a token bucket per client IP.
type OperationLimiter struct {
	limiters map[string]*limiterEntry
	mu       sync.Mutex
	every    time.Duration
	burst    int
	now      func() time.Time
}

type limiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// NewOperationLimiter allows one operation every interval per client, with
// up to burst operations back to back. A non-positive interval disables it.
func NewOperationLimiter(interval time.Duration, burst int) *OperationLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &OperationLimiter{
		limiters: make(map[string]*limiterEntry),
		every:    interval,
		burst:    burst,
		now:      time.Now,
	}
}

// Allow reports whether client may start an operation now. When it may not,
// retryAfter is the wait until the next token.
func (l *OperationLimiter) Allow(client string) (ok bool, retryAfter time.Duration) {
	if l.every <= 0 {
		return true, 0
	}

	l.mu.Lock()
	now := l.now()
	entry, exists := l.limiters[client]
	if !exists {
		entry = &limiterEntry{limiter: rate.NewLimiter(rate.Every(l.every), l.burst)}
		l.limiters[client] = entry
	}
	entry.lastAccess = now
	limiter := entry.limiter
	l.mu.Unlock()

	r := limiter.ReserveN(now, 1)
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// Cleanup drops limiters idle for longer than an hour and returns how many
// were removed.
func (l *OperationLimiter) Cleanup() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	threshold := l.now().Add(-idleLimiterTTL)
	removed := 0
	for client, entry := range l.limiters {
		if entry.lastAccess.Before(threshold) {
			delete(l.limiters, client)
			removed++
		}
	}
	return removed
}

// Middleware rejects requests over the limit with 429 and a Retry-After header.
func (l *OperationLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, retryAfter := l.Allow(clientKey(r))
		if ok {
			next.ServeHTTP(w, r)
			return
		}

		seconds := int(retryAfter.Round(time.Second) / time.Second)
		if seconds < 1 {
			seconds = 1
		}
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)

		body, err := json.Marshal(&models.APIResponse{
			Status:   models.StatusError,
			Metadata: models.Metadata{Timestamp: time.Now()},
			Error: &models.APIError{
				Code:    "RATE_LIMIT_EXCEEDED",
				Message: "Too many load or train requests, retry later",
				Details: map[string]interface{}{"retry_after_seconds": seconds},
			},
		})
		if err != nil {
			return
		}
		_, _ = w.Write(body)
	})
}

// clientKey is the host part of RemoteAddr. chi's RealIP middleware runs
// first when the server sits behind a proxy.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
