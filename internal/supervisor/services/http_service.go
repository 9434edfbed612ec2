// Cinelens - MovieLens Matrix Factorization Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinelens

package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const defaultShutdownTimeout = 10 * time.Second

// HTTPServer is the lifecycle half of *http.Server.
type HTTPServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// HTTPServerService runs an HTTP server under supervision.
//
// Serve returns the listener error when the server dies on its own, so the
// supervisor restarts it. On cancellation the server is given shutdownTimeout
// to drain connections, and the stop hooks run after it stopped accepting.
type HTTPServerService struct {
	server          HTTPServer
	shutdownTimeout time.Duration
	onStop          []func(ctx context.Context) error
}

// NewHTTPServerService wraps server. A non-positive shutdownTimeout means 10s.
func NewHTTPServerService(server HTTPServer, shutdownTimeout time.Duration) *HTTPServerService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = defaultShutdownTimeout
	}
	return &HTTPServerService{server: server, shutdownTimeout: shutdownTimeout}
}

// OnStop registers fn to run during graceful shutdown, after the server
// stopped accepting requests and within the same timeout. The API handler
// uses it to cancel background load and train operations.
func (h *HTTPServerService) OnStop(fn func(ctx context.Context) error) *HTTPServerService {
	h.onStop = append(h.onStop, fn)
	return h
}

// Serve implements suture.Service.
func (h *HTTPServerService) Serve(ctx context.Context) error {
	done := make(chan error, 1)
	go func() {
		err := h.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	// ctx is already canceled; shutdown gets a fresh deadline.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), h.shutdownTimeout)
	defer cancel()

	var errs []error
	if err := h.server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("http server shutdown failed: %w", err))
	}
	<-done
	for _, fn := range h.onStop {
		if err := fn(shutdownCtx); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return ctx.Err()
}

func (h *HTTPServerService) String() string {
	return "http-server"
}
