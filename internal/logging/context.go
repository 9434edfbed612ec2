// Cinelens - MovieLens Matrix Factorization Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinelens

package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type contextKey string

const (
	// correlationIDKey carries the ID shared by every log line of one training run.
	correlationIDKey contextKey = "correlation_id"

	// requestIDKey is the context key for HTTP request IDs.
	requestIDKey contextKey = "request_id"
)

// GenerateCorrelationID returns the first 8 characters of a UUID.
func GenerateCorrelationID() string {
	return uuid.New().String()[:8]
}

// GenerateRequestID creates a new unique request ID.
func GenerateRequestID() string {
	return uuid.New().String()
}

// ContextWithCorrelationID returns a new context with the given correlation ID.
func ContextWithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey, id)
}

// ContextWithNewCorrelationID returns a context with a newly generated correlation ID.
func ContextWithNewCorrelationID(ctx context.Context) context.Context {
	return ContextWithCorrelationID(ctx, GenerateCorrelationID())
}

// CorrelationIDFromContext retrieves the correlation ID from context.
// Returns empty string if not present.
func CorrelationIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(correlationIDKey).(string); ok {
		return id
	}
	return ""
}

// ContextWithRequestID returns a new context with the given request ID.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext retrieves the request ID from context.
// Returns empty string if not present.
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// Ctx returns the global logger with correlation_id and request_id taken from ctx.
//
//	logging.Ctx(ctx).Info().Msg("Processing request")
func Ctx(ctx context.Context) *zerolog.Logger {
	logger := WithContextIDs(ctx, Logger())
	return &logger
}

// WithContextIDs returns logger with the correlation_id and request_id
// carried by ctx, for components that keep their own logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func WithContextIDs(ctx context.Context, logger zerolog.Logger) zerolog.Logger {
	correlationID := CorrelationIDFromContext(ctx)
	requestID := RequestIDFromContext(ctx)
	if correlationID == "" && requestID == "" {
		return logger
	}

	logCtx := logger.With()
	if correlationID != "" {
		logCtx = logCtx.Str("correlation_id", correlationID)
	}
	if requestID != "" {
		logCtx = logCtx.Str("request_id", requestID)
	}
	return logCtx.Logger()
}

// WithComponent creates a child logger with a component field.
//
//	storeLogger := logging.WithComponent("model-store")
func WithComponent(component string) zerolog.Logger {
	return With().Str("component", component).Logger()
}
