// Cinelens - MovieLens Matrix Factorization Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinelens

package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cinelens/internal/history"
	"github.com/tomtom215/cinelens/internal/logging"
	"github.com/tomtom215/cinelens/internal/movielens"
	"github.com/tomtom215/cinelens/internal/recommend"
	"github.com/tomtom215/cinelens/internal/recommend/storage"
	ws "github.com/tomtom215/cinelens/internal/websocket"
)

// Session is the recommender session the API drives.
type Session interface {
	Load(ctx context.Context) (movielens.Summary, error)
	Train(ctx context.Context) error
	Predict(userID, movieID *int) (recommend.Prediction, error)
	Status() recommend.Status
	Users() ([]recommend.Option, error)
	Movies() ([]recommend.Option, error)
	SearchMovies(query string, limit int) ([]recommend.Option, error)
}

// RunHistory serves persisted training runs.
type RunHistory interface {
	List(ctx context.Context, limit int) ([]history.Run, error)
	Get(ctx context.Context, id string) (*history.Run, error)
}

// ModelCatalog lists saved model snapshots.
type ModelCatalog interface {
	List(ctx context.Context) ([]storage.Metadata, error)
}

// HandlerOptions wires the optional collaborators of a Handler.
type HandlerOptions struct {
	// History serves /runs. Nil answers 503.
	History RunHistory

	// Models serves /models. Nil means snapshots are disabled and lists nothing.
	Models ModelCatalog

	// Hub serves /ws. Nil answers 503.
	Hub *ws.Hub

	// BreakerState reports the dataset fetch circuit breaker for /health.
	BreakerState func() string

	// AllowedOrigins are accepted WebSocket origins; "*" accepts any.
	AllowedOrigins []string

	// WSRegisterTimeout bounds how long an upgraded connection waits for the
	// hub to accept it. Defaults to 5s.
	WSRegisterTimeout time.Duration

	Version string
	Logger  zerolog.Logger
}

const defaultWSRegisterTimeout = 5 * time.Second

// Handler implements the HTTP endpoints.
//
// Load and train requests run on a context owned by the handler rather than
// the request, so a client disconnect does not abort them; Shutdown cancels
// that context and waits for the operations to unwind.
type Handler struct {
	session   Session
	history   RunHistory
	models    ModelCatalog
	wsHub     *ws.Hub
	breaker   func() string
	origins   []string
	version   string
	logger    zerolog.Logger
	startTime time.Time

	wsRegisterTimeout time.Duration

	opsMu     sync.Mutex // guards opsClosed and ops.Add against Shutdown
	opsClosed bool
	opsCtx    context.Context
	opsCancel context.CancelFunc
	ops       sync.WaitGroup
}

// NewHandler creates a Handler.
func NewHandler(session Session, opts HandlerOptions) *Handler {
	ctx, cancel := context.WithCancel(context.Background())
	version := opts.Version
	if version == "" {
		version = "dev"
	}
	registerTimeout := opts.WSRegisterTimeout
	if registerTimeout <= 0 {
		registerTimeout = defaultWSRegisterTimeout
	}
	return &Handler{
		session:   session,
		history:   opts.History,
		models:    opts.Models,
		wsHub:     opts.Hub,
		breaker:   opts.BreakerState,
		origins:   opts.AllowedOrigins,
		version:   version,
		logger:    opts.Logger.With().Str("component", "api").Logger(),
		startTime: time.Now(),
		opsCtx:    ctx,
		opsCancel: cancel,

		wsRegisterTimeout: registerTimeout,
	}
}

// Shutdown cancels background operations and waits for them, or for ctx.
// Operations requested afterwards are refused.
func (h *Handler) Shutdown(ctx context.Context) error {
	h.opsMu.Lock()
	h.opsClosed = true
	h.opsCancel()
	h.opsMu.Unlock()

	done := make(chan struct{})
	go func() {
		h.ops.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// beginOperation registers a load or train operation. The returned context
// is cancelled by Shutdown and carries r's request and correlation IDs;
// done must be called when the operation ends. ok is false once Shutdown
// has started.
func (h *Handler) beginOperation(r *http.Request) (ctx context.Context, done func(), ok bool) {
	h.opsMu.Lock()
	defer h.opsMu.Unlock()
	if h.opsClosed {
		return nil, nil, false
	}
	h.ops.Add(1)

	ctx = h.opsCtx
	if id := logging.RequestIDFromContext(r.Context()); id != "" {
		ctx = logging.ContextWithRequestID(ctx, id)
	}
	if id := logging.CorrelationIDFromContext(r.Context()); id != "" {
		ctx = logging.ContextWithCorrelationID(ctx, id)
	}
	return ctx, h.ops.Done, true
}

// background runs fn on ctx from beginOperation and calls done afterwards.
func (h *Handler) background(ctx context.Context, done func(), name string, fn func(ctx context.Context) error) {
	go func() {
		defer done()
		if err := fn(ctx); err != nil {
			logging.Ctx(ctx).Warn().
				Str("component", "api").
				Err(err).
				Str("operation", name).
				Msg("background operation failed")
		}
	}()
}
