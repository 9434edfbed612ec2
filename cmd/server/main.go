// Cinelens - MovieLens Matrix Factorization Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinelens

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/cinelens/internal/api"
	"github.com/tomtom215/cinelens/internal/config"
	"github.com/tomtom215/cinelens/internal/events"
	"github.com/tomtom215/cinelens/internal/logging"
	"github.com/tomtom215/cinelens/internal/middleware"
	"github.com/tomtom215/cinelens/internal/supervisor"
	"github.com/tomtom215/cinelens/internal/supervisor/services"
	ws "github.com/tomtom215/cinelens/internal/websocket"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// janitorInterval is how often expired cache entries and idle limiter
// buckets are swept.
const janitorInterval = time.Minute

//nolint:gocyclo // Main initialization function with sequential setup steps
func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})
	logger := logging.Logger()

	logging.Info().Str("version", version).Msg("Starting Cinelens with supervisor tree")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// === RECOMMENDER ===

	rec, err := initRecommend(cfg, logger)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize recommender")
	}
	defer func() {
		if err := rec.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing training history")
		}
	}()

	// === EVENTS ===

	bus := events.NewBus(events.DefaultBusConfig(), logger)
	defer func() {
		if err := bus.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing event bus")
		}
	}()
	rec.Session.AddObserver(events.NewPublisher(bus.Publisher(), logger))

	wsHub := ws.NewHub()
	forwarder := events.NewForwarder(bus.Subscriber(), wsHub, bus.Logger())

	// === HTTP ===

	handlerOpts := api.HandlerOptions{
		History:        rec.History,
		Hub:            wsHub,
		BreakerState:   rec.Fetcher.State,
		AllowedOrigins: cfg.Server.CORSOrigins,
		Version:        version,
		Logger:         logger,
	}
	if rec.Models != nil {
		handlerOpts.Models = rec.Models
	}
	handler := api.NewHandler(rec.Session, handlerOpts)

	mwConfig := api.DefaultChiMiddlewareConfig()
	mwConfig.CORSAllowedOrigins = cfg.Server.CORSOrigins
	mwConfig.RateLimitRequests = cfg.Server.RateLimitReqs
	mwConfig.RateLimitWindow = cfg.Server.RateLimitWindow
	mwConfig.RateLimitDisabled = cfg.Server.RateLimitReqs <= 0

	opLimiter := middleware.NewOperationLimiter(cfg.Server.OperationInterval, cfg.Server.OperationBurst)
	router := api.NewRouter(handler, api.NewChiMiddleware(mwConfig), opLimiter)

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.Setup(),
		ReadTimeout:       cfg.Server.Timeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	// === SUPERVISOR TREE ===

	treeConfig := supervisor.DefaultTreeConfig()
	treeConfig.ShutdownTimeout = cfg.Server.ShutdownTimeout
	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), treeConfig)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	tree.AddModelService(services.NewSessionService(rec.Session, services.SessionServiceConfig{
		RestoreOnStartup: cfg.Storage.Enabled,
		TrainOnStartup:   cfg.Training.OnStartup,
		RetrainInterval:  cfg.Training.RetrainInterval,
	}, logger))

	janitorTasks := []services.JanitorTask{{Name: "operation-limiter", Run: opLimiter.Cleanup}}
	if rec.Cache != nil {
		janitorTasks = append(janitorTasks, services.JanitorTask{Name: "prediction-cache", Run: rec.Cache.CleanupExpired})
	}
	tree.AddModelService(services.NewJanitorService(janitorInterval, logger, janitorTasks...))

	tree.AddMessagingService(services.NewRunnerService("websocket-hub", wsHub.RunWithContext))
	tree.AddMessagingService(services.NewRunnerService("event-forwarder", forwarder.Run))

	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout).OnStop(handler.Shutdown))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// === RUN ===

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	errCh := tree.ServeBackground(ctx)

	var serveErr error
	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
		serveErr = <-errCh
	case serveErr = <-errCh:
	}
	if serveErr != nil && !errors.Is(serveErr, context.Canceled) {
		logging.Error().Err(serveErr).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
	}

	logging.Info().Msg("Application stopped gracefully")
}
