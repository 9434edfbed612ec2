// Cinelens - MovieLens Matrix Factorization Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinelens

/*
Package services adapts Cinelens components to suture.Service.

A suture service is anything with Serve(ctx) error that returns when ctx is
canceled. Returning an error, or nil, before that makes the supervisor
restart the service with backoff.

Services:

  - HTTPServerService: http.Server with graceful Shutdown and stop hooks
  - RunnerService: any blocking loop, used for the WebSocket hub and the
    event forwarder
  - SessionService: restores or trains the model at startup, then optionally
    retrains on RetrainInterval
  - JanitorService: periodic cleanup of the prediction cache and the
    operation limiter

Wiring, as done by cmd/server:

	tree.AddModelService(services.NewSessionService(session, cfg, logger))
	tree.AddModelService(services.NewJanitorService(time.Minute, logger, tasks...))
	tree.AddMessagingService(services.NewRunnerService("websocket-hub", hub.RunWithContext))
	tree.AddMessagingService(services.NewRunnerService("event-forwarder", forwarder.Run))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second).OnStop(handler.Shutdown))
*/
package services
