// Cinelens - MovieLens Matrix Factorization Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinelens

/*
Package supervisor runs the long-lived parts of Cinelens under a suture v4
supervisor tree.

# Layout

	cinelens
	├── model-layer
	│   ├── session          startup restore or load+train, scheduled retraining
	│   └── janitor          prediction cache and operation limiter cleanup
	├── messaging-layer
	│   ├── websocket-hub
	│   └── event-forwarder  watermill bus -> hub
	└── api-layer
	    └── http-server

Each layer is its own supervisor, so failures are counted per layer and a
restart storm in messaging does not stop the API from answering.

# Usage

	tree, err := supervisor.NewSupervisorTree(slogLogger, supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddMessagingService(services.NewRunnerService("websocket-hub", hub.RunWithContext))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))

	errCh := tree.ServeBackground(ctx)
	<-ctx.Done()
	<-errCh

# Failure handling

suture keeps a failure counter per supervisor that decays over FailureDecay
seconds. A service crash increments it and the service is restarted right
away; once the counter passes FailureThreshold, restarts wait
FailureBackoff. Defaults are suture's: 5 failures, 30s decay, 15s backoff,
and 10s for each service to stop.

Supervisor events (service failures, backoff, stop timeouts) are logged
through log/slog with sutureslog; cmd/server passes an slog handler backed by
the zerolog logger.

# Shutdown

Cancel the context given to Serve or ServeBackground. Services that ignore
cancellation for longer than ShutdownTimeout are listed by
UnstoppedServiceReport.
*/
package supervisor
