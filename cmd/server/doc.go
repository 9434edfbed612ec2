// Cinelens - MovieLens Matrix Factorization Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinelens

/*
Package main is the entry point for the Cinelens server.

Cinelens trains a matrix-factorization recommender on the MovieLens 100K
dataset (u.item and u.data) and serves rating predictions over an HTTP API,
with per-epoch training progress pushed over a WebSocket.

# Application Architecture

	RootSupervisor ("cinelens")
	├── model-layer
	│   ├── session          restore a saved model, or load and train at startup
	│   └── janitor          prediction cache and operation limiter cleanup
	├── messaging-layer
	│   ├── websocket-hub
	│   └── event-forwarder  watermill gochannel -> hub
	└── api-layer
	    └── http-server      chi router, /api/v1 and /metrics

Initialization order:

 1. Configuration: Koanf v2 (defaults, YAML file, environment)
 2. Logging: zerolog, JSON or console
 3. Recommender: dataset loader, session, badger run history, model
    snapshots (optional), prediction cache
 4. Events: watermill bus, session observer publishing state and progress
 5. HTTP: handler, chi router with CORS, rate limits and metrics
 6. Supervisor tree: suture v4, runs until SIGINT or SIGTERM

# Example Usage

Local files (default data/u.item and data/u.data):

	./cinelens

Remote dataset with console logs:

	export DATASET_MOVIES=https://files.grouplens.org/datasets/movielens/ml-100k/u.item
	export DATASET_RATINGS=https://files.grouplens.org/datasets/movielens/ml-100k/u.data
	export LOG_FORMAT=console
	./cinelens

Predict once the model is ready:

	curl 'http://localhost:8080/api/v1/predict?user=196&movie=242'

# Signal Handling

On SIGINT or SIGTERM the tree is canceled: the HTTP server drains requests,
background load and train operations are canceled, the WebSocket hub closes
its clients, and the history database is closed.
*/
package main
