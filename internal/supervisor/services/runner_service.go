// Cinelens - MovieLens Matrix Factorization Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinelens

package services

import "context"

// RunFunc is a blocking loop that returns when ctx is canceled.
// (*websocket.Hub).RunWithContext and (*events.Forwarder).Run both fit.
type RunFunc func(ctx context.Context) error

// RunnerService supervises a RunFunc under a name.
//
//	tree.AddMessagingService(services.NewRunnerService("websocket-hub", hub.RunWithContext))
//	tree.AddMessagingService(services.NewRunnerService("event-forwarder", forwarder.Run))
type RunnerService struct {
	name string
	run  RunFunc
}

// NewRunnerService creates a RunnerService.
func NewRunnerService(name string, run RunFunc) *RunnerService {
	return &RunnerService{name: name, run: run}
}

// Serve implements suture.Service.
func (r *RunnerService) Serve(ctx context.Context) error {
	return r.run(ctx)
}

func (r *RunnerService) String() string {
	return r.name
}
