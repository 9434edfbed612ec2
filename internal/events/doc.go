// Cinelens - MovieLens Matrix Factorization Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinelens

/*
Package events carries session lifecycle and training progress notifications
over an in-process Watermill pub/sub bus.

# Topics

	session.state      recommend.StateChange, one per lifecycle transition
	training.progress  recommend.ProgressEvent, one per completed epoch

Every payload is a JSON envelope:

	{"type": "progress", "data": {...}}

which is also the shape the WebSocket hub pushes to clients, so the
forwarder can hand payloads through without re-encoding them.

# Components

  - Bus: wraps Watermill's gochannel Pub/Sub
  - Publisher: implements recommend.Observer and publishes envelopes
  - MessageHandler: subscribes to one topic and acks or nacks each message
  - Forwarder: runs one MessageHandler per topic and broadcasts every envelope

# Usage

	bus := events.NewBus(events.DefaultBusConfig(), logger)
	defer bus.Close()

	session.AddObserver(events.NewPublisher(bus.Publisher(), logger))

	fwd := events.NewForwarder(bus.Subscriber(), hub, bus.Logger())
	go fwd.Run(ctx)
*/
package events
