// Cinelens - MovieLens Matrix Factorization Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinelens

/*
Package websocket pushes session state changes and training progress to
connected clients using gorilla/websocket.

Key Components:

  - Hub: registers clients and broadcasts messages to all of them
  - Client: one connection with a read goroutine and a write goroutine
  - Message: the {"type", "data"} frame every client receives

Message Types:

  - status: full session status, sent once to a client right after it connects
  - state: a lifecycle transition (recommend.StateChange)
  - progress: a completed training epoch (recommend.ProgressEvent)
  - pong: answer to a client {"type": "ping"}

Usage:

	hub := websocket.NewHub()
	go hub.RunWithContext(ctx)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
	    return
	}
	client := websocket.NewClient(hub, conn)
	client.Enqueue(websocket.Message{Type: websocket.MessageTypeStatus, Data: status})
	hub.Register <- client
	client.Start()

Events arrive through BroadcastRaw, which the events.Forwarder calls with the
envelopes published on the event bus.

Thread Safety:

Broadcast, BroadcastJSON, BroadcastRaw and GetClientCount are safe for
concurrent use. Broadcasts never block; when the hub queue or a client
buffer is full the message is dropped and counted in
cinelens_websocket_messages_dropped_total, and a slow client is disconnected.
*/
package websocket
