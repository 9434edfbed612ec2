// Cinelens - MovieLens Matrix Factorization Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinelens

package events

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"golang.org/x/sync/errgroup"
)

// ErrEmptyPayload is returned for messages without a body.
var ErrEmptyPayload = errors.New("empty message payload")

// MessageHandler processes messages of one topic.
type MessageHandler struct {
	subscriber message.Subscriber
	topic      string
	handler    func(ctx context.Context, msg *message.Message) error
	logger     watermill.LoggerAdapter
}

// NewMessageHandler creates a handler for topic. A nil logger discards output.
func NewMessageHandler(subscriber message.Subscriber, topic string, logger watermill.LoggerAdapter) *MessageHandler {
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	return &MessageHandler{
		subscriber: subscriber,
		topic:      topic,
		logger:     logger,
	}
}

// Handle sets the message processing function.
func (h *MessageHandler) Handle(fn func(ctx context.Context, msg *message.Message) error) *MessageHandler {
	h.handler = fn
	return h
}

// Run processes messages until ctx is cancelled or the subscription closes.
// Messages are acked on success and nacked on error.
func (h *MessageHandler) Run(ctx context.Context) error {
	messages, err := h.subscriber.Subscribe(ctx, h.topic)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", h.topic, err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			if err := h.processMessage(ctx, msg); err != nil {
				h.logger.Error("Message processing failed", err, watermill.LogFields{
					"message_uuid": msg.UUID,
					"topic":        h.topic,
				})
			}
		}
	}
}

func (h *MessageHandler) processMessage(ctx context.Context, msg *message.Message) error {
	if h.handler == nil {
		msg.Ack()
		return nil
	}

	if err := h.handler(ctx, msg); err != nil {
		msg.Nack()
		return err
	}

	msg.Ack()
	return nil
}

// Broadcaster pushes an encoded envelope to connected clients.
type Broadcaster interface {
	BroadcastRaw(data []byte)
}

// Forwarder relays every event of every topic to a Broadcaster.
type Forwarder struct {
	subscriber message.Subscriber
	hub        Broadcaster
	logger     watermill.LoggerAdapter

	received  atomic.Int64
	forwarded atomic.Int64
}

// NewForwarder creates a Forwarder.
func NewForwarder(subscriber message.Subscriber, hub Broadcaster, logger watermill.LoggerAdapter) *Forwarder {
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	return &Forwarder{
		subscriber: subscriber,
		hub:        hub,
		logger:     logger.With(watermill.LogFields{"component": "event-forwarder"}),
	}
}

// Handle broadcasts msg. Payloads are already envelopes, so they go out as is.
func (f *Forwarder) Handle(_ context.Context, msg *message.Message) error {
	f.received.Add(1)
	if len(msg.Payload) == 0 {
		return ErrEmptyPayload
	}
	f.hub.BroadcastRaw(msg.Payload)
	f.forwarded.Add(1)
	return nil
}

// Run subscribes to every topic and forwards until ctx is cancelled.
// It returns the first handler error.
func (f *Forwarder) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, topic := range Topics() {
		handler := NewMessageHandler(f.subscriber, topic, f.logger).Handle(f.Handle)
		g.Go(func() error {
			return handler.Run(gctx)
		})
	}
	return g.Wait()
}

// ForwarderStats holds forwarding counters.
type ForwarderStats struct {
	Received  int64 `json:"received"`
	Forwarded int64 `json:"forwarded"`
}

// Stats returns forwarding counters.
func (f *Forwarder) Stats() ForwarderStats {
	return ForwarderStats{
		Received:  f.received.Load(),
		Forwarded: f.forwarded.Load(),
	}
}
