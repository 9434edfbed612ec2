// Cinelens - MovieLens Matrix Factorization Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinelens

package events

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/rs/zerolog"

	"github.com/tomtom215/cinelens/internal/logging"
)

// Topics.
const (
	TopicSessionState     = "session.state"
	TopicTrainingProgress = "training.progress"
)

// Envelope types.
const (
	TypeState    = "state"
	TypeProgress = "progress"
)

// Topics returns every topic the session publishes to.
func Topics() []string {
	return []string{TopicSessionState, TopicTrainingProgress}
}

// BusConfig configures the in-process Pub/Sub.
type BusConfig struct {
	// OutputBuffer is the per-subscriber channel buffer.
	OutputBuffer int64

	// BlockUntilAck makes Publish wait until every subscriber acked the
	// message, which keeps epochs in order for each subscriber.
	BlockUntilAck bool
}

// DefaultBusConfig returns the configuration used by the server.
func DefaultBusConfig() BusConfig {
	return BusConfig{
		OutputBuffer:  64,
		BlockUntilAck: true,
	}
}

// Bus is an in-process Watermill Pub/Sub.
type Bus struct {
	pubsub *gochannel.GoChannel
	logger watermill.LoggerAdapter
}

// NewBus creates a Bus logging through logger.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewBus(cfg BusConfig, logger zerolog.Logger) *Bus {
	adapter := logging.NewWatermillAdapter(logger.With().Str("component", "event-bus").Logger())
	return &Bus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer:            cfg.OutputBuffer,
			BlockPublishUntilSubscriberAck: cfg.BlockUntilAck,
		}, adapter),
		logger: adapter,
	}
}

// Publisher returns the publishing side of the bus.
func (b *Bus) Publisher() message.Publisher {
	return b.pubsub
}

// Subscriber returns the subscribing side of the bus.
func (b *Bus) Subscriber() message.Subscriber {
	return b.pubsub
}

// Logger returns the Watermill logger of the bus.
func (b *Bus) Logger() watermill.LoggerAdapter {
	return b.logger
}

// Close closes the bus and every open subscription.
func (b *Bus) Close() error {
	return b.pubsub.Close()
}
