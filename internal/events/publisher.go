// Cinelens - MovieLens Matrix Factorization Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinelens

package events

import (
	"sync/atomic"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/cinelens/internal/recommend"
)

// Envelope is the wire form of every event.
type Envelope struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Metadata keys set on published messages.
const (
	MetadataType  = "type"
	MetadataRunID = "run_id"
)

// Publisher publishes session notifications to the bus. It implements
// recommend.Observer; publish failures are logged and counted, never
// returned to the session.
type Publisher struct {
	publisher message.Publisher
	logger    zerolog.Logger

	published atomic.Int64
	failed    atomic.Int64
}

var _ recommend.Observer = (*Publisher)(nil)

// NewPublisher creates a Publisher.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewPublisher(publisher message.Publisher, logger zerolog.Logger) *Publisher {
	return &Publisher{
		publisher: publisher,
		logger:    logger.With().Str("component", "event-publisher").Logger(),
	}
}

// OnStateChange publishes a lifecycle transition.
func (p *Publisher) OnStateChange(change recommend.StateChange) {
	p.publish(TopicSessionState, TypeState, "", change)
}

// OnEpoch publishes a training progress event.
func (p *Publisher) OnEpoch(event recommend.ProgressEvent) {
	p.publish(TopicTrainingProgress, TypeProgress, event.RunID, event)
}

func (p *Publisher) publish(topic, eventType, runID string, data interface{}) {
	payload, err := json.Marshal(Envelope{Type: eventType, Data: data})
	if err != nil {
		p.failed.Add(1)
		p.logger.Error().Err(err).Str("topic", topic).Msg("Failed to encode event")
		return
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set(MetadataType, eventType)
	if runID != "" {
		msg.Metadata.Set(MetadataRunID, runID)
	}

	if err := p.publisher.Publish(topic, msg); err != nil {
		p.failed.Add(1)
		p.logger.Warn().Err(err).Str("topic", topic).Msg("Failed to publish event")
		return
	}
	p.published.Add(1)
}

// PublisherStats holds publish counters.
type PublisherStats struct {
	Published int64 `json:"published"`
	Failed    int64 `json:"failed"`
}

// Stats returns publish counters.
func (p *Publisher) Stats() PublisherStats {
	return PublisherStats{
		Published: p.published.Load(),
		Failed:    p.failed.Load(),
	}
}
