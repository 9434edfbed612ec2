// Cinelens - MovieLens Matrix Factorization Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinelens

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cinelens/internal/movielens"
	"github.com/tomtom215/cinelens/internal/recommend"
)

// Session is the part of *recommend.Session the startup service drives.
type Session interface {
	Load(ctx context.Context) (movielens.Summary, error)
	Train(ctx context.Context) error

	// Restore installs the newest saved model that fits the loaded dataset.
	Restore(ctx context.Context) (bool, error)

	// Start loads the dataset and trains a model.
	Start(ctx context.Context) error
}

// SessionServiceConfig holds the startup and retraining policy.
type SessionServiceConfig struct {
	// RestoreOnStartup tries a saved model before training.
	RestoreOnStartup bool

	// TrainOnStartup loads and trains when no model was restored.
	TrainOnStartup bool

	// RetrainInterval reloads and retrains periodically. Zero disables it.
	RetrainInterval time.Duration
}

// SessionService brings the recommender to Ready when the server starts and
// optionally retrains it on a schedule.
//
// The startup sequence runs once per process, even when the supervisor
// restarts the service. Failures are logged and leave the session Failed;
// they do not fail the service, since a client can POST /load to recover.
type SessionService struct {
	session Session
	config  SessionServiceConfig
	logger  zerolog.Logger

	startupDone atomic.Bool
	runs        atomic.Int64
}

// NewSessionService creates a SessionService.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewSessionService(session Session, cfg SessionServiceConfig, logger zerolog.Logger) *SessionService {
	return &SessionService{
		session: session,
		config:  cfg,
		logger:  logger.With().Str("service", "session").Logger(),
	}
}

// Serve implements suture.Service.
func (s *SessionService) Serve(ctx context.Context) error {
	if s.startupDone.CompareAndSwap(false, true) {
		s.startup(ctx)
	}

	if s.config.RetrainInterval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(s.config.RetrainInterval)
	defer ticker.Stop()
	s.logger.Info().Dur("interval", s.config.RetrainInterval).Msg("scheduled retraining enabled")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.logger.Debug().Msg("scheduled retraining triggered")
			s.start(ctx, "scheduled")
		}
	}
}

func (s *SessionService) startup(ctx context.Context) {
	if !s.config.RestoreOnStartup {
		if s.config.TrainOnStartup {
			s.start(ctx, "startup")
		}
		return
	}

	if _, err := s.session.Load(ctx); err != nil {
		s.logger.Error().Err(err).Msg("startup load failed")
		return
	}
	restored, err := s.session.Restore(ctx)
	switch {
	case err != nil:
		s.logger.Warn().Err(err).Msg("restoring saved model failed")
	case restored:
		s.logger.Info().Msg("saved model restored, skipping startup training")
		return
	}
	if !s.config.TrainOnStartup {
		return
	}
	s.run(ctx, "startup", s.session.Train)
}

func (s *SessionService) start(ctx context.Context, reason string) {
	s.run(ctx, reason, s.session.Start)
}

func (s *SessionService) run(ctx context.Context, reason string, fn func(context.Context) error) {
	s.runs.Add(1)
	start := time.Now()
	err := fn(ctx)
	switch {
	case err == nil:
		s.logger.Info().Str("reason", reason).Dur("duration", time.Since(start)).Msg("model ready")
	case errors.Is(err, recommend.ErrBusy):
		s.logger.Info().Str("reason", reason).Msg("session busy, skipping")
	case ctx.Err() != nil:
		s.logger.Info().Str("reason", reason).Msg("training canceled")
	default:
		s.logger.Error().Err(err).Str("reason", reason).Msg("training failed")
	}
}

// Runs returns how many training sequences the service started.
func (s *SessionService) Runs() int64 {
	return s.runs.Load()
}

func (s *SessionService) String() string {
	return "session"
}
