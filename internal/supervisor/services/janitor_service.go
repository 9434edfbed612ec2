// Cinelens - MovieLens Matrix Factorization Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinelens

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// JanitorTask removes stale entries and returns how many it removed.
type JanitorTask struct {
	Name string
	Run  func() int
}

// JanitorService runs cleanup tasks on a fixed interval, such as expiring
// prediction cache entries and idle operation limiter buckets.
type JanitorService struct {
	interval time.Duration
	tasks    []JanitorTask
	logger   zerolog.Logger
}

// NewJanitorService creates a JanitorService. A non-positive interval means
// one minute.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewJanitorService(interval time.Duration, logger zerolog.Logger, tasks ...JanitorTask) *JanitorService {
	if interval <= 0 {
		interval = time.Minute
	}
	return &JanitorService{
		interval: interval,
		tasks:    tasks,
		logger:   logger.With().Str("service", "janitor").Logger(),
	}
}

// Serve implements suture.Service.
func (j *JanitorService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			j.sweep()
		}
	}
}

func (j *JanitorService) sweep() {
	for _, task := range j.tasks {
		if n := task.Run(); n > 0 {
			j.logger.Debug().Str("task", task.Name).Int("removed", n).Msg("cleanup")
		}
	}
}

func (j *JanitorService) String() string {
	return "janitor"
}
