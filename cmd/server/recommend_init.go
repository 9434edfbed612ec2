// Cinelens - MovieLens Matrix Factorization Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinelens

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cinelens/internal/cache"
	"github.com/tomtom215/cinelens/internal/config"
	"github.com/tomtom215/cinelens/internal/history"
	"github.com/tomtom215/cinelens/internal/movielens"
	"github.com/tomtom215/cinelens/internal/recommend"
	"github.com/tomtom215/cinelens/internal/recommend/storage"
)

// RecommendComponents holds the session and the stores wired into it.
type RecommendComponents struct {
	Session *recommend.Session
	Fetcher *movielens.Fetcher
	History *history.Store

	// Models is nil when snapshots are disabled.
	Models *storage.Repository

	// Cache is nil when cache.size is 0.
	Cache *cache.LRU[recommend.Prediction]
}

// Close releases the history database.
func (c *RecommendComponents) Close() error {
	if c.History == nil {
		return nil
	}
	return c.History.Close()
}

// buildRecommendConfig maps the model and training sections onto the
// session configuration. Adam's moment rates and epsilon keep their defaults.
func buildRecommendConfig(cfg *config.Config) *recommend.Config {
	rc := recommend.DefaultConfig()
	rc.Model.LatentDim = cfg.Model.LatentDim
	rc.Model.Seed = cfg.Model.Seed
	rc.Training.Epochs = cfg.Training.Epochs
	rc.Training.BatchSize = cfg.Training.BatchSize
	rc.Training.LearningRate = cfg.Training.LearningRate
	rc.Training.ValidationSplit = cfg.Training.ValidationSplit
	rc.Training.Timeout = cfg.Training.Timeout
	return rc
}

// buildLoadOptions maps the dataset section onto movielens.LoadOptions.
func buildLoadOptions(cfg *config.DatasetConfig) (movielens.LoadOptions, error) {
	malformed, err := movielens.ParseMalformedPolicy(cfg.MalformedLines)
	if err != nil {
		return movielens.LoadOptions{}, err
	}
	orphans, err := movielens.ParseOrphanPolicy(cfg.OrphanRatings)
	if err != nil {
		return movielens.LoadOptions{}, err
	}
	return movielens.LoadOptions{
		MoviesSource:  cfg.MoviesSource,
		RatingsSource: cfg.RatingsSource,
		Malformed:     malformed,
		Orphans:       orphans,
		Latin1Movies:  cfg.MoviesEncoding == "latin1",
	}, nil
}

// initRecommend builds the session with its loader, run history, model
// snapshots and prediction cache.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func initRecommend(cfg *config.Config, logger zerolog.Logger) (*RecommendComponents, error) {
	opts, err := buildLoadOptions(&cfg.Dataset)
	if err != nil {
		return nil, err
	}

	fetcher := movielens.NewFetcher(cfg.Dataset.FetchTimeout)
	loader := recommend.LoaderFunc(func(ctx context.Context) (*movielens.Dataset, error) {
		return movielens.Load(ctx, fetcher, opts)
	})

	session, err := recommend.NewSession(buildRecommendConfig(cfg), loader, logger)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	c := &RecommendComponents{Session: session, Fetcher: fetcher}

	db, err := history.Open(cfg.History.Path)
	if err != nil {
		return nil, err
	}
	c.History = history.NewStore(db, cfg.History.MaxRuns, logger)
	session.SetRunRecorder(c.History)

	if cfg.Storage.Enabled {
		store, err := storage.NewStore(cfg.Storage.Path)
		if err != nil {
			return nil, errors.Join(fmt.Errorf("open model store: %w", err), c.Close())
		}
		c.Models = storage.NewRepository(store, cfg.Storage.KeepVersions, logger)
		session.SetModelStore(c.Models)
	}

	if cfg.Cache.Size > 0 {
		c.Cache = cache.NewLRU[recommend.Prediction](cfg.Cache.Size, cfg.Cache.TTL)
		session.SetPredictionCache(c.Cache)
	}

	logger.Info().
		Str("movies", cfg.Dataset.MoviesSource).
		Str("ratings", cfg.Dataset.RatingsSource).
		Str("malformed_lines", string(opts.Malformed)).
		Str("orphan_ratings", string(opts.Orphans)).
		Bool("history_persistent", cfg.History.Path != "").
		Bool("snapshots", cfg.Storage.Enabled).
		Int("cache_size", cfg.Cache.Size).
		Msg("recommender session initialized")

	return c, nil
}
