// Cinelens - MovieLens Matrix Factorization Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinelens

package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cinelens/internal/recommend"
)

// ModelName is the file name prefix of factorization snapshots.
const ModelName = "factorization"

// Repository stores recommend.SavedModel values in a Store and prunes old
// versions after each save. It implements recommend.ModelStore.
type Repository struct {
	store  *Store
	keep   int
	logger zerolog.Logger
}

var _ recommend.ModelStore = (*Repository)(nil)

// NewRepository wraps store, keeping at most keepVersions snapshots.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRepository(store *Store, keepVersions int, logger zerolog.Logger) *Repository {
	return &Repository{
		store:  store,
		keep:   keepVersions,
		logger: logger.With().Str("component", "model_store").Logger(),
	}
}

// SaveModel writes saved as the next stored version. Versions continue from
// the newest file on disk so restarts never overwrite older snapshots.
func (r *Repository) SaveModel(ctx context.Context, saved *recommend.SavedModel) error {
	if saved == nil || saved.Snapshot == nil {
		return fmt.Errorf("nothing to save")
	}

	version := 1
	if latest, ok := r.store.LatestVersion(ModelName); ok {
		version = latest + 1
	}

	meta := Metadata{
		TrainedAt:  saved.TrainedAt,
		UserCount:  len(saved.UserIDs),
		MovieCount: len(saved.MovieIDs),
		LatentDim:  saved.Snapshot.LatentDim,
		Loss:       saved.Loss,
		ValLoss:    saved.ValLoss,
	}
	if err := r.store.Save(ctx, ModelName, version, saved, meta); err != nil {
		return err
	}

	removed, err := r.store.Prune(ctx, ModelName, r.keep)
	if err != nil {
		r.logger.Warn().Err(err).Msg("failed to prune model snapshots")
	}

	r.logger.Info().
		Int("file_version", version).
		Int("model_version", saved.Version).
		Int("pruned", removed).
		Msg("model snapshot saved")
	return nil
}

// LatestModel loads the newest stored snapshot, reporting false when none exists.
func (r *Repository) LatestModel(ctx context.Context) (*recommend.SavedModel, bool, error) {
	var saved recommend.SavedModel
	if _, err := r.store.Load(ctx, ModelName, 0, &saved); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return &saved, true, nil
}

// List returns metadata of the stored snapshots, newest first.
func (r *Repository) List(ctx context.Context) ([]Metadata, error) {
	return r.store.List(ctx)
}
