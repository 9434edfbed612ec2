// Cinelens - MovieLens Matrix Factorization Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinelens

package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/cinelens/internal/recommend"
)

// Key prefixes for BadgerDB storage
const (
	runKeyPrefix   = "run:"
	runIDKeyPrefix = "run_id:"
)

// ErrRunNotFound is returned when no run has the requested ID.
var ErrRunNotFound = errors.New("training run not found")

// EpochRecord is the persisted form of one epoch's progress.
type EpochRecord struct {
	Epoch         int       `json:"epoch"`
	Loss          float64   `json:"loss"`
	ValLoss       float64   `json:"val_loss"`
	HasValidation bool      `json:"has_validation"`
	At            time.Time `json:"at"`
}

// Run is one training attempt and its per-epoch losses.
type Run struct {
	ID           string        `json:"id"`
	Status       string        `json:"status"`
	StartedAt    time.Time     `json:"started_at"`
	FinishedAt   *time.Time    `json:"finished_at,omitempty"`
	Epochs       int           `json:"epochs"`
	BatchSize    int           `json:"batch_size"`
	LearningRate float64       `json:"learning_rate"`
	LatentDim    int           `json:"latent_dim"`
	Examples     int           `json:"examples"`
	ModelVersion int           `json:"model_version,omitempty"`
	Error        string        `json:"error,omitempty"`
	EpochLog     []EpochRecord `json:"epoch_log"`
}

// Store persists training runs in BadgerDB. Runs are keyed by start time
// so listing newest-first is a reverse prefix scan; a secondary key maps
// run IDs to their primary key. It implements recommend.RunRecorder.
type Store struct {
	db      *badger.DB
	maxRuns int
	logger  zerolog.Logger
}

var _ recommend.RunRecorder = (*Store)(nil)

// Open opens a BadgerDB at path, or an in-memory one when path is empty.
func Open(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	// Reduce logging verbosity
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	return db, nil
}

// NewStore wraps db, retaining at most maxRuns runs (0 keeps all).
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewStore(db *badger.DB, maxRuns int, logger zerolog.Logger) *Store {
	return &Store{
		db:      db,
		maxRuns: maxRuns,
		logger:  logger.With().Str("component", "history").Logger(),
	}
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func primaryKey(startedAt time.Time, id string) []byte {
	return []byte(fmt.Sprintf("%s%020d:%s", runKeyPrefix, startedAt.UnixNano(), id))
}

// BeginRun stores a new running entry and prunes the oldest runs.
func (s *Store) BeginRun(ctx context.Context, info recommend.RunInfo) error {
	run := Run{
		ID:           info.ID,
		Status:       recommend.RunRunning,
		StartedAt:    info.StartedAt,
		Epochs:       info.Epochs,
		BatchSize:    info.BatchSize,
		LearningRate: info.LearningRate,
		LatentDim:    info.LatentDim,
		Examples:     info.Examples,
		EpochLog:     []EpochRecord{},
	}
	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("marshal run: %w", err)
	}

	key := primaryKey(info.StartedAt, info.ID)
	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(key, data); err != nil {
			return fmt.Errorf("set run: %w", err)
		}
		if err := txn.Set([]byte(runIDKeyPrefix+info.ID), key); err != nil {
			return fmt.Errorf("set run id mapping: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if s.maxRuns > 0 {
		if pruned, err := s.prune(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("failed to prune run history")
		} else if pruned > 0 {
			s.logger.Debug().Int("pruned", pruned).Msg("pruned run history")
		}
	}
	return nil
}

// RecordEpoch appends one epoch to a run.
func (s *Store) RecordEpoch(ctx context.Context, runID string, event recommend.ProgressEvent) error {
	return s.modify(ctx, runID, func(run *Run) {
		run.EpochLog = append(run.EpochLog, EpochRecord{
			Epoch:         event.Epoch,
			Loss:          event.Loss,
			ValLoss:       event.ValLoss,
			HasValidation: event.HasValidation,
			At:            event.At,
		})
	})
}

// EndRun sets the final status of a run.
func (s *Store) EndRun(ctx context.Context, runID string, outcome recommend.RunOutcome) error {
	return s.modify(ctx, runID, func(run *Run) {
		finished := outcome.FinishedAt
		run.Status = outcome.Status
		run.FinishedAt = &finished
		run.ModelVersion = outcome.ModelVersion
		run.Error = outcome.Error
	})
}

// Get returns the run with the given ID.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	var run Run
	err := s.db.View(func(txn *badger.Txn) error {
		key, err := lookupKey(txn, id)
		if err != nil {
			return err
		}
		return readRun(txn, key, &run)
	})
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// List returns up to limit runs, newest first. A non-positive limit returns all.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	runs := []Run{}
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = []byte(runKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		// Reverse iteration starts from the largest key under the prefix
		seek := append([]byte(runKeyPrefix), 0xFF)
		for it.Seek(seek); it.ValidForPrefix(opts.Prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var run Run
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &run)
			}); err != nil {
				return fmt.Errorf("decode run: %w", err)
			}
			runs = append(runs, run)
			if limit > 0 && len(runs) >= limit {
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return runs, nil
}

func (s *Store) modify(ctx context.Context, id string, fn func(*Run)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		key, err := lookupKey(txn, id)
		if err != nil {
			return err
		}
		var run Run
		if err := readRun(txn, key, &run); err != nil {
			return err
		}
		fn(&run)
		data, err := json.Marshal(run)
		if err != nil {
			return fmt.Errorf("marshal run: %w", err)
		}
		return txn.Set(key, data)
	})
}

// prune deletes the oldest runs beyond maxRuns.
func (s *Store) prune(ctx context.Context) (int, error) {
	var stale [][]byte
	var staleIDs []string

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.PrefetchValues = false
		opts.Prefix = []byte(runKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		seen := 0
		seek := append([]byte(runKeyPrefix), 0xFF)
		for it.Seek(seek); it.ValidForPrefix(opts.Prefix); it.Next() {
			seen++
			if seen <= s.maxRuns {
				continue
			}
			key := it.Item().KeyCopy(nil)
			stale = append(stale, key)
			staleIDs = append(staleIDs, idFromKey(key))
		}
		return nil
	})
	if err != nil || len(stale) == 0 {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		for i, key := range stale {
			if err := txn.Delete(key); err != nil {
				return err
			}
			if err := txn.Delete([]byte(runIDKeyPrefix + staleIDs[i])); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("delete stale runs: %w", err)
	}
	return len(stale), nil
}

func lookupKey(txn *badger.Txn, id string) ([]byte, error) {
	item, err := txn.Get([]byte(runIDKeyPrefix + id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get run id mapping: %w", err)
	}
	return item.ValueCopy(nil)
}

func readRun(txn *badger.Txn, key []byte, run *Run) error {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrRunNotFound
	}
	if err != nil {
		return fmt.Errorf("get run: %w", err)
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, run)
	})
}

// idFromKey extracts the run ID from "run:<nanos>:<id>".
func idFromKey(key []byte) string {
	rest := key[len(runKeyPrefix):]
	for i, b := range rest {
		if b == ':' {
			return string(rest[i+1:])
		}
	}
	return ""
}
