// Cinelens - MovieLens Matrix Factorization Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinelens

package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration loaded from defaults, an optional
// YAML file and environment variables, in that order of precedence.
//
//	cfg, err := config.Load()
//	if err != nil {
//	    logging.Fatal().Err(err).Msg("Failed to load configuration")
//	}
type Config struct {
	Dataset  DatasetConfig  `koanf:"dataset"`
	Model    ModelConfig    `koanf:"model"`
	Training TrainingConfig `koanf:"training"`
	Server   ServerConfig   `koanf:"server"`
	Storage  StorageConfig  `koanf:"storage"`
	History  HistoryConfig  `koanf:"history"`
	Cache    CacheConfig    `koanf:"cache"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// DatasetConfig describes where the MovieLens files come from and how
// tolerant ingestion is.
//
// Environment Variables:
//   - DATASET_MOVIES: path or http(s) URL of u.item (default: data/u.item)
//   - DATASET_RATINGS: path or http(s) URL of u.data (default: data/u.data)
//   - MALFORMED_LINES: skip or strict (default: skip)
//   - ORPHAN_RATINGS: drop or reject (default: drop)
//   - MOVIES_ENCODING: latin1 or utf8 (default: latin1)
//   - FETCH_TIMEOUT: per-file HTTP timeout (default: 30s)
type DatasetConfig struct {
	MoviesSource   string        `koanf:"movies_source"`
	RatingsSource  string        `koanf:"ratings_source"`
	MalformedLines string        `koanf:"malformed_lines"`
	OrphanRatings  string        `koanf:"orphan_ratings"`
	MoviesEncoding string        `koanf:"movies_encoding"`
	FetchTimeout   time.Duration `koanf:"fetch_timeout"`
}

// ModelConfig holds the factorization model shape.
type ModelConfig struct {
	// LatentDim is the embedding width shared by users and movies.
	// Default: 16
	LatentDim int `koanf:"latent_dim"`

	// Seed makes initialization and shuffling reproducible.
	// Default: 42
	Seed int64 `koanf:"seed"`
}

// TrainingConfig holds optimizer and schedule settings.
type TrainingConfig struct {
	Epochs          int           `koanf:"epochs"`
	BatchSize       int           `koanf:"batch_size"`
	LearningRate    float64       `koanf:"learning_rate"`
	ValidationSplit float64       `koanf:"validation_split"`
	Timeout         time.Duration `koanf:"timeout"`

	// OnStartup runs load and train once when the server starts.
	// Default: true
	OnStartup bool `koanf:"on_startup"`

	// RetrainInterval reloads the dataset and retrains on a schedule.
	// Default: 0 (disabled)
	RetrainInterval time.Duration `koanf:"retrain_interval"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	CORSOrigins     []string      `koanf:"cors_origins"`

	// RateLimitReqs requests per RateLimitWindow are allowed per client IP.
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`

	// OperationInterval and OperationBurst throttle load and train requests
	// per client: one token every OperationInterval, at most OperationBurst queued.
	OperationInterval time.Duration `koanf:"operation_interval"`
	OperationBurst    int           `koanf:"operation_burst"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// StorageConfig controls trained model snapshots on disk.
type StorageConfig struct {
	Enabled      bool   `koanf:"enabled"`
	Path         string `koanf:"path"`
	KeepVersions int    `koanf:"keep_versions"`
}

// HistoryConfig controls persistence of training run history.
// An empty Path keeps history in memory.
type HistoryConfig struct {
	Path    string `koanf:"path"`
	MaxRuns int    `koanf:"max_runs"`
}

// CacheConfig sizes the prediction cache. A zero Size disables it.
type CacheConfig struct {
	Size int           `koanf:"size"`
	TTL  time.Duration `koanf:"ttl"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format"`

	Caller bool `koanf:"caller"`
}

// Load reads configuration from all sources and validates it.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
