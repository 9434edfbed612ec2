// Cinelens - MovieLens Matrix Factorization Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinelens

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/cinelens/config.yaml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Dataset: DatasetConfig{
			MoviesSource:   "data/u.item",
			RatingsSource:  "data/u.data",
			MalformedLines: "skip",
			OrphanRatings:  "drop",
			MoviesEncoding: "latin1", // MovieLens 100K ships u.item as ISO-8859-1
			FetchTimeout:   30 * time.Second,
		},
		Model: ModelConfig{
			LatentDim: 16,
			Seed:      42,
		},
		Training: TrainingConfig{
			Epochs:          8,
			BatchSize:       64,
			LearningRate:    0.001,
			ValidationSplit: 0.1,
			Timeout:         10 * time.Minute,
			OnStartup:       true,
		},
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              8080,
			Timeout:           30 * time.Second,
			ShutdownTimeout:   10 * time.Second,
			CORSOrigins:       []string{"*"},
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			OperationInterval: 10 * time.Second,
			OperationBurst:    2,
		},
		Storage: StorageConfig{
			Enabled:      false,
			Path:         "data/models",
			KeepVersions: 5,
		},
		History: HistoryConfig{
			Path:    "",
			MaxRuns: 50,
		},
		Cache: CacheConfig{
			Size: 10000,
			TTL:  10 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults
//  2. Config File: optional YAML file (CONFIG_PATH or DefaultConfigPaths)
//  3. Environment Variables
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first existing config file, or "" if none.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths are parsed as comma-separated lists when they arrive as strings.
var sliceConfigPaths = []string{
	"server.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps lowercased environment variable names to koanf paths.
var envMappings = map[string]string{
	"dataset_movies":  "dataset.movies_source",
	"dataset_ratings": "dataset.ratings_source",
	"malformed_lines": "dataset.malformed_lines",
	"orphan_ratings":  "dataset.orphan_ratings",
	"movies_encoding": "dataset.movies_encoding",
	"fetch_timeout":   "dataset.fetch_timeout",

	"latent_dim": "model.latent_dim",
	"model_seed": "model.seed",

	"train_epochs":           "training.epochs",
	"train_batch_size":       "training.batch_size",
	"train_learning_rate":    "training.learning_rate",
	"train_validation_split": "training.validation_split",
	"train_timeout":          "training.timeout",
	"train_on_startup":       "training.on_startup",
	"train_retrain_interval": "training.retrain_interval",

	"http_host":           "server.host",
	"http_port":           "server.port",
	"http_timeout":        "server.timeout",
	"shutdown_timeout":    "server.shutdown_timeout",
	"cors_origins":        "server.cors_origins",
	"rate_limit_requests": "server.rate_limit_reqs",
	"rate_limit_window":   "server.rate_limit_window",
	"operation_interval":  "server.operation_interval",
	"operation_burst":     "server.operation_burst",

	"model_store_enabled": "storage.enabled",
	"model_store_path":    "storage.path",
	"model_keep_versions": "storage.keep_versions",

	"history_path":     "history.path",
	"history_max_runs": "history.max_runs",

	"prediction_cache_size": "cache.size",
	"prediction_cache_ttl":  "cache.ttl",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
// Unmapped variables return "" and are ignored.
//
// Examples:
//   - HTTP_PORT -> server.port
//   - TRAIN_EPOCHS -> training.epochs
//   - DATASET_MOVIES -> dataset.movies_source
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
