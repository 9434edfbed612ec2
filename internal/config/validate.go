// Cinelens - MovieLens Matrix Factorization Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinelens

package config

import (
	"fmt"
)

// Validate checks that configuration values are usable.
func (c *Config) Validate() error {
	if err := c.validateDataset(); err != nil {
		return err
	}
	if err := c.validateModel(); err != nil {
		return err
	}
	if err := c.validateTraining(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateStorage(); err != nil {
		return err
	}
	return c.validateLogging()
}

var validMalformedPolicies = map[string]bool{
	"skip":   true,
	"strict": true,
}

var validOrphanPolicies = map[string]bool{
	"drop":   true,
	"reject": true,
}

var validEncodings = map[string]bool{
	"latin1": true,
	"utf8":   true,
}

func (c *Config) validateDataset() error {
	if c.Dataset.MoviesSource == "" {
		return fmt.Errorf("DATASET_MOVIES is required")
	}
	if c.Dataset.RatingsSource == "" {
		return fmt.Errorf("DATASET_RATINGS is required")
	}
	if !validMalformedPolicies[c.Dataset.MalformedLines] {
		return fmt.Errorf("MALFORMED_LINES must be one of: skip, strict")
	}
	if !validOrphanPolicies[c.Dataset.OrphanRatings] {
		return fmt.Errorf("ORPHAN_RATINGS must be one of: drop, reject")
	}
	if !validEncodings[c.Dataset.MoviesEncoding] {
		return fmt.Errorf("MOVIES_ENCODING must be one of: latin1, utf8")
	}
	if c.Dataset.FetchTimeout <= 0 {
		return fmt.Errorf("FETCH_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateModel() error {
	if c.Model.LatentDim < 1 {
		return fmt.Errorf("LATENT_DIM must be positive, got %d", c.Model.LatentDim)
	}
	return nil
}

func (c *Config) validateTraining() error {
	t := c.Training
	if t.Epochs < 1 {
		return fmt.Errorf("TRAIN_EPOCHS must be positive, got %d", t.Epochs)
	}
	if t.BatchSize < 1 {
		return fmt.Errorf("TRAIN_BATCH_SIZE must be positive, got %d", t.BatchSize)
	}
	if t.LearningRate <= 0 {
		return fmt.Errorf("TRAIN_LEARNING_RATE must be positive, got %f", t.LearningRate)
	}
	if t.ValidationSplit < 0 || t.ValidationSplit >= 1 {
		return fmt.Errorf("TRAIN_VALIDATION_SPLIT must be in [0, 1), got %f", t.ValidationSplit)
	}
	if t.Timeout <= 0 {
		return fmt.Errorf("TRAIN_TIMEOUT must be positive")
	}
	if t.RetrainInterval < 0 {
		return fmt.Errorf("TRAIN_RETRAIN_INTERVAL must not be negative, got %v", t.RetrainInterval)
	}
	return nil
}

func (c *Config) validateServer() error {
	s := c.Server
	if s.Port < 1 || s.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if s.RateLimitReqs < 1 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be positive")
	}
	if s.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive")
	}
	if s.OperationInterval <= 0 || s.OperationBurst < 1 {
		return fmt.Errorf("OPERATION_INTERVAL and OPERATION_BURST must be positive")
	}
	return nil
}

func (c *Config) validateStorage() error {
	if !c.Storage.Enabled {
		return nil
	}
	if c.Storage.Path == "" {
		return fmt.Errorf("MODEL_STORE_PATH is required when MODEL_STORE_ENABLED is true")
	}
	if c.Storage.KeepVersions < 1 {
		return fmt.Errorf("MODEL_KEEP_VERSIONS must be positive")
	}
	return nil
}

var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}
