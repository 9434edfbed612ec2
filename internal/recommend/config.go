// Cinelens - MovieLens Matrix Factorization Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinelens

package recommend

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// Config contains all configuration for the recommender session.
type Config struct {
	// Model contains the factorization model shape.
	Model ModelConfig `json:"model"`

	// Training contains optimizer and schedule parameters.
	Training TrainingConfig `json:"training"`
}

// ModelConfig contains parameters for the embedding model.
type ModelConfig struct {
	// LatentDim is the embedding width for both users and movies.
	LatentDim int `json:"latent_dim"`

	// Seed drives weight initialization and per-epoch shuffling.
	Seed int64 `json:"seed"`
}

// TrainingConfig contains optimizer and schedule parameters.
type TrainingConfig struct {
	// Epochs is the number of full passes over the training rows.
	Epochs int `json:"epochs"`

	// BatchSize is the number of rows per optimizer step.
	BatchSize int `json:"batch_size"`

	// LearningRate is the Adam step size.
	LearningRate float64 `json:"learning_rate"`

	// Beta1 and Beta2 are the Adam moment decay rates.
	Beta1 float64 `json:"beta1"`
	Beta2 float64 `json:"beta2"`

	// Epsilon keeps the Adam denominator away from zero.
	Epsilon float64 `json:"epsilon"`

	// ValidationSplit is the trailing fraction of rows held out for monitoring.
	ValidationSplit float64 `json:"validation_split"`

	// Shuffle reorders training rows before every epoch.
	Shuffle bool `json:"shuffle"`

	// Timeout bounds a single training run.
	Timeout time.Duration `json:"timeout"`
}

// DefaultConfig returns the configuration used by the browser demo this
// recommender reproduces: 16 latent factors, Adam at 0.001, 8 epochs of 64.
func DefaultConfig() *Config {
	return &Config{
		Model: ModelConfig{
			LatentDim: 16,
			Seed:      42,
		},
		Training: TrainingConfig{
			Epochs:          8,
			BatchSize:       64,
			LearningRate:    0.001,
			Beta1:           0.9,
			Beta2:           0.999,
			Epsilon:         1e-7,
			ValidationSplit: 0.1,
			Shuffle:         true,
			Timeout:         10 * time.Minute,
		},
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Model.LatentDim < 1 {
		return fmt.Errorf("model.latent_dim must be positive, got %d", c.Model.LatentDim)
	}

	if c.Training.Epochs < 1 {
		return fmt.Errorf("training.epochs must be positive, got %d", c.Training.Epochs)
	}
	if c.Training.BatchSize < 1 {
		return fmt.Errorf("training.batch_size must be positive, got %d", c.Training.BatchSize)
	}
	if c.Training.LearningRate <= 0 {
		return fmt.Errorf("training.learning_rate must be positive, got %f", c.Training.LearningRate)
	}
	if c.Training.Beta1 < 0 || c.Training.Beta1 >= 1 {
		return fmt.Errorf("training.beta1 must be in [0, 1), got %f", c.Training.Beta1)
	}
	if c.Training.Beta2 < 0 || c.Training.Beta2 >= 1 {
		return fmt.Errorf("training.beta2 must be in [0, 1), got %f", c.Training.Beta2)
	}
	if c.Training.Epsilon <= 0 {
		return fmt.Errorf("training.epsilon must be positive, got %g", c.Training.Epsilon)
	}
	if c.Training.ValidationSplit < 0 || c.Training.ValidationSplit >= 1 {
		return fmt.Errorf("training.validation_split must be in [0, 1), got %f", c.Training.ValidationSplit)
	}
	if c.Training.Timeout <= 0 {
		return fmt.Errorf("training.timeout must be positive, got %v", c.Training.Timeout)
	}

	return nil
}

// Clone creates a deep copy of the configuration.
func (c *Config) Clone() *Config {
	// Direct field copy - nested structs contain only value types
	return &Config{
		Model:    c.Model,
		Training: c.Training,
	}
}

// MarshalJSON renders durations as strings so /status output stays readable.
func (c TrainingConfig) MarshalJSON() ([]byte, error) {
	type Alias TrainingConfig
	return json.Marshal(&struct {
		Alias
		Timeout string `json:"timeout"`
	}{
		Alias:   Alias(c),
		Timeout: c.Timeout.String(),
	})
}
