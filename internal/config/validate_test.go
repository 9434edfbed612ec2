// Cinelens - MovieLens Matrix Factorization Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinelens

package config

import (
	"testing"
)

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		modify    func(*Config)
		wantError bool
	}{
		{"defaults", func(_ *Config) {}, false},
		{"empty movies source", func(c *Config) { c.Dataset.MoviesSource = "" }, true},
		{"unknown orphan policy", func(c *Config) { c.Dataset.OrphanRatings = "keep" }, true},
		{"unknown encoding", func(c *Config) { c.Dataset.MoviesEncoding = "cp1252" }, true},
		{"zero latent dim", func(c *Config) { c.Model.LatentDim = 0 }, true},
		{"zero epochs", func(c *Config) { c.Training.Epochs = 0 }, true},
		{"zero batch", func(c *Config) { c.Training.BatchSize = 0 }, true},
		{"negative learning rate", func(c *Config) { c.Training.LearningRate = -1 }, true},
		{"no validation split", func(c *Config) { c.Training.ValidationSplit = 0 }, false},
		{"storage enabled without path", func(c *Config) {
			c.Storage.Enabled = true
			c.Storage.Path = ""
		}, true},
		{"storage disabled without path", func(c *Config) { c.Storage.Path = "" }, false},
		{"console logs", func(c *Config) { c.Logging.Format = "console" }, false},
		{"xml logs", func(c *Config) { c.Logging.Format = "xml" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := defaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantError && err == nil {
				t.Error("Validate() = nil, want error")
			}
			if !tt.wantError && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
		})
	}
}

func TestServerConfig_Addr(t *testing.T) {
	t.Parallel()

	s := ServerConfig{Host: "127.0.0.1", Port: 8080}
	if got := s.Addr(); got != "127.0.0.1:8080" {
		t.Errorf("Addr() = %q, want 127.0.0.1:8080", got)
	}
}
