// Cinelens - MovieLens Matrix Factorization Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinelens

package recommend

import (
	"fmt"
	"math/rand"
)

// initScale bounds the uniform embedding initializer.
const initScale = 0.05

// Model is a pure dot-product matrix factorization: one latent vector per
// user, one per movie, and the prediction is their inner product. There is
// no bias term and no output activation, so predictions are unbounded.
//
// Factors are stored row-major in flat slices. A Model is not safe for
// concurrent mutation; the trainer owns it until Fit returns, after which it
// is only read.
type Model struct {
	numUsers  int
	numMovies int
	dim       int

	users  []float64
	movies []float64
}

// Snapshot is the serializable state of a Model.
type Snapshot struct {
	NumUsers     int       `json:"num_users"`
	NumMovies    int       `json:"num_movies"`
	LatentDim    int       `json:"latent_dim"`
	UserFactors  []float64 `json:"user_factors"`
	MovieFactors []float64 `json:"movie_factors"`
}

// NewModel creates a model with both embedding tables drawn uniformly from
// [-0.05, 0.05] using the given seed.
func NewModel(numUsers, numMovies, latentDim int, seed int64) (*Model, error) {
	if numUsers < 1 || numMovies < 1 {
		return nil, fmt.Errorf("model needs at least one user and one movie, got %d users and %d movies", numUsers, numMovies)
	}
	if latentDim < 1 {
		return nil, fmt.Errorf("latent dimension must be positive, got %d", latentDim)
	}

	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // reproducible init, not security
	m := &Model{
		numUsers:  numUsers,
		numMovies: numMovies,
		dim:       latentDim,
		users:     make([]float64, numUsers*latentDim),
		movies:    make([]float64, numMovies*latentDim),
	}
	for i := range m.users {
		m.users[i] = (rng.Float64()*2 - 1) * initScale
	}
	for i := range m.movies {
		m.movies[i] = (rng.Float64()*2 - 1) * initScale
	}
	return m, nil
}

// ModelFromSnapshot rebuilds a model from saved state, checking table sizes.
func ModelFromSnapshot(s *Snapshot) (*Model, error) {
	if s == nil {
		return nil, fmt.Errorf("nil snapshot")
	}
	if s.NumUsers < 1 || s.NumMovies < 1 || s.LatentDim < 1 {
		return nil, fmt.Errorf("invalid snapshot shape %dx%dx%d", s.NumUsers, s.NumMovies, s.LatentDim)
	}
	if len(s.UserFactors) != s.NumUsers*s.LatentDim {
		return nil, fmt.Errorf("user factors: want %d values, got %d", s.NumUsers*s.LatentDim, len(s.UserFactors))
	}
	if len(s.MovieFactors) != s.NumMovies*s.LatentDim {
		return nil, fmt.Errorf("movie factors: want %d values, got %d", s.NumMovies*s.LatentDim, len(s.MovieFactors))
	}

	return &Model{
		numUsers:  s.NumUsers,
		numMovies: s.NumMovies,
		dim:       s.LatentDim,
		users:     append([]float64(nil), s.UserFactors...),
		movies:    append([]float64(nil), s.MovieFactors...),
	}, nil
}

// Snapshot copies the model state.
func (m *Model) Snapshot() *Snapshot {
	return &Snapshot{
		NumUsers:     m.numUsers,
		NumMovies:    m.numMovies,
		LatentDim:    m.dim,
		UserFactors:  append([]float64(nil), m.users...),
		MovieFactors: append([]float64(nil), m.movies...),
	}
}

// NumUsers returns the number of user embeddings.
func (m *Model) NumUsers() int { return m.numUsers }

// NumMovies returns the number of movie embeddings.
func (m *Model) NumMovies() int { return m.numMovies }

// LatentDim returns the embedding width.
func (m *Model) LatentDim() int { return m.dim }

// Predict returns the raw dot product of the user and movie embeddings.
func (m *Model) Predict(userIndex, movieIndex int) (float64, error) {
	if userIndex < 0 || userIndex >= m.numUsers {
		return 0, fmt.Errorf("%w: user %d not in [0, %d)", ErrIndexOutOfRange, userIndex, m.numUsers)
	}
	if movieIndex < 0 || movieIndex >= m.numMovies {
		return 0, fmt.Errorf("%w: movie %d not in [0, %d)", ErrIndexOutOfRange, movieIndex, m.numMovies)
	}
	return m.dot(userIndex, movieIndex), nil
}

func (m *Model) dot(u, v int) float64 {
	uv := m.users[u*m.dim : (u+1)*m.dim]
	mv := m.movies[v*m.dim : (v+1)*m.dim]
	var sum float64
	for k := range uv {
		sum += uv[k] * mv[k]
	}
	return sum
}
