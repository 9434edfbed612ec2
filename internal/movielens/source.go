// Cinelens - MovieLens Matrix Factorization Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinelens

package movielens

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/cinelens/internal/logging"
	"github.com/tomtom215/cinelens/internal/metrics"
)

// maxDatasetBytes caps a single downloaded file. u.data is about 2 MB.
const maxDatasetBytes = 64 << 20

// Fetcher reads dataset files from local paths or http(s) URLs.
// Remote reads go through a circuit breaker so a dead mirror fails fast on
// repeated load attempts.
type Fetcher struct {
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
}

// NewFetcher creates a Fetcher whose HTTP requests time out after timeout.
func NewFetcher(timeout time.Duration) *Fetcher {
	name := "dataset-fetch"
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		IsSuccessful: func(err error) bool {
			// Caller cancellation says nothing about the remote host.
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	})

	return &Fetcher{
		client:  &http.Client{Timeout: timeout},
		breaker: cb,
	}
}

// Fetch returns the contents of source. what names the file in errors,
// for example "Movies" gives "Movies fetch failed: 404".
func (f *Fetcher) Fetch(ctx context.Context, what, source string) ([]byte, error) {
	start := time.Now()
	kind := "file"
	if isRemote(source) {
		kind = "http"
	}
	defer func() {
		metrics.DatasetFetchDuration.WithLabelValues(strings.ToLower(what), kind).Observe(time.Since(start).Seconds())
	}()

	if kind == "file" {
		data, err := os.ReadFile(source)
		if err != nil {
			return nil, fmt.Errorf("%s fetch failed: %w", what, err)
		}
		return data, nil
	}

	data, err := f.breaker.Execute(func() ([]byte, error) {
		return f.get(ctx, what, source)
	})
	if err != nil {
		var fe *FetchError
		if errors.As(err, &fe) {
			return nil, err
		}
		return nil, fmt.Errorf("%s fetch failed: %w", what, err)
	}
	return data, nil
}

func (f *Fetcher) get(ctx context.Context, what, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{What: what, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDatasetBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxDatasetBytes {
		return nil, fmt.Errorf("response exceeds %d bytes", maxDatasetBytes)
	}
	return data, nil
}

// State returns the circuit breaker state name.
func (f *Fetcher) State() string {
	return f.breaker.State().String()
}

func isRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
