// Cinelens - MovieLens Matrix Factorization Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinelens

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Dataset Metrics
	DatasetFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cinelens_dataset_fetch_duration_seconds",
			Help:    "Time spent reading a dataset file",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"file", "source"}, // file: movies|ratings, source: file|http
	)

	DatasetRecords = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cinelens_dataset_records",
			Help: "Records in the currently loaded dataset",
		},
		[]string{"kind"}, // movies, ratings, users
	)

	DatasetSkippedLines = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinelens_dataset_skipped_lines_total",
			Help: "Malformed dataset lines dropped during parsing",
		},
		[]string{"file"},
	)

	OrphanRatingsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cinelens_orphan_ratings_dropped_total",
			Help: "Ratings dropped because their movie is missing from the catalog",
		},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cinelens_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	// Session and Training Metrics
	SessionState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cinelens_session_state",
			Help: "1 for the current session state, 0 otherwise",
		},
		[]string{"state"},
	)

	TrainingEpochLoss = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cinelens_training_epoch_loss",
			Help: "Mean squared error of the most recent epoch",
		},
		[]string{"split"}, // train, validation
	)

	TrainingEpochsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cinelens_training_epochs_total",
			Help: "Training epochs completed",
		},
	)

	TrainingRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinelens_training_runs_total",
			Help: "Training runs by outcome",
		},
		[]string{"status"}, // completed, failed, canceled
	)

	TrainingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cinelens_training_duration_seconds",
			Help:    "Wall time of a full training run",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
		},
	)

	ModelVersion = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cinelens_model_version",
			Help: "Version of the model currently serving predictions",
		},
	)

	ModelSnapshotsSaved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cinelens_model_snapshots_saved_total",
			Help: "Model snapshots written to disk",
		},
	)

	// Prediction Metrics
	PredictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinelens_predictions_total",
			Help: "Predictions served by rating band",
		},
		[]string{"band"},
	)

	PredictionRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinelens_prediction_rejections_total",
			Help: "Prediction requests answered without a model query",
		},
		[]string{"reason"}, // not_ready, missing_selection, unknown_user, unknown_movie
	)

	PredictionCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cinelens_prediction_cache_hits_total",
			Help: "Prediction cache hits",
		},
	)

	PredictionCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cinelens_prediction_cache_misses_total",
			Help: "Prediction cache misses",
		},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinelens_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cinelens_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cinelens_api_active_requests",
			Help: "Number of in-flight API requests",
		},
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cinelens_websocket_connections",
			Help: "Connected progress stream clients",
		},
	)

	WSMessagesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cinelens_websocket_messages_dropped_total",
			Help: "Messages dropped because a client or the hub buffer was full",
		},
	)
)

// sessionStates lists every label value of SessionState.
var sessionStates = []string{"idle", "loading", "training", "ready", "failed"}

// SetSessionState marks state as current and clears the others.
func SetSessionState(state string) {
	for _, s := range sessionStates {
		v := 0.0
		if s == state {
			v = 1
		}
		SessionState.WithLabelValues(s).Set(v)
	}
}

// RecordDataset publishes the counts of a freshly loaded dataset.
func RecordDataset(movies, ratings, users int) {
	DatasetRecords.WithLabelValues("movies").Set(float64(movies))
	DatasetRecords.WithLabelValues("ratings").Set(float64(ratings))
	DatasetRecords.WithLabelValues("users").Set(float64(users))
}

// RecordEpoch records the losses of a finished epoch.
func RecordEpoch(loss, valLoss float64, hasValidation bool) {
	TrainingEpochsTotal.Inc()
	TrainingEpochLoss.WithLabelValues("train").Set(loss)
	if hasValidation {
		TrainingEpochLoss.WithLabelValues("validation").Set(valLoss)
	}
}

// RecordTrainingRun records the outcome and duration of a training run.
func RecordTrainingRun(status string, duration time.Duration) {
	TrainingRunsTotal.WithLabelValues(status).Inc()
	TrainingDuration.Observe(duration.Seconds())
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
