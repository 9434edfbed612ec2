// Cinelens - MovieLens Matrix Factorization Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinelens

package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	io_prometheus_client "github.com/prometheus/client_model/go"
)

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m io_prometheus_client.Metric
	if err := g.Write(&m); err != nil {
		t.Fatalf("gauge.Write() error = %v", err)
	}
	return m.GetGauge().GetValue()
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m io_prometheus_client.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("counter.Write() error = %v", err)
	}
	return m.GetCounter().GetValue()
}

func TestSetSessionState(t *testing.T) {
	SetSessionState("training")

	for _, s := range sessionStates {
		want := 0.0
		if s == "training" {
			want = 1
		}
		if got := gaugeValue(t, SessionState.WithLabelValues(s)); got != want {
			t.Errorf("session_state{state=%q} = %v, want %v", s, got, want)
		}
	}

	SetSessionState("ready")
	if got := gaugeValue(t, SessionState.WithLabelValues("training")); got != 0 {
		t.Errorf("training gauge = %v after moving to ready, want 0", got)
	}
}

func TestRecordEpoch(t *testing.T) {
	before := counterValue(t, TrainingEpochsTotal)

	RecordEpoch(1.25, 1.5, true)

	if got := counterValue(t, TrainingEpochsTotal); got != before+1 {
		t.Errorf("epochs_total = %v, want %v", got, before+1)
	}
	if got := gaugeValue(t, TrainingEpochLoss.WithLabelValues("train")); got != 1.25 {
		t.Errorf("train loss = %v, want 1.25", got)
	}
	if got := gaugeValue(t, TrainingEpochLoss.WithLabelValues("validation")); got != 1.5 {
		t.Errorf("validation loss = %v, want 1.5", got)
	}
}

func TestRecordDataset(t *testing.T) {
	RecordDataset(1682, 100000, 943)

	if got := gaugeValue(t, DatasetRecords.WithLabelValues("users")); got != 943 {
		t.Errorf("dataset_records{kind=users} = %v, want 943", got)
	}
}

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/predict", "200"))

	RecordAPIRequest("GET", "/api/v1/predict", "200", 3*time.Millisecond)

	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/predict", "200"))
	if after != before+1 {
		t.Errorf("api_requests_total = %v, want %v", after, before+1)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := gaugeValue(t, APIActiveRequests)
	TrackActiveRequest(true)
	if got := gaugeValue(t, APIActiveRequests); got != before+1 {
		t.Errorf("active requests = %v, want %v", got, before+1)
	}
	TrackActiveRequest(false)
	if got := gaugeValue(t, APIActiveRequests); got != before {
		t.Errorf("active requests = %v, want %v", got, before)
	}
}

func TestMetricsLint(t *testing.T) {
	problems, err := testutil.GatherAndLint(prometheus.DefaultGatherer)
	if err != nil {
		t.Fatalf("GatherAndLint() error = %v", err)
	}
	for _, p := range problems {
		if strings.HasPrefix(p.Metric, "cinelens_") {
			t.Errorf("lint problem in %s: %s", p.Metric, p.Text)
		}
	}
}
