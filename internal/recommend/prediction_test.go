// Cinelens - MovieLens Matrix Factorization Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinelens

package recommend

import (
	"math"
	"testing"
)

func TestClampAndClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		raw       float64
		wantValue float64
		wantBand  Band
	}{
		{"far below scale", -3.2, 1, BandLow},
		{"exactly one", 1, 1, BandLow},
		{"low boundary", 2.0, 2.0, BandLow},
		{"just above low", 2.01, 2.01, BandMedium},
		{"middle", 3.0, 3.0, BandMedium},
		{"just below high", 3.999, 3.999, BandMedium},
		{"high boundary", 4.0, 4.0, BandHigh},
		{"top of scale", 5, 5, BandHigh},
		{"above scale", 7.5, 5, BandHigh},
		{"NaN", math.NaN(), 1, BandLow},
		{"positive infinity", math.Inf(1), 5, BandHigh},
		{"negative infinity", math.Inf(-1), 1, BandLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			value := Clamp(tt.raw)
			if value != tt.wantValue {
				t.Errorf("Clamp(%v) = %v, want %v", tt.raw, value, tt.wantValue)
			}
			if band := Classify(value); band != tt.wantBand {
				t.Errorf("Classify(%v) = %q, want %q", value, band, tt.wantBand)
			}
		})
	}
}

func TestFormatPrediction(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		userID  int
		movieID int
		display string
		found   bool
		value   float64
		want    string
	}{
		{
			name: "title with year", userID: 196, movieID: 242,
			display: "Kolya (1996)", found: true, value: 3.456,
			want: "Predicted rating for User 196 on “Kolya (1996)”: 3.46/5",
		},
		{
			name: "title without year", userID: 1, movieID: 267,
			display: "unknown", found: true, value: 2,
			want: "Predicted rating for User 1 on “unknown”: 2.00/5",
		},
		{
			name: "missing from catalog", userID: 7, movieID: 9999,
			found: false, value: 5,
			want: "Predicted rating for User 7 on “Movie 9999”: 5.00/5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			title := MovieTitle(tt.movieID, tt.display, tt.found)
			if got := FormatPrediction(tt.userID, title, tt.value); got != tt.want {
				t.Errorf("FormatPrediction() = %q, want %q", got, tt.want)
			}
		})
	}
}
