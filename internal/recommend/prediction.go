// Cinelens - MovieLens Matrix Factorization Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinelens

package recommend

import (
	"fmt"
	"math"
	"strconv"
)

// Rating scale bounds and band thresholds.
const (
	MinRating = 1.0
	MaxRating = 5.0

	highThreshold = 4.0
	lowThreshold  = 2.0
)

// Messages shown in place of a prediction.
const (
	NotReadyText         = "Model not ready yet. Please wait…"
	MissingSelectionText = "Please select both a user and a movie."
)

// Band is the visual classification of a predicted rating.
type Band string

const (
	BandHigh   Band = "high"
	BandMedium Band = "medium"
	BandLow    Band = "low"
)

// Prediction is the result shown for one user and movie pair.
type Prediction struct {
	UserID       int     `json:"user_id"`
	MovieID      int     `json:"movie_id"`
	Title        string  `json:"title"`
	Raw          float64 `json:"raw"`
	Value        float64 `json:"value"`
	Band         Band    `json:"band"`
	Text         string  `json:"text"`
	ModelVersion int     `json:"model_version"`
	Cached       bool    `json:"cached,omitempty"`
}

// Clamp bounds a raw model output to the rating scale. NaN maps to MinRating.
func Clamp(raw float64) float64 {
	if math.IsNaN(raw) {
		return MinRating
	}
	return max(MinRating, min(MaxRating, raw))
}

// Classify bands a clamped value: high at or above 4, low at or below 2.
func Classify(value float64) Band {
	switch {
	case value >= highThreshold:
		return BandHigh
	case value <= lowThreshold:
		return BandLow
	default:
		return BandMedium
	}
}

// MovieTitle returns the label used in prediction text. Movies missing from
// the catalog are labelled by ID.
func MovieTitle(movieID int, displayTitle string, found bool) string {
	if !found {
		return "Movie " + strconv.Itoa(movieID)
	}
	return displayTitle
}

// FormatPrediction renders the result line with two decimals.
func FormatPrediction(userID int, title string, value float64) string {
	return fmt.Sprintf("Predicted rating for User %d on “%s”: %.2f/5", userID, title, value)
}

// notReadyPrediction and missingSelectionPrediction are the placeholder
// results returned alongside ErrNotReady and ErrMissingSelection.
func notReadyPrediction() Prediction {
	return Prediction{Band: BandMedium, Text: NotReadyText}
}

func missingSelectionPrediction() Prediction {
	return Prediction{Band: BandMedium, Text: MissingSelectionText}
}
