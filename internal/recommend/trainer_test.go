// Cinelens - MovieLens Matrix Factorization Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinelens

package recommend

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/rs/zerolog"
)

func TestFormatProgress(t *testing.T) {
	t.Parallel()

	got := FormatProgress(3, 8, 0.123456)
	want := "Epoch 3/8 — loss: 0.1235"
	if got != want {
		t.Errorf("FormatProgress() = %q, want %q", got, want)
	}
}

func TestSplitValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		n         int
		split     float64
		wantTrain int
		wantVal   int
	}{
		{"ten percent of ten", 10, 0.1, 9, 1},
		{"floor of the train side", 15, 0.1, 13, 2},
		{"movielens size", 100000, 0.1, 90000, 10000},
		{"no split", 7, 0, 7, 0},
		{"tiny set", 1, 0.1, 0, 1},
		{"empty", 0, 0.1, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			examples := make([]Example, tt.n)
			for i := range examples {
				examples[i].Rating = float64(i)
			}
			train, val := SplitValidation(examples, tt.split)
			if len(train) != tt.wantTrain || len(val) != tt.wantVal {
				t.Fatalf("split = %d/%d, want %d/%d", len(train), len(val), tt.wantTrain, tt.wantVal)
			}
			// The validation rows are the tail, in input order
			for i, ex := range val {
				if ex.Rating != float64(tt.wantTrain+i) {
					t.Errorf("val[%d] = row %v, want row %d", i, ex.Rating, tt.wantTrain+i)
				}
			}
		})
	}
}

func TestAdam_FirstStepMovesByLearningRate(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig().Training
	cfg.LearningRate = 0.01
	opt := newAdam(cfg, 3)

	params := [][]float64{{1, 1, 1}}
	grads := [][]float64{{0.5, -2, 0}}
	opt.update(params, grads)

	// With bias correction the first step is lr * g / (|g| + eps)
	want := []float64{1 - 0.01, 1 + 0.01, 1}
	for i := range want {
		if math.Abs(params[0][i]-want[i]) > 1e-6 {
			t.Errorf("param[%d] = %v, want %v", i, params[0][i], want[i])
		}
	}
}

// constantExamples rates every user and movie pair with the same value.
func constantExamples(users, movies int, rating float64) []Example {
	out := make([]Example, 0, users*movies)
	for u := 0; u < users; u++ {
		for m := 0; m < movies; m++ {
			out = append(out, Example{User: u, Movie: m, Rating: rating})
		}
	}
	return out
}

func testTrainingConfig() TrainingConfig {
	tc := DefaultConfig().Training
	tc.Epochs = 30
	tc.BatchSize = 4
	tc.LearningRate = 0.05
	return tc
}

func TestTrainer_Fit(t *testing.T) {
	t.Parallel()

	m, _ := NewModel(5, 4, 4, 1)
	examples := constantExamples(5, 4, 4)
	tc := testTrainingConfig()

	var events []ProgressEvent
	result, err := NewTrainer(tc, 1, zerolog.Nop()).Fit(context.Background(), m, examples, func(ev ProgressEvent) {
		events = append(events, ev)
	})
	if err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	if result.TrainRows != 18 || result.ValidationRows != 2 {
		t.Errorf("rows = %d/%d, want 18/2", result.TrainRows, result.ValidationRows)
	}
	if len(events) != tc.Epochs {
		t.Fatalf("got %d progress events, want %d", len(events), tc.Epochs)
	}
	for i, ev := range events {
		if ev.Epoch != i+1 || ev.Epochs != tc.Epochs {
			t.Errorf("event %d = epoch %d/%d, want %d/%d", i, ev.Epoch, ev.Epochs, i+1, tc.Epochs)
		}
		if !ev.HasValidation {
			t.Errorf("event %d has no validation loss", i)
		}
		if ev.Text != FormatProgress(ev.Epoch, ev.Epochs, ev.Loss) {
			t.Errorf("event %d text = %q", i, ev.Text)
		}
	}

	first, last := events[0].Loss, events[len(events)-1].Loss
	if !(last < first/2) {
		t.Errorf("loss went from %v to %v, want a clear decrease", first, last)
	}
	if result.FinalLoss() != last {
		t.Errorf("FinalLoss() = %v, want %v", result.FinalLoss(), last)
	}
}

func TestTrainer_FitDeterministic(t *testing.T) {
	t.Parallel()

	run := func() []float64 {
		m, _ := NewModel(5, 4, 4, 3)
		tc := testTrainingConfig()
		tc.Epochs = 3
		if _, err := NewTrainer(tc, 3, zerolog.Nop()).Fit(context.Background(), m, constantExamples(5, 4, 3), nil); err != nil {
			t.Fatalf("Fit() error = %v", err)
		}
		return m.Snapshot().UserFactors
	}

	a, b := run(), run()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("factor %d differs between identical runs: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestTrainer_FitNoValidation(t *testing.T) {
	t.Parallel()

	m, _ := NewModel(2, 2, 2, 1)
	tc := testTrainingConfig()
	tc.Epochs = 1
	tc.ValidationSplit = 0

	var got ProgressEvent
	_, err := NewTrainer(tc, 1, zerolog.Nop()).Fit(context.Background(), m, constantExamples(2, 2, 5), func(ev ProgressEvent) {
		got = ev
	})
	if err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	if got.HasValidation || got.ValLoss != 0 {
		t.Errorf("event = %+v, want no validation loss", got)
	}
}

func TestTrainer_FitErrors(t *testing.T) {
	t.Parallel()

	t.Run("no training rows", func(t *testing.T) {
		t.Parallel()

		m, _ := NewModel(1, 1, 2, 1)
		_, err := NewTrainer(testTrainingConfig(), 1, zerolog.Nop()).Fit(context.Background(), m, []Example{{Rating: 3}}, nil)
		if !errors.Is(err, ErrNoTrainingData) {
			t.Errorf("Fit() error = %v, want ErrNoTrainingData", err)
		}
	})

	t.Run("example outside the tables", func(t *testing.T) {
		t.Parallel()

		m, _ := NewModel(2, 2, 2, 1)
		examples := constantExamples(2, 2, 4)
		examples[1].Movie = 7
		_, err := NewTrainer(testTrainingConfig(), 1, zerolog.Nop()).Fit(context.Background(), m, examples, nil)
		if !errors.Is(err, ErrIndexOutOfRange) {
			t.Errorf("Fit() error = %v, want ErrIndexOutOfRange", err)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		m, _ := NewModel(5, 4, 4, 1)

		epochs := 0
		_, err := NewTrainer(testTrainingConfig(), 1, zerolog.Nop()).Fit(ctx, m, constantExamples(5, 4, 4), func(ProgressEvent) {
			epochs++
			cancel()
		})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Fit() error = %v, want context.Canceled", err)
		}
		if epochs != 1 {
			t.Errorf("ran %d epochs after cancel, want 1", epochs)
		}
	})
}

func TestMeanSquaredError(t *testing.T) {
	t.Parallel()

	m := &Model{numUsers: 1, numMovies: 2, dim: 1, users: []float64{2}, movies: []float64{1, 2}}
	rows := []Example{{User: 0, Movie: 0, Rating: 3}, {User: 0, Movie: 1, Rating: 4}}

	// predictions 2 and 4: errors 1 and 0
	if got := MeanSquaredError(m, rows); got != 0.5 {
		t.Errorf("MeanSquaredError() = %v, want 0.5", got)
	}
	if got := MeanSquaredError(m, nil); got != 0 {
		t.Errorf("MeanSquaredError(nil) = %v, want 0", got)
	}
}
