// Cinelens - MovieLens Matrix Factorization Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinelens

package recommend

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/rs/zerolog"
)

// Example is one training row in dense index space.
type Example struct {
	User   int
	Movie  int
	Rating float64
}

// ProgressEvent is emitted after every completed epoch.
type ProgressEvent struct {
	RunID         string    `json:"run_id,omitempty"`
	Epoch         int       `json:"epoch"`
	Epochs        int       `json:"epochs"`
	Loss          float64   `json:"loss"`
	ValLoss       float64   `json:"val_loss"`
	HasValidation bool      `json:"has_validation"`
	Text          string    `json:"text"`
	At            time.Time `json:"at"`
}

// FormatProgress renders the per-epoch status line.
func FormatProgress(epoch, epochs int, loss float64) string {
	return fmt.Sprintf("Epoch %d/%d — loss: %.4f", epoch, epochs, loss)
}

// FitResult summarizes a completed Fit.
type FitResult struct {
	TrainRows      int
	ValidationRows int
	Epochs         []ProgressEvent
	Duration       time.Duration
}

// FinalLoss returns the training loss of the last epoch.
func (r *FitResult) FinalLoss() float64 {
	if len(r.Epochs) == 0 {
		return math.NaN()
	}
	return r.Epochs[len(r.Epochs)-1].Loss
}

// Trainer fits a Model with mini-batch Adam on mean squared error.
type Trainer struct {
	cfg    TrainingConfig
	seed   int64
	logger zerolog.Logger
}

// NewTrainer creates a trainer. The seed drives per-epoch shuffling.
func NewTrainer(cfg TrainingConfig, seed int64, logger zerolog.Logger) *Trainer {
	return &Trainer{
		cfg:    cfg,
		seed:   seed,
		logger: logger.With().Str("component", "trainer").Logger(),
	}
}

// SplitValidation separates the trailing validationSplit fraction of rows.
// Row order is preserved; the held-out rows are never shuffled into training.
func SplitValidation(examples []Example, validationSplit float64) (train, val []Example) {
	splitAt := int(math.Floor(float64(len(examples)) * (1 - validationSplit)))
	if splitAt > len(examples) {
		splitAt = len(examples)
	}
	return examples[:splitAt], examples[splitAt:]
}

// Fit trains m in place for the configured number of epochs. onEpoch, when
// not nil, is called synchronously after each epoch. Cancellation is
// checked between batches; a cancelled fit leaves m partially trained.
func (t *Trainer) Fit(ctx context.Context, m *Model, examples []Example, onEpoch func(ProgressEvent)) (*FitResult, error) {
	start := time.Now()

	train, val := SplitValidation(examples, t.cfg.ValidationSplit)
	if len(train) == 0 {
		return nil, fmt.Errorf("%w: %d examples with validation split %.2f", ErrNoTrainingData, len(examples), t.cfg.ValidationSplit)
	}
	for i, ex := range examples {
		if ex.User < 0 || ex.User >= m.numUsers || ex.Movie < 0 || ex.Movie >= m.numMovies {
			return nil, fmt.Errorf("example %d: %w", i, ErrIndexOutOfRange)
		}
	}

	rng := rand.New(rand.NewSource(t.seed)) //nolint:gosec // math/rand is fine for batch shuffling
	order := make([]int, len(train))
	for i := range order {
		order[i] = i
	}

	opt := newAdam(t.cfg, len(m.users), len(m.movies))
	gradUsers := make([]float64, len(m.users))
	gradMovies := make([]float64, len(m.movies))
	params := [][]float64{m.users, m.movies}
	grads := [][]float64{gradUsers, gradMovies}

	result := &FitResult{
		TrainRows:      len(train),
		ValidationRows: len(val),
		Epochs:         make([]ProgressEvent, 0, t.cfg.Epochs),
	}

	t.logger.Debug().
		Int("train_rows", len(train)).
		Int("validation_rows", len(val)).
		Int("epochs", t.cfg.Epochs).
		Int("batch_size", t.cfg.BatchSize).
		Msg("starting fit")

	for epoch := 1; epoch <= t.cfg.Epochs; epoch++ {
		if t.cfg.Shuffle {
			rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
		}

		var sumSq float64
		for lo := 0; lo < len(order); lo += t.cfg.BatchSize {
			if ContextCancelled(ctx) {
				return nil, fmt.Errorf("training cancelled in epoch %d: %w", epoch, ctx.Err())
			}

			hi := min(lo+t.cfg.BatchSize, len(order))
			sumSq += t.accumulate(m, train, order[lo:hi], gradUsers, gradMovies)
			opt.update(params, grads)
			clear(gradUsers)
			clear(gradMovies)
		}

		ev := ProgressEvent{
			Epoch:  epoch,
			Epochs: t.cfg.Epochs,
			Loss:   sumSq / float64(len(train)),
			At:     time.Now(),
		}
		if len(val) > 0 {
			ev.ValLoss = MeanSquaredError(m, val)
			ev.HasValidation = true
		}
		ev.Text = FormatProgress(ev.Epoch, ev.Epochs, ev.Loss)
		result.Epochs = append(result.Epochs, ev)

		t.logger.Debug().
			Int("epoch", epoch).
			Float64("loss", ev.Loss).
			Float64("val_loss", ev.ValLoss).
			Msg("epoch complete")

		if onEpoch != nil {
			onEpoch(ev)
		}
	}

	result.Duration = time.Since(start)
	return result, nil
}

// accumulate adds the batch MSE gradient into gu and gm and returns the
// batch's summed squared error, measured before the update.
func (t *Trainer) accumulate(m *Model, rows []Example, batch []int, gu, gm []float64) float64 {
	d := m.dim
	scale := 2 / float64(len(batch))

	var sumSq float64
	for _, idx := range batch {
		ex := rows[idx]
		diff := m.dot(ex.User, ex.Movie) - ex.Rating
		sumSq += diff * diff

		g := scale * diff
		uo, mo := ex.User*d, ex.Movie*d
		for k := 0; k < d; k++ {
			gu[uo+k] += g * m.movies[mo+k]
			gm[mo+k] += g * m.users[uo+k]
		}
	}
	return sumSq
}

// MeanSquaredError evaluates m on rows. It returns 0 for no rows.
func MeanSquaredError(m *Model, rows []Example) float64 {
	if len(rows) == 0 {
		return 0
	}
	var sumSq float64
	for _, ex := range rows {
		diff := m.dot(ex.User, ex.Movie) - ex.Rating
		sumSq += diff * diff
	}
	return sumSq / float64(len(rows))
}

// ContextCancelled reports whether ctx is done without blocking.
func ContextCancelled(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}
