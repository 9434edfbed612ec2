// Cinelens - MovieLens Matrix Factorization Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinelens

package recommend

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/cinelens/internal/cache"
	"github.com/tomtom215/cinelens/internal/logging"
	"github.com/tomtom215/cinelens/internal/metrics"
	"github.com/tomtom215/cinelens/internal/movielens"
)

// DatasetLoader produces the dataset a session trains on.
type DatasetLoader interface {
	LoadDataset(ctx context.Context) (*movielens.Dataset, error)
}

// LoaderFunc adapts a function to DatasetLoader.
type LoaderFunc func(ctx context.Context) (*movielens.Dataset, error)

// LoadDataset calls f(ctx).
func (f LoaderFunc) LoadDataset(ctx context.Context) (*movielens.Dataset, error) {
	return f(ctx)
}

// Observer receives lifecycle notifications. Methods are called
// synchronously from the goroutine driving the operation and must not block.
type Observer interface {
	OnStateChange(change StateChange)
	OnEpoch(event ProgressEvent)
}

// Run outcome statuses.
const (
	RunRunning   = "running"
	RunSucceeded = "succeeded"
	RunFailed    = "failed"
	RunCancelled = "cancelled"
)

// RunInfo describes a training run as it starts.
type RunInfo struct {
	ID           string    `json:"id"`
	StartedAt    time.Time `json:"started_at"`
	Epochs       int       `json:"epochs"`
	BatchSize    int       `json:"batch_size"`
	LearningRate float64   `json:"learning_rate"`
	LatentDim    int       `json:"latent_dim"`
	Examples     int       `json:"examples"`
}

// RunOutcome describes how a training run ended.
type RunOutcome struct {
	Status       string    `json:"status"`
	FinishedAt   time.Time `json:"finished_at"`
	ModelVersion int       `json:"model_version,omitempty"`
	Error        string    `json:"error,omitempty"`
}

// RunRecorder persists the history of training runs.
type RunRecorder interface {
	BeginRun(ctx context.Context, info RunInfo) error
	RecordEpoch(ctx context.Context, runID string, event ProgressEvent) error
	EndRun(ctx context.Context, runID string, outcome RunOutcome) error
}

// SavedModel is a trained model together with the index IDs it was trained
// against, so it can be matched to a dataset on restore.
type SavedModel struct {
	Version   int       `json:"version"`
	TrainedAt time.Time `json:"trained_at"`
	UserIDs   []int     `json:"user_ids"`
	MovieIDs  []int     `json:"movie_ids"`
	Loss      float64   `json:"loss"`
	ValLoss   float64   `json:"val_loss"`
	Snapshot  *Snapshot `json:"snapshot"`
}

// ModelStore persists trained models.
type ModelStore interface {
	SaveModel(ctx context.Context, saved *SavedModel) error
	LatestModel(ctx context.Context) (*SavedModel, bool, error)
}

// PredictionCache memoizes predictions by model version and dense indices.
type PredictionCache interface {
	Get(key string) (Prediction, bool)
	Add(key string, value Prediction)
	Clear()
}

// Option is a selectable user or movie.
type Option struct {
	ID    int    `json:"id"`
	Label string `json:"label"`
}

// Status is a point-in-time view of the session.
type Status struct {
	State        State              `json:"state"`
	Error        string             `json:"error,omitempty"`
	Dataset      *movielens.Summary `json:"dataset,omitempty"`
	ModelVersion int                `json:"model_version"`
	TrainedAt    *time.Time         `json:"trained_at,omitempty"`
	RunID        string             `json:"run_id,omitempty"`
	LastEpoch    *ProgressEvent     `json:"last_epoch,omitempty"`
}

// Session owns the dataset, the trained model and the lifecycle state
// machine Idle -> Loading -> Idle -> Training -> Ready, with Failed
// reachable from Loading and Training.
//
// Transitions happen under mu; the slow work of loading and fitting runs
// without it, and the Loading and Training states keep a second operation
// from starting meanwhile.
type Session struct {
	cfg    *Config
	loader DatasetLoader
	logger zerolog.Logger

	mu        sync.RWMutex
	state     State
	lastErr   error
	dataset   *movielens.Dataset
	titles    *cache.PrefixIndex
	model     *Model
	version   int
	trainedAt time.Time
	runID     string
	lastEpoch *ProgressEvent

	observers []Observer
	recorder  RunRecorder
	store     ModelStore
	cache     PredictionCache
}

// NewSession creates a session in the Idle state.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewSession(cfg *Config, loader DatasetLoader, logger zerolog.Logger) (*Session, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if loader == nil {
		return nil, fmt.Errorf("dataset loader is required")
	}

	metrics.SetSessionState(StateIdle.String())
	return &Session{
		cfg:    cfg.Clone(),
		loader: loader,
		logger: logger.With().Str("component", "session").Logger(),
		state:  StateIdle,
	}, nil
}

// AddObserver registers an observer for state changes and epoch progress.
func (s *Session) AddObserver(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}

// SetRunRecorder sets where training run history is written.
func (s *Session) SetRunRecorder(r RunRecorder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recorder = r
}

// SetModelStore sets where trained models are saved.
func (s *Session) SetModelStore(store ModelStore) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store = store
}

// SetPredictionCache enables prediction memoization.
func (s *Session) SetPredictionCache(c PredictionCache) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = c
}

// Config returns a copy of the session configuration.
func (s *Session) Config() *Config {
	return s.cfg.Clone()
}

// Start runs the startup sequence: load the dataset, then train on it.
func (s *Session) Start(ctx context.Context) error {
	if _, err := s.Load(ctx); err != nil {
		return err
	}
	return s.Train(ctx)
}

// Load fetches and indexes the dataset. A successful load discards any
// previously trained model, since its indices may no longer line up, and
// leaves the session Idle.
func (s *Session) Load(ctx context.Context) (movielens.Summary, error) {
	if err := s.begin(StateLoading, false); err != nil {
		return movielens.Summary{}, err
	}

	start := time.Now()
	logger := logging.WithContextIDs(ctx, s.logger)
	logger.Info().Msg("loading dataset")

	ds, err := s.loader.LoadDataset(ctx)
	if err != nil {
		err = fmt.Errorf("load dataset: %w", err)
		s.fail(err)
		return movielens.Summary{}, err
	}

	titles := cache.NewPrefixIndex()
	for _, m := range ds.Movies {
		titles.Insert(m.DisplayTitle(), m.ID)
	}

	s.mu.Lock()
	s.dataset = ds
	s.titles = titles
	s.model = nil
	s.runID = ""
	s.lastEpoch = nil
	change := s.transitionLocked(StateIdle, nil)
	s.mu.Unlock()

	s.clearCache()
	s.notifyState(change)

	summary := ds.Summary()
	logger.Info().
		Int("movies", summary.MovieCount).
		Int("ratings", summary.RatingCount).
		Int("users", summary.UserCount).
		Int("orphans_dropped", summary.OrphansDropped).
		Dur("duration", time.Since(start)).
		Msg("dataset loaded")

	return summary, nil
}

// Train fits a fresh model on the loaded dataset. On success the session
// becomes Ready with a new model version; on error it becomes Failed and
// the partially trained model is discarded.
func (s *Session) Train(ctx context.Context) error {
	if err := s.begin(StateTraining, true); err != nil {
		return err
	}

	s.mu.RLock()
	ds := s.dataset
	recorder := s.recorder
	s.mu.RUnlock()

	trainCtx, cancel := context.WithTimeout(ctx, s.cfg.Training.Timeout)
	defer cancel()
	// History writes must land even when the run itself was cancelled.
	recordCtx := context.WithoutCancel(ctx)

	start := time.Now()
	runID := uuid.New().String()
	logger := logging.WithContextIDs(ctx, s.logger).With().Str("run_id", runID).Logger()

	examples, err := BuildExamples(ds)
	if err != nil {
		return s.failRun(recordCtx, recorder, runID, start, err)
	}

	s.mu.Lock()
	s.runID = runID
	s.lastEpoch = nil
	s.mu.Unlock()

	if recorder != nil {
		info := RunInfo{
			ID:           runID,
			StartedAt:    start,
			Epochs:       s.cfg.Training.Epochs,
			BatchSize:    s.cfg.Training.BatchSize,
			LearningRate: s.cfg.Training.LearningRate,
			LatentDim:    s.cfg.Model.LatentDim,
			Examples:     len(examples),
		}
		if err := recorder.BeginRun(recordCtx, info); err != nil {
			logger.Warn().Err(err).Msg("failed to record run start")
		}
	}

	logger.Info().
		Int("examples", len(examples)).
		Int("users", ds.Users.Len()).
		Int("movies", ds.MovieIndex.Len()).
		Msg("starting model training")

	model, err := NewModel(ds.Users.Len(), ds.MovieIndex.Len(), s.cfg.Model.LatentDim, s.cfg.Model.Seed)
	if err != nil {
		return s.failRun(recordCtx, recorder, runID, start, err)
	}

	trainer := NewTrainer(s.cfg.Training, s.cfg.Model.Seed, logger)
	result, err := trainer.Fit(trainCtx, model, examples, func(ev ProgressEvent) {
		ev.RunID = runID
		s.onEpoch(recordCtx, recorder, ev)
	})
	if err != nil {
		return s.failRun(recordCtx, recorder, runID, start, err)
	}

	now := time.Now()
	s.mu.Lock()
	s.model = model
	s.version++
	version := s.version
	s.trainedAt = now
	store := s.store
	change := s.transitionLocked(StateReady, nil)
	s.mu.Unlock()

	s.clearCache()
	s.notifyState(change)

	metrics.RecordTrainingRun(RunSucceeded, result.Duration)
	metrics.ModelVersion.Set(float64(version))

	if recorder != nil {
		outcome := RunOutcome{Status: RunSucceeded, FinishedAt: now, ModelVersion: version}
		if err := recorder.EndRun(recordCtx, runID, outcome); err != nil {
			logger.Warn().Err(err).Msg("failed to record run end")
		}
	}

	if store != nil {
		last := result.Epochs[len(result.Epochs)-1]
		saved := &SavedModel{
			Version:   version,
			TrainedAt: now,
			UserIDs:   ds.Users.IDs(),
			MovieIDs:  ds.MovieIndex.IDs(),
			Loss:      last.Loss,
			ValLoss:   last.ValLoss,
			Snapshot:  model.Snapshot(),
		}
		if err := store.SaveModel(recordCtx, saved); err != nil {
			logger.Warn().Err(err).Int("version", version).Msg("failed to save model snapshot")
		} else {
			metrics.ModelSnapshotsSaved.Inc()
		}
	}

	logger.Info().
		Int("version", version).
		Float64("loss", result.FinalLoss()).
		Int64("duration_ms", result.Duration.Milliseconds()).
		Msg("model training complete")

	return nil
}

// Restore loads the newest stored model if it was trained against the
// currently loaded indexes. It reports whether a model was restored.
func (s *Session) Restore(ctx context.Context) (bool, error) {
	s.mu.RLock()
	store := s.store
	s.mu.RUnlock()
	if store == nil {
		return false, nil
	}

	saved, ok, err := store.LatestModel(ctx)
	if err != nil {
		return false, fmt.Errorf("load stored model: %w", err)
	}
	if !ok {
		return false, nil
	}

	model, err := ModelFromSnapshot(saved.Snapshot)
	if err != nil {
		return false, fmt.Errorf("stored model v%d: %w", saved.Version, err)
	}

	s.mu.Lock()
	if s.state.Busy() {
		state := s.state
		s.mu.Unlock()
		return false, fmt.Errorf("%w: %s in progress", ErrBusy, state)
	}
	if s.dataset == nil {
		s.mu.Unlock()
		return false, ErrNotLoaded
	}
	if !slices.Equal(saved.UserIDs, s.dataset.Users.IDs()) || !slices.Equal(saved.MovieIDs, s.dataset.MovieIndex.IDs()) {
		s.mu.Unlock()
		return false, fmt.Errorf("%w: stored model v%d", ErrSnapshotMismatch, saved.Version)
	}
	s.model = model
	s.version = max(s.version, saved.Version)
	s.trainedAt = saved.TrainedAt
	version := s.version
	change := s.transitionLocked(StateReady, nil)
	s.mu.Unlock()

	s.clearCache()
	s.notifyState(change)
	metrics.ModelVersion.Set(float64(version))

	s.logger.Info().
		Int("version", saved.Version).
		Time("trained_at", saved.TrainedAt).
		Msg("restored stored model")
	return true, nil
}

// Predict scores one user and movie pair. The returned Prediction always
// carries display text, including for ErrNotReady and ErrMissingSelection.
func (s *Session) Predict(userID, movieID *int) (Prediction, error) {
	s.mu.RLock()
	state, model, ds, version, pc := s.state, s.model, s.dataset, s.version, s.cache
	s.mu.RUnlock()

	if state != StateReady || model == nil {
		metrics.PredictionRejections.WithLabelValues("not_ready").Inc()
		return notReadyPrediction(), ErrNotReady
	}
	if userID == nil || movieID == nil {
		metrics.PredictionRejections.WithLabelValues("missing_selection").Inc()
		return missingSelectionPrediction(), ErrMissingSelection
	}

	u, ok := ds.Users.Lookup(*userID)
	if !ok {
		metrics.PredictionRejections.WithLabelValues("unknown_user").Inc()
		return Prediction{UserID: *userID, MovieID: *movieID, Band: BandMedium},
			fmt.Errorf("%w: %d", ErrUnknownUser, *userID)
	}
	m, ok := ds.MovieIndex.Lookup(*movieID)
	if !ok {
		metrics.PredictionRejections.WithLabelValues("unknown_movie").Inc()
		return Prediction{UserID: *userID, MovieID: *movieID, Band: BandMedium},
			fmt.Errorf("%w: %d", ErrUnknownMovie, *movieID)
	}

	key := predictionKey(version, u, m)
	if pc != nil {
		if p, hit := pc.Get(key); hit {
			metrics.PredictionCacheHits.Inc()
			p.Cached = true
			return p, nil
		}
		metrics.PredictionCacheMisses.Inc()
	}

	raw, err := model.Predict(u, m)
	if err != nil {
		return Prediction{UserID: *userID, MovieID: *movieID, Band: BandMedium}, err
	}

	movie, found := ds.Movie(*movieID)
	title := MovieTitle(*movieID, movie.DisplayTitle(), found)
	value := Clamp(raw)
	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		// JSON cannot carry non-finite numbers.
		s.logger.Warn().Int("user_id", *userID).Int("movie_id", *movieID).Msg("model produced a non-finite rating")
		raw = value
	}
	p := Prediction{
		UserID:       *userID,
		MovieID:      *movieID,
		Title:        title,
		Raw:          raw,
		Value:        value,
		Band:         Classify(value),
		Text:         FormatPrediction(*userID, title, value),
		ModelVersion: version,
	}

	if pc != nil {
		pc.Add(key, p)
	}
	metrics.PredictionsTotal.WithLabelValues(string(p.Band)).Inc()
	return p, nil
}

// Status returns the current session status.
func (s *Session) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Status{
		State:        s.state,
		ModelVersion: s.version,
		RunID:        s.runID,
	}
	if s.lastErr != nil {
		st.Error = s.lastErr.Error()
	}
	if s.dataset != nil {
		summary := s.dataset.Summary()
		st.Dataset = &summary
	}
	if s.model != nil && !s.trainedAt.IsZero() {
		t := s.trainedAt
		st.TrainedAt = &t
	}
	if s.lastEpoch != nil {
		ev := *s.lastEpoch
		st.LastEpoch = &ev
	}
	return st
}

// Users lists selectable users in ascending ID order.
func (s *Session) Users() ([]Option, error) {
	s.mu.RLock()
	ds := s.dataset
	s.mu.RUnlock()
	if ds == nil {
		return nil, ErrNotLoaded
	}

	ids := ds.Users.IDs()
	out := make([]Option, len(ids))
	for i, id := range ids {
		out[i] = Option{ID: id, Label: movielens.UserLabel(id)}
	}
	return out, nil
}

// Movies lists selectable movies in catalog order.
func (s *Session) Movies() ([]Option, error) {
	s.mu.RLock()
	ds := s.dataset
	s.mu.RUnlock()
	if ds == nil {
		return nil, ErrNotLoaded
	}

	out := make([]Option, len(ds.Movies))
	for i, m := range ds.Movies {
		out[i] = Option{ID: m.ID, Label: m.DisplayTitle()}
	}
	return out, nil
}

// SearchMovies returns up to limit movies whose display title starts with
// query, case-insensitively.
func (s *Session) SearchMovies(query string, limit int) ([]Option, error) {
	s.mu.RLock()
	ds, titles := s.dataset, s.titles
	s.mu.RUnlock()
	if ds == nil || titles == nil {
		return nil, ErrNotLoaded
	}

	matches := titles.Search(query, limit)
	out := make([]Option, 0, len(matches))
	for _, m := range matches {
		out = append(out, Option{ID: m.ID, Label: m.Key})
	}
	return out, nil
}

// BuildExamples maps every rating of ds through both indexes, preserving
// rating order.
func BuildExamples(ds *movielens.Dataset) ([]Example, error) {
	out := make([]Example, len(ds.Ratings))
	for i, r := range ds.Ratings {
		u, ok := ds.Users.Lookup(r.UserID)
		if !ok {
			return nil, fmt.Errorf("rating %d: %w: %d", i+1, ErrUnknownUser, r.UserID)
		}
		m, ok := ds.MovieIndex.Lookup(r.MovieID)
		if !ok {
			return nil, fmt.Errorf("rating %d: %w: %d", i+1, ErrUnknownMovie, r.MovieID)
		}
		out[i] = Example{User: u, Movie: m, Rating: r.Rating}
	}
	return out, nil
}

func predictionKey(version, u, m int) string {
	return strconv.Itoa(version) + ":" + strconv.Itoa(u) + ":" + strconv.Itoa(m)
}

// begin atomically checks preconditions and enters a busy state.
func (s *Session) begin(to State, needDataset bool) error {
	s.mu.Lock()
	if s.state.Busy() {
		state := s.state
		s.mu.Unlock()
		return fmt.Errorf("%w: %s in progress", ErrBusy, state)
	}
	if needDataset && s.dataset == nil {
		s.mu.Unlock()
		return ErrNotLoaded
	}
	change := s.transitionLocked(to, nil)
	s.mu.Unlock()

	s.notifyState(change)
	return nil
}

func (s *Session) fail(err error) {
	s.mu.Lock()
	change := s.transitionLocked(StateFailed, err)
	s.mu.Unlock()

	s.logger.Error().Err(err).Str("from", change.From.String()).Msg("session operation failed")
	s.notifyState(change)
}

func (s *Session) failRun(ctx context.Context, recorder RunRecorder, runID string, start time.Time, err error) error {
	err = fmt.Errorf("train model: %w", err)

	status := RunFailed
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		status = RunCancelled
	}

	s.mu.Lock()
	s.model = nil
	s.mu.Unlock()
	s.clearCache()
	s.fail(err)

	metrics.RecordTrainingRun(status, time.Since(start))
	if recorder != nil {
		outcome := RunOutcome{Status: status, FinishedAt: time.Now(), Error: err.Error()}
		if rerr := recorder.EndRun(ctx, runID, outcome); rerr != nil {
			s.logger.Warn().Err(rerr).Str("run_id", runID).Msg("failed to record run end")
		}
	}
	return err
}

// transitionLocked must be called with mu held.
func (s *Session) transitionLocked(to State, err error) StateChange {
	change := StateChange{From: s.state, To: to, At: time.Now()}
	if err != nil {
		change.Error = err.Error()
	}
	s.state = to
	s.lastErr = err
	metrics.SetSessionState(to.String())

	s.logger.Debug().
		Str("from", change.From.String()).
		Str("to", to.String()).
		Msg("session state changed")
	return change
}

func (s *Session) notifyState(change StateChange) {
	for _, o := range s.snapshotObservers() {
		o.OnStateChange(change)
	}
}

func (s *Session) onEpoch(ctx context.Context, recorder RunRecorder, ev ProgressEvent) {
	s.mu.Lock()
	s.lastEpoch = &ev
	s.mu.Unlock()

	metrics.RecordEpoch(ev.Loss, ev.ValLoss, ev.HasValidation)
	s.logger.Info().
		Str("run_id", ev.RunID).
		Int("epoch", ev.Epoch).
		Float64("loss", ev.Loss).
		Float64("val_loss", ev.ValLoss).
		Msg(ev.Text)

	if recorder != nil {
		if err := recorder.RecordEpoch(ctx, ev.RunID, ev); err != nil {
			s.logger.Warn().Err(err).Str("run_id", ev.RunID).Msg("failed to record epoch")
		}
	}
	for _, o := range s.snapshotObservers() {
		o.OnEpoch(ev)
	}
}

func (s *Session) snapshotObservers() []Observer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.observers)
}

func (s *Session) clearCache() {
	s.mu.RLock()
	pc := s.cache
	s.mu.RUnlock()
	if pc != nil {
		pc.Clear()
	}
}
