// Cinelens - MovieLens Matrix Factorization Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinelens

package api

import (
	"context"
	"fmt"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/cinelens/internal/history"
	"github.com/tomtom215/cinelens/internal/logging"
	"github.com/tomtom215/cinelens/internal/movielens"
	"github.com/tomtom215/cinelens/internal/recommend"
	"github.com/tomtom215/cinelens/internal/recommend/storage"
)

// fakeSession is a Session whose behavior tests set field by field.
type fakeSession struct {
	mu       sync.Mutex
	status   recommend.Status
	loadErr  error
	trainErr error

	// block, when set, holds Load and Train until closed or ctx ends.
	block chan struct{}

	loads  atomic.Int32
	trains atomic.Int32

	// requestID is the request ID carried by the last Load or Train context.
	requestID string

	users  []recommend.Option
	movies []recommend.Option
	titles map[int]string
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		users: []recommend.Option{{ID: 1, Label: "User 1"}, {ID: 2, Label: "User 2"}},
		movies: []recommend.Option{
			{ID: 1, Label: "Toy Story (1995)"},
			{ID: 2, Label: "GoldenEye (1995)"},
			{ID: 3, Label: "Four Rooms (1995)"},
		},
		titles: map[int]string{1: "Toy Story (1995)", 2: "GoldenEye (1995)", 3: "Four Rooms (1995)"},
	}
}

func (f *fakeSession) lastRequestID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requestID
}

func (f *fakeSession) setStatus(st recommend.Status) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = st
}

func (f *fakeSession) wait(ctx context.Context) error {
	f.mu.Lock()
	f.requestID = logging.RequestIDFromContext(ctx)
	f.mu.Unlock()

	if f.block == nil {
		return nil
	}
	select {
	case <-f.block:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeSession) Load(ctx context.Context) (movielens.Summary, error) {
	f.loads.Add(1)
	if err := f.wait(ctx); err != nil {
		return movielens.Summary{}, err
	}
	if f.loadErr != nil {
		return movielens.Summary{}, f.loadErr
	}
	summary := movielens.Summary{MovieCount: 3, RatingCount: 4, UserCount: 2}
	f.mu.Lock()
	f.status.State = recommend.StateIdle
	f.status.Dataset = &summary
	f.mu.Unlock()
	return summary, nil
}

func (f *fakeSession) Train(ctx context.Context) error {
	f.trains.Add(1)
	if err := f.wait(ctx); err != nil {
		return err
	}
	if f.trainErr != nil {
		return f.trainErr
	}
	f.mu.Lock()
	f.status.State = recommend.StateReady
	f.status.ModelVersion++
	f.mu.Unlock()
	return nil
}

func (f *fakeSession) Predict(userID, movieID *int) (recommend.Prediction, error) {
	st := f.Status()
	if st.State != recommend.StateReady {
		return recommend.Prediction{Band: recommend.BandMedium, Text: recommend.NotReadyText}, recommend.ErrNotReady
	}
	if userID == nil || movieID == nil {
		return recommend.Prediction{Band: recommend.BandMedium, Text: recommend.MissingSelectionText}, recommend.ErrMissingSelection
	}
	if *userID > 2 {
		return recommend.Prediction{}, fmt.Errorf("%w: %d", recommend.ErrUnknownUser, *userID)
	}
	title, ok := f.titles[*movieID]
	if !ok {
		return recommend.Prediction{}, fmt.Errorf("%w: %d", recommend.ErrUnknownMovie, *movieID)
	}
	value := 4.25
	return recommend.Prediction{
		UserID:       *userID,
		MovieID:      *movieID,
		Title:        title,
		Raw:          value,
		Value:        value,
		Band:         recommend.Classify(value),
		Text:         recommend.FormatPrediction(*userID, title, value),
		ModelVersion: st.ModelVersion,
	}, nil
}

func (f *fakeSession) Status() recommend.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

func (f *fakeSession) Users() ([]recommend.Option, error) {
	if f.Status().Dataset == nil {
		return nil, recommend.ErrNotLoaded
	}
	return f.users, nil
}

func (f *fakeSession) Movies() ([]recommend.Option, error) {
	if f.Status().Dataset == nil {
		return nil, recommend.ErrNotLoaded
	}
	return f.movies, nil
}

func (f *fakeSession) SearchMovies(query string, limit int) ([]recommend.Option, error) {
	if f.Status().Dataset == nil {
		return nil, recommend.ErrNotLoaded
	}
	var out []recommend.Option
	for _, m := range f.movies {
		if strings.HasPrefix(strings.ToLower(m.Label), strings.ToLower(query)) && len(out) < limit {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeHistory struct {
	runs []history.Run
}

func (f *fakeHistory) List(_ context.Context, limit int) ([]history.Run, error) {
	if limit < len(f.runs) {
		return f.runs[:limit], nil
	}
	return f.runs, nil
}

func (f *fakeHistory) Get(_ context.Context, id string) (*history.Run, error) {
	for i := range f.runs {
		if f.runs[i].ID == id {
			return &f.runs[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", history.ErrRunNotFound, id)
}

type fakeCatalog struct {
	list []storage.Metadata
}

func (f *fakeCatalog) List(context.Context) ([]storage.Metadata, error) {
	return f.list, nil
}

// loadedSession returns a fake session with a loaded dataset and a trained model.
func loadedSession() *fakeSession {
	s := newFakeSession()
	summary := movielens.Summary{MovieCount: 3, RatingCount: 4, UserCount: 2}
	s.status = recommend.Status{State: recommend.StateReady, Dataset: &summary, ModelVersion: 1}
	return s
}

func newTestHandler(t *testing.T, session Session, opts HandlerOptions) *Handler {
	t.Helper()
	opts.Logger = zerolog.Nop()
	h := NewHandler(session, opts)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = h.Shutdown(ctx)
	})
	return h
}

// testEnvelope mirrors models.APIResponse with raw data for typed decoding.
type testEnvelope struct {
	Status   string          `json:"status"`
	Data     json.RawMessage `json:"data"`
	Metadata struct {
		Count  *int `json:"count"`
		Cached bool `json:"cached"`
	} `json:"metadata"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) testEnvelope {
	t.Helper()
	var env testEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return env
}

func decodeData(t *testing.T, env testEnvelope, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(env.Data, v); err != nil {
		t.Fatalf("decode data %q: %v", string(env.Data), err)
	}
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}
