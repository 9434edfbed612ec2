// Cinelens - MovieLens Matrix Factorization Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinelens

package recommend

import (
	"fmt"
	"time"
)

// State is the lifecycle phase of a Session.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateTraining
	StateReady
	StateFailed
)

var stateNames = [...]string{
	StateIdle:     "idle",
	StateLoading:  "loading",
	StateTraining: "training",
	StateReady:    "ready",
	StateFailed:   "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

// MarshalText renders the state name in JSON payloads.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Busy reports whether a load or train is running.
func (s State) Busy() bool {
	return s == StateLoading || s == StateTraining
}

// StateChange describes one transition of the session lifecycle.
type StateChange struct {
	From  State     `json:"from"`
	To    State     `json:"to"`
	Error string    `json:"error,omitempty"`
	At    time.Time `json:"at"`
}
