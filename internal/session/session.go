// Package session owns the conversation lifecycle: one session per
// process run, a fresh conversation on initialization, and per-turn
// orchestration of gate check, routing, response assembly and
// persistence.
package session

import (
	"time"

	"github.com/google/uuid"
)

// Session ties a conversation to its lifecycle flag. It is an explicit
// value: initialization and reset are visible state transitions, not
// ambient checks against a global.
type Session struct {
	ID          uuid.UUID
	StartedAt   time.Time
	Initialized bool
}

// NewSession creates an uninitialized session for this run.
func NewSession() Session {
	return Session{
		ID:        uuid.New(),
		StartedAt: time.Now(),
	}
}
