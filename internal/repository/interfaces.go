package repository

import (
	"context"
	"sync/atomic"
	"time"

	"go-skin-detector/internal/analyzer"
)

// SessionRepository defines the interface for session storage operations
type SessionRepository interface {
	// Get returns the session and marks it as recently used
	Get(ctx context.Context, id string) (*Session, error)

	// Save stores a new session or replaces an existing one
	Save(ctx context.Context, session *Session) error

	// Delete removes a session; deleting an unknown id is not an error
	Delete(ctx context.Context, id string) error

	// Sweep removes and returns sessions not used since cutoff. Watched
	// sessions are kept and marked as used.
	Sweep(ctx context.Context, cutoff time.Time) ([]*Session, error)

	// Count returns the number of stored sessions
	Count() int
}

// Session is one visitor's lifecycle
type Session struct {
	ID        string
	Machine   *analyzer.Machine
	CreatedAt time.Time
	LastSeen  time.Time

	watchers atomic.Int32
}

// Watch records a live subscriber; a watched session is never swept
func (s *Session) Watch() {
	s.watchers.Add(1)
}

// Unwatch releases a subscriber recorded by Watch
func (s *Session) Unwatch() {
	s.watchers.Add(-1)
}

// Watched reports whether the session has live subscribers
func (s *Session) Watched() bool {
	return s.watchers.Load() > 0
}
