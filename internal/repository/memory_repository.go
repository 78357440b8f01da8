package repository

import (
	"context"
	"sync"
	"time"
)

// MemorySessionRepository keeps sessions in process memory
type MemorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	now      func() time.Time
}

// NewMemorySessionRepository creates an empty repository
func NewMemorySessionRepository() *MemorySessionRepository {
	return newMemorySessionRepository(time.Now)
}

func newMemorySessionRepository(now func() time.Time) *MemorySessionRepository {
	return &MemorySessionRepository{
		sessions: make(map[string]*Session),
		now:      now,
	}
}

func (r *MemorySessionRepository) Get(ctx context.Context, id string) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	session.LastSeen = r.now()
	return session, nil
}

func (r *MemorySessionRepository) Save(ctx context.Context, session *Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if session == nil || session.ID == "" || session.Machine == nil {
		return ErrInvalidSession
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.LastSeen = now
	r.sessions[session.ID] = session
	return nil
}

func (r *MemorySessionRepository) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

func (r *MemorySessionRepository) Sweep(ctx context.Context, cutoff time.Time) ([]*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	var expired []*Session
	for id, session := range r.sessions {
		if session.Watched() {
			session.LastSeen = now
			continue
		}
		if session.LastSeen.Before(cutoff) {
			expired = append(expired, session)
			delete(r.sessions, id)
		}
	}
	return expired, nil
}

func (r *MemorySessionRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
