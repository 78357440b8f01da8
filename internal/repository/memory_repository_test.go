package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-skin-detector/internal/analyzer"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func newSession(id string) *Session {
	loop := analyzer.NewEventLoop(1)
	m := analyzer.NewMachine(id, loop, analyzer.NewRealScheduler(), analyzer.FixedVerdict(true), nil, analyzer.DefaultOptions())
	return &Session{ID: id, Machine: m}
}

func TestMemorySessionRepository_SaveAndGet(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	repo := newMemorySessionRepository(clock.Now)
	ctx := context.Background()

	s := newSession("a")
	require.NoError(t, repo.Save(ctx, s))
	assert.Equal(t, clock.now, s.CreatedAt)
	assert.Equal(t, 1, repo.Count())

	clock.now = clock.now.Add(time.Minute)
	got, err := repo.Get(ctx, "a")
	require.NoError(t, err)
	assert.Same(t, s, got)
	assert.Equal(t, clock.now, got.LastSeen)
	assert.Equal(t, clock.now.Add(-time.Minute), got.CreatedAt)
}

func TestMemorySessionRepository_GetMissing(t *testing.T) {
	repo := NewMemorySessionRepository()

	_, err := repo.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMemorySessionRepository_SaveRejectsInvalid(t *testing.T) {
	repo := NewMemorySessionRepository()
	ctx := context.Background()

	assert.ErrorIs(t, repo.Save(ctx, nil), ErrInvalidSession)
	assert.ErrorIs(t, repo.Save(ctx, &Session{ID: "x"}), ErrInvalidSession)
	assert.ErrorIs(t, repo.Save(ctx, &Session{Machine: newSession("y").Machine}), ErrInvalidSession)
	assert.Equal(t, 0, repo.Count())
}

func TestMemorySessionRepository_Delete(t *testing.T) {
	repo := NewMemorySessionRepository()
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, newSession("a")))
	require.NoError(t, repo.Delete(ctx, "a"))
	require.NoError(t, repo.Delete(ctx, "a"))
	assert.Equal(t, 0, repo.Count())
}

func TestMemorySessionRepository_Sweep(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := &fakeClock{now: start}
	repo := newMemorySessionRepository(clock.Now)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, newSession("old")))
	require.NoError(t, repo.Save(ctx, newSession("fresh")))

	clock.now = start.Add(10 * time.Minute)
	_, err := repo.Get(ctx, "fresh")
	require.NoError(t, err)

	expired, err := repo.Sweep(ctx, start.Add(5*time.Minute))
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, "old", expired[0].ID)
	assert.Equal(t, 1, repo.Count())

	_, err = repo.Get(ctx, "old")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMemorySessionRepository_SweepKeepsWatched(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := &fakeClock{now: start}
	repo := newMemorySessionRepository(clock.Now)
	ctx := context.Background()

	s := newSession("watched")
	require.NoError(t, repo.Save(ctx, s))
	s.Watch()

	clock.now = start.Add(time.Hour)
	expired, err := repo.Sweep(ctx, start.Add(30*time.Minute))
	require.NoError(t, err)
	assert.Empty(t, expired)
	assert.Equal(t, clock.now, s.LastSeen, "watched sessions count as used")

	s.Unwatch()
	assert.False(t, s.Watched())
	expired, err = repo.Sweep(ctx, clock.now.Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, "watched", expired[0].ID)
}

func TestMemorySessionRepository_CancelledContext(t *testing.T) {
	repo := NewMemorySessionRepository()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, repo.Save(ctx, newSession("a")), context.Canceled)
	_, err := repo.Get(ctx, "a")
	assert.ErrorIs(t, err, context.Canceled)
}
