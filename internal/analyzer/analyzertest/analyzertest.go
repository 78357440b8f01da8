// Package analyzertest provides a virtual-time scheduler and an event recorder
// for driving analyzer.Machine deterministically in tests.
package analyzertest

import (
	"context"
	"sync"
	"time"

	"go-skin-detector/internal/analyzer"
	"go-skin-detector/pkg/models"
)

// ManualScheduler only moves time forward when Advance is called
type ManualScheduler struct {
	mu     sync.Mutex
	now    time.Time
	seq    int
	timers []*manualTimer
	settle func()
}

type manualTimer struct {
	s       *ManualScheduler
	due     time.Time
	seq     int
	f       func()
	stopped bool
	fired   bool
}

// NewManualScheduler starts the virtual clock at start. settle, when non-nil, is
// called after every fired callback and should wait until the work the callback
// handed off has run (for a Machine: a no-op EventLoop.Do).
func NewManualScheduler(start time.Time, settle func()) *ManualScheduler {
	return &ManualScheduler{now: start, settle: settle}
}

// LoopBarrier returns a settle function that drains everything queued on loop
func LoopBarrier(loop *analyzer.EventLoop) func() {
	return func() {
		_ = loop.Do(func() {})
	}
}

func (s *ManualScheduler) AfterFunc(d time.Duration, f func()) analyzer.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := &manualTimer{s: s, due: s.now.Add(d), seq: s.seq, f: f}
	s.seq++
	s.timers = append(s.timers, t)
	return t
}

func (s *ManualScheduler) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// Advance moves the clock forward by d, firing due timers in order
func (s *ManualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now.Add(d)
	s.mu.Unlock()

	for {
		s.mu.Lock()
		next := s.popDue(target)
		if next == nil {
			s.now = target
			s.mu.Unlock()
			return
		}
		if next.due.After(s.now) {
			s.now = next.due
		}
		s.mu.Unlock()

		next.f()
		if s.settle != nil {
			s.settle()
		}
	}
}

// Pending returns the number of timers that are neither stopped nor fired
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// popDue removes and returns the earliest live timer due at or before target
func (s *ManualScheduler) popDue(target time.Time) *manualTimer {
	idx := -1
	for i, t := range s.timers {
		if t.stopped || t.fired || t.due.After(target) {
			continue
		}
		if idx == -1 || t.due.Before(s.timers[idx].due) ||
			(t.due.Equal(s.timers[idx].due) && t.seq < s.timers[idx].seq) {
			idx = i
		}
	}
	if idx == -1 {
		s.compact()
		return nil
	}
	t := s.timers[idx]
	t.fired = true
	return t
}

func (s *ManualScheduler) compact() {
	live := s.timers[:0]
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			live = append(live, t)
		}
	}
	s.timers = live
}

func (t *manualTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// Recorder is an EventSink that keeps every event it receives
type Recorder struct {
	mu     sync.Mutex
	events []models.LifecycleEvent
}

func (r *Recorder) NotifyObservers(ctx context.Context, event models.LifecycleEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// Events returns a copy of the recorded events
func (r *Recorder) Events() []models.LifecycleEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.LifecycleEvent, len(r.events))
	copy(out, r.events)
	return out
}

// Types returns the recorded event types in order
func (r *Recorder) Types() []models.EventType {
	events := r.Events()
	out := make([]models.EventType, 0, len(events))
	for _, e := range events {
		out = append(out, e.EventType)
	}
	return out
}

// Reset forgets recorded events
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
