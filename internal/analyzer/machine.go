package analyzer

import (
	"context"
	"time"

	"go-skin-detector/pkg/models"
)

// Machine is the upload/analyze/result lifecycle of one session.
//
// Public methods may be called from any goroutine; they hand their work to the
// event loop and wait for it. Timed steps are scheduled continuations tagged with
// the run identifier that created them, and a continuation whose run is no longer
// the current one is dropped without touching state.
type Machine struct {
	id        string
	opts      Options
	loop      *EventLoop
	scheduler Scheduler
	verdicts  VerdictSource
	sink      EventSink

	// owned by the event loop
	image     *models.Image
	lifecycle Lifecycle
	run       uint64
	drawn     bool
	pending   Timer
	startedAt time.Time
	updatedAt time.Time
	revision  uint64
}

// NewMachine creates an Idle machine. sink may be nil.
func NewMachine(id string, loop *EventLoop, scheduler Scheduler, verdicts VerdictSource, sink EventSink, opts Options) *Machine {
	return &Machine{
		id:        id,
		opts:      opts.normalized(),
		loop:      loop,
		scheduler: scheduler,
		verdicts:  verdicts,
		sink:      sink,
		lifecycle: Idle(),
		updatedAt: scheduler.Now(),
	}
}

// ID returns the session identifier the machine belongs to
func (m *Machine) ID() string {
	return m.id
}

// SelectImage replaces the image and returns to Idle, invalidating any run in
// progress or any verdict shown for the previous image. A nil image is a no-op.
func (m *Machine) SelectImage(img *models.Image) (models.SessionSnapshot, error) {
	var snap models.SessionSnapshot
	err := m.loop.Do(func() {
		if img != nil {
			m.invalidateRun()
			m.image = img
			m.lifecycle = Idle()
			m.emit(models.ImageSelected, 0)
		}
		snap = m.snapshot()
	})
	return snap, err
}

// Analyze starts a run from Idle or ResultReady. It fails with ErrNoImage when no
// image is selected and with ErrAnalysisInProgress while a run is active; in both
// cases the state is left as it was.
func (m *Machine) Analyze() (models.SessionSnapshot, error) {
	var (
		snap   models.SessionSnapshot
		runErr error
	)
	err := m.loop.Do(func() {
		switch {
		case m.image == nil:
			runErr = ErrNoImage
		case m.lifecycle.Phase() == models.PhaseAnalyzing:
			runErr = ErrAnalysisInProgress
		default:
			m.invalidateRun()
			m.startedAt = m.scheduler.Now()
			m.lifecycle = Counting(m.opts.CountdownFrom)
			m.emit(models.AnalysisStarted, 0)
			m.schedule(m.opts.TickInterval, m.tick)
		}
		snap = m.snapshot()
	})
	if err != nil {
		return snap, err
	}
	return snap, runErr
}

// Reset clears the image, countdown and verdict from any phase and cancels the
// run in progress
func (m *Machine) Reset() (models.SessionSnapshot, error) {
	var snap models.SessionSnapshot
	err := m.loop.Do(func() {
		m.invalidateRun()
		m.image = nil
		m.lifecycle = Idle()
		m.emit(models.SessionReset, 0)
		snap = m.snapshot()
	})
	return snap, err
}

// Discard cancels any pending continuation without emitting events; used when
// the session is evicted
func (m *Machine) Discard() error {
	return m.loop.Do(func() {
		m.invalidateRun()
	})
}

// Snapshot returns the current state
func (m *Machine) Snapshot() (models.SessionSnapshot, error) {
	var snap models.SessionSnapshot
	err := m.loop.Do(func() {
		snap = m.snapshot()
	})
	return snap, err
}

func (m *Machine) tick() {
	n, _ := m.lifecycle.Countdown()
	if n > 1 {
		m.lifecycle = Counting(n - 1)
		m.emit(models.CountdownTicked, 0)
		m.schedule(m.opts.TickInterval, m.tick)
		return
	}

	m.drawn = m.verdicts.Draw()
	m.lifecycle = Finalizing()
	m.emit(models.AnalysisFinalizing, 0)
	m.schedule(m.opts.FinalizeDelay, m.reveal)
}

func (m *Machine) reveal() {
	m.pending = nil
	m.lifecycle = Revealed(m.drawn)
	m.emit(models.AnalysisCompleted, m.scheduler.Now().Sub(m.startedAt))
}

// schedule arranges for step to run on the loop after d, unless the current run
// has been superseded by then
func (m *Machine) schedule(d time.Duration, step func()) {
	run := m.run
	m.pending = m.scheduler.AfterFunc(d, func() {
		m.loop.Post(func() {
			if run != m.run {
				m.emitStale(run)
				return
			}
			step()
		})
	})
}

// invalidateRun stops the pending timer and moves to a fresh run identifier so
// that continuations already queued are recognised as stale
func (m *Machine) invalidateRun() {
	if m.pending != nil {
		m.pending.Stop()
		m.pending = nil
	}
	m.run++
	m.drawn = false
}

func (m *Machine) snapshot() models.SessionSnapshot {
	snap := models.SessionSnapshot{
		SessionID: m.id,
		RunID:     m.run,
		Phase:     m.lifecycle.Phase(),
		Image:     m.image,
		Revision:  m.revision,
		UpdatedAt: m.updatedAt,
	}
	if n, ok := m.lifecycle.Countdown(); ok {
		snap.Countdown = &n
	}
	if v, ok := m.lifecycle.Verdict(); ok {
		snap.Verdict = &v
	}
	return snap
}

func (m *Machine) emit(eventType models.EventType, processing time.Duration) {
	m.updatedAt = m.scheduler.Now()
	m.revision++
	if m.sink == nil {
		return
	}
	m.sink.NotifyObservers(context.Background(), models.LifecycleEvent{
		EventType:      eventType,
		Timestamp:      m.updatedAt,
		SessionID:      m.id,
		RunID:          m.run,
		ProcessingTime: processing,
		Snapshot:       m.snapshot(),
	})
}

func (m *Machine) emitStale(run uint64) {
	if m.sink == nil {
		return
	}
	m.sink.NotifyObservers(context.Background(), models.LifecycleEvent{
		EventType: models.StaleContinuationDropped,
		Timestamp: m.scheduler.Now(),
		SessionID: m.id,
		RunID:     run,
		Snapshot:  m.snapshot(),
	})
}
