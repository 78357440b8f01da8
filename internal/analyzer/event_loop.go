package analyzer

import (
	"sync"
	"sync/atomic"

	"go-skin-detector/internal/logger"
	"go-skin-detector/pkg/models"
)

// EventLoop runs jobs one at a time, in submission order, on a single goroutine.
// Every lifecycle mutation goes through it, so machine state needs no locks.
type EventLoop struct {
	jobQueue  chan func()
	done      chan struct{}
	startOnce sync.Once
	closeOnce sync.Once

	totalJobs     atomic.Int64
	completedJobs atomic.Int64
	panickedJobs  atomic.Int64
}

// NewEventLoop creates a loop whose queue holds up to buffer pending jobs
func NewEventLoop(buffer int) *EventLoop {
	if buffer <= 0 {
		buffer = 64
	}

	return &EventLoop{
		jobQueue: make(chan func(), buffer),
		done:     make(chan struct{}),
	}
}

// Start launches the loop goroutine; further calls are no-ops
func (l *EventLoop) Start() {
	l.startOnce.Do(func() {
		go l.run()
	})
}

func (l *EventLoop) run() {
	for {
		select {
		case job := <-l.jobQueue:
			l.execute(job)
		case <-l.done:
			return
		}
	}
}

func (l *EventLoop) execute(job func()) {
	defer func() {
		if r := recover(); r != nil {
			l.panickedJobs.Add(1)
			logger.WithField("panic", r).Error("Event loop job panicked")
		}
		l.completedJobs.Add(1)
	}()
	job()
}

// Post queues a job without waiting for it. It reports false once the loop is closed.
func (l *EventLoop) Post(job func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}

	select {
	case l.jobQueue <- job:
		l.totalJobs.Add(1)
		return true
	case <-l.done:
		return false
	}
}

// Do queues a job and waits until it has run. Do must not be called from a job.
func (l *EventLoop) Do(job func()) error {
	finished := make(chan struct{})
	if !l.Post(func() {
		defer close(finished)
		job()
	}) {
		return ErrLoopClosed
	}

	select {
	case <-finished:
		return nil
	case <-l.done:
		return ErrLoopClosed
	}
}

// Close stops the loop; jobs still queued are dropped
func (l *EventLoop) Close() {
	l.closeOnce.Do(func() {
		close(l.done)
	})
}

// Stats returns job counters
func (l *EventLoop) Stats() models.EventLoopStats {
	return models.EventLoopStats{
		TotalJobs:     l.totalJobs.Load(),
		CompletedJobs: l.completedJobs.Load(),
		PanickedJobs:  l.panickedJobs.Load(),
	}
}
