package observer

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"go-skin-detector/pkg/models"
)

// Observer defines the interface for lifecycle event observers
type Observer interface {
	OnEvent(ctx context.Context, event models.LifecycleEvent)
	GetObserverName() string
}

// Subject defines the interface for event publishers
type Subject interface {
	Subscribe(observer Observer)
	Unsubscribe(observer Observer)
	NotifyObservers(ctx context.Context, event models.LifecycleEvent)
}

// LoggingObserver logs lifecycle events
type LoggingObserver struct {
	logger *logrus.Logger
}

// NewLoggingObserver creates a new logging observer
func NewLoggingObserver(logger *logrus.Logger) Observer {
	return &LoggingObserver{
		logger: logger,
	}
}

// OnEvent handles lifecycle events by logging them
func (o *LoggingObserver) OnEvent(ctx context.Context, event models.LifecycleEvent) {
	fields := logrus.Fields{
		"event_type": event.EventType,
		"session_id": event.SessionID,
		"run_id":     event.RunID,
		"phase":      event.Snapshot.Phase,
	}
	if event.Snapshot.Countdown != nil {
		fields["countdown"] = *event.Snapshot.Countdown
	}
	if event.Snapshot.Image != nil {
		fields["filename"] = event.Snapshot.Image.Filename
	}

	switch event.EventType {
	case models.ImageSelected:
		if img := event.Snapshot.Image; img != nil {
			fields["size"] = img.Size
			fields["mime_type"] = img.MIMEType
		}
		o.logger.WithFields(fields).Info("Image selected")
	case models.AnalysisStarted:
		o.logger.WithFields(fields).Info("Analysis started")
	case models.CountdownTicked:
		o.logger.WithFields(fields).Debug("Countdown ticked")
	case models.AnalysisFinalizing:
		o.logger.WithFields(fields).Debug("Analysis finalizing")
	case models.AnalysisCompleted:
		fields["processing_time"] = event.ProcessingTime
		if event.Snapshot.Verdict != nil {
			fields["verdict"] = *event.Snapshot.Verdict
		}
		o.logger.WithFields(fields).Info("Analysis completed")
	case models.SessionReset:
		o.logger.WithFields(fields).Info("Session reset")
	case models.StaleContinuationDropped:
		o.logger.WithFields(fields).Debug("Dropped stale continuation")
	default:
		o.logger.WithFields(fields).Info("Lifecycle event occurred")
	}
}

// GetObserverName returns the observer name
func (o *LoggingObserver) GetObserverName() string {
	return "logging_observer"
}

// MetricsObserver collects counters from lifecycle events
type MetricsObserver struct {
	mu                  sync.RWMutex
	imagesSelected      int64
	analysesStarted     int64
	analysesCompleted   int64
	verdictsTrue        int64
	verdictsFalse       int64
	resets              int64
	staleDropped        int64
	totalProcessingTime time.Duration
}

// NewMetricsObserver creates a new metrics observer
func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{}
}

// OnEvent handles lifecycle events by collecting metrics
func (o *MetricsObserver) OnEvent(ctx context.Context, event models.LifecycleEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch event.EventType {
	case models.ImageSelected:
		o.imagesSelected++
	case models.AnalysisStarted:
		o.analysesStarted++
	case models.AnalysisCompleted:
		o.analysesCompleted++
		o.totalProcessingTime += event.ProcessingTime
		if event.Snapshot.Verdict != nil && *event.Snapshot.Verdict {
			o.verdictsTrue++
		} else {
			o.verdictsFalse++
		}
	case models.SessionReset:
		o.resets++
	case models.StaleContinuationDropped:
		o.staleDropped++
	}
}

// GetObserverName returns the observer name
func (o *MetricsObserver) GetObserverName() string {
	return "metrics_observer"
}

// GetMetrics returns current metrics
func (o *MetricsObserver) GetMetrics() map[string]interface{} {
	o.mu.RLock()
	defer o.mu.RUnlock()

	avgProcessingTime := time.Duration(0)
	if o.analysesCompleted > 0 {
		avgProcessingTime = o.totalProcessingTime / time.Duration(o.analysesCompleted)
	}

	return map[string]interface{}{
		"images_selected":       o.imagesSelected,
		"analyses_started":      o.analysesStarted,
		"analyses_completed":    o.analysesCompleted,
		"verdicts_true":         o.verdictsTrue,
		"verdicts_false":        o.verdictsFalse,
		"resets":                o.resets,
		"stale_dropped":         o.staleDropped,
		"total_processing_time": o.totalProcessingTime.String(),
		"avg_processing_time":   avgProcessingTime.String(),
	}
}

// ChannelObserver forwards the events of one session to a buffered channel.
// When the reader falls behind the oldest queued event is discarded, so the
// newest state is always delivered.
type ChannelObserver struct {
	name      string
	sessionID string

	mu     sync.Mutex
	ch     chan models.LifecycleEvent
	closed bool
}

// NewChannelObserver creates an observer for sessionID
func NewChannelObserver(sessionID string, buffer int) *ChannelObserver {
	if buffer <= 0 {
		buffer = 8
	}
	return &ChannelObserver{
		name:      "channel_observer_" + uuid.NewString(),
		sessionID: sessionID,
		ch:        make(chan models.LifecycleEvent, buffer),
	}
}

// OnEvent queues state changes of the observed session
func (o *ChannelObserver) OnEvent(ctx context.Context, event models.LifecycleEvent) {
	if event.SessionID != o.sessionID || event.EventType == models.StaleContinuationDropped {
		return
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}

	for {
		select {
		case o.ch <- event:
			return
		default:
		}
		select {
		case <-o.ch:
		default:
		}
	}
}

// GetObserverName returns a name unique to this subscription
func (o *ChannelObserver) GetObserverName() string {
	return o.name
}

// Events returns the receive side of the subscription
func (o *ChannelObserver) Events() <-chan models.LifecycleEvent {
	return o.ch
}

// Close closes the channel; later events are ignored
func (o *ChannelObserver) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.closed {
		o.closed = true
		close(o.ch)
	}
}

// EventPublisher implements the Subject interface
type EventPublisher struct {
	mu        sync.RWMutex
	observers []Observer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher() *EventPublisher {
	return &EventPublisher{
		observers: make([]Observer, 0),
	}
}

// Subscribe adds an observer
func (p *EventPublisher) Subscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, observer)
}

// Unsubscribe removes an observer
func (p *EventPublisher) Unsubscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, obs := range p.observers {
		if obs.GetObserverName() == observer.GetObserverName() {
			p.observers = append(p.observers[:i], p.observers[i+1:]...)
			break
		}
	}
}

// NotifyObservers delivers the event to every observer in subscription order.
// Delivery is synchronous so observers see a session's events in the order
// they happened; observers must not block.
func (p *EventPublisher) NotifyObservers(ctx context.Context, event models.LifecycleEvent) {
	p.mu.RLock()
	observers := make([]Observer, len(p.observers))
	copy(observers, p.observers)
	p.mu.RUnlock()

	for _, observer := range observers {
		p.deliver(ctx, observer, event)
	}
}

func (p *EventPublisher) deliver(ctx context.Context, obs Observer, event models.LifecycleEvent) {
	defer func() {
		if r := recover(); r != nil {
			logrus.WithField("observer", obs.GetObserverName()).
				WithField("panic", r).
				Error("Observer panicked while handling event")
		}
	}()
	obs.OnEvent(ctx, event)
}
