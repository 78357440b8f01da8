package analyzer

import (
	"context"
	"time"

	"go-skin-detector/pkg/models"
)

// VerdictSource draws the outcome of one analysis run
type VerdictSource interface {
	Draw() bool
}

// Timer is a pending continuation that can be stopped before it fires
type Timer interface {
	Stop() bool
}

// Scheduler runs continuations after a delay and tells the current time
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
	Now() time.Time
}

// EventSink receives every lifecycle transition of a machine.
// Implementations are called on the event loop and must not block.
type EventSink interface {
	NotifyObservers(ctx context.Context, event models.LifecycleEvent)
}
