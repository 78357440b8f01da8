package models

import "time"

// EventType represents the type of lifecycle event
type EventType string

const (
	// ImageSelected when a new image replaces the session's image
	ImageSelected EventType = "image_selected"
	// AnalysisStarted when the countdown begins
	AnalysisStarted EventType = "analysis_started"
	// CountdownTicked when the countdown value decreases
	CountdownTicked EventType = "countdown_ticked"
	// AnalysisFinalizing when the countdown is over and the verdict is drawn
	AnalysisFinalizing EventType = "analysis_finalizing"
	// AnalysisCompleted when the verdict is revealed
	AnalysisCompleted EventType = "analysis_completed"
	// SessionReset when the session returns to the upload prompt
	SessionReset EventType = "session_reset"
	// StaleContinuationDropped when a timer from a superseded run fires
	StaleContinuationDropped EventType = "stale_continuation_dropped"
)

// LifecycleEvent is published for every state transition of a session
type LifecycleEvent struct {
	EventType      EventType       `json:"event_type"`
	Timestamp      time.Time       `json:"timestamp"`
	SessionID      string          `json:"session_id"`
	RunID          uint64          `json:"run_id"`
	ProcessingTime time.Duration   `json:"processing_time,omitempty"`
	Snapshot       SessionSnapshot `json:"snapshot"`
}
