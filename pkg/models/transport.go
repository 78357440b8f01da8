package models

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// StatsResponse is returned by the stats endpoint
type StatsResponse struct {
	ActiveSessions int                    `json:"active_sessions"`
	Analyses       map[string]interface{} `json:"analyses"`
	EventLoop      EventLoopStats         `json:"event_loop"`
}

// EventLoopStats reports how many jobs the event loop has seen
type EventLoopStats struct {
	TotalJobs     int64 `json:"total_jobs"`
	CompletedJobs int64 `json:"completed_jobs"`
	PanickedJobs  int64 `json:"panicked_jobs"`
}
