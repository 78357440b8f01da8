package analyzer

import "errors"

var (
	// ErrNoImage indicates an analysis was requested before an image was selected
	ErrNoImage = errors.New("no image selected")

	// ErrAnalysisInProgress indicates an analysis was requested while one is running
	ErrAnalysisInProgress = errors.New("analysis already in progress")

	// ErrLoopClosed indicates the event loop has shut down
	ErrLoopClosed = errors.New("event loop closed")
)
