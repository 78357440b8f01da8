package models

import "time"

// Phase is the stage of one analysis attempt
type Phase string

const (
	PhaseIdle        Phase = "idle"
	PhaseAnalyzing   Phase = "analyzing"
	PhaseResultReady Phase = "result_ready"
)

// Panel identifies which part of the page is visible
type Panel string

const (
	// PanelUpload is the upload prompt shown while no image is selected
	PanelUpload Panel = "upload"
	// PanelReady shows the selected image with the analyze/new image actions
	PanelReady Panel = "ready"
	// PanelAnalyzing shows the progress indicator and the countdown
	PanelAnalyzing Panel = "analyzing"
	// PanelResult shows the verdict
	PanelResult Panel = "result"
)

// Image is an uploaded image held in memory as a data URI
type Image struct {
	ID       string `json:"id"`
	Filename string `json:"filename,omitempty"`
	MIMEType string `json:"mime_type"`
	Size     int64  `json:"size"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
	DataURI  string `json:"data_uri,omitempty"`
}

// SessionSnapshot is a point-in-time copy of a session's lifecycle state.
// Countdown and Verdict are nil when absent. Revision grows with every state
// change of the session.
type SessionSnapshot struct {
	SessionID string    `json:"session_id"`
	RunID     uint64    `json:"run_id"`
	Phase     Phase     `json:"phase"`
	Countdown *int      `json:"countdown,omitempty"`
	Verdict   *bool     `json:"verdict,omitempty"`
	Image     *Image    `json:"image,omitempty"`
	Revision  uint64    `json:"revision"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasImage reports whether an image is selected
func (s SessionSnapshot) HasImage() bool {
	return s.Image != nil
}

// WithoutImageData returns a copy whose image keeps its metadata but not its
// bytes, for clients that already show the image
func (s SessionSnapshot) WithoutImageData() SessionSnapshot {
	if s.Image != nil {
		img := *s.Image
		img.DataURI = ""
		s.Image = &img
	}
	return s
}
