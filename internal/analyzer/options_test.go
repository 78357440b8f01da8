package analyzer

import (
	"testing"
	"time"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	if opts.CountdownFrom != 3 {
		t.Errorf("Expected CountdownFrom to be 3, got %d", opts.CountdownFrom)
	}
	if opts.TickInterval != time.Second {
		t.Errorf("Expected TickInterval to be 1s, got %s", opts.TickInterval)
	}
	if opts.FinalizeDelay != 500*time.Millisecond {
		t.Errorf("Expected FinalizeDelay to be 500ms, got %s", opts.FinalizeDelay)
	}
	if opts.TotalDuration() != 3500*time.Millisecond {
		t.Errorf("Expected a 3.5s run, got %s", opts.TotalDuration())
	}
}

func TestChainedOptions(t *testing.T) {
	opts := DefaultOptions().
		WithCountdown(5).
		WithTiming(200*time.Millisecond, 50*time.Millisecond)

	if opts.CountdownFrom != 5 {
		t.Errorf("Expected CountdownFrom to be 5, got %d", opts.CountdownFrom)
	}
	if opts.TotalDuration() != 1050*time.Millisecond {
		t.Errorf("Expected 1.05s, got %s", opts.TotalDuration())
	}
}

func TestOptions_Normalized(t *testing.T) {
	opts := Options{CountdownFrom: 0, TickInterval: -time.Second, FinalizeDelay: -time.Second}.normalized()

	if opts.CountdownFrom != 3 {
		t.Errorf("Expected default countdown, got %d", opts.CountdownFrom)
	}
	if opts.TickInterval != time.Second {
		t.Errorf("Expected default tick, got %s", opts.TickInterval)
	}
	if opts.FinalizeDelay != 0 {
		t.Errorf("Expected finalize clamped to 0, got %s", opts.FinalizeDelay)
	}
}
