package analyzer

import "time"

// Options controls the timing of a simulated analysis run
type Options struct {
	// CountdownFrom is the first countdown value shown; it goes down to 1
	CountdownFrom int
	// TickInterval is how long each countdown value is held
	TickInterval time.Duration
	// FinalizeDelay is the wait between the end of the countdown and the reveal
	FinalizeDelay time.Duration
}

// DefaultOptions returns 3, 2, 1 at one second each followed by a 500ms finalize
func DefaultOptions() Options {
	return Options{
		CountdownFrom: 3,
		TickInterval:  time.Second,
		FinalizeDelay: 500 * time.Millisecond,
	}
}

// WithCountdown returns options starting the countdown at n
func (opts Options) WithCountdown(n int) Options {
	opts.CountdownFrom = n
	return opts
}

// WithTiming returns options with custom tick and finalize durations
func (opts Options) WithTiming(tick, finalize time.Duration) Options {
	opts.TickInterval = tick
	opts.FinalizeDelay = finalize
	return opts
}

// TotalDuration is the nominal wall-clock length of one run
func (opts Options) TotalDuration() time.Duration {
	return time.Duration(opts.CountdownFrom)*opts.TickInterval + opts.FinalizeDelay
}

func (opts Options) normalized() Options {
	def := DefaultOptions()
	if opts.CountdownFrom < 1 {
		opts.CountdownFrom = def.CountdownFrom
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = def.TickInterval
	}
	if opts.FinalizeDelay < 0 {
		opts.FinalizeDelay = 0
	}
	return opts
}
