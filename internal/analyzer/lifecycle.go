package analyzer

import "go-skin-detector/pkg/models"

// Lifecycle is the state of one session's analysis attempt:
// Idle | Analyzing{countdown or finalizing} | ResultReady{verdict}.
// Build values with Idle, Counting, Finalizing and Revealed.
type Lifecycle struct {
	phase     models.Phase
	countdown int
	verdict   bool
}

// Idle is the state before the first run and after a reset or new image
func Idle() Lifecycle {
	return Lifecycle{phase: models.PhaseIdle}
}

// Counting is Analyzing with countdown value n (n >= 1)
func Counting(n int) Lifecycle {
	if n < 1 {
		return Finalizing()
	}
	return Lifecycle{phase: models.PhaseAnalyzing, countdown: n}
}

// Finalizing is Analyzing after the countdown ended and before the verdict is revealed
func Finalizing() Lifecycle {
	return Lifecycle{phase: models.PhaseAnalyzing}
}

// Revealed is ResultReady with verdict v
func Revealed(v bool) Lifecycle {
	return Lifecycle{phase: models.PhaseResultReady, verdict: v}
}

func (l Lifecycle) Phase() models.Phase {
	if l.phase == "" {
		return models.PhaseIdle
	}
	return l.phase
}

// Countdown returns the countdown value; ok is false when it is absent
func (l Lifecycle) Countdown() (value int, ok bool) {
	if l.phase != models.PhaseAnalyzing || l.countdown < 1 {
		return 0, false
	}
	return l.countdown, true
}

// Verdict returns the revealed verdict; ok is false outside ResultReady
func (l Lifecycle) Verdict() (value bool, ok bool) {
	if l.phase != models.PhaseResultReady {
		return false, false
	}
	return l.verdict, true
}
