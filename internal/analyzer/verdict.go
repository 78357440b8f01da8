package analyzer

import (
	"math/rand"
	"sync"
)

type randomVerdictSource struct{}

// NewRandomVerdictSource returns an unbiased coin flip, independent of any input
func NewRandomVerdictSource() VerdictSource {
	return randomVerdictSource{}
}

func (randomVerdictSource) Draw() bool {
	return rand.Intn(2) == 1
}

// FixedVerdict always draws the same verdict
type FixedVerdict bool

func (v FixedVerdict) Draw() bool {
	return bool(v)
}

// ScriptedVerdicts draws the given verdicts in order and starts over when exhausted
type ScriptedVerdicts struct {
	mu       sync.Mutex
	verdicts []bool
	next     int
}

// NewScriptedVerdicts creates a scripted source; with no verdicts it always draws false
func NewScriptedVerdicts(verdicts ...bool) *ScriptedVerdicts {
	return &ScriptedVerdicts{verdicts: verdicts}
}

func (s *ScriptedVerdicts) Draw() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.verdicts) == 0 {
		return false
	}
	v := s.verdicts[s.next%len(s.verdicts)]
	s.next++
	return v
}
