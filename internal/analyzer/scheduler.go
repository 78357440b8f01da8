package analyzer

import "time"

type realScheduler struct{}

// NewRealScheduler schedules continuations on wall-clock timers
func NewRealScheduler() Scheduler {
	return realScheduler{}
}

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

func (realScheduler) Now() time.Time {
	return time.Now()
}
