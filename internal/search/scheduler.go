package search

import "time"

// Scheduler decides when the next poll tick fires.
type Scheduler interface {
	After(d time.Duration) <-chan time.Time
}

type clockScheduler struct{}

func (clockScheduler) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

// ClockScheduler waits on the wall clock.
var ClockScheduler Scheduler = clockScheduler{}

// SchedulerFunc adapts a function to Scheduler.
type SchedulerFunc func(d time.Duration) <-chan time.Time

func (f SchedulerFunc) After(d time.Duration) <-chan time.Time {
	return f(d)
}
