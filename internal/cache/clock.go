package cache

import "time"

// Clock abstracts timer scheduling so micro-batching is deterministic
// under test.
type Clock interface {
	Now() time.Time
	// AfterFunc schedules fn after d and returns a stop function
	// reporting whether the timer was cancelled before firing.
	AfterFunc(d time.Duration, fn func()) func() bool
}

type realClock struct{}

func RealClock() Clock {
	return realClock{}
}

func (realClock) Now() time.Time {
	return time.Now()
}

func (realClock) AfterFunc(d time.Duration, fn func()) func() bool {
	t := time.AfterFunc(d, fn)
	return t.Stop
}
