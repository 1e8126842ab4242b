package clock

import "time"

// Clock allows injecting time into the pool and the actor loops.
type Clock interface {
	Now() time.Time
	// After behaves like time.After. Actor loops use it to pace iterations.
	After(d time.Duration) <-chan time.Time
}

type systemClock struct{}

// NewSystem returns a clock backed by the time package.
func NewSystem() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now()
}

func (systemClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

type fixedClock struct {
	now time.Time
}

// NewFixed returns a clock that always returns the same instant and whose
// After fires immediately (useful for tests).
func NewFixed(t time.Time) Clock {
	return fixedClock{now: t}
}

func (f fixedClock) Now() time.Time {
	return f.now
}

func (f fixedClock) After(time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	ch <- f.now
	return ch
}
