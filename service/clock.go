package service

import (
	"time"
)

// Clock abstracts wall time so tests can move accrual windows around
// deterministically.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

// NewClock returns the wall clock used in production
func NewClock() Clock {
	return systemClock{}
}

// FixedClock is a settable clock for tests
type FixedClock struct {
	Current time.Time
}

func (c *FixedClock) Now() time.Time {
	return c.Current
}

// Advance moves the clock forward by d
func (c *FixedClock) Advance(d time.Duration) {
	c.Current = c.Current.Add(d)
}
