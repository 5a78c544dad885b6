// Package testutil provides deterministic helpers shared by tests: a
// stepping wall clock and a scripted fake ledger.
package testutil

import (
	"sync"
	"time"
)

// SteppingClock is a thread-safe fake wall clock. Every call to Now returns
// a time one step later than the previous call, so records indexed through
// it get strictly increasing, predictable timestamps.
type SteppingClock struct {
	mu      sync.Mutex
	current time.Time
	step    time.Duration
}

// NewSteppingClock creates a clock starting at base. The first call to
// Now() returns base; each subsequent call advances by step.
func NewSteppingClock(base time.Time, step time.Duration) *SteppingClock {
	return &SteppingClock{current: base, step: step}
}

// Now returns the current instant and advances the clock by one step.
func (c *SteppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.current
	c.current = c.current.Add(c.step)
	return now
}

// Peek returns the instant the next Now() call will report, without
// advancing the clock.
func (c *SteppingClock) Peek() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}
