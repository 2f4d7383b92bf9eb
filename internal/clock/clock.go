// Package clock provides the monotonic time source the loop runs on.
package clock

import (
	"sync"
	"time"
)

// Clock reports time elapsed since the loop started.
type Clock interface {
	Elapsed() time.Duration
}

// Real is a monotonic clock anchored at construction.
type Real struct {
	start time.Time
}

// NewReal creates a clock that starts counting now.
func NewReal() *Real {
	return &Real{start: time.Now()}
}

// Elapsed returns the monotonic time since NewReal.
func (r *Real) Elapsed() time.Duration {
	return time.Since(r.start)
}

// Manual is a clock that only moves when told to. Used in tests and for
// offline replays.
type Manual struct {
	mu  sync.Mutex
	now time.Duration
}

// NewManual creates a manual clock at zero.
func NewManual() *Manual {
	return &Manual{}
}

// Elapsed returns the current manual time.
func (m *Manual) Elapsed() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance moves the clock forward by d. Negative values are ignored.
func (m *Manual) Advance(d time.Duration) {
	if d < 0 {
		return
	}
	m.mu.Lock()
	m.now += d
	m.mu.Unlock()
}

// Set jumps the clock to d.
func (m *Manual) Set(d time.Duration) {
	m.mu.Lock()
	m.now = d
	m.mu.Unlock()
}

// Seconds converts an elapsed duration into float seconds.
func Seconds(c Clock) float64 {
	return c.Elapsed().Seconds()
}
