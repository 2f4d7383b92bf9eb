// Package transition runs the fade-to-black curtain between scenes and the
// delayed callbacks tied to it.
package transition

import (
	"sort"
	"time"

	"github.com/nightdrive/showcase/internal/clock"
)

// Curtain timings.
const (
	FadeOutDelay = time.Second
	FadeInDelay  = 100 * time.Millisecond
	TriggerDelay = 600 * time.Millisecond
	LoadingDelay = 500 * time.Millisecond
)

type timer struct {
	due time.Duration
	seq uint64
	fn  func()
}

// Curtain is a full-screen black overlay. Opacity 1 hides the scene.
// Callbacks run on the loop goroutine from Update, ordered by due time and
// then by the order they were scheduled.
type Curtain struct {
	clock   clock.Clock
	opacity float64
	timers  []timer
	seq     uint64
}

// New creates a closed curtain; the first scene load opens it.
func New(clk clock.Clock) *Curtain {
	return &Curtain{clock: clk, opacity: 1}
}

// Opacity returns 1 for black and 0 for clear.
func (c *Curtain) Opacity() float64 {
	return c.opacity
}

// After runs fn once delay has passed on the loop clock.
func (c *Curtain) After(delay time.Duration, fn func()) {
	c.seq++
	c.timers = append(c.timers, timer{due: c.clock.Elapsed() + delay, seq: c.seq, fn: fn})
}

// FadeOut closes the curtain and runs fn once it is fully dark.
func (c *Curtain) FadeOut(fn func()) {
	c.opacity = 1
	c.After(FadeOutDelay, fn)
}

// FadeIn opens the curtain shortly after the call.
func (c *Curtain) FadeIn() {
	c.After(FadeInDelay, func() { c.opacity = 0 })
}

// Trigger closes the curtain for a playlist switch and runs fn in the
// dark. The curtain stays closed until the loaded scene opens it.
func (c *Curtain) Trigger(fn func()) {
	c.opacity = 1
	c.After(TriggerDelay, fn)
}

// FinishLoading opens the curtain after the loading grace period.
func (c *Curtain) FinishLoading() {
	c.After(LoadingDelay, func() { c.opacity = 0 })
}

// Update runs every callback that has come due. Callbacks may schedule
// more; those run in the same call only if they are already due.
func (c *Curtain) Update() int {
	ran := 0
	for {
		now := c.clock.Elapsed()
		i := c.next(now)
		if i < 0 {
			return ran
		}
		t := c.timers[i]
		c.timers = append(c.timers[:i], c.timers[i+1:]...)
		if t.fn != nil {
			t.fn()
		}
		ran++
	}
}

// next returns the index of the earliest due timer, or -1.
func (c *Curtain) next(now time.Duration) int {
	if len(c.timers) == 0 {
		return -1
	}
	sort.SliceStable(c.timers, func(a, b int) bool {
		if c.timers[a].due != c.timers[b].due {
			return c.timers[a].due < c.timers[b].due
		}
		return c.timers[a].seq < c.timers[b].seq
	})
	if c.timers[0].due > now {
		return -1
	}
	return 0
}

// Pending is the number of callbacks not yet run.
func (c *Curtain) Pending() int {
	return len(c.timers)
}

// Cancel drops every pending callback without touching the opacity.
func (c *Curtain) Cancel() {
	c.timers = nil
}
