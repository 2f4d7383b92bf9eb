// Package integrator advances the simulation in fixed ticks decoupled from
// the render frame rate.
package integrator

import "time"

const (
	// DefaultStep is one 60 Hz physics tick.
	DefaultStep = time.Second / 60
	// DefaultMaxFrame caps a single frame's contribution to the accumulator.
	DefaultMaxFrame = 100 * time.Millisecond
)

// TickFunc applies one physics tick of dt seconds.
type TickFunc func(dt float64)

// FixedStep is an accumulator integrator. Frame time is accumulated as an
// integer duration so the number of ticks depends only on the total time fed
// in, never on how it was split into frames.
type FixedStep struct {
	Step     time.Duration
	MaxFrame time.Duration

	acc     time.Duration
	ticks   uint64
	clamped uint64
}

// New creates an integrator ticking at hz with the given per-frame clamp.
// Non-positive arguments, and rates too high to give a whole-nanosecond
// step, fall back to the defaults.
func New(hz float64, maxFrame time.Duration) *FixedStep {
	step := DefaultStep
	if hz > 0 {
		if s := time.Duration(float64(time.Second) / hz); s > 0 {
			step = s
		}
	}
	if maxFrame <= 0 {
		maxFrame = DefaultMaxFrame
	}
	return &FixedStep{Step: step, MaxFrame: maxFrame}
}

// Advance feeds one render frame into the accumulator and runs tick once per
// whole step available. It returns the number of ticks run. Leftover time
// below one step is carried to the next call. A non-positive Step is
// replaced by DefaultStep.
func (f *FixedStep) Advance(frame time.Duration, tick TickFunc) int {
	if f.Step <= 0 {
		f.Step = DefaultStep
	}
	if frame < 0 {
		frame = 0
	}
	if f.MaxFrame > 0 && frame > f.MaxFrame {
		frame = f.MaxFrame
		f.clamped++
	}
	f.acc += frame

	dt := f.Step.Seconds()
	n := 0
	for f.acc >= f.Step {
		if tick != nil {
			tick(dt)
		}
		f.acc -= f.Step
		n++
	}
	f.ticks += uint64(n)
	return n
}

// Remainder is the carried time below one step.
func (f *FixedStep) Remainder() time.Duration {
	return f.acc
}

// Alpha is the fraction of a step sitting in the accumulator, for renderers
// that want to interpolate between ticks.
func (f *FixedStep) Alpha() float64 {
	if f.Step <= 0 {
		return 0
	}
	return float64(f.acc) / float64(f.Step)
}

// Ticks is the total number of ticks run since the last Reset.
func (f *FixedStep) Ticks() uint64 {
	return f.ticks
}

// Clamped counts frames that hit the MaxFrame limit.
func (f *FixedStep) Clamped() uint64 {
	return f.clamped
}

// Simulated is the total simulated time since the last Reset.
func (f *FixedStep) Simulated() time.Duration {
	return time.Duration(f.ticks) * f.Step
}

// Reset drops the accumulator and counters.
func (f *FixedStep) Reset() {
	f.acc = 0
	f.ticks = 0
	f.clamped = 0
}
