// Package autopilot fires timed steering impulses when the car reaches
// waypoints along a route.
package autopilot

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/nightdrive/showcase/internal/mathx"
	"github.com/nightdrive/showcase/pkg/core"
)

// DefaultRadius is the trigger radius used when a route does not set one.
const DefaultRadius = 2.0

// timers within this of zero count as expired; a 60 Hz tick is not exact
// in binary floating point.
const timerEpsilon = 1e-6

// TriggerFunc is called each time a waypoint fires.
type TriggerFunc func(index int, wp core.Waypoint)

// Autopilot consumes a route strictly in order. The index only advances.
type Autopilot struct {
	route  []core.Waypoint
	radius float64
	index  int

	timer    float64
	steering float64
	rate     float64
	engaged  bool
	paused   bool

	onTrigger TriggerFunc
}

// New creates an idle autopilot with no route.
func New() *Autopilot {
	return &Autopilot{radius: DefaultRadius}
}

// OnTrigger registers fn to be called when a waypoint fires.
func (a *Autopilot) OnTrigger(fn TriggerFunc) {
	a.onTrigger = fn
}

// SetRoute replaces the route and rewinds to its first waypoint.
// A non-positive radius selects DefaultRadius.
func (a *Autopilot) SetRoute(route []core.Waypoint, radius float64) {
	if radius <= 0 {
		radius = DefaultRadius
	}
	a.route = append([]core.Waypoint(nil), route...)
	a.radius = radius
	a.index = 0
	a.straighten()
	a.paused = false
}

// Reset drops the route and any held impulse.
func (a *Autopilot) Reset() {
	a.SetRoute(nil, a.radius)
}

// Tick runs one physics step. While a turn timer is counting down the last
// impulse is held; on expiry steering and rotation go back to zero. The
// car's ground position is then checked against the next waypoint. It
// reports whether a waypoint fired.
func (a *Autopilot) Tick(dt float64, pos mgl64.Vec3) bool {
	if a.paused {
		return false
	}

	if a.timer > 0 {
		a.timer -= dt
		if a.timer <= timerEpsilon {
			a.straighten()
		}
	}

	if a.index >= len(a.route) {
		return false
	}

	wp := a.route[a.index]
	radius := wp.Radius
	if radius <= 0 {
		radius = a.radius
	}
	if mathx.DistanceXZ(pos, mgl64.Vec3{wp.X, 0, wp.Z}) >= radius {
		return false
	}

	a.steering = wp.Steering
	a.rate = wp.RotationRate
	a.timer = max(wp.Duration, 0)
	a.engaged = true
	idx := a.index
	a.index++

	if a.onTrigger != nil {
		a.onTrigger(idx, wp)
	}
	return true
}

// Impulse holds steering and rotation outside any route until the next
// waypoint, Release or Halt replaces it.
func (a *Autopilot) Impulse(steering, rate float64) {
	a.steering = steering
	a.rate = rate
	a.timer = 0
	a.engaged = true
}

// Release drops the held impulse so the car's own steering smoothing
// takes over.
func (a *Autopilot) Release() {
	a.straighten()
}

// Halt zeroes the impulse and stops checking waypoints until Resume.
func (a *Autopilot) Halt() {
	a.straighten()
	a.paused = true
}

// Resume re-enables waypoint checks after Halt.
func (a *Autopilot) Resume() {
	a.paused = false
}

func (a *Autopilot) straighten() {
	a.steering = 0
	a.rate = 0
	a.timer = 0
	a.engaged = false
}

// Index is the number of waypoints consumed so far.
func (a *Autopilot) Index() int { return a.index }

// Len is the route length.
func (a *Autopilot) Len() int { return len(a.route) }

// Done reports whether every waypoint has fired.
func (a *Autopilot) Done() bool { return a.index >= len(a.route) }

// Steering is the held steering angle.
func (a *Autopilot) Steering() float64 { return a.steering }

// RotationRate is the yaw change per tick, subtracted from physics yaw.
func (a *Autopilot) RotationRate() float64 { return a.rate }

// Engaged reports whether the autopilot is holding the steering.
func (a *Autopilot) Engaged() bool { return a.engaged }

// TurnTimer is the remaining hold time in seconds.
func (a *Autopilot) TurnTimer() float64 { return a.timer }

// Paused reports whether Halt is in effect.
func (a *Autopilot) Paused() bool { return a.paused }
