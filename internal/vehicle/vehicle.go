// Package vehicle holds the car's physics tick.
package vehicle

import (
	"log/slog"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/nightdrive/showcase/internal/collision"
	"github.com/nightdrive/showcase/internal/mathx"
	"github.com/nightdrive/showcase/pkg/core"
)

const (
	// steering follows its target by this fraction each tick
	steeringResponse = 0.1
	// below this speed the car cannot turn and brakes snap to a stop
	minSpeed = 0.01
	// manual steering target while a turn key is held
	manualSteer = 0.5
	// visual yaw catch-up rate, per second
	visualCatchUp = 15
	// fall rate per tick when no ground is found below the car
	fallDrift = 0.5
)

// Drive is the autopilot's contribution to a tick. When Engaged the
// steering angle is pinned to Steering instead of being smoothed.
type Drive struct {
	Steering float64
	YawRate  float64
	Engaged  bool
}

// Vehicle is the single controllable car. It persists across scenes and is
// repositioned with Spawn.
type Vehicle struct {
	State    core.VehicleState
	Settings core.CarSettings
	Controls core.Controls
	Rig      core.CarRig

	spawn    core.Spawn
	held     bool
	brake    float64
	collider collision.Caster
	logger   *slog.Logger
	onCrash  func(speed float64)
}

// New creates a car at the origin with unit scale.
func New(settings core.CarSettings, logger *slog.Logger) *Vehicle {
	if logger == nil {
		logger = slog.Default()
	}
	return &Vehicle{
		State:    core.VehicleState{Scale: 1},
		Settings: settings,
		logger:   logger,
	}
}

// SetCollider sets the environment the car drives on. nil disables ground
// and crash rays entirely.
func (v *Vehicle) SetCollider(c collision.Caster) {
	v.collider = c
}

// OnCrash registers fn to be called when the forward ray detects a wall.
func (v *Vehicle) OnCrash(fn func(speed float64)) {
	v.onCrash = fn
}

// Spawn repositions the car, zeroes its motion and remembers the spot for
// Reset.
func (v *Vehicle) Spawn(pos mgl64.Vec3, yaw float64) {
	v.spawn = core.Spawn{Position: pos, Yaw: yaw}
	v.State.Position = pos
	v.State.PhysicsYaw = yaw
	v.State.VisualYaw = yaw
	v.State.Speed = 0
	v.State.Steering = 0
	v.State.SteeringTarget = 0
	v.held = false
	v.brake = 0
	v.snapToGround()
}

// Reset returns the car to its last spawn.
func (v *Vehicle) Reset() {
	v.Spawn(v.spawn.Position, v.spawn.Yaw)
}

// SpawnPoint returns the last spawn.
func (v *Vehicle) SpawnPoint() core.Spawn {
	return v.spawn
}

// SetScale sets the uniform model scale. Distances the physics uses scale
// with it.
func (v *Vehicle) SetScale(s float64) {
	if s <= 0 {
		s = 1
	}
	v.State.Scale = s
}

// Hold pins the speed at zero until released.
func (v *Vehicle) Hold(on bool) {
	v.held = on
	if on {
		v.State.Speed = 0
	}
}

// Held reports whether Hold is in effect.
func (v *Vehicle) Held() bool {
	return v.held
}

// Brake multiplies the speed by factor every tick, on top of friction.
// Zero releases the brake.
func (v *Vehicle) Brake(factor float64) {
	v.brake = mathx.Clamp(factor, 0, 1)
}

// Stop zeroes the speed immediately.
func (v *Vehicle) Stop() {
	v.State.Speed = 0
}

// Position returns the car's world position.
func (v *Vehicle) Position() mgl64.Vec3 {
	return v.State.Position
}

// Forward returns the unit heading from the visual yaw, which is what
// cameras framing the car should follow.
func (v *Vehicle) Forward() mgl64.Vec3 {
	return core.Forward(v.State.VisualYaw)
}

// ToWorld maps a point in the car's local frame into world space using
// the visual pose. Model scale is not applied.
func (v *Vehicle) ToWorld(local mgl64.Vec3) mgl64.Vec3 {
	return mathx.ToWorld(v.State.Position, v.State.VisualYaw, 1, local)
}

// Tick advances the car by one physics step.
func (v *Vehicle) Tick(_ float64, d Drive) {
	st := &v.State
	set := v.Settings

	switch {
	case v.held:
	case set.AutoDrive:
		if st.Speed < set.MaxSpeed*0.5 {
			st.Speed += set.Acceleration
		}
	default:
		if v.Controls.Forward {
			st.Speed += set.Acceleration
		}
		if v.Controls.Back {
			st.Speed -= set.Acceleration
		}
	}

	st.Speed *= set.Friction
	if v.brake > 0 {
		st.Speed *= v.brake
		if math.Abs(st.Speed) < minSpeed {
			st.Speed = 0
		}
	}
	if v.held {
		st.Speed = 0
	}

	target := 0.0
	if math.Abs(st.Speed) > minSpeed {
		if v.Controls.Left {
			st.PhysicsYaw += set.TurnSpeed
			target = manualSteer
		}
		if v.Controls.Right {
			st.PhysicsYaw -= set.TurnSpeed
			target = -manualSteer
		}
	}
	if d.Engaged {
		st.Steering = d.Steering
		st.SteeringTarget = d.Steering
	} else {
		st.SteeringTarget = target
		st.Steering += (target - st.Steering) * steeringResponse
	}
	st.PhysicsYaw -= d.YawRate

	if math.Abs(st.Speed) > minSpeed && v.blocked() {
		before := st.Speed
		st.Speed = -st.Speed * 0.5
		if set.AutoDrive {
			st.Speed = 0
		}
		if v.onCrash != nil {
			v.onCrash(before)
		}
	}

	st.Position = st.Position.Add(core.Forward(st.PhysicsYaw).Mul(st.Speed * st.Scale))
	v.snapToGround()
	st.WheelSpin += st.Speed * 10
}

// blocked casts the crash ray along the direction of travel.
func (v *Vehicle) blocked() bool {
	if v.collider == nil {
		return false
	}
	dir := core.Forward(v.State.PhysicsYaw)
	if v.State.Speed < 0 {
		dir = dir.Mul(-1)
	}
	origin := v.State.Position.Add(mgl64.Vec3{0, 0.5 * v.State.Scale, 0})
	hit, ok := v.collider.CastRay(origin, dir)
	return ok && hit.Distance < 2.5*v.State.Scale
}

// snapToGround rests the car on whatever is below it. With no ground it
// drifts down instead.
func (v *Vehicle) snapToGround() {
	if v.collider == nil {
		return
	}
	st := &v.State
	origin := st.Position.Add(mgl64.Vec3{0, 2 * st.Scale, 0})
	if hit, ok := v.collider.CastRay(origin, mgl64.Vec3{0, -1, 0}); ok {
		st.Position[1] = hit.Point.Y() + 0.02*st.Scale
		return
	}
	st.Position[1] -= fallDrift
}

// SmoothVisual eases the rendered yaw toward the physics yaw for a render
// frame of dt seconds.
func (v *Vehicle) SmoothVisual(dt float64) {
	f := math.Min(dt*visualCatchUp, 1)
	v.State.VisualYaw = mathx.Lerp(v.State.VisualYaw, v.State.PhysicsYaw, f)
}

// SetLights switches every lamp on or off at stock intensity.
func (v *Vehicle) SetLights(on bool) {
	l := core.CarLights{On: on}
	if on {
		l.HeadEmissive = 50
		l.TailEmissive = 5
		l.HeadBeam = 50
		l.TailGlow = 5
	}
	v.State.Lights = l
}

// Rev spins the wheels in place by angle radians.
func (v *Vehicle) Rev(angle float64) {
	v.State.WheelSpin += angle
}
