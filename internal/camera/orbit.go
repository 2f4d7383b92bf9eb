package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/nightdrive/showcase/internal/mathx"
	"github.com/nightdrive/showcase/pkg/core"
)

// DefaultOrbitDamping is the share of pending input applied per update.
const DefaultOrbitDamping = 0.05

// polar clamps stay this far off the poles so the view never flips
const polarMargin = 1e-6

// Orbit is the manual camera control. Input accumulates between frames
// and is eased in by Update, within the limits in the camera config.
type Orbit struct {
	Enabled bool
	Damping float64

	cfg *core.CameraConfig

	yaw, pitch float64
	zoom       float64
	pan        mgl64.Vec3
}

// NewOrbit creates enabled orbit controls limited by cfg.
func NewOrbit(cfg *core.CameraConfig) *Orbit {
	return &Orbit{Enabled: true, Damping: DefaultOrbitDamping, cfg: cfg}
}

// Rotate queues a rotation around the target in radians.
func (o *Orbit) Rotate(yaw, pitch float64) {
	if !o.cfg.EnableRotate {
		return
	}
	o.yaw += yaw
	o.pitch += pitch
}

// Zoom queues a dolly. Positive values move away from the target, as a
// log-scale step: 1 doubles the distance.
func (o *Orbit) Zoom(steps float64) {
	if !o.cfg.EnableZoom {
		return
	}
	o.zoom += steps
}

// Pan queues a shift of both camera and target.
func (o *Orbit) Pan(delta mgl64.Vec3) {
	if !o.cfg.EnablePan {
		return
	}
	o.pan = o.pan.Add(delta)
}

// Update applies eased input to c and enforces the distance and polar
// limits. It does nothing while disabled.
func (o *Orbit) Update(c *Camera) {
	if !o.Enabled {
		return
	}
	f := mathx.Clamp(o.Damping, 0, 1)

	shift := o.pan.Mul(f)
	c.Target = c.Target.Add(shift)
	c.Position = c.Position.Add(shift)

	offset := c.Position.Sub(c.Target)
	radius := offset.Len()
	if radius == 0 {
		radius = o.cfg.MinDistance
		offset = mgl64.Vec3{0, 0, 1}
	}
	theta := math.Atan2(offset.X(), offset.Z())
	phi := math.Acos(mathx.Clamp(offset.Y()/offset.Len(), -1, 1))

	theta += o.yaw * f
	phi += o.pitch * f
	radius *= math.Pow(2, o.zoom*f)

	phi = mathx.Clamp(phi, math.Max(o.cfg.MinPolarAngle, polarMargin), math.Min(o.cfg.MaxPolarAngle, math.Pi-polarMargin))
	radius = mathx.Clamp(radius, o.cfg.MinDistance, o.cfg.MaxDistance)

	c.Position = c.Target.Add(mgl64.Vec3{
		radius * math.Sin(phi) * math.Sin(theta),
		radius * math.Cos(phi),
		radius * math.Sin(phi) * math.Cos(theta),
	})

	keep := 1 - f
	o.yaw *= keep
	o.pitch *= keep
	o.zoom *= keep
	o.pan = o.pan.Mul(keep)

	c.LookAt()
}

// Clear drops pending input.
func (o *Orbit) Clear() {
	o.yaw, o.pitch, o.zoom = 0, 0, 0
	o.pan = mgl64.Vec3{}
}
