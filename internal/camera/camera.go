// Package camera holds the render camera, the manual orbit controls and
// the follow rig that chases the car.
package camera

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/nightdrive/showcase/internal/mathx"
	"github.com/nightdrive/showcase/pkg/core"
)

// Lens defaults.
const (
	DefaultFOV  = 60
	DefaultNear = 0.1
	DefaultFar  = 1000
)

// Camera is the render camera. Target doubles as the orbit pivot and the
// director's look target.
type Camera struct {
	Position mgl64.Vec3
	Target   mgl64.Vec3
	Up       mgl64.Vec3
	FOV      float64
	Near     float64
	Far      float64

	view mgl64.Mat4
}

// New returns a camera overlooking the origin.
func New() *Camera {
	c := &Camera{
		Position: mgl64.Vec3{30, 20, 30},
		Target:   mgl64.Vec3{0, 5, 0},
		Up:       mathx.Up,
		FOV:      DefaultFOV,
		Near:     DefaultNear,
		Far:      DefaultFar,
	}
	c.LookAt()
	return c
}

// LookAt recomputes the view matrix from position, target and up. A
// degenerate pose keeps the previous view.
func (c *Camera) LookAt() {
	if c.Position.ApproxEqual(c.Target) {
		return
	}
	c.view = mgl64.LookAtV(c.Position, c.Target, c.Up)
}

// View returns the last computed view matrix.
func (c *Camera) View() mgl64.Mat4 {
	return c.view
}

// ResetLens restores the default clip planes.
func (c *Camera) ResetLens() {
	c.Near = DefaultNear
	c.Far = DefaultFar
}

// Pose snapshots the camera for publishing.
func (c *Camera) Pose() core.CameraPose {
	return core.CameraPose{
		Position: c.Position,
		Target:   c.Target,
		Up:       c.Up,
		FOV:      c.FOV,
		Near:     c.Near,
		Far:      c.Far,
	}
}

// Right returns the unit vector pointing to the right of the view.
func (c *Camera) Right() mgl64.Vec3 {
	r := c.Target.Sub(c.Position).Cross(c.Up)
	if r.Len() < 1e-9 {
		return mgl64.Vec3{1, 0, 0}
	}
	return r.Normalize()
}
