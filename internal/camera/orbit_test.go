package camera

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/nightdrive/showcase/pkg/core"
	"github.com/stretchr/testify/assert"
)

func orbitCamera(pos mgl64.Vec3) *Camera {
	c := New()
	c.Position = pos
	c.Target = mgl64.Vec3{}
	return c
}

func TestOrbit_DisabledDoesNothing(t *testing.T) {
	cfg := core.DefaultCameraConfig()
	o := NewOrbit(&cfg)
	o.Enabled = false
	c := orbitCamera(mgl64.Vec3{0, 0, 500})

	o.Update(c)
	assert.Equal(t, mgl64.Vec3{0, 0, 500}, c.Position)
}

func TestOrbit_ClampsDistance(t *testing.T) {
	cfg := core.DefaultCameraConfig()
	o := NewOrbit(&cfg)

	far := orbitCamera(mgl64.Vec3{0, 0, 500})
	o.Update(far)
	assert.InDelta(t, cfg.MaxDistance, far.Position.Len(), 1e-9)

	near := orbitCamera(mgl64.Vec3{0.5, 0, 0})
	o.Update(near)
	assert.InDelta(t, cfg.MinDistance, near.Position.Len(), 1e-9)
	assert.InDelta(t, cfg.MinDistance, near.Position.X(), 1e-9)
}

func TestOrbit_ClampsPolarAngle(t *testing.T) {
	cfg := core.DefaultCameraConfig()
	cfg.MaxPolarAngle = math.Pi / 2
	o := NewOrbit(&cfg)

	c := orbitCamera(mgl64.Vec3{0, -10, 10})
	o.Update(c)

	assert.InDelta(t, 0.0, c.Position.Y(), 1e-9, "held at the horizon")
	assert.InDelta(t, math.Sqrt(200), c.Position.Len(), 1e-9)
}

func TestOrbit_RotateAndZoom(t *testing.T) {
	cfg := core.DefaultCameraConfig()
	o := NewOrbit(&cfg)
	o.Damping = 1
	c := orbitCamera(mgl64.Vec3{0, 0, 10})

	o.Rotate(math.Pi/2, 0)
	o.Zoom(1)
	o.Update(c)

	assertNear(t, mgl64.Vec3{20, 0, 0}, c.Position)

	o.Update(c)
	assertNear(t, mgl64.Vec3{20, 0, 0}, c.Position, "input is consumed")
}

func TestOrbit_RespectsEnableFlags(t *testing.T) {
	cfg := core.DefaultCameraConfig()
	cfg.EnableRotate = false
	cfg.EnableZoom = false
	cfg.EnablePan = false
	o := NewOrbit(&cfg)
	o.Damping = 1
	c := orbitCamera(mgl64.Vec3{0, 0, 10})

	o.Rotate(1, 1)
	o.Zoom(3)
	o.Pan(mgl64.Vec3{5, 0, 0})
	o.Update(c)

	assertNear(t, mgl64.Vec3{0, 0, 10}, c.Position)
	assert.Equal(t, mgl64.Vec3{}, c.Target)
}

func TestOrbit_PanMovesBoth(t *testing.T) {
	cfg := core.DefaultCameraConfig()
	o := NewOrbit(&cfg)
	o.Damping = 1
	c := orbitCamera(mgl64.Vec3{0, 0, 10})

	o.Pan(mgl64.Vec3{3, 0, 0})
	o.Update(c)

	assert.Equal(t, mgl64.Vec3{3, 0, 0}, c.Target)
	assertNear(t, mgl64.Vec3{3, 0, 10}, c.Position)

	o.Pan(mgl64.Vec3{1, 0, 0})
	o.Clear()
	o.Update(c)
	assert.Equal(t, mgl64.Vec3{3, 0, 0}, c.Target)
}
