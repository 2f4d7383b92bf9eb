package world

import (
	"sync"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/nightdrive/showcase/internal/clock"
	"github.com/nightdrive/showcase/internal/scenegraph"
	"github.com/nightdrive/showcase/pkg/core"
	"github.com/stretchr/testify/assert"
)

func TestContext_Defaults(t *testing.T) {
	w := New(Options{Car: core.DefaultCarSettings(), Camera: core.DefaultCameraConfig()})

	assert.Equal(t, "No scene loaded", w.Scene())
	assert.Nil(t, w.Collider())
	assert.True(t, w.Orbit.Enabled)
	assert.Equal(t, 1.0, w.Curtain.Opacity())
}

func TestContext_SceneIsThreadSafe(t *testing.T) {
	w := New(Options{})
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.SetScene("City")
			_ = w.Scene()
		}()
	}
	wg.Wait()
	assert.Equal(t, "City", w.Scene())
}

func TestContext_SetGeometryWiresColliders(t *testing.T) {
	clk := clock.NewManual()
	w := New(Options{Clock: clk, Car: core.DefaultCarSettings(), Camera: core.DefaultCameraConfig()})

	w.SetGeometry(scenegraph.TestTrack())
	w.Vehicle.Spawn(mgl64.Vec3{0, 3, 0}, 0)
	assert.InDelta(t, 0.03, w.Vehicle.Position().Y(), 1e-9, "resting on the centre line")
	assert.NotNil(t, w.Rig.Collider)

	w.SetGeometry(nil)
	assert.Nil(t, w.Collider())
	assert.Nil(t, w.Rig.Collider)
}

func TestContext_CameraConfigIsShared(t *testing.T) {
	w := New(Options{Camera: core.DefaultCameraConfig()})
	w.CameraConfig.Distance = 30
	assert.Equal(t, 30.0, w.Rig.Config.Distance)
}

func TestContext_StepFeedsAutopilotIntoCar(t *testing.T) {
	w := New(Options{Car: core.DefaultCarSettings(), Camera: core.DefaultCameraConfig()})
	w.Vehicle.Spawn(mgl64.Vec3{}, 0)
	w.Autopilot.SetRoute([]core.Waypoint{{X: 0, Z: 0.5, Steering: 0.3, RotationRate: 0.02, Duration: 1}}, 1)

	fired := w.Step(1.0 / 60)

	assert.True(t, fired)
	assert.Equal(t, 0.3, w.Vehicle.State.Steering)
	assert.InDelta(t, -0.02, w.Vehicle.State.PhysicsYaw, 1e-12)
}
