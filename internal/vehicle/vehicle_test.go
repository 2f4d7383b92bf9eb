package vehicle

import (
	"bytes"
	"log/slog"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/nightdrive/showcase/internal/collision"
	"github.com/nightdrive/showcase/internal/scenegraph"
	"github.com/nightdrive/showcase/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertNear(t *testing.T, want, got mgl64.Vec3, msgAndArgs ...any) {
	t.Helper()
	assert.InDeltaSlice(t, want[:], got[:], 1e-6, msgAndArgs...)
}

const dt = 1.0 / 60

func newTestVehicle(t *testing.T) (*Vehicle, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return New(core.DefaultCarSettings(), logger), &buf
}

func walled() *scenegraph.Graph {
	return scenegraph.FromBoxes("arena", []scenegraph.Box{
		{Name: "ground", Min: mgl64.Vec3{-50, -1, -50}, Max: mgl64.Vec3{50, 0, 50}},
		{Name: "wall", Min: mgl64.Vec3{-5, 0, 2}, Max: mgl64.Vec3{5, 3, 3}},
	})
}

func TestSpawn_ZeroesMotionAndSnapsToGround(t *testing.T) {
	v, _ := newTestVehicle(t)
	v.SetCollider(collision.Plane(0))
	v.State.Speed = 0.7
	v.State.Steering = 0.3

	v.Spawn(mgl64.Vec3{4, 5, -2}, math.Pi/10)

	assert.Equal(t, 0.0, v.State.Speed)
	assert.Equal(t, 0.0, v.State.Steering)
	assert.Equal(t, math.Pi/10, v.State.PhysicsYaw)
	assert.Equal(t, math.Pi/10, v.State.VisualYaw)
	assert.InDelta(t, 0.02, v.State.Position.Y(), 1e-12)
	assert.Equal(t, core.Spawn{Position: mgl64.Vec3{4, 5, -2}, Yaw: math.Pi / 10}, v.SpawnPoint())
}

func TestReset_ReturnsToSpawn(t *testing.T) {
	v, _ := newTestVehicle(t)
	v.Spawn(mgl64.Vec3{1, 0, 1}, 0.5)
	v.Settings.AutoDrive = true
	for i := 0; i < 100; i++ {
		v.Tick(dt, Drive{})
	}
	require.NotEqual(t, mgl64.Vec3{1, 0, 1}, v.Position())

	v.Reset()
	assert.Equal(t, mgl64.Vec3{1, 0, 1}, v.Position())
	assert.Zero(t, v.State.Speed)
}

func TestTick_AutoDrivePlateausAtHalfMaxSpeed(t *testing.T) {
	v, _ := newTestVehicle(t)
	v.Settings.AutoDrive = true

	for i := 0; i < 600; i++ {
		v.Tick(dt, Drive{})
		require.LessOrEqual(t, v.State.Speed, v.Settings.MaxSpeed*0.5+v.Settings.Acceleration)
	}
	assert.Greater(t, v.State.Speed, v.Settings.MaxSpeed*0.4)
	assert.Greater(t, v.Position().Z(), 0.0, "yaw 0 drives down +Z")
}

func TestTick_ManualThrottleAndFriction(t *testing.T) {
	v, _ := newTestVehicle(t)
	v.Controls.Forward = true
	v.Tick(dt, Drive{})
	assert.InDelta(t, 0.01*0.98, v.State.Speed, 1e-12)

	v.Controls = core.Controls{Back: true}
	v.Tick(dt, Drive{})
	assert.InDelta(t, (0.01*0.98-0.01)*0.98, v.State.Speed, 1e-12)
}

func TestTick_NoTurningWhenStationary(t *testing.T) {
	v, _ := newTestVehicle(t)
	v.Controls.Left = true

	v.Tick(dt, Drive{})

	assert.Zero(t, v.State.PhysicsYaw)
	assert.Zero(t, v.State.Steering)
}

func TestTick_ManualSteeringSmoothsTowardTarget(t *testing.T) {
	v, _ := newTestVehicle(t)
	v.State.Speed = 0.3
	v.Controls.Left = true

	v.Tick(dt, Drive{})
	assert.InDelta(t, 0.05, v.State.Steering, 1e-12)
	assert.InDelta(t, v.Settings.TurnSpeed, v.State.PhysicsYaw, 1e-12)
	assert.Equal(t, 0.5, v.State.SteeringTarget)

	v.Controls = core.Controls{Right: true}
	v.Tick(dt, Drive{})
	assert.InDelta(t, 0.05+(-0.5-0.05)*0.1, v.State.Steering, 1e-12)
}

func TestTick_EngagedDrivePinsSteeringAndTurns(t *testing.T) {
	v, _ := newTestVehicle(t)
	v.State.Speed = 0.3

	for i := 0; i < 10; i++ {
		v.Tick(dt, Drive{Steering: 0.2, YawRate: 0.015, Engaged: true})
	}
	assert.Equal(t, 0.2, v.State.Steering)
	assert.InDelta(t, -0.15, v.State.PhysicsYaw, 1e-12)
}

func TestTick_CrashBouncesBack(t *testing.T) {
	v, _ := newTestVehicle(t)
	v.SetCollider(walled())
	v.Spawn(mgl64.Vec3{0, 0, 0}, 0)
	var crashed float64
	v.OnCrash(func(speed float64) { crashed = speed })

	v.State.Speed = 0.2
	v.Tick(dt, Drive{})

	assert.InDelta(t, -0.098, v.State.Speed, 1e-12)
	assert.InDelta(t, 0.196, crashed, 1e-12)
	assert.Less(t, v.Position().Z(), 0.0)
}

func TestTick_CrashStopsAutopilot(t *testing.T) {
	v, _ := newTestVehicle(t)
	v.SetCollider(walled())
	v.Spawn(mgl64.Vec3{0, 0, 0}, 0)
	v.Settings.AutoDrive = true
	v.State.Speed = 0.2

	v.Tick(dt, Drive{})
	assert.Zero(t, v.State.Speed)
}

func TestTick_DriftsWithoutGround(t *testing.T) {
	v, _ := newTestVehicle(t)
	v.SetCollider(collision.None)
	v.Spawn(mgl64.Vec3{0, 10, 0}, 0)
	assert.InDelta(t, 9.5, v.Position().Y(), 1e-12)

	v.Tick(dt, Drive{})
	v.Tick(dt, Drive{})
	assert.InDelta(t, 8.5, v.Position().Y(), 1e-12)
}

func TestTick_NoColliderKeepsHeight(t *testing.T) {
	v, _ := newTestVehicle(t)
	v.Spawn(mgl64.Vec3{0, 10, 0}, 0)
	v.Tick(dt, Drive{})
	assert.Equal(t, 10.0, v.Position().Y())
}

func TestTick_ScaleStretchesTravel(t *testing.T) {
	v, _ := newTestVehicle(t)
	v.SetScale(30)
	v.State.Speed = 1

	v.Tick(dt, Drive{})
	assert.InDelta(t, 0.98*30, v.Position().Z(), 1e-9)
	assert.InDelta(t, 9.8, v.State.WheelSpin, 1e-12)
}

func TestHold(t *testing.T) {
	v, _ := newTestVehicle(t)
	v.Settings.AutoDrive = true
	v.Hold(true)

	for i := 0; i < 30; i++ {
		v.Tick(dt, Drive{})
	}
	assert.Zero(t, v.State.Speed)
	assert.Equal(t, mgl64.Vec3{}, v.Position())

	v.Hold(false)
	v.Tick(dt, Drive{})
	assert.Greater(t, v.State.Speed, 0.0)
}

func TestBrake_ComesToRest(t *testing.T) {
	v, _ := newTestVehicle(t)
	v.State.Speed = 1.4
	v.Brake(0.8)

	for i := 0; i < 30; i++ {
		v.Tick(dt, Drive{})
	}
	assert.Zero(t, v.State.Speed)

	v.Brake(0)
	v.Controls.Forward = true
	v.Tick(dt, Drive{})
	assert.Greater(t, v.State.Speed, 0.0)
}

func TestSmoothVisual(t *testing.T) {
	v, _ := newTestVehicle(t)
	v.State.PhysicsYaw = 1

	v.SmoothVisual(1.0 / 60)
	assert.InDelta(t, 0.25, v.State.VisualYaw, 1e-12)

	v.SmoothVisual(0.5)
	assert.Equal(t, 1.0, v.State.VisualYaw)
}

func TestToWorld_UsesVisualYaw(t *testing.T) {
	v, _ := newTestVehicle(t)
	v.Spawn(mgl64.Vec3{10, 0, 0}, math.Pi/2)

	got := v.ToWorld(mgl64.Vec3{0, 1, 2})
	assertNear(t, mgl64.Vec3{12, 1, 0}, got)
	assertNear(t, mgl64.Vec3{1, 0, 0}, v.Forward())
}

func TestSetLights(t *testing.T) {
	v, _ := newTestVehicle(t)

	v.SetLights(true)
	assert.Equal(t, core.CarLights{On: true, HeadEmissive: 50, TailEmissive: 5, HeadBeam: 50, TailGlow: 5}, v.State.Lights)

	v.SetLights(false)
	assert.Equal(t, core.CarLights{}, v.State.Lights)
}
