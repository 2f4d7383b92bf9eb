package scenes

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nightdrive/showcase/internal/clock"
	"github.com/nightdrive/showcase/internal/director"
	"github.com/nightdrive/showcase/internal/world"
	"github.com/nightdrive/showcase/pkg/core"
)

const frame = 1.0 / 60

type notes struct {
	messages []string
}

func (n *notes) Notify(msg string) { n.messages = append(n.messages, msg) }

type fixture struct {
	clk    *clock.Manual
	world  *world.Context
	dir    *director.Director
	loader *Loader
	notes  *notes
	events []core.Event
	logs   *bytes.Buffer
}

func newFixture(t *testing.T, opts ...LoaderOption) *fixture {
	t.Helper()
	f := &fixture{clk: clock.NewManual(), notes: &notes{}, logs: &bytes.Buffer{}}
	logger := slog.New(slog.NewTextHandler(f.logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	f.world = world.New(world.Options{
		Clock:  f.clk,
		Car:    core.DefaultCarSettings(),
		Camera: core.DefaultCameraConfig(),
		Logger: logger,
	})
	record := func(kind core.EventKind, detail string) {
		f.events = append(f.events, core.Event{Kind: kind, Detail: detail})
	}

	d, err := director.New(f.world, logger, director.WithEvents(record))
	require.NoError(t, err)
	f.dir = d

	catalog, err := DefaultCatalog()
	require.NoError(t, err)
	opts = append([]LoaderOption{WithNotifier(f.notes), WithEvents(record)}, opts...)
	f.loader = NewLoader(f.world, d, catalog, logger, opts...)
	return f
}

func (f *fixture) advance(d time.Duration) {
	f.clk.Advance(d)
	f.world.Curtain.Update()
}

// run plays n render frames: physics, then the director.
func (f *fixture) run(n int) {
	w := f.world
	for range n {
		f.clk.Advance(time.Second / 60)
		w.Step(frame)
		w.Vehicle.SmoothVisual(frame)
		f.dir.Update(frame)
		w.Curtain.Update()
	}
}

func (f *fixture) kinds() []core.EventKind {
	out := make([]core.EventKind, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e.Kind)
	}
	return out
}

func TestParseID(t *testing.T) {
	tests := []struct {
		in   string
		want ID
	}{
		{"1. City", City},
		{"city", City},
		{"CITY", City},
		{"2. bridge_design", Bridge},
		{"3. Highway", Highway},
		{"4. Mountain Road", Mountain},
		{"5. American Underpass:", Underpass},
		{"underpass", Underpass},
		{"Test Mode (Debug)", TestMode},
		{" test ", TestMode},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseID(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseID_Unknown(t *testing.T) {
	_, err := ParseID("Coast Tunnel")
	require.ErrorIs(t, err, ErrUnknownScene)
	assert.Contains(t, err.Error(), `"Coast Tunnel"`)
}

func TestID_String(t *testing.T) {
	assert.Equal(t, "4. Mountain Road", Mountain.String())
	assert.Equal(t, "ID(42)", ID(42).String())
	assert.Len(t, IDs(), 6)
}

func TestDefaultCatalog(t *testing.T) {
	c, err := DefaultCatalog()
	require.NoError(t, err)

	chain := []ID{City}
	for range 5 {
		next, err := ParseID(c.Get(chain[len(chain)-1]).Next)
		require.NoError(t, err)
		chain = append(chain, next)
	}
	assert.Equal(t, []ID{City, Bridge, Highway, Mountain, Underpass, City}, chain)
	assert.Empty(t, c.Get(TestMode).Next)
}

func TestTuning_WaypointsApplyRateScale(t *testing.T) {
	c, err := DefaultCatalog()
	require.NoError(t, err)

	wps := c.Get(Mountain).Waypoints()
	require.Len(t, wps, 6)
	assert.InDelta(t, 0.0405*0.33, wps[0].RotationRate, 1e-12)
	assert.InDelta(t, 0.0405, c.Get(Mountain).Route.Waypoints[0].RotationRate, 1e-12, "source table untouched")

	hw := c.Get(Highway).Waypoints()
	require.Len(t, hw, 3)
	assert.InDelta(t, -0.015, hw[0].RotationRate, 1e-12)
	assert.Equal(t, "Curve 1", hw[0].Name)
}

func TestParseCatalog_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"unknown key", "scenes:\n  - key: moon\n", "unknown scene"},
		{"duplicate", "scenes:\n  - key: city\n  - key: city\n", "duplicate entry"},
		{"bad next", "scenes:\n  - key: city\n    next: moon\n", "next"},
		{"bad theme", "scenes:\n  - key: city\n    lighting: {theme: disco}\n", "unknown lighting theme"},
		{"bad yaml", "scenes: [", "failed to parse scene tuning"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestCatalog_GetMissingIsEmpty(t *testing.T) {
	c, err := ParseCatalog([]byte("scenes: []"))
	require.NoError(t, err)

	tune := c.Get(Bridge)
	assert.Equal(t, "bridge", tune.Key)
	assert.Empty(t, tune.Route.Waypoints)
}

func TestLoader_UnknownScene(t *testing.T) {
	f := newFixture(t)

	err := f.loader.Load("Coast Tunnel")

	require.ErrorIs(t, err, ErrUnknownScene)
	assert.Empty(t, f.notes.messages, "notices only in dev mode")
	assert.Contains(t, f.logs.String(), "scene not found")
	_, loaded := f.loader.Current()
	assert.False(t, loaded)
}

func TestLoader_UnknownSceneNotifiesInDevMode(t *testing.T) {
	f := newFixture(t, DevMode(true))

	_ = f.loader.Load("Coast Tunnel")

	require.Len(t, f.notes.messages, 1)
	assert.Contains(t, f.notes.messages[0], "unknown scene")
}

func TestLoader_LoadWaitsForFade(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.loader.Load("1. City"))
	assert.Equal(t, 1.0, f.world.Curtain.Opacity())

	f.advance(900 * time.Millisecond)
	assert.Equal(t, 0, f.loader.Loads(), "not entered while the screen is still fading")

	f.advance(100 * time.Millisecond)
	id, ok := f.loader.Current()
	require.True(t, ok)
	assert.Equal(t, City, id)
	assert.Equal(t, "1. City", f.world.Scene())

	f.advance(100 * time.Millisecond)
	assert.Equal(t, 0.0, f.world.Curtain.Opacity(), "faded back in")
}

func TestLoader_NewerRequestWins(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.loader.Load("city"))
	f.advance(500 * time.Millisecond)
	require.NoError(t, f.loader.Load("highway"))
	f.advance(time.Second)

	assert.Equal(t, 1, f.loader.Loads())
	id, _ := f.loader.Current()
	assert.Equal(t, Highway, id)
}

func TestLoader_EnterCity(t *testing.T) {
	f := newFixture(t)
	f.world.Vehicle.Settings.AutoDrive = true

	f.loader.Enter(City)

	w := f.world
	v := w.Vehicle
	assert.InDelta(t, 119.1, v.Position().X(), 1e-9)
	assert.InDelta(t, -197.2, v.Position().Z(), 1e-9)
	assert.InDelta(t, -9.35+0.02, v.Position().Y(), 1e-9, "snapped to the street")
	assert.Equal(t, 0.0, v.State.Speed)
	assert.False(t, v.Settings.AutoDrive)
	assert.Equal(t, 1.0, v.Settings.MaxSpeed)
	assert.Equal(t, 0.015, v.Settings.Acceleration)
	assert.False(t, v.State.Lights.On)

	assert.Equal(t, "sunset", w.Lighting.Config.Theme)
	assert.Equal(t, mgl64.Vec3{119, 0, -197}, w.Lighting.Config.Focus)
	assert.Equal(t, mgl64.Vec3{100, 50, 50}, w.Lighting.Config.DirOffset)
	assert.Equal(t, 300.0, w.Lighting.Config.ShadowRange)

	assert.Equal(t, core.DirectorRunning, f.dir.State())
	assert.False(t, w.Orbit.Enabled)
	assert.Equal(t, 0, w.Autopilot.Len())
	assert.Contains(t, f.kinds(), core.EventSceneLoaded)
}

func TestLoader_EnterTestMode(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.loader.Load("Test Mode (Debug)"))

	id, ok := f.loader.Current()
	require.True(t, ok)
	assert.Equal(t, TestMode, id, "test mode skips the fade")
	assert.Equal(t, core.DirectorIdle, f.dir.State())
	assert.NotNil(t, f.world.Geometry.Find("centre_line"))
	assert.InDelta(t, 0.03, f.world.Vehicle.Position().Y(), 1e-9, "resting on the centre line")
	assert.True(t, f.world.Vehicle.Settings.FollowCamera)

	f.advance(400 * time.Millisecond)
	assert.Equal(t, 1.0, f.world.Curtain.Opacity())
	f.advance(100 * time.Millisecond)
	assert.Equal(t, 0.0, f.world.Curtain.Opacity())
}

func TestLoader_EnterHighwayFindsStreetLights(t *testing.T) {
	f := newFixture(t)

	f.loader.Enter(Highway)

	w := f.world
	assert.Len(t, w.StreetLights, 4)
	assert.Equal(t, 3, w.Autopilot.Len())
	assert.Equal(t, 0.05, w.Camera.Near)
	assert.Equal(t, "#aaccff", w.Lighting.Config.DirColor)
	assert.True(t, w.Vehicle.State.Lights.On)
	assert.Equal(t, 0.8, w.Vehicle.State.Lights.TailGlow)
	assert.Equal(t, 50.0, w.Vehicle.State.Lights.HeadBeam)
}

func TestLoader_EnterResetsLens(t *testing.T) {
	f := newFixture(t)

	f.loader.Enter(Underpass)
	assert.Equal(t, 2.0, f.world.Camera.Near)
	assert.Equal(t, 100000.0, f.world.Camera.Far)
	assert.Equal(t, 30.0, f.world.Vehicle.State.Scale)
	assert.False(t, f.world.Lighting.Config.ShadowAutoUpdate)
	assert.Nil(t, f.world.Lighting.Config.Fog, "fog range only applies when the theme has fog")

	f.loader.Enter(City)
	assert.Equal(t, 0.1, f.world.Camera.Near)
	assert.Equal(t, 1000.0, f.world.Camera.Far)
	assert.Equal(t, 1.0, f.world.Vehicle.State.Scale)
}

func TestCity_ChainsToBridge(t *testing.T) {
	f := newFixture(t)
	f.loader.Enter(City)

	f.clk.Advance(16 * time.Second)
	f.dir.Update(frame)

	assert.Contains(t, f.kinds(), core.EventSceneSwitch)
	assert.Equal(t, 1.0, f.world.Curtain.Opacity())

	f.advance(time.Second)
	id, _ := f.loader.Current()
	assert.Equal(t, Bridge, id)
	assert.Equal(t, core.DirectorRunning, f.dir.State())
}

func TestCity_UnknownSuccessorStopsScene(t *testing.T) {
	f := newFixture(t)
	f.loader.Catalog().Get(City).Next = "moon"
	f.loader.Enter(City)

	f.clk.Advance(16 * time.Second)
	f.dir.Update(frame)

	assert.NotContains(t, f.kinds(), core.EventSceneSwitch)
	assert.Contains(t, f.logs.String(), "scene has no valid successor")
	assert.False(t, f.dir.Running())
	assert.False(t, f.world.Vehicle.Held())
	assert.False(t, f.world.Autopilot.Engaged())

	f.advance(time.Second)
	assert.Equal(t, 0.0, f.world.Curtain.Opacity(), "no fade out")
	id, _ := f.loader.Current()
	assert.Equal(t, City, id)
	assert.Equal(t, 1, f.loader.Loads())

	require.NoError(t, f.dir.Play())
	f.dir.Update(frame)
	assert.True(t, f.dir.Running(), "replay starts from the top")
	f.clk.Advance(16 * time.Second)
	f.dir.Update(frame)
	assert.False(t, f.dir.Running())
}

func TestCity_DrivesAndTurns(t *testing.T) {
	f := newFixture(t)
	f.loader.Enter(City)
	v := f.world.Vehicle
	startYaw := v.State.PhysicsYaw

	f.run(3 * 60)
	assert.Equal(t, 0.0, v.State.Speed, "parked during the opening orbit")

	f.run(60)
	assert.True(t, v.Settings.AutoDrive)
	assert.True(t, v.State.Lights.On)
	assert.Greater(t, v.State.Speed, 0.0)
	assert.Less(t, v.State.PhysicsYaw, startYaw, "turned right")
}

func TestBridge_OpeningShot(t *testing.T) {
	f := newFixture(t)

	f.loader.Enter(Bridge)

	v := f.world.Vehicle
	want := v.Position().Add(core.Forward(2.02).Mul(-4.5)).Add(mgl64.Vec3{0, 1.2, 0}).
		Add(mgl64.Rotate3DY(2.02).Mul3x1(mgl64.Vec3{2, 0, 0}))
	got := f.world.Camera.Position
	assert.InDeltaSlice(t, want[:], got[:], 1e-9)

	f.run(60)
	assert.Equal(t, 0.0, v.State.Speed, "held while revving")
	assert.Greater(t, v.State.WheelSpin, 0.0)

	f.run(60)
	assert.True(t, v.Settings.AutoDrive)
	assert.Greater(t, v.State.Speed, 0.0)
}

func TestHighway_FollowsRoute(t *testing.T) {
	f := newFixture(t)
	f.loader.Enter(Highway)
	v := f.world.Vehicle

	f.run(55)
	assert.Equal(t, 0.0, v.State.Speed, "held for the first second")
	assert.Equal(t, 0, f.world.Autopilot.Index())

	f.run(6 * 60)
	assert.Greater(t, f.world.Autopilot.Index(), 0, "first curve triggered")
}

func TestHighway_StopDuringHoldGivesManualControl(t *testing.T) {
	f := newFixture(t)
	f.loader.Enter(Highway)
	v := f.world.Vehicle

	f.run(10)
	require.True(t, v.Held())

	f.dir.Stop()
	start := v.Position()
	v.Controls.Forward = true
	f.run(60)

	assert.False(t, v.Held())
	assert.False(t, f.world.Autopilot.Engaged())
	assert.Greater(t, v.Position().Sub(start).Len(), 0.0, "throttle moves the car")
}

func TestCity_StopMidTurnKeepsHeading(t *testing.T) {
	f := newFixture(t)
	f.loader.Enter(City)
	v := f.world.Vehicle
	ap := f.world.Autopilot

	f.run(228)
	require.True(t, ap.Engaged(), "turn impulse applied")

	f.dir.Stop()
	yaw := v.State.PhysicsYaw
	f.run(120)

	assert.False(t, ap.Engaged())
	assert.Zero(t, ap.RotationRate())
	assert.InDelta(t, yaw, v.State.PhysicsYaw, 1e-12, "no input, no rotation")
	assert.InDelta(t, 0.0, v.State.Steering, 0.01, "steering eased back to centre")
}

func TestMountain_HoldsThenDrives(t *testing.T) {
	f := newFixture(t)
	f.loader.Enter(Mountain)
	v := f.world.Vehicle

	assert.Equal(t, 0.01, v.State.Scale)
	f.run(3 * 60)
	assert.True(t, v.Held())
	assert.True(t, f.world.Autopilot.Paused())

	f.run(2 * 60)
	assert.False(t, v.Held())
	assert.True(t, v.Settings.AutoDrive)
}

func TestUnderpass_CutsAndTrucks(t *testing.T) {
	f := newFixture(t)
	f.loader.Enter(Underpass)

	f.run(1)

	assert.Equal(t, director.CutUnderpassStart, f.dir.CurrentCut())
	assert.True(t, f.world.Vehicle.Settings.AutoDrive)
	assert.Equal(t, 30.0, f.world.Vehicle.Settings.MaxSpeed)
	assert.InDelta(t, 10+40*frame, f.world.Camera.Position.Z(), 1e-9)
	assert.Contains(t, f.kinds(), core.EventCut)

	f.run(60)
	assert.Greater(t, f.world.Camera.Position.Z(), 10+40*0.9)
}

func TestUnderpass_LoopsToCity(t *testing.T) {
	f := newFixture(t)
	f.loader.Enter(Underpass)

	f.run(int(3.2 * 60))
	f.advance(time.Second)

	id, _ := f.loader.Current()
	assert.Equal(t, City, id)
}
