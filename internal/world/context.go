// Package world holds the shared simulation state the loop mutates.
package world

import (
	"log/slog"
	"sync"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/nightdrive/showcase/internal/autopilot"
	"github.com/nightdrive/showcase/internal/camera"
	"github.com/nightdrive/showcase/internal/clock"
	"github.com/nightdrive/showcase/internal/collision"
	"github.com/nightdrive/showcase/internal/lighting"
	"github.com/nightdrive/showcase/internal/scenegraph"
	"github.com/nightdrive/showcase/internal/transition"
	"github.com/nightdrive/showcase/internal/vehicle"
	"github.com/nightdrive/showcase/pkg/core"
)

// Context is everything a frame reads and writes: the car, the camera and
// its rigs, lighting, the environment geometry and the loop clock. Only
// the loop goroutine touches the simulation fields. The scene label is
// guarded because log handlers read it from other goroutines.
type Context struct {
	Clock        clock.Clock
	Vehicle      *vehicle.Vehicle
	Autopilot    *autopilot.Autopilot
	Camera       *camera.Camera
	CameraConfig core.CameraConfig
	Orbit        *camera.Orbit
	Rig          *camera.Rig
	Lighting     *lighting.Lighting
	Curtain      *transition.Curtain
	Geometry     *scenegraph.Graph

	// StreetLights are lamp positions found in the current geometry.
	StreetLights []mgl64.Vec3

	mu    sync.RWMutex
	scene string
}

// Options configures New.
type Options struct {
	Clock  clock.Clock
	Car    core.CarSettings
	Camera core.CameraConfig
	Logger *slog.Logger
}

// New creates a world with no scene loaded.
func New(opts Options) *Context {
	if opts.Clock == nil {
		opts.Clock = clock.NewReal()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	w := &Context{
		Clock:        opts.Clock,
		Vehicle:      vehicle.New(opts.Car, opts.Logger),
		Autopilot:    autopilot.New(),
		Camera:       camera.New(),
		CameraConfig: opts.Camera,
		Lighting:     lighting.New(),
		Curtain:      transition.New(opts.Clock),
		scene:        "No scene loaded",
	}
	w.Orbit = camera.NewOrbit(&w.CameraConfig)
	w.Rig = camera.NewRig(w.Camera, &w.CameraConfig)
	return w
}

// Now returns the loop clock in seconds.
func (w *Context) Now() float64 {
	return clock.Seconds(w.Clock)
}

// SetGeometry swaps the environment the car and camera collide with. nil
// clears it.
func (w *Context) SetGeometry(g *scenegraph.Graph) {
	w.Geometry = g
	var c collision.Caster
	if g != nil {
		c = g
	}
	w.Vehicle.SetCollider(c)
	w.Rig.Collider = c
}

// Step runs one physics tick. The autopilot checks the car's position
// first, then the car moves under whatever impulse it holds. It reports
// whether a waypoint fired.
func (w *Context) Step(dt float64) bool {
	ap := w.Autopilot
	fired := ap.Tick(dt, w.Vehicle.Position())
	w.Vehicle.Tick(dt, vehicle.Drive{
		Steering: ap.Steering(),
		YawRate:  ap.RotationRate(),
		Engaged:  ap.Engaged(),
	})
	return fired
}

// Collider returns the active collision geometry, nil when none is loaded.
func (w *Context) Collider() collision.Caster {
	if w.Geometry == nil {
		return nil
	}
	return w.Geometry
}

// Scene returns the current scene label.
func (w *Context) Scene() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.scene
}

// SetScene sets the current scene label.
func (w *Context) SetScene(name string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.scene = name
}
