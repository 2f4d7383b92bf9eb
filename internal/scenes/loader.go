// Package scenes holds the scene registry, the per-scene tuning tables and
// the scripted sequences that drive each scene.
package scenes

import (
	"log/slog"

	"github.com/nightdrive/showcase/internal/director"
	"github.com/nightdrive/showcase/internal/scenegraph"
	"github.com/nightdrive/showcase/internal/world"
	"github.com/nightdrive/showcase/pkg/core"
)

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithNotifier reports unknown scene names to the user in dev mode.
func WithNotifier(n director.Notifier) LoaderOption {
	return func(l *Loader) {
		l.notifier = n
	}
}

// WithEvents sets the event sink.
func WithEvents(fn director.EventFunc) LoaderOption {
	return func(l *Loader) {
		l.onEvent = fn
	}
}

// DevMode surfaces unknown scene names as notices.
func DevMode(on bool) LoaderOption {
	return func(l *Loader) {
		l.devMode = on
	}
}

// Loader switches scenes. All of its work runs on the loop goroutine,
// either from a command or from a curtain callback.
type Loader struct {
	world    *world.Context
	dir      *director.Director
	catalog  *Catalog
	logger   *slog.Logger
	notifier director.Notifier
	onEvent  director.EventFunc
	devMode  bool

	current ID
	loaded  bool
	loads   int
}

// NewLoader creates a loader over the given tuning.
func NewLoader(w *world.Context, dir *director.Director, catalog *Catalog, logger *slog.Logger, opts ...LoaderOption) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	l := &Loader{
		world:   w,
		dir:     dir,
		catalog: catalog,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load fades out and enters the named scene once the screen is black. A
// newer request replaces one still waiting on the fade. Test mode enters
// immediately.
func (l *Loader) Load(name string) error {
	id, err := ParseID(name)
	if err != nil {
		l.logger.Error("scene not found", "scene", name)
		if l.devMode && l.notifier != nil {
			l.notifier.Notify(err.Error())
		}
		return err
	}

	l.world.Curtain.Cancel()
	if id == TestMode {
		l.Enter(id)
		return nil
	}
	l.world.Curtain.FadeOut(func() {
		l.Enter(id)
	})
	return nil
}

// Enter sets up the scene right away: the director is reset, the car is
// respawned and the lights, lens and route are replaced. Scenes with a
// script arm it and, when tuned to, play it.
func (l *Loader) Enter(id ID) {
	t := l.catalog.Get(id)
	w := l.world

	l.dir.Reset()
	w.SetScene(id.String())

	if id == TestMode {
		w.SetGeometry(scenegraph.TestTrack())
	} else {
		w.SetGeometry(t.Geometry())
	}
	w.StreetLights = scenegraph.StreetLights(w.Geometry, scenegraph.DefaultLightFilter)

	v := w.Vehicle
	v.SetScale(t.Scale)
	v.Spawn(t.Spawn.Position, t.Spawn.Yaw)
	if t.AutoScale {
		scale := v.AutoScale()
		l.logger.Debug("car scaled to road", "scale", scale)
	}

	s := &v.Settings
	s.AutoDrive = false
	if t.Car.MaxSpeed > 0 {
		s.MaxSpeed = t.Car.MaxSpeed
	}
	if t.Car.Acceleration > 0 {
		s.Acceleration = t.Car.Acceleration
	}
	if t.Car.TurnSpeed > 0 {
		s.TurnSpeed = t.Car.TurnSpeed
	}
	v.SetLights(t.Lamps.On)
	t.ApplyLamps(&v.State.Lights)

	t.ApplyLighting(w.Lighting)

	w.Camera.ResetLens()
	if t.Lens.Near > 0 {
		w.Camera.Near = t.Lens.Near
	}
	if t.Lens.Far > 0 {
		w.Camera.Far = t.Lens.Far
	}

	w.Autopilot.SetRoute(t.Waypoints(), t.Route.Radius)

	if sc := l.scenario(id, t); sc != nil {
		l.dir.LoadScenario(sc)
		if t.AutoPlay {
			if err := l.dir.Play(); err != nil {
				l.logger.Warn("scenario did not start", "scene", id.String(), "error", err)
			}
		}
	}

	if id == TestMode {
		w.Curtain.FinishLoading()
	} else {
		w.Curtain.FadeIn()
	}

	l.current = id
	l.loaded = true
	l.loads++
	l.logger.Info("scene loaded",
		"scene", id.String(),
		"streetLights", len(w.StreetLights),
		"waypoints", w.Autopilot.Len(),
	)
	l.emit(core.EventSceneLoaded, id.String())
}

func (l *Loader) scenario(id ID, t *Tuning) director.Scenario {
	st := stage{loader: l, tune: t}
	switch id {
	case City:
		return &citySequence{stage: st}
	case Bridge:
		return newBridgeSequence(st)
	case Highway:
		return &highwaySequence{stage: st}
	case Mountain:
		return &mountainSequence{stage: st}
	case Underpass:
		return &underpassSequence{stage: st}
	}
	return nil
}

// Current returns the last scene entered.
func (l *Loader) Current() (ID, bool) {
	return l.current, l.loaded
}

// Loads counts completed scene entries.
func (l *Loader) Loads() int {
	return l.loads
}

// Catalog returns the tuning tables.
func (l *Loader) Catalog() *Catalog {
	return l.catalog
}

func (l *Loader) emit(kind core.EventKind, detail string) {
	if l.onEvent != nil {
		l.onEvent(kind, detail)
	}
}
