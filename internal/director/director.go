// Package director runs scripted camera sequences. A scenario is armed with
// LoadScenario, started with Play and then called once per render frame
// with the time since the last cut and the loop clock.
package director

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-gl/mathgl/mgl64"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/nightdrive/showcase/internal/mathx"
	"github.com/nightdrive/showcase/internal/world"
	"github.com/nightdrive/showcase/pkg/core"
)

// ErrNoScenario is reported when Play is called with nothing armed.
var ErrNoScenario = errors.New("no cinematic scenario for this map")

// Scenario is a per-scene script. timeInShot restarts at every cut;
// totalTime is the loop clock.
type Scenario interface {
	Update(dt, timeInShot, totalTime float64)
}

// ScenarioFunc adapts a plain function to Scenario.
type ScenarioFunc func(dt, timeInShot, totalTime float64)

// Update calls f.
func (f ScenarioFunc) Update(dt, timeInShot, totalTime float64) {
	f(dt, timeInShot, totalTime)
}

// Notifier shows a message to the person at the controls.
type Notifier interface {
	Notify(msg string)
}

// EventFunc receives director events.
type EventFunc func(kind core.EventKind, detail string)

// Option configures a Director.
type Option func(*Director)

// WithCuts replaces the cut table.
func WithCuts(cuts CutTable) Option {
	return func(d *Director) {
		d.cuts = cuts
	}
}

// WithNotifier sets where user-facing errors go.
func WithNotifier(n Notifier) Option {
	return func(d *Director) {
		d.notifier = n
	}
}

// WithEvents sets the event sink.
func WithEvents(fn EventFunc) Option {
	return func(d *Director) {
		d.onEvent = fn
	}
}

// DevMode makes unknown cut names log at warn level.
func DevMode(on bool) Option {
	return func(d *Director) {
		d.devMode = on
	}
}

// Director is the cinematic state machine: Idle, Armed or Running.
type Director struct {
	world    *world.Context
	cuts     CutTable
	logger   *slog.Logger
	notifier Notifier
	onEvent  EventFunc
	devMode  bool

	active     bool
	currentCut string
	startTime  float64
	scenario   Scenario
	pending    Scenario

	cutCount    metric.Int64Counter
	missedCount metric.Int64Counter
}

// New creates an idle director bound to w.
// Uses the global OTel meter for metrics (no-op if not configured).
func New(w *world.Context, logger *slog.Logger, opts ...Option) (*Director, error) {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Director{
		world:  w,
		cuts:   DefaultCuts(),
		logger: logger,
	}
	for _, opt := range opts {
		opt(d)
	}

	var err error
	m := meter()
	d.cutCount, err = m.Int64Counter("director.cuts",
		metric.WithDescription("Camera cuts applied"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create cuts counter: %w", err)
	}
	d.missedCount, err = m.Int64Counter("director.cuts.missed",
		metric.WithDescription("Cut requests with no matching preset"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create missed cuts counter: %w", err)
	}
	return d, nil
}

// LoadScenario stops whatever is running and arms s.
func (d *Director) LoadScenario(s Scenario) {
	d.Stop()
	d.pending = s
	d.logger.Debug("scenario armed")
}

// Play starts the armed scenario. Without one it notifies the user,
// returns ErrNoScenario and leaves the state untouched.
func (d *Director) Play() error {
	if d.pending == nil {
		if d.notifier != nil {
			d.notifier.Notify(ErrNoScenario.Error())
		}
		d.logger.Info("play ignored", "error", ErrNoScenario)
		return ErrNoScenario
	}

	d.active = true
	d.startTime = d.world.Now()
	d.world.Orbit.Enabled = false
	d.world.Vehicle.Settings.FollowCamera = false
	d.world.Autopilot.Resume()
	d.scenario = d.pending
	d.currentCut = ""
	d.logger.Info("scenario started")
	d.emit(core.EventPlay, "")
	return nil
}

// CutTo snaps the camera to the named preset and restarts the shot clock.
// Unknown names are ignored and report false.
func (d *Director) CutTo(name string) bool {
	cut, ok := d.cuts[name]
	if !ok {
		d.missedCount.Add(context.Background(), 1, metric.WithAttributes(attribute.String("cut", name)))
		if d.devMode {
			d.logger.Warn("unknown camera cut", "cut", name)
		} else {
			d.logger.Debug("unknown camera cut", "cut", name)
		}
		d.emit(core.EventCutMissed, name)
		return false
	}

	d.currentCut = name
	d.startTime = d.world.Now()

	cam := d.world.Camera
	cam.Position = cut.Position
	cam.Target = cut.Target
	if cut.Up == (mgl64.Vec3{}) {
		cam.Up = mathx.Up
	} else {
		cam.Up = cut.Up
	}
	cam.LookAt()

	d.cutCount.Add(context.Background(), 1, metric.WithAttributes(attribute.String("cut", name)))
	d.emit(core.EventCut, name)
	return true
}

// Stop hands control back to the user: holds, brakes and autopilot
// impulses a scenario left on the car are dropped and waypoint checks stop
// until the next Play. The armed scenario stays armed so Play can restart
// it. Calling Stop twice leaves the same state as calling it once.
func (d *Director) Stop() {
	wasActive := d.active

	d.active = false
	d.scenario = nil
	d.currentCut = ""

	d.world.Orbit.Enabled = true
	d.world.Camera.Up = mathx.Up
	d.world.Vehicle.Settings.FollowCamera = true
	d.world.Vehicle.Settings.AutoDrive = false
	d.world.Vehicle.Hold(false)
	d.world.Vehicle.Brake(0)
	d.world.Autopilot.Halt()

	if wasActive {
		d.logger.Info("scenario stopped")
		d.emit(core.EventStop, "")
	}
}

// Reset stops and disarms. Called on every scene change.
func (d *Director) Reset() {
	d.Stop()
	d.pending = nil
}

// Update runs one frame of the scenario, then aims the camera at whatever
// target the scenario left.
func (d *Director) Update(dt float64) {
	if !d.active || d.scenario == nil {
		return
	}
	now := d.world.Now()
	d.scenario.Update(dt, now-d.startTime, now)

	// The scenario may have stopped or replaced itself.
	if d.active {
		d.world.Camera.LookAt()
	}
}

// Active reports whether a scenario is running.
func (d *Director) Active() bool { return d.active }

// CurrentCut returns the last cut applied since Play, or "".
func (d *Director) CurrentCut() string { return d.currentCut }

// TimeInShot is the time since Play or the last cut. Zero while idle.
func (d *Director) TimeInShot() float64 {
	if !d.active {
		return 0
	}
	return d.world.Now() - d.startTime
}

// Armed reports whether a scenario is loaded.
func (d *Director) Armed() bool { return d.pending != nil }

// Running reports whether the running scenario is present. It always
// equals Active.
func (d *Director) Running() bool { return d.scenario != nil }

// State returns the state machine position.
func (d *Director) State() core.DirectorState {
	switch {
	case d.active:
		return core.DirectorRunning
	case d.pending != nil:
		return core.DirectorArmed
	default:
		return core.DirectorIdle
	}
}

// Status snapshots the director for publishing.
func (d *Director) Status() core.DirectorStatus {
	return core.DirectorStatus{
		State:      d.State(),
		CurrentCut: d.currentCut,
		TimeInShot: d.TimeInShot(),
	}
}

func (d *Director) emit(kind core.EventKind, detail string) {
	if d.onEvent != nil {
		d.onEvent(kind, detail)
	}
}
