// Package engine runs the frame loop. It owns the only goroutine that
// touches simulation state; everything else talks to it through Submit and
// reads what it publishes.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/nightdrive/showcase/internal/director"
	"github.com/nightdrive/showcase/internal/dispatcher"
	"github.com/nightdrive/showcase/internal/integrator"
	"github.com/nightdrive/showcase/internal/queue"
	"github.com/nightdrive/showcase/internal/showcase"
	"github.com/nightdrive/showcase/internal/world"
	"github.com/nightdrive/showcase/pkg/core"
)

// Sink receives every published frame on the loop goroutine. It must not
// block.
type Sink interface {
	PublishFrame(f core.FrameState)
}

// EventSink receives events on the loop goroutine as they happen. It must
// not block.
type EventSink interface {
	PublishEvent(e core.Event)
}

// Config controls loop pacing.
type Config struct {
	TargetFPS     float64
	FixedStepHz   float64
	MaxFrameDelta time.Duration
}

// DefaultConfig runs render and physics at 60 Hz.
func DefaultConfig() Config {
	return Config{
		TargetFPS:     60,
		FixedStepHz:   60,
		MaxFrameDelta: integrator.DefaultMaxFrame,
	}
}

// Parts are the collaborators a frame drives besides the world. Any may
// be nil.
type Parts struct {
	Director   *director.Director
	Showcase   *showcase.AutoShowcase
	Dispatcher *dispatcher.Dispatcher
}

type result struct {
	value any
	err   error
}

type request struct {
	event dispatcher.Event
	reply chan result
}

// Engine is the render-driven loop.
type Engine struct {
	world  *world.Context
	step   *integrator.FixedStep
	logger *slog.Logger

	dir  *director.Director
	show *showcase.AutoShowcase
	disp *dispatcher.Dispatcher

	interval time.Duration
	lastTime time.Duration
	started  bool
	frame    atomic.Uint64

	requests *queue.Queue[request]

	mu     sync.RWMutex
	sinks  []Sink
	events []EventSink

	latest atomic.Pointer[core.FrameState]

	frames    metric.Int64Counter
	ticks     metric.Int64Counter
	clamped   metric.Int64Counter
	waypoints metric.Int64Counter
	rejected  metric.Int64Counter
}

// New creates an engine over w. Collaborators are bound later with
// Attach because they take the engine's Emit and Notify at construction.
// Uses the global OTel meter for metrics (no-op if not configured).
func New(w *world.Context, cfg Config, logger *slog.Logger) (*Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultConfig()
	if cfg.TargetFPS <= 0 {
		cfg.TargetFPS = def.TargetFPS
	}
	if cfg.FixedStepHz <= 0 {
		cfg.FixedStepHz = def.FixedStepHz
	}

	e := &Engine{
		world:    w,
		step:     integrator.New(cfg.FixedStepHz, cfg.MaxFrameDelta),
		logger:   logger,
		interval: time.Duration(float64(time.Second) / cfg.TargetFPS),
		requests: queue.New[request](),
	}

	m := meter()
	var err error
	if e.frames, err = m.Int64Counter("engine.frames",
		metric.WithDescription("Render frames run"),
	); err != nil {
		return nil, fmt.Errorf("failed to create frames counter: %w", err)
	}
	if e.ticks, err = m.Int64Counter("engine.physics.ticks",
		metric.WithDescription("Fixed physics ticks run"),
	); err != nil {
		return nil, fmt.Errorf("failed to create ticks counter: %w", err)
	}
	if e.clamped, err = m.Int64Counter("engine.frames.clamped",
		metric.WithDescription("Frames whose delta hit the integrator cap"),
	); err != nil {
		return nil, fmt.Errorf("failed to create clamped counter: %w", err)
	}
	if e.waypoints, err = m.Int64Counter("autopilot.waypoints.triggered",
		metric.WithDescription("Autopilot waypoints reached"),
	); err != nil {
		return nil, fmt.Errorf("failed to create waypoint counter: %w", err)
	}
	if e.rejected, err = m.Int64Counter("engine.commands.rejected",
		metric.WithDescription("Queued commands whose handler failed"),
	); err != nil {
		return nil, fmt.Errorf("failed to create rejected counter: %w", err)
	}

	w.Autopilot.OnTrigger(func(index int, wp core.Waypoint) {
		e.waypoints.Add(context.Background(), 1)
		name := wp.Name
		if name == "" {
			name = fmt.Sprintf("#%d", index)
		}
		e.Emit(core.EventWaypoint, name)
	})
	w.Vehicle.OnCrash(func(speed float64) {
		e.logger.Debug("car hit a wall", "speed", speed)
		e.Emit(core.EventCrash, fmt.Sprintf("%.3f", speed))
	})

	return e, nil
}

// Attach binds the collaborators a frame drives.
func (e *Engine) Attach(p Parts) {
	e.dir = p.Director
	e.show = p.Showcase
	e.disp = p.Dispatcher
}

// Subscribe adds a frame sink.
func (e *Engine) Subscribe(s Sink) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sinks = append(e.sinks, s)
}

// SubscribeEvents adds an event sink.
func (e *Engine) SubscribeEvents(s EventSink) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, s)
}

// Interval is the minimum time between frames.
func (e *Engine) Interval() time.Duration {
	return e.interval
}

// Submit queues a command for the next frame. It fails straight away for
// commands nobody handles.
func (e *Engine) Submit(ev dispatcher.Event) error {
	if err := e.check(ev); err != nil {
		return err
	}
	e.requests.Push(request{event: stamp(ev)})
	return nil
}

// Call queues a command and waits for the loop to run it.
func (e *Engine) Call(ctx context.Context, ev dispatcher.Event) (any, error) {
	if err := e.check(ev); err != nil {
		return nil, err
	}
	reply := make(chan result, 1)
	e.requests.Push(request{event: stamp(ev), reply: reply})
	select {
	case r := <-reply:
		return r.value, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (e *Engine) check(ev dispatcher.Event) error {
	if e.disp == nil || !e.disp.HasHandler(ev.Command) {
		return fmt.Errorf("%w: %s", dispatcher.ErrUnknownCommand, ev.Command)
	}
	return nil
}

func stamp(ev dispatcher.Event) dispatcher.Event {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	return ev
}

// Pending is the number of commands waiting for the next frame.
func (e *Engine) Pending() int {
	return e.requests.Len()
}

// Snapshot returns the latest published frame. ok is false before the
// first frame.
func (e *Engine) Snapshot() (core.FrameState, bool) {
	f := e.latest.Load()
	if f == nil {
		return core.FrameState{}, false
	}
	return *f, true
}

// Frame runs one render frame at host time now, unless less than one
// interval has passed since the last. The first call only starts the
// clock. Leftover time past a whole interval is kept so the average rate
// holds at the target. It reports whether a frame ran.
func (e *Engine) Frame(now time.Duration) bool {
	if !e.started {
		e.started = true
		e.lastTime = now
		return false
	}
	delta := now - e.lastTime
	if delta < e.interval {
		return false
	}
	e.lastTime = now - delta%e.interval
	dt := delta.Seconds()
	ctx := context.Background()

	e.drain()

	w := e.world
	clampedBefore := e.step.Clamped()
	ticks := e.step.Advance(delta, func(step float64) {
		w.Step(step)
	})
	e.ticks.Add(ctx, int64(ticks))
	if e.step.Clamped() != clampedBefore {
		e.clamped.Add(ctx, 1)
	}
	w.Vehicle.SmoothVisual(dt)

	switch {
	case e.dir != nil && e.dir.Active():
		e.dir.Update(dt)
	case w.Vehicle.Settings.FollowCamera:
		w.Rig.Follow(dt, w.Vehicle.State)
	default:
		w.Orbit.Update(w.Camera)
	}

	if e.show != nil {
		e.show.Update(dt)
	}
	w.Lighting.FollowSun(w.Vehicle.Position())
	w.Curtain.Update()

	e.publish(dt, ticks)
	e.frames.Add(ctx, 1)
	return true
}

// drain runs every queued command on the loop goroutine, in order.
func (e *Engine) drain() {
	for _, req := range e.requests.Drain() {
		value, err := e.disp.Dispatch(req.event)
		if err != nil {
			e.rejected.Add(context.Background(), 1,
				metric.WithAttributes(attribute.String("command", req.event.Command)))
			e.logger.Warn("command rejected", "command", req.event.Command, "error", err)
		}
		if req.reply != nil {
			req.reply <- result{value: value, err: err}
		}
	}
}

func (e *Engine) publish(dt float64, ticks int) {
	w := e.world
	f := core.FrameState{
		Frame:     e.frame.Add(1),
		Time:      time.Now().UTC(),
		TotalTime: w.Now(),
		Delta:     dt,
		Ticks:     ticks,
		Scene:     w.Scene(),
		Vehicle:   w.Vehicle.State,
		Rig:       w.Vehicle.Rig,
		Settings:  w.Vehicle.Settings,
		Camera:    w.Camera.Pose(),
		Lighting:  w.Lighting.Config,
		Curtain:   w.Curtain.Opacity(),
	}
	if f.Lighting.Fog != nil {
		fog := *f.Lighting.Fog
		f.Lighting.Fog = &fog
	}
	if e.dir != nil {
		f.Director = e.dir.Status()
	}
	if e.show != nil {
		f.Showcase = e.show.Status()
	}
	e.latest.Store(&f)

	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, s := range e.sinks {
		s.PublishFrame(f)
	}
}

// Emit stamps an event with the loop position and hands it to the event
// sinks. Collaborators call it from the loop goroutine.
func (e *Engine) Emit(kind core.EventKind, detail string) {
	ev := core.Event{
		Kind:      kind,
		Frame:     e.frame.Load(),
		Time:      time.Now().UTC(),
		TotalTime: e.world.Now(),
		Scene:     e.world.Scene(),
		Detail:    detail,
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, s := range e.events {
		s.PublishEvent(ev)
	}
}

// Notify shows msg to whoever is watching.
func (e *Engine) Notify(msg string) {
	e.logger.Info("notice", "message", msg)
	e.Emit(core.EventNotice, msg)
}

// Run drives Frame from the world clock until ctx is done. It polls at
// twice the target rate so throttling, not the ticker, decides when a
// frame runs.
func (e *Engine) Run(ctx context.Context) error {
	ticker := time.NewTicker(e.interval / 2)
	defer ticker.Stop()

	e.logger.Info("frame loop started", "interval", e.interval, "step", e.step.Step)
	e.Frame(e.world.Clock.Elapsed())
	for {
		select {
		case <-ctx.Done():
			e.logger.Info("frame loop stopped", "frames", e.frame.Load(), "ticks", e.step.Ticks())
			e.fail(ctx.Err())
			return nil
		case <-ticker.C:
			e.Frame(e.world.Clock.Elapsed())
		}
	}
}

// fail answers callers still waiting on commands the loop will never run.
func (e *Engine) fail(err error) {
	for _, req := range e.requests.Drain() {
		if req.reply != nil {
			req.reply <- result{err: err}
		}
	}
}

// LogAttrs describes the loop position for log records. It reads only
// published state so any goroutine may call it.
func (e *Engine) LogAttrs() []slog.Attr {
	attrs := []slog.Attr{
		slog.String("scene", e.world.Scene()),
		slog.Uint64("frame", e.frame.Load()),
	}
	if f := e.latest.Load(); f != nil {
		attrs = append(attrs, slog.String("director", string(f.Director.State)))
		if f.Director.CurrentCut != "" {
			attrs = append(attrs, slog.String("cut", f.Director.CurrentCut))
		}
	}
	return attrs
}
