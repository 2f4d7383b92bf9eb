// Package handlers turns dispatcher commands into operations on the
// director, the scene loader, the showcase and the car. Every handler runs
// on the frame loop goroutine.
package handlers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/nightdrive/showcase/internal/director"
	"github.com/nightdrive/showcase/internal/dispatcher"
	"github.com/nightdrive/showcase/internal/lighting"
	"github.com/nightdrive/showcase/internal/scenes"
	"github.com/nightdrive/showcase/internal/showcase"
	"github.com/nightdrive/showcase/internal/world"
)

// ErrBadArgs is returned when a command's arguments do not parse.
var ErrBadArgs = errors.New("bad arguments")

// Dependencies holds everything the handlers act on.
type Dependencies struct {
	World    *world.Context
	Director *director.Director
	Loader   *scenes.Loader
	Showcase *showcase.AutoShowcase
	Notifier director.Notifier
}

// Service provides the command handlers.
type Service struct {
	deps Dependencies
}

// NewService creates a handler service.
func NewService(deps Dependencies) *Service {
	return &Service{deps: deps}
}

// RegisterHandlers registers every command with the dispatcher.
func (s *Service) RegisterHandlers(d *dispatcher.Dispatcher) {
	d.Register("director.play", s.handleDirectorPlay, dispatcher.Logged(), dispatcher.Usage("play the armed cinematic"))
	d.Register("director.stop", s.handleDirectorStop, dispatcher.Logged(), dispatcher.Usage("stop the cinematic and hand back manual control"))
	d.Register("director.cut", s.handleDirectorCut, dispatcher.Logged(), dispatcher.Usage("director.cut <name>"))

	d.Register("scene.load", s.handleSceneLoad, dispatcher.Logged(), dispatcher.Usage("scene.load <name|key>"))

	d.Register("car.reset", s.handleCarReset, dispatcher.Logged(), dispatcher.Usage("return the car to the scene spawn"))
	d.Register("car.autodrive", s.handleCarAutoDrive, dispatcher.Logged(), dispatcher.Usage("car.autodrive [on|off]"))
	d.Register("car.follow", s.handleCarFollow, dispatcher.Logged(), dispatcher.Usage("car.follow [on|off]"))
	d.Register("car.set", s.handleCarSet, dispatcher.Logged(), dispatcher.Usage("car.set <maxSpeed|turnSpeed|scale> <value>"))
	d.Register("car.coords", s.handleCarCoords, dispatcher.Usage("report the car position"))

	d.Register("lighting.theme", s.handleLightingTheme, dispatcher.Logged(), dispatcher.Usage("lighting.theme <daylight|sunset|night|foggy|clear>"))

	d.Register("showcase.start", s.handleShowcaseStart, dispatcher.Logged())
	d.Register("showcase.stop", s.handleShowcaseStop, dispatcher.Logged())
	d.Register("showcase.next", s.handleShowcaseNext, dispatcher.Logged())

	// input arrives at key-repeat rate, so it is not logged
	d.Register("input.set", s.handleInputSet, dispatcher.Usage("input.set <forward|back|left|right|w|a|s|d> [on|off]"))
	d.Register("camera.orbit", s.handleCameraOrbit, dispatcher.Usage("camera.orbit <yaw> <pitch> [zoom]"))
	d.Register("camera.pan", s.handleCameraPan, dispatcher.Usage("camera.pan <x> <y> <z>"))
}

func (s *Service) handleDirectorPlay(e dispatcher.Event) (any, error) {
	if err := s.deps.Director.Play(); err != nil {
		return nil, err
	}
	return s.deps.Director.Status(), nil
}

func (s *Service) handleDirectorStop(e dispatcher.Event) (any, error) {
	s.deps.Director.Stop()
	return s.deps.Director.Status(), nil
}

func (s *Service) handleDirectorCut(e dispatcher.Event) (any, error) {
	name := strings.TrimSpace(e.Arg(0))
	if name == "" {
		return nil, fmt.Errorf("%w: director.cut needs a cut name", ErrBadArgs)
	}
	// unknown cuts are ignored by the director, not an error
	applied := s.deps.Director.CutTo(name)
	return map[string]any{"cut": name, "applied": applied}, nil
}

func (s *Service) handleSceneLoad(e dispatcher.Event) (any, error) {
	name := strings.Join(e.Args, " ")
	if s.deps.Showcase != nil {
		s.deps.Showcase.Stop()
	}
	if err := s.deps.Loader.Load(name); err != nil {
		return nil, err
	}
	return map[string]string{"loading": name}, nil
}

func (s *Service) handleCarReset(e dispatcher.Event) (any, error) {
	w := s.deps.World
	w.Vehicle.Reset()
	if id, ok := s.deps.Loader.Current(); ok && s.deps.Loader.Catalog().Get(id).AutoScale {
		w.Vehicle.AutoScale()
	}
	return w.Vehicle.SpawnPoint(), nil
}

func (s *Service) handleCarAutoDrive(e dispatcher.Event) (any, error) {
	on, err := e.Bool(0)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadArgs, err)
	}
	s.deps.World.Vehicle.Settings.AutoDrive = on
	if on {
		s.deps.World.Autopilot.Resume()
	}
	return on, nil
}

func (s *Service) handleCarFollow(e dispatcher.Event) (any, error) {
	on, err := e.Bool(0)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadArgs, err)
	}
	s.deps.World.Vehicle.Settings.FollowCamera = on
	return on, nil
}

// Ranges follow the control panel's sliders.
var carLimits = map[string][2]float64{
	"maxspeed":  {0.1, 3.0},
	"turnspeed": {0.01, 0.1},
	"scale":     {0.1, 20},
}

func (s *Service) handleCarSet(e dispatcher.Event) (any, error) {
	key := strings.ToLower(e.Arg(0))
	limits, ok := carLimits[key]
	if !ok {
		return nil, fmt.Errorf("%w: unknown car setting %q", ErrBadArgs, e.Arg(0))
	}
	v, err := e.Float(1)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadArgs, err)
	}
	if v < limits[0] || v > limits[1] {
		return nil, fmt.Errorf("%w: %s must be within [%g, %g]", ErrBadArgs, key, limits[0], limits[1])
	}

	car := s.deps.World.Vehicle
	switch key {
	case "maxspeed":
		car.Settings.MaxSpeed = v
	case "turnspeed":
		car.Settings.TurnSpeed = v
	case "scale":
		car.SetScale(v)
	}
	return v, nil
}

func (s *Service) handleCarCoords(e dispatcher.Event) (any, error) {
	st := s.deps.World.Vehicle.State
	p := st.Position
	msg := fmt.Sprintf("Car at x: %.2f, y: %.2f, z: %.2f, yaw: %.2f", p.X(), p.Y(), p.Z(), st.PhysicsYaw)
	if s.deps.Notifier != nil {
		s.deps.Notifier.Notify(msg)
	}
	return map[string]float64{"x": p.X(), "y": p.Y(), "z": p.Z(), "yaw": st.PhysicsYaw}, nil
}

func (s *Service) handleLightingTheme(e dispatcher.Event) (any, error) {
	theme, err := lighting.ParseTheme(e.Arg(0))
	if err != nil {
		return nil, err
	}
	s.deps.World.Lighting.Apply(theme)
	return theme.String(), nil
}

func (s *Service) handleShowcaseStart(e dispatcher.Event) (any, error) {
	s.deps.Showcase.Start()
	return s.deps.Showcase.Status(), nil
}

func (s *Service) handleShowcaseStop(e dispatcher.Event) (any, error) {
	s.deps.Showcase.Stop()
	return s.deps.Showcase.Status(), nil
}

func (s *Service) handleShowcaseNext(e dispatcher.Event) (any, error) {
	s.deps.Showcase.Next()
	return s.deps.Showcase.Current().String(), nil
}

func (s *Service) handleInputSet(e dispatcher.Event) (any, error) {
	on, err := e.Bool(1)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadArgs, err)
	}
	c := &s.deps.World.Vehicle.Controls
	switch strings.ToLower(e.Arg(0)) {
	case "forward", "w":
		c.Forward = on
	case "back", "s":
		c.Back = on
	case "left", "a":
		c.Left = on
	case "right", "d":
		c.Right = on
	default:
		return nil, fmt.Errorf("%w: unknown input %q", ErrBadArgs, e.Arg(0))
	}
	return *c, nil
}

func (s *Service) handleCameraOrbit(e dispatcher.Event) (any, error) {
	yaw, err := e.Float(0)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadArgs, err)
	}
	pitch, err := e.Float(1)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadArgs, err)
	}
	orbit := s.deps.World.Orbit
	orbit.Rotate(yaw, pitch)
	if len(e.Args) > 2 {
		zoom, err := e.Float(2)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadArgs, err)
		}
		orbit.Zoom(zoom)
	}
	return nil, nil
}

func (s *Service) handleCameraPan(e dispatcher.Event) (any, error) {
	var v mgl64.Vec3
	for i := range v {
		f, err := e.Float(i)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadArgs, err)
		}
		v[i] = f
	}
	s.deps.World.Orbit.Pan(v)
	return nil, nil
}
