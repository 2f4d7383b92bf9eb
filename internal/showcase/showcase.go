// Package showcase cycles through the scene playlist on a timer.
package showcase

import (
	"log/slog"

	"github.com/nightdrive/showcase/internal/scenes"
	"github.com/nightdrive/showcase/internal/transition"
	"github.com/nightdrive/showcase/internal/vehicle"
	"github.com/nightdrive/showcase/pkg/core"
)

// DefaultDuration is how long each scene plays, in seconds.
const DefaultDuration = 12.0

// Enterer switches to a scene immediately.
type Enterer interface {
	Enter(id scenes.ID)
}

// AutoShowcase plays every scene except test mode in turn, switching
// behind the curtain.
type AutoShowcase struct {
	DurationPerMap float64

	active   bool
	timer    float64
	index    int
	playlist []scenes.ID

	loader  Enterer
	curtain *transition.Curtain
	car     *vehicle.Vehicle
	logger  *slog.Logger
	onEvent func(kind core.EventKind, detail string)
}

// New creates an idle showcase.
func New(loader Enterer, curtain *transition.Curtain, car *vehicle.Vehicle, logger *slog.Logger) *AutoShowcase {
	if logger == nil {
		logger = slog.Default()
	}
	var playlist []scenes.ID
	for _, id := range scenes.IDs() {
		if id != scenes.TestMode {
			playlist = append(playlist, id)
		}
	}
	return &AutoShowcase{
		DurationPerMap: DefaultDuration,
		playlist:       playlist,
		loader:         loader,
		curtain:        curtain,
		car:            car,
		logger:         logger,
	}
}

// OnEvent sets the event sink.
func (s *AutoShowcase) OnEvent(fn func(kind core.EventKind, detail string)) {
	s.onEvent = fn
}

// Start begins at the first scene. Starting while running does nothing.
func (s *AutoShowcase) Start() {
	if s.active {
		return
	}
	s.active = true
	s.timer = 0
	s.index = 0
	s.logger.Info("auto showcase started")
	s.switchTo()
}

// Stop leaves the current scene playing.
func (s *AutoShowcase) Stop() {
	if !s.active {
		return
	}
	s.active = false
	s.logger.Info("auto showcase stopped")
}

// Next moves to the following scene, wrapping at the end.
func (s *AutoShowcase) Next() {
	s.index++
	if s.index >= len(s.playlist) {
		s.index = 0
	}
	s.switchTo()
}

// Update advances the timer by dt seconds.
func (s *AutoShowcase) Update(dt float64) {
	if !s.active {
		return
	}
	s.timer += dt
	if s.timer > s.DurationPerMap {
		s.timer = 0
		s.Next()
	}
}

func (s *AutoShowcase) switchTo() {
	id := s.playlist[s.index]
	if s.onEvent != nil {
		s.onEvent(core.EventShowcaseNext, id.String())
	}
	s.curtain.Trigger(func() {
		s.logger.Info("showcase switching", "scene", id.String())
		s.loader.Enter(id)
		s.car.Settings.AutoDrive = true
		s.car.Stop()
	})
}

// Active reports whether the showcase is running.
func (s *AutoShowcase) Active() bool { return s.active }

// Current returns the scene the playlist is on.
func (s *AutoShowcase) Current() scenes.ID { return s.playlist[s.index] }

// Playlist returns the scenes in play order.
func (s *AutoShowcase) Playlist() []scenes.ID {
	return append([]scenes.ID(nil), s.playlist...)
}

// Status snapshots the showcase for publishing.
func (s *AutoShowcase) Status() core.ShowcaseStatus {
	st := core.ShowcaseStatus{Active: s.active, Timer: s.timer}
	if s.active {
		st.Scene = s.Current().String()
	}
	return st
}
