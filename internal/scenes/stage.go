package scenes

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/nightdrive/showcase/internal/autopilot"
	"github.com/nightdrive/showcase/internal/camera"
	"github.com/nightdrive/showcase/internal/mathx"
	"github.com/nightdrive/showcase/internal/vehicle"
	"github.com/nightdrive/showcase/pkg/core"
)

// stage is what every scene script shares: access to the world and the
// hand-off to the next scene.
type stage struct {
	loader  *Loader
	tune    *Tuning
	leaving bool
}

func (s *stage) car() *vehicle.Vehicle       { return s.loader.world.Vehicle }
func (s *stage) cam() *camera.Camera         { return s.loader.world.Camera }
func (s *stage) pilot() *autopilot.Autopilot { return s.loader.world.Autopilot }

// model maps an offset in the car's scaled model frame to world space.
func (s *stage) model(local mgl64.Vec3) mgl64.Vec3 {
	st := s.car().State
	return mathx.ToWorld(st.Position, st.VisualYaw, st.Scale, local)
}

// glide moves the camera and its target toward pos and look, smoothing
// by a 60 fps factor.
func (s *stage) glide(pos, look mgl64.Vec3, factor, dt float64) {
	cam := s.cam()
	a := mathx.Damp(factor, dt)
	cam.Position = mathx.ExpSmooth(cam.Position, pos, a)
	cam.Target = mathx.ExpSmooth(cam.Target, look, a)
}

// leave fades to the next scene once t passes the switch time and
// reports whether the scene is done. A successor that does not load ends
// the scenario where it stands.
func (s *stage) leave(t float64) bool {
	if s.leaving {
		return true
	}
	if s.tune.Next == "" || t <= s.tune.SwitchAt {
		return false
	}
	if _, err := ParseID(s.tune.Next); err != nil {
		s.loader.logger.Error("scene has no valid successor", "scene", s.tune.Key, "next", s.tune.Next, "error", err)
		s.loader.dir.Stop()
		return true
	}
	s.leaving = true
	s.loader.logger.Info("scene finished", "scene", s.tune.Key, "next", s.tune.Next)
	s.loader.emit(core.EventSceneSwitch, s.tune.Next)
	if err := s.loader.Load(s.tune.Next); err != nil {
		s.leaving = false
		s.loader.dir.Stop()
	}
	return true
}
