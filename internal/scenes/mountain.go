package scenes

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/nightdrive/showcase/internal/mathx"
)

// mountainSequence frames a model-scale car on a model-scale pass: a
// tight orbit, a bonnet cam that leans into the bends with a side shot
// in the middle, and a slow rise at the end.
type mountainSequence struct {
	stage
}

func (s *mountainSequence) Update(dt, t, _ float64) {
	if s.leave(t) {
		return
	}
	v := s.car()
	ap := s.pilot()
	cam := s.cam()

	if t < 4 {
		v.Hold(true)
		ap.Halt()
	} else {
		if v.Held() {
			v.Hold(false)
			ap.Resume()
		}
		v.Settings.AutoDrive = true
	}

	pos := v.Position()
	switch {
	case t < 4:
		a := t * 0.5
		const r = 0.15
		cam.Position = pos.Add(mgl64.Vec3{math.Cos(a) * r, 0.03 + t*0.005, math.Sin(a) * r})
		cam.Target = pos
	case t < 25:
		off := mgl64.Vec3{0, 0.03, -0.08}
		look := mgl64.Vec3{0, 0, 0.5}
		smooth := 0.1
		side := t > 12 && t < 19
		if side {
			off = mgl64.Vec3{0.1, 0.02, 0.15}
			look = mgl64.Vec3{}
			smooth = 0.2
		} else if ap.RotationRate() != 0 {
			look[0] = v.State.Steering * 0.4
		}
		s.glide(v.ToWorld(off), v.ToWorld(look), smooth, dt)
	default:
		cam.Position = mathx.ExpSmooth(cam.Position, v.ToWorld(mgl64.Vec3{0, 0.15, -0.2}), mathx.Damp(0.05, dt))
		cam.Target = pos
	}
}
