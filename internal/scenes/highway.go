package scenes

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/nightdrive/showcase/internal/mathx"
)

// highwaySequence: a rising chase shot, a high side angle through the
// curves, then a crane down to the car as it stops under the lights.
type highwaySequence struct {
	stage

	stopped bool
}

func (s *highwaySequence) Update(dt, t, _ float64) {
	if s.leave(t) {
		return
	}
	v := s.car()
	ap := s.pilot()

	switch {
	case t < 1:
		v.Hold(true)
		ap.Halt()
	case t >= 8:
		if !s.stopped {
			s.stopped = true
			v.Settings.AutoDrive = false
			v.Hold(true)
			ap.Halt()
		}
	default:
		if v.Held() {
			v.Hold(false)
			ap.Resume()
		}
		v.Settings.AutoDrive = true
	}

	var off, look mgl64.Vec3
	switch {
	case t < 3:
		p := mathx.Smoothstep(t/3, 0, 1)
		off = mathx.LerpVec3(mgl64.Vec3{0, 2, -5}, mgl64.Vec3{0, 6, -12}, p)
		look = mgl64.Vec3{0, 0.5, 5}
	case t < 6:
		off = mgl64.Vec3{12, 12, -2}
		look = mgl64.Vec3{0, 0, 4}
	default:
		p := mathx.Smoothstep(mathx.Clamp((t-6)/4, 0, 1), 0, 1)
		off = mathx.LerpVec3(mgl64.Vec3{0, 15, -10}, mgl64.Vec3{5, 2, -5}, p)
		look = mathx.LerpVec3(mgl64.Vec3{0, 0, 10}, mgl64.Vec3{0, 0.5, 0}, p)
	}
	s.glide(v.ToWorld(off), v.ToWorld(look), 0.08, dt)
}
