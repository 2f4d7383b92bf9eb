package scenes

import (
	"math"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/nightdrive/showcase/internal/mathx"
)

// citySequence: a slow orbit around the parked car, a tracking shot as it
// pulls away and turns, a sweep out to the side, then a fixed spot the
// camera drifts to while the car drives off.
type citySequence struct {
	stage

	safeSpot    mgl64.Vec3
	hasSafeSpot bool
}

func (s *citySequence) Update(dt, t, _ float64) {
	if s.leave(t) {
		return
	}
	v := s.car()
	cam := s.cam()

	switch {
	case t > 3 && t < 16:
		if !v.Settings.AutoDrive {
			v.Settings.AutoDrive = true
			v.SetLights(true)
		}
	case t >= 16:
		v.Settings.AutoDrive = false
		v.Brake(0.9)
	}

	switch {
	case t > 3.5 && t < 4:
		p := mathx.Smoothstep(t, 3.5, 4)
		s.pilot().Impulse(-0.5*p, 0.023*p)
	case t >= 4:
		s.pilot().Release()
	}

	pos := v.Position()
	switch {
	case t < 3:
		cam.Position = pos.Add(mathx.PolarOrbit(t*0.2, 5.5, 1.5))
		cam.Target = pos
	case t < 8:
		rel := s.model(mgl64.Vec3{2.5, 0.5, 1.5})
		// handheld shake
		rel[1] += rand.Float64() * 0.01
		s.glide(rel, pos.Add(v.Forward().Mul(5)), 0.1, dt)
	case t < 12:
		p := mathx.Smoothstep((t-8)/4, 0, 1)
		r := mathx.Lerp(3, 8.5, p)
		a := mathx.Lerp(math.Pi/2, 0.05, p)
		rel := s.model(mathx.PolarOrbit(a, r, mathx.Lerp(0.5, 0.6, p)))
		cam.Position = mathx.ExpSmooth(cam.Position, rel, mathx.Damp(0.1, dt))
		cam.Target = mathx.ExpSmooth(cam.Target, pos, mathx.Damp(0.3, dt))
	default:
		if !s.hasSafeSpot {
			s.safeSpot = cam.Position.Add(cam.Right().Mul(7))
			s.safeSpot[1] = 2
			s.hasSafeSpot = true
		}
		cam.Position = mathx.ExpSmooth(cam.Position, s.safeSpot, mathx.Damp(0.08, dt))
		cam.Target = mathx.ExpSmooth(cam.Target, pos, mathx.Damp(0.1, dt))
	}
}
