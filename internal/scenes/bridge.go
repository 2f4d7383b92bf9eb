package scenes

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/nightdrive/showcase/internal/mathx"
)

// Bridge navigation markers. The car starts its long right-hander near
// the first, straightens out near the second and brakes at the third.
var (
	bridgeTurnStart = mgl64.Vec3{-25.26, 10.85, -73.21}
	bridgeTurnEnd   = mgl64.Vec3{185.24, 13.55, -90.06}
	bridgeFinish    = mgl64.Vec3{526.59, 5.9, -6.97}

	bridgeOrbitAnchor = mgl64.Vec3{-2, 0.8, -1.8}
)

const (
	bridgeTurnRadius   = 15.0
	bridgeFinishRadius = 10.0
	bridgeTurnSteering = 0.12
	bridgeTurnRate     = 0.0022
)

// bridgeSequence: a close push past the front wheel while the engine
// revs, a wide arc over the car as it crosses and a slow pull back.
type bridgeSequence struct {
	stage

	turning  bool
	turned   bool
	finished bool
}

func newBridgeSequence(st stage) *bridgeSequence {
	s := &bridgeSequence{stage: st}
	cam := s.cam()
	cam.Position = s.model(mgl64.Vec3{2, 1.2, -4.5})
	cam.Target = s.car().Position()
	cam.LookAt()
	return s
}

func (s *bridgeSequence) Update(dt, t, _ float64) {
	if s.leave(t) {
		return
	}
	v := s.car()
	ap := s.pilot()
	pos := v.Position()

	if !s.turning && !s.turned && pos.Sub(bridgeTurnStart).Len() < bridgeTurnRadius {
		s.turning = true
	}
	if s.turning && pos.Sub(bridgeTurnEnd).Len() < bridgeTurnRadius {
		s.turning = false
		s.turned = true
	}
	if !s.finished && pos.Sub(bridgeFinish).Len() < bridgeFinishRadius {
		s.finished = true
	}

	switch {
	case t < 1.5:
		v.Hold(true)
		v.Rev(t * 15 * dt)
	case s.finished:
		v.Hold(false)
		v.Settings.AutoDrive = false
		v.Brake(0.8)
		ap.Release()
	default:
		v.Hold(false)
		v.Settings.AutoDrive = true
		if s.turning {
			ap.Impulse(bridgeTurnSteering, bridgeTurnRate)
		} else {
			ap.Release()
		}
	}

	var rel, look mgl64.Vec3
	stiffness := 0.2
	switch {
	case t < 3.5:
		p := mathx.Smoothstep(t/3.5, 0, 1)
		rel = mathx.LerpVec3(mgl64.Vec3{-1.3, 0.4, -1.1}, bridgeOrbitAnchor, p)
		look = pos.Add(mathx.LerpVec3(mgl64.Vec3{-0.9, 0.4, -1.5}, mgl64.Vec3{0, 0.6, 0}, p))
	case t < 11.5:
		p := mathx.Smoothstep((t-3.5)/10, 0, 1)
		angle := mathx.Lerp(-2.6, 1.5, p)
		radius := 3 + math.Sin(p*math.Pi)*3
		rel = mathx.PolarOrbit(angle, radius, 1).Add(mgl64.Vec3{0, 0, p * 6})
		look = pos.Add(mgl64.Vec3{0, 0.7, 0})
	default:
		p := mathx.Smoothstep(math.Min((t-11.5)/6, 1), 0, 1)
		rel = mathx.LerpVec3(mgl64.Vec3{2.97, 1, 6.21}, mgl64.Vec3{1.5, 0.4, -6}, p)
		look = pos.Add(mathx.LerpVec3(mgl64.Vec3{0, 0.7, 0}, mgl64.Vec3{0, 0.5, -2}, p))
		stiffness = 0.05
	}
	s.glide(s.model(rel), look, stiffness, dt)
}
