package scenes

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/nightdrive/showcase/internal/director"
)

// underpassSequence cuts to a low start position and trucks the camera
// along as the oversized car passes under the bridge.
type underpassSequence struct {
	stage
}

func (s *underpassSequence) Update(dt, timeInShot, _ float64) {
	if s.leave(timeInShot) {
		return
	}
	dir := s.loader.dir
	v := s.car()
	cam := s.cam()

	if dir.CurrentCut() == "" {
		dir.CutTo(director.CutUnderpassStart)
		v.Settings.AutoDrive = true
		v.Settings.MaxSpeed = 30
	}
	if dir.CurrentCut() != director.CutUnderpassStart {
		return
	}

	if timeInShot < 4.5 {
		cam.Position[2] += 40 * dt
		cam.Target = v.Position().Add(mgl64.Vec3{-30, 0, -10 + timeInShot*10})
	}
	if timeInShot > 3.5 {
		v.Stop()
		v.Settings.AutoDrive = false
		v.Settings.MaxSpeed = 0
	}
}
