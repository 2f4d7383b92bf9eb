package camera

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/nightdrive/showcase/internal/collision"
	"github.com/nightdrive/showcase/internal/mathx"
	"github.com/nightdrive/showcase/pkg/core"
)

// Rig is the follow camera. It sits behind and above the car, pulls in
// when geometry blocks the line of sight and eases toward its goal.
type Rig struct {
	Camera   *Camera
	Config   *core.CameraConfig
	Collider collision.Caster
}

// NewRig creates a follow rig driving cam.
func NewRig(cam *Camera, cfg *core.CameraConfig) *Rig {
	return &Rig{Camera: cam, Config: cfg}
}

// Goal returns where the camera wants to be for the car's current pose,
// after collision pull-in.
func (r *Rig) Goal(car core.VehicleState) mgl64.Vec3 {
	cfg := r.Config
	local := mgl64.Vec3{0, cfg.Height, -cfg.Distance}
	goal := mathx.ToWorld(car.Position, car.VisualYaw, car.Scale, local)

	if !cfg.CollisionEnabled || r.Collider == nil {
		return goal
	}

	origin := car.Position.Add(mgl64.Vec3{0, cfg.CollisionRayHeight, 0})
	toGoal := goal.Sub(origin)
	dist := toGoal.Len()
	if dist == 0 {
		return goal
	}
	dir := toGoal.Mul(1 / dist)
	if hit, ok := r.Collider.CastRay(origin, dir); ok && hit.Distance < dist {
		return hit.Point.Sub(dir.Mul(cfg.CollisionOffset))
	}
	return goal
}

// Follow moves the camera one render frame of dt seconds toward its goal
// and aims it at the car.
func (r *Rig) Follow(dt float64, car core.VehicleState) {
	cfg := r.Config
	cam := r.Camera

	cam.Position = mathx.ExpSmooth(cam.Position, r.Goal(car), mathx.Damp(cfg.Damping, dt))
	cam.Target = car.Position.Add(mgl64.Vec3{0, cfg.LookAtY, 0})
	cam.Up = mathx.Up
	cam.FOV = cfg.FOV
	cam.LookAt()
}
