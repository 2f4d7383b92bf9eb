package vehicle

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/nightdrive/showcase/internal/scenegraph"
	"github.com/nightdrive/showcase/pkg/core"
)

// PartNames are the model node names of the animated parts.
type PartNames struct {
	FrontLeftWheel  string `json:"frontLeftWheel" mapstructure:"frontLeftWheel"`
	FrontLeftBrake  string `json:"frontLeftBrake" mapstructure:"frontLeftBrake"`
	FrontRightWheel string `json:"frontRightWheel" mapstructure:"frontRightWheel"`
	FrontRightBrake string `json:"frontRightBrake" mapstructure:"frontRightBrake"`
	RearLeftWheel   string `json:"rearLeftWheel" mapstructure:"rearLeftWheel"`
	RearRightWheel  string `json:"rearRightWheel" mapstructure:"rearRightWheel"`
}

// DefaultPartNames matches the nodes in DefaultModel.
func DefaultPartNames() PartNames {
	return PartNames{
		FrontLeftWheel:  "wheel_front_left",
		FrontLeftBrake:  "brake_front_left",
		FrontRightWheel: "wheel_front_right",
		FrontRightBrake: "brake_front_right",
		RearLeftWheel:   "wheel_rear_left",
		RearRightWheel:  "wheel_rear_right",
	}
}

// AttachParts resolves the named parts on the car model. A front wheel
// becomes a steering pivot only when both it and its brake are found. Any
// missing part is logged and its animation skipped.
func (v *Vehicle) AttachParts(model *scenegraph.Graph, names PartNames) core.CarRig {
	var rig core.CarRig

	front := []struct{ wheel, brake string }{
		{names.FrontLeftWheel, names.FrontLeftBrake},
		{names.FrontRightWheel, names.FrontRightBrake},
	}
	for _, f := range front {
		wheel, brake := model.Find(f.wheel), model.Find(f.brake)
		if wheel == nil || brake == nil {
			v.logger.Warn("car part not found, steering pivot skipped", "wheel", f.wheel, "brake", f.brake)
			continue
		}
		wp := wheel.WorldPosition()
		rig.Pivots = append(rig.Pivots, core.SteerPivot{
			Wheel:       f.wheel,
			Brake:       f.brake,
			Position:    wp,
			BrakeOffset: brake.WorldPosition().Sub(wp),
		})
		rig.Wheels = append(rig.Wheels, f.wheel)
	}

	for _, name := range []string{names.RearLeftWheel, names.RearRightWheel} {
		if model.Find(name) == nil {
			v.logger.Warn("car part not found, wheel spin skipped", "wheel", name)
			continue
		}
		rig.Wheels = append(rig.Wheels, name)
	}

	v.Rig = rig
	return rig
}

// DefaultModel builds the part layout of the stock car: a body with four
// wheels and calipers sitting just inboard of the front wheels.
func DefaultModel() *scenegraph.Graph {
	wheel := func(name string, x, z float64) *scenegraph.Node {
		return scenegraph.NewMesh(name, mgl64.Vec3{x, 0.35, z}, scenegraph.AABB{
			Min: mgl64.Vec3{-0.12, -0.35, -0.35},
			Max: mgl64.Vec3{0.12, 0.35, 0.35},
		})
	}
	caliper := func(name string, x, z float64) *scenegraph.Node {
		return scenegraph.NewMesh(name, mgl64.Vec3{x, 0.4, z}, scenegraph.AABB{
			Min: mgl64.Vec3{-0.03, -0.1, -0.08},
			Max: mgl64.Vec3{0.03, 0.1, 0.08},
		})
	}
	body := scenegraph.NewMesh("body", mgl64.Vec3{0, 0.7, 0}, scenegraph.AABB{
		Min: mgl64.Vec3{-0.95, -0.4, -2.3},
		Max: mgl64.Vec3{0.95, 0.55, 2.3},
	})
	return scenegraph.New(scenegraph.NewGroup("car",
		body,
		wheel("wheel_front_left", 0.8, 1.4),
		caliper("brake_front_left", 0.68, 1.32),
		wheel("wheel_front_right", -0.8, 1.4),
		caliper("brake_front_right", -0.68, 1.32),
		wheel("wheel_rear_left", 0.8, -1.35),
		wheel("wheel_rear_right", -0.8, -1.35),
		scenegraph.NewLight("headlight_left", mgl64.Vec3{0.8, 0.8, 2.2}),
		scenegraph.NewLight("headlight_right", mgl64.Vec3{-0.8, 0.8, 2.2}),
		scenegraph.NewLight("taillight_left", mgl64.Vec3{0.7, 0.9, -2.4}),
		scenegraph.NewLight("taillight_right", mgl64.Vec3{-0.7, 0.9, -2.4}),
	))
}
