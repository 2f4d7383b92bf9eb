// pkg/core/vehicle.go
package core

import "github.com/go-gl/mathgl/mgl64"

// VehicleState is the physics state of the controllable car.
// PhysicsYaw advances in fixed ticks; VisualYaw trails it for rendering.
type VehicleState struct {
	Position       mgl64.Vec3 `json:"position"`
	PhysicsYaw     float64    `json:"physicsYaw"`
	VisualYaw      float64    `json:"visualYaw"`
	Speed          float64    `json:"speed"` // units per tick
	Steering       float64    `json:"steering"`
	SteeringTarget float64    `json:"steeringTarget"`
	Scale          float64    `json:"scale"`
	WheelSpin      float64    `json:"wheelSpin"`
	Lights         CarLights  `json:"lights"`
}

// CarLights are the emissive and beam intensities of the car's lamps.
type CarLights struct {
	On           bool    `json:"on"`
	HeadEmissive float64 `json:"headEmissive"`
	TailEmissive float64 `json:"tailEmissive"`
	HeadBeam     float64 `json:"headBeam"`
	TailGlow     float64 `json:"tailGlow"`
}

// SteerPivot is a front wheel and brake caliper turned together by the
// steering angle. BrakeOffset keeps the caliper where the model put it.
type SteerPivot struct {
	Wheel       string     `json:"wheel"`
	Brake       string     `json:"brake"`
	Position    mgl64.Vec3 `json:"position"`
	BrakeOffset mgl64.Vec3 `json:"brakeOffset"`
}

// CarRig lists the model parts the renderer animates: pivots follow the
// steering angle and wheels spin by WheelSpin.
type CarRig struct {
	Pivots []SteerPivot `json:"pivots"`
	Wheels []string     `json:"wheels"`
}

// Forward returns the unit heading on the XZ plane for the given yaw.
func Forward(yaw float64) mgl64.Vec3 {
	return mgl64.Rotate3DY(yaw).Mul3x1(mgl64.Vec3{0, 0, 1})
}

// CarSettings are the tunable driving parameters.
type CarSettings struct {
	MaxSpeed     float64 `json:"maxSpeed" yaml:"maxSpeed" mapstructure:"maxSpeed"`
	Acceleration float64 `json:"acceleration" yaml:"acceleration" mapstructure:"acceleration"`
	Friction     float64 `json:"friction" yaml:"friction" mapstructure:"friction"`
	TurnSpeed    float64 `json:"turnSpeed" yaml:"turnSpeed" mapstructure:"turnSpeed"`
	FollowCamera bool    `json:"followCamera" yaml:"followCamera" mapstructure:"followCamera"`
	AutoDrive    bool    `json:"autoDrive" yaml:"autoDrive" mapstructure:"autoDrive"`
}

// DefaultCarSettings returns the settings the car starts with.
func DefaultCarSettings() CarSettings {
	return CarSettings{
		MaxSpeed:     0.8,
		Acceleration: 0.01,
		Friction:     0.98,
		TurnSpeed:    0.03,
		FollowCamera: true,
		AutoDrive:    false,
	}
}

// Controls holds the manual driving keys currently held down.
type Controls struct {
	Forward bool `json:"forward"`
	Back    bool `json:"back"`
	Left    bool `json:"left"`
	Right   bool `json:"right"`
}

// Spawn is a vehicle placement used on scene entry and on reset.
type Spawn struct {
	Position mgl64.Vec3 `json:"position" yaml:"position"`
	Yaw      float64    `json:"yaw" yaml:"yaw"`
}
