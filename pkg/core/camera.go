// pkg/core/camera.go
package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Waypoint is a trigger point on the XZ plane. When the car comes within
// the trigger radius it applies Steering and RotationRate. Duration <= 0
// keeps the turn until the next waypoint fires. Radius overrides the
// route's trigger radius when set.
type Waypoint struct {
	X            float64 `json:"x" yaml:"x"`
	Z            float64 `json:"z" yaml:"z"`
	Steering     float64 `json:"steering" yaml:"steering"`
	RotationRate float64 `json:"rotationRate" yaml:"rotationRate"` // radians per tick
	Duration     float64 `json:"duration,omitempty" yaml:"duration"`
	Radius       float64 `json:"radius,omitempty" yaml:"radius"`
	Name         string  `json:"name,omitempty" yaml:"name"`
}

// ShotCut is a named camera preset applied without interpolation.
type ShotCut struct {
	Position mgl64.Vec3 `json:"position" yaml:"position"`
	Target   mgl64.Vec3 `json:"target" yaml:"target"`
	Up       mgl64.Vec3 `json:"up" yaml:"up"`
}

// CameraConfig holds the follow camera and orbit limit settings.
type CameraConfig struct {
	Distance           float64 `json:"distance" yaml:"distance" mapstructure:"distance"`
	Height             float64 `json:"height" yaml:"height" mapstructure:"height"`
	LookAtY            float64 `json:"lookAtY" yaml:"lookAtY" mapstructure:"lookAtY"`
	FOV                float64 `json:"fov" yaml:"fov" mapstructure:"fov"`
	Damping            float64 `json:"damping" yaml:"damping" mapstructure:"damping"`
	CollisionEnabled   bool    `json:"collisionEnabled" yaml:"collisionEnabled" mapstructure:"collisionEnabled"`
	CollisionOffset    float64 `json:"collisionOffset" yaml:"collisionOffset" mapstructure:"collisionOffset"`
	CollisionRayHeight float64 `json:"collisionRayHeight" yaml:"collisionRayHeight" mapstructure:"collisionRayHeight"`
	MinDistance        float64 `json:"minDistance" yaml:"minDistance" mapstructure:"minDistance"`
	MaxDistance        float64 `json:"maxDistance" yaml:"maxDistance" mapstructure:"maxDistance"`
	MinPolarAngle      float64 `json:"minPolarAngle" yaml:"minPolarAngle" mapstructure:"minPolarAngle"`
	MaxPolarAngle      float64 `json:"maxPolarAngle" yaml:"maxPolarAngle" mapstructure:"maxPolarAngle"`
	EnablePan          bool    `json:"enablePan" yaml:"enablePan" mapstructure:"enablePan"`
	EnableRotate       bool    `json:"enableRotate" yaml:"enableRotate" mapstructure:"enableRotate"`
	EnableZoom         bool    `json:"enableZoom" yaml:"enableZoom" mapstructure:"enableZoom"`
}

// DefaultCameraConfig returns the stock follow camera.
func DefaultCameraConfig() CameraConfig {
	return CameraConfig{
		Distance:           12,
		Height:             6,
		LookAtY:            0,
		FOV:                60,
		Damping:            0.1,
		CollisionEnabled:   true,
		CollisionOffset:    2,
		CollisionRayHeight: 5,
		MinDistance:        2,
		MaxDistance:        100,
		MinPolarAngle:      0,
		MaxPolarAngle:      math.Pi,
		EnablePan:          true,
		EnableRotate:       true,
		EnableZoom:         true,
	}
}

// CameraPose is the resolved render camera for one frame.
type CameraPose struct {
	Position mgl64.Vec3 `json:"position"`
	Target   mgl64.Vec3 `json:"target"`
	Up       mgl64.Vec3 `json:"up"`
	FOV      float64    `json:"fov"`
	Near     float64    `json:"near"`
	Far      float64    `json:"far"`
}
