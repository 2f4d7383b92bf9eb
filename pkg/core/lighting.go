// pkg/core/lighting.go
package core

import "github.com/go-gl/mathgl/mgl64"

// Fog is linear distance fog. A nil *Fog means no fog.
type Fog struct {
	Color string  `json:"color" yaml:"color"`
	Near  float64 `json:"near" yaml:"near"`
	Far   float64 `json:"far" yaml:"far"`
}

// LightingConfig describes every light in the scene plus shadows and sky.
// Colours are CSS hex strings so the renderer can use them as-is.
type LightingConfig struct {
	Theme string `json:"theme" yaml:"theme"`

	AmbientIntensity float64 `json:"ambientIntensity" yaml:"ambientIntensity"`
	AmbientColor     string  `json:"ambientColor" yaml:"ambientColor"`

	DirIntensity float64    `json:"dirIntensity" yaml:"dirIntensity"`
	DirColor     string     `json:"dirColor" yaml:"dirColor"`
	DirOffset    mgl64.Vec3 `json:"dirOffset" yaml:"dirOffset"`

	HemisphereIntensity float64 `json:"hemisphereIntensity" yaml:"hemisphereIntensity"`
	SkyColor            string  `json:"skyColor" yaml:"skyColor"`
	GroundColor         string  `json:"groundColor" yaml:"groundColor"`

	SpotIntensity float64 `json:"spotIntensity" yaml:"spotIntensity"`
	SpotColor     string  `json:"spotColor" yaml:"spotColor"`
	SpotDistance  float64 `json:"spotDistance" yaml:"spotDistance"`
	SpotAngle     float64 `json:"spotAngle" yaml:"spotAngle"` // degrees
	SpotPenumbra  float64 `json:"spotPenumbra" yaml:"spotPenumbra"`
	SpotDecay     float64 `json:"spotDecay" yaml:"spotDecay"`

	PointIntensity float64 `json:"pointIntensity" yaml:"pointIntensity"`
	PointColor     string  `json:"pointColor" yaml:"pointColor"`
	PointDistance  float64 `json:"pointDistance" yaml:"pointDistance"`

	ShadowEnabled    bool    `json:"shadowEnabled" yaml:"shadowEnabled"`
	ShadowMapSize    int     `json:"shadowMapSize" yaml:"shadowMapSize"`
	ShadowBias       float64 `json:"shadowBias" yaml:"shadowBias"`
	ShadowRadius     float64 `json:"shadowRadius" yaml:"shadowRadius"`
	ShadowRange      float64 `json:"shadowRange" yaml:"shadowRange"`
	ShadowAutoUpdate bool    `json:"shadowAutoUpdate" yaml:"shadowAutoUpdate"`

	// Focus is the point the directional light aims at when it is not
	// following the car. Only X and Z are used.
	Focus mgl64.Vec3 `json:"focus" yaml:"focus"`

	Background string `json:"background" yaml:"background"`
	Fog        *Fog   `json:"fog,omitempty" yaml:"fog"`

	// Resolved each frame by the sun follow step.
	SunPosition mgl64.Vec3 `json:"sunPosition"`
	SunTarget   mgl64.Vec3 `json:"sunTarget"`
}
