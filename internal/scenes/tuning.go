package scenes

import (
	_ "embed"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"

	"github.com/nightdrive/showcase/internal/lighting"
	"github.com/nightdrive/showcase/internal/scenegraph"
	"github.com/nightdrive/showcase/pkg/core"
)

//go:embed data/scenes.yaml
var defaultTuning []byte

// Tuning is the static data for one scene. Zero values keep whatever the
// car, camera or lights already had.
type Tuning struct {
	Key       string     `yaml:"key"`
	Model     string     `yaml:"model"`
	Spawn     core.Spawn `yaml:"spawn"`
	Scale     float64    `yaml:"scale"`
	AutoScale bool       `yaml:"autoScale"`
	AutoPlay  bool       `yaml:"autoPlay"`

	Car      CarTuning      `yaml:"car"`
	Lens     LensTuning     `yaml:"lens"`
	Lighting LightingTuning `yaml:"lighting"`
	Lamps    LampTuning     `yaml:"lamps"`
	Route    RouteTuning    `yaml:"route"`

	Ground []scenegraph.Box `yaml:"ground"`
	Props  []scenegraph.Box `yaml:"props"`

	// Next is the scene to fade to once the scenario's clock passes
	// SwitchAt.
	Next     string  `yaml:"next"`
	SwitchAt float64 `yaml:"switchAt"`
}

// CarTuning overrides driving settings.
type CarTuning struct {
	MaxSpeed     float64 `yaml:"maxSpeed"`
	Acceleration float64 `yaml:"acceleration"`
	TurnSpeed    float64 `yaml:"turnSpeed"`
}

// LensTuning overrides the camera clip planes.
type LensTuning struct {
	Near float64 `yaml:"near"`
	Far  float64 `yaml:"far"`
}

// LightingTuning is applied on top of a theme.
type LightingTuning struct {
	Theme            string      `yaml:"theme"`
	Focus            []float64   `yaml:"focus"` // x, z
	DirX             *float64    `yaml:"dirX"`
	DirY             *float64    `yaml:"dirY"`
	DirZ             *float64    `yaml:"dirZ"`
	DirIntensity     *float64    `yaml:"dirIntensity"`
	DirColor         string      `yaml:"dirColor"`
	AmbientIntensity *float64    `yaml:"ambientIntensity"`
	AmbientColor     string      `yaml:"ambientColor"`
	ShadowEnabled    *bool       `yaml:"shadowEnabled"`
	ShadowRange      *float64    `yaml:"shadowRange"`
	ShadowBias       *float64    `yaml:"shadowBias"`
	ShadowMapSize    int         `yaml:"shadowMapSize"`
	ShadowAutoUpdate *bool       `yaml:"shadowAutoUpdate"`
	Fog              *LensTuning `yaml:"fog"` // only applied when the theme has fog
}

// LampTuning switches the car lamps and overrides single intensities.
type LampTuning struct {
	On           bool     `yaml:"on"`
	HeadEmissive *float64 `yaml:"headEmissive"`
	TailEmissive *float64 `yaml:"tailEmissive"`
	HeadBeam     *float64 `yaml:"headBeam"`
	TailGlow     *float64 `yaml:"tailGlow"`
}

// RouteTuning is the autopilot track. RateScale multiplies every
// rotation rate.
type RouteTuning struct {
	Radius    float64         `yaml:"radius"`
	RateScale float64         `yaml:"rateScale"`
	Waypoints []core.Waypoint `yaml:"waypoints"`
}

// Catalog holds the tuning for every scene.
type Catalog struct {
	scenes map[ID]*Tuning
}

type catalogFile struct {
	Scenes []*Tuning `yaml:"scenes"`
}

// DefaultCatalog parses the embedded tuning tables.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultTuning)
}

// ParseCatalog reads tuning tables from YAML. Every scene key must be
// known and appear at most once.
func ParseCatalog(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse scene tuning: %w", err)
	}

	c := &Catalog{scenes: make(map[ID]*Tuning, len(f.Scenes))}
	for _, t := range f.Scenes {
		id, err := ParseID(t.Key)
		if err != nil {
			return nil, fmt.Errorf("scene tuning: %w", err)
		}
		if _, dup := c.scenes[id]; dup {
			return nil, fmt.Errorf("scene tuning: duplicate entry %q", t.Key)
		}
		if t.Next != "" {
			if _, err := ParseID(t.Next); err != nil {
				return nil, fmt.Errorf("scene tuning %q: next: %w", t.Key, err)
			}
		}
		if t.Lighting.Theme != "" {
			if _, err := lighting.ParseTheme(t.Lighting.Theme); err != nil {
				return nil, fmt.Errorf("scene tuning %q: %w", t.Key, err)
			}
		}
		c.scenes[id] = t
	}
	return c, nil
}

// Get returns the tuning for id. Scenes without an entry get an empty
// table.
func (c *Catalog) Get(id ID) *Tuning {
	if t, ok := c.scenes[id]; ok {
		return t
	}
	return &Tuning{Key: id.Key()}
}

// Geometry builds the collision scene from the ground and prop boxes.
func (t *Tuning) Geometry() *scenegraph.Graph {
	boxes := make([]scenegraph.Box, 0, len(t.Ground)+len(t.Props))
	boxes = append(boxes, t.Ground...)
	boxes = append(boxes, t.Props...)
	return scenegraph.FromBoxes(t.Key, boxes)
}

// Waypoints returns the route with RateScale applied.
func (t *Tuning) Waypoints() []core.Waypoint {
	scale := t.Route.RateScale
	if scale == 0 {
		scale = 1
	}
	out := make([]core.Waypoint, len(t.Route.Waypoints))
	for i, wp := range t.Route.Waypoints {
		wp.RotationRate *= scale
		out[i] = wp
	}
	return out
}

// ApplyLighting resets l, applies the theme and then the overrides.
func (t *Tuning) ApplyLighting(l *lighting.Lighting) {
	lt := t.Lighting
	l.Reset()
	if theme, err := lighting.ParseTheme(lt.Theme); err == nil {
		l.Apply(theme)
	}

	c := &l.Config
	if len(lt.Focus) == 2 {
		c.Focus = mgl64.Vec3{lt.Focus[0], 0, lt.Focus[1]}
	}
	setFloat(&c.DirOffset[0], lt.DirX)
	setFloat(&c.DirOffset[1], lt.DirY)
	setFloat(&c.DirOffset[2], lt.DirZ)
	setFloat(&c.DirIntensity, lt.DirIntensity)
	setFloat(&c.AmbientIntensity, lt.AmbientIntensity)
	setFloat(&c.ShadowRange, lt.ShadowRange)
	setFloat(&c.ShadowBias, lt.ShadowBias)
	if lt.DirColor != "" {
		c.DirColor = lt.DirColor
	}
	if lt.AmbientColor != "" {
		c.AmbientColor = lt.AmbientColor
	}
	if lt.ShadowEnabled != nil {
		c.ShadowEnabled = *lt.ShadowEnabled
	}
	if lt.ShadowAutoUpdate != nil {
		c.ShadowAutoUpdate = *lt.ShadowAutoUpdate
	}
	if lt.ShadowMapSize > 0 {
		c.ShadowMapSize = min(c.ShadowMapSize, lt.ShadowMapSize)
	}
	if lt.Fog != nil && c.Fog != nil {
		c.Fog.Near = lt.Fog.Near
		c.Fog.Far = lt.Fog.Far
	}
}

// ApplyLamps overrides single lamp intensities.
func (t *Tuning) ApplyLamps(lights *core.CarLights) {
	lt := t.Lamps
	setFloat(&lights.HeadEmissive, lt.HeadEmissive)
	setFloat(&lights.TailEmissive, lt.TailEmissive)
	setFloat(&lights.HeadBeam, lt.HeadBeam)
	setFloat(&lights.TailGlow, lt.TailGlow)
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}
