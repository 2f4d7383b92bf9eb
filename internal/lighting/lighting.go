// Package lighting holds the scene light rig, its themes and the sun that
// follows the car.
package lighting

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/nightdrive/showcase/pkg/core"
)

// ErrUnknownTheme is returned by ParseTheme for names outside the table.
var ErrUnknownTheme = errors.New("unknown lighting theme")

// Theme is a named lighting preset.
type Theme int

const (
	Daylight Theme = iota
	Sunset
	Night
	Foggy
	Clear
)

var themeNames = map[Theme]string{
	Daylight: "daylight",
	Sunset:   "sunset",
	Night:    "night",
	Foggy:    "foggy",
	Clear:    "clear",
}

func (t Theme) String() string {
	if s, ok := themeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("Theme(%d)", int(t))
}

// ParseTheme looks a theme up by name, case-insensitively.
func ParseTheme(name string) (Theme, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for t, s := range themeNames {
		if s == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownTheme, name)
}

// Themes lists every preset in display order.
func Themes() []Theme {
	return []Theme{Daylight, Sunset, Night, Foggy, Clear}
}

// Defaults returns the stock light rig.
func Defaults() core.LightingConfig {
	return core.LightingConfig{
		Theme:               Daylight.String(),
		AmbientIntensity:    1.0,
		AmbientColor:        "#ffffff",
		DirIntensity:        2.0,
		DirColor:            "#ffffff",
		DirOffset:           mgl64.Vec3{50, 100, 50},
		HemisphereIntensity: 0.5,
		SkyColor:            "#87CEEB",
		GroundColor:         "#8B4513",
		SpotIntensity:       1.0,
		SpotColor:           "#ffffff",
		SpotDistance:        200,
		SpotAngle:           30,
		SpotPenumbra:        0.5,
		SpotDecay:           2,
		PointIntensity:      0.5,
		PointColor:          "#ff6600",
		PointDistance:       50,
		ShadowEnabled:       true,
		ShadowMapSize:       4096,
		ShadowBias:          -0.0005,
		ShadowRadius:        1,
		ShadowRange:         50,
		ShadowAutoUpdate:    true,
		Background:          "#87ceeb",
	}
}

// Lighting owns the live light config.
type Lighting struct {
	Config core.LightingConfig
}

// New creates a rig at the defaults.
func New() *Lighting {
	return &Lighting{Config: Defaults()}
}

// Reset restores the defaults. Scenes start from here before applying
// their own overrides.
func (l *Lighting) Reset() {
	l.Config = Defaults()
}

// Apply switches to a theme. Themes only touch intensity, colour, sky and
// fog; shadow and placement settings are left alone.
func (l *Lighting) Apply(t Theme) {
	c := &l.Config
	switch t {
	case Daylight:
		c.AmbientIntensity = 1.0
		c.DirIntensity = 2.0
		c.AmbientColor = "#ffffff"
		c.DirColor = "#ffffff"
		c.SkyColor = "#87CEEB"
		c.GroundColor = "#8B4513"
		c.Background = "#87ceeb"
		c.Fog = nil
	case Sunset:
		c.AmbientIntensity = 0.8
		c.AmbientColor = "#ffcc99"
		c.DirIntensity = 1.5
		c.DirColor = "#ff6600"
		c.SkyColor = "#ff9966"
		c.Background = "#ff9966"
		c.Fog = nil
	case Night:
		c.AmbientIntensity = 0.2
		c.AmbientColor = "#333366"
		c.DirIntensity = 0.3
		c.DirColor = "#ffffff"
		c.SkyColor = "#000033"
		c.Background = "#000033"
		c.Fog = nil
	case Foggy:
		c.AmbientIntensity = 0.6
		c.AmbientColor = "#ffffff"
		c.DirIntensity = 0.8
		c.DirColor = "#ffffff"
		c.Fog = &core.Fog{Color: "#aaaaaa", Near: 10, Far: 100}
		c.Background = "#aaaaaa"
	case Clear:
		c.Fog = nil
		l.Apply(Daylight)
		return
	}
	c.Theme = t.String()
}

// FollowSun places the directional light. With shadow auto update on it
// centres on the car and moves the focus along; otherwise it centres on the
// fixed focus point at ground level.
func (l *Lighting) FollowSun(car mgl64.Vec3) {
	c := &l.Config
	center := mgl64.Vec3{c.Focus.X(), 0, c.Focus.Z()}
	if c.ShadowAutoUpdate {
		center = car
		c.Focus = mgl64.Vec3{car.X(), 0, car.Z()}
	}
	c.SunPosition = center.Add(c.DirOffset)
	c.SunTarget = center
}
