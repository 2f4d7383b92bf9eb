package lighting

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/nightdrive/showcase/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTheme(t *testing.T) {
	for _, th := range Themes() {
		got, err := ParseTheme(th.String())
		require.NoError(t, err)
		assert.Equal(t, th, got)
	}

	got, err := ParseTheme("  Night ")
	require.NoError(t, err)
	assert.Equal(t, Night, got)

	_, err = ParseTheme("disco")
	assert.ErrorIs(t, err, ErrUnknownTheme)
	assert.Equal(t, "Theme(42)", Theme(42).String())
}

func TestApply_ThemeChangesColoursOnly(t *testing.T) {
	l := New()
	l.Config.ShadowRange = 300

	l.Apply(Sunset)
	assert.Equal(t, "sunset", l.Config.Theme)
	assert.Equal(t, "#ffcc99", l.Config.AmbientColor)
	assert.Equal(t, "#ff6600", l.Config.DirColor)
	assert.Equal(t, 1.5, l.Config.DirIntensity)
	assert.Equal(t, 300.0, l.Config.ShadowRange)
	assert.Equal(t, "#8B4513", l.Config.GroundColor, "sunset keeps the ground colour")

	l.Apply(Foggy)
	require.NotNil(t, l.Config.Fog)
	assert.Equal(t, core.Fog{Color: "#aaaaaa", Near: 10, Far: 100}, *l.Config.Fog)

	l.Apply(Clear)
	assert.Nil(t, l.Config.Fog)
	assert.Equal(t, "daylight", l.Config.Theme)
	assert.Equal(t, "#ffffff", l.Config.AmbientColor)
}

func TestApply_DaylightUndoesNight(t *testing.T) {
	l := New()
	want := l.Config

	l.Apply(Night)
	l.Apply(Daylight)

	assert.Equal(t, want, l.Config)
}

func TestFollowSun(t *testing.T) {
	l := New()
	car := mgl64.Vec3{119, -9.35, -197}

	l.FollowSun(car)
	assert.Equal(t, car, l.Config.SunTarget)
	assert.Equal(t, car.Add(mgl64.Vec3{50, 100, 50}), l.Config.SunPosition)
	assert.Equal(t, mgl64.Vec3{119, 0, -197}, l.Config.Focus)

	l.Config.ShadowAutoUpdate = false
	l.Config.Focus = mgl64.Vec3{-1124, 0, -94}
	l.FollowSun(car)
	assert.Equal(t, mgl64.Vec3{-1124, 0, -94}, l.Config.SunTarget)
	assert.Equal(t, mgl64.Vec3{-1074, 100, -44}, l.Config.SunPosition)
}

func TestReset(t *testing.T) {
	l := New()
	l.Apply(Foggy)
	l.Reset()
	assert.Equal(t, Defaults(), l.Config)
}
