package geo

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPointFromVec3(t *testing.T) {
	p := PointFromVec3(mgl64.Vec3{3, 1.5, -4})

	c, ok := p.Coordinates()
	require.True(t, ok)
	assert.Equal(t, 3.0, c.XY.X)
	assert.Equal(t, -4.0, c.XY.Y, "world Z is the ground Y")
	assert.Equal(t, 1.5, c.Z, "height is the Z ordinate")
	assert.Equal(t, geom.DimXYZ, c.Type)

	back, ok := Vec3FromPoint(p)
	require.True(t, ok)
	assert.Equal(t, mgl64.Vec3{3, 1.5, -4}, back)
}

func TestVec3FromPoint_Empty(t *testing.T) {
	_, ok := Vec3FromPoint(geom.Point{})
	assert.False(t, ok)
}

func TestTrack_SkipsSmallSteps(t *testing.T) {
	tr := NewTrack(1)
	assert.True(t, tr.Add(mgl64.Vec3{0, 0, 0}))
	assert.False(t, tr.Add(mgl64.Vec3{0.5, 0, 0}))
	assert.False(t, tr.Add(mgl64.Vec3{0, 9, 0}), "height alone is not movement")
	assert.True(t, tr.Add(mgl64.Vec3{3, 0, 0}))
	assert.True(t, tr.Add(mgl64.Vec3{3, 0, 4}))
	assert.Equal(t, 3, tr.Len())

	ls, err := tr.LineString()
	require.NoError(t, err)
	assert.Equal(t, 3, ls.Coordinates().Length())
	assert.InDelta(t, 7.0, GroundLength(ls), 1e-9)
}

func TestTrack_Short(t *testing.T) {
	tr := NewTrack(0)
	_, err := tr.LineString()
	assert.ErrorIs(t, err, ErrShortTrack)

	tr.Add(mgl64.Vec3{1, 0, 1})
	_, err = tr.LineString()
	assert.ErrorIs(t, err, ErrShortTrack)
}

func TestTrack_Reset(t *testing.T) {
	tr := NewTrack(0)
	tr.Add(mgl64.Vec3{})
	tr.Add(mgl64.Vec3{1, 0, 0})
	tr.Reset()
	assert.Equal(t, 0, tr.Len())
	assert.True(t, tr.Add(mgl64.Vec3{0.1, 0, 0}), "first point after a reset is always kept")
}
