package collision

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNone(t *testing.T) {
	_, ok := None.CastRay(mgl64.Vec3{}, mgl64.Vec3{0, -1, 0})
	assert.False(t, ok)
}

func TestPlane(t *testing.T) {
	ground := Plane(-2)

	hit, ok := ground.CastRay(mgl64.Vec3{1, 3, 1}, mgl64.Vec3{0, -1, 0})
	require.True(t, ok)
	assert.InDelta(t, 5.0, hit.Distance, 1e-12)
	assert.Equal(t, mgl64.Vec3{1, -2, 1}, hit.Point)

	_, ok = ground.CastRay(mgl64.Vec3{1, 3, 1}, mgl64.Vec3{0, 1, 0})
	assert.False(t, ok, "plane behind the ray")

	_, ok = ground.CastRay(mgl64.Vec3{1, 3, 1}, mgl64.Vec3{1, 0, 0})
	assert.False(t, ok, "parallel ray")
}
