package vehicle

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/nightdrive/showcase/internal/collision"
	"github.com/nightdrive/showcase/internal/mathx"
)

const (
	widthSamples   = 5
	probeReach     = 50.0
	probeStep      = 0.5
	probeHeight    = 20.0
	maxRoadWidth   = 50.0
	laneWidth      = 4.0
	minAutoScale   = 0.3
	maxAutoScale   = 3.0
	autoScaleRatio = 0.8
)

// RoadWidth estimates how wide the surface under the car is. At a few
// points along the Z axis it walks rays outward on both sides until they
// stop hitting anything. Samples whose edge lies beyond reach are dropped.
// It returns zero when no sample is usable.
func RoadWidth(c collision.Caster, pos mgl64.Vec3) float64 {
	if c == nil {
		return 0
	}
	total, valid := 0.0, 0
	for i := 0; i < widthSamples; i++ {
		sample := pos.Add(mgl64.Vec3{0, probeHeight, float64(i*2 - widthSamples)})
		left, okL := edge(c, sample, -1)
		right, okR := edge(c, sample, 1)
		if !okL || !okR {
			continue
		}
		if w := right - left; w > 0 && w < maxRoadWidth {
			total += w
			valid++
		}
	}
	if valid == 0 {
		return 0
	}
	return total / float64(valid)
}

// edge returns the X of the last ground hit walking from origin in
// direction side.
func edge(c collision.Caster, origin mgl64.Vec3, side float64) (float64, bool) {
	down := mgl64.Vec3{0, -1, 0}
	if _, ok := c.CastRay(origin, down); !ok {
		return 0, false
	}
	last := origin.X()
	for d := probeStep; d <= probeReach; d += probeStep {
		p := origin.Add(mgl64.Vec3{side * d, 0, 0})
		if _, ok := c.CastRay(p, down); !ok {
			return last, true
		}
		last = p.X()
	}
	return 0, false
}

// AutoScale sizes the car to the road it is standing on and returns the
// chosen scale. Unusable measurements fall back to 1.
func (v *Vehicle) AutoScale() float64 {
	scale := 1.0
	if w := RoadWidth(v.collider, v.State.Position); w > 0 {
		scale = mathx.Clamp(w/laneWidth*autoScaleRatio, minAutoScale, maxAutoScale)
	} else {
		v.logger.Debug("road width not detected, keeping default scale")
	}
	v.SetScale(scale)
	return scale
}
