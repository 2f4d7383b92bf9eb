// Package geo converts car positions to simple-features geometry for
// storage. The showcase world is a local Cartesian frame: the ground plane
// (X, Z) maps to geometry XY and height becomes the Z ordinate.
package geo

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	geom "github.com/peterstace/simplefeatures/geom"
)

// ErrShortTrack is returned when a track has fewer than two points.
var ErrShortTrack = errors.New("track needs at least two points")

// PointFromVec3 converts a world position to a point.
func PointFromVec3(v mgl64.Vec3) geom.Point {
	return geom.NewPoint(geom.Coordinates{
		XY:   geom.XY{X: v.X(), Y: v.Z()},
		Z:    v.Y(),
		Type: geom.DimXYZ,
	})
}

// Vec3FromPoint converts a point back to a world position. ok is false for
// an empty point.
func Vec3FromPoint(p geom.Point) (v mgl64.Vec3, ok bool) {
	c, ok := p.Coordinates()
	if !ok {
		return v, false
	}
	return mgl64.Vec3{c.XY.X, c.Z, c.XY.Y}, true
}

// Track accumulates a car's path. Points closer than MinStep on the ground
// plane to the previous one are skipped, so a parked car adds nothing.
type Track struct {
	MinStep float64

	flat []float64
	last mgl64.Vec3
}

// NewTrack creates an empty track.
func NewTrack(minStep float64) *Track {
	return &Track{MinStep: minStep}
}

// Add appends v and reports whether it was kept.
func (t *Track) Add(v mgl64.Vec3) bool {
	if len(t.flat) > 0 {
		dx, dz := v.X()-t.last.X(), v.Z()-t.last.Z()
		if dx*dx+dz*dz < t.MinStep*t.MinStep {
			return false
		}
	}
	t.flat = append(t.flat, v.X(), v.Z(), v.Y())
	t.last = v
	return true
}

// Len is the number of points kept.
func (t *Track) Len() int {
	return len(t.flat) / 3
}

// Reset drops every point.
func (t *Track) Reset() {
	t.flat = t.flat[:0]
}

// LineString returns the track as geometry.
func (t *Track) LineString() (geom.LineString, error) {
	if t.Len() < 2 {
		return geom.LineString{}, ErrShortTrack
	}
	coords := append([]float64(nil), t.flat...)
	return geom.NewLineString(geom.NewSequence(coords, geom.DimXYZ)), nil
}

// GroundLength is the distance travelled on the ground plane. Height
// changes are ignored.
func GroundLength(ls geom.LineString) float64 {
	seq := ls.Coordinates()
	total := 0.0
	for i := 1; i < seq.Length(); i++ {
		a, b := seq.Get(i-1).XY, seq.Get(i).XY
		total += math.Hypot(b.X-a.X, b.Y-a.Y)
	}
	return total
}
