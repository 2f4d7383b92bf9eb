// Package collision defines the ray query the vehicle and camera depend on.
// The geometry behind it belongs to whoever owns the scene.
package collision

import "github.com/go-gl/mathgl/mgl64"

// Hit is the nearest intersection along a ray.
type Hit struct {
	Distance float64
	Point    mgl64.Vec3
}

// Caster answers nearest-hit ray queries. dir must be normalized.
type Caster interface {
	CastRay(origin, dir mgl64.Vec3) (Hit, bool)
}

// CasterFunc adapts a function to the Caster interface.
type CasterFunc func(origin, dir mgl64.Vec3) (Hit, bool)

// CastRay calls f.
func (f CasterFunc) CastRay(origin, dir mgl64.Vec3) (Hit, bool) {
	return f(origin, dir)
}

// None never reports a hit.
var None Caster = CasterFunc(func(mgl64.Vec3, mgl64.Vec3) (Hit, bool) {
	return Hit{}, false
})

// Plane returns a caster for the horizontal plane y = height, hit from
// either side.
func Plane(height float64) Caster {
	return CasterFunc(func(origin, dir mgl64.Vec3) (Hit, bool) {
		if dir.Y() == 0 {
			return Hit{}, false
		}
		d := (height - origin.Y()) / dir.Y()
		if d < 0 {
			return Hit{}, false
		}
		return Hit{Distance: d, Point: origin.Add(dir.Mul(d))}, true
	})
}
