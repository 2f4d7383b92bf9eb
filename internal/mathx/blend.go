// Package mathx holds the blend primitives shot scripts are built from.
package mathx

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Up is the canonical camera up vector.
var Up = mgl64.Vec3{0, 1, 0}

// Lerp performs linear interpolation between a and b.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// LerpVec3 interpolates each component of a toward b.
func LerpVec3(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return mgl64.Clamp(v, lo, hi)
}

// Smoothstep maps x from [lo, hi] onto a Hermite curve in [0, 1].
func Smoothstep(x, lo, hi float64) float64 {
	if x <= lo {
		return 0
	}
	if x >= hi {
		return 1
	}
	x = (x - lo) / (hi - lo)
	return x * x * (3 - 2*x)
}

// EaseInOutCubic applies smooth easing to t in [0, 1].
func EaseInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - math.Pow(-2*t+2, 3)/2
}

// QuadraticBezier evaluates the curve through p0 and p2 pulled toward p1.
func QuadraticBezier(p0, p1, p2 mgl64.Vec3, t float64) mgl64.Vec3 {
	u := 1 - t
	return p0.Mul(u * u).Add(p1.Mul(2 * u * t)).Add(p2.Mul(t * t))
}

// CubicBezier evaluates a cubic curve with control points p1 and p2.
func CubicBezier(p0, p1, p2, p3 mgl64.Vec3, t float64) mgl64.Vec3 {
	return mgl64.CubicBezierCurve3D(t, p0, p1, p2, p3)
}

// PolarOrbit returns a point on a horizontal circle around the origin.
// Angle 0 points down +Z, matching the car's forward axis.
func PolarOrbit(angle, radius, height float64) mgl64.Vec3 {
	return mgl64.Vec3{math.Sin(angle) * radius, height, math.Cos(angle) * radius}
}

// Damp converts a per-frame smoothing factor tuned at 60 fps into the
// factor for a frame of dt seconds, so exponential smoothing converges at
// the same wall-clock rate at any frame rate.
func Damp(factor, dt float64) float64 {
	if dt <= 0 {
		return 0
	}
	factor = Clamp(factor, 0, 1)
	if factor == 1 {
		return 1
	}
	return 1 - math.Pow(1-factor, dt*60)
}

// RotateY rotates v about the vertical axis by yaw radians.
func RotateY(v mgl64.Vec3, yaw float64) mgl64.Vec3 {
	return mgl64.Rotate3DY(yaw).Mul3x1(v)
}

// ToWorld maps a point in an object's local frame (yaw + uniform scale) into
// world space.
func ToWorld(origin mgl64.Vec3, yaw, scale float64, local mgl64.Vec3) mgl64.Vec3 {
	return origin.Add(RotateY(local.Mul(scale), yaw))
}

// DistanceXZ is the ground-plane distance between a and b.
func DistanceXZ(a, b mgl64.Vec3) float64 {
	return math.Hypot(a.X()-b.X(), a.Z()-b.Z())
}

// ExpSmooth moves current toward target by alpha, the per-frame step of an
// exponential blend.
func ExpSmooth(current, target mgl64.Vec3, alpha float64) mgl64.Vec3 {
	return LerpVec3(current, target, Clamp(alpha, 0, 1))
}
