package vmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Epsilon is the length below which a direction is treated as degenerate
const Epsilon = 1e-8

// World axes, Y up and +Z forward
var (
	Up      = mgl64.Vec3{0, 1, 0}
	Right   = mgl64.Vec3{1, 0, 0}
	Forward = mgl64.Vec3{0, 0, 1}
)

// NearZero reports whether v is too short to normalize safely
func NearZero(v mgl64.Vec3) bool {
	return v.LenSqr() < Epsilon*Epsilon
}

// Distance returns |a - b|
func Distance(a, b mgl64.Vec3) float64 {
	return b.Sub(a).Len()
}

// ClampMagnitude limits vector magnitude, zero vectors are returned unchanged
func ClampMagnitude(v mgl64.Vec3, maxMag float64) mgl64.Vec3 {
	magSq := v.LenSqr()
	if magSq <= maxMag*maxMag || magSq == 0 {
		return v
	}
	return v.Mul(maxMag / math.Sqrt(magSq))
}

// ClampDistance moves p along the origin->p ray so its distance from origin lies in [minDist, maxDist]
// fallback supplies the direction when p coincides with origin
// Returns the clamped point, its distance and whether clamping changed anything
func ClampDistance(origin, p, fallback mgl64.Vec3, minDist, maxDist float64) (mgl64.Vec3, float64, bool) {
	offset := p.Sub(origin)
	dist := offset.Len()

	switch {
	case dist < minDist:
		dir := fallback
		if dist > Epsilon {
			dir = offset.Mul(1 / dist)
		} else if NearZero(dir) {
			dir = Forward
		} else {
			dir = dir.Normalize()
		}
		return origin.Add(dir.Mul(minDist)), minDist, true
	case dist > maxDist:
		return origin.Add(offset.Mul(maxDist / dist)), maxDist, true
	}
	return p, dist, false
}

// ProjectOnPlane removes the component of v along the plane normal
func ProjectOnPlane(v, normal mgl64.Vec3) mgl64.Vec3 {
	nSq := normal.LenSqr()
	if nSq < Epsilon*Epsilon {
		return v
	}
	return v.Sub(normal.Mul(v.Dot(normal) / nSq))
}

// Clamp01 limits f to [0, 1]
func Clamp01(f float64) float64 {
	return mgl64.Clamp(f, 0, 1)
}
