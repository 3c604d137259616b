package vmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// LookRotation returns the rotation mapping +Z onto forward and +Y onto up orthogonalized against forward
// Zero forward yields identity; up parallel to forward falls back to world up, then world right
func LookRotation(forward, up mgl64.Vec3) mgl64.Quat {
	if NearZero(forward) {
		return mgl64.QuatIdent()
	}
	f := forward.Normalize()

	r := up.Cross(f)
	if NearZero(r) {
		r = Up.Cross(f)
		if NearZero(r) {
			r = Right.Cross(f)
		}
	}
	r = r.Normalize()
	u := f.Cross(r)

	return quatFromBasis(r, u, f)
}

// quatFromBasis converts an orthonormal basis (matrix columns) to a unit quaternion
func quatFromBasis(x, y, z mgl64.Vec3) mgl64.Quat {
	m00, m01, m02 := x[0], y[0], z[0]
	m10, m11, m12 := x[1], y[1], z[1]
	m20, m21, m22 := x[2], y[2], z[2]

	var q mgl64.Quat
	trace := m00 + m11 + m22
	switch {
	case trace > 0:
		s := 0.5 / math.Sqrt(trace+1)
		q = mgl64.Quat{W: 0.25 / s, V: mgl64.Vec3{(m21 - m12) * s, (m02 - m20) * s, (m10 - m01) * s}}
	case m00 > m11 && m00 > m22:
		s := 2 * math.Sqrt(1+m00-m11-m22)
		q = mgl64.Quat{W: (m21 - m12) / s, V: mgl64.Vec3{0.25 * s, (m01 + m10) / s, (m02 + m20) / s}}
	case m11 > m22:
		s := 2 * math.Sqrt(1+m11-m00-m22)
		q = mgl64.Quat{W: (m02 - m20) / s, V: mgl64.Vec3{(m01 + m10) / s, 0.25 * s, (m12 + m21) / s}}
	default:
		s := 2 * math.Sqrt(1+m22-m00-m11)
		q = mgl64.Quat{W: (m10 - m01) / s, V: mgl64.Vec3{(m02 + m20) / s, (m12 + m21) / s, 0.25 * s}}
	}
	return q.Normalize()
}

// AngleAxis returns a rotation of angle radians about axis, identity for a degenerate axis
func AngleAxis(angle float64, axis mgl64.Vec3) mgl64.Quat {
	if NearZero(axis) {
		return mgl64.QuatIdent()
	}
	return mgl64.QuatRotate(angle, axis.Normalize())
}

// Slerp interpolates along the shortest arc with t clamped to [0, 1]
// The endpoints are returned unmodified so t = 0 is an exact no-op
func Slerp(a, b mgl64.Quat, t float64) mgl64.Quat {
	if t <= 0 {
		return a
	}
	if t >= 1 {
		return b
	}
	if a.Dot(b) < 0 {
		b = b.Scale(-1)
	}
	return mgl64.QuatSlerp(a, b, t).Normalize()
}

// QuatAngle returns the angular distance in radians between two orientations
func QuatAngle(a, b mgl64.Quat) float64 {
	d := math.Abs(a.Normalize().Dot(b.Normalize()))
	if d > 1 {
		d = 1
	}
	return 2 * math.Acos(d)
}

// RightOf returns the local +X axis of q in world space
func RightOf(q mgl64.Quat) mgl64.Vec3 { return q.Rotate(Right) }

// UpOf returns the local +Y axis of q in world space
func UpOf(q mgl64.Quat) mgl64.Vec3 { return q.Rotate(Up) }

// ForwardOf returns the local +Z axis of q in world space
func ForwardOf(q mgl64.Quat) mgl64.Vec3 { return q.Rotate(Forward) }
