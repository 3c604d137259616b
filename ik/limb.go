package ik

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/strider/component"
	"github.com/lixenwraith/strider/vmath"
)

// LimbResult describes one two-bone solve
type LimbResult struct {
	Target       mgl64.Vec3 // Effective target after the reach clamp
	Distance     float64    // Upper joint to effective target
	BendAngle    float64    // Upper joint angle between the target line and the upper bone, radians
	Clamped      bool       // Requested target was outside [min, max] reach
	FallbackAxis bool       // Target, pole and upper joint were colinear
}

// ClampReach limits target to [minLen, maxLen] from origin along the same direction
// fallback gives the direction when target coincides with origin
func ClampReach(origin, target, fallback mgl64.Vec3, minLen, maxLen float64) (mgl64.Vec3, float64, bool) {
	return vmath.ClampDistance(origin, target, fallback, minLen, maxLen)
}

// BendAngle returns the angle at the upper joint for a triangle of sides upperLen, lowerLen and d
// The cosine is clamped so boundary extensions never produce NaN
func BendAngle(upperLen, lowerLen, d float64) float64 {
	if upperLen < vmath.Epsilon || d < vmath.Epsilon {
		return 0
	}
	cos := (upperLen*upperLen + d*d - lowerLen*lowerLen) / (2 * upperLen * d)
	return math.Acos(mgl64.Clamp(cos, -1, 1))
}

// SolveLimb orients upper and lower so end reaches target, bending in the plane containing pole
// minExt and maxExt are fractions of the current chain length; descendants move with the joints
func SolveLimb(upper, lower, end *component.Joint, target, pole mgl64.Vec3, minExt, maxExt float64) LimbResult {
	upperPos := upper.Position()
	lowerPos := lower.Position()
	endPos := end.Position()

	upperLen := vmath.Distance(upperPos, lowerPos)
	lowerLen := vmath.Distance(lowerPos, endPos)
	totalLen := upperLen + lowerLen

	var res LimbResult
	res.Target, res.Distance, res.Clamped = ClampReach(upperPos, target, endPos.Sub(upperPos), minExt*totalLen, maxExt*totalLen)
	res.BendAngle = BendAngle(upperLen, lowerLen, res.Distance)

	toTarget := res.Target.Sub(upperPos)
	toPole := pole.Sub(upperPos)

	look := vmath.LookRotation(toTarget, toPole)
	upper.Orient(look)

	// cross(target, pole) is the negated lateral axis of the look frame, the fallback keeps that sense
	axis := toTarget.Cross(toPole)
	if vmath.NearZero(axis) {
		axis = vmath.RightOf(look).Mul(-1)
		res.FallbackAxis = true
	}
	upper.Node.RotateAround(axis, res.BendAngle)

	lowerPos = lower.Position()
	lower.Orient(vmath.LookRotation(res.Target.Sub(lowerPos), pole.Sub(lowerPos)))

	return res
}
