package ik

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/strider/physics"
	"github.com/lixenwraith/strider/vmath"
)

// AnkleTarget places the ankle footHeight above the contact along the surface normal,
// then raises it by the animated foot's lift so stepping animation is preserved
// The lift ratio (animated height above contact / reach) scales the remaining height up to the upper joint
func AnkleTarget(hit physics.RaycastHit, footHeight float64, animatedFoot, upper mgl64.Vec3, reach float64) mgl64.Vec3 {
	target := hit.Point.Add(hit.Normal.Mul(footHeight))
	if reach < vmath.Epsilon {
		return target
	}

	lift := animatedFoot.Y() - target.Y()
	residual := upper.Y() - target.Y()
	if lift <= 0 || residual <= 0 {
		return target
	}

	ratio := vmath.Clamp01(lift / reach)
	return target.Add(vmath.Up.Mul(ratio * residual))
}

// FootRotation aligns the foot with the ground: forward projected onto the contact plane, up along the normal
// bind converts the IK frame into the foot's authored frame
func FootRotation(forward, normal mgl64.Vec3, bind mgl64.Quat) mgl64.Quat {
	if vmath.NearZero(normal) {
		normal = vmath.Up
	}
	projected := vmath.ProjectOnPlane(forward, normal)
	// Heading lost when forward is along the normal
	if vmath.NearZero(projected) {
		projected = vmath.ProjectOnPlane(vmath.Forward, normal)
		if vmath.NearZero(projected) {
			projected = vmath.ProjectOnPlane(vmath.Right, normal)
		}
	}
	return vmath.LookRotation(projected, normal).Mul(bind)
}
