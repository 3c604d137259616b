package component

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Joint is a pose handle on a rig node plus the fixed rotation converting the IK frame
// (+Z toward the child joint, +Y toward the pole target) into the authored bone frame
type Joint struct {
	Node       *Transform
	BindOffset mgl64.Quat
}

// Position returns the joint origin in world space
func (j *Joint) Position() mgl64.Vec3 {
	return j.Node.WorldPosition()
}

// Rotation returns the authored world orientation
func (j *Joint) Rotation() mgl64.Quat {
	return j.Node.WorldRotation()
}

// Orient sets the world orientation from an IK-frame rotation, applying the bind offset
func (j *Joint) Orient(ik mgl64.Quat) {
	j.Node.SetWorldRotation(ik.Mul(j.BindOffset))
}

// Valid reports whether the joint references a node
func (j *Joint) Valid() bool {
	return j != nil && j.Node != nil
}
