// Package calibrate measures bind offsets from a rig's bind pose.
//
// A bind offset converts the IK frame of a joint (+Z toward the child joint, +Y toward the
// pole target) into the orientation the rig actually authored for that bone. It is computed
// once, before any solving, while the rig is still in its bind pose.
package calibrate

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/strider/component"
	"github.com/lixenwraith/strider/vmath"
)

// ErrDegenerateBone is returned when a joint and its child coincide in the bind pose
var ErrDegenerateBone = errors.New("bone has zero length in bind pose")

// BindOffset returns inverse(LookRotation(child - joint, pole - joint)) * jointRotation
func BindOffset(jointRotation mgl64.Quat, jointPos, childPos, polePos mgl64.Vec3) (mgl64.Quat, error) {
	toChild := childPos.Sub(jointPos)
	if vmath.NearZero(toChild) {
		return mgl64.Quat{}, ErrDegenerateBone
	}
	ikFrame := vmath.LookRotation(toChild, polePos.Sub(jointPos))
	return ikFrame.Inverse().Mul(jointRotation).Normalize(), nil
}

// FootBindOffset relates the foot's bind orientation to a level frame facing forward with +Y up
func FootBindOffset(footRotation mgl64.Quat, forward mgl64.Vec3) mgl64.Quat {
	level := vmath.LookRotation(vmath.ProjectOnPlane(forward, vmath.Up), vmath.Up)
	return level.Inverse().Mul(footRotation).Normalize()
}

// Leg measures the three bind offsets of one leg in its current (bind) pose and stores them by node name
// pole is the world-space knee pole target in the bind pose, forward the body forward axis
func Leg(cal component.Calibration, leg component.LegRig, pole, forward mgl64.Vec3) error {
	if leg.Upper == nil || leg.Lower == nil || leg.Foot == nil {
		return fmt.Errorf("leg %s: %w", leg.Name, component.ErrMissingJoint)
	}

	upper, lower, foot := leg.Upper.WorldPosition(), leg.Lower.WorldPosition(), leg.Foot.WorldPosition()

	q, err := BindOffset(leg.Upper.WorldRotation(), upper, lower, pole)
	if err != nil {
		return fmt.Errorf("leg %s upper: %w", leg.Name, err)
	}
	cal[leg.Upper.Name] = q

	q, err = BindOffset(leg.Lower.WorldRotation(), lower, foot, pole)
	if err != nil {
		return fmt.Errorf("leg %s lower: %w", leg.Name, err)
	}
	cal[leg.Lower.Name] = q

	cal[leg.Foot.Name] = FootBindOffset(leg.Foot.WorldRotation(), forward)
	return nil
}

// Rig measures every leg of a rig in bind pose, using each leg's pole offset relative to the body root
func Rig(rig component.Rig) (component.Calibration, error) {
	if rig.Root == nil {
		return nil, component.ErrMissingBodyHandle
	}
	bodyRot := rig.Root.WorldRotation()
	forward := vmath.ForwardOf(bodyRot)

	cal := make(component.Calibration, 3*len(rig.Legs))
	for _, leg := range rig.Legs {
		if leg.Upper == nil {
			return nil, fmt.Errorf("leg %s: %w", leg.Name, component.ErrMissingJoint)
		}
		pole := leg.Upper.WorldPosition().Add(bodyRot.Rotate(leg.PoleOffset))
		if err := Leg(cal, leg, pole, forward); err != nil {
			return nil, err
		}
	}
	return cal, nil
}
