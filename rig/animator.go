package rig

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/strider/ik"
)

var axisX = mgl64.Vec3{1, 0, 0}

// Animator writes a procedural stepping pose into the mech every frame, standing in for an
// animation system: swing about the hip, foot lift during the swing half of each leg's cycle
type Animator struct {
	mech *Mech

	// Speed scales stride and lift, 0 stands still
	Speed float64

	time float64
}

// NewAnimator creates an animator at time zero, applies the rest pose and reseeds foot smoothing from it
func NewAnimator(m *Mech) *Animator {
	a := &Animator{mech: m}
	a.Apply()
	if m.Body != nil {
		for _, leg := range m.Body.Legs {
			leg.Seed()
		}
	}
	return a
}

// Time returns the animation clock in seconds
func (a *Animator) Time() float64 {
	return a.time
}

// Advance moves the clock and re-applies the pose
func (a *Animator) Advance(dt float64) {
	if dt > 0 {
		a.time += dt * a.Speed
	}
	a.Apply()
}

// Apply overwrites every leg's local rotations with the pose at the current time
func (a *Animator) Apply() {
	m := a.mech
	gait := m.gait
	period := gait.StepPeriod
	if period <= 0 {
		period = 1
	}

	for i, leg := range m.Rig.Legs {
		spec := m.specs[i]
		total := spec.upperLength + spec.lowerLength

		cycle := math.Mod(a.time/period+spec.phase, 1)
		swing := gait.StrideAngle * a.Speed * math.Sin(2*math.Pi*cycle)
		lift := 0.0
		if cycle < 0.5 {
			lift = gait.StepHeight * a.Speed * math.Sin(2*math.Pi*cycle)
		}

		// Hip to ankle distance that rests the sole on level ground at body height
		reach := m.bodyHeight - spec.footHeight - lift
		reach = mgl64.Clamp(reach, 0.2*total, 0.999*total)

		hip := ik.BendAngle(spec.upperLength, spec.lowerLength, reach)
		kneeCos := (spec.upperLength*spec.upperLength + spec.lowerLength*spec.lowerLength - reach*reach) /
			(2 * spec.upperLength * spec.lowerLength)
		knee := math.Pi - math.Acos(mgl64.Clamp(kneeCos, -1, 1))

		// Negative rotation about +X swings the bone toward +Z, so knees point forward
		leg.Upper.LocalRotation = mgl64.QuatRotate(-(hip + swing), axisX)
		leg.Lower.LocalRotation = mgl64.QuatRotate(knee, axisX)
		leg.Foot.SetWorldRotation(m.Handle.WorldRotation())
	}
}
