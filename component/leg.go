package component

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/strider/vmath"
)

// LegPhase is the per-leg contact state
type LegPhase uint8

const (
	// LegAirborne leaves the chain to animation and relaxes the foot
	LegAirborne LegPhase = iota
	// LegGrounded plants the foot on the sampled ground
	LegGrounded
)

// String returns the phase name
func (p LegPhase) String() string {
	if p == LegGrounded {
		return "grounded"
	}
	return "airborne"
}

// LegConfig is the immutable part of a leg, fixed at initialization
type LegConfig struct {
	Name string

	Upper Joint
	Lower Joint
	Foot  Joint

	// PoleOffset is added to the upper joint in body space to place the knee pole target
	PoleOffset mgl64.Vec3
	// FootHeight is the ankle height above the sole
	FootHeight float64

	MinExtension float64 // Fraction of Length() the leg may retract to
	MaxExtension float64 // Fraction of Length() the leg may extend to
}

// LegState is the per-frame mutable part of a leg, written only by that leg's solve step
type LegState struct {
	LastFootRotation mgl64.Quat
	Phase            LegPhase

	// Contact from the last grounded solve, valid while Phase is LegGrounded
	ContactPoint  mgl64.Vec3
	ContactNormal mgl64.Vec3
	AnkleTarget   mgl64.Vec3
	Clamped       bool
}

// Leg is one two-bone chain with its foot
type Leg struct {
	Config LegConfig
	State  LegState
}

// Length returns the current chain length, recomputed on every call since rig scale may change
func (l *Leg) Length() float64 {
	upper := l.Config.Upper.Position()
	lower := l.Config.Lower.Position()
	foot := l.Config.Foot.Position()
	return vmath.Distance(upper, lower) + vmath.Distance(lower, foot)
}

// RetractedLength is the shortest the leg may become, minimum extension plus foot height
func (l *Leg) RetractedLength() float64 {
	return l.Config.MinExtension*l.Length() + l.Config.FootHeight
}

// Seed initializes smoothing state from the current animated foot orientation
func (l *Leg) Seed() {
	l.State.LastFootRotation = l.Config.Foot.Rotation()
	l.State.Phase = LegAirborne
}
