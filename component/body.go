package component

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/strider/vmath"
)

// Configuration errors, returned wrapped with the offending leg and joint
var (
	ErrNoLegs             = errors.New("body has no legs")
	ErrMissingBodyHandle  = errors.New("missing body root or handle")
	ErrMissingJoint       = errors.New("missing joint")
	ErrMissingCalibration = errors.New("missing bind offset")
	ErrBrokenChain        = errors.New("joints do not form a chain under the body handle")
	ErrDegenerateLeg      = errors.New("zero-length leg segment")
	ErrSharedJoint        = errors.New("joint shared between legs")
	ErrInvalidLimits      = errors.New("invalid leg limits")
)

// LegRig names the nodes and limits of one leg in a rig hierarchy
type LegRig struct {
	Name  string
	Upper *Transform
	Lower *Transform
	Foot  *Transform

	PoleOffset   mgl64.Vec3
	FootHeight   float64
	MinExtension float64
	MaxExtension float64
}

// Rig is the node set handed to NewBody
// Handle must sit between Root and every leg so the body drop moves all hips together
type Rig struct {
	Root   *Transform
	Handle *Transform
	Legs   []LegRig
}

// Calibration maps node names to bind offsets measured offline from the bind pose
type Calibration map[string]mgl64.Quat

// Body is the set of legs sharing one vertical drop handle
type Body struct {
	Root   *Transform
	Handle *Transform
	Legs   []*Leg

	handleRest mgl64.Vec3
}

// NewBody validates the rig and calibration and builds the legs
// Every configuration defect is reported here so per-frame code never sees a nil joint
func NewBody(rig Rig, cal Calibration) (*Body, error) {
	if rig.Root == nil || rig.Handle == nil {
		return nil, ErrMissingBodyHandle
	}
	if rig.Root != rig.Handle && !rig.Root.IsAncestorOf(rig.Handle) {
		return nil, fmt.Errorf("handle %q is not under root %q: %w", rig.Handle.Name, rig.Root.Name, ErrBrokenChain)
	}
	if len(rig.Legs) == 0 {
		return nil, ErrNoLegs
	}

	b := &Body{
		Root:       rig.Root,
		Handle:     rig.Handle,
		Legs:       make([]*Leg, 0, len(rig.Legs)),
		handleRest: rig.Handle.LocalPosition,
	}

	for i := range rig.Legs {
		leg, err := newLeg(&rig.Legs[i], rig.Handle, cal)
		if err != nil {
			return nil, fmt.Errorf("leg %d (%s): %w", i, rig.Legs[i].Name, err)
		}
		for _, other := range b.Legs {
			if sharesNodes(leg, other) {
				return nil, fmt.Errorf("legs %s and %s: %w", other.Config.Name, leg.Config.Name, ErrSharedJoint)
			}
		}
		b.Legs = append(b.Legs, leg)
	}

	for _, leg := range b.Legs {
		leg.Seed()
	}
	return b, nil
}

func newLeg(r *LegRig, handle *Transform, cal Calibration) (*Leg, error) {
	nodes := [3]*Transform{r.Upper, r.Lower, r.Foot}
	roles := [3]string{"upper", "lower", "foot"}
	for i, n := range nodes {
		if n == nil {
			return nil, fmt.Errorf("%s: %w", roles[i], ErrMissingJoint)
		}
	}

	if !handle.IsAncestorOf(r.Upper) || !r.Upper.IsAncestorOf(r.Lower) || !r.Lower.IsAncestorOf(r.Foot) {
		return nil, ErrBrokenChain
	}

	if r.MinExtension < 0 || r.MaxExtension > 1 || r.MinExtension > r.MaxExtension || r.MaxExtension == 0 {
		return nil, fmt.Errorf("extension [%g, %g]: %w", r.MinExtension, r.MaxExtension, ErrInvalidLimits)
	}
	if r.FootHeight < 0 {
		return nil, fmt.Errorf("foot height %g: %w", r.FootHeight, ErrInvalidLimits)
	}

	var offsets [3]mgl64.Quat
	for i, n := range nodes {
		q, ok := cal[n.Name]
		if !ok {
			return nil, fmt.Errorf("%s %q: %w", roles[i], n.Name, ErrMissingCalibration)
		}
		offsets[i] = q.Normalize()
	}

	leg := &Leg{Config: LegConfig{
		Name:         r.Name,
		Upper:        Joint{Node: r.Upper, BindOffset: offsets[0]},
		Lower:        Joint{Node: r.Lower, BindOffset: offsets[1]},
		Foot:         Joint{Node: r.Foot, BindOffset: offsets[2]},
		PoleOffset:   r.PoleOffset,
		FootHeight:   r.FootHeight,
		MinExtension: r.MinExtension,
		MaxExtension: r.MaxExtension,
	}}

	upper, lower, foot := r.Upper.WorldPosition(), r.Lower.WorldPosition(), r.Foot.WorldPosition()
	if vmath.Distance(upper, lower) < vmath.Epsilon || vmath.Distance(lower, foot) < vmath.Epsilon {
		return nil, ErrDegenerateLeg
	}
	return leg, nil
}

// sharesNodes reports whether two legs overlap in the hierarchy, which would make their solves interfere
func sharesNodes(a, b *Leg) bool {
	au, bu := a.Config.Upper.Node, b.Config.Upper.Node
	return au == bu || au.IsAncestorOf(bu) || bu.IsAncestorOf(au)
}

// Position returns the body reference position
func (b *Body) Position() mgl64.Vec3 {
	return b.Root.WorldPosition()
}

// Rotation returns the body reference orientation
func (b *Body) Rotation() mgl64.Quat {
	return b.Root.WorldRotation()
}

// Forward returns the body forward axis in world space
func (b *Body) Forward() mgl64.Vec3 {
	return vmath.ForwardOf(b.Rotation())
}

// SetDrop lowers the handle by drop world units along world down, overwriting the previous offset.
// The offset is expressed in the handle parent's frame, undoing its rotation and scale
func (b *Body) SetDrop(drop float64) {
	offset := vmath.Up.Mul(-drop)
	if p := b.Handle.Parent(); p != nil {
		offset = p.WorldRotation().Inverse().Rotate(offset).Mul(1 / p.WorldScale())
	}
	b.Handle.LocalPosition = b.handleRest.Add(offset)
}

// Drop returns the currently applied offset as a world-space downward distance
func (b *Body) Drop() float64 {
	offset := b.Handle.LocalPosition.Sub(b.handleRest)
	if p := b.Handle.Parent(); p != nil {
		offset = p.WorldRotation().Rotate(offset.Mul(p.WorldScale()))
	}
	return -offset.Y()
}

// MaxLegLength returns the longest current leg length
func (b *Body) MaxLegLength() float64 {
	longest := 0.0
	for _, leg := range b.Legs {
		longest = max(longest, leg.Length())
	}
	return longest
}
