package component

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

// testRig builds root -> handle -> n legs hanging straight down with unit segments
func testRig(n int) (Rig, Calibration) {
	root := NewTransform("root", nil)
	handle := NewTransform("handle", root)
	handle.LocalPosition = mgl64.Vec3{0, 2, 0}

	rig := Rig{Root: root, Handle: handle}
	cal := Calibration{}
	for i := 0; i < n; i++ {
		name := string(rune('a' + i))
		upper := NewTransform(name+".upper", handle)
		upper.LocalPosition = mgl64.Vec3{float64(i), 0, 0}
		lower := NewTransform(name+".lower", upper)
		lower.LocalPosition = mgl64.Vec3{0, -1, 0}
		foot := NewTransform(name+".foot", lower)
		foot.LocalPosition = mgl64.Vec3{0, -1, 0}

		rig.Legs = append(rig.Legs, LegRig{
			Name: name, Upper: upper, Lower: lower, Foot: foot,
			PoleOffset: mgl64.Vec3{0, 0, 1}, FootHeight: 0.1, MinExtension: 0.2, MaxExtension: 0.9,
		})
		for _, node := range []*Transform{upper, lower, foot} {
			cal[node.Name] = mgl64.QuatIdent()
		}
	}
	return rig, cal
}

func TestNewBody(t *testing.T) {
	rig, cal := testRig(2)
	rig.Legs[0].Foot.LocalRotation = mgl64.QuatRotate(0.3, mgl64.Vec3{0, 1, 0})

	body, err := NewBody(rig, cal)
	if err != nil {
		t.Fatalf("NewBody: %v", err)
	}
	if len(body.Legs) != 2 {
		t.Fatalf("legs = %d, want 2", len(body.Legs))
	}

	leg := body.Legs[0]
	if got := leg.Length(); math.Abs(got-2) > 1e-12 {
		t.Errorf("Length = %v, want 2", got)
	}
	if got := leg.RetractedLength(); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("RetractedLength = %v, want 0.2*2+0.1", got)
	}
	if leg.State.LastFootRotation != leg.Config.Foot.Rotation() {
		t.Error("LastFootRotation not seeded from the animated foot")
	}
	if leg.State.Phase != LegAirborne {
		t.Errorf("initial phase = %v, want airborne", leg.State.Phase)
	}
}

func TestNewBodyErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Rig, Calibration)
		want   error
	}{
		{"no legs", func(r *Rig, _ Calibration) { r.Legs = nil }, ErrNoLegs},
		{"no handle", func(r *Rig, _ Calibration) { r.Handle = nil }, ErrMissingBodyHandle},
		{"nil joint", func(r *Rig, _ Calibration) { r.Legs[0].Lower = nil }, ErrMissingJoint},
		{"missing bind offset", func(r *Rig, c Calibration) { delete(c, "b.foot") }, ErrMissingCalibration},
		{"zero-length segment", func(r *Rig, _ Calibration) { r.Legs[1].Foot.LocalPosition = mgl64.Vec3{} }, ErrDegenerateLeg},
		{"shared joint", func(r *Rig, _ Calibration) { r.Legs[1] = r.Legs[0] }, ErrSharedJoint},
		{"min above max", func(r *Rig, _ Calibration) { r.Legs[0].MinExtension = 0.95 }, ErrInvalidLimits},
		{"max above one", func(r *Rig, _ Calibration) { r.Legs[0].MaxExtension = 1.5 }, ErrInvalidLimits},
		{"negative foot height", func(r *Rig, _ Calibration) { r.Legs[0].FootHeight = -1 }, ErrInvalidLimits},
		{"leg outside handle", func(r *Rig, _ Calibration) { r.Legs[0].Upper.SetParent(r.Root) }, ErrBrokenChain},
		{"joints out of order", func(r *Rig, _ Calibration) {
			r.Legs[0].Lower, r.Legs[0].Foot = r.Legs[0].Foot, r.Legs[0].Lower
		}, ErrBrokenChain},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rig, cal := testRig(2)
			tt.mutate(&rig, cal)
			_, err := NewBody(rig, cal)
			if !errors.Is(err, tt.want) {
				t.Errorf("NewBody error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestBodyDrop(t *testing.T) {
	rig, cal := testRig(1)
	body, err := NewBody(rig, cal)
	if err != nil {
		t.Fatalf("NewBody: %v", err)
	}

	upper := body.Legs[0].Config.Upper
	body.SetDrop(0.4)
	if got := body.Drop(); math.Abs(got-0.4) > 1e-12 {
		t.Errorf("Drop = %v, want 0.4", got)
	}
	if got := upper.Position().Y(); math.Abs(got-1.6) > 1e-12 {
		t.Errorf("hip height after drop = %v, want 1.6", got)
	}

	// Offsets overwrite rather than accumulate
	body.SetDrop(0.1)
	body.SetDrop(0)
	if got := upper.Position().Y(); math.Abs(got-2) > 1e-12 {
		t.Errorf("hip height after reset = %v, want 2", got)
	}
	if got := body.MaxLegLength(); math.Abs(got-2) > 1e-12 {
		t.Errorf("MaxLegLength = %v, want 2", got)
	}
}

func TestBodyDropWorldUnits(t *testing.T) {
	tests := []struct {
		name  string
		scale float64
		tilt  float64
	}{
		{"scaled root", 2, 0},
		{"shrunk root", 0.5, 0},
		{"tilted scaled root", 2, 0.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rig, cal := testRig(1)
			rig.Root.LocalScale = tt.scale
			rig.Root.LocalRotation = mgl64.QuatRotate(tt.tilt, mgl64.Vec3{1, 0, 0})
			body, err := NewBody(rig, cal)
			if err != nil {
				t.Fatalf("NewBody: %v", err)
			}

			before := body.Handle.WorldPosition()
			body.SetDrop(0.4)
			moved := before.Sub(body.Handle.WorldPosition())
			if !moved.ApproxEqualThreshold(mgl64.Vec3{0, 0.4, 0}, 1e-12) {
				t.Errorf("handle moved %v, want straight down by 0.4", moved)
			}
			if got := body.Drop(); math.Abs(got-0.4) > 1e-12 {
				t.Errorf("Drop = %v, want 0.4", got)
			}

			body.SetDrop(0)
			if got := body.Handle.WorldPosition(); !got.ApproxEqualThreshold(before, 1e-12) {
				t.Errorf("reset handle = %v, want %v", got, before)
			}
		})
	}
}

func TestJointOrient(t *testing.T) {
	n := NewTransform("n", nil)
	bind := mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{1, 0, 0})
	j := Joint{Node: n, BindOffset: bind}

	ikRot := mgl64.QuatRotate(0.4, mgl64.Vec3{0, 1, 0})
	j.Orient(ikRot)
	if got := j.Rotation(); !got.ApproxEqualThreshold(ikRot.Mul(bind), 1e-12) {
		t.Errorf("Orient = %v, want ik * bind", got)
	}
	if !j.Valid() || (&Joint{}).Valid() {
		t.Error("Valid mismatch")
	}
}
