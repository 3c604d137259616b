package system

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/strider/component"
	"github.com/lixenwraith/strider/config"
	"github.com/lixenwraith/strider/physics"
	"github.com/lixenwraith/strider/rig"
	"github.com/lixenwraith/strider/vmath"
)

// steppedGround is flat at y=0 for x >= 0 and y=-0.5 for x < 0
var steppedGround = physics.RaycasterFunc(func(origin, direction mgl64.Vec3, maxDistance float64, mask physics.LayerMask) (physics.RaycastHit, bool) {
	y := 0.0
	if origin.X() < 0 {
		y = -0.5
	}
	d := origin.Y() - y
	if d < 0 || d > maxDistance {
		return physics.RaycastHit{}, false
	}
	return physics.RaycastHit{
		Point:    mgl64.Vec3{origin.X(), y, origin.Z()},
		Normal:   vmath.Up,
		Distance: d,
	}, true
})

var noGround = physics.RaycasterFunc(func(mgl64.Vec3, mgl64.Vec3, float64, physics.LayerMask) (physics.RaycastHit, bool) {
	return physics.RaycastHit{}, false
})

type fixture struct {
	sys      *IKSystem
	mech     *rig.Mech
	animator *rig.Animator
	ground   *StaticGround
}

func newFixture(t *testing.T, caster physics.Raycaster, parallel bool) *fixture {
	t.Helper()
	m, err := rig.Build(config.Default().Rig)
	if err != nil {
		t.Fatalf("rig.Build: %v", err)
	}
	a := rig.NewAnimator(m)

	ground := &StaticGround{IsGrounded: true, Mask: physics.AllLayers}
	opts := DefaultOptions()
	opts.Parallel = parallel
	sys, err := NewIKSystem(m.Body, caster, ground, opts)
	if err != nil {
		t.Fatalf("NewIKSystem: %v", err)
	}
	return &fixture{sys: sys, mech: m, animator: a, ground: ground}
}

// frame runs animation then IK, the order the solver expects
func (f *fixture) frame(dt float64) {
	f.animator.Advance(dt)
	f.sys.Advance(dt)
}

type pose struct {
	pos []mgl64.Vec3
	rot []mgl64.Quat
}

func capture(b *component.Body) pose {
	var p pose
	for _, leg := range b.Legs {
		for _, j := range []*component.Joint{&leg.Config.Upper, &leg.Config.Lower, &leg.Config.Foot} {
			p.pos = append(p.pos, j.Position())
			p.rot = append(p.rot, j.Rotation())
		}
	}
	return p
}

func (p pose) near(o pose, eps float64) bool {
	for i := range p.pos {
		if p.pos[i].Sub(o.pos[i]).Len() > eps || !p.rot[i].ApproxEqualThreshold(o.rot[i], eps) {
			return false
		}
	}
	return true
}

func TestAdvanceDropsBodyToLowestLeg(t *testing.T) {
	f := newFixture(t, steppedGround, false)
	f.frame(1.0 / 60)

	stats := f.sys.Stats()
	if math.Abs(stats.Drop-0.5) > 1e-9 {
		t.Errorf("Drop = %v, want 0.5", stats.Drop)
	}
	if stats.Drop > stats.DropLimit {
		t.Errorf("Drop %v exceeds limit %v", stats.Drop, stats.DropLimit)
	}
	if stats.GroundedLegs != 4 || stats.ClampedLegs != 0 {
		t.Errorf("grounded=%d clamped=%d, want 4/0", stats.GroundedLegs, stats.ClampedLegs)
	}

	fh := config.Default().Rig.Legs[0].FootHeight
	for _, leg := range f.sys.Body().Legs {
		want := fh
		if leg.Config.Upper.Position().X() < 0 {
			want -= 0.5
		}
		if got := leg.Config.Foot.Position().Y(); math.Abs(got-want) > 1e-6 {
			t.Errorf("%s ankle y = %v, want %v", leg.Config.Name, got, want)
		}
		if leg.State.Phase != component.LegGrounded {
			t.Errorf("%s phase = %v", leg.Config.Name, leg.State.Phase)
		}
	}
}

func TestAdvanceParallelMatchesSequential(t *testing.T) {
	seq := newFixture(t, steppedGround, false)
	par := newFixture(t, steppedGround, true)
	seq.animator.Speed, par.animator.Speed = 1, 1

	for i := 0; i < 30; i++ {
		seq.frame(1.0 / 60)
		par.frame(1.0 / 60)
	}

	if !capture(seq.sys.Body()).near(capture(par.sys.Body()), 0) {
		t.Error("parallel leg pass diverged from sequential")
	}
	if seq.sys.Stats().Drop != par.sys.Stats().Drop {
		t.Errorf("drop differs: %v vs %v", seq.sys.Stats().Drop, par.sys.Stats().Drop)
	}
}

func TestAdvanceDropOnScaledRig(t *testing.T) {
	f := newFixture(t, steppedGround, false)
	body := f.sys.Body()
	body.Root.LocalScale = 2
	f.frame(1.0 / 60)

	stats := f.sys.Stats()
	if stats.Drop <= 0 || stats.Drop > stats.DropLimit {
		t.Fatalf("drop %v outside (0, %v]", stats.Drop, stats.DropLimit)
	}

	lowered := body.Handle.WorldPosition()
	body.SetDrop(0)
	rest := body.Handle.WorldPosition()
	if got := rest.Y() - lowered.Y(); math.Abs(got-stats.Drop) > 1e-9 {
		t.Errorf("handle moved %v in world space, solver chose %v", got, stats.Drop)
	}
	if math.Abs(rest.X()-lowered.X()) > 1e-9 || math.Abs(rest.Z()-lowered.Z()) > 1e-9 {
		t.Errorf("drop moved the handle sideways: %v -> %v", rest, lowered)
	}
}

func TestAdvanceZeroDeltaIsIdempotent(t *testing.T) {
	f := newFixture(t, steppedGround, false)

	f.animator.Apply()
	f.sys.Advance(0)
	first := capture(f.sys.Body())
	drop := f.sys.Body().Drop()

	f.animator.Apply()
	f.sys.Advance(0)
	if !capture(f.sys.Body()).near(first, 1e-12) {
		t.Error("second pass over the same animated pose changed the result")
	}
	if got := f.sys.Body().Drop(); got != drop {
		t.Errorf("drop %v -> %v", drop, got)
	}
}

func TestAdvanceNoGroundLeavesPose(t *testing.T) {
	f := newFixture(t, noGround, false)
	f.animator.Apply()
	before := capture(f.sys.Body())

	f.sys.Advance(1.0 / 60)

	if !capture(f.sys.Body()).near(before, 1e-12) {
		t.Error("legs without a ground hit should keep the animated pose")
	}
	if got := f.sys.Body().Drop(); got != 0 {
		t.Errorf("Drop = %v, want 0", got)
	}
	for _, leg := range f.sys.Body().Legs {
		if leg.State.Phase != component.LegAirborne {
			t.Errorf("%s phase = %v, want airborne", leg.Config.Name, leg.State.Phase)
		}
	}
}

func TestAirborneFootRelaxesMonotonically(t *testing.T) {
	f := newFixture(t, steppedGround, false)
	f.ground.IsGrounded = false

	leg := f.sys.Body().Legs[0]
	f.animator.Apply()
	leg.State.LastFootRotation = mgl64.QuatRotate(1.2, vmath.Right).Mul(leg.Config.Foot.Rotation())

	prev := math.Inf(1)
	for i := 0; i < 60; i++ {
		f.animator.Apply()
		animated := leg.Config.Foot.Rotation()
		f.sys.Advance(1.0 / 60)

		d := vmath.QuatAngle(leg.Config.Foot.Rotation(), animated)
		if d > prev+1e-9 {
			t.Fatalf("frame %d: foot moved away from the animation %v -> %v", i, prev, d)
		}
		prev = d
	}
	if prev > 0.01 {
		t.Errorf("foot still %v rad from the animated pose after a second", prev)
	}
	if got := f.sys.Body().Drop(); got != 0 {
		t.Errorf("airborne body should not drop, got %v", got)
	}
}

type recorder struct {
	events []ContactEvent
	stats  []FrameStats
}

func (r *recorder) OnContact(ev ContactEvent) { r.events = append(r.events, ev) }
func (r *recorder) ObserveFrame(stats FrameStats) { r.stats = append(r.stats, stats) }

func TestContactEventsAndObservers(t *testing.T) {
	f := newFixture(t, steppedGround, true)
	rec := &recorder{}
	f.sys.AddListener(rec)
	f.sys.AddObserver(rec)

	f.frame(1.0 / 60)
	if len(rec.events) != 4 {
		t.Fatalf("events after landing = %d, want 4", len(rec.events))
	}
	for i, ev := range rec.events {
		if ev.Leg != i || ev.Phase != component.LegGrounded || ev.Frame != 1 {
			t.Errorf("event %d = %+v", i, ev)
		}
		if ev.Normal != vmath.Up {
			t.Errorf("event %d normal = %v", i, ev.Normal)
		}
	}

	f.frame(1.0 / 60)
	if len(rec.events) != 4 {
		t.Errorf("steady contact should not emit, got %d events", len(rec.events))
	}

	f.ground.IsGrounded = false
	f.frame(1.0 / 60)
	if len(rec.events) != 8 {
		t.Fatalf("events after takeoff = %d, want 8", len(rec.events))
	}
	for _, ev := range rec.events[4:] {
		if ev.Phase != component.LegAirborne || ev.Point != (mgl64.Vec3{}) {
			t.Errorf("takeoff event = %+v", ev)
		}
	}

	if len(rec.stats) != 3 {
		t.Fatalf("observed %d frames, want 3", len(rec.stats))
	}
	if rec.stats[0].GroundedLegs != 4 || rec.stats[2].GroundedLegs != 0 || rec.stats[2].Frame != 3 {
		t.Errorf("stats = %+v", rec.stats)
	}
}

func TestAdvanceDeltaClamp(t *testing.T) {
	f := newFixture(t, steppedGround, false)

	f.sys.Advance(5)
	if got := f.sys.Stats().DeltaTime; got != DefaultOptions().MaxDeltaTime {
		t.Errorf("DeltaTime = %v, want capped at %v", got, DefaultOptions().MaxDeltaTime)
	}
	f.sys.Advance(-1)
	if got := f.sys.Stats().DeltaTime; got != 0 {
		t.Errorf("negative DeltaTime = %v, want 0", got)
	}
}

func TestNewIKSystemErrors(t *testing.T) {
	m, err := rig.Build(config.Default().Rig)
	if err != nil {
		t.Fatalf("rig.Build: %v", err)
	}
	ground := &StaticGround{IsGrounded: true}

	if _, err := NewIKSystem(nil, steppedGround, ground, DefaultOptions()); err == nil {
		t.Error("nil body should fail")
	}
	if _, err := NewIKSystem(m.Body, nil, ground, DefaultOptions()); err == nil {
		t.Error("nil raycaster should fail")
	}
	if _, err := NewIKSystem(m.Body, steppedGround, nil, DefaultOptions()); err == nil {
		t.Error("nil ground state should fail")
	}
	opts := DefaultOptions()
	opts.RotationLerpRate = -1
	if _, err := NewIKSystem(m.Body, steppedGround, ground, opts); err == nil {
		t.Error("negative lerp rate should fail")
	}

	if _, err := Initialize(component.Rig{}, nil, steppedGround, ground, DefaultOptions()); !errors.Is(err, component.ErrMissingBodyHandle) {
		t.Errorf("Initialize on empty rig = %v, want ErrMissingBodyHandle", err)
	}
	sys, err := Initialize(m.Rig, m.Calibration, steppedGround, ground, DefaultOptions())
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if sys.Name() != "ik" || len(sys.Body().Legs) != 4 {
		t.Errorf("Initialize built %d legs", len(sys.Body().Legs))
	}
	if got := sys.LegLength(0); math.Abs(got-1.8) > 1e-9 {
		t.Errorf("LegLength = %v, want 1.8", got)
	}
}
