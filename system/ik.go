package system

import (
	"errors"
	"log"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/sync/errgroup"

	"github.com/lixenwraith/strider/component"
	"github.com/lixenwraith/strider/ik"
	"github.com/lixenwraith/strider/parameter"
	"github.com/lixenwraith/strider/physics"
	"github.com/lixenwraith/strider/vmath"
)

// GroundState is supplied by the controller owning the body's physical simulation
type GroundState interface {
	Grounded() bool
	GroundMask() physics.LayerMask
}

// StaticGround is a fixed GroundState
type StaticGround struct {
	IsGrounded bool
	Mask       physics.LayerMask
}

// Grounded implements GroundState
func (g *StaticGround) Grounded() bool { return g.IsGrounded }

// GroundMask implements GroundState
func (g *StaticGround) GroundMask() physics.LayerMask { return g.Mask }

// ContactEvent reports a leg changing phase
type ContactEvent struct {
	Frame  uint64
	Leg    int
	Name   string
	Phase  component.LegPhase
	Point  mgl64.Vec3 // Contact point, zero when airborne
	Normal mgl64.Vec3
}

// ContactListener receives phase transitions after each frame's leg pass, on the caller's goroutine
type ContactListener interface {
	OnContact(ev ContactEvent)
}

// FrameStats summarizes one Advance call
type FrameStats struct {
	Frame        uint64
	DeltaTime    float64
	Grounded     bool
	Drop         float64
	RequiredDrop float64
	DropLimit    float64
	GroundedLegs int
	ClampedLegs  int
	Duration     time.Duration
}

// Observer receives frame stats after each Advance
type Observer interface {
	ObserveFrame(stats FrameStats)
}

// Options tune the per-frame pass
type Options struct {
	RotationLerpRate float64 // Foot blend rate per second
	MaxDeltaTime     float64 // Upper bound for one step, <= 0 disables the cap
	Parallel         bool    // Solve legs concurrently after the body drop is published
}

// DefaultOptions returns the parameter defaults
func DefaultOptions() Options {
	return Options{
		RotationLerpRate: parameter.RotationLerpRate,
		MaxDeltaTime:     parameter.MaxDeltaTime,
	}
}

// IKSystem drives body height and leg IK once per frame
// Run it after animation and physics have produced the frame's pose and grounded state
type IKSystem struct {
	body    *component.Body
	sampler *physics.GroundSampler
	ground  GroundState
	opts    Options

	samples   []ik.GroundSample
	prevPhase []component.LegPhase

	listeners []ContactListener
	observers []Observer

	frame uint64
	stats FrameStats
}

// NewIKSystem wires a validated body to its collaborators
func NewIKSystem(body *component.Body, caster physics.Raycaster, ground GroundState, opts Options) (*IKSystem, error) {
	if body == nil {
		return nil, errors.New("ik: nil body")
	}
	if caster == nil {
		return nil, errors.New("ik: nil raycaster")
	}
	if ground == nil {
		return nil, errors.New("ik: nil ground state")
	}
	if opts.RotationLerpRate < 0 {
		return nil, errors.New("ik: negative rotation lerp rate")
	}

	s := &IKSystem{
		body:      body,
		sampler:   physics.NewGroundSampler(caster),
		ground:    ground,
		opts:      opts,
		samples:   make([]ik.GroundSample, len(body.Legs)),
		prevPhase: make([]component.LegPhase, len(body.Legs)),
	}
	for i, leg := range body.Legs {
		s.prevPhase[i] = leg.State.Phase
	}

	log.Printf("ik: system ready, legs=%d parallel=%v lerp=%.2f", len(body.Legs), opts.Parallel, opts.RotationLerpRate)
	return s, nil
}

// Initialize builds the body from rig and calibration and wires the system in one step
func Initialize(rig component.Rig, cal component.Calibration, caster physics.Raycaster, ground GroundState, opts Options) (*IKSystem, error) {
	body, err := component.NewBody(rig, cal)
	if err != nil {
		return nil, err
	}
	return NewIKSystem(body, caster, ground, opts)
}

// Name returns system's name
func (s *IKSystem) Name() string {
	return "ik"
}

// Body returns the solved body
func (s *IKSystem) Body() *component.Body {
	return s.body
}

// LegLength returns the current length of leg i
func (s *IKSystem) LegLength(i int) float64 {
	return s.body.Legs[i].Length()
}

// Stats returns the stats of the last Advance
func (s *IKSystem) Stats() FrameStats {
	return s.stats
}

// AddListener registers a contact listener
func (s *IKSystem) AddListener(l ContactListener) {
	s.listeners = append(s.listeners, l)
}

// AddObserver registers a frame observer
func (s *IKSystem) AddObserver(o Observer) {
	s.observers = append(s.observers, o)
}

// Advance runs one frame: body drop first, then every leg against the published drop
func (s *IKSystem) Advance(dt float64) {
	start := time.Now()
	s.frame++

	if dt < 0 {
		dt = 0
	}
	if s.opts.MaxDeltaTime > 0 && dt > s.opts.MaxDeltaTime {
		dt = s.opts.MaxDeltaTime
	}

	grounded := s.ground.Grounded()
	mask := s.ground.GroundMask()

	drop := s.solveBodyHeight(grounded, mask)

	// Barrier: every leg below reads the published drop
	if s.opts.Parallel && len(s.body.Legs) > 1 {
		var g errgroup.Group
		for i := range s.body.Legs {
			i := i
			g.Go(func() error {
				s.solveLeg(s.body.Legs[i], grounded, mask, dt)
				return nil
			})
		}
		// solveLeg cannot fail, Wait only joins the leg goroutines
		g.Wait()
	} else {
		for _, leg := range s.body.Legs {
			s.solveLeg(leg, grounded, mask, dt)
		}
	}

	s.stats = FrameStats{
		Frame:        s.frame,
		DeltaTime:    dt,
		Grounded:     grounded,
		Drop:         drop.Drop,
		RequiredDrop: drop.RequiredDrop,
		DropLimit:    drop.DropLimit,
	}
	for i, leg := range s.body.Legs {
		if leg.State.Phase == component.LegGrounded {
			s.stats.GroundedLegs++
			if leg.State.Clamped {
				s.stats.ClampedLegs++
			}
		}
		if leg.State.Phase != s.prevPhase[i] {
			s.prevPhase[i] = leg.State.Phase
			s.notify(i, leg)
		}
	}
	s.stats.Duration = time.Since(start)

	for _, o := range s.observers {
		o.ObserveFrame(s.stats)
	}
}

// solveBodyHeight clears the handle, samples every leg from the undropped pose and publishes the drop
func (s *IKSystem) solveBodyHeight(grounded bool, mask physics.LayerMask) ik.DropResult {
	s.body.SetDrop(0)
	if !grounded {
		return ik.DropResult{}
	}

	for i, leg := range s.body.Legs {
		s.samples[i] = s.sample(leg, mask)
	}
	res := ik.ComputeDrop(s.body.Legs, s.samples, s.body.Position())
	s.body.SetDrop(res.Drop)
	return res
}

func (s *IKSystem) sample(leg *component.Leg, mask physics.LayerMask) ik.GroundSample {
	origin := physics.OriginAboveFoot(leg.Config.Foot.Position(), leg.Config.Upper.Position())
	hit, ok := s.sampler.Sample(origin, parameter.GroundProbeLengthFactor*leg.Length(), mask)
	return ik.GroundSample{Hit: hit, OK: ok}
}

// solveLeg touches only this leg's joints and state, so legs may run concurrently
func (s *IKSystem) solveLeg(leg *component.Leg, grounded bool, mask physics.LayerMask, dt float64) {
	if grounded {
		if sample := s.sample(leg, mask); sample.OK {
			s.plant(leg, sample.Hit, dt)
			return
		}
	}
	s.relax(leg, dt)
}

// plant solves the chain onto the contact and blends the foot toward the ground orientation
func (s *IKSystem) plant(leg *component.Leg, hit physics.RaycastHit, dt float64) {
	cfg := &leg.Config

	upper := cfg.Upper.Position()
	target := ik.AnkleTarget(hit, cfg.FootHeight, cfg.Foot.Position(), upper, leg.Length())
	pole := upper.Add(s.body.Rotation().Rotate(cfg.PoleOffset))

	res := ik.SolveLimb(&cfg.Upper, &cfg.Lower, &cfg.Foot, target, pole, cfg.MinExtension, cfg.MaxExtension)

	desired := ik.FootRotation(s.body.Forward(), hit.Normal, cfg.Foot.BindOffset)
	leg.State.LastFootRotation = vmath.Slerp(leg.State.LastFootRotation, desired, s.opts.RotationLerpRate*dt)
	cfg.Foot.Node.SetWorldRotation(leg.State.LastFootRotation)

	leg.State.Phase = component.LegGrounded
	leg.State.ContactPoint = hit.Point
	leg.State.ContactNormal = hit.Normal
	leg.State.AnkleTarget = res.Target
	leg.State.Clamped = res.Clamped
}

// relax leaves the chain to animation and eases the foot back to its animated orientation
func (s *IKSystem) relax(leg *component.Leg, dt float64) {
	foot := &leg.Config.Foot
	animated := foot.Rotation()

	leg.State.Phase = component.LegAirborne
	leg.State.Clamped = false
	if leg.State.LastFootRotation == animated {
		return
	}
	leg.State.LastFootRotation = vmath.Slerp(leg.State.LastFootRotation, animated, s.opts.RotationLerpRate*dt)
	foot.Node.SetWorldRotation(leg.State.LastFootRotation)
}

func (s *IKSystem) notify(i int, leg *component.Leg) {
	if len(s.listeners) == 0 {
		return
	}
	ev := ContactEvent{
		Frame: s.frame,
		Leg:   i,
		Name:  leg.Config.Name,
		Phase: leg.State.Phase,
	}
	if leg.State.Phase == component.LegGrounded {
		ev.Point = leg.State.ContactPoint
		ev.Normal = leg.State.ContactNormal
	}
	for _, l := range s.listeners {
		l.OnContact(ev)
	}
}
