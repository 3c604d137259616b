package main

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/strider/component"
	"github.com/lixenwraith/strider/config"
	"github.com/lixenwraith/strider/parameter"
	"github.com/lixenwraith/strider/physics"
	"github.com/lixenwraith/strider/rig"
	"github.com/lixenwraith/strider/system"
)

// scene owns one configured mech walking over its terrain
type scene struct {
	cfg      *config.Config
	world    *physics.World
	mech     *rig.Mech
	animator *rig.Animator
	ground   *system.StaticGround
	ik       *system.IKSystem

	x, z     float64 // Body root position on the ground plane
	velocity float64 // Signed speed along Z

	lastContact string
}

// newScene builds terrain, mech and solver from cfg with the body at (x, z)
func newScene(cfg *config.Config, parallel bool, x, z float64) (*scene, error) {
	mask := cfg.Solver.GroundMask()
	layer := parameter.GroundLayer
	if len(cfg.Solver.GroundLayers) > 0 {
		layer = cfg.Solver.GroundLayers[0]
	}

	world, err := rig.BuildTerrain(cfg.Terrain, layer)
	if err != nil {
		return nil, err
	}
	mech, err := rig.Build(cfg.Rig)
	if err != nil {
		return nil, err
	}

	s := &scene{
		cfg:    cfg,
		world:  world,
		mech:   mech,
		ground: &system.StaticGround{IsGrounded: true, Mask: mask},
		x:      x,
		z:      z,
	}
	s.place()
	s.animator = rig.NewAnimator(mech)

	ik, err := system.NewIKSystem(mech.Body, world, s.ground, system.Options{
		RotationLerpRate: cfg.Solver.RotationLerpRate,
		MaxDeltaTime:     cfg.Solver.MaxDeltaTime,
		Parallel:         parallel || cfg.Solver.Parallel,
	})
	if err != nil {
		return nil, fmt.Errorf("init solver: %w", err)
	}
	s.ik = ik
	ik.AddListener(s)
	return s, nil
}

// OnContact keeps the latest touchdown or lift-off for the status line
func (s *scene) OnContact(ev system.ContactEvent) {
	s.lastContact = fmt.Sprintf("%s %s", ev.Name, ev.Phase)
}

// groundHeight returns the terrain height under (x, z), 0 outside the terrain
func (s *scene) groundHeight(x, z float64) (float64, bool) {
	origin := mgl64.Vec3{x, parameter.SandboxProbeHeight, z}
	hit, ok := s.world.Raycast(origin, physics.Down, 2*parameter.SandboxProbeHeight, s.ground.Mask)
	if !ok {
		return 0, false
	}
	return hit.Point.Y(), true
}

// place puts the root on the ground under the body and turns it toward the walking direction
func (s *scene) place() {
	y, _ := s.groundHeight(s.x, s.z)
	s.mech.PlaceAt(mgl64.Vec3{s.x, y, s.z})
	if s.velocity < 0 {
		s.mech.Face(math.Pi)
	} else {
		s.mech.Face(0)
	}
}

// step runs one frame: move, animate, solve
func (s *scene) step(dt float64) {
	if dt > 0 {
		s.z += s.velocity * dt
		limit := s.cfg.Terrain.Size/2 - s.mech.Body.MaxLegLength()
		if math.Abs(s.z) > limit {
			s.z = math.Copysign(limit, s.z)
			s.velocity = 0
		}
	}

	if s.velocity != 0 {
		s.animator.Speed = 1
	} else {
		s.animator.Speed = 0
	}

	s.place()
	s.animator.Advance(dt)
	s.ik.Advance(dt)
}

// walk sets the walking direction, -1 backward, 0 stop, 1 forward
func (s *scene) walk(dir float64) {
	s.velocity = dir * parameter.SandboxWalkSpeed
}

// shift moves the body sideways
func (s *scene) shift(dir float64) {
	s.x += dir * parameter.SandboxLateralStep
	limit := s.cfg.Terrain.Size / 2
	s.x = mgl64.Clamp(s.x, -limit, limit)
}

// toggleGrounded flips the character-level grounded flag, returns the new state
func (s *scene) toggleGrounded() bool {
	s.ground.IsGrounded = !s.ground.IsGrounded
	return s.ground.IsGrounded
}

// groundedLegs counts planted legs
func (s *scene) groundedLegs() int {
	n := 0
	for _, leg := range s.mech.Body.Legs {
		if leg.State.Phase == component.LegGrounded {
			n++
		}
	}
	return n
}
