package rig

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/strider/calibrate"
	"github.com/lixenwraith/strider/component"
	"github.com/lixenwraith/strider/config"
)

// legSpec keeps the per-leg config the animator needs
type legSpec struct {
	upperLength float64
	lowerLength float64
	footHeight  float64
	phase       float64
}

// Mech is a procedurally built legged rig with its calibrated body
type Mech struct {
	Root        *component.Transform
	Handle      *component.Transform
	Rig         component.Rig
	Calibration component.Calibration
	Body        *component.Body

	bodyHeight float64
	gait       config.Gait
	specs      []legSpec
}

// Build creates root -> handle -> upper -> lower -> foot for every leg
// Legs are built hanging straight down; that pose is the bind pose the calibration is measured from
func Build(cfg config.Rig) (*Mech, error) {
	root := component.NewTransform("root", nil)
	handle := component.NewTransform("handle", root)
	handle.LocalPosition = mgl64.Vec3{0, cfg.BodyHeight, 0}

	m := &Mech{
		Root:       root,
		Handle:     handle,
		bodyHeight: cfg.BodyHeight,
		gait:       cfg.Gait,
	}
	m.Rig = component.Rig{Root: root, Handle: handle}

	for _, l := range cfg.Legs {
		upper := component.NewTransform(l.Name+".upper", handle)
		upper.LocalPosition = config.Vec3(l.Hip)

		lower := component.NewTransform(l.Name+".lower", upper)
		lower.LocalPosition = mgl64.Vec3{0, -l.UpperLength, 0}

		foot := component.NewTransform(l.Name+".foot", lower)
		foot.LocalPosition = mgl64.Vec3{0, -l.LowerLength, 0}

		m.Rig.Legs = append(m.Rig.Legs, component.LegRig{
			Name:         l.Name,
			Upper:        upper,
			Lower:        lower,
			Foot:         foot,
			PoleOffset:   config.Vec3(l.Pole),
			FootHeight:   l.FootHeight,
			MinExtension: l.MinExtension,
			MaxExtension: l.MaxExtension,
		})
		m.specs = append(m.specs, legSpec{
			upperLength: l.UpperLength,
			lowerLength: l.LowerLength,
			footHeight:  l.FootHeight,
			phase:       l.Phase,
		})
	}

	cal, err := calibrate.Rig(m.Rig)
	if err != nil {
		return nil, fmt.Errorf("calibrate mech: %w", err)
	}
	m.Calibration = cal

	body, err := component.NewBody(m.Rig, cal)
	if err != nil {
		return nil, fmt.Errorf("build mech body: %w", err)
	}
	m.Body = body
	return m, nil
}

// PlaceAt moves the body root, the reference the drop is measured against
func (m *Mech) PlaceAt(p mgl64.Vec3) {
	m.Root.LocalPosition = p
}

// Face sets the body heading as a yaw angle in radians about +Y
func (m *Mech) Face(yaw float64) {
	m.Root.LocalRotation = mgl64.QuatRotate(yaw, mgl64.Vec3{0, 1, 0})
}

// BodyHeight returns the configured rest height of the handle above the root
func (m *Mech) BodyHeight() float64 {
	return m.bodyHeight
}
