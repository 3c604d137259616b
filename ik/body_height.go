package ik

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/strider/component"
	"github.com/lixenwraith/strider/physics"
)

// GroundSample is one leg's ground probe result
type GroundSample struct {
	Hit physics.RaycastHit
	OK  bool
}

// LegDrop holds the per-leg quantities the drop aggregate needs
type LegDrop struct {
	Hit             bool
	HitDistance     float64 // Probe origin (upper joint height) to ground
	TargetLength    float64 // Optimal vertical extension: upper.y - body.y
	RetractedLength float64 // MinExtension * length + foot height
}

// RequiredDrop is how far the body must lower for this leg to reach its optimal extension
func (d LegDrop) RequiredDrop() float64 {
	return math.Max(d.HitDistance-d.TargetLength, 0)
}

// DropLimit is how far the body may lower before this leg is pushed past its retraction limit
func (d LegDrop) DropLimit() float64 {
	return d.HitDistance - d.RetractedLength
}

// DropResult is the body height decision for one frame
type DropResult struct {
	Drop         float64 // Applied offset, positive lowers the body
	RequiredDrop float64 // Largest per-leg requirement
	DropLimit    float64 // Tightest per-leg bound
}

// AggregateDrop combines every leg in a single pass
// The body drops as far as the most demanding leg needs, but never past the tightest limit
// maxLegLength seeds the limit so an all-miss frame stays bounded by the longest leg
func AggregateDrop(maxLegLength float64, legs []LegDrop) DropResult {
	res := DropResult{DropLimit: maxLegLength}
	for _, l := range legs {
		if !l.Hit {
			continue
		}
		res.DropLimit = math.Min(res.DropLimit, l.DropLimit())
		res.RequiredDrop = math.Max(res.RequiredDrop, l.RequiredDrop())
	}
	res.Drop = math.Min(res.RequiredDrop, res.DropLimit)
	return res
}

// ComputeDrop derives per-leg drop terms from current joint positions and samples
// samples[i] belongs to legs[i]; the body handle offset should be cleared before sampling
func ComputeDrop(legs []*component.Leg, samples []GroundSample, bodyPosition mgl64.Vec3) DropResult {
	var buf [8]LegDrop
	drops := buf[:0]

	maxLen := 0.0
	for i, leg := range legs {
		length := leg.Length()
		maxLen = math.Max(maxLen, length)

		d := LegDrop{}
		if i < len(samples) && samples[i].OK {
			upperY := leg.Config.Upper.Position().Y()
			d = LegDrop{
				Hit:             true,
				HitDistance:     samples[i].Hit.Distance,
				TargetLength:    upperY - bodyPosition.Y(),
				RetractedLength: leg.Config.MinExtension*length + leg.Config.FootHeight,
			}
		}
		drops = append(drops, d)
	}
	return AggregateDrop(maxLen, drops)
}
