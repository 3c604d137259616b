package physics

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/strider/vmath"
)

// Down is the ground probe direction
var Down = mgl64.Vec3{0, -1, 0}

// GroundSampler issues one downward probe per leg against the filtered collision layers
type GroundSampler struct {
	caster Raycaster
}

// NewGroundSampler wraps a collision query provider
func NewGroundSampler(caster Raycaster) *GroundSampler {
	return &GroundSampler{caster: caster}
}

// OriginAboveFoot places the probe over the foot at the upper joint's height,
// so steps and slopes within the leg's vertical span are found
func OriginAboveFoot(foot, upper mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{foot.X(), upper.Y(), foot.Z()}
}

// Sample probes straight down from origin
// ok is false when nothing is within maxDistance, which callers treat as the leg being unsupported
func (s *GroundSampler) Sample(origin mgl64.Vec3, maxDistance float64, mask LayerMask) (RaycastHit, bool) {
	if maxDistance <= 0 {
		return RaycastHit{}, false
	}

	hit, ok := s.caster.Raycast(origin, Down, maxDistance, mask)
	if !ok {
		return RaycastHit{}, false
	}

	// Zero normal fallback
	if vmath.NearZero(hit.Normal) {
		hit.Normal = vmath.Up
	} else {
		hit.Normal = hit.Normal.Normalize()
	}
	return hit, true
}
