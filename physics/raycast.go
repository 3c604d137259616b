package physics

import (
	"github.com/go-gl/mathgl/mgl64"
)

// LayerMask selects collision layers by bit, layer n is bit 1<<n
type LayerMask uint32

// AllLayers matches every layer
const AllLayers LayerMask = ^LayerMask(0)

// MaxLayer is the highest addressable layer index
const MaxLayer = 31

// LayerBit returns the mask containing only layer
func LayerBit(layer int) LayerMask {
	if layer < 0 || layer > MaxLayer {
		return 0
	}
	return 1 << uint(layer)
}

// MaskOf combines layers into one mask
func MaskOf(layers ...int) LayerMask {
	var m LayerMask
	for _, l := range layers {
		m |= LayerBit(l)
	}
	return m
}

// Contains reports whether layer is selected by the mask
func (m LayerMask) Contains(layer int) bool {
	return m&LayerBit(layer) != 0
}

// RaycastHit is the nearest surface contact along a ray
type RaycastHit struct {
	Point    mgl64.Vec3
	Normal   mgl64.Vec3
	Distance float64
	Layer    int
}

// Raycaster is the collision query consumed by the solver
// A miss is reported with ok == false, never as an error
type Raycaster interface {
	Raycast(origin, direction mgl64.Vec3, maxDistance float64, mask LayerMask) (hit RaycastHit, ok bool)
}

// RaycasterFunc adapts a function to Raycaster
type RaycasterFunc func(origin, direction mgl64.Vec3, maxDistance float64, mask LayerMask) (RaycastHit, bool)

// Raycast calls f
func (f RaycasterFunc) Raycast(origin, direction mgl64.Vec3, maxDistance float64, mask LayerMask) (RaycastHit, bool) {
	return f(origin, direction, maxDistance, mask)
}
