package physics

import (
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/strider/vmath"
)

// Collider is a static shape that can be hit by a ray
// direction is unit length; hits with origin inside the shape are not reported
type Collider interface {
	Layer() int
	Intersect(origin, direction mgl64.Vec3, maxDistance float64) (RaycastHit, bool)
}

// World is a static collision scene answering nearest-hit ray queries
type World struct {
	mu        sync.RWMutex
	colliders []Collider
}

// NewWorld creates a scene from colliders
func NewWorld(colliders ...Collider) *World {
	return &World{colliders: colliders}
}

// Add appends a collider
func (w *World) Add(c Collider) {
	w.mu.Lock()
	w.colliders = append(w.colliders, c)
	w.mu.Unlock()
}

// Colliders returns a copy of the collider list
func (w *World) Colliders() []Collider {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]Collider(nil), w.colliders...)
}

// Raycast implements Raycaster, returning the nearest hit on a layer in mask
// Safe for concurrent queries
func (w *World) Raycast(origin, direction mgl64.Vec3, maxDistance float64, mask LayerMask) (RaycastHit, bool) {
	if vmath.NearZero(direction) || maxDistance <= 0 {
		return RaycastHit{}, false
	}
	dir := direction.Normalize()

	w.mu.RLock()
	defer w.mu.RUnlock()

	var best RaycastHit
	found := false
	for _, c := range w.colliders {
		if !mask.Contains(c.Layer()) {
			continue
		}
		hit, ok := c.Intersect(origin, dir, maxDistance)
		if !ok || (found && hit.Distance >= best.Distance) {
			continue
		}
		hit.Layer = c.Layer()
		best, found = hit, true
	}
	return best, found
}

// Plane is an infinite one-sided surface, hit only from the side its normal faces
type Plane struct {
	Point      mgl64.Vec3
	Normal     mgl64.Vec3
	LayerIndex int
}

// NewPlane creates a plane through point facing normal
func NewPlane(point, normal mgl64.Vec3, layer int) *Plane {
	n := vmath.Up
	if !vmath.NearZero(normal) {
		n = normal.Normalize()
	}
	return &Plane{Point: point, Normal: n, LayerIndex: layer}
}

// Layer implements Collider
func (p *Plane) Layer() int { return p.LayerIndex }

// Intersect implements Collider
func (p *Plane) Intersect(origin, direction mgl64.Vec3, maxDistance float64) (RaycastHit, bool) {
	denom := p.Normal.Dot(direction)
	if denom > -vmath.Epsilon {
		return RaycastHit{}, false
	}
	t := p.Normal.Dot(p.Point.Sub(origin)) / denom
	if t < 0 || t > maxDistance {
		return RaycastHit{}, false
	}
	return RaycastHit{
		Point:    origin.Add(direction.Mul(t)),
		Normal:   p.Normal,
		Distance: t,
	}, true
}

// Box is an axis-aligned solid block, used for steps and ledges
type Box struct {
	Min, Max   mgl64.Vec3
	LayerIndex int
}

// NewBox creates a box from two opposite corners in any order
func NewBox(a, b mgl64.Vec3, layer int) *Box {
	return &Box{
		Min:        mgl64.Vec3{math.Min(a[0], b[0]), math.Min(a[1], b[1]), math.Min(a[2], b[2])},
		Max:        mgl64.Vec3{math.Max(a[0], b[0]), math.Max(a[1], b[1]), math.Max(a[2], b[2])},
		LayerIndex: layer,
	}
}

// Layer implements Collider
func (b *Box) Layer() int { return b.LayerIndex }

// Intersect implements Collider using the slab method
func (b *Box) Intersect(origin, direction mgl64.Vec3, maxDistance float64) (RaycastHit, bool) {
	tMin, tMax := math.Inf(-1), math.Inf(1)
	enterAxis, enterSign := -1, 0.0

	for axis := 0; axis < 3; axis++ {
		o, d := origin[axis], direction[axis]
		if math.Abs(d) < vmath.Epsilon {
			if o < b.Min[axis] || o > b.Max[axis] {
				return RaycastHit{}, false
			}
			continue
		}
		t1 := (b.Min[axis] - o) / d
		t2 := (b.Max[axis] - o) / d
		sign := -1.0
		if t1 > t2 {
			t1, t2 = t2, t1
			sign = 1.0
		}
		if t1 > tMin {
			tMin, enterAxis, enterSign = t1, axis, sign
		}
		tMax = math.Min(tMax, t2)
		if tMin > tMax {
			return RaycastHit{}, false
		}
	}

	// Origin inside or box behind the ray
	if enterAxis < 0 || tMin < 0 || tMin > maxDistance {
		return RaycastHit{}, false
	}

	var normal mgl64.Vec3
	normal[enterAxis] = enterSign
	return RaycastHit{
		Point:    origin.Add(direction.Mul(tMin)),
		Normal:   normal,
		Distance: tMin,
	}, true
}
