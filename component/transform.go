package component

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Pose is a world-space position and orientation snapshot
type Pose struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
}

// ApproxEqual compares two poses component-wise within threshold
func (p Pose) ApproxEqual(o Pose, threshold float64) bool {
	return p.Position.ApproxEqualThreshold(o.Position, threshold) &&
		p.Rotation.ApproxEqualThreshold(o.Rotation, threshold)
}

// Transform is a scene-graph node with a local pose relative to its parent
// World values are derived on demand by walking the parent chain, nothing is cached,
// so disjoint subtrees may be written concurrently while shared ancestors are only read
type Transform struct {
	Name string

	LocalPosition mgl64.Vec3
	LocalRotation mgl64.Quat
	LocalScale    float64 // Uniform, 0 is treated as 1

	parent   *Transform
	children []*Transform
}

// NewTransform creates a node at the parent's origin and attaches it to parent (nil for a root)
func NewTransform(name string, parent *Transform) *Transform {
	t := &Transform{
		Name:          name,
		LocalRotation: mgl64.QuatIdent(),
		LocalScale:    1,
	}
	t.SetParent(parent)
	return t
}

// Parent returns the parent node, nil for roots
func (t *Transform) Parent() *Transform {
	return t.parent
}

// Children returns the direct children in attach order
func (t *Transform) Children() []*Transform {
	return t.children
}

// SetParent re-attaches the node, keeping its local pose
func (t *Transform) SetParent(parent *Transform) {
	if t.parent != nil {
		siblings := t.parent.children
		for i, c := range siblings {
			if c == t {
				t.parent.children = append(siblings[:i], siblings[i+1:]...)
				break
			}
		}
	}
	t.parent = parent
	if parent != nil {
		parent.children = append(parent.children, t)
	}
}

// IsAncestorOf reports whether t is a strict ancestor of o
func (t *Transform) IsAncestorOf(o *Transform) bool {
	if o == nil {
		return false
	}
	for p := o.parent; p != nil; p = p.parent {
		if p == t {
			return true
		}
	}
	return false
}

// Find returns the first node named name in the subtree rooted at t, depth first
func (t *Transform) Find(name string) *Transform {
	if t.Name == name {
		return t
	}
	for _, c := range t.children {
		if found := c.Find(name); found != nil {
			return found
		}
	}
	return nil
}

func (t *Transform) localScale() float64 {
	if t.LocalScale == 0 {
		return 1
	}
	return t.LocalScale
}

// WorldScale returns the accumulated uniform scale
func (t *Transform) WorldScale() float64 {
	s := t.localScale()
	for p := t.parent; p != nil; p = p.parent {
		s *= p.localScale()
	}
	return s
}

// WorldRotation returns the accumulated orientation
func (t *Transform) WorldRotation() mgl64.Quat {
	if t.parent == nil {
		return t.LocalRotation
	}
	return t.parent.WorldRotation().Mul(t.LocalRotation)
}

// WorldPosition returns the node origin in world space
func (t *Transform) WorldPosition() mgl64.Vec3 {
	if t.parent == nil {
		return t.LocalPosition
	}
	p := t.parent
	return p.WorldPosition().Add(p.WorldRotation().Rotate(t.LocalPosition.Mul(p.WorldScale())))
}

// WorldPose returns position and orientation together
func (t *Transform) WorldPose() Pose {
	return Pose{Position: t.WorldPosition(), Rotation: t.WorldRotation()}
}

// SetWorldRotation sets the local rotation so the world orientation equals q
// Descendants follow since their poses are stored relative to this node
func (t *Transform) SetWorldRotation(q mgl64.Quat) {
	if t.parent == nil {
		t.LocalRotation = q.Normalize()
		return
	}
	t.LocalRotation = t.parent.WorldRotation().Inverse().Mul(q).Normalize()
}

// SetWorldPosition sets the local position so the world position equals p
func (t *Transform) SetWorldPosition(p mgl64.Vec3) {
	if t.parent == nil {
		t.LocalPosition = p
		return
	}
	parent := t.parent
	local := parent.WorldRotation().Inverse().Rotate(p.Sub(parent.WorldPosition()))
	t.LocalPosition = local.Mul(1 / parent.WorldScale())
}

// RotateAround applies a world-space rotation of angle radians about axis through the node origin
func (t *Transform) RotateAround(axis mgl64.Vec3, angle float64) {
	if axis.LenSqr() == 0 {
		return
	}
	delta := mgl64.QuatRotate(angle, axis.Normalize())
	t.SetWorldRotation(delta.Mul(t.WorldRotation()))
}
