package physics

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/strider/vmath"
)

const (
	// heightfieldMarchFraction is the march step as a fraction of cell size
	heightfieldMarchFraction = 0.25
	// heightfieldBisectSteps refines a bracketed crossing to ~1e-7 of a step
	heightfieldBisectSteps = 24
)

// Heightfield is a regular grid of vertex heights on the XZ plane with bilinear interpolation
// Heights are row-major: index = z*Cols + x
type Heightfield struct {
	Origin     mgl64.Vec3 // World position of vertex (0, 0), Y is added to every height
	CellSize   float64
	Cols, Rows int
	Heights    []float64
	LayerIndex int
}

// NewHeightfield validates dimensions and wraps heights
func NewHeightfield(origin mgl64.Vec3, cellSize float64, cols, rows int, heights []float64, layer int) (*Heightfield, error) {
	if cellSize <= 0 {
		return nil, fmt.Errorf("heightfield cell size %g must be positive", cellSize)
	}
	if cols < 2 || rows < 2 {
		return nil, fmt.Errorf("heightfield needs at least 2x2 vertices, got %dx%d", cols, rows)
	}
	if len(heights) != cols*rows {
		return nil, fmt.Errorf("heightfield expects %d heights, got %d", cols*rows, len(heights))
	}
	return &Heightfield{
		Origin:     origin,
		CellSize:   cellSize,
		Cols:       cols,
		Rows:       rows,
		Heights:    heights,
		LayerIndex: layer,
	}, nil
}

// GenerateHeightfield samples fn(x, z) at every vertex
func GenerateHeightfield(origin mgl64.Vec3, cellSize float64, cols, rows int, layer int, fn func(x, z float64) float64) (*Heightfield, error) {
	heights := make([]float64, cols*rows)
	for z := 0; z < rows; z++ {
		for x := 0; x < cols; x++ {
			wx := origin.X() + float64(x)*cellSize
			wz := origin.Z() + float64(z)*cellSize
			heights[z*cols+x] = fn(wx, wz)
		}
	}
	return NewHeightfield(origin, cellSize, cols, rows, heights, layer)
}

// Layer implements Collider
func (h *Heightfield) Layer() int { return h.LayerIndex }

// Extent returns the world XZ bounds covered by the grid
func (h *Heightfield) Extent() (minX, minZ, maxX, maxZ float64) {
	minX, minZ = h.Origin.X(), h.Origin.Z()
	maxX = minX + float64(h.Cols-1)*h.CellSize
	maxZ = minZ + float64(h.Rows-1)*h.CellSize
	return
}

// HeightAt returns the interpolated surface height, ok is false outside the grid
func (h *Heightfield) HeightAt(x, z float64) (float64, bool) {
	gx := (x - h.Origin.X()) / h.CellSize
	gz := (z - h.Origin.Z()) / h.CellSize
	if gx < 0 || gz < 0 || gx > float64(h.Cols-1) || gz > float64(h.Rows-1) {
		return 0, false
	}

	x0 := min(int(gx), h.Cols-2)
	z0 := min(int(gz), h.Rows-2)
	fx := gx - float64(x0)
	fz := gz - float64(z0)

	h00 := h.Heights[z0*h.Cols+x0]
	h10 := h.Heights[z0*h.Cols+x0+1]
	h01 := h.Heights[(z0+1)*h.Cols+x0]
	h11 := h.Heights[(z0+1)*h.Cols+x0+1]

	top := h00 + (h10-h00)*fx
	bottom := h01 + (h11-h01)*fx
	return h.Origin.Y() + top + (bottom-top)*fz, true
}

// NormalAt returns the surface normal from central differences
func (h *Heightfield) NormalAt(x, z float64) mgl64.Vec3 {
	d := h.CellSize * 0.5
	sample := func(sx, sz float64) float64 {
		v, ok := h.HeightAt(sx, sz)
		if !ok {
			// Clamp to the edge by sampling the center point instead
			v, _ = h.HeightAt(x, z)
		}
		return v
	}
	dx := (sample(x+d, z) - sample(x-d, z)) / (2 * d)
	dz := (sample(x, z+d) - sample(x, z-d)) / (2 * d)
	return mgl64.Vec3{-dx, 1, -dz}.Normalize()
}

// Intersect implements Collider
// Vertical rays are solved directly; other rays march the grid and bisect the first crossing
func (h *Heightfield) Intersect(origin, direction mgl64.Vec3, maxDistance float64) (RaycastHit, bool) {
	if math.Abs(direction.X()) < vmath.Epsilon && math.Abs(direction.Z()) < vmath.Epsilon {
		return h.intersectVertical(origin, direction, maxDistance)
	}

	above := func(t float64) (float64, bool) {
		p := origin.Add(direction.Mul(t))
		ground, ok := h.HeightAt(p.X(), p.Z())
		return p.Y() - ground, ok
	}

	prevT := 0.0
	prevF, prevOK := above(0)
	if prevOK && prevF < 0 {
		return RaycastHit{}, false
	}

	step := h.CellSize * heightfieldMarchFraction
	for t := step; ; t += step {
		if t > maxDistance {
			t = maxDistance
		}
		f, ok := above(t)
		if ok && prevOK && prevF >= 0 && f <= 0 {
			lo, hi := prevT, t
			for i := 0; i < heightfieldBisectSteps; i++ {
				mid := (lo + hi) * 0.5
				if fm, _ := above(mid); fm > 0 {
					lo = mid
				} else {
					hi = mid
				}
			}
			p := origin.Add(direction.Mul(hi))
			return RaycastHit{Point: p, Normal: h.NormalAt(p.X(), p.Z()), Distance: hi}, true
		}
		if t >= maxDistance {
			break
		}
		prevT, prevF, prevOK = t, f, ok
	}
	return RaycastHit{}, false
}

func (h *Heightfield) intersectVertical(origin, direction mgl64.Vec3, maxDistance float64) (RaycastHit, bool) {
	ground, ok := h.HeightAt(origin.X(), origin.Z())
	if !ok || direction.Y() >= 0 {
		return RaycastHit{}, false
	}
	t := origin.Y() - ground
	if t < 0 || t > maxDistance {
		return RaycastHit{}, false
	}
	p := mgl64.Vec3{origin.X(), ground, origin.Z()}
	return RaycastHit{Point: p, Normal: h.NormalAt(p.X(), p.Z()), Distance: t}, true
}
