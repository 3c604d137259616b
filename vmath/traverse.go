package vmath

import "math"

// gridAxis is the DDA state of one axis: the current and final cell, the
// direction of travel and the segment parameter of the next boundary crossing
type gridAxis struct {
	cell, last int
	dir        int
	next, span float64
}

func newGridAxis(from, to float64) gridAxis {
	a := gridAxis{
		cell: int(math.Floor(from)),
		last: int(math.Floor(to)),
		dir:  1,
		next: math.Inf(1),
	}
	d := to - from
	if d == 0 {
		return a
	}
	frac := from - math.Floor(from)
	if d < 0 {
		a.dir = -1
		d = -d
		frac = 1 - frac
	}
	a.span = 1 / d
	a.next = (1 - frac) * a.span
	return a
}

func (a *gridAxis) arrived() bool { return a.cell == a.last }

func (a *gridAxis) advance() {
	a.cell += a.dir
	a.next += a.span
}

// GridTraverser walks every unit cell a 2D segment touches; cell (i, j) covers [i, i+1) x [j, j+1).
// Corner crossings step both axes at once
type GridTraverser struct {
	x, y  gridAxis
	state uint8 // 0 fresh, 1 walking, 2 exhausted
}

// NewGridTraverser prepares a walk from (x1, y1) to (x2, y2)
func NewGridTraverser(x1, y1, x2, y2 float64) GridTraverser {
	return GridTraverser{x: newGridAxis(x1, x2), y: newGridAxis(y1, y2)}
}

// Next moves to the following cell; the first call yields the start cell.
// Neither axis steps past its final cell, so the walk always ends on the target
func (t *GridTraverser) Next() bool {
	switch t.state {
	case 0:
		t.state = 1
		return true
	case 2:
		return false
	}

	if t.x.arrived() && t.y.arrived() {
		t.state = 2
		return false
	}

	stepX := !t.x.arrived() && (t.x.next <= t.y.next || t.y.arrived())
	stepY := !t.y.arrived() && (t.y.next <= t.x.next || t.x.arrived())
	if stepX {
		t.x.advance()
	}
	if stepY {
		t.y.advance()
	}
	return true
}

// Pos is the current cell
func (t *GridTraverser) Pos() (int, int) {
	return t.x.cell, t.y.cell
}

// Traverse calls fn for each cell on the segment until it returns false
func Traverse(x1, y1, x2, y2 float64, fn func(x, y int) bool) {
	g := NewGridTraverser(x1, y1, x2, y2)
	for g.Next() {
		if !fn(g.Pos()) {
			return
		}
	}
}
