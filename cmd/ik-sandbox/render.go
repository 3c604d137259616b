package main

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/strider/component"
	"github.com/lixenwraith/strider/parameter"
	"github.com/lixenwraith/strider/vmath"
)

var (
	styleGround   = tcell.StyleDefault.Foreground(tcell.ColorDarkOliveGreen)
	styleSurface  = tcell.StyleDefault.Foreground(tcell.ColorOliveDrab)
	styleBody     = tcell.StyleDefault.Foreground(tcell.ColorSilver).Bold(true)
	styleUpper    = tcell.StyleDefault.Foreground(tcell.ColorSteelBlue)
	styleLower    = tcell.StyleDefault.Foreground(tcell.ColorLightSteelBlue)
	stylePlanted  = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	styleAirborne = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleStatus   = tcell.StyleDefault.Background(tcell.ColorNavy).Foreground(tcell.ColorWhite)
)

// view maps the world's ZY plane to screen cells, centred on the body
type view struct {
	width, height int
	camZ, camY    float64
	baseRow       int
}

func newView(width, height int, focus mgl64.Vec3) view {
	return view{
		width:   width,
		height:  height,
		camZ:    focus.Z(),
		camY:    focus.Y(),
		baseRow: height * 3 / 4,
	}
}

// project returns fractional screen coordinates of p
func (v view) project(p mgl64.Vec3) (float64, float64) {
	col := float64(v.width)/2 + (p.Z()-v.camZ)*parameter.SandboxCellsPerUnit
	row := float64(v.baseRow) - (p.Y()-v.camY)*parameter.SandboxRowsPerUnit
	return col, row
}

// worldZ returns the world Z at the centre of column col
func (v view) worldZ(col int) float64 {
	return v.camZ + (float64(col)+0.5-float64(v.width)/2)/parameter.SandboxCellsPerUnit
}

// render draws the terrain profile under the body, the legs and a status line
func render(screen tcell.Screen, s *scene, paused bool) {
	screen.Clear()
	width, height := screen.Size()
	if width < 2 || height < 2 {
		screen.Show()
		return
	}
	sceneRows := height - 1

	body := s.mech.Body
	v := newView(width, sceneRows, body.Position())

	drawTerrain(screen, s, v, sceneRows)

	for _, leg := range body.Legs {
		drawLeg(screen, v, leg, sceneRows)
	}
	drawBody(screen, v, s, sceneRows)

	drawStatus(screen, s, paused, width, height-1)
	screen.Show()
}

func drawTerrain(screen tcell.Screen, s *scene, v view, rows int) {
	for col := 0; col < v.width; col++ {
		y, ok := s.groundHeight(s.x, v.worldZ(col))
		if !ok {
			continue
		}
		_, fr := v.project(mgl64.Vec3{0, y, v.worldZ(col)})
		surface := int(fr)
		for row := max(surface, 0); row < rows; row++ {
			ch, style := '░', styleGround
			if row == surface {
				ch, style = '▀', styleSurface
			}
			screen.SetContent(col, row, ch, nil, style)
		}
	}
}

// drawSegment plots every cell the segment a -> b crosses
func drawSegment(screen tcell.Screen, v view, a, b mgl64.Vec3, ch rune, style tcell.Style, rows int) {
	ax, ay := v.project(a)
	bx, by := v.project(b)
	vmath.Traverse(ax, ay, bx, by, func(x, y int) bool {
		if x >= 0 && x < v.width && y >= 0 && y < rows {
			screen.SetContent(x, y, ch, nil, style)
		}
		return true
	})
}

func drawLeg(screen tcell.Screen, v view, leg *component.Leg, rows int) {
	cfg := &leg.Config
	hip, knee, ankle := cfg.Upper.Position(), cfg.Lower.Position(), cfg.Foot.Position()

	drawSegment(screen, v, hip, knee, '#', styleUpper, rows)
	drawSegment(screen, v, knee, ankle, '|', styleLower, rows)

	ch, style := 'x', styleAirborne
	if leg.State.Phase == component.LegGrounded {
		ch, style = 'o', stylePlanted
	}
	fx, fy := v.project(ankle)
	if x, y := int(fx), int(fy); x >= 0 && x < v.width && y >= 0 && y < rows {
		screen.SetContent(x, y, ch, nil, style)
	}
}

func drawBody(screen tcell.Screen, v view, s *scene, rows int) {
	legs := s.mech.Body.Legs
	if len(legs) == 0 {
		return
	}
	front, rear := legs[0].Config.Upper.Position(), legs[0].Config.Upper.Position()
	for _, leg := range legs[1:] {
		p := leg.Config.Upper.Position()
		if p.Z() > front.Z() {
			front = p
		}
		if p.Z() < rear.Z() {
			rear = p
		}
	}
	drawSegment(screen, v, rear, front, '=', styleBody, rows)
}

func drawStatus(screen tcell.Screen, s *scene, paused bool, width, row int) {
	stats := s.ik.Stats()
	state := "walking"
	switch {
	case paused:
		state = "paused"
	case s.velocity == 0:
		state = "standing"
	}
	text := fmt.Sprintf(" %s  z=%.1f x=%.2f  drop=%+.3f  legs=%d/%d  grounded=%v  %s  [<- ->]walk [s]top [^ v]shift [g]round [space]pause [q]uit",
		state, s.z, s.x, stats.Drop, s.groundedLegs(), len(s.mech.Body.Legs), s.ground.IsGrounded, s.lastContact)

	col := 0
	for _, r := range text {
		if col >= width {
			break
		}
		screen.SetContent(col, row, r, nil, styleStatus)
		col++
	}
	for ; col < width; col++ {
		screen.SetContent(col, row, ' ', nil, styleStatus)
	}
}
