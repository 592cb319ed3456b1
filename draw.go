package main

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/jakecoffman/cp"
	"golang.org/x/image/colornames"

	"github.com/milk9111/stfu/common"
	"github.com/milk9111/stfu/ecs"
	"github.com/milk9111/stfu/ecs/component"
	"github.com/milk9111/stfu/levels"
	"github.com/milk9111/stfu/physics"
)

var boxColors = map[string]color.Color{
	levels.KindGround:   colornames.Slategray,
	levels.KindPlatform: colornames.Peru,
	levels.KindDeath:    colornames.Crimson,
}

func (g *Game) drawLevel(screen *ebiten.Image) {
	lvl := g.sim.Level()
	if lvl == nil {
		return
	}
	for _, b := range lvl.Boxes {
		x, y := g.camera.WorldToScreen(common.ToUnits(b.X), common.ToUnits(b.Y))
		c, ok := boxColors[b.Kind]
		if !ok {
			c = colornames.Slategray
		}
		vector.DrawFilledRect(screen, float32(x), float32(y), float32(b.W), float32(b.H), c, false)
	}

	g.sim.Physics().EachShape(func(s *cp.Shape) {
		if s.Body() == nil {
			return
		}
		bb := s.BB()
		x, y := g.camera.WorldToScreen(bb.L, bb.B)
		w, h := float32(common.ToPixels(bb.R-bb.L)), float32(common.ToPixels(bb.T-bb.B))
		switch {
		case s.Sensor():
			// checkpoints
			vector.StrokeRect(screen, float32(x), float32(y), w, h, 2, colornames.Mediumseagreen, false)
		case s.Body().GetType() == cp.BODY_KINEMATIC:
			vector.DrawFilledRect(screen, float32(x), float32(y), w, h, colornames.Goldenrod, false)
		case physics.Category(s.Filter.Categories).Has(physics.CategoryPlayerBullet):
			vector.DrawFilledRect(screen, float32(x), float32(y), w, h, colornames.Gold, false)
		}
	})
}

func (g *Game) drawCharacters(screen *ebiten.Image) {
	w := g.sim.World()
	ecs.ForEach2(w, component.CharacterComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, ch *component.Character, t *component.Transform) {
		if ch.Body.Disabled() {
			return
		}
		c := g.colorOf(ch.Prefab)
		if h, ok := ecs.Get(w, e, component.HealthComponent.Kind()); ok && (h.Hit || h.Recovering) && g.frames/4%2 == 0 {
			c = colornames.White
		}

		ext := ch.Body.Extents()
		x, y := g.camera.WorldToScreen(t.X-ext.X, t.Y-ext.Y)
		pw, ph := common.ToPixels(2*ext.X), common.ToPixels(2*ext.Y)
		vector.DrawFilledRect(screen, float32(x), float32(y), float32(pw), float32(ph), c, false)

		// wheel spoke
		r := ch.Body.WheelRadius()
		cx, cy := g.camera.WorldToScreen(t.X, t.Y+ext.Y-r)
		ex := cx + common.ToPixels(r)*math.Cos(t.Angle)
		ey := cy + common.ToPixels(r)*math.Sin(t.Angle)
		vector.StrokeLine(screen, float32(cx), float32(cy), float32(ex), float32(ey), 2, colornames.Black, false)
	})
}

func (g *Game) colorOf(prefab string) color.Color {
	spec, err := g.sim.Spec(prefab)
	if err != nil || spec.Color.Color == nil {
		return colornames.Magenta
	}
	return spec.Color.Color
}

func (g *Game) drawHUD(screen *ebiten.Image) {
	var b strings.Builder
	fmt.Fprintf(&b, "Frame: %d    FPS: %.2f\n", g.sim.Frame(), ebiten.ActualFPS())
	for _, st := range g.sim.Snapshot() {
		fmt.Fprintf(&b, "P%d %-10s hp=%d v=(%.2f, %.2f)", st.Index, st.State, st.HP, st.VX, st.VY)
		if st.Dead {
			b.WriteString(" dead")
		}
		b.WriteByte('\n')
	}
	if g.recorder != nil {
		fmt.Fprintf(&b, "REC %d\n", g.recorder.Len())
	}
	ebitenutil.DebugPrint(screen, b.String())
}

// debugDrawer renders chipmunk shapes through the camera.
type debugDrawer struct {
	screen *ebiten.Image
	camera *Camera
}

func (g *Game) drawPhysics(screen *ebiten.Image) {
	cp.DrawSpace(g.sim.Physics().Space(), &debugDrawer{screen: screen, camera: g.camera})
}

func (d *debugDrawer) line(a, b cp.Vector, c color.Color) {
	ax, ay := d.camera.WorldToScreen(a.X, a.Y)
	bx, by := d.camera.WorldToScreen(b.X, b.Y)
	vector.StrokeLine(d.screen, float32(ax), float32(ay), float32(bx), float32(by), 1, c, false)
}

func (d *debugDrawer) DrawCircle(pos cp.Vector, angle, radius float64, outline, fill cp.FColor, data interface{}) {
	c := fcolorToRGBA(outline)
	const steps = 20
	prev := cp.Vector{X: pos.X + radius, Y: pos.Y}
	for i := 1; i <= steps; i++ {
		th := float64(i) * (2 * math.Pi / steps)
		cur := cp.Vector{X: pos.X + math.Cos(th)*radius, Y: pos.Y + math.Sin(th)*radius}
		d.line(prev, cur, c)
		prev = cur
	}
	d.line(pos, cp.Vector{X: pos.X + math.Cos(angle)*radius, Y: pos.Y + math.Sin(angle)*radius}, c)
}

func (d *debugDrawer) DrawSegment(a, b cp.Vector, fill cp.FColor, data interface{}) {
	d.line(a, b, fcolorToRGBA(fill))
}

func (d *debugDrawer) DrawFatSegment(a, b cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	d.line(a, b, fcolorToRGBA(outline))
}

func (d *debugDrawer) DrawPolygon(count int, verts []cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	c := fcolorToRGBA(outline)
	for i := 0; i < count; i++ {
		d.line(verts[i], verts[(i+1)%count], c)
	}
}

func (d *debugDrawer) DrawDot(size float64, pos cp.Vector, fill cp.FColor, data interface{}) {
	x, y := d.camera.WorldToScreen(pos.X, pos.Y)
	vector.DrawFilledRect(d.screen, float32(x-size/2), float32(y-size/2), float32(size), float32(size), fcolorToRGBA(fill), false)
}

func (d *debugDrawer) Flags() uint {
	return cp.DRAW_SHAPES | cp.DRAW_CONSTRAINTS
}

func (d *debugDrawer) OutlineColor() cp.FColor {
	return cp.FColor{R: 0.2, G: 1.0, B: 0.2, A: 1.0}
}

func (d *debugDrawer) ShapeColor(shape *cp.Shape, data interface{}) cp.FColor {
	switch {
	case shape == nil:
		return cp.FColor{R: 1, G: 1, B: 1, A: 1}
	case shape.Sensor():
		return cp.FColor{R: 1.0, G: 0.85, B: 0.2, A: 1.0}
	case shape.Body() != nil && shape.Body().GetType() == cp.BODY_STATIC:
		return cp.FColor{R: 0.4, G: 0.7, B: 1.0, A: 1.0}
	}
	return cp.FColor{R: 0.9, G: 0.4, B: 0.9, A: 1.0}
}

func (d *debugDrawer) ConstraintColor() cp.FColor {
	return cp.FColor{R: 0.7, G: 0.7, B: 0.7, A: 1.0}
}

func (d *debugDrawer) CollisionPointColor() cp.FColor {
	return cp.FColor{R: 1.0, G: 0.1, B: 0.1, A: 1.0}
}

func (d *debugDrawer) Data() interface{} { return nil }

func fcolorToRGBA(c cp.FColor) color.RGBA {
	clamp := func(v float32) uint8 {
		return uint8(common.Clamp(float64(v), 0, 1) * 255)
	}
	return color.RGBA{R: clamp(c.R), G: clamp(c.G), B: clamp(c.B), A: clamp(c.A)}
}
