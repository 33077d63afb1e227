package main

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/jakecoffman/cp"
	"golang.org/x/image/colornames"

	"github.com/milk9111/combatcore/common"
	"github.com/milk9111/combatcore/prefabs"
)

const defaultScale = 20.0

// View maps the ground plane onto the screen: +X to the right, +Z up, the
// origin at the screen center.
type View struct {
	Scale float64
	CX    float64
	CY    float64
}

func (v View) Point(p common.Vec3) (float32, float32) {
	return float32(v.CX + p.X*v.Scale), float32(v.CY - p.Z*v.Scale)
}

func (v View) cpPoint(p cp.Vector) (float32, float32) {
	return float32(v.CX + p.X*v.Scale), float32(v.CY - p.Y*v.Scale)
}

func (v View) Len(d float64) float32 {
	return float32(d * v.Scale)
}

// Palette is the viewer's color set. Entries missing from arena.yaml fall
// back to named colors.
type Palette struct {
	Player     color.Color
	Enemy      color.Color
	Dead       color.Color
	Wall       color.Color
	Projectile color.Color
	Aggro      color.Color
	Facing     color.Color
	Health     color.Color
}

func NewPalette(spec prefabs.ViewerSpec) Palette {
	pick := func(name string, fallback color.Color) color.Color {
		if c, ok := spec.Colors[name]; ok && c != nil && c.Color != nil {
			return c.Color
		}
		return fallback
	}
	return Palette{
		Player:     pick("player", colornames.Deepskyblue),
		Enemy:      pick("enemy", colornames.Crimson),
		Dead:       pick("dead", colornames.Dimgray),
		Wall:       pick("wall", colornames.Gray),
		Projectile: pick("projectile", colornames.Gold),
		Aggro:      pick("aggro", color.NRGBA{R: 255, G: 255, B: 255, A: 34}),
		Facing:     pick("facing", colornames.White),
		Health:     pick("health", colornames.Limegreen),
	}
}

func drawCircle(screen *ebiten.Image, v View, p common.Vec3, r float64, clr color.Color) {
	x, y := v.Point(p)
	vector.DrawFilledCircle(screen, x, y, v.Len(r), clr, true)
}

func drawBox(screen *ebiten.Image, v View, center common.Vec3, halfW, halfD float64, clr color.Color, fill bool) {
	x, y := v.Point(common.V(center.X-halfW, 0, center.Z+halfD))
	w, h := v.Len(2*halfW), v.Len(2*halfD)
	if fill {
		vector.DrawFilledRect(screen, x, y, w, h, clr, false)
		return
	}
	vector.StrokeRect(screen, x, y, w, h, 1, clr, false)
}

// drawFacing draws a tick from the center of a combatant along its yaw.
func drawFacing(screen *ebiten.Image, v View, p common.Vec3, yaw, length float64, clr color.Color) {
	rad := yaw * math.Pi / 180
	tip := p.Add(common.V(math.Sin(rad), 0, math.Cos(rad)).Scale(length))
	x0, y0 := v.Point(p)
	x1, y1 := v.Point(tip)
	vector.StrokeLine(screen, x0, y0, x1, y1, 2, clr, true)
}

func drawHealthBar(screen *ebiten.Image, v View, p common.Vec3, radius float64, frac float64, pal Palette) {
	x, y := v.Point(p)
	w := v.Len(2 * radius)
	x -= w / 2
	y -= v.Len(radius) + 6
	vector.DrawFilledRect(screen, x, y, w, 3, pal.Dead, false)
	vector.DrawFilledRect(screen, x, y, w*float32(common.Clamp(frac, 0, 1)), 3, pal.Health, false)
}

// chipmunkDrawer renders the collision space as outlines for debugging.
type chipmunkDrawer struct {
	screen *ebiten.Image
	view   View
}

func (d *chipmunkDrawer) DrawCircle(pos cp.Vector, angle, radius float64, outline, fill cp.FColor, data interface{}) {
	x, y := d.view.cpPoint(pos)
	c := fcolorToRGBA(outline)
	vector.StrokeCircle(d.screen, x, y, d.view.Len(radius), 1, c, true)
	ax, ay := d.view.cpPoint(cp.Vector{X: pos.X + math.Cos(angle)*radius, Y: pos.Y + math.Sin(angle)*radius})
	vector.StrokeLine(d.screen, x, y, ax, ay, 1, c, true)
}

func (d *chipmunkDrawer) DrawSegment(a, b cp.Vector, fill cp.FColor, data interface{}) {
	ax, ay := d.view.cpPoint(a)
	bx, by := d.view.cpPoint(b)
	vector.StrokeLine(d.screen, ax, ay, bx, by, 1, fcolorToRGBA(fill), true)
}

func (d *chipmunkDrawer) DrawFatSegment(a, b cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	ax, ay := d.view.cpPoint(a)
	bx, by := d.view.cpPoint(b)
	vector.StrokeLine(d.screen, ax, ay, bx, by, max(1, 2*d.view.Len(radius)), fcolorToRGBA(outline), true)
}

func (d *chipmunkDrawer) DrawPolygon(count int, verts []cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	c := fcolorToRGBA(outline)
	for i := 0; i < count; i++ {
		ax, ay := d.view.cpPoint(verts[i])
		bx, by := d.view.cpPoint(verts[(i+1)%count])
		vector.StrokeLine(d.screen, ax, ay, bx, by, 1, c, true)
	}
}

func (d *chipmunkDrawer) DrawDot(size float64, pos cp.Vector, fill cp.FColor, data interface{}) {
	x, y := d.view.cpPoint(pos)
	vector.DrawFilledCircle(d.screen, x, y, float32(size/2), fcolorToRGBA(fill), true)
}

func (d *chipmunkDrawer) Flags() uint {
	return cp.DRAW_SHAPES | cp.DRAW_COLLISION_POINTS
}

func (d *chipmunkDrawer) OutlineColor() cp.FColor {
	return cp.FColor{R: 0.2, G: 1.0, B: 0.2, A: 1.0}
}

func (d *chipmunkDrawer) ShapeColor(shape *cp.Shape, data interface{}) cp.FColor {
	if shape == nil {
		return cp.FColor{R: 1, G: 1, B: 1, A: 1}
	}
	if shape.Sensor() {
		return cp.FColor{R: 1.0, G: 0.85, B: 0.2, A: 1.0}
	}
	if shape.Body() != nil && shape.Body().GetType() == cp.BODY_STATIC {
		return cp.FColor{R: 0.4, G: 0.7, B: 1.0, A: 1.0}
	}
	return cp.FColor{R: 0.9, G: 0.4, B: 0.9, A: 1.0}
}

func (d *chipmunkDrawer) ConstraintColor() cp.FColor {
	return cp.FColor{R: 0.7, G: 0.7, B: 0.7, A: 1.0}
}

func (d *chipmunkDrawer) CollisionPointColor() cp.FColor {
	return cp.FColor{R: 1.0, G: 0.1, B: 0.1, A: 1.0}
}

func (d *chipmunkDrawer) Data() interface{} {
	return nil
}

func fcolorToRGBA(c cp.FColor) color.RGBA {
	clamp := func(v float32) uint8 {
		if v < 0 {
			v = 0
		}
		if v > 1 {
			v = 1
		}
		return uint8(v * 255)
	}
	return color.RGBA{R: clamp(c.R), G: clamp(c.G), B: clamp(c.B), A: clamp(c.A)}
}
