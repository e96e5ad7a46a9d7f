package tui

import (
	"math"

	"github.com/vovakirdan/tui-novel/internal/core"
	"github.com/vovakirdan/tui-novel/internal/engine"
	"github.com/vovakirdan/tui-novel/internal/rig"
)

// drawFigure rasterizes the character meshes into r. The rig origin sits
// at the figure's normalized position inside r, model y pointing up.
func drawFigure(s *core.Screen, r core.Rect, fig engine.Figure) {
	lo, hi, ok := rig.Bounds(fig.Meshes)
	if !ok {
		return
	}
	ax := float64(r.X) + fig.Position.X*float64(r.W)
	ay := float64(r.Y) + fig.Position.Y*float64(r.H)

	x0 := core.Clamp(int(math.Floor(ax+lo.X)), r.X, r.Right())
	x1 := core.Clamp(int(math.Ceil(ax+hi.X)), r.X, r.Right())
	y0 := core.Clamp(int(math.Floor(ay-hi.Y)), r.Y, r.Bottom())
	y1 := core.Clamp(int(math.Ceil(ay-lo.Y)), r.Y, r.Bottom())

	// Later slots draw over earlier ones.
	for _, m := range fig.Meshes {
		for cy := y0; cy < y1; cy++ {
			for cx := x0; cx < x1; cx++ {
				p := core.V(float64(cx)+0.5-ax, ay-(float64(cy)+0.5))
				if covers(m, p) {
					s.SetFG(cx, cy, m.Glyph, m.Color)
				}
			}
		}
	}
}

// covers reports whether p lies inside any triangle of m.
func covers(m rig.Mesh, p core.Vec2) bool {
	for i := 0; i+2 < len(m.Indices); i += 3 {
		a, b, c := m.Indices[i], m.Indices[i+1], m.Indices[i+2]
		if a >= len(m.Vertices) || b >= len(m.Vertices) || c >= len(m.Vertices) {
			continue
		}
		if inTriangle(p, m.Vertices[a], m.Vertices[b], m.Vertices[c]) {
			return true
		}
	}
	return false
}

func inTriangle(p, a, b, c core.Vec2) bool {
	d1 := cross(p, a, b)
	d2 := cross(p, b, c)
	d3 := cross(p, c, a)
	hasNeg := d1 < 0 || d2 < 0 || d3 < 0
	hasPos := d1 > 0 || d2 > 0 || d3 > 0
	return !(hasNeg && hasPos)
}

func cross(p, a, b core.Vec2) float64 {
	return (p.X-b.X)*(a.Y-b.Y) - (a.X-b.X)*(p.Y-b.Y)
}
