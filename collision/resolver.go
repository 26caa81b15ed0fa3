// Package collision resolves moving boxes against the static tiles of a
// World, one axis at a time.
package collision

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/fanbuilder/common"
	"github.com/milk9111/fanbuilder/ecs"
)

// Solid is a static blocker in pixel space.
type Solid struct {
	Entity ecs.Entity
	Rect   common.Rect
	OneWay bool
}

// Contact describes the blocker an axis pass was clamped against.
type Contact struct {
	Hit   bool
	Solid Solid
	// Velocity is the axis velocity before it was zeroed.
	Velocity float64
}

// Result is the outcome of a full horizontal-then-vertical resolution.
type Result struct {
	X Contact
	Y Contact
	// Grounded is set when the vertical pass landed on a top surface.
	Grounded bool
	// Ceiling is set when the vertical pass hit a bottom surface.
	Ceiling bool
}

// Gather collects the tiles near the swept area of r moving by vel, in
// row-major order. Tiles that neither block nor act as platforms are skipped.
func Gather(w *ecs.World, r common.Rect, vel cp.Vector) []Solid {
	g := float64(w.Bounds().GridSize)
	swept := r.Union(r.Translate(vel))
	swept.X -= g
	swept.Y -= g
	swept.Width += 2 * g
	swept.Height += 2 * g

	var out []Solid
	for _, e := range w.TilesIn(swept) {
		t := w.Tiles().Get(e)
		if !t.Solid() && !t.OneWay() {
			continue
		}
		out = append(out, Solid{Entity: e, Rect: w.Bounds().CellRect(t.Cell), OneWay: t.OneWay()})
	}
	return out
}

// Resolve moves r by vel horizontally, then vertically, clamping against
// solids. The fixed order keeps wall contact out of the vertical pass.
func Resolve(r *common.Rect, vel *cp.Vector, solids []Solid) Result {
	var res Result
	res.X = MoveX(r, vel, solids)
	res.Y = MoveY(r, vel, solids)
	if res.Y.Hit {
		res.Grounded = res.Y.Velocity > 0
		res.Ceiling = res.Y.Velocity < 0
	}
	return res
}

// MoveX applies vel.X and clamps against the nearest conflicting solid on
// the side matching the velocity sign. One-way platforms never block
// horizontally.
func MoveX(r *common.Rect, vel *cp.Vector, solids []Solid) Contact {
	if vel.X == 0 {
		return Contact{}
	}
	r.X += vel.X
	best := -1
	for i, s := range solids {
		if s.OneWay || !r.Intersects(s.Rect) {
			continue
		}
		if best < 0 || nearerX(vel.X, s.Rect, solids[best].Rect) {
			best = i
		}
	}
	if best < 0 {
		return Contact{}
	}
	s := solids[best]
	if vel.X > 0 {
		r.X = s.Rect.Left() - r.Width
	} else {
		r.X = s.Rect.Right()
	}
	c := Contact{Hit: true, Solid: s, Velocity: vel.X}
	vel.X = 0
	return c
}

// MoveY applies vel.Y and clamps against the nearest conflicting solid.
// A one-way platform only conflicts when falling onto it from above: the
// actor's bottom must have been at or above the platform top before moving.
func MoveY(r *common.Rect, vel *cp.Vector, solids []Solid) Contact {
	if vel.Y == 0 {
		return Contact{}
	}
	prevBottom := r.Bottom()
	r.Y += vel.Y
	best := -1
	for i, s := range solids {
		if !r.Intersects(s.Rect) {
			continue
		}
		if s.OneWay && (vel.Y < 0 || prevBottom > s.Rect.Top()) {
			continue
		}
		if best < 0 || nearerY(vel.Y, s.Rect, solids[best].Rect) {
			best = i
		}
	}
	if best < 0 {
		return Contact{}
	}
	s := solids[best]
	if vel.Y > 0 {
		r.Y = s.Rect.Top() - r.Height
	} else {
		r.Y = s.Rect.Bottom()
	}
	c := Contact{Hit: true, Solid: s, Velocity: vel.Y}
	vel.Y = 0
	return c
}

// nearerX reports whether a is strictly closer than b to an actor moving
// with sign(v). Ties keep the earlier solid, which is row-major order.
func nearerX(v float64, a, b common.Rect) bool {
	if v > 0 {
		return a.Left() < b.Left()
	}
	return a.Right() > b.Right()
}

func nearerY(v float64, a, b common.Rect) bool {
	if v > 0 {
		return a.Top() < b.Top()
	}
	return a.Bottom() > b.Bottom()
}

// RestingOn returns the surface r stands on: a solid or platform whose top
// equals r's bottom and which overlaps r horizontally.
func RestingOn(r common.Rect, solids []Solid) (Solid, bool) {
	for _, s := range solids {
		if s.Rect.Top() != r.Bottom() {
			continue
		}
		if r.X < s.Rect.Right() && r.Right() > s.Rect.Left() {
			return s, true
		}
	}
	return Solid{}, false
}
