package system

import (
	"math"

	"github.com/milk9111/fanbuilder/collision"
	"github.com/milk9111/fanbuilder/ecs"
	"github.com/milk9111/fanbuilder/ecs/component"
)

// walkResult reports what stepWalker did to a patrolling body.
type walkResult struct {
	Grounded bool
	Reversed bool
	// Fell is set once the body dropped out through the bottom of the level.
	Fell bool
}

// stepWalker moves a patrolling body one tick: gravity, then a horizontal
// pass that reverses on a solid or the level edge, then the vertical pass.
func stepWalker(w *ecs.World, body *component.Body, gravity, terminal float64) walkResult {
	var res walkResult
	body.Vel.Y = math.Min(body.Vel.Y+gravity, terminal)

	r := body.Rect()
	solids := collision.Gather(w, r, body.Vel)
	if c := collision.MoveX(&r, &body.Vel, solids); c.Hit {
		body.Vel.X = -c.Velocity
		res.Reversed = true
	}

	width := w.Bounds().Width()
	switch {
	case r.X <= 0 && body.Vel.X < 0:
		r.X = 0
		body.Vel.X = -body.Vel.X
		res.Reversed = true
	case r.Right() >= width && body.Vel.X > 0:
		r.X = width - r.Width
		body.Vel.X = -body.Vel.X
		res.Reversed = true
	}

	if c := collision.MoveY(&r, &body.Vel, solids); c.Hit {
		res.Grounded = c.Velocity > 0
	}
	if !res.Grounded {
		if _, ok := collision.RestingOn(r, solids); ok && body.Vel.Y >= 0 {
			res.Grounded = true
		}
	}
	res.Fell = r.Top() >= w.Bounds().Height()

	body.SetRect(r)
	return res
}
