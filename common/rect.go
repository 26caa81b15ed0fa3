package common

import "github.com/jakecoffman/cp"

// Rect is an axis-aligned box in pixel space with Y growing downward.
type Rect struct {
	X, Y          float64
	Width, Height float64
}

func (r Rect) Left() float64   { return r.X }
func (r Rect) Right() float64  { return r.X + r.Width }
func (r Rect) Top() float64    { return r.Y }
func (r Rect) Bottom() float64 { return r.Y + r.Height }

func (r Rect) CenterY() float64 {
	return r.Y + r.Height/2
}

// Intersects reports strict overlap. Rects that only share an edge do not
// intersect, so an actor resting on a tile is not colliding with it.
func (r Rect) Intersects(other Rect) bool {
	return r.X < other.X+other.Width &&
		r.X+r.Width > other.X &&
		r.Y < other.Y+other.Height &&
		r.Y+r.Height > other.Y
}

// Contains reports whether p lies inside r. The right and bottom edges are
// exclusive so a point on a cell boundary belongs to exactly one cell.
func (r Rect) Contains(p cp.Vector) bool {
	return p.X >= r.X && p.X < r.X+r.Width && p.Y >= r.Y && p.Y < r.Y+r.Height
}

// Union returns the smallest rect covering both.
func (r Rect) Union(other Rect) Rect {
	minX := min(r.X, other.X)
	minY := min(r.Y, other.Y)
	maxX := max(r.Right(), other.Right())
	maxY := max(r.Bottom(), other.Bottom())
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Translate returns r moved by v.
func (r Rect) Translate(v cp.Vector) Rect {
	r.X += v.X
	r.Y += v.Y
	return r
}

// BB converts r to a chipmunk bounding box. B holds the smaller Y, which is
// the top edge in screen space.
func (r Rect) BB() cp.BB {
	return cp.BB{L: r.X, B: r.Y, R: r.Right(), T: r.Bottom()}
}

// RectFromBB is the inverse of Rect.BB.
func RectFromBB(bb cp.BB) Rect {
	return Rect{X: bb.L, Y: bb.B, Width: bb.R - bb.L, Height: bb.T - bb.B}
}
