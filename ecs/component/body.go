package component

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/fanbuilder/common"
)

// Body is the pixel-space kinematic state shared by every moving entity.
// Pos is the top-left corner.
type Body struct {
	Pos    cp.Vector
	Vel    cp.Vector
	Width  float64
	Height float64
}

func (b *Body) Rect() common.Rect {
	return common.Rect{X: b.Pos.X, Y: b.Pos.Y, Width: b.Width, Height: b.Height}
}

// SetRect copies the position of r back into the body.
func (b *Body) SetRect(r common.Rect) {
	b.Pos.X = r.X
	b.Pos.Y = r.Y
}
