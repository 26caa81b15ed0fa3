package system

import (
	"github.com/milk9111/fanbuilder/ecs"
	"github.com/milk9111/fanbuilder/ecs/component"
)

// AnimationSystem advances cosmetic frames while editing. It never moves
// anything, so the level stays exactly as placed.
type AnimationSystem struct{}

func NewAnimationSystem() *AnimationSystem {
	return &AnimationSystem{}
}

func (s *AnimationSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	w.Enemies().Each(func(_ ecs.Entity, en *component.Enemy) {
		en.Anim.Step()
	})
	w.Coins().Each(func(_ ecs.Entity, c *component.Coin) {
		c.Anim.Step()
	})
}
