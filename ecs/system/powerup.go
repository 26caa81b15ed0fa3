package system

import (
	"github.com/milk9111/fanbuilder/ecs"
	"github.com/milk9111/fanbuilder/ecs/component"
	"github.com/milk9111/fanbuilder/prefabs"
)

// PowerupSystem slides released powerups along the ground like a patrolling
// enemy that never jumps.
type PowerupSystem struct {
	Physics prefabs.PhysicsSpec
}

func NewPowerupSystem(cfg prefabs.Config) *PowerupSystem {
	return &PowerupSystem{Physics: cfg.Physics}
}

func (s *PowerupSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	w.Powerups().Each(func(e ecs.Entity, p *component.Powerup) {
		if !p.Alive {
			return
		}
		res := stepWalker(w, &p.Body, s.Physics.Gravity, s.Physics.TerminalVelocity)
		if res.Fell {
			w.MarkRemoved(e)
			return
		}
		p.Grounded = res.Grounded
	})
}
