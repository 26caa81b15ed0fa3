package system

import (
	"github.com/milk9111/fanbuilder/ecs"
	"github.com/milk9111/fanbuilder/ecs/component"
	"github.com/milk9111/fanbuilder/prefabs"
)

// EnemySystem patrols enemies back and forth under gravity.
type EnemySystem struct {
	Physics prefabs.PhysicsSpec
	Enemy   prefabs.EnemySpec
}

func NewEnemySystem(cfg prefabs.Config) *EnemySystem {
	return &EnemySystem{Physics: cfg.Physics, Enemy: cfg.Enemy}
}

func (s *EnemySystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	w.Enemies().Each(func(e ecs.Entity, en *component.Enemy) {
		if !en.Alive {
			return
		}
		res := stepWalker(w, &en.Body, s.Physics.Gravity, s.Physics.TerminalVelocity)
		if res.Fell {
			w.MarkRemoved(e)
			return
		}
		if en.Vel.X != 0 {
			en.FacingRight = en.Vel.X > 0
		}
		en.Grounded = res.Grounded
		if en.Type.Jumps() && en.Grounded && w.Rand().Float64() < s.Enemy.JumpChance {
			en.Vel.Y = -s.Enemy.JumpSpeed
			en.Grounded = false
		}
		en.Anim.Step()
	})
}
