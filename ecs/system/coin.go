package system

import (
	"github.com/milk9111/fanbuilder/ecs"
	"github.com/milk9111/fanbuilder/ecs/component"
)

// CoinSystem only spins coins. Pickup is resolved by the player.
type CoinSystem struct{}

func NewCoinSystem() *CoinSystem {
	return &CoinSystem{}
}

func (s *CoinSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	w.Coins().Each(func(_ ecs.Entity, c *component.Coin) {
		if c.Alive {
			c.Anim.Step()
		}
	})
}
