package prefabs

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/fanbuilder/ecs"
)

// WorldConfig returns the settings a new ecs.World is built from.
func (c Config) WorldConfig() ecs.Config {
	return ecs.Config{
		Bounds: ecs.Bounds{
			Cols:     c.World.Cols,
			Rows:     c.World.Rows,
			GridSize: c.World.GridSize,
		},
		Spawn:        cp.Vector{X: c.World.SpawnX, Y: c.World.SpawnY},
		EnemySpeed:   c.Enemy.Speed,
		PowerupSpeed: c.Powerup.Speed,
		AnimTicks:    c.Timers.AnimTicks,
		Seed:         c.World.Seed,
	}
}

// NewWorld builds an empty level with a player at the spawn point holding
// the configured number of lives.
func (c Config) NewWorld(character string) (*ecs.World, error) {
	w, err := ecs.NewWorld(c.WorldConfig())
	if err != nil {
		return nil, err
	}
	p := w.Player()
	p.Lives = c.World.Lives
	p.Character = character
	return w, nil
}
