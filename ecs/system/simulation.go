package system

import (
	"github.com/milk9111/fanbuilder/ecs"
	"github.com/milk9111/fanbuilder/prefabs"
)

// NewSimulation returns the playtest schedule. The order is fixed: later
// systems see the positions earlier ones already wrote this tick.
func NewSimulation(cfg prefabs.Config, character prefabs.CharacterSpec) *ecs.Scheduler {
	return ecs.NewScheduler(
		NewPlayerSystem(cfg, character),
		NewEnemySystem(cfg),
		NewCoinSystem(),
		NewPowerupSystem(cfg),
	)
}

// NewEditSchedule returns the cosmetic-only schedule used while editing.
func NewEditSchedule() *ecs.Scheduler {
	return ecs.NewScheduler(NewAnimationSystem())
}
