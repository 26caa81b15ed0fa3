package component

// PowerState is one node of the player's power state machine. Each state
// owns its reaction to pickups and damage.
type PowerState interface {
	Name() Power
	OnPowerup(ctx *PowerStateContext, kind PowerupType)
	OnDamage(ctx *PowerStateContext)
}

// PowerStateContext gives a state controlled access to the player.
type PowerStateContext struct {
	Player      *Player
	ChangeState func(state PowerState)
	// Invincible starts an invincibility window of the given length.
	Invincible func(ticks int)
	// Die costs the player one life.
	Die func()
	// DamageTicks is the invincibility window granted after losing power.
	DamageTicks int
}
