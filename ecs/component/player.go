package component

// Power is the player's size/ability state.
type Power uint8

const (
	PowerSmall Power = iota
	PowerBig
	PowerFire
)

func (p Power) String() string {
	switch p {
	case PowerSmall:
		return "small"
	case PowerBig:
		return "big"
	case PowerFire:
		return "fire"
	default:
		return "unknown"
	}
}

// Player is the singleton avatar driven by input during playtest.
type Player struct {
	Body
	OnGround bool
	Power    Power

	Invincible      bool
	InvincibleTicks int

	Running     bool
	FacingRight bool

	// JumpAvailable is re-armed only while grounded with the jump key up, so
	// holding jump through a landing does not bounce again.
	JumpAvailable bool
	JumpHeld      bool
	JumpTimer     int

	// RunTimer counts consecutive ticks of sustained running toward the next
	// P-meter increment.
	RunTimer int
	PMeter   int

	Lives int
	Score int
	Coins int

	Character string
	// Dead is set by the simulation when a small player takes damage.
	Dead bool
}

// ResetForSpawn restores the per-attempt state while keeping lives, score,
// coins and character.
func (p *Player) ResetForSpawn(x, y float64) {
	p.Pos.X = x
	p.Pos.Y = y
	p.Vel.X = 0
	p.Vel.Y = 0
	p.OnGround = false
	p.Power = PowerSmall
	p.Invincible = false
	p.InvincibleTicks = 0
	p.Running = false
	p.FacingRight = true
	p.JumpAvailable = false
	p.JumpHeld = false
	p.JumpTimer = 0
	p.RunTimer = 0
	p.PMeter = 0
	p.Dead = false
}
