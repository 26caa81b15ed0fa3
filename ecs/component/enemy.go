package component

// EnemyType is the subtype of an enemy.
type EnemyType string

const (
	EnemyGoomba  EnemyType = "goomba"
	EnemyKoopa   EnemyType = "koopa"
	EnemyPiranha EnemyType = "piranha"
)

func (t EnemyType) Valid() bool {
	switch t {
	case EnemyGoomba, EnemyKoopa, EnemyPiranha:
		return true
	default:
		return false
	}
}

// Patrols reports whether the subtype walks back and forth.
func (t EnemyType) Patrols() bool {
	return t != EnemyPiranha
}

// Jumps reports whether the subtype hops at random while grounded.
func (t EnemyType) Jumps() bool {
	return t == EnemyKoopa
}

func (t EnemyType) Stompable() bool {
	return t != EnemyPiranha
}

type Enemy struct {
	Body
	Type        EnemyType
	FacingRight bool
	Stompable   bool
	Alive       bool
	Grounded    bool
	Anim        Animation
}
