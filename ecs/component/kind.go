package component

import "fmt"

// Kind tags the closed set of entity variants a World can hold.
type Kind uint8

const (
	KindNone Kind = iota
	KindTile
	KindEnemy
	KindCoin
	KindPowerup
	KindPlayer
)

func (k Kind) String() string {
	switch k {
	case KindTile:
		return "tile"
	case KindEnemy:
		return "enemy"
	case KindCoin:
		return "coin"
	case KindPowerup:
		return "powerup"
	case KindPlayer:
		return "player"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Cell is a grid coordinate. Pixel position is Cell * grid size.
type Cell struct {
	X, Y int
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Less orders cells row-major.
func (c Cell) Less(o Cell) bool {
	if c.Y != o.Y {
		return c.Y < o.Y
	}
	return c.X < o.X
}
