package component

const DefaultCoinValue = 1

// Coin does not move. It only animates and waits to be collected.
type Coin struct {
	Body
	Value int
	Alive bool
	Anim  Animation
}
