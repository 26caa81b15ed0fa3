package component

// Input is the held-key snapshot the driver supplies for one tick.
type Input struct {
	Left   bool
	Right  bool
	Run    bool
	Jump   bool
	Escape bool
}

// MoveX is -1, 0 or 1. Left wins when both directions are held.
func (in Input) MoveX() float64 {
	if in.Left {
		return -1
	}
	if in.Right {
		return 1
	}
	return 0
}
