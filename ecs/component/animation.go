package component

// Animation is a cosmetic frame counter advanced once per tick.
type Animation struct {
	Frame  int
	Frames int
	Timer  int
	// Rate is the number of ticks each frame is held.
	Rate int
}

func NewAnimation(frames, rate int) Animation {
	return Animation{Frames: frames, Rate: rate}
}

// Step advances the timer and wraps the frame.
func (a *Animation) Step() {
	if a.Frames <= 1 || a.Rate <= 0 {
		return
	}
	a.Timer++
	if a.Timer >= a.Rate {
		a.Timer = 0
		a.Frame = (a.Frame + 1) % a.Frames
	}
}
