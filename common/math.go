package common

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Sign returns -1, 0 or 1.
func Sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

// FloorDiv divides rounding toward negative infinity, so pixel -1 maps to cell -1.
func FloorDiv(v float64, size int) int {
	if size <= 0 {
		return 0
	}
	q := int(v) / size
	if v < 0 && float64(q*size) != v {
		q--
	}
	return q
}
