package sim

import "math"

// cosFloor bounds |cos| away from zero wherever it appears as a divisor.
const cosFloor = 1e-9

// GuardCos returns c, or ±cosFloor when |c| is smaller, keeping the sign.
func GuardCos(c float64) float64 {
	if math.Abs(c) >= cosFloor {
		return c
	}
	if math.Signbit(c) {
		return -cosFloor
	}
	return cosFloor
}

// SpeedFloor is the speed used as a divisor: never below 1 ft/s.
func SpeedFloor(v float64) float64 {
	return math.Max(v, 1)
}

// Clamp limits x to [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	return math.Max(math.Min(hi, x), lo)
}
