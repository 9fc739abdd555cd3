package decision

import "math"

// TickSize returns the exchange-mandated minimum price increment for the
// given price level.
func TickSize(price float64) float64 {
	switch {
	case price >= 1000:
		return 5.0
	case price >= 500:
		return 1.0
	case price >= 100:
		return 0.5
	case price >= 50:
		return 0.1
	case price >= 10:
		return 0.01
	default:
		return 0.001
	}
}

// RoundToTick snaps x to the nearest valid price on the tick grid.
// Returns 0 when x is not a number or tick is 0; callers treat 0 as
// "price unavailable" and suppress dependent output.
func RoundToTick(x, tick float64) float64 {
	if tick == 0 || math.IsNaN(x) {
		return 0
	}
	return math.Round(x/tick) * tick
}
