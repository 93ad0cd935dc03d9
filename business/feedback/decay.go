package feedback

import "math"

// decayFactor is the multiplicative weight applied to existing counts each
// update period, chosen so one observation keeps half its weight after the
// configured half-life. At 14 days and 4 updates/day that is
// 0.5^(1/56) ≈ 0.9877 — deliberately gentle; evidence does not evaporate
// inside the half-life window.
func decayFactor(halfLifeDays float64, updatesPerDay int) float64 {
	if halfLifeDays <= 0 || updatesPerDay <= 0 {
		return 1.0
	}
	periods := halfLifeDays * float64(updatesPerDay)
	return math.Pow(0.5, 1.0/periods)
}

// medianOf returns the median of vals. The slice is reordered.
func medianOf(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}

	// insertion sort; per-creator outcome sets are small
	for i := 1; i < len(vals); i++ {
		for j := i; j > 0 && vals[j] < vals[j-1]; j-- {
			vals[j], vals[j-1] = vals[j-1], vals[j]
		}
	}

	mid := len(vals) / 2
	if len(vals)%2 == 1 {
		return vals[mid]
	}
	return (vals[mid-1] + vals[mid]) / 2
}
