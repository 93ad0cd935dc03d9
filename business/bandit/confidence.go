package bandit

import "math"

// z for a 95% Wilson score interval.
const wilsonZ = 1.96

// ConfidenceBounds is the estimator output. Always 0 <= Lower <= Upper <= 1.
type ConfidenceBounds struct {
	Lower            float64
	Upper            float64
	ExplorationBonus float64
}

// WilsonBounds computes the 95% Wilson score interval for the observed
// success proportion plus a 1/sqrt(n+1) exploration bonus. Negative counts
// are clamped to zero; zero observations yield maximum uncertainty (0, 1, 1).
func WilsonBounds(successes, failures float64) ConfidenceBounds {
	if successes < 0 {
		successes = 0
	}
	if failures < 0 {
		failures = 0
	}

	n := successes + failures
	if n == 0 {
		return ConfidenceBounds{Lower: 0.0, Upper: 1.0, ExplorationBonus: 1.0}
	}

	p := successes / n
	z2 := wilsonZ * wilsonZ

	denom := 1 + z2/n
	center := p + z2/(2*n)
	margin := wilsonZ * math.Sqrt(p*(1-p)/n+z2/(4*n*n))

	lower := (center - margin) / denom
	upper := (center + margin) / denom

	if lower < 0 {
		lower = 0
	}
	if upper > 1 {
		upper = 1
	}
	if lower > upper {
		lower = upper
	}

	return ConfidenceBounds{
		Lower:            lower,
		Upper:            upper,
		ExplorationBonus: 1 / math.Sqrt(n+1),
	}
}
