package bandit

import (
	"math/rand"
	"sync"
	"time"
)

// Sampler draws Thompson samples from confidence intervals. The randomness
// is intentional: wide intervals occasionally sample high, which is the
// exploration mechanism, so callers must not replace draws with midpoints.
// The source is seedable so tests can fix it.
type Sampler struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSampler returns a sampler seeded from the clock.
func NewSampler() *Sampler {
	return NewSeededSampler(time.Now().UnixNano())
}

// NewSeededSampler returns a sampler with a fixed seed for reproducible runs.
func NewSeededSampler(seed int64) *Sampler {
	return &Sampler{rng: rand.New(rand.NewSource(seed))}
}

// Draw returns one uniform sample from [lower, upper], clamped into [0, 1].
func (s *Sampler) Draw(lower, upper float64) float64 {
	if upper < lower {
		lower, upper = upper, lower
	}

	s.mu.Lock()
	u := s.rng.Float64()
	s.mu.Unlock()

	v := lower + (upper-lower)*u
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
