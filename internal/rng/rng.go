// Package rng provides the single seedable randomness source the rest of
// the engine draws through. No component is allowed to call math/rand's
// package-level functions directly; everything routes through a *Source so
// a seed fully determines an output trace.
package rng

import "math/rand"

// Source is a seedable draw source. It wraps math/rand rather than
// introducing a third-party generator: nothing in the retrieved pack reaches
// for one, and math/rand's Source interface already gives deterministic,
// reseedable streams, which is all the contract in the spec's RNG service
// requires.
type Source struct {
	r *rand.Rand
}

// NewRunSource constructs the run-level generator bound to seed. Call this
// exactly once per engine.init; its seed is recorded in the run config.
func NewRunSource(seed int64) *Source {
	return &Source{r: rand.New(rand.NewSource(seed))}
}

// Sub derives a motor's private sub-stream by mixing a draw from the parent
// stream with the motor's id. The result is deterministic in the run seed,
// the motor id, and the order in which Sub calls are made on the parent (see
// seedSnapshot). Deriving every sub-stream once at fleet init is what lets a
// future parallel fleet loop hand each goroutine its own Source without
// losing reproducibility.
func (s *Source) Sub(motorID int) *Source {
	mixed := mix64(uint64(s.seedSnapshot())^uint64(motorID)*0x9E3779B97F4A7C15 + 1)
	return &Source{r: rand.New(rand.NewSource(int64(mixed)))}
}

// seedSnapshot draws a value from the parent stream to fold into a child
// seed. Each call advances the parent stream, so deriving sub-streams for
// motor 0 then motor 1 is not the same as the reverse order — callers that
// need order-independent sub-streams should derive them once at fleet init
// and hold onto them, which is exactly what Factory does.
func (s *Source) seedSnapshot() int64 {
	return s.r.Int63()
}

func mix64(x uint64) uint64 {
	x ^= x >> 33
	x *= 0xff51afd7ed558ccd
	x ^= x >> 33
	x *= 0xc4ceb9fe1a85ec53
	x ^= x >> 33
	return x
}

// Uniform draws from [lo, hi).
func (s *Source) Uniform(lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + s.r.Float64()*(hi-lo)
}

// UniformInt draws an integer from [lo, hi] inclusive.
func (s *Source) UniformInt(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + s.r.Intn(hi-lo+1)
}

// Gaussian draws from N(mean, std^2). std <= 0 always returns mean.
func (s *Source) Gaussian(mean, std float64) float64 {
	if std <= 0 {
		return mean
	}
	return mean + s.r.NormFloat64()*std
}

// Bool returns true with probability p (clamped to [0, 1]).
func (s *Source) Bool(p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return s.r.Float64() < p
}

// Sign returns -1 or 1 with equal probability.
func (s *Source) Sign() float64 {
	if s.r.Intn(2) == 0 {
		return -1
	}
	return 1
}

// Choice draws an index in [0, len(weights)) with probability proportional
// to the corresponding weight. weights need not sum to 1.
func (s *Source) Choice(weights []float64) int {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		return 0
	}
	draw := s.r.Float64() * total
	acc := 0.0
	for i, w := range weights {
		acc += w
		if draw < acc {
			return i
		}
	}
	return len(weights) - 1
}
