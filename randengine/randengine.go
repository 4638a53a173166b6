// Package randengine wraps golang.org/x/exp/rand with the distributions that
// the simulator samples from. All draws come from one seeded source, so a run
// is reproducible from its seed.
package randengine

import (
	"log"

	"golang.org/x/exp/rand"
)

// An Engine is a seeded random source.
type Engine struct {
	*rand.Rand
}

// New creates an Engine seeded with the given seed.
func New(seed uint64) *Engine {
	return &Engine{Rand: rand.New(rand.NewSource(seed))}
}

// DiscreteDistribution picks an index with probability proportional to its
// weight. The weights must sum to a positive value.
func (e *Engine) DiscreteDistribution(weight []float64) int {
	random := .0
	for _, w := range weight {
		random += w
	}

	if random <= 0 {
		log.Panicf("randengine: DiscreteDistribution: total weight %f", random)
	}

	random *= e.Float64()
	sum := 0.
	for i, w := range weight {
		sum += w
		if sum > random {
			return i
		}
	}

	return len(weight) - 1
}

// PTrue returns true with probability p.
func (e *Engine) PTrue(p float64) bool {
	return e.Float64() < p
}

// Uniform draws from [lower, upper).
func (e *Engine) Uniform(lower, upper float64) float64 {
	return lower + e.Float64()*(upper-lower)
}

// TruncNormal draws from a normal distribution with the given mean and
// standard deviation, rejecting samples outside [lower, upper].
func (e *Engine) TruncNormal(mean, std, lower, upper float64) float64 {
	if lower > upper {
		log.Panicf("randengine: TruncNormal: bounds [%f, %f]", lower, upper)
	}

	for {
		x := mean + std*e.NormFloat64()
		if x >= lower && x <= upper {
			return x
		}
	}
}

// Exponential draws from an exponential distribution with the given mean.
func (e *Engine) Exponential(mean float64) float64 {
	return e.ExpFloat64() * mean
}
