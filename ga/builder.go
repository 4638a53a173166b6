package ga

import (
	"sort"

	"github.com/sarchlab/greenwave/randengine"
)

// Builder builds optimizers.
type Builder struct {
	rand      *randengine.Engine
	runner    Runner
	junctions []string

	generations      int
	populationSize   int
	mutationRate     float64
	mutationStrength float64
	threshold        float64
	penaltyFactor    float64
}

// MakeBuilder creates a Builder with the default search parameters.
func MakeBuilder() Builder {
	return Builder{
		generations:      30,
		populationSize:   25,
		mutationRate:     0.2,
		mutationStrength: 1.0,
		threshold:        5.0,
		penaltyFactor:    1.0,
	}
}

// WithRandEngine sets the random engine all of the search's randomness is
// drawn from.
func (b Builder) WithRandEngine(rand *randengine.Engine) Builder {
	b.rand = rand
	return b
}

// WithRunner sets the runner that scores candidates.
func (b Builder) WithRunner(runner Runner) Builder {
	b.runner = runner
	return b
}

// WithJunctionNames sets the junctions whose timings are searched over.
func (b Builder) WithJunctionNames(names []string) Builder {
	b.junctions = names
	return b
}

// WithGenerations sets the number of generations to evolve.
func (b Builder) WithGenerations(generations int) Builder {
	b.generations = generations
	return b
}

// WithPopulationSize sets the number of candidates per generation.
func (b Builder) WithPopulationSize(size int) Builder {
	b.populationSize = size
	return b
}

// WithMutationRate sets the probability that a child's gene mutates.
func (b Builder) WithMutationRate(rate float64) Builder {
	b.mutationRate = rate
	return b
}

// WithMutationStrength sets the largest shift a mutation applies to a
// gene's red and green durations.
func (b Builder) WithMutationStrength(strength float64) Builder {
	b.mutationStrength = strength
	return b
}

// WithPenalty sets the red-green gap below which a gene is penalized, and
// the factor the shortfall is charged at.
func (b Builder) WithPenalty(threshold, factor float64) Builder {
	b.threshold = threshold
	b.penaltyFactor = factor
	return b
}

func (b Builder) parametersMustBeValid() {
	if b.rand == nil {
		panic("rand engine is not given")
	}

	if b.runner == nil {
		panic("runner is not given")
	}

	if len(b.junctions) == 0 {
		panic("junction names are not given")
	}

	if b.generations < 1 {
		panic("generation count must be positive")
	}

	if b.populationSize < 2 {
		panic("population size must be at least two")
	}

	if b.mutationRate < 0 || b.mutationRate > 1 {
		panic("mutation rate must be between 0 and 1")
	}

	if b.mutationStrength < 0 {
		panic("mutation strength must not be negative")
	}

	if b.threshold < 0 || b.penaltyFactor < 0 {
		panic("penalty threshold and factor must not be negative")
	}
}

// Build creates the optimizer.
func (b Builder) Build() *Optimizer {
	b.parametersMustBeValid()

	o := new(Optimizer)
	o.rand = b.rand
	o.runner = b.runner
	o.junctions = append([]string(nil), b.junctions...)
	sort.Strings(o.junctions)
	o.generations = b.generations
	o.populationSize = b.populationSize
	o.mutationRate = b.mutationRate
	o.mutationStrength = b.mutationStrength
	o.threshold = b.threshold
	o.penaltyFactor = b.penaltyFactor

	return o
}
