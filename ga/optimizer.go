// Package ga searches for per-junction signal timings with a genetic
// algorithm. Candidates are scored by simulating traffic under them, each
// score coming from a fresh run so that no run contaminates the next.
package ga

import (
	"math"
	"sort"

	"github.com/sarchlab/greenwave/randengine"
	"github.com/sarchlab/greenwave/timing"
)

// tournamentSize is the number of candidates drawn for one parent pick.
const tournamentSize = 3

// A Runner scores a timing candidate. MeanWait returns the mean time in
// seconds that vehicles spend waiting at lights in a run with the candidate
// applied. Lower is better. Implementations must build a fresh simulation
// for every call.
type Runner interface {
	MeanWait(c timing.Candidate) float64
}

// An Optimizer evolves a population of timing candidates towards low mean
// wait. All randomness comes from one engine and the junctions are visited
// in sorted name order, so a run is reproducible from its seed.
type Optimizer struct {
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

// scored pairs a candidate with its fitness.
type scored struct {
	candidate timing.Candidate
	fitness   float64
}

// Run evolves the population and returns the fittest candidate it ever
// evaluated, together with its fitness.
func (o *Optimizer) Run() (timing.Candidate, float64) {
	population := o.seedPopulation()

	var best scored
	for gen := 0; gen < o.generations; gen++ {
		ranked := o.evaluate(population)
		if gen == 0 || ranked[0].fitness < best.fitness {
			best = ranked[0]
		}

		log.Infof("generation %d/%d: best fitness %.3f",
			gen+1, o.generations, best.fitness)

		population = o.nextPopulation(ranked)
	}

	return best.candidate, best.fitness
}

func (o *Optimizer) seedPopulation() []timing.Candidate {
	population := make([]timing.Candidate, 0, o.populationSize)
	for i := 0; i < o.populationSize; i++ {
		population = append(population, o.randomCandidate())
	}

	return population
}

func (o *Optimizer) randomCandidate() timing.Candidate {
	c := make(timing.Candidate, len(o.junctions))
	for _, name := range o.junctions {
		c[name] = o.randomGene()
	}

	return c
}

func (o *Optimizer) randomGene() timing.Gene {
	g := timing.Gene{
		Red:   o.rand.Uniform(timing.MinRed, timing.MaxRed),
		Amber: o.rand.Uniform(timing.MinAmber, timing.MaxAmber),
	}
	g.RedAmber = g.Amber
	g.Green = o.rand.Uniform(timing.MinGreen, g.MaxGreen())

	return g
}

// evaluate scores the whole population and ranks it fittest first.
func (o *Optimizer) evaluate(population []timing.Candidate) []scored {
	ranked := make([]scored, 0, len(population))
	for _, c := range population {
		ranked = append(ranked, scored{
			candidate: c,
			fitness:   o.runner.MeanWait(c) + o.penalty(c),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].fitness < ranked[j].fitness
	})

	return ranked
}

// penalty charges candidates whose red and green phases are nearly equal.
// Such lights flip between streams too fast to drain either queue, and a
// run can score them well by luck.
func (o *Optimizer) penalty(c timing.Candidate) float64 {
	total := 0.0
	for _, name := range c.JunctionNames() {
		g := c[name]

		diff := math.Abs(g.Red - g.Green)
		if diff < o.threshold {
			total += o.penaltyFactor * (o.threshold - diff)
		}
	}

	return total
}

// nextPopulation keeps the fittest candidate as is and fills the rest of
// the population with mutated crossovers of tournament winners.
func (o *Optimizer) nextPopulation(ranked []scored) []timing.Candidate {
	next := make([]timing.Candidate, 0, o.populationSize)
	next = append(next, ranked[0].candidate)

	for len(next) < o.populationSize {
		child := o.crossover(o.selectParent(ranked), o.selectParent(ranked))
		o.mutate(child)
		next = append(next, child)
	}

	return next
}

// selectParent draws tournamentSize candidates with replacement and picks
// the fittest of them.
func (o *Optimizer) selectParent(ranked []scored) timing.Candidate {
	best := ranked[o.rand.Intn(len(ranked))]
	for i := 1; i < tournamentSize; i++ {
		rival := ranked[o.rand.Intn(len(ranked))]
		if rival.fitness < best.fitness {
			best = rival
		}
	}

	return best.candidate
}

// crossover builds a child that takes each junction's gene from either
// parent with equal probability.
func (o *Optimizer) crossover(p1, p2 timing.Candidate) timing.Candidate {
	child := make(timing.Candidate, len(o.junctions))
	for _, name := range o.junctions {
		if o.rand.PTrue(0.5) {
			child[name] = p1[name]
		} else {
			child[name] = p2[name]
		}
	}

	return child
}

// mutate perturbs each gene with probability mutationRate. Red and green
// shift by up to the mutation strength, amber by up to half of it, and the
// gene is clamped back into its bounds.
func (o *Optimizer) mutate(c timing.Candidate) {
	for _, name := range o.junctions {
		if !o.rand.PTrue(o.mutationRate) {
			continue
		}

		g := c[name]
		g.Red += o.rand.Uniform(-o.mutationStrength, o.mutationStrength)
		g.Green += o.rand.Uniform(-o.mutationStrength, o.mutationStrength)
		g.Amber += o.rand.Uniform(-o.mutationStrength/2, o.mutationStrength/2)
		c[name] = g.Clamped()
	}
}
