package timing

import (
	"sort"

	"github.com/samber/lo"

	"github.com/sarchlab/greenwave/roadnet"
	"github.com/sarchlab/greenwave/signal"
	"github.com/sarchlab/greenwave/sim"
)

// Bounds that every gene is clamped into. The green phase is additionally
// limited by what the red phase can pay for, see Gene.MaxGreen.
const (
	MinRed   = 10.0
	MaxRed   = 20.0
	MinAmber = 2.0
	MaxAmber = 5.0
	MinGreen = 10.0
	GreenCap = 40.0
)

// A Gene is one junction's timing setting: the phase durations shared by
// all roads leaving the junction.
type Gene struct {
	Red      float64
	Green    float64
	Amber    float64
	RedAmber float64
}

// MaxGreen returns the longest green duration the gene's red phase can pay
// for, red minus both intermediate phases, floored at MinGreen and capped
// at GreenCap.
func (g Gene) MaxGreen() float64 {
	return lo.Clamp(g.Red-2*g.Amber, MinGreen, GreenCap)
}

// Clamped returns the gene forced into the configured bounds. The red-amber
// duration always equals the amber duration.
func (g Gene) Clamped() Gene {
	out := g
	out.Red = lo.Clamp(g.Red, MinRed, MaxRed)
	out.Amber = lo.Clamp(g.Amber, MinAmber, MaxAmber)
	out.RedAmber = out.Amber
	out.Green = lo.Clamp(g.Green, MinGreen, out.MaxGreen())

	return out
}

// Swapped returns the gene with the red and green durations exchanged.
func (g Gene) Swapped() Gene {
	out := g
	out.Red, out.Green = g.Green, g.Red

	return out
}

// Timings converts the gene to light phase durations.
func (g Gene) Timings() signal.Timings {
	return signal.Timings{
		Red:      sim.VTimeInSec(g.Red),
		RedAmber: sim.VTimeInSec(g.RedAmber),
		Green:    sim.VTimeInSec(g.Green),
		Amber:    sim.VTimeInSec(g.Amber),
	}
}

// A Candidate assigns one gene per junction. It is the unit the optimizer
// searches over.
type Candidate map[string]Gene

// JunctionNames returns the junction names the candidate carries genes for,
// sorted so that iteration order is the same in every run.
func (c Candidate) JunctionNames() []string {
	names := lo.Keys(c)
	sort.Strings(names)

	return names
}

// Apply reconfigures every road whose start junction carries a gene. The
// gene is clamped first. Roads whose light initially shows green get the
// red and green durations swapped, so that the two orientations of a
// junction stay complementary. Junction-internal links keep their fast
// cycle, and roads without a gene keep their current timings.
func (c Candidate) Apply(net *roadnet.Network) {
	for _, road := range net.Roads() {
		if road.Unbounded() {
			continue
		}

		gene, ok := c[road.Start().Name()]
		if !ok {
			continue
		}

		gene = gene.Clamped()
		if road.Light().Colour() == signal.Green {
			gene = gene.Swapped()
		}

		road.Light().SetTimings(gene.Timings())
	}
}

// TunableJunctions returns the sorted names of the junctions that carry
// timing genes: the interior grid junctions. Side nodes and the entry and
// exit nodes on the network edge are not tunable.
func TunableJunctions(net *roadnet.Network) []string {
	var names []string
	for _, j := range net.Junctions() {
		if j.Base() != j {
			continue
		}

		if j.IsEntry() || j.IsExit() {
			continue
		}

		names = append(names, j.Name())
	}

	sort.Strings(names)

	return names
}
