package simulation

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/greenwave/sim"
	"github.com/sarchlab/greenwave/timing"
	"github.com/sarchlab/greenwave/tracing"
)

// countingTracer tallies the tasks a run delivers.
type countingTracer struct {
	started []tracing.Task
	ended   int
}

func (t *countingTracer) StartTask(task tracing.Task) {
	t.started = append(t.started, task)
}

func (t *countingTracer) StepTask(_ tracing.Task) {}

func (t *countingTracer) EndTask(_ tracing.Task) {
	t.ended++
}

// scenario shrinks the default configuration to a grid small enough for a
// spec. The default points of interest name 7x7 junctions, so they are
// cleared here.
func scenario(rows, cols, count int, duration float64) Config {
	cfg := DefaultConfig()
	cfg.Grid.Rows = rows
	cfg.Grid.Cols = cols
	cfg.Generator.Count = count
	cfg.PointsOfInterest = nil
	cfg.Duration = duration

	return cfg
}

var _ = Describe("Simulation", func() {
	It("should carry a single vehicle across the grid", func() {
		cfg := scenario(2, 2, 1, 200)
		cfg.Timings = TimingsConfig{Red: 15, Green: 15, Amber: 3, RedAmber: 3}

		s, err := MakeBuilder().WithConfig(cfg).Build()
		Expect(err).ToNot(HaveOccurred())

		result, err := s.Run()
		Expect(err).ToNot(HaveOccurred())

		Expect(result.Released).To(Equal(1))
		Expect(result.Completed).To(HaveLen(1))
		Expect(result.Conserved()).To(BeTrue())

		trip := result.Completed[0]
		Expect(trip.ID).To(Equal("Vehicle[0]"))
		Expect(trip.Passes).To(BeNumerically(">=", 1))
		Expect(trip.FinishedAt).To(BeNumerically("<", 200))
		Expect(trip.WaitTime).To(BeNumerically(">", 0))

		Expect(s.Engine().CurrentTime()).To(Equal(sim.VTimeInSec(200)))
	})

	It("should deliver trip and leg tasks to an attached tracer", func() {
		cfg := scenario(2, 2, 1, 200)
		cfg.Timings = TimingsConfig{Red: 15, Green: 15, Amber: 3, RedAmber: 3}

		s, err := MakeBuilder().WithConfig(cfg).Build()
		Expect(err).ToNot(HaveOccurred())

		tracer := &countingTracer{}
		s.AttachTracer(tracer)

		result, err := s.Run()
		Expect(err).ToNot(HaveOccurred())
		Expect(result.Completed).To(HaveLen(1))

		kinds := map[string]int{}
		for _, task := range tracer.started {
			kinds[task.Kind]++
		}
		Expect(kinds["trip"]).To(Equal(1))
		Expect(kinds["leg"]).To(BeNumerically(">=", 1))
		Expect(tracer.ended).To(Equal(len(tracer.started)))
	})

	It("should produce identical results for identical configurations", func() {
		cfg := scenario(3, 3, 20, 300)

		run := func() (*Simulation, Result) {
			s, err := MakeBuilder().WithConfig(cfg).Build()
			Expect(err).ToNot(HaveOccurred())

			result, err := s.Run()
			Expect(err).ToNot(HaveOccurred())

			return s, result
		}

		s1, r1 := run()
		s2, r2 := run()

		Expect(r1).To(Equal(r2))

		roads1 := s1.Network().Roads()
		roads2 := s2.Network().Roads()
		Expect(roads1).To(HaveLen(len(roads2)))
		for i := range roads1 {
			Expect(roads1[i].Name()).To(Equal(roads2[i].Name()))
			Expect(roads1[i].Light().Colour()).
				To(Equal(roads2[i].Light().Colour()))
		}
	})

	It("should account for every vehicle it releases", func() {
		cfg := scenario(3, 3, 30, 300)
		cfg.Generator.MeanInterval = 5

		s, err := MakeBuilder().WithConfig(cfg).Build()
		Expect(err).ToNot(HaveOccurred())

		result, err := s.Run()
		Expect(err).ToNot(HaveOccurred())

		Expect(result.Released).To(Equal(30))
		Expect(result.Conserved()).To(BeTrue())
	})

	It("should drive the lights with pressure controllers when actuated", func() {
		cfg := scenario(2, 2, 10, 300)

		s, err := MakeBuilder().WithConfig(cfg).WithActuation().Build()
		Expect(err).ToNot(HaveOccurred())

		Expect(s.Controllers()).To(HaveLen(4))

		names := make([]string, 0, len(s.Controllers()))
		for _, c := range s.Controllers() {
			names = append(names, c.Name())
		}
		Expect(names).To(ContainElement("Grid.Junction[0][0].Controller"))

		result, err := s.Run()
		Expect(err).ToNot(HaveOccurred())

		Expect(result.Released).To(Equal(10))
		Expect(result.Conserved()).To(BeTrue())
		Expect(result.Completed).ToNot(BeEmpty())
	})

	It("should weight routing toward the points of interest", func() {
		cfg := scenario(2, 2, 0, 10)
		cfg.PointsOfInterest = map[string]float64{"Junction[0][1]": 3}

		s, err := MakeBuilder().WithConfig(cfg).Build()
		Expect(err).ToNot(HaveOccurred())

		j, ok := s.Network().JunctionByName("Grid.Junction[0][1]")
		Expect(ok).To(BeTrue())
		Expect(s.Network().POIMultiplier(j)).To(Equal(3.0))
	})

	It("should refuse a point of interest that names no junction", func() {
		cfg := scenario(2, 2, 0, 10)
		cfg.PointsOfInterest = map[string]float64{"Junction[9][9]": 2}

		_, err := MakeBuilder().WithConfig(cfg).Build()
		Expect(err).To(MatchError(ContainSubstring(
			"point of interest Junction[9][9]: no such junction")))
	})

	It("should refuse to run twice", func() {
		cfg := scenario(2, 2, 0, 10)

		s, err := MakeBuilder().WithConfig(cfg).Build()
		Expect(err).ToNot(HaveOccurred())

		_, err = s.Run()
		Expect(err).ToNot(HaveOccurred())

		Expect(func() { _, _ = s.Run() }).To(Panic())
	})
})

var _ = Describe("CandidateRunner", func() {
	It("should score a candidate identically across calls", func() {
		runner, err := NewCandidateRunner(scenario(2, 2, 5, 120))
		Expect(err).ToNot(HaveOccurred())

		c := timing.Candidate{
			"Grid.Junction[0][0]": timing.Gene{
				Red: 15, RedAmber: 3, Green: 15, Amber: 3,
			},
		}

		first := runner.MeanWait(c)
		second := runner.MeanWait(c)

		Expect(second).To(Equal(first))
	})

	It("should reject an invalid scenario up front", func() {
		cfg := scenario(0, 2, 5, 120)

		_, err := NewCandidateRunner(cfg)
		Expect(err).To(MatchError(ContainSubstring("rows and cols")))
	})
})
