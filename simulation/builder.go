package simulation

import (
	"github.com/sarchlab/greenwave/monitoring"
	"github.com/sarchlab/greenwave/randengine"
	"github.com/sarchlab/greenwave/roadnet"
	"github.com/sarchlab/greenwave/sim"
	"github.com/sarchlab/greenwave/timing"
	"github.com/sarchlab/greenwave/vehicle"
)

// externalRoadLength is the length of the entry and exit stubs hanging off
// the border junctions, in meters.
const externalRoadLength = 100

// Builder can be used to build a simulation.
type Builder struct {
	cfg       Config
	actuated  bool
	table     timing.Table
	candidate timing.Candidate

	monitorOn   bool
	monitorPort int
}

// MakeBuilder creates a builder preloaded with the default scenario.
// Monitoring is off; optimization runs build simulations by the hundred
// and must not open a server per run.
func MakeBuilder() Builder {
	return Builder{
		cfg: DefaultConfig(),
	}
}

// WithConfig sets the scenario configuration.
func (b Builder) WithConfig(cfg Config) Builder {
	b.cfg = cfg
	return b
}

// WithActuation switches the signals from fixed timings to pressure-based
// controllers at every junction.
func (b Builder) WithActuation() Builder {
	b.actuated = true
	return b
}

// WithTimingTable overrides road timings from an imported table. The table
// applies after the configured defaults and before a candidate.
func (b Builder) WithTimingTable(t timing.Table) Builder {
	b.table = t
	return b
}

// WithCandidate overrides junction timings from an optimizer candidate.
func (b Builder) WithCandidate(c timing.Candidate) Builder {
	b.candidate = c
	return b
}

// WithMonitoring opens the HTTP monitor on the given port, or on a free
// port when the port is 0.
func (b Builder) WithMonitoring(port int) Builder {
	b.monitorOn = true
	b.monitorPort = port
	return b
}

// Build wires the network, the signal control, the generator, and the
// tracers into a runnable simulation.
func (b Builder) Build() (*Simulation, error) {
	if err := b.cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Simulation{cfg: b.cfg}
	s.engine = sim.NewSerialEngine()
	s.rand = randengine.New(b.cfg.Seed)

	if err := b.buildNetwork(s); err != nil {
		return nil, err
	}

	b.buildTraffic(s)

	if b.actuated {
		s.buildControllers(b.cfg.Actuation.controllerConfig())
	}

	if b.monitorOn {
		b.buildMonitor(s)
	}

	return s, nil
}

func (b Builder) buildNetwork(s *Simulation) error {
	timings := b.cfg.Timings.timings()
	if b.actuated {
		timings = b.cfg.Actuation.Timings.timings()
	}

	net := roadnet.MakeGridBuilder().
		WithEngine(s.engine).
		WithSize(b.cfg.Grid.Rows, b.cfg.Grid.Cols).
		WithRoadGeometry(
			b.cfg.Grid.HRoadLength, b.cfg.Grid.VRoadLength, b.cfg.Grid.Speed).
		WithExternalRoadGeometry(externalRoadLength, b.cfg.Grid.Speed).
		WithDefaultTimings(timings).
		WithCompositeBorders().
		Build("Grid")
	s.net = net

	if err := s.applyPointsOfInterest(); err != nil {
		return err
	}

	b.table.Apply(net)
	b.candidate.Apply(net)

	return s.probeRoads()
}

func (b Builder) buildTraffic(s *Simulation) {
	vehicles := vehicle.MakeBuilder().
		WithEngine(s.engine).
		WithNetwork(s.net).
		WithRandEngine(s.rand)

	rush := b.cfg.Generator.RushHour
	s.generator = vehicle.MakeGeneratorBuilder().
		WithEngine(s.engine).
		WithNetwork(s.net).
		WithVehicleBuilder(vehicles).
		WithCount(b.cfg.Generator.Count).
		WithMeanInterval(b.cfg.Generator.MeanInterval).
		WithRushHour(
			sim.VTimeInSec(rush.Start), sim.VTimeInSec(rush.End),
			rush.Multiplier).
		Build("Generator")
}

func (b Builder) buildMonitor(s *Simulation) {
	s.monitor = monitoring.NewMonitor()
	if b.monitorPort > 0 {
		s.monitor.WithPortNumber(b.monitorPort)
	}

	s.monitor.RegisterEngine(s.engine)
	s.monitor.RegisterNetwork(s.net)
	s.monitor.RegisterGenerator(s.generator)

	for _, c := range s.controllers {
		s.monitor.RegisterComponent(c)
	}

	s.monitor.StartServer()
}
