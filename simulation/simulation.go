// Package simulation composes complete scenario runs. One Config describes
// the grid, the signal policy, and the traffic. Build wires the network,
// the lights or their controllers, and the generator. Run drives the
// engine to the horizon and aggregates the outcome into a Result. A
// Simulation runs once; build a fresh one for every run.
package simulation

import (
	"fmt"

	"github.com/sarchlab/greenwave/monitoring"
	"github.com/sarchlab/greenwave/randengine"
	"github.com/sarchlab/greenwave/roadnet"
	"github.com/sarchlab/greenwave/signal"
	"github.com/sarchlab/greenwave/sim"
	"github.com/sarchlab/greenwave/tracing"
	"github.com/sarchlab/greenwave/vehicle"
)

// A Simulation owns one scenario run: the engine, the network, the signal
// control, the generator, and everything hooked onto them.
type Simulation struct {
	cfg Config

	engine    sim.Engine
	rand      *randengine.Engine
	net       *roadnet.Network
	generator *vehicle.Generator

	controllers []*signal.Controller
	monitor     *monitoring.Monitor

	ran bool
}

// Engine returns the event engine driving the run.
func (s *Simulation) Engine() sim.Engine {
	return s.engine
}

// Network returns the road network of the run.
func (s *Simulation) Network() *roadnet.Network {
	return s.net
}

// Generator returns the vehicle generator of the run.
func (s *Simulation) Generator() *vehicle.Generator {
	return s.generator
}

// Controllers returns the actuated controllers, or nil for a fixed-timing
// run.
func (s *Simulation) Controllers() []*signal.Controller {
	return s.controllers
}

// Monitor returns the HTTP monitor, or nil when monitoring is off.
func (s *Simulation) Monitor() *monitoring.Monitor {
	return s.monitor
}

// Config returns the scenario configuration of the run.
func (s *Simulation) Config() Config {
	return s.cfg
}

// AttachTracer observes every vehicle trip of the run with t. Tracers are
// built against the simulation's engine, so attachment happens between
// Build and Run.
func (s *Simulation) AttachTracer(t tracing.Tracer) {
	s.generator.AcceptHook(&releaseTracerHook{tracer: t})
}

// Run starts the lights, the controllers, and the generator, and drives
// the engine to the configured duration. The returned result accounts for
// every vehicle the generator released.
func (s *Simulation) Run() (Result, error) {
	if s.ran {
		log.Panic("a simulation only runs once; build a fresh one")
	}
	s.ran = true

	for _, road := range s.net.Roads() {
		road.Light().Start()
	}

	for _, c := range s.controllers {
		c.Start()
	}

	s.generator.Start()

	err := s.engine.RunUntil(sim.VTimeInSec(s.cfg.Duration))
	if err != nil && err != sim.ErrSchedulerEmpty {
		return Result{}, fmt.Errorf("simulation: %w", err)
	}

	result := s.collectResult()

	if !result.Conserved() {
		log.Warnf("conservation violated: released %d, accounted for %d",
			result.Released,
			len(result.Completed)+len(result.Dropped)+len(result.Queued))
	}

	log.Infof("run done at %.0f s: %d released, %d completed, %d dropped, "+
		"%d queued, mean wait %.2f s",
		result.Duration, result.Released, len(result.Completed),
		len(result.Dropped), len(result.Queued), result.MeanWait())

	return result, nil
}

func (s *Simulation) collectResult() Result {
	result := Result{
		Released: s.generator.Released(),
		Duration: s.cfg.Duration,
	}

	for _, v := range s.generator.Vehicles() {
		switch {
		case v.Completed():
			result.Completed = append(result.Completed, tripRecord(v))
		case v.Dropped():
			result.Dropped = append(result.Dropped, tripRecord(v))
		default:
			result.Queued = append(result.Queued, queuedRecord(v))
		}
	}

	return result
}

func (s *Simulation) applyPointsOfInterest() error {
	for _, name := range sortedPOINames(s.cfg.PointsOfInterest) {
		j, ok := s.net.JunctionByName(sim.BuildName(s.net.Name(), name))
		if !ok {
			return fmt.Errorf("point of interest %s: no such junction", name)
		}

		s.net.SetPOIMultiplier(j, s.cfg.PointsOfInterest[name])
	}

	return nil
}

// probeRoads plans a standing-start crossing of every road before any
// vehicle tries one, so that inconsistent motion parameters abort the run
// up front instead of inside a vehicle process.
func (s *Simulation) probeRoads() error {
	motion := vehicle.MakeBuilder()

	for _, road := range s.net.Roads() {
		_, err := vehicle.PlanCrossing(0, road.Distance(), road.Speed(),
			motion.Acceleration(), motion.Deceleration())
		if err != nil {
			return fmt.Errorf("road %s: %w", road.Name(), err)
		}
	}

	return nil
}

func (s *Simulation) buildControllers(cfg signal.Config) {
	for _, j := range s.net.Junctions() {
		groups := j.ConflictGroups()
		if len(groups) == 0 {
			continue
		}

		c := signal.NewController(sim.BuildName(j.Name(), "Controller"),
			s.engine, cfg, groups)
		s.controllers = append(s.controllers, c)
	}
}

// releaseTracerHook attaches a tracer to every vehicle the generator
// releases, before the vehicle's trip task starts.
type releaseTracerHook struct {
	tracer tracing.Tracer
}

func (h *releaseTracerHook) Func(ctx sim.HookCtx) {
	if ctx.Pos != vehicle.HookPosReleased {
		return
	}

	tracing.CollectTrace(ctx.Item.(*vehicle.Vehicle), h.tracer)
}
