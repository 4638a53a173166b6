package vehicle

import (
	"github.com/sarchlab/greenwave/roadnet"
	"github.com/sarchlab/greenwave/sim"
)

// HookPosReleased marks a vehicle entering the network. The hook item is
// the released *Vehicle. The hook fires before the vehicle starts, so
// consumers can attach their own hooks to it in time for its first move.
var HookPosReleased = &sim.HookPos{Name: "Vehicle Released"}

// A Generator releases vehicles into the network at sampled times. Each
// release picks an entry road weighted toward the emptier queues, samples
// the driver's reaction mean, and starts the vehicle. Release intervals are
// exponential with a one-second floor; inside the rush-hour window the mean
// interval shrinks by the rush factor.
type Generator struct {
	*sim.ComponentBase

	engine         sim.Engine
	net            *roadnet.Network
	vehicleBuilder Builder

	count        int
	meanInterval float64
	rushStart    sim.VTimeInSec
	rushEnd      sim.VTimeInSec
	rushFactor   float64

	vehicles []*Vehicle
}

// Start schedules the first release at the current time.
func (g *Generator) Start() {
	g.engine.ScheduleNow(g)
}

// Vehicles returns every vehicle released so far, in release order.
func (g *Generator) Vehicles() []*Vehicle {
	return g.vehicles
}

// Released returns the number of vehicles released so far.
func (g *Generator) Released() int {
	return len(g.vehicles)
}

// Count returns the number of vehicles the generator will release in total.
func (g *Generator) Count() int {
	return g.count
}

// Handle releases one vehicle and schedules the next release.
func (g *Generator) Handle(e sim.Event) error {
	now := e.Time()

	if len(g.vehicles) >= g.count {
		return nil
	}

	road, ok := g.pickEntryRoad()
	if !ok {
		return nil
	}

	rand := g.vehicleBuilder.rand
	reactionMean := rand.TruncNormal(1.0, 0.2, 0.5, 1.5)

	name := sim.BuildNameWithIndex("", "Vehicle", len(g.vehicles))
	v := g.vehicleBuilder.Build(name, road, reactionMean)
	g.vehicles = append(g.vehicles, v)

	log.Debugf("released %s onto %s at %.2f s", name, road.Name(), now)

	if g.NumHooks() > 0 {
		g.InvokeHook(sim.HookCtx{
			Domain: g,
			Pos:    HookPosReleased,
			Item:   v,
		})
	}

	v.Start()

	if len(g.vehicles) >= g.count {
		return nil
	}

	g.engine.ScheduleAfter(g.nextInterval(now), g)

	return nil
}

// pickEntryRoad picks among the entry roads with weights inverse to the
// queue lengths, favoring the emptier entries.
func (g *Generator) pickEntryRoad() (*roadnet.Road, bool) {
	roads := g.net.EntryRoads()
	if len(roads) == 0 {
		return nil, false
	}

	weights := make([]float64, len(roads))
	for i, road := range roads {
		weights[i] = 1.0 / float64(road.QueueLength()+1)
	}

	rand := g.vehicleBuilder.rand

	return roads[rand.DiscreteDistribution(weights)], true
}

func (g *Generator) nextInterval(now sim.VTimeInSec) sim.VTimeInSec {
	mean := g.meanInterval
	if now >= g.rushStart && now < g.rushEnd {
		mean *= g.rushFactor
	}

	interval := g.vehicleBuilder.rand.Exponential(mean)
	if interval < 1 {
		interval = 1
	}

	return sim.VTimeInSec(interval)
}
