package vehicle

import (
	"github.com/sarchlab/greenwave/roadnet"
	"github.com/sarchlab/greenwave/sim"
)

// GeneratorBuilder builds generators. By default vehicles arrive with a
// mean interval of 9 seconds, halved during a rush hour from 270 s to
// 360 s.
type GeneratorBuilder struct {
	engine         sim.Engine
	net            *roadnet.Network
	vehicleBuilder Builder
	builderSet     bool

	count        int
	meanInterval float64
	rushStart    sim.VTimeInSec
	rushEnd      sim.VTimeInSec
	rushFactor   float64
}

// MakeGeneratorBuilder creates a GeneratorBuilder with default arrival
// parameters.
func MakeGeneratorBuilder() GeneratorBuilder {
	return GeneratorBuilder{
		meanInterval: 9,
		rushStart:    270,
		rushEnd:      360,
		rushFactor:   0.5,
	}
}

// WithEngine sets the engine the generator schedules on.
func (b GeneratorBuilder) WithEngine(engine sim.Engine) GeneratorBuilder {
	b.engine = engine
	return b
}

// WithNetwork sets the network vehicles are released into.
func (b GeneratorBuilder) WithNetwork(net *roadnet.Network) GeneratorBuilder {
	b.net = net
	return b
}

// WithVehicleBuilder sets the builder used for each released vehicle.
func (b GeneratorBuilder) WithVehicleBuilder(
	vb Builder,
) GeneratorBuilder {
	b.vehicleBuilder = vb
	b.builderSet = true
	return b
}

// WithCount sets the number of vehicles to release.
func (b GeneratorBuilder) WithCount(count int) GeneratorBuilder {
	b.count = count
	return b
}

// WithMeanInterval sets the mean release interval in seconds.
func (b GeneratorBuilder) WithMeanInterval(mean float64) GeneratorBuilder {
	b.meanInterval = mean
	return b
}

// WithRushHour sets the window in which the mean release interval is
// multiplied by factor.
func (b GeneratorBuilder) WithRushHour(
	start, end sim.VTimeInSec,
	factor float64,
) GeneratorBuilder {
	b.rushStart = start
	b.rushEnd = end
	b.rushFactor = factor
	return b
}

func (b GeneratorBuilder) parametersMustBeValid() {
	if b.engine == nil {
		panic("engine is not given")
	}

	if b.net == nil {
		panic("network is not given")
	}

	if !b.builderSet {
		panic("vehicle builder is not given")
	}

	if b.count < 0 {
		panic("vehicle count must not be negative")
	}

	if b.meanInterval <= 0 {
		panic("mean interval must be positive")
	}

	if b.rushFactor <= 0 {
		panic("rush factor must be positive")
	}
}

// Build creates the generator. It does not release vehicles until Start is
// called.
func (b GeneratorBuilder) Build(name string) *Generator {
	b.parametersMustBeValid()

	g := new(Generator)
	g.ComponentBase = sim.NewComponentBase(name)
	g.engine = b.engine
	g.net = b.net
	g.vehicleBuilder = b.vehicleBuilder
	g.count = b.count
	g.meanInterval = b.meanInterval
	g.rushStart = b.rushStart
	g.rushEnd = b.rushEnd
	g.rushFactor = b.rushFactor

	return g
}
