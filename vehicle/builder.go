package vehicle

import (
	"github.com/sarchlab/greenwave/randengine"
	"github.com/sarchlab/greenwave/roadnet"
	"github.com/sarchlab/greenwave/sim"
)

// Builder builds vehicles. The motion parameters default to a 4.9 m car
// that accelerates at 3.5 m/s^2 and brakes at 8.1 m/s^2.
type Builder struct {
	engine sim.Engine
	net    *roadnet.Network
	rand   *randengine.Engine

	accel  float64
	decel  float64
	length float64
}

// MakeBuilder creates a Builder with default motion parameters.
func MakeBuilder() Builder {
	return Builder{
		accel:  3.5,
		decel:  -8.1,
		length: 4.9,
	}
}

// WithEngine sets the engine the vehicles schedule on.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithNetwork sets the network the vehicles drive through.
func (b Builder) WithNetwork(net *roadnet.Network) Builder {
	b.net = net
	return b
}

// WithRandEngine sets the random engine the vehicles sample delays and
// routes from.
func (b Builder) WithRandEngine(rand *randengine.Engine) Builder {
	b.rand = rand
	return b
}

// WithAcceleration sets the acceleration in m/s^2.
func (b Builder) WithAcceleration(accel float64) Builder {
	b.accel = accel
	return b
}

// WithDeceleration sets the deceleration in m/s^2. It must be negative.
func (b Builder) WithDeceleration(decel float64) Builder {
	b.decel = decel
	return b
}

// WithLength sets the vehicle length in meters.
func (b Builder) WithLength(length float64) Builder {
	b.length = length
	return b
}

// Acceleration returns the acceleration the builder gives its vehicles.
func (b Builder) Acceleration() float64 {
	return b.accel
}

// Deceleration returns the deceleration the builder gives its vehicles.
func (b Builder) Deceleration() float64 {
	return b.decel
}

func (b Builder) parametersMustBeValid() {
	if b.engine == nil {
		panic("engine is not given")
	}

	if b.net == nil {
		panic("network is not given")
	}

	if b.rand == nil {
		panic("rand engine is not given")
	}

	if b.accel <= 0 {
		panic("acceleration must be positive")
	}

	if b.decel >= 0 {
		panic("deceleration must be negative")
	}

	if b.length <= 0 {
		panic("vehicle length must be positive")
	}
}

// Build creates a vehicle on its start road. The reaction mean is the
// center of the vehicle's reassessment delay distribution. The vehicle does
// not move until Start is called.
func (b Builder) Build(
	name string,
	start *roadnet.Road,
	reactionMean float64,
) *Vehicle {
	b.parametersMustBeValid()

	v := new(Vehicle)
	v.ComponentBase = sim.NewComponentBase(name)
	v.engine = b.engine
	v.rand = b.rand
	v.router = NewRouter(b.net, b.rand)
	v.length = b.length
	v.accel = b.accel
	v.decel = b.decel
	v.reactionMean = reactionMean
	v.origin = start
	v.road = start
	v.speed = start.Speed()
	v.stage = stageEnter

	return v
}
