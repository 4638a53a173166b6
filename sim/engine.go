package sim

import "errors"

// ErrSchedulerEmpty is returned by RunUntil when the event queues drain before
// the time limit is reached. Simulations that inject a finite amount of work
// treat it as a normal completion.
var ErrSchedulerEmpty = errors.New("no event left in the scheduler")

// TimeTeller can be used to get the current time.
type TimeTeller interface {
	CurrentTime() VTimeInSec
}

// EventScheduler can be used to schedule future events.
type EventScheduler interface {
	Schedule(e Event)
}

// A SimulationEndHandler is a handler that is called after the simulation ends.
type SimulationEndHandler interface {
	Handle(now VTimeInSec)
}

// An Engine is a unit that keeps the discrete event simulation run.
type Engine interface {
	Hookable
	TimeTeller
	EventScheduler
	ProcessScheduler

	// Run will process all the events until the simulation finishes
	Run() error

	// RunUntil processes all the events scheduled at or before t. If the
	// queues drain first, it returns ErrSchedulerEmpty. In both cases the
	// engine clock ends up at t.
	RunUntil(t VTimeInSec) error

	// Pause will pause the simulation until continue is called.
	Pause()

	// Continue will continue the paused simulation
	Continue()

	// RegisterSimulationEndHandler registers a handler that perform some
	// actions after the simulation is finished.
	RegisterSimulationEndHandler(handler SimulationEndHandler)

	// Finished invokes all the registered SimulationEndHandler
	Finished()
}
