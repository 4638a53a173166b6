package signal

import (
	"math"

	"github.com/sarchlab/greenwave/sim"
)

// HookPosLightChange marks a light changing its colour. The hook item is the
// new colour.
var HookPosLightChange = &sim.HookPos{Name: "Light Change"}

// A Light runs the phase state machine of one road's signal. Left alone it
// cycles RED -> RED_AMBER -> GREEN -> AMBER with its configured dwell times.
// An actuated controller can force it toward GREEN or RED; the forced walk
// still visits every colour in cycle order.
type Light struct {
	*sim.ComponentBase

	engine  sim.Engine
	timings Timings

	colour     Colour
	lastChange sim.VTimeInSec

	// epoch invalidates phase-end events that a forced transition superseded.
	epoch uint64

	forced      bool
	target      Colour
	greenBudget sim.VTimeInSec
}

// NewLight creates a Light showing the initial colour. It does not cycle
// until Start is called.
func NewLight(
	name string,
	engine sim.Engine,
	timings Timings,
	initial Colour,
) *Light {
	l := new(Light)
	l.ComponentBase = sim.NewComponentBase(name)
	l.engine = engine
	l.timings = timings
	l.colour = initial

	return l
}

// Colour returns the colour the light currently shows.
func (l *Light) Colour() Colour {
	return l.colour
}

// LastChange returns the time of the most recent colour change.
func (l *Light) LastChange() sim.VTimeInSec {
	return l.lastChange
}

// Timings returns the configured phase durations.
func (l *Light) Timings() Timings {
	return l.timings
}

// SetTimings replaces the phase durations. It applies from the next phase
// change on.
func (l *Light) SetTimings(t Timings) {
	l.timings = t
}

// Start begins cycling: the current colour holds for its full dwell time from
// now, then the cycle continues.
func (l *Light) Start() {
	now := l.engine.CurrentTime()
	l.lastChange = now
	l.schedulePhaseEnd(now, l.timings.Of(l.colour))
}

// Handle advances the phase when the current dwell expires.
func (l *Light) Handle(e sim.Event) error {
	evt := e.(phaseEvent)
	if evt.epoch != l.epoch {
		return nil
	}

	l.step(e.Time())
	return nil
}

// ForceTo drives the light toward the target colour through the safe path
// that visits every intermediate colour in cycle order. The first hop happens
// immediately. A light forced to GREEN holds it for greenDwell; forcing an
// already-green light extends its dwell to greenDwell without restarting the
// phase. Only GREEN and RED are valid targets.
func (l *Light) ForceTo(target Colour, greenDwell sim.VTimeInSec) {
	if target != Green && target != Red {
		log.Panic("a light can only be forced toward GREEN or RED")
	}

	now := l.engine.CurrentTime()
	l.epoch++

	if l.colour == target {
		l.forced = false

		if target == Green {
			l.schedulePhaseEnd(now, greenDwell)
			return
		}

		remaining := l.lastChange + l.timings.Red - now
		if remaining < 0 {
			remaining = 0
		}
		l.schedulePhaseEnd(now, remaining)
		return
	}

	l.forced = true
	l.target = target
	l.greenBudget = greenDwell
	l.step(now)
}

// PredictAt walks the fixed cycle forward from the current colour and
// last-change time and returns the colour the light will show at time at.
// The walk assumes undisturbed cycling; a later actuation can invalidate it.
func (l *Light) PredictAt(at sim.VTimeInSec) Colour {
	cycle := float64(l.timings.Cycle())
	if cycle <= 0 {
		return l.colour
	}

	elapsed := float64(at - l.lastChange)
	if elapsed < 0 {
		return l.colour
	}

	colour := l.colour
	dwell := float64(l.timings.Of(colour))
	if elapsed < dwell {
		return colour
	}
	elapsed -= dwell
	elapsed = math.Mod(elapsed, cycle)

	for {
		colour = colour.Next()
		dwell = float64(l.timings.Of(colour))
		if elapsed < dwell {
			return colour
		}
		elapsed -= dwell
	}
}

func (l *Light) step(now sim.VTimeInSec) {
	next, dwell := l.nextPhase()

	l.colour = next
	l.lastChange = now

	if l.NumHooks() > 0 {
		l.InvokeHook(sim.HookCtx{
			Domain: l,
			Pos:    HookPosLightChange,
			Item:   next,
		})
	}

	l.schedulePhaseEnd(now, dwell)
}

// nextPhase picks the colour after the current one and its dwell time. In a
// forced walk, intermediate RED_AMBER and AMBER keep their configured dwells
// while pass-through RED and GREEN hold only for the RED_AMBER dwell.
func (l *Light) nextPhase() (Colour, sim.VTimeInSec) {
	next := l.colour.Next()

	if !l.forced {
		return next, l.timings.Of(next)
	}

	if next == l.target {
		l.forced = false
		if next == Green {
			return next, l.greenBudget
		}
		return next, l.timings.Of(next)
	}

	if next == RedAmber || next == Amber {
		return next, l.timings.Of(next)
	}

	return next, l.timings.RedAmber
}

func (l *Light) schedulePhaseEnd(now, dwell sim.VTimeInSec) {
	if dwell < 0 {
		log.Panicf("light %s has a negative dwell time", l.Name())
	}

	l.engine.Schedule(phaseEvent{
		EventBase: sim.NewEventBase(now+dwell, l),
		epoch:     l.epoch,
	})
}

type phaseEvent struct {
	*sim.EventBase

	epoch uint64
}
