package signal

import (
	"github.com/sarchlab/greenwave/sim"
)

// Colour is the state a traffic light shows.
type Colour int

// The colours cycle RED -> RED_AMBER -> GREEN -> AMBER -> RED. No transition
// ever skips a colour, not even a forced one.
const (
	Red Colour = iota
	RedAmber
	Green
	Amber
)

// Next returns the colour that follows c in the cycle.
func (c Colour) Next() Colour {
	switch c {
	case Red:
		return RedAmber
	case RedAmber:
		return Green
	case Green:
		return Amber
	case Amber:
		return Red
	}

	log.Panicf("unknown colour %d", c)
	return Red
}

func (c Colour) String() string {
	switch c {
	case Red:
		return "RED"
	case RedAmber:
		return "RED_AMBER"
	case Green:
		return "GREEN"
	case Amber:
		return "AMBER"
	}

	return "UNKNOWN"
}

// ParseColour converts a colour name to a Colour.
func ParseColour(s string) (Colour, bool) {
	switch s {
	case "RED":
		return Red, true
	case "RED_AMBER":
		return RedAmber, true
	case "GREEN":
		return Green, true
	case "AMBER":
		return Amber, true
	}

	return Red, false
}

// Timings hold the dwell durations of the four phases of a light's cycle.
type Timings struct {
	Red      sim.VTimeInSec
	RedAmber sim.VTimeInSec
	Green    sim.VTimeInSec
	Amber    sim.VTimeInSec
}

// Of returns the dwell duration of the given colour.
func (t Timings) Of(c Colour) sim.VTimeInSec {
	switch c {
	case Red:
		return t.Red
	case RedAmber:
		return t.RedAmber
	case Green:
		return t.Green
	case Amber:
		return t.Amber
	}

	log.Panicf("unknown colour %d", c)
	return 0
}

// Cycle returns the duration of one full colour cycle.
func (t Timings) Cycle() sim.VTimeInSec {
	return t.Red + t.RedAmber + t.Green + t.Amber
}
