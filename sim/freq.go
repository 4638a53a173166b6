package sim

import (
	"log"
	"math"
)

// Freq defines the type of frequency
type Freq float64

// Hz is the unit of frequency. A controller that polls every 5 seconds runs
// at 0.2 * Hz.
const Hz Freq = 1

// Period returns the time between two consecutive ticks
func (f Freq) Period() VTimeInSec {
	if f == 0 {
		log.Panic("frequency cannot be 0")
	}
	return VTimeInSec(1.0 / f)
}

// ThisTick returns the current tick time
//
//	           Input
//	           (          ]
//	|----------|----------|----------|----->
//	                      |
//	                      Output
func (f Freq) ThisTick(now VTimeInSec) VTimeInSec {
	if math.IsNaN(float64(now)) {
		log.Panic("invalid time")
	}
	count := math.Ceil(math.Round(float64(now)*10*float64(f)) / 10)
	return VTimeInSec(count / float64(f))
}

// NextTick returns the next tick time.
//
//	           Input
//	           [          )
//	|----------|----------|----------|----->
//	                      |
//	                      Output
func (f Freq) NextTick(now VTimeInSec) VTimeInSec {
	if math.IsNaN(float64(now)) {
		log.Panic("invalid time")
	}
	count := math.Floor(math.Round(float64(now)*10*float64(f)) / 10)
	return VTimeInSec((count + 1) / float64(f))
}

// NoEarlierThan returns the tick time that is at or right after the given time
func (f Freq) NoEarlierThan(t VTimeInSec) VTimeInSec {
	if math.IsNaN(float64(t)) {
		log.Panic("invalid time")
	}
	count := t / f.Period()
	return VTimeInSec(math.Ceil(float64(count))) * f.Period()
}
