package vehicle

import (
	"fmt"
	"math"

	"github.com/sarchlab/greenwave/sim"
)

// A Crossing holds the travel times for one road under the two outcomes the
// driver plans for: the far signal is green on arrival and the road can be
// left at speed, or the signal is against them and they must brake to a
// stop at the end of the road.
type Crossing struct {
	GreenTime  sim.VTimeInSec
	GreenSpeed float64
	StopTime   sim.VTimeInSec
}

// PlanCrossing computes the crossing plan for a road of the given length.
// The entry speed is clamped to the design speed. Acceleration must be
// positive and deceleration negative, both in m/s^2; inconsistent motion
// parameters are reported as an error before any square root can fail.
func PlanCrossing(
	entrySpeed, distance, designSpeed, accel, decel float64,
) (Crossing, error) {
	if err := motionParamsError(
		entrySpeed, distance, designSpeed, accel, decel); err != nil {
		return Crossing{}, err
	}

	v0 := math.Min(entrySpeed, designSpeed)

	greenTime, greenSpeed := greenRun(v0, distance, designSpeed, accel)
	stopTime := stopRun(v0, distance, designSpeed, accel, -decel)

	return Crossing{
		GreenTime:  sim.VTimeInSec(greenTime),
		GreenSpeed: greenSpeed,
		StopTime:   sim.VTimeInSec(stopTime),
	}, nil
}

func motionParamsError(
	entrySpeed, distance, designSpeed, accel, decel float64,
) error {
	if distance <= 0 {
		return fmt.Errorf("distance must be positive, got %f", distance)
	}

	if designSpeed <= 0 {
		return fmt.Errorf("design speed must be positive, got %f",
			designSpeed)
	}

	if entrySpeed < 0 {
		return fmt.Errorf("entry speed must not be negative, got %f",
			entrySpeed)
	}

	if accel <= 0 {
		return fmt.Errorf("acceleration must be positive, got %f", accel)
	}

	if decel >= 0 {
		return fmt.Errorf("deceleration must be negative, got %f", decel)
	}

	return nil
}

// greenRun accelerates from v0 toward the design speed and holds it for the
// rest of the road.
func greenRun(v0, d, vd, a float64) (t, endSpeed float64) {
	vmax := math.Sqrt(v0*v0 + 2*a*d)
	if vmax <= vd {
		return (vmax - v0) / a, vmax
	}

	tAcc := (vd - v0) / a
	dAcc := (vd*vd - v0*v0) / (2 * a)

	return tAcc + (d-dAcc)/vd, vd
}

// stopRun accelerates, cruises if the road is long enough, and brakes to a
// dead stop at the end of the road. beta is the braking magnitude.
func stopRun(v0, d, vd, a, beta float64) float64 {
	// Entering faster than the road can absorb: brake the whole way.
	if v0*v0/(2*beta) >= d {
		return (v0 - math.Sqrt(v0*v0-2*beta*d)) / beta
	}

	vp := math.Sqrt(beta * (2*a*d + v0*v0) / (a + beta))
	if vp <= vd {
		return (vp-v0)/a + vp/beta
	}

	t1 := (vd - v0) / a
	d1 := (vd*vd - v0*v0) / (2 * a)
	t3 := vd / beta
	d3 := vd * vd / (2 * beta)

	return t1 + (d-d1-d3)/vd + t3
}
