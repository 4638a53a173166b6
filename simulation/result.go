package simulation

import "github.com/sarchlab/greenwave/vehicle"

// A TripRecord summarizes one vehicle that left the network, by exiting or
// by being dropped.
type TripRecord struct {
	ID         string
	Origin     string
	Final      string
	ReleasedAt float64
	FinishedAt float64
	WaitTime   float64
	Passes     int
}

// A QueuedRecord describes a vehicle that was still on the network when the
// run stopped.
type QueuedRecord struct {
	ID       string
	Road     string
	WaitTime float64
	Passes   int
}

// A Result aggregates what happened over one run. It is owned by the
// caller; the simulation keeps no reference to it.
type Result struct {
	Completed []TripRecord
	Dropped   []TripRecord
	Queued    []QueuedRecord

	Released int
	Duration float64
}

// MeanWait returns the mean wait time over the completed vehicles plus the
// ones still queued when the run stopped. Dropped vehicles never count
// toward it. It is the fitness the optimizer minimizes.
func (r Result) MeanWait() float64 {
	n := len(r.Completed) + len(r.Queued)
	if n == 0 {
		return 0
	}

	total := 0.0
	for _, t := range r.Completed {
		total += t.WaitTime
	}
	for _, q := range r.Queued {
		total += q.WaitTime
	}

	return total / float64(n)
}

// Conserved reports whether every released vehicle is accounted for as
// completed, dropped, or still queued.
func (r Result) Conserved() bool {
	return r.Released == len(r.Completed)+len(r.Dropped)+len(r.Queued)
}

// QueueLengthByRoad returns how many vehicles each road still carried when
// the run stopped. Roads with empty queues are absent.
func (r Result) QueueLengthByRoad() map[string]int {
	lengths := make(map[string]int)
	for _, q := range r.Queued {
		lengths[q.Road]++
	}

	return lengths
}

func tripRecord(v *vehicle.Vehicle) TripRecord {
	return TripRecord{
		ID:         v.Name(),
		Origin:     v.Origin().Name(),
		Final:      v.FinalJunction().Name(),
		ReleasedAt: float64(v.ReleasedAt()),
		FinishedAt: float64(v.CompletedAt()),
		WaitTime:   float64(v.WaitTime()),
		Passes:     v.Passes(),
	}
}

func queuedRecord(v *vehicle.Vehicle) QueuedRecord {
	return QueuedRecord{
		ID:       v.Name(),
		Road:     v.Road().Name(),
		WaitTime: float64(v.WaitTime()),
		Passes:   v.Passes(),
	}
}
