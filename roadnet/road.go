package roadnet

import (
	"log"

	"github.com/sarchlab/greenwave/signal"
	"github.com/sarchlab/greenwave/sim"
)

// SafetyGap is the spare length, in meters, a road must keep between its
// queued vehicles and a newly admitted one.
const SafetyGap = 2.0

// queueDepth bounds the element count of a road queue. Length-based
// admission is checked through CanAdmit; the depth only guards against
// runaway puts.
const queueDepth = 1024

// An Occupant takes up length on a road while queued on it.
type Occupant interface {
	Length() float64
}

// A Road is a directed edge between two junctions. Vehicles queue on it in
// arrival order and leave from the head, except when the escape valve
// rotates a stalled head to the back.
type Road struct {
	*sim.ComponentBase

	distance float64
	speed    float64
	start    *Junction
	end      *Junction
	light    *signal.Light
	queue    sim.Store

	// unbounded roads model junction-internal links. They admit any length.
	unbounded bool

	occupied    float64
	stalledHead Occupant
	headStalls  int
}

// NewRoad creates a road from start to end. The distance is the road length
// in meters and the speed is the design speed in meters per second.
func NewRoad(
	name string,
	engine sim.Engine,
	start, end *Junction,
	distance, speed float64,
) *Road {
	r := new(Road)
	r.ComponentBase = sim.NewComponentBase(name)
	r.distance = distance
	r.speed = speed
	r.start = start
	r.end = end
	r.queue = sim.NewStore(sim.BuildName(name, "Queue"), queueDepth, engine)

	return r
}

// Distance returns the road length in meters.
func (r *Road) Distance() float64 {
	return r.distance
}

// Speed returns the design speed in meters per second.
func (r *Road) Speed() float64 {
	return r.speed
}

// Start returns the junction the road leaves from. Its lock guards entry
// into the conflict zone that this road crosses.
func (r *Road) Start() *Junction {
	return r.start
}

// End returns the junction the road arrives at.
func (r *Road) End() *Junction {
	return r.end
}

// Light returns the signal at the end of the road, or nil before SetLight.
func (r *Road) Light() *signal.Light {
	return r.light
}

// Unbounded reports whether the road is a junction-internal link. Unbounded
// roads admit vehicles of any length.
func (r *Road) Unbounded() bool {
	return r.unbounded
}

// SetLight attaches the signal that governs leaving this road. A road
// carries exactly one light.
func (r *Road) SetLight(l *signal.Light) {
	if r.light != nil {
		log.Panicf("road %s already has a light", r.Name())
	}

	r.light = l
}

// Queue returns the underlying vehicle queue.
func (r *Road) Queue() sim.Store {
	return r.queue
}

// QueueLength returns the number of queued vehicles. It serves as the
// detector reading for actuation.
func (r *Road) QueueLength() int {
	return r.queue.Size()
}

// OccupiedLength returns the total length of the queued vehicles in meters.
func (r *Road) OccupiedLength() float64 {
	return r.occupied
}

// AvailableCapacity returns the length still open on the road.
func (r *Road) AvailableCapacity() float64 {
	return r.distance - r.occupied
}

// CanAdmit reports whether a vehicle of the given length fits on the road
// with the safety gap preserved. Unbounded roads always admit.
func (r *Road) CanAdmit(length float64) bool {
	if r.unbounded {
		return true
	}

	return r.occupied+length+SafetyGap <= r.distance
}

// Enqueue appends an occupant to the back of the road queue.
func (r *Road) Enqueue(o Occupant) {
	r.queue.Put(o)
	r.occupied += o.Length()
}

// Dequeue removes an occupant from anywhere in the road queue. It returns
// false if the occupant is not on the road.
func (r *Road) Dequeue(o Occupant) bool {
	if !r.queue.Remove(o) {
		return false
	}

	r.occupied -= o.Length()
	if r.stalledHead == o {
		r.stalledHead = nil
		r.headStalls = 0
	}

	return true
}

// Head returns the occupant at the head of the queue, or nil if the road is
// empty.
func (r *Road) Head() Occupant {
	item := r.queue.Peek()
	if item == nil {
		return nil
	}

	return item.(Occupant)
}

// IsHead reports whether the occupant is at the head of the queue.
func (r *Road) IsHead(o Occupant) bool {
	return r.queue.Peek() == o
}

// NotifyHeadStalled records that the head occupant cannot make progress.
// After two consecutive reports for the same head, the head is rotated to
// the back of the queue and NotifyHeadStalled returns true.
func (r *Road) NotifyHeadStalled(o Occupant) bool {
	if r.stalledHead != o {
		r.stalledHead = o
		r.headStalls = 1

		return false
	}

	r.headStalls++
	if r.headStalls < 2 {
		return false
	}

	r.queue.RotateHead()
	r.stalledHead = nil
	r.headStalls = 0

	return true
}

// NotifyHeadProgress clears the stall record when the head occupant passes
// its checks.
func (r *Road) NotifyHeadProgress() {
	r.stalledHead = nil
	r.headStalls = 0
}
