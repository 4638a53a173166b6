// Package vehicle implements the driver processes of the simulation: the
// vehicles that queue on roads, negotiate signals and junction locks, cross
// roads under two-phase kinematics, and route themselves until they leave
// the network.
package vehicle

import (
	"fmt"

	"github.com/sarchlab/greenwave/randengine"
	"github.com/sarchlab/greenwave/roadnet"
	"github.com/sarchlab/greenwave/signal"
	"github.com/sarchlab/greenwave/sim"
	"github.com/sarchlab/greenwave/tracing"
)

// HookPosCompleted marks a vehicle leaving the network at an exit. The hook
// item is the vehicle.
var HookPosCompleted = &sim.HookPos{Name: "Vehicle Completed"}

// HookPosDropped marks a vehicle giving up because no road can take it. The
// hook item is the vehicle.
var HookPosDropped = &sim.HookPos{Name: "Vehicle Dropped"}

// crossingPriority is the admission priority of regular traffic.
const crossingPriority = 1

type stage int

const (
	// stageEnter queues the vehicle on its road and contends for the
	// admission lock of the junction the road leaves from.
	stageEnter stage = iota

	// stageAssess polls until the signal is green and the vehicle leads its
	// queue, accumulating wait time between polls.
	stageAssess

	// stageLaunch fires when the start-up delay has elapsed. The vehicle
	// releases the lock and either exits the network or commits to a
	// crossing plan.
	stageLaunch

	// stageMidway and stageArrive split the crossing into two half-steps.
	stageMidway
	stageArrive
)

// A Vehicle drives through the network as an event-driven process. Each
// Handle call runs the vehicle until it suspends again, on a sampled delay,
// on a travel half-step, or parked on an admission lock.
type Vehicle struct {
	*sim.ComponentBase

	engine sim.Engine
	rand   *randengine.Engine
	router *Router

	length       float64
	accel        float64
	decel        float64
	reactionMean float64

	origin *roadnet.Road
	final  *roadnet.Junction
	road   *roadnet.Road
	speed  float64

	stage      stage
	travelTime sim.VTimeInSec
	nextSpeed  float64

	waitTime    sim.VTimeInSec
	passes      int
	releasedAt  sim.VTimeInSec
	completedAt sim.VTimeInSec
	completed   bool
	dropped     bool

	tripID   string
	legID    string
	legIndex int
}

// Length returns the vehicle length in meters. It is the space the vehicle
// takes up on a road queue.
func (v *Vehicle) Length() float64 {
	return v.length
}

// Origin returns the road the vehicle entered the network on.
func (v *Vehicle) Origin() *roadnet.Road {
	return v.origin
}

// Road returns the road the vehicle currently queues on or crosses, or nil
// after the vehicle left the network.
func (v *Vehicle) Road() *roadnet.Road {
	return v.road
}

// FinalJunction returns the junction the vehicle left the network at, the
// exit it completed at or the spot it was dropped at. It is nil while the
// vehicle still drives.
func (v *Vehicle) FinalJunction() *roadnet.Junction {
	return v.final
}

// Speed returns the current speed in meters per second.
func (v *Vehicle) Speed() float64 {
	return v.speed
}

// WaitTime returns the total time spent waiting at signals, including
// reassessment and start-up delays.
func (v *Vehicle) WaitTime() sim.VTimeInSec {
	return v.waitTime
}

// Passes returns the number of junctions the vehicle has crossed.
func (v *Vehicle) Passes() int {
	return v.passes
}

// ReleasedAt returns the time the vehicle entered the network.
func (v *Vehicle) ReleasedAt() sim.VTimeInSec {
	return v.releasedAt
}

// CompletedAt returns the time the vehicle reached an exit. It is only
// meaningful when Completed is true.
func (v *Vehicle) CompletedAt() sim.VTimeInSec {
	return v.completedAt
}

// Completed reports whether the vehicle reached an exit.
func (v *Vehicle) Completed() bool {
	return v.completed
}

// Dropped reports whether the vehicle gave up without reaching an exit.
func (v *Vehicle) Dropped() bool {
	return v.dropped
}

// Start releases the vehicle into the network at the current time.
func (v *Vehicle) Start() {
	v.releasedAt = v.engine.CurrentTime()
	v.tripID = sim.GetIDGenerator().Generate()

	tracing.StartTask(v.tripID, "", v, "trip", v.road.Name(), nil)

	v.engine.ScheduleNow(v)
}

// Handle resumes the vehicle after a suspension.
func (v *Vehicle) Handle(e sim.Event) error {
	now := e.Time()

	switch v.stage {
	case stageEnter:
		return v.enterRoad()
	case stageAssess:
		return v.assess()
	case stageLaunch:
		return v.launch(now)
	case stageMidway:
		v.stage = stageArrive
		v.engine.ScheduleAfter(v.travelTime/2, v)
		return nil
	case stageArrive:
		return v.arrive(now)
	}

	log.Panicf("%s is in unknown stage %d", v.Name(), v.stage)
	return nil
}

// enterRoad joins the road queue and contends for the admission lock of the
// junction the road leaves from. If the lock is held the vehicle parks; it
// resumes in stageAssess already holding the lock.
func (v *Vehicle) enterRoad() error {
	v.road.Enqueue(v)

	v.legIndex++
	v.legID = fmt.Sprintf("%s.leg%d", v.tripID, v.legIndex)
	tracing.StartTaskWithSpecificLocation(v.legID, v.tripID, v,
		"leg", "Cross", v.road.Name(), nil)

	v.stage = stageAssess
	if v.road.Start().Lock().Acquire(v, crossingPriority) {
		return v.assess()
	}

	return nil
}

func (v *Vehicle) assess() error {
	if v.road.Light().Colour() != signal.Green || !v.road.IsHead(v) {
		v.reassessLater()
		return nil
	}

	if !v.road.End().IsExit() && !v.router.HasViable(v.road, v.length) {
		if v.road.NotifyHeadStalled(v) {
			v.yieldLock()
			return nil
		}

		v.reassessLater()
		return nil
	}

	v.road.NotifyHeadProgress()

	startup := v.rand.TruncNormal(0.8, 0.1, 0.5, 1.0)
	v.waitTime += sim.VTimeInSec(startup)
	v.stage = stageLaunch
	v.engine.ScheduleAfter(sim.VTimeInSec(startup), v)

	return nil
}

func (v *Vehicle) reassessLater() {
	delay := v.rand.TruncNormal(v.reactionMean, 0.2, 0.5, 1.5)
	v.waitTime += sim.VTimeInSec(delay)
	v.stage = stageAssess
	v.engine.ScheduleAfter(sim.VTimeInSec(delay), v)
}

// yieldLock hands the admission lock over after the queue rotated away from
// the vehicle, so that the new queue head gets to move. The vehicle lines up
// for the lock again and polls on once it holds it.
func (v *Vehicle) yieldLock() {
	tracing.AddTaskStep(v.legID, v, "yield")

	lock := v.road.Start().Lock()
	lock.Release(v)

	v.stage = stageAssess
	if lock.Acquire(v, crossingPriority) {
		v.reassessLater()
	}
}

func (v *Vehicle) launch(now sim.VTimeInSec) error {
	v.road.Start().Lock().Release(v)

	if v.road.End().IsExit() {
		v.exit(now)
		return nil
	}

	crossing, err := PlanCrossing(v.speed, v.road.Distance(),
		v.road.Speed(), v.accel, v.decel)
	if err != nil {
		log.Panicf("%s cannot cross road %s: %v",
			v.Name(), v.road.Name(), err)
	}

	tracing.AddTaskStep(v.legID, v, "launch")

	// Plan for the worst-case arrival. If the far signal is green by then,
	// roll through; otherwise come to a stop at the end of the road.
	arrival := now + crossing.StopTime
	if v.road.Light().PredictAt(arrival) == signal.Green {
		v.travelTime = crossing.GreenTime
		v.nextSpeed = crossing.GreenSpeed
	} else {
		v.travelTime = crossing.StopTime
		v.nextSpeed = 0
	}

	v.stage = stageMidway
	v.engine.ScheduleAfter(v.travelTime/2, v)

	return nil
}

func (v *Vehicle) arrive(now sim.VTimeInSec) error {
	v.road.Dequeue(v)
	v.passes++
	v.speed = v.nextSpeed
	tracing.EndTask(v.legID, v)

	next, ok := v.router.Next(v.road, v.length)
	if !ok {
		v.drop(now)
		return nil
	}

	v.road = next

	return v.enterRoad()
}

// exit takes the vehicle out of the network at the exit junction at the end
// of its road.
func (v *Vehicle) exit(now sim.VTimeInSec) {
	v.road.Dequeue(v)
	v.passes++
	v.completed = true
	v.completedAt = now
	v.final = v.road.End()

	tracing.EndTask(v.legID, v)
	tracing.EndTask(v.tripID, v)

	if v.NumHooks() > 0 {
		v.InvokeHook(sim.HookCtx{
			Domain: v,
			Pos:    HookPosCompleted,
			Item:   v,
		})
	}

	v.road = nil
}

// drop terminates the vehicle in place. The vehicle stays in no queue and
// counts in no completion statistics.
func (v *Vehicle) drop(now sim.VTimeInSec) {
	v.dropped = true
	v.completedAt = now
	v.final = v.road.End()

	log.Warnf("%s dropped at %s, no road onward can take it",
		v.Name(), v.final.Name())

	tracing.EndTask(v.tripID, v)

	if v.NumHooks() > 0 {
		v.InvokeHook(sim.HookCtx{
			Domain: v,
			Pos:    HookPosDropped,
			Item:   v,
		})
	}

	v.road = nil
}
