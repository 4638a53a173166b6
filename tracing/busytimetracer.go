package tracing

import (
	"sync"

	"github.com/sarchlab/greenwave/sim"
)

// BusyTimeTracer tracks the time during which at least one matching task is
// in flight. Overlapping tasks count the overlapped time once, so a tracer
// filtered to the legs of one road reports how long that road carried
// traffic. Tasks arrive in event order, with times never decreasing.
type BusyTimeTracer struct {
	timeTeller sim.TimeTeller
	filter     TaskFilter

	lock          sync.Mutex
	inflightTasks map[string]struct{}
	windowStart   sim.VTimeInSec
	busyTime      sim.VTimeInSec
}

// NewBusyTimeTracer creates a new BusyTimeTracer. A nil filter accepts
// everything.
func NewBusyTimeTracer(
	timeTeller sim.TimeTeller,
	filter TaskFilter,
) *BusyTimeTracer {
	return &BusyTimeTracer{
		timeTeller:    timeTeller,
		filter:        filter,
		inflightTasks: make(map[string]struct{}),
	}
}

// BusyTime returns the covered time over all finished busy windows.
func (t *BusyTimeTracer) BusyTime() sim.VTimeInSec {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.busyTime
}

// TerminateAllTasks closes the current busy window at the given time. Call
// it when the run stops with tasks still in flight.
func (t *BusyTimeTracer) TerminateAllTasks(now sim.VTimeInSec) {
	t.lock.Lock()
	defer t.lock.Unlock()

	if len(t.inflightTasks) == 0 {
		return
	}

	t.busyTime += now - t.windowStart
	t.inflightTasks = make(map[string]struct{})
}

// StartTask opens a busy window if none is open.
func (t *BusyTimeTracer) StartTask(task Task) {
	task.StartTime = t.timeTeller.CurrentTime()

	if t.filter != nil && !t.filter(task) {
		return
	}

	t.lock.Lock()
	defer t.lock.Unlock()

	if len(t.inflightTasks) == 0 {
		t.windowStart = task.StartTime
	}

	t.inflightTasks[task.ID] = struct{}{}
}

// StepTask does nothing.
func (t *BusyTimeTracer) StepTask(_ Task) {
	// Do nothing
}

// EndTask closes the busy window when the last in-flight task ends.
func (t *BusyTimeTracer) EndTask(task Task) {
	now := t.timeTeller.CurrentTime()

	t.lock.Lock()
	defer t.lock.Unlock()

	if _, ok := t.inflightTasks[task.ID]; !ok {
		return
	}

	delete(t.inflightTasks, task.ID)
	if len(t.inflightTasks) == 0 {
		t.busyTime += now - t.windowStart
	}
}
