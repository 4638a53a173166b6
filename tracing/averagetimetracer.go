package tracing

import (
	"sync"

	"github.com/sarchlab/greenwave/sim"
)

// AverageTimeTracer tracks how long tasks of a certain type take. Trips and
// legs of different vehicles overlap freely; each task counts its own full
// duration.
type AverageTimeTracer struct {
	timeTeller sim.TimeTeller
	filter     TaskFilter

	lock          sync.Mutex
	inflightTasks map[string]Task
	totalTime     sim.VTimeInSec
	taskCount     uint64
}

// NewAverageTimeTracer creates a new AverageTimeTracer. Tasks the filter
// rejects are ignored. A nil filter accepts everything.
func NewAverageTimeTracer(
	timeTeller sim.TimeTeller,
	filter TaskFilter,
) *AverageTimeTracer {
	return &AverageTimeTracer{
		timeTeller:    timeTeller,
		filter:        filter,
		inflightTasks: make(map[string]Task),
	}
}

// AverageTime returns the mean duration of the finished tasks.
func (t *AverageTimeTracer) AverageTime() sim.VTimeInSec {
	t.lock.Lock()
	defer t.lock.Unlock()

	if t.taskCount == 0 {
		return 0
	}

	return t.totalTime / sim.VTimeInSec(t.taskCount)
}

// TotalTime returns the summed duration of the finished tasks.
func (t *AverageTimeTracer) TotalTime() sim.VTimeInSec {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.totalTime
}

// TotalCount returns the number of finished tasks.
func (t *AverageTimeTracer) TotalCount() uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.taskCount
}

// StartTask records the task start time.
func (t *AverageTimeTracer) StartTask(task Task) {
	task.StartTime = t.timeTeller.CurrentTime()

	if t.filter != nil && !t.filter(task) {
		return
	}

	t.lock.Lock()
	t.inflightTasks[task.ID] = task
	t.lock.Unlock()
}

// StepTask does nothing.
func (t *AverageTimeTracer) StepTask(_ Task) {
	// Do nothing
}

// EndTask adds the task's duration to the totals.
func (t *AverageTimeTracer) EndTask(task Task) {
	now := t.timeTeller.CurrentTime()

	t.lock.Lock()
	defer t.lock.Unlock()

	originalTask, ok := t.inflightTasks[task.ID]
	if !ok {
		return
	}

	t.totalTime += now - originalTask.StartTime
	t.taskCount++
	delete(t.inflightTasks, task.ID)
}
