package tracing

import (
	"sync"

	"github.com/tebeka/atexit"

	"github.com/sarchlab/greenwave/datarecording"
	"github.com/sarchlab/greenwave/sim"
)

const (
	traceTable     = "trace"
	traceStepTable = "trace_steps"
)

// Location carries the task's Where field. SQL reserves WHERE, so the
// column gets a different name.
type traceEntry struct {
	ID        string
	ParentID  string
	Kind      string
	What      string
	Location  string
	StartTime float64
	EndTime   float64
}

type traceStepEntry struct {
	TaskID string
	Time   float64
	What   string
}

// DBTracer writes tasks through a DataRecorder, one row per finished task
// and one row per step. Tasks still in flight when the run stops are not
// written; the run's queued-vehicle records cover those.
type DBTracer struct {
	mu         sync.Mutex
	timeTeller sim.TimeTeller
	backend    datarecording.DataRecorder

	startTime, endTime sim.VTimeInSec

	tracingTasks map[string]Task
}

// NewDBTracer creates a new DBTracer writing through the given recorder.
func NewDBTracer(
	timeTeller sim.TimeTeller,
	dataRecorder datarecording.DataRecorder,
) *DBTracer {
	dataRecorder.CreateTable(traceTable, traceEntry{})
	dataRecorder.CreateTable(traceStepTable, traceStepEntry{})

	t := &DBTracer{
		timeTeller:   timeTeller,
		backend:      dataRecorder,
		tracingTasks: make(map[string]Task),
	}

	atexit.Register(func() { t.Terminate() })

	return t
}

// SetTimeRange limits recording to tasks that overlap the window. Tasks
// starting after the end or ending before the start are dropped.
func (t *DBTracer) SetTimeRange(startTime, endTime sim.VTimeInSec) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.startTime = startTime
	t.endTime = endTime
}

// StartTask marks the start of a task.
func (t *DBTracer) StartTask(task Task) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.startingTaskMustBeValid(task)

	task.StartTime = t.timeTeller.CurrentTime()
	if t.endTime > 0 && task.StartTime > t.endTime {
		return
	}

	t.tracingTasks[task.ID] = task
}

func (t *DBTracer) startingTaskMustBeValid(task Task) {
	if task.ID == "" {
		panic("task ID must be set")
	}

	if task.Kind == "" {
		panic("task kind must be set")
	}

	if task.What == "" {
		panic("task what must be set")
	}

	if task.Where == "" {
		panic("task where must be set")
	}
}

// StepTask records one step of a tracked task.
func (t *DBTracer) StepTask(task Task) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.tracingTasks[task.ID]; !ok {
		return
	}

	t.backend.InsertData(traceStepTable, traceStepEntry{
		TaskID: task.ID,
		Time:   float64(t.timeTeller.CurrentTime()),
		What:   task.Steps[0].What,
	})
}

// EndTask marks the end of a task and writes it out.
func (t *DBTracer) EndTask(task Task) {
	t.mu.Lock()
	defer t.mu.Unlock()

	endTime := t.timeTeller.CurrentTime()
	if t.startTime > 0 && endTime < t.startTime {
		delete(t.tracingTasks, task.ID)
		return
	}

	originalTask, ok := t.tracingTasks[task.ID]
	if !ok {
		return
	}
	delete(t.tracingTasks, task.ID)

	t.backend.InsertData(traceTable, traceEntry{
		ID:        originalTask.ID,
		ParentID:  originalTask.ParentID,
		Kind:      originalTask.Kind,
		What:      originalTask.What,
		Location:  originalTask.Where,
		StartTime: float64(originalTask.StartTime),
		EndTime:   float64(endTime),
	})
}

// Terminate drops the tasks still in flight and flushes the backend.
func (t *DBTracer) Terminate() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.tracingTasks = make(map[string]Task)
	t.backend.Flush()
}
