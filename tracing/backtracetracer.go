package tracing

import (
	"fmt"
	"sync"
)

// TaskPrinter can print tasks with a format.
type TaskPrinter interface {
	Print(task Task)
}

type defaultTaskPrinter struct {
}

func (p *defaultTaskPrinter) Print(task Task) {
	fmt.Printf("%s-%s@%s\n", task.Kind, task.What, task.Where)
}

// BackTraceTracer keeps the tasks that have started but not finished. When a
// run gets stuck, dumping the backtrace of a leg task walks up to the trip
// it belongs to and shows where the vehicle sits.
type BackTraceTracer struct {
	printer      TaskPrinter
	tracingTasks map[string]Task
	lock         sync.Mutex
}

// NewBackTraceTracer creates a new BackTraceTracer. A nil printer prints
// kind, what, and where on one line.
func NewBackTraceTracer(printer TaskPrinter) *BackTraceTracer {
	t := &BackTraceTracer{
		printer:      printer,
		tracingTasks: make(map[string]Task),
	}

	if t.printer == nil {
		t.printer = &defaultTaskPrinter{}
	}

	return t
}

// StartTask remembers the task until it ends.
func (t *BackTraceTracer) StartTask(task Task) {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.tracingTasks[task.ID] = task
}

// StepTask does nothing.
func (t *BackTraceTracer) StepTask(task Task) {
	// Do nothing
}

// EndTask forgets the task.
func (t *BackTraceTracer) EndTask(task Task) {
	t.lock.Lock()
	defer t.lock.Unlock()

	delete(t.tracingTasks, task.ID)
}

// DumpBackTrace prints the task and its unfinished ancestors.
func (t *BackTraceTracer) DumpBackTrace(task Task) {
	t.printer.Print(task)

	if task.ParentID == "" {
		return
	}

	parentTask, ok := t.tracingTasks[task.ParentID]
	if !ok {
		return
	}

	t.DumpBackTrace(parentTask)
}
