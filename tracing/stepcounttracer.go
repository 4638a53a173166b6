package tracing

import (
	"sync"
)

// StepCountTracer counts how often each kind of step fires across the
// matching tasks. Counting the "yield" steps of leg tasks, for example,
// measures how often queue heads had to hand their junction lock over.
type StepCountTracer struct {
	filter TaskFilter

	lock              sync.Mutex
	inflightTasks     map[string]Task
	stepNames         []string
	stepCount         map[string]uint64
	taskWithStepCount map[string]uint64
}

// NewStepCountTracer creates a new StepCountTracer. A nil filter accepts
// everything.
func NewStepCountTracer(filter TaskFilter) *StepCountTracer {
	return &StepCountTracer{
		filter:            filter,
		inflightTasks:     make(map[string]Task),
		stepCount:         make(map[string]uint64),
		taskWithStepCount: make(map[string]uint64),
	}
}

// StepNames returns the step names seen so far, in first-seen order.
func (t *StepCountTracer) StepNames() []string {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.stepNames
}

// StepCount returns how many times the named step fired.
func (t *StepCountTracer) StepCount(stepName string) uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.stepCount[stepName]
}

// TaskCount returns how many distinct tasks reached the named step.
func (t *StepCountTracer) TaskCount(stepName string) uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.taskWithStepCount[stepName]
}

// StartTask registers the task if the filter accepts it.
func (t *StepCountTracer) StartTask(task Task) {
	if t.filter != nil && !t.filter(task) {
		return
	}

	t.lock.Lock()
	t.inflightTasks[task.ID] = task
	t.lock.Unlock()
}

// StepTask counts the step carried by the task.
func (t *StepCountTracer) StepTask(task Task) {
	t.lock.Lock()
	defer t.lock.Unlock()

	originalTask, ok := t.inflightTasks[task.ID]
	if !ok {
		return
	}

	step := task.Steps[0]

	if _, seen := t.stepCount[step.What]; !seen {
		t.stepNames = append(t.stepNames, step.What)
	}
	t.stepCount[step.What]++

	if !taskContainsStep(originalTask, step) {
		t.taskWithStepCount[step.What]++
		originalTask.Steps = append(originalTask.Steps, step)
		t.inflightTasks[task.ID] = originalTask
	}
}

func taskContainsStep(task Task, step TaskStep) bool {
	for _, s := range task.Steps {
		if s.What == step.What {
			return true
		}
	}

	return false
}

// EndTask forgets the task.
func (t *StepCountTracer) EndTask(task Task) {
	t.lock.Lock()
	delete(t.inflightTasks, task.ID)
	t.lock.Unlock()
}
