package tracing

import (
	"encoding/json"
	"io"
	"os"
	"sync"

	"github.com/rs/xid"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/greenwave/sim"
)

// JSONTracer writes finished tasks into one JSON array.
type JSONTracer struct {
	timeTeller sim.TimeTeller
	w          io.Writer

	lock          sync.Mutex
	firstTask     bool
	inflightTasks map[string]Task
}

// NewJSONTracer creates a JSONTracer writing to the file at path. An empty
// path picks a fresh generated name.
func NewJSONTracer(timeTeller sim.TimeTeller, path string) *JSONTracer {
	if path == "" {
		path = "greenwave_trace_" + xid.New().String() + ".json"
	}

	f, err := os.Create(path)
	if err != nil {
		panic(err)
	}

	log.Infof("tracing to %s", path)

	t := NewJSONTracerWithWriter(timeTeller, f)

	atexit.Register(t.finish)

	return t
}

// NewJSONTracerWithWriter creates a JSONTracer with an injected writer. The
// caller owns the writer and must call finish through Terminate.
func NewJSONTracerWithWriter(
	timeTeller sim.TimeTeller,
	w io.Writer,
) *JSONTracer {
	_, err := w.Write([]byte("[\n"))
	if err != nil {
		panic(err)
	}

	return &JSONTracer{
		timeTeller:    timeTeller,
		w:             w,
		firstTask:     true,
		inflightTasks: make(map[string]Task),
	}
}

// StartTask records the task start time.
func (t *JSONTracer) StartTask(task Task) {
	task.StartTime = t.timeTeller.CurrentTime()

	t.lock.Lock()
	t.inflightTasks[task.ID] = task
	t.lock.Unlock()
}

// StepTask does nothing.
func (t *JSONTracer) StepTask(_ Task) {
	// Do nothing
}

// EndTask appends the finished task to the array.
func (t *JSONTracer) EndTask(task Task) {
	now := t.timeTeller.CurrentTime()

	t.lock.Lock()
	defer t.lock.Unlock()

	originalTask, ok := t.inflightTasks[task.ID]
	if !ok {
		return
	}
	originalTask.EndTime = now

	delete(t.inflightTasks, task.ID)

	if t.firstTask {
		t.firstTask = false
	} else {
		_, err := t.w.Write([]byte(",\n"))
		if err != nil {
			panic(err)
		}
	}

	b, err := json.Marshal(originalTask)
	if err != nil {
		panic(err)
	}

	_, err = t.w.Write(b)
	if err != nil {
		panic(err)
	}
}

// Terminate closes the JSON array. Tasks still in flight are not written.
func (t *JSONTracer) Terminate() {
	t.finish()
}

func (t *JSONTracer) finish() {
	t.lock.Lock()
	defer t.lock.Unlock()

	_, err := t.w.Write([]byte("\n]"))
	if err != nil {
		panic(err)
	}
}
