package tracing

import (
	"encoding/csv"
	"os"
	"strconv"
	"sync"

	"github.com/rs/xid"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/greenwave/sim"
)

var csvColumns = []string{
	"id", "parent_id", "kind", "what", "where", "start_time", "end_time",
}

// CSVTracer writes finished tasks to a CSV file, one row per task.
type CSVTracer struct {
	timeTeller sim.TimeTeller
	file       *os.File
	writer     *csv.Writer

	lock          sync.Mutex
	inflightTasks map[string]Task
}

// NewCSVTracer creates a CSVTracer writing to the file at path. An empty
// path picks a fresh generated name. An existing file is overwritten.
func NewCSVTracer(timeTeller sim.TimeTeller, path string) *CSVTracer {
	if path == "" {
		path = "greenwave_trace_" + xid.New().String() + ".csv"
	}

	file, err := os.Create(path)
	if err != nil {
		panic(err)
	}

	log.Infof("tracing to %s", path)

	t := &CSVTracer{
		timeTeller:    timeTeller,
		file:          file,
		writer:        csv.NewWriter(file),
		inflightTasks: make(map[string]Task),
	}

	if err := t.writer.Write(csvColumns); err != nil {
		panic(err)
	}

	atexit.Register(func() { t.Terminate() })

	return t
}

// StartTask records the task start time.
func (t *CSVTracer) StartTask(task Task) {
	task.StartTime = t.timeTeller.CurrentTime()

	t.lock.Lock()
	t.inflightTasks[task.ID] = task
	t.lock.Unlock()
}

// StepTask does nothing.
func (t *CSVTracer) StepTask(_ Task) {
	// Do nothing
}

// EndTask writes the finished task out as one row.
func (t *CSVTracer) EndTask(task Task) {
	now := t.timeTeller.CurrentTime()

	t.lock.Lock()
	defer t.lock.Unlock()

	originalTask, ok := t.inflightTasks[task.ID]
	if !ok {
		return
	}
	delete(t.inflightTasks, task.ID)

	row := []string{
		originalTask.ID,
		originalTask.ParentID,
		originalTask.Kind,
		originalTask.What,
		originalTask.Where,
		formatTime(originalTask.StartTime),
		formatTime(now),
	}
	if err := t.writer.Write(row); err != nil {
		panic(err)
	}
}

// Terminate flushes and closes the file. Tasks still in flight are not
// written.
func (t *CSVTracer) Terminate() {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.writer.Flush()
	if err := t.writer.Error(); err != nil {
		panic(err)
	}

	t.file.Close()
}

func formatTime(time sim.VTimeInSec) string {
	return strconv.FormatFloat(float64(time), 'f', -1, 64)
}
