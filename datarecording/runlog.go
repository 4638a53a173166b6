package datarecording

import (
	"os"
	"strings"
	"time"
)

const runInfoTable = "run_info"

// RunInfo is one property of a recorded run.
type RunInfo struct {
	Property string
	Value    string
}

// A RunRecorder writes the facts of a run into the run_info table: when it
// started and ended, how it was invoked, and whatever scenario properties
// the caller adds in between.
type RunRecorder struct {
	recorder DataRecorder
	entries  []RunInfo
}

// NewRunRecorder creates a RunRecorder writing through the given recorder.
func NewRunRecorder(recorder DataRecorder) *RunRecorder {
	r := &RunRecorder{recorder: recorder}
	r.recorder.CreateTable(runInfoTable, RunInfo{})

	return r
}

// Start captures the start time and the invocation of the process.
func (r *RunRecorder) Start() {
	now := time.Now().Format("2006-01-02 15:04:05.000000000")
	r.entries = append(r.entries, RunInfo{"Start Time", now})

	cmd := strings.Join(os.Args, " ")
	r.entries = append(r.entries, RunInfo{"Command", cmd})

	wd, err := os.Getwd()
	if err == nil {
		r.entries = append(r.entries, RunInfo{"Working Directory", wd})
	}
}

// Record adds one scenario property to the run log.
func (r *RunRecorder) Record(property, value string) {
	r.entries = append(r.entries, RunInfo{property, value})
}

// End captures the end time and writes the whole run log out.
func (r *RunRecorder) End() {
	now := time.Now().Format("2006-01-02 15:04:05.000000000")
	r.entries = append(r.entries, RunInfo{"End Time", now})

	for _, entry := range r.entries {
		r.recorder.InsertData(runInfoTable, entry)
	}
	r.entries = nil

	r.recorder.Flush()
}
