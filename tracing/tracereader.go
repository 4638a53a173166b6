package tracing

import (
	"database/sql"
	"strings"

	// SQLite driver for database/sql.
	_ "github.com/mattn/go-sqlite3"

	"github.com/sarchlab/greenwave/sim"
)

// A TaskQuery selects tasks from a recorded trace. Empty fields do not
// constrain the selection.
type TaskQuery struct {
	// ID selects a single task.
	ID string

	// ParentID selects the child tasks of one task, such as the legs of a
	// trip.
	ParentID string

	// Kind selects tasks of one kind, trips or legs.
	Kind string

	// Where selects the tasks recorded at one location.
	Where string

	// EnableTimeRange selects tasks that overlap the window from StartTime
	// to EndTime.
	EnableTimeRange    bool
	StartTime, EndTime float64

	// EnableParentTask attaches the parent task to each selected task that
	// has one.
	EnableParentTask bool
}

// A TraceReader reads back a trace that a DBTracer wrote.
type TraceReader interface {
	// ListLocations returns all the locations in the trace, sorted.
	ListLocations() []string

	// ListTasks returns the tasks a query selects, in start-time order.
	ListTasks(query TaskQuery) []Task

	// ListTaskSteps returns the recorded steps of one task, in time order.
	ListTaskSteps(taskID string) []TaskStep
}

var _ TraceReader = (*sqliteTraceReader)(nil)

// NewTraceReader opens the trace recorded in the file at path.
func NewTraceReader(path string) TraceReader {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		panic(err)
	}

	return &sqliteTraceReader{db: db}
}

// NewTraceReaderWithDB creates a TraceReader on an already opened database.
func NewTraceReaderWithDB(db *sql.DB) TraceReader {
	return &sqliteTraceReader{db: db}
}

type sqliteTraceReader struct {
	db *sql.DB
}

func (r *sqliteTraceReader) ListLocations() []string {
	rows, err := r.db.Query(
		"SELECT DISTINCT Location FROM trace ORDER BY Location")
	if err != nil {
		panic(err)
	}
	defer rows.Close()

	var locations []string
	for rows.Next() {
		var location string
		if err := rows.Scan(&location); err != nil {
			panic(err)
		}
		locations = append(locations, location)
	}

	return locations
}

func (r *sqliteTraceReader) ListTasks(query TaskQuery) []Task {
	stmt, args := buildTaskQuery(query)

	rows, err := r.db.Query(stmt, args...)
	if err != nil {
		panic(err)
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		tasks = append(tasks, scanTask(rows, query.EnableParentTask))
	}

	return tasks
}

func buildTaskQuery(query TaskQuery) (string, []any) {
	stmt := `SELECT
		t.ID, t.ParentID, t.Kind, t.What, t.Location,
		t.StartTime, t.EndTime`

	if query.EnableParentTask {
		stmt += `,
		pt.ID, pt.ParentID, pt.Kind, pt.What, pt.Location,
		pt.StartTime, pt.EndTime`
	}

	stmt += `
	FROM trace t`

	if query.EnableParentTask {
		stmt += `
	LEFT JOIN trace pt ON t.ParentID = pt.ID`
	}

	conditions, args := taskQueryConditions(query)
	if len(conditions) > 0 {
		stmt += `
	WHERE ` + strings.Join(conditions, " AND ")
	}

	stmt += `
	ORDER BY t.StartTime`

	return stmt, args
}

func taskQueryConditions(query TaskQuery) ([]string, []any) {
	var conditions []string
	var args []any

	if query.ID != "" {
		conditions = append(conditions, "t.ID = ?")
		args = append(args, query.ID)
	}

	if query.ParentID != "" {
		conditions = append(conditions, "t.ParentID = ?")
		args = append(args, query.ParentID)
	}

	if query.Kind != "" {
		conditions = append(conditions, "t.Kind = ?")
		args = append(args, query.Kind)
	}

	if query.Where != "" {
		conditions = append(conditions, "t.Location = ?")
		args = append(args, query.Where)
	}

	if query.EnableTimeRange {
		conditions = append(conditions,
			"t.EndTime > ?", "t.StartTime < ?")
		args = append(args, query.StartTime, query.EndTime)
	}

	return conditions, args
}

func scanTask(rows *sql.Rows, withParent bool) Task {
	t := Task{}
	var tStart, tEnd float64

	if !withParent {
		err := rows.Scan(
			&t.ID, &t.ParentID, &t.Kind, &t.What, &t.Where,
			&tStart, &tEnd,
		)
		if err != nil {
			panic(err)
		}

		t.StartTime = sim.VTimeInSec(tStart)
		t.EndTime = sim.VTimeInSec(tEnd)

		return t
	}

	// Top-level tasks have no parent row, so the joined columns scan as
	// NULLs.
	var (
		ptID, ptParentID, ptKind, ptWhat, ptWhere sql.NullString
		ptStart, ptEnd                            sql.NullFloat64
	)

	err := rows.Scan(
		&t.ID, &t.ParentID, &t.Kind, &t.What, &t.Where,
		&tStart, &tEnd,
		&ptID, &ptParentID, &ptKind, &ptWhat, &ptWhere,
		&ptStart, &ptEnd,
	)
	if err != nil {
		panic(err)
	}

	t.StartTime = sim.VTimeInSec(tStart)
	t.EndTime = sim.VTimeInSec(tEnd)

	if ptID.Valid {
		t.ParentTask = &Task{
			ID:        ptID.String,
			ParentID:  ptParentID.String,
			Kind:      ptKind.String,
			What:      ptWhat.String,
			Where:     ptWhere.String,
			StartTime: sim.VTimeInSec(ptStart.Float64),
			EndTime:   sim.VTimeInSec(ptEnd.Float64),
		}
	}

	return t
}

func (r *sqliteTraceReader) ListTaskSteps(taskID string) []TaskStep {
	rows, err := r.db.Query(
		"SELECT Time, What FROM trace_steps WHERE TaskID = ? ORDER BY Time",
		taskID)
	if err != nil {
		panic(err)
	}
	defer rows.Close()

	var steps []TaskStep
	for rows.Next() {
		var step TaskStep
		var time float64

		if err := rows.Scan(&time, &step.What); err != nil {
			panic(err)
		}
		step.Time = sim.VTimeInSec(time)

		steps = append(steps, step)
	}

	return steps
}
