package tracing

import (
	"database/sql"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	gomock "go.uber.org/mock/gomock"

	"github.com/sarchlab/greenwave/datarecording"
	"github.com/sarchlab/greenwave/sim"
)

var _ = Describe("DBTracer", func() {
	var (
		mockCtrl   *gomock.Controller
		timeTeller *MockTimeTeller
		db         *sql.DB
		recorder   datarecording.DataRecorder
		tracer     *DBTracer
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		timeTeller = NewMockTimeTeller(mockCtrl)

		var err error
		db, err = sql.Open("sqlite3", ":memory:")
		Expect(err).ToNot(HaveOccurred())

		// Each in-memory connection is its own database, so keep to one.
		db.SetMaxOpenConns(1)

		recorder = datarecording.NewWithDB(db)
		tracer = NewDBTracer(timeTeller, recorder)
	})

	AfterEach(func() {
		db.Close()
		mockCtrl.Finish()
	})

	legTask := func() Task {
		return Task{
			ID:       "Vehicle[0].trip.leg0",
			ParentID: "Vehicle[0].trip",
			Kind:     "leg",
			What:     "Cross",
			Where:    "Grid.Junction[0][0].Top.In",
		}
	}

	It("should write a finished task with its times", func() {
		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(3))
		tracer.StartTask(legTask())

		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(7))
		tracer.EndTask(Task{ID: "Vehicle[0].trip.leg0"})

		recorder.Flush()

		tasks := NewTraceReaderWithDB(db).ListTasks(TaskQuery{})
		Expect(tasks).To(HaveLen(1))
		Expect(tasks[0].ID).To(Equal("Vehicle[0].trip.leg0"))
		Expect(tasks[0].ParentID).To(Equal("Vehicle[0].trip"))
		Expect(tasks[0].Kind).To(Equal("leg"))
		Expect(tasks[0].What).To(Equal("Cross"))
		Expect(tasks[0].Where).To(Equal("Grid.Junction[0][0].Top.In"))
		Expect(tasks[0].StartTime).To(Equal(sim.VTimeInSec(3)))
		Expect(tasks[0].EndTime).To(Equal(sim.VTimeInSec(7)))
	})

	It("should record the steps of a tracked task", func() {
		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(2))
		tracer.StartTask(legTask())

		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(4))
		tracer.StepTask(Task{
			ID:    "Vehicle[0].trip.leg0",
			Steps: []TaskStep{{What: "yield"}},
		})

		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(6))
		tracer.EndTask(Task{ID: "Vehicle[0].trip.leg0"})

		recorder.Flush()

		steps := NewTraceReaderWithDB(db).
			ListTaskSteps("Vehicle[0].trip.leg0")
		Expect(steps).To(HaveLen(1))
		Expect(steps[0].Time).To(Equal(sim.VTimeInSec(4)))
		Expect(steps[0].What).To(Equal("yield"))
	})

	It("should ignore steps of tasks it does not track", func() {
		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(4))
		tracer.StepTask(Task{
			ID:    "Vehicle[9].trip.leg0",
			Steps: []TaskStep{{What: "yield"}},
		})

		recorder.Flush()

		steps := NewTraceReaderWithDB(db).
			ListTaskSteps("Vehicle[9].trip.leg0")
		Expect(steps).To(BeEmpty())
	})

	It("should drop tasks that end before the window opens", func() {
		tracer.SetTimeRange(10, 20)

		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(3))
		tracer.StartTask(legTask())

		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(7))
		tracer.EndTask(Task{ID: "Vehicle[0].trip.leg0"})

		recorder.Flush()

		tasks := NewTraceReaderWithDB(db).ListTasks(TaskQuery{})
		Expect(tasks).To(BeEmpty())
	})

	It("should drop tasks that start after the window closes", func() {
		tracer.SetTimeRange(1, 5)

		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(7))
		tracer.StartTask(legTask())

		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(9))
		tracer.EndTask(Task{ID: "Vehicle[0].trip.leg0"})

		recorder.Flush()

		tasks := NewTraceReaderWithDB(db).ListTasks(TaskQuery{})
		Expect(tasks).To(BeEmpty())
	})

	It("should keep tasks that overlap the window", func() {
		tracer.SetTimeRange(5, 10)

		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(3))
		tracer.StartTask(legTask())

		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(7))
		tracer.EndTask(Task{ID: "Vehicle[0].trip.leg0"})

		recorder.Flush()

		tasks := NewTraceReaderWithDB(db).ListTasks(TaskQuery{})
		Expect(tasks).To(HaveLen(1))
	})

	It("should refuse a task without a location", func() {
		task := legTask()
		task.Where = ""

		Expect(func() { tracer.StartTask(task) }).To(Panic())
	})

	It("should not write tasks still in flight at termination", func() {
		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(3))
		tracer.StartTask(legTask())

		tracer.Terminate()

		tasks := NewTraceReaderWithDB(db).ListTasks(TaskQuery{})
		Expect(tasks).To(BeEmpty())
	})
})
