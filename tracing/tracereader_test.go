package tracing

import (
	"database/sql"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	gomock "go.uber.org/mock/gomock"

	"github.com/sarchlab/greenwave/datarecording"
	"github.com/sarchlab/greenwave/sim"
)

var _ = Describe("TraceReader", func() {
	var (
		mockCtrl *gomock.Controller
		db       *sql.DB
		reader   TraceReader
	)

	// One trip over two roads. The trip spans 1 to 9, the first leg 1 to 4,
	// the second leg 4 to 9.
	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		timeTeller := NewMockTimeTeller(mockCtrl)

		var err error
		db, err = sql.Open("sqlite3", ":memory:")
		Expect(err).ToNot(HaveOccurred())

		// Each in-memory connection is its own database, so keep to one.
		db.SetMaxOpenConns(1)

		recorder := datarecording.NewWithDB(db)
		tracer := NewDBTracer(timeTeller, recorder)

		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(1)).Times(2)
		tracer.StartTask(Task{
			ID: "t", Kind: "trip", What: "drive", Where: "Grid",
		})
		tracer.StartTask(Task{
			ID: "t.leg0", ParentID: "t",
			Kind: "leg", What: "Cross", Where: "RoadA",
		})

		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(4)).Times(2)
		tracer.EndTask(Task{ID: "t.leg0"})
		tracer.StartTask(Task{
			ID: "t.leg1", ParentID: "t",
			Kind: "leg", What: "Cross", Where: "RoadB",
		})

		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(9)).Times(2)
		tracer.EndTask(Task{ID: "t.leg1"})
		tracer.EndTask(Task{ID: "t"})

		recorder.Flush()

		reader = NewTraceReaderWithDB(db)
	})

	AfterEach(func() {
		db.Close()
		mockCtrl.Finish()
	})

	It("should list the locations", func() {
		Expect(reader.ListLocations()).To(
			Equal([]string{"Grid", "RoadA", "RoadB"}))
	})

	It("should select one task by ID", func() {
		tasks := reader.ListTasks(TaskQuery{ID: "t.leg0"})

		Expect(tasks).To(HaveLen(1))
		Expect(tasks[0].Where).To(Equal("RoadA"))
		Expect(tasks[0].StartTime).To(Equal(sim.VTimeInSec(1)))
		Expect(tasks[0].EndTime).To(Equal(sim.VTimeInSec(4)))
	})

	It("should list tasks of one kind in start-time order", func() {
		tasks := reader.ListTasks(TaskQuery{Kind: "leg"})

		Expect(tasks).To(HaveLen(2))
		Expect(tasks[0].ID).To(Equal("t.leg0"))
		Expect(tasks[1].ID).To(Equal("t.leg1"))
	})

	It("should attach the trip to its legs", func() {
		tasks := reader.ListTasks(TaskQuery{
			ParentID:         "t",
			EnableParentTask: true,
		})

		Expect(tasks).To(HaveLen(2))
		for _, task := range tasks {
			Expect(task.ParentTask).ToNot(BeNil())
			Expect(task.ParentTask.ID).To(Equal("t"))
			Expect(task.ParentTask.Kind).To(Equal("trip"))
		}
	})

	It("should leave the parent empty on top-level tasks", func() {
		tasks := reader.ListTasks(TaskQuery{
			Kind:             "trip",
			EnableParentTask: true,
		})

		Expect(tasks).To(HaveLen(1))
		Expect(tasks[0].ParentTask).To(BeNil())
	})

	It("should select tasks overlapping a window", func() {
		tasks := reader.ListTasks(TaskQuery{
			EnableTimeRange: true,
			StartTime:       5,
			EndTime:         10,
		})

		ids := []string{}
		for _, task := range tasks {
			ids = append(ids, task.ID)
		}
		Expect(ids).To(ConsistOf("t", "t.leg1"))
	})
})
