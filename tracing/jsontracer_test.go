package tracing

import (
	"bytes"
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	gomock "go.uber.org/mock/gomock"

	"github.com/sarchlab/greenwave/sim"
)

var _ = Describe("JSONTracer", func() {
	var (
		mockCtrl   *gomock.Controller
		timeTeller *MockTimeTeller
		buf        *bytes.Buffer
		tracer     *JSONTracer
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		timeTeller = NewMockTimeTeller(mockCtrl)

		buf = &bytes.Buffer{}
		tracer = NewJSONTracerWithWriter(timeTeller, buf)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should write finished tasks as one JSON array", func() {
		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(1))
		tracer.StartTask(Task{
			ID: "t", Kind: "trip", What: "drive", Where: "Grid",
		})

		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(2))
		tracer.StartTask(Task{
			ID: "t.leg0", ParentID: "t",
			Kind: "leg", What: "Cross", Where: "RoadA",
		})

		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(3))
		tracer.EndTask(Task{ID: "t.leg0"})

		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(4))
		tracer.EndTask(Task{ID: "t"})

		tracer.Terminate()

		var tasks []Task
		Expect(json.Unmarshal(buf.Bytes(), &tasks)).To(Succeed())

		Expect(tasks).To(HaveLen(2))
		Expect(tasks[0].ID).To(Equal("t.leg0"))
		Expect(tasks[0].StartTime).To(Equal(sim.VTimeInSec(2)))
		Expect(tasks[0].EndTime).To(Equal(sim.VTimeInSec(3)))
		Expect(tasks[1].ID).To(Equal("t"))
		Expect(tasks[1].EndTime).To(Equal(sim.VTimeInSec(4)))
	})

	It("should stay valid JSON with no finished task", func() {
		tracer.Terminate()

		var tasks []Task
		Expect(json.Unmarshal(buf.Bytes(), &tasks)).To(Succeed())
		Expect(tasks).To(BeEmpty())
	})
})
