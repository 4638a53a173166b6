package tracing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	gomock "go.uber.org/mock/gomock"
)

var _ = Describe("BackTraceTracer", func() {
	var (
		mockCtrl *gomock.Controller
		printer  *MockTaskPrinter
		t        *BackTraceTracer
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		printer = NewMockTaskPrinter(mockCtrl)

		t = NewBackTraceTracer(printer)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should trace a single task", func() {
		t.StartTask(Task{ID: "1"})

		Expect(t.tracingTasks).To(HaveLen(1))
		Expect(t.tracingTasks["1"].ParentID).To(Equal(""))
	})

	It("should trace a trip with its legs", func() {
		t.StartTask(Task{ID: "1"})
		t.StartTask(Task{ID: "2", ParentID: "1"})
		t.StartTask(Task{ID: "3", ParentID: "2"})

		Expect(t.tracingTasks).To(HaveLen(3))
		Expect(t.tracingTasks["1"].ParentID).To(Equal(""))
		Expect(t.tracingTasks["2"].ParentID).To(Equal("1"))
		Expect(t.tracingTasks["3"].ParentID).To(Equal("2"))
	})

	It("should forget ended tasks", func() {
		t.StartTask(Task{ID: "1"})
		t.StartTask(Task{ID: "2", ParentID: "1"})
		t.StartTask(Task{ID: "3", ParentID: "2"})

		t.EndTask(Task{ID: "3"})
		t.EndTask(Task{ID: "2"})

		Expect(t.tracingTasks).To(HaveLen(1))
		Expect(t.tracingTasks["1"].ParentID).To(Equal(""))
	})

	It("should print a single task", func() {
		t.StartTask(Task{ID: "1"})

		printer.EXPECT().Print(Task{ID: "1"})

		t.DumpBackTrace(Task{ID: "1"})
	})

	It("should print the whole chain up to the trip", func() {
		t.StartTask(Task{ID: "1"})
		t.StartTask(Task{ID: "2", ParentID: "1"})
		t.StartTask(Task{ID: "3", ParentID: "2"})

		printer.EXPECT().Print(Task{ID: "3", ParentID: "2"})
		printer.EXPECT().Print(Task{ID: "2", ParentID: "1"})
		printer.EXPECT().Print(Task{ID: "1"})

		t.DumpBackTrace(Task{ID: "3", ParentID: "2"})
	})

	It("should stop at ancestors that already ended", func() {
		t.StartTask(Task{ID: "1"})
		t.StartTask(Task{ID: "2", ParentID: "1"})
		t.StartTask(Task{ID: "3", ParentID: "2"})
		t.EndTask(Task{ID: "2"})

		printer.EXPECT().Print(Task{ID: "3", ParentID: "2"})

		t.DumpBackTrace(Task{ID: "3", ParentID: "2"})
	})
})
