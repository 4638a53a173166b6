package tracing

import (
	"encoding/csv"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	gomock "go.uber.org/mock/gomock"

	"github.com/sarchlab/greenwave/sim"
)

var _ = Describe("CSVTracer", func() {
	var (
		mockCtrl   *gomock.Controller
		timeTeller *MockTimeTeller
		path       string
		tracer     *CSVTracer
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		timeTeller = NewMockTimeTeller(mockCtrl)

		path = filepath.Join(GinkgoT().TempDir(), "trace.csv")
		tracer = NewCSVTracer(timeTeller, path)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	readRows := func() [][]string {
		file, err := os.Open(path)
		Expect(err).ToNot(HaveOccurred())
		defer file.Close()

		rows, err := csv.NewReader(file).ReadAll()
		Expect(err).ToNot(HaveOccurred())

		return rows
	}

	It("should write one row per finished task", func() {
		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(1.5))
		tracer.StartTask(Task{
			ID: "t.leg0", ParentID: "t",
			Kind: "leg", What: "Cross", Where: "RoadA",
		})

		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(4))
		tracer.EndTask(Task{ID: "t.leg0"})

		tracer.Terminate()

		rows := readRows()
		Expect(rows).To(HaveLen(2))
		Expect(rows[0]).To(Equal(csvColumns))
		Expect(rows[1]).To(Equal([]string{
			"t.leg0", "t", "leg", "Cross", "RoadA", "1.5", "4",
		}))
	})

	It("should not write tasks still in flight", func() {
		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(1))
		tracer.StartTask(Task{
			ID: "t.leg0", Kind: "leg", What: "Cross", Where: "RoadA",
		})

		tracer.Terminate()

		Expect(readRows()).To(HaveLen(1))
	})
})
