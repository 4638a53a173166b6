package roadnet_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/greenwave/roadnet"
	"github.com/sarchlab/greenwave/sim"
)

type stubOccupant struct {
	length float64
}

func (o *stubOccupant) Length() float64 {
	return o.length
}

var _ = Describe("Road", func() {
	var (
		engine sim.Engine
		start  *roadnet.Junction
		end    *roadnet.Junction
		road   *roadnet.Road
	)

	BeforeEach(func() {
		engine = sim.NewSerialEngine()
		start = roadnet.NewJunction("Start", engine, 1, true, false)
		end = roadnet.NewJunction("End", engine, 1, false, true)
		road = roadnet.NewRoad("Road", engine, start, end, 20, 13)
	})

	It("should start empty", func() {
		Expect(road.QueueLength()).To(Equal(0))
		Expect(road.OccupiedLength()).To(Equal(0.0))
		Expect(road.AvailableCapacity()).To(Equal(20.0))
		Expect(road.Head()).To(BeNil())
	})

	It("should track occupancy as vehicles enter and leave", func() {
		o1 := &stubOccupant{length: 4.9}
		o2 := &stubOccupant{length: 4.9}

		road.Enqueue(o1)
		road.Enqueue(o2)

		Expect(road.QueueLength()).To(Equal(2))
		Expect(road.OccupiedLength()).To(BeNumerically("~", 9.8))
		Expect(road.AvailableCapacity()).To(BeNumerically("~", 10.2))
		Expect(road.Head()).To(BeIdenticalTo(o1))
		Expect(road.IsHead(o1)).To(BeTrue())
		Expect(road.IsHead(o2)).To(BeFalse())

		Expect(road.Dequeue(o1)).To(BeTrue())

		Expect(road.QueueLength()).To(Equal(1))
		Expect(road.OccupiedLength()).To(BeNumerically("~", 4.9))
		Expect(road.Head()).To(BeIdenticalTo(o2))
	})

	It("should remove vehicles from the middle of the queue", func() {
		o1 := &stubOccupant{length: 3}
		o2 := &stubOccupant{length: 3}
		o3 := &stubOccupant{length: 3}

		road.Enqueue(o1)
		road.Enqueue(o2)
		road.Enqueue(o3)

		Expect(road.Dequeue(o2)).To(BeTrue())
		Expect(road.QueueLength()).To(Equal(2))
		Expect(road.OccupiedLength()).To(BeNumerically("~", 6))
	})

	It("should not remove a vehicle that is not queued", func() {
		Expect(road.Dequeue(&stubOccupant{length: 3})).To(BeFalse())
	})

	It("should admit a vehicle only if it fits with the safety gap", func() {
		road.Enqueue(&stubOccupant{length: 8})

		Expect(road.CanAdmit(10)).To(BeTrue())
		Expect(road.CanAdmit(10.1)).To(BeFalse())
	})

	It("should rotate the head after two consecutive stalls", func() {
		o1 := &stubOccupant{length: 3}
		o2 := &stubOccupant{length: 3}
		o3 := &stubOccupant{length: 3}

		road.Enqueue(o1)
		road.Enqueue(o2)
		road.Enqueue(o3)

		Expect(road.NotifyHeadStalled(o1)).To(BeFalse())
		Expect(road.NotifyHeadStalled(o1)).To(BeTrue())

		Expect(road.Head()).To(BeIdenticalTo(o2))
		Expect(road.QueueLength()).To(Equal(3))
		Expect(road.OccupiedLength()).To(BeNumerically("~", 9))
	})

	It("should forget a stall once the head makes progress", func() {
		o1 := &stubOccupant{length: 3}
		road.Enqueue(o1)

		Expect(road.NotifyHeadStalled(o1)).To(BeFalse())
		road.NotifyHeadProgress()

		Expect(road.NotifyHeadStalled(o1)).To(BeFalse())
	})

	It("should restart the stall count when the head changes", func() {
		o1 := &stubOccupant{length: 3}
		o2 := &stubOccupant{length: 3}

		road.Enqueue(o1)
		road.Enqueue(o2)

		Expect(road.NotifyHeadStalled(o1)).To(BeFalse())
		Expect(road.NotifyHeadStalled(o2)).To(BeFalse())
		Expect(road.NotifyHeadStalled(o2)).To(BeTrue())
	})

	It("should restart the stall count when the stalled head leaves", func() {
		o1 := &stubOccupant{length: 3}
		o2 := &stubOccupant{length: 3}

		road.Enqueue(o1)
		road.Enqueue(o2)

		Expect(road.NotifyHeadStalled(o1)).To(BeFalse())
		Expect(road.Dequeue(o1)).To(BeTrue())

		Expect(road.NotifyHeadStalled(o2)).To(BeFalse())
	})

	It("should refuse a second light", func() {
		road.SetLight(newTestLight(engine, "Road.Light"))

		Expect(func() {
			road.SetLight(newTestLight(engine, "Road.Light[1]"))
		}).To(Panic())
	})
})
