package vehicle

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("PlanCrossing", func() {
	It("should accelerate, cruise, and report the design speed on a long road", func() {
		c, err := PlanCrossing(0, 100, 13, 3.5, -8.1)

		Expect(err).To(BeNil())
		// 13/3.5 to reach the design speed, 75.857 m left to cruise.
		Expect(c.GreenTime).To(BeNumerically("~", 9.5494505, 1e-6))
		Expect(c.GreenSpeed).To(BeNumerically("~", 13.0, 1e-9))
		// Accelerate for 24.14 m, cruise for 65.43 m, brake for 10.43 m.
		Expect(c.StopTime).To(BeNumerically("~", 10.3519197, 1e-6))
	})

	It("should keep accelerating when the road ends before the design speed", func() {
		c, err := PlanCrossing(0, 20, 13, 3.5, -8.1)

		Expect(err).To(BeNil())
		Expect(c.GreenSpeed).To(BeNumerically("~", 11.8321596, 1e-6))
		Expect(c.GreenTime).To(BeNumerically("~", 3.3806170, 1e-6))
		// The stop plan peaks at 9.887 m/s, below the design speed.
		Expect(c.StopTime).To(BeNumerically("~", 4.0455952, 1e-6))
	})

	It("should cruise the whole road when entering at the design speed", func() {
		c, err := PlanCrossing(13, 100, 13, 3.5, -8.1)

		Expect(err).To(BeNil())
		Expect(c.GreenTime).To(BeNumerically("~", 100.0/13.0, 1e-6))
		Expect(c.GreenSpeed).To(BeNumerically("~", 13.0, 1e-9))
		Expect(c.StopTime).To(BeNumerically("~", 8.4947768, 1e-6))
	})

	It("should clamp the entry speed to the design speed", func() {
		fast, err := PlanCrossing(20, 100, 13, 3.5, -8.1)
		Expect(err).To(BeNil())

		cruise, err := PlanCrossing(13, 100, 13, 3.5, -8.1)
		Expect(err).To(BeNil())

		Expect(fast).To(Equal(cruise))
	})

	It("should brake the whole way when the road is too short to stop from the entry speed", func() {
		c, err := PlanCrossing(13, 5, 13, 3.5, -8.1)

		Expect(err).To(BeNil())
		// 10.43 m are needed to stop from 13 m/s, the road only has 5.
		Expect(c.StopTime).To(BeNumerically("~", 0.4468109, 1e-6))
		Expect(c.GreenTime).To(BeNumerically("~", 5.0/13.0, 1e-6))
		Expect(c.GreenSpeed).To(BeNumerically("~", 13.0, 1e-9))
	})

	It("should reject a non-positive distance", func() {
		_, err := PlanCrossing(0, 0, 13, 3.5, -8.1)
		Expect(err).To(HaveOccurred())
	})

	It("should reject a non-positive design speed", func() {
		_, err := PlanCrossing(0, 100, 0, 3.5, -8.1)
		Expect(err).To(HaveOccurred())
	})

	It("should reject a negative entry speed", func() {
		_, err := PlanCrossing(-1, 100, 13, 3.5, -8.1)
		Expect(err).To(HaveOccurred())
	})

	It("should reject a non-positive acceleration", func() {
		_, err := PlanCrossing(0, 100, 13, 0, -8.1)
		Expect(err).To(HaveOccurred())
	})

	It("should reject a non-negative deceleration", func() {
		_, err := PlanCrossing(0, 100, 13, 3.5, 8.1)
		Expect(err).To(HaveOccurred())
	})
})
