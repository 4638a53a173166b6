package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("BasicComponent", func() {

	var (
		component *ComponentBase
	)

	BeforeEach(func() {
		component = NewComponentBase("Comp")
	})

	It("should set and get name", func() {
		Expect(component.Name()).To(Equal("Comp"))
	})

	It("should reject invalid names", func() {
		Expect(func() { NewComponentBase("comp_1") }).To(Panic())
	})
})
