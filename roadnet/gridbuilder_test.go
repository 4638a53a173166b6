package roadnet_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/greenwave/roadnet"
	"github.com/sarchlab/greenwave/signal"
	"github.com/sarchlab/greenwave/sim"
)

var _ = Describe("GridBuilder", func() {
	var engine sim.Engine

	BeforeEach(func() {
		engine = sim.NewSerialEngine()
	})

	Context("with entry and exit borders", func() {
		var net *roadnet.Network

		BeforeEach(func() {
			net = roadnet.MakeGridBuilder().
				WithEngine(engine).
				WithSize(2, 2).
				Build("Grid")
		})

		It("should create the grid junctions and border nodes", func() {
			Expect(net.Junctions()).To(HaveLen(8))

			_, ok := net.JunctionByName("Grid.Junction[1][0]")
			Expect(ok).To(BeTrue())
		})

		It("should create two roads per junction pair plus the external roads",
			func() {
				Expect(net.Roads()).To(HaveLen(12))
			})

		It("should start horizontal roads green and vertical roads red",
			func() {
				horizontal, ok := net.RoadByName("Grid.Road[0][0][0][1]")
				Expect(ok).To(BeTrue())
				Expect(horizontal.Light().Colour()).To(Equal(signal.Green))

				vertical, ok := net.RoadByName("Grid.Road[0][0][1][0]")
				Expect(ok).To(BeTrue())
				Expect(vertical.Light().Colour()).To(Equal(signal.Red))
			})

		It("should attach each light to the junction the road arrives at",
			func() {
				road, _ := net.RoadByName("Grid.Road[0][0][0][1]")
				arrival, _ := net.JunctionByName("Grid.Junction[0][1]")

				Expect(arrival.Lights()).To(ContainElement(road.Light()))
			})

		It("should size horizontal and vertical roads separately", func() {
			net = roadnet.MakeGridBuilder().
				WithEngine(engine).
				WithSize(2, 2).
				WithRoadGeometry(135, 120, 14).
				Build("Sized")

			horizontal, _ := net.RoadByName("Sized.Road[0][0][0][1]")
			Expect(horizontal.Distance()).To(Equal(135.0))
			Expect(horizontal.Speed()).To(Equal(14.0))

			vertical, _ := net.RoadByName("Sized.Road[0][0][1][0]")
			Expect(vertical.Distance()).To(Equal(120.0))
			Expect(vertical.Speed()).To(Equal(14.0))
		})

		It("should let vehicles enter at the top and leave at the bottom",
			func() {
				entry, ok := net.JunctionByName("Grid.Junction[0][1].In")
				Expect(ok).To(BeTrue())
				Expect(entry.IsEntry()).To(BeTrue())
				Expect(entry.IsExit()).To(BeFalse())

				exit, ok := net.JunctionByName("Grid.Junction[1][1].Out")
				Expect(ok).To(BeTrue())
				Expect(exit.IsEntry()).To(BeFalse())
				Expect(exit.IsExit()).To(BeTrue())

				Expect(net.EntryRoads()).To(HaveLen(2))
			})

		It("should group a junction's approaches by orientation", func() {
			j, _ := net.JunctionByName("Grid.Junction[0][0]")
			groups := j.ConflictGroups()

			Expect(groups).To(HaveLen(2))
			Expect(groups[0].Name).To(Equal("Grid.Junction[0][0].Vertical"))
			Expect(groups[0].Members).To(HaveLen(2))
			Expect(groups[1].Name).To(Equal("Grid.Junction[0][0].Horizontal"))
			Expect(groups[1].Members).To(HaveLen(1))
		})

		It("should include the entry road in the vertical group", func() {
			j, _ := net.JunctionByName("Grid.Junction[0][0]")
			road, _ := net.RoadByName("Grid.Junction[0][0].In.Road")

			Expect(j.ConflictGroups()[0].Members).To(ContainElement(
				signal.Member{Light: road.Light(), Detector: road}))
		})

		It("should return a frozen network", func() {
			extra := roadnet.NewJunction("Extra", engine, 1, false, false)
			Expect(func() { net.AddJunction(extra) }).To(Panic())
		})
	})

	Context("with composite borders", func() {
		var net *roadnet.Network

		BeforeEach(func() {
			net = roadnet.MakeGridBuilder().
				WithEngine(engine).
				WithSize(3, 3).
				WithCompositeBorders().
				Build("Grid")
		})

		It("should surround the grid with side and external nodes", func() {
			Expect(net.Junctions()).To(HaveLen(33))
			Expect(net.Roads()).To(HaveLen(72))
		})

		It("should make border junctions composite", func() {
			border, _ := net.JunctionByName("Grid.Junction[0][1]")
			Expect(border.Kind()).To(Equal(roadnet.Composite))

			side, ok := border.Side(roadnet.SideTop)
			Expect(ok).To(BeTrue())
			Expect(side.Name()).To(Equal("Grid.Junction[0][1].Top"))
			Expect(border.Node(roadnet.SideLeft)).To(BeIdenticalTo(border))
		})

		It("should keep inner junctions simple", func() {
			inner, _ := net.JunctionByName("Grid.Junction[1][1]")
			Expect(inner.Kind()).To(Equal(roadnet.Simple))
			Expect(inner.Sides()).To(BeEmpty())
		})

		It("should join each side to its base with always-flowing links",
			func() {
				link, ok := net.RoadByName("Grid.Junction[0][1].Top.LinkIn")
				Expect(ok).To(BeTrue())
				Expect(link.Unbounded()).To(BeTrue())
				Expect(link.CanAdmit(1000)).To(BeTrue())
				Expect(link.Light().Colour()).To(Equal(signal.Green))
				Expect(link.Light().Timings().Red).To(
					Equal(sim.VTimeInSec(1)))

				out, ok := net.RoadByName("Grid.Junction[0][1].Top.LinkOut")
				Expect(ok).To(BeTrue())
				Expect(out.Start().Name()).To(Equal("Grid.Junction[0][1]"))
				Expect(out.End().Name()).To(
					Equal("Grid.Junction[0][1].Top"))
			})

		It("should open entries and exits on all four borders", func() {
			ext, ok := net.JunctionByName("Grid.Junction[2][1].Bottom.Ext")
			Expect(ok).To(BeTrue())
			Expect(ext.IsEntry()).To(BeTrue())
			Expect(ext.IsExit()).To(BeTrue())

			in, ok := net.RoadByName("Grid.Junction[2][1].Bottom.Ext.In")
			Expect(ok).To(BeTrue())
			Expect(in.End().Name()).To(Equal("Grid.Junction[2][1].Bottom"))

			Expect(net.EntryRoads()).To(HaveLen(12))
		})

		It("should give corner junctions two sides", func() {
			corner, _ := net.JunctionByName("Grid.Junction[0][0]")
			Expect(corner.Sides()).To(HaveLen(2))
		})

		It("should group only the grid approaches for actuation", func() {
			inner, _ := net.JunctionByName("Grid.Junction[1][1]")
			groups := inner.ConflictGroups()
			Expect(groups).To(HaveLen(2))
			Expect(groups[0].Members).To(HaveLen(2))
			Expect(groups[1].Members).To(HaveLen(2))

			side, _ := net.JunctionByName("Grid.Junction[0][1].Top")
			Expect(side.ConflictGroups()).To(BeEmpty())
		})
	})
})
