package roadnet

import (
	"github.com/sarchlab/greenwave/signal"
	"github.com/sarchlab/greenwave/sim"
)

// GridBuilder builds rectangular grid networks. Horizontal roads start
// GREEN and vertical roads start RED, so crossing streams never begin green
// together.
//
// Two border styles are supported. The default style places entry nodes
// along the top border and exit nodes along the bottom border, connected by
// one-way external roads. With WithCompositeBorders, every border junction
// becomes composite: traffic enters and leaves on all four borders through
// side nodes, and short always-flowing links join the side nodes to the
// junction base.
type GridBuilder struct {
	engine sim.Engine

	rows int
	cols int

	hRoadDistance     float64
	vRoadDistance     float64
	roadSpeed         float64
	externalDistance  float64
	externalSpeed     float64
	connectorDistance float64
	connectorSpeed    float64

	timings          signal.Timings
	connectorTimings signal.Timings

	junctionWeight   float64
	compositeBorders bool
}

// MakeGridBuilder creates a GridBuilder with default parameters.
func MakeGridBuilder() GridBuilder {
	return GridBuilder{
		rows:              2,
		cols:              2,
		hRoadDistance:     100,
		vRoadDistance:     100,
		roadSpeed:         13,
		externalDistance:  100,
		externalSpeed:     13,
		connectorDistance: 1,
		connectorSpeed:    100,
		timings: signal.Timings{
			Red:      15,
			RedAmber: 3,
			Green:    15,
			Amber:    3,
		},
		connectorTimings: signal.Timings{
			Red:      1,
			RedAmber: 0.5,
			Green:    1,
			Amber:    0.5,
		},
		junctionWeight: 1,
	}
}

// WithEngine sets the engine that the lights, locks, and queues of the grid
// schedule on.
func (b GridBuilder) WithEngine(engine sim.Engine) GridBuilder {
	b.engine = engine
	return b
}

// WithSize sets the number of junction rows and columns.
func (b GridBuilder) WithSize(rows, cols int) GridBuilder {
	b.rows = rows
	b.cols = cols
	return b
}

// WithRoadGeometry sets the lengths of the horizontal and vertical roads
// between grid junctions, and their shared design speed.
func (b GridBuilder) WithRoadGeometry(
	horizontal, vertical, speed float64,
) GridBuilder {
	b.hRoadDistance = horizontal
	b.vRoadDistance = vertical
	b.roadSpeed = speed
	return b
}

// WithExternalRoadGeometry sets the length and design speed of the roads
// that connect the grid to its entry and exit nodes.
func (b GridBuilder) WithExternalRoadGeometry(
	distance, speed float64,
) GridBuilder {
	b.externalDistance = distance
	b.externalSpeed = speed
	return b
}

// WithConnectorGeometry sets the length and design speed of the internal
// links of composite junctions.
func (b GridBuilder) WithConnectorGeometry(
	distance, speed float64,
) GridBuilder {
	b.connectorDistance = distance
	b.connectorSpeed = speed
	return b
}

// WithDefaultTimings sets the phase durations that grid and external road
// lights start with.
func (b GridBuilder) WithDefaultTimings(t signal.Timings) GridBuilder {
	b.timings = t
	return b
}

// WithConnectorTimings sets the phase durations of composite junction link
// lights.
func (b GridBuilder) WithConnectorTimings(t signal.Timings) GridBuilder {
	b.connectorTimings = t
	return b
}

// WithJunctionWeight sets the routing attractiveness of every junction.
func (b GridBuilder) WithJunctionWeight(w float64) GridBuilder {
	b.junctionWeight = w
	return b
}

// WithCompositeBorders switches the border style to composite junctions
// with entries and exits on all four borders.
func (b GridBuilder) WithCompositeBorders() GridBuilder {
	b.compositeBorders = true
	return b
}

func (b GridBuilder) parametersMustBeValid() {
	if b.engine == nil {
		panic("engine is not given")
	}

	if b.rows < 1 || b.cols < 1 {
		panic("grid must have at least one row and one column")
	}
}

// Build creates the grid network. The returned network is validated and
// frozen. The lights of the grid are created but not started.
func (b GridBuilder) Build(name string) *Network {
	b.parametersMustBeValid()

	a := &gridAssembler{
		b:          b,
		net:        NewNetwork(name),
		vertical:   make(map[*Junction][]*Road),
		horizontal: make(map[*Junction][]*Road),
	}

	a.buildJunctions()
	a.buildGridRoads()

	if b.compositeBorders {
		a.buildCompositeBorders()
	} else {
		a.buildEntryExitBorders()
	}

	a.assignConflictGroups()

	if err := a.net.Validate(); err != nil {
		panic(err)
	}

	return a.net
}

// gridAssembler carries the state of one Build call.
type gridAssembler struct {
	b     GridBuilder
	net   *Network
	bases [][]*Junction

	// approach roads per junction, split by orientation, in creation order
	vertical   map[*Junction][]*Road
	horizontal map[*Junction][]*Road
}

func (a *gridAssembler) buildJunctions() {
	a.bases = make([][]*Junction, a.b.rows)
	for r := 0; r < a.b.rows; r++ {
		a.bases[r] = make([]*Junction, a.b.cols)
		for c := 0; c < a.b.cols; c++ {
			name := sim.BuildNameWithMultiDimensionalIndex(
				a.net.Name(), "Junction", []int{r, c})
			j := NewJunction(name, a.b.engine, a.b.junctionWeight,
				false, false)
			a.net.AddJunction(j)
			a.bases[r][c] = j
		}
	}
}

func (a *gridAssembler) buildGridRoads() {
	for r := 0; r < a.b.rows; r++ {
		for c := 0; c < a.b.cols-1; c++ {
			a.addGridRoadPair(a.bases[r][c], a.bases[r][c+1],
				[]int{r, c}, []int{r, c + 1}, signal.Green)
		}
	}

	for r := 0; r < a.b.rows-1; r++ {
		for c := 0; c < a.b.cols; c++ {
			a.addGridRoadPair(a.bases[r][c], a.bases[r+1][c],
				[]int{r, c}, []int{r + 1, c}, signal.Red)
		}
	}
}

func (a *gridAssembler) addGridRoadPair(
	j1, j2 *Junction,
	idx1, idx2 []int,
	initial signal.Colour,
) {
	distance := a.b.hRoadDistance
	if initial == signal.Red {
		distance = a.b.vRoadDistance
	}

	forward := a.addRoad(a.gridRoadName(idx1, idx2), j1, j2,
		distance, a.b.roadSpeed, a.b.timings, initial, false)
	backward := a.addRoad(a.gridRoadName(idx2, idx1), j2, j1,
		distance, a.b.roadSpeed, a.b.timings, initial, false)

	if initial == signal.Green {
		a.horizontal[j2] = append(a.horizontal[j2], forward)
		a.horizontal[j1] = append(a.horizontal[j1], backward)
	} else {
		a.vertical[j2] = append(a.vertical[j2], forward)
		a.vertical[j1] = append(a.vertical[j1], backward)
	}
}

func (a *gridAssembler) gridRoadName(from, to []int) string {
	return sim.BuildNameWithMultiDimensionalIndex(a.net.Name(), "Road",
		[]int{from[0], from[1], to[0], to[1]})
}

// buildEntryExitBorders places entry nodes above the top row and exit nodes
// below the bottom row, each tied to its junction by a one-way external
// road.
func (a *gridAssembler) buildEntryExitBorders() {
	for c := 0; c < a.b.cols; c++ {
		base := a.bases[0][c]
		entry := NewJunction(sim.BuildName(base.Name(), "In"),
			a.b.engine, a.b.junctionWeight, true, false)
		a.net.AddJunction(entry)

		road := a.addRoad(sim.BuildName(entry.Name(), "Road"),
			entry, base, a.b.externalDistance, a.b.externalSpeed,
			a.b.timings, signal.Red, false)
		a.vertical[base] = append(a.vertical[base], road)
	}

	for c := 0; c < a.b.cols; c++ {
		base := a.bases[a.b.rows-1][c]
		exit := NewJunction(sim.BuildName(base.Name(), "Out"),
			a.b.engine, a.b.junctionWeight, false, true)
		a.net.AddJunction(exit)

		a.addRoad(sim.BuildName(exit.Name(), "Road"),
			base, exit, a.b.externalDistance, a.b.externalSpeed,
			a.b.timings, signal.Red, false)
	}
}

// buildCompositeBorders attaches a side node, an external node, and the
// connecting roads to every border junction, on each border it touches.
func (a *gridAssembler) buildCompositeBorders() {
	for c := 0; c < a.b.cols; c++ {
		a.buildSide(a.bases[0][c], SideTop)
		a.buildSide(a.bases[a.b.rows-1][c], SideBottom)
	}

	for r := 0; r < a.b.rows; r++ {
		a.buildSide(a.bases[r][0], SideLeft)
		a.buildSide(a.bases[r][a.b.cols-1], SideRight)
	}
}

func (a *gridAssembler) buildSide(base *Junction, s Side) {
	side := NewJunction(sim.BuildName(base.Name(), s.String()),
		a.b.engine, a.b.junctionWeight, false, false)
	a.net.AddJunction(side)
	base.AttachSide(s, side)

	a.addRoad(sim.BuildName(side.Name(), "LinkIn"), side, base,
		a.b.connectorDistance, a.b.connectorSpeed,
		a.b.connectorTimings, signal.Green, true)
	a.addRoad(sim.BuildName(side.Name(), "LinkOut"), base, side,
		a.b.connectorDistance, a.b.connectorSpeed,
		a.b.connectorTimings, signal.Green, true)

	ext := NewJunction(sim.BuildName(side.Name(), "Ext"),
		a.b.engine, a.b.junctionWeight, true, true)
	a.net.AddJunction(ext)

	a.addRoad(sim.BuildName(ext.Name(), "In"), ext, side,
		a.b.externalDistance, a.b.externalSpeed,
		a.b.timings, signal.Red, false)
	a.addRoad(sim.BuildName(ext.Name(), "Out"), side, ext,
		a.b.externalDistance, a.b.externalSpeed,
		a.b.timings, signal.Red, false)
}

func (a *gridAssembler) addRoad(
	name string,
	start, end *Junction,
	distance, speed float64,
	t signal.Timings,
	initial signal.Colour,
	unbounded bool,
) *Road {
	road := NewRoad(name, a.b.engine, start, end, distance, speed)
	road.unbounded = unbounded

	light := signal.NewLight(sim.BuildName(name, "Light"),
		a.b.engine, t, initial)
	road.SetLight(light)
	end.AddLight(light)

	a.net.AddRoad(road)

	return road
}

// assignConflictGroups partitions each grid junction's approaches into a
// vertical and a horizontal group. Side and external nodes get no groups,
// their lights are not actuated.
func (a *gridAssembler) assignConflictGroups() {
	for r := 0; r < a.b.rows; r++ {
		for c := 0; c < a.b.cols; c++ {
			j := a.bases[r][c]

			var groups []signal.Group
			if len(a.vertical[j]) > 0 {
				groups = append(groups,
					a.makeGroup(j, "Vertical", a.vertical[j]))
			}
			if len(a.horizontal[j]) > 0 {
				groups = append(groups,
					a.makeGroup(j, "Horizontal", a.horizontal[j]))
			}

			j.SetConflictGroups(groups)
		}
	}
}

func (a *gridAssembler) makeGroup(
	j *Junction,
	name string,
	roads []*Road,
) signal.Group {
	g := signal.Group{Name: sim.BuildName(j.Name(), name)}
	for _, r := range roads {
		g.Members = append(g.Members, signal.Member{
			Light:    r.Light(),
			Detector: r,
		})
	}

	return g
}
