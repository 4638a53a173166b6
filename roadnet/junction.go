package roadnet

import (
	"log"

	"github.com/sarchlab/greenwave/signal"
	"github.com/sarchlab/greenwave/sim"
)

// Kind tags how a junction is modeled.
type Kind int

const (
	// Simple junctions are plain nodes.
	Simple Kind = iota

	// Composite junctions wrap a base node with side nodes on the network
	// border. Traffic reaches the base through short internal links.
	Composite
)

// Side identifies a border of a composite junction.
type Side int

// Sides in attachment order.
const (
	SideTop Side = iota
	SideBottom
	SideLeft
	SideRight
	numSides
)

func (s Side) String() string {
	switch s {
	case SideTop:
		return "Top"
	case SideBottom:
		return "Bottom"
	case SideLeft:
		return "Left"
	case SideRight:
		return "Right"
	}

	log.Panicf("invalid side %d", int(s))
	return ""
}

// A Junction is a node of the road network. Its lock admits one crossing
// vehicle at a time into the conflict zone. The lights registered on it are
// the signals of the roads arriving at it.
type Junction struct {
	*sim.ComponentBase

	kind   Kind
	entry  bool
	exit   bool
	weight float64

	lock   *sim.PriorityLock
	lights []*signal.Light
	groups []signal.Group

	base  *Junction
	sides [numSides]*Junction
}

// NewJunction creates a junction. Entry junctions may originate vehicles,
// exit junctions terminate them. The weight biases routing toward the
// junction.
func NewJunction(
	name string,
	engine sim.Engine,
	weight float64,
	entry, exit bool,
) *Junction {
	j := new(Junction)
	j.ComponentBase = sim.NewComponentBase(name)
	j.entry = entry
	j.exit = exit
	j.weight = weight
	j.lock = sim.NewPriorityLock(sim.BuildName(name, "Lock"), engine)

	return j
}

// Kind returns Simple or Composite.
func (j *Junction) Kind() Kind {
	return j.kind
}

// IsEntry reports whether vehicles may originate at the junction.
func (j *Junction) IsEntry() bool {
	return j.entry
}

// IsExit reports whether vehicles terminate at the junction.
func (j *Junction) IsExit() bool {
	return j.exit
}

// Weight returns the routing attractiveness of the junction.
func (j *Junction) Weight() float64 {
	return j.weight
}

// SetWeight sets the routing attractiveness of the junction.
func (j *Junction) SetWeight(w float64) {
	j.weight = w
}

// Lock returns the admission lock guarding the junction's conflict zone.
func (j *Junction) Lock() *sim.PriorityLock {
	return j.lock
}

// AddLight registers an approach light on the junction.
func (j *Junction) AddLight(l *signal.Light) {
	j.lights = append(j.lights, l)
}

// Lights returns the approach lights in registration order.
func (j *Junction) Lights() []*signal.Light {
	return j.lights
}

// SetConflictGroups partitions the junction's approaches into groups that
// must not be green at the same time.
func (j *Junction) SetConflictGroups(groups []signal.Group) {
	j.groups = groups
}

// ConflictGroups returns the conflict groups, or nil if the junction's
// approaches do not conflict.
func (j *Junction) ConflictGroups() []signal.Group {
	return j.groups
}

// AttachSide links a side node to the junction and makes the junction
// composite. A node can serve as the side of one junction only.
func (j *Junction) AttachSide(s Side, node *Junction) {
	if node.base != nil {
		log.Panicf("junction %s is already the %s side of %s",
			node.Name(), s, node.base.Name())
	}

	if j.sides[s] != nil {
		log.Panicf("junction %s already has a %s side", j.Name(), s)
	}

	node.base = j
	j.sides[s] = node
	j.kind = Composite
}

// Side returns the node on the given side, or false if the junction has no
// node there.
func (j *Junction) Side(s Side) (*Junction, bool) {
	node := j.sides[s]
	return node, node != nil
}

// Node returns the node on the given side, falling back to the junction
// itself when no side node exists there.
func (j *Junction) Node(s Side) *Junction {
	if node := j.sides[s]; node != nil {
		return node
	}

	return j
}

// Sides returns the attached side nodes in Top, Bottom, Left, Right order.
func (j *Junction) Sides() []*Junction {
	nodes := make([]*Junction, 0, numSides)
	for _, node := range j.sides {
		if node != nil {
			nodes = append(nodes, node)
		}
	}

	return nodes
}

// Base returns the composite junction this node is a side of, or the
// junction itself if it is not a side node.
func (j *Junction) Base() *Junction {
	if j.base != nil {
		return j.base
	}

	return j
}
