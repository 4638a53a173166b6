// Package roadnet defines the road network that vehicles travel on:
// junctions with admission locks, directed roads with signal-governed
// queues, and a grid builder that wires complete test networks.
package roadnet

import (
	"fmt"
	"log"

	"github.com/sarchlab/greenwave/signal"
	"github.com/sarchlab/greenwave/sim"
)

// A Network is a wired graph of junctions and roads. Topology is assembled
// with AddJunction and AddRoad and frozen by Validate before the simulation
// starts.
type Network struct {
	name string

	junctions []*Junction
	roads     []*Road

	junctionByName map[string]*Junction
	roadByName     map[string]*Road

	roadsFrom map[*Junction][]*Road
	roadsInto map[*Junction][]*Road

	poi map[*Junction]float64

	frozen bool
}

// NewNetwork creates an empty network.
func NewNetwork(name string) *Network {
	sim.NameMustBeValid(name)

	n := new(Network)
	n.name = name
	n.junctionByName = make(map[string]*Junction)
	n.roadByName = make(map[string]*Road)
	n.roadsFrom = make(map[*Junction][]*Road)
	n.roadsInto = make(map[*Junction][]*Road)
	n.poi = make(map[*Junction]float64)

	return n
}

// Name returns the name of the network.
func (n *Network) Name() string {
	return n.name
}

// AddJunction registers a junction. Junction names must be unique within the
// network.
func (n *Network) AddJunction(j *Junction) {
	n.mustNotBeFrozen()

	if _, ok := n.junctionByName[j.Name()]; ok {
		log.Panicf("junction %s is already in network %s", j.Name(), n.name)
	}

	n.junctions = append(n.junctions, j)
	n.junctionByName[j.Name()] = j
}

// AddRoad registers a road. Road names must be unique within the network.
func (n *Network) AddRoad(r *Road) {
	n.mustNotBeFrozen()

	if _, ok := n.roadByName[r.Name()]; ok {
		log.Panicf("road %s is already in network %s", r.Name(), n.name)
	}

	n.roads = append(n.roads, r)
	n.roadByName[r.Name()] = r
	n.roadsFrom[r.Start()] = append(n.roadsFrom[r.Start()], r)
	n.roadsInto[r.End()] = append(n.roadsInto[r.End()], r)
}

func (n *Network) mustNotBeFrozen() {
	if n.frozen {
		log.Panicf("topology of network %s is frozen after validation", n.name)
	}
}

// Junctions returns all junctions in registration order.
func (n *Network) Junctions() []*Junction {
	return n.junctions
}

// Roads returns all roads in registration order.
func (n *Network) Roads() []*Road {
	return n.roads
}

// JunctionByName looks a junction up by its full name.
func (n *Network) JunctionByName(name string) (*Junction, bool) {
	j, ok := n.junctionByName[name]
	return j, ok
}

// RoadByName looks a road up by its full name.
func (n *Network) RoadByName(name string) (*Road, bool) {
	r, ok := n.roadByName[name]
	return r, ok
}

// RoadsFrom returns the roads leaving a junction in registration order.
func (n *Network) RoadsFrom(j *Junction) []*Road {
	return n.roadsFrom[j]
}

// RoadsInto returns the roads arriving at a junction in registration order.
func (n *Network) RoadsInto(j *Junction) []*Road {
	return n.roadsInto[j]
}

// EntryRoads returns the roads that vehicles may start on, the ones leaving
// an entry junction.
func (n *Network) EntryRoads() []*Road {
	var roads []*Road
	for _, r := range n.roads {
		if r.Start().IsEntry() {
			roads = append(roads, r)
		}
	}

	return roads
}

// SetPOIMultiplier marks a junction as a point of interest. Routing weight
// toward the junction is multiplied by m.
func (n *Network) SetPOIMultiplier(j *Junction, m float64) {
	if m < 0 {
		log.Panicf("POI multiplier of %s must not be negative", j.Name())
	}

	n.poi[j] = m
}

// POIMultiplier returns the point-of-interest multiplier of a junction,
// defaulting to 1.
func (n *Network) POIMultiplier(j *Junction) float64 {
	if m, ok := n.poi[j]; ok {
		return m
	}

	return 1
}

// Validate checks the topology and freezes it. It returns the first problem
// found: a road endpoint not in the network, a road without a light, a
// light shared between roads, a non-positive distance or speed, a negative
// junction weight, or a conflict group naming a light that is not
// registered on its junction.
func (n *Network) Validate() error {
	lightOwner := make(map[*signal.Light]*Road)

	for _, r := range n.roads {
		if err := n.validateRoad(r, lightOwner); err != nil {
			return err
		}
	}

	for _, j := range n.junctions {
		if err := n.validateJunction(j); err != nil {
			return err
		}
	}

	n.frozen = true

	return nil
}

func (n *Network) validateRoad(
	r *Road,
	lightOwner map[*signal.Light]*Road,
) error {
	if _, ok := n.junctionByName[r.Start().Name()]; !ok {
		return fmt.Errorf("road %s starts at junction %s, which is not in network %s",
			r.Name(), r.Start().Name(), n.name)
	}

	if _, ok := n.junctionByName[r.End().Name()]; !ok {
		return fmt.Errorf("road %s ends at junction %s, which is not in network %s",
			r.Name(), r.End().Name(), n.name)
	}

	if r.Light() == nil {
		return fmt.Errorf("road %s has no light", r.Name())
	}

	if other, ok := lightOwner[r.Light()]; ok {
		return fmt.Errorf("roads %s and %s share light %s",
			other.Name(), r.Name(), r.Light().Name())
	}
	lightOwner[r.Light()] = r

	if r.Distance() <= 0 {
		return fmt.Errorf("road %s has non-positive distance %f",
			r.Name(), r.Distance())
	}

	if r.Speed() <= 0 {
		return fmt.Errorf("road %s has non-positive speed %f",
			r.Name(), r.Speed())
	}

	return nil
}

func (n *Network) validateJunction(j *Junction) error {
	if j.Weight() < 0 {
		return fmt.Errorf("junction %s has negative weight %f",
			j.Name(), j.Weight())
	}

	owned := make(map[*signal.Light]bool)
	for _, l := range j.Lights() {
		owned[l] = true
	}

	for _, g := range j.ConflictGroups() {
		for _, m := range g.Members {
			if !owned[m.Light] {
				return fmt.Errorf(
					"conflict group %s of junction %s names light %s, which is not registered on the junction",
					g.Name, j.Name(), m.Light.Name())
			}
		}
	}

	return nil
}
