package vehicle

import (
	"github.com/samber/lo"

	"github.com/sarchlab/greenwave/randengine"
	"github.com/sarchlab/greenwave/roadnet"
)

// A Router picks the road a vehicle continues on after finishing one.
// Candidates leave the junction the finished road arrives at. The immediate
// reverse edge, roads too full for the vehicle, and roads that lead to
// entry-only nodes are not candidates.
type Router struct {
	net  *roadnet.Network
	rand *randengine.Engine
}

// NewRouter creates a Router picking roads from the given network.
func NewRouter(net *roadnet.Network, rand *randengine.Engine) *Router {
	return &Router{net: net, rand: rand}
}

// HasViable reports whether a vehicle of the given length has any road to
// continue on after the current one.
func (r *Router) HasViable(current *roadnet.Road, length float64) bool {
	return len(r.candidates(current, length)) > 0
}

// Next picks the road to continue on, weighted by the attractiveness of
// each candidate's destination. With all weights zero the choice is
// uniform. Next returns false if there is no candidate at all.
func (r *Router) Next(
	current *roadnet.Road,
	length float64,
) (*roadnet.Road, bool) {
	candidates := r.candidates(current, length)
	if len(candidates) == 0 {
		return nil, false
	}

	weights := make([]float64, len(candidates))
	total := 0.0
	for i, road := range candidates {
		weights[i] = road.End().Weight() * r.net.POIMultiplier(road.End())
		total += weights[i]
	}

	if total <= 0 {
		return candidates[r.rand.Intn(len(candidates))], true
	}

	return candidates[r.rand.DiscreteDistribution(weights)], true
}

func (r *Router) candidates(
	current *roadnet.Road,
	length float64,
) []*roadnet.Road {
	return lo.Filter(r.net.RoadsFrom(current.End()),
		func(road *roadnet.Road, _ int) bool {
			if road.End() == current.Start() &&
				road.Start() == current.End() {
				return false
			}

			if !road.CanAdmit(length) {
				return false
			}

			if road.End().IsEntry() && !road.End().IsExit() {
				return false
			}

			return true
		})
}
