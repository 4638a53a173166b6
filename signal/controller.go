package signal

import (
	"github.com/samber/lo"

	"github.com/sarchlab/greenwave/sim"
)

// A Detector reports how many vehicles queue on the approach a light guards.
type Detector interface {
	QueueLength() int
}

// A Member pairs a light with the detector measuring its approach.
type Member struct {
	Light    *Light
	Detector Detector
}

// A Group is a conflict group: the set of approaches that may be green
// together. Lights in different groups of the same controller are never
// driven green at the same time.
type Group struct {
	Name    string
	Members []Member
}

// Pressure is the total number of vehicles queued on the group's approaches.
func (g Group) Pressure() int {
	return lo.SumBy(g.Members, func(m Member) int {
		return m.Detector.QueueLength()
	})
}

// Config carries the actuation policy parameters.
type Config struct {
	// Interval is the re-evaluation period.
	Interval sim.VTimeInSec

	// BaseGreen seconds plus Gain seconds per queued vehicle, clamped to
	// [MinGreen, MaxGreen], is the green budget handed to the winning group.
	BaseGreen sim.VTimeInSec
	Gain      sim.VTimeInSec
	MinGreen  sim.VTimeInSec
	MaxGreen  sim.VTimeInSec

	// CycleCap bounds the total phase time across groups. When the green
	// budgets plus the fixed amber and red-amber components exceed it, the
	// green budgets are scaled down proportionally. Zero disables the cap.
	CycleCap sim.VTimeInSec
}

// DefaultConfig returns the stock actuation policy.
func DefaultConfig() Config {
	return Config{
		Interval:  5,
		BaseGreen: 15,
		Gain:      2,
		MinGreen:  15,
		MaxGreen:  30,
		CycleCap:  90,
	}
}

// A Controller re-evaluates its conflict groups on a fixed interval and
// drives the group under the highest pressure toward GREEN, all others toward
// RED. Its ticks are secondary events, so an evaluation sees all same-instant
// queue updates settled.
type Controller struct {
	*sim.TickingComponent

	cfg    Config
	groups []Group
}

// NewController creates a Controller over the given conflict groups. Call
// Start to begin evaluating.
func NewController(
	name string,
	engine sim.Engine,
	cfg Config,
	groups []Group,
) *Controller {
	c := new(Controller)
	c.cfg = cfg
	c.groups = groups
	c.TickingComponent = sim.NewSecondaryTickingComponent(
		name, engine, sim.Freq(1.0/float64(cfg.Interval))*sim.Hz, c)

	return c
}

// Start schedules the first evaluation one interval from now.
func (c *Controller) Start() {
	c.TickLater()
}

// Groups returns the conflict groups under this controller.
func (c *Controller) Groups() []Group {
	return c.groups
}

// Tick runs one evaluation round.
func (c *Controller) Tick() bool {
	if len(c.groups) == 0 {
		return false
	}

	pressures := make([]int, len(c.groups))
	greens := make([]sim.VTimeInSec, len(c.groups))

	for i, g := range c.groups {
		pressures[i] = g.Pressure()
		greens[i] = c.greenBudget(pressures[i])
	}

	c.scaleToCycleCap(greens)

	winner := 0
	for i, p := range pressures {
		if p > pressures[winner] {
			winner = i
		}
	}

	log.Debugf("%s: group %s wins with pressure %d, green %.0f s",
		c.Name(), c.groups[winner].Name, pressures[winner],
		float64(greens[winner]))

	for i, g := range c.groups {
		for _, m := range g.Members {
			if i == winner {
				m.Light.ForceTo(Green, greens[i])
			} else {
				m.Light.ForceTo(Red, 0)
			}
		}
	}

	return true
}

func (c *Controller) greenBudget(pressure int) sim.VTimeInSec {
	green := c.cfg.BaseGreen + c.cfg.Gain*sim.VTimeInSec(pressure)

	if green < c.cfg.MinGreen {
		green = c.cfg.MinGreen
	}
	if green > c.cfg.MaxGreen {
		green = c.cfg.MaxGreen
	}

	return green
}

// scaleToCycleCap shrinks the green budgets proportionally when the total
// phase time would exceed the cycle cap. The amber and red-amber components
// are fixed and never scaled.
func (c *Controller) scaleToCycleCap(greens []sim.VTimeInSec) {
	if c.cfg.CycleCap <= 0 {
		return
	}

	fixed := sim.VTimeInSec(0)
	for _, g := range c.groups {
		if len(g.Members) == 0 {
			continue
		}
		t := g.Members[0].Light.Timings()
		fixed += t.Amber + t.RedAmber
	}

	total := sim.VTimeInSec(0)
	for _, green := range greens {
		total += green
	}

	if total+fixed <= c.cfg.CycleCap || total <= 0 {
		return
	}

	budget := c.cfg.CycleCap - fixed
	if budget < 0 {
		budget = 0
	}

	scale := float64(budget) / float64(total)
	for i := range greens {
		greens[i] = sim.VTimeInSec(float64(greens[i]) * scale)
	}
}
