package simulation

import (
	"fmt"
	"os"
	"sort"

	"github.com/samber/lo"
	"gopkg.in/yaml.v2"

	"github.com/sarchlab/greenwave/signal"
	"github.com/sarchlab/greenwave/sim"
)

// sortedPOINames fixes the iteration order over the points of interest, so
// that resolution and validation behave the same in every run.
func sortedPOINames(poi map[string]float64) []string {
	names := lo.Keys(poi)
	sort.Strings(names)
	return names
}

// GridConfig sizes the road grid.
type GridConfig struct {
	Rows int `yaml:"rows"`
	Cols int `yaml:"cols"`

	// HRoadLength and VRoadLength are the lengths in meters of the
	// horizontal and vertical roads between junctions.
	HRoadLength float64 `yaml:"h_road_length"`
	VRoadLength float64 `yaml:"v_road_length"`

	// Speed is the design speed of the grid roads in meters per second.
	Speed float64 `yaml:"speed"`
}

// TimingsConfig carries the phase durations of a light in seconds.
type TimingsConfig struct {
	Red      float64 `yaml:"red"`
	Green    float64 `yaml:"green"`
	Amber    float64 `yaml:"amber"`
	RedAmber float64 `yaml:"red_amber"`
}

func (c TimingsConfig) timings() signal.Timings {
	return signal.Timings{
		Red:      sim.VTimeInSec(c.Red),
		RedAmber: sim.VTimeInSec(c.RedAmber),
		Green:    sim.VTimeInSec(c.Green),
		Amber:    sim.VTimeInSec(c.Amber),
	}
}

// ActuationConfig parameterizes the pressure-actuated controllers. Timings
// are the durations the lights start from before the controllers take over.
type ActuationConfig struct {
	Timings TimingsConfig `yaml:"timings"`

	Interval  float64 `yaml:"interval"`
	BaseGreen float64 `yaml:"base_green"`
	Gain      float64 `yaml:"gain"`
	MinGreen  float64 `yaml:"min_green"`
	MaxGreen  float64 `yaml:"max_green"`
	CycleCap  float64 `yaml:"cycle_cap"`
}

func (c ActuationConfig) controllerConfig() signal.Config {
	return signal.Config{
		Interval:  sim.VTimeInSec(c.Interval),
		BaseGreen: sim.VTimeInSec(c.BaseGreen),
		Gain:      sim.VTimeInSec(c.Gain),
		MinGreen:  sim.VTimeInSec(c.MinGreen),
		MaxGreen:  sim.VTimeInSec(c.MaxGreen),
		CycleCap:  sim.VTimeInSec(c.CycleCap),
	}
}

// RushHourConfig scales arrivals up inside the [Start, End) window.
type RushHourConfig struct {
	Start      float64 `yaml:"start"`
	End        float64 `yaml:"end"`
	Multiplier float64 `yaml:"multiplier"`
}

// GeneratorConfig parameterizes vehicle arrivals.
type GeneratorConfig struct {
	Count        int            `yaml:"count"`
	MeanInterval float64        `yaml:"mean_interval"`
	RushHour     RushHourConfig `yaml:"rush_hour"`
}

// GAConfig parameterizes the timing optimizer.
type GAConfig struct {
	Generations      int     `yaml:"generations"`
	Population       int     `yaml:"population"`
	MutationRate     float64 `yaml:"mutation_rate"`
	MutationStrength float64 `yaml:"mutation_strength"`
	Threshold        float64 `yaml:"threshold"`
	PenaltyFactor    float64 `yaml:"penalty_factor"`
}

// Config is a complete scenario description.
type Config struct {
	Grid      GridConfig      `yaml:"grid"`
	Timings   TimingsConfig   `yaml:"timings"`
	Actuation ActuationConfig `yaml:"actuation"`
	Generator GeneratorConfig `yaml:"generator"`

	// PointsOfInterest maps junction names, relative to the grid, to
	// weight multipliers that pull traffic toward them.
	PointsOfInterest map[string]float64 `yaml:"points_of_interest,omitempty"`

	GA GAConfig `yaml:"ga"`

	Seed     uint64  `yaml:"seed"`
	Duration float64 `yaml:"duration"`
}

// DefaultConfig returns the stock scenario: a 7 by 7 grid under fixed
// 40/40/3/3 timings, 100 vehicles over a 600 second run, with a cluster of
// points of interest near the north-east corner.
func DefaultConfig() Config {
	return Config{
		Grid: GridConfig{
			Rows:        7,
			Cols:        7,
			HRoadLength: 135,
			VRoadLength: 120,
			Speed:       13,
		},
		Timings: TimingsConfig{Red: 40, Green: 40, Amber: 3, RedAmber: 3},
		Actuation: ActuationConfig{
			Timings:   TimingsConfig{Red: 15, Green: 15, Amber: 3, RedAmber: 3},
			Interval:  5,
			BaseGreen: 15,
			Gain:      2,
			MinGreen:  15,
			MaxGreen:  30,
			CycleCap:  90,
		},
		Generator: GeneratorConfig{
			Count:        100,
			MeanInterval: 9,
			RushHour:     RushHourConfig{Start: 270, End: 360, Multiplier: 0.5},
		},
		PointsOfInterest: map[string]float64{
			"Junction[0][6]": 2.0,
			"Junction[0][5]": 1.5,
			"Junction[1][6]": 1.5,
		},
		GA: GAConfig{
			Generations:      30,
			Population:       25,
			MutationRate:     0.2,
			MutationStrength: 1,
			Threshold:        5,
			PenaltyFactor:    1,
		},
		Seed:     42,
		Duration: 600,
	}
}

// LoadConfig reads a scenario file and overlays it on the defaults. Unknown
// keys are errors. A file that does not name points of interest gets none;
// the default cluster applies only to runs without a config file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("simulation: reading config: %w", err)
	}

	cfg := DefaultConfig()
	cfg.PointsOfInterest = nil

	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("simulation: parsing %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("simulation: config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks every scenario parameter and names the first offender it
// finds.
func (c Config) Validate() error {
	if err := c.Grid.validate(); err != nil {
		return fmt.Errorf("grid: %w", err)
	}

	if err := c.Timings.validate(); err != nil {
		return fmt.Errorf("timings: %w", err)
	}

	if err := c.Actuation.validate(); err != nil {
		return fmt.Errorf("actuation: %w", err)
	}

	if err := c.Generator.validate(); err != nil {
		return fmt.Errorf("generator: %w", err)
	}

	if err := c.GA.validate(); err != nil {
		return fmt.Errorf("ga: %w", err)
	}

	for _, name := range sortedPOINames(c.PointsOfInterest) {
		if c.PointsOfInterest[name] <= 0 {
			return fmt.Errorf(
				"point of interest %s: multiplier must be positive", name)
		}
	}

	if c.Duration <= 0 {
		return fmt.Errorf("duration must be positive")
	}

	return nil
}

func (c GridConfig) validate() error {
	if c.Rows < 1 || c.Cols < 1 {
		return fmt.Errorf("rows and cols must be at least 1")
	}

	if c.HRoadLength <= 0 || c.VRoadLength <= 0 {
		return fmt.Errorf("road lengths must be positive")
	}

	if c.Speed <= 0 {
		return fmt.Errorf("speed must be positive")
	}

	return nil
}

func (c TimingsConfig) validate() error {
	if c.Red <= 0 || c.Green <= 0 || c.Amber <= 0 || c.RedAmber <= 0 {
		return fmt.Errorf("every phase duration must be positive")
	}

	return nil
}

func (c ActuationConfig) validate() error {
	if err := c.Timings.validate(); err != nil {
		return err
	}

	if c.Interval <= 0 {
		return fmt.Errorf("interval must be positive")
	}

	if c.BaseGreen <= 0 || c.MinGreen <= 0 || c.MaxGreen <= 0 {
		return fmt.Errorf("green budgets must be positive")
	}

	if c.MinGreen > c.MaxGreen {
		return fmt.Errorf("min green must not exceed max green")
	}

	if c.Gain < 0 {
		return fmt.Errorf("gain must not be negative")
	}

	if c.CycleCap < 0 {
		return fmt.Errorf("cycle cap must not be negative")
	}

	return nil
}

func (c GeneratorConfig) validate() error {
	if c.Count < 0 {
		return fmt.Errorf("count must not be negative")
	}

	if c.MeanInterval <= 0 {
		return fmt.Errorf("mean interval must be positive")
	}

	if c.RushHour.Multiplier <= 0 {
		return fmt.Errorf("rush hour multiplier must be positive")
	}

	if c.RushHour.Start > c.RushHour.End {
		return fmt.Errorf("rush hour must not end before it starts")
	}

	return nil
}

func (c GAConfig) validate() error {
	if c.Generations < 1 {
		return fmt.Errorf("generations must be positive")
	}

	if c.Population < 2 {
		return fmt.Errorf("population must be at least two")
	}

	if c.MutationRate < 0 || c.MutationRate > 1 {
		return fmt.Errorf("mutation rate must be between 0 and 1")
	}

	if c.MutationStrength < 0 {
		return fmt.Errorf("mutation strength must not be negative")
	}

	if c.Threshold < 0 || c.PenaltyFactor < 0 {
		return fmt.Errorf("penalty threshold and factor must not be negative")
	}

	return nil
}
