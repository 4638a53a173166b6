package main

import (
	"fmt"
	stdlog "log"
	"os"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sarchlab/greenwave/datarecording"
	"github.com/sarchlab/greenwave/roadnet"
	"github.com/sarchlab/greenwave/sim"
	"github.com/sarchlab/greenwave/simulation"
	"github.com/sarchlab/greenwave/timing"
	"github.com/sarchlab/greenwave/tracing"
)

// scenarioFlags are the flags shared by every command that executes a
// scenario run.
type scenarioFlags struct {
	configPath  string
	timingsPath string

	duration float64
	vehicles int
	seed     uint64

	minGreen float64
	maxGreen float64

	dbPath    string
	trace     string
	traceFile string

	monitor     bool
	monitorPort int

	logEvents bool
}

func (f *scenarioFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()

	flags.StringVar(&f.configPath, "config", "",
		"scenario file (YAML); the built-in defaults apply when empty")
	flags.StringVar(&f.timingsPath, "timings", "",
		"timing table (CSV) applied over the scenario timings")
	flags.Float64Var(&f.duration, "duration", 0,
		"override the scenario duration in seconds")
	flags.IntVar(&f.vehicles, "vehicles", 0,
		"override the number of vehicles to release")
	flags.Uint64Var(&f.seed, "seed", 0,
		"override the scenario seed (0 keeps the scenario's)")
	flags.StringVar(&f.dbPath, "db", "",
		"path of the recording database, without the .sqlite3 suffix")
	flags.StringVar(&f.trace, "trace", "",
		"trace vehicle trips to one of: db, csv, json, mongo")
	flags.StringVar(&f.traceFile, "trace-file", "",
		"path of the csv or json trace file")
	flags.BoolVar(&f.monitor, "monitor", false,
		"serve the monitoring API during the run")
	flags.IntVar(&f.monitorPort, "monitor-port", 0,
		"port of the monitoring API (0 picks a free port)")
	flags.BoolVar(&f.logEvents, "log-events", false,
		"print every engine event to stderr")
}

func (f *scenarioFlags) registerActuation(cmd *cobra.Command) {
	flags := cmd.Flags()

	flags.Float64Var(&f.minGreen, "min-green", 0,
		"override the shortest green the controllers grant, in seconds")
	flags.Float64Var(&f.maxGreen, "max-green", 0,
		"override the longest green the controllers grant, in seconds")
}

// loadConfig assembles the effective scenario: the built-in defaults, the
// scenario file when given, and the flag overrides, in that order.
func (f *scenarioFlags) loadConfig() (simulation.Config, error) {
	cfg := simulation.DefaultConfig()

	if f.configPath != "" {
		var err error
		cfg, err = simulation.LoadConfig(f.configPath)
		if err != nil {
			return simulation.Config{}, err
		}
	}

	if f.duration > 0 {
		cfg.Duration = f.duration
	}
	if f.vehicles > 0 {
		cfg.Generator.Count = f.vehicles
	}
	if f.seed != 0 {
		cfg.Seed = f.seed
	}
	if f.minGreen > 0 {
		cfg.Actuation.MinGreen = f.minGreen
	}
	if f.maxGreen > 0 {
		cfg.Actuation.MaxGreen = f.maxGreen
	}

	if err := cfg.Validate(); err != nil {
		return simulation.Config{}, err
	}

	return cfg, nil
}

// executeScenario performs one recorded run: it builds the simulation,
// attaches the requested tracer, runs to the horizon, and writes the run
// log and the per-vehicle outcomes into the recording database.
func (f *scenarioFlags) executeScenario(
	cfg simulation.Config,
	actuated bool,
	candidate timing.Candidate,
) (*simulation.Simulation, simulation.Result, error) {
	builder := simulation.MakeBuilder().WithConfig(cfg)
	if actuated {
		builder = builder.WithActuation()
	}
	if candidate != nil {
		builder = builder.WithCandidate(candidate)
	}
	if f.monitor {
		builder = builder.WithMonitoring(f.monitorPort)
	}

	if f.timingsPath != "" {
		table, err := timing.Import(f.timingsPath)
		if err != nil {
			return nil, simulation.Result{}, err
		}

		builder = builder.WithTimingTable(table)
	}

	s, err := builder.Build()
	if err != nil {
		return nil, simulation.Result{}, err
	}

	if f.logEvents {
		s.Engine().AcceptHook(
			sim.NewEventLogger(stdlog.New(os.Stderr, "", 0)))
	}

	recorder := datarecording.New(f.dbPath)
	runLog := datarecording.NewRunRecorder(recorder)
	runLog.Start()
	recordScenario(runLog, cfg, actuated)

	if err := f.attachTracer(s, recorder); err != nil {
		return nil, simulation.Result{}, err
	}

	result, err := s.Run()
	if err != nil {
		return nil, simulation.Result{}, err
	}

	recordResult(recorder, runLog, result)
	recordNetwork(recorder, s.Network())
	runLog.End()

	return s, result, nil
}

func (f *scenarioFlags) attachTracer(
	s *simulation.Simulation,
	recorder datarecording.DataRecorder,
) error {
	switch f.trace {
	case "":
	case "db":
		s.AttachTracer(tracing.NewDBTracer(s.Engine(), recorder))
	case "csv":
		s.AttachTracer(tracing.NewCSVTracer(s.Engine(), f.traceFile))
	case "json":
		s.AttachTracer(tracing.NewJSONTracer(s.Engine(), f.traceFile))
	case "mongo":
		t := tracing.NewMongoDBTracer(s.Engine())
		if uri := os.Getenv("MONGODB_URI"); uri != "" {
			t.SetURI(uri)
		}
		t.Init()
		s.AttachTracer(t)
	default:
		return fmt.Errorf(
			"unknown trace backend %q; use db, csv, json, or mongo", f.trace)
	}

	return nil
}

func recordScenario(
	runLog *datarecording.RunRecorder,
	cfg simulation.Config,
	actuated bool,
) {
	policy := "fixed"
	if actuated {
		policy = "actuated"
	}

	runLog.Record("Policy", policy)
	runLog.Record("Grid", fmt.Sprintf("%dx%d", cfg.Grid.Rows, cfg.Grid.Cols))
	runLog.Record("Vehicles", strconv.Itoa(cfg.Generator.Count))
	runLog.Record("Duration",
		strconv.FormatFloat(cfg.Duration, 'f', -1, 64))
	runLog.Record("Seed", strconv.FormatUint(cfg.Seed, 10))
}

const (
	completedTable = "completed_trips"
	droppedTable   = "dropped_trips"
	queuedTable    = "queued_vehicles"
	roadTable      = "road_summaries"
	timingTable    = "light_timings"
)

type roadSummary struct {
	Road           string
	Distance       float64
	QueueLength    int
	OccupiedLength float64
}

type lightTiming struct {
	Road         string
	RedTime      float64
	GreenTime    float64
	AmberTime    float64
	RedAmberTime float64
}

func recordResult(
	recorder datarecording.DataRecorder,
	runLog *datarecording.RunRecorder,
	result simulation.Result,
) {
	recorder.CreateTable(completedTable, simulation.TripRecord{})
	recorder.CreateTable(droppedTable, simulation.TripRecord{})
	recorder.CreateTable(queuedTable, simulation.QueuedRecord{})

	for _, t := range result.Completed {
		recorder.InsertData(completedTable, t)
	}
	for _, t := range result.Dropped {
		recorder.InsertData(droppedTable, t)
	}
	for _, q := range result.Queued {
		recorder.InsertData(queuedTable, q)
	}

	runLog.Record("Released", strconv.Itoa(result.Released))
	runLog.Record("Completed", strconv.Itoa(len(result.Completed)))
	runLog.Record("Dropped", strconv.Itoa(len(result.Dropped)))
	runLog.Record("Queued", strconv.Itoa(len(result.Queued)))
	runLog.Record("Mean Wait",
		strconv.FormatFloat(result.MeanWait(), 'f', 2, 64))
}

// recordNetwork writes the state the network ended the run in: one summary
// row per road and the final phase durations of every light.
func recordNetwork(
	recorder datarecording.DataRecorder,
	net *roadnet.Network,
) {
	recorder.CreateTable(roadTable, roadSummary{})
	recorder.CreateTable(timingTable, lightTiming{})

	roads := make([]*roadnet.Road, len(net.Roads()))
	copy(roads, net.Roads())
	sort.Slice(roads, func(i, j int) bool {
		return roads[i].Name() < roads[j].Name()
	})

	for _, road := range roads {
		recorder.InsertData(roadTable, roadSummary{
			Road:           road.Name(),
			Distance:       road.Distance(),
			QueueLength:    road.QueueLength(),
			OccupiedLength: road.OccupiedLength(),
		})

		t := road.Light().Timings()
		recorder.InsertData(timingTable, lightTiming{
			Road:         road.Name(),
			RedTime:      float64(t.Red),
			GreenTime:    float64(t.Green),
			AmberTime:    float64(t.Amber),
			RedAmberTime: float64(t.RedAmber),
		})
	}
}
