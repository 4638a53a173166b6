package main

import (
	"github.com/spf13/cobra"

	"github.com/sarchlab/greenwave/ga"
	"github.com/sarchlab/greenwave/randengine"
	"github.com/sarchlab/greenwave/simulation"
	"github.com/sarchlab/greenwave/timing"
)

var (
	optimizeFlags       = &scenarioFlags{}
	optimizeOut         string
	optimizeGenerations int
	optimizePopulation  int
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Search for signal timings that minimize the mean wait",
	Long: `Optimize evolves per-junction timing candidates with a genetic
algorithm. Every candidate is scored by running the scenario under its
timings. The best candidate is confirmed with a recorded run and written
out as a timing table.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cmd.SilenceUsage = true

		return runOptimize()
	},
}

func init() {
	optimizeFlags.register(optimizeCmd)
	optimizeCmd.Flags().StringVar(&optimizeOut, "out", "timings.csv",
		"path of the exported timing table")
	optimizeCmd.Flags().IntVar(&optimizeGenerations, "generations", 0,
		"override the number of generations")
	optimizeCmd.Flags().IntVar(&optimizePopulation, "population", 0,
		"override the population size")
	rootCmd.AddCommand(optimizeCmd)
}

func runOptimize() error {
	cfg, err := optimizeFlags.loadConfig()
	if err != nil {
		return err
	}

	if optimizeGenerations > 0 {
		cfg.GA.Generations = optimizeGenerations
	}
	if optimizePopulation > 0 {
		cfg.GA.Population = optimizePopulation
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	runner, err := simulation.NewCandidateRunner(cfg)
	if err != nil {
		return err
	}

	// The probe build resolves which junctions carry tunable lights.
	probe, err := simulation.MakeBuilder().WithConfig(cfg).Build()
	if err != nil {
		return err
	}
	junctions := timing.TunableJunctions(probe.Network())

	optimizer := ga.MakeBuilder().
		WithRandEngine(randengine.New(cfg.Seed)).
		WithRunner(runner).
		WithJunctionNames(junctions).
		WithGenerations(cfg.GA.Generations).
		WithPopulationSize(cfg.GA.Population).
		WithMutationRate(cfg.GA.MutationRate).
		WithMutationStrength(cfg.GA.MutationStrength).
		WithPenalty(cfg.GA.Threshold, cfg.GA.PenaltyFactor).
		Build()

	best, score := optimizer.Run()
	log.Infof("search done, best candidate scores %.2f s mean wait", score)

	s, result, err := optimizeFlags.executeScenario(cfg, false, best)
	if err != nil {
		return err
	}
	log.Infof("confirmation run: %.2f s mean wait", result.MeanWait())

	if err := timing.Export(optimizeOut, s.Network()); err != nil {
		return err
	}
	log.Infof("best timings written to %s", optimizeOut)

	return nil
}
