package main

import (
	"github.com/spf13/cobra"

	"github.com/sarchlab/greenwave/timing"
)

var (
	exportFlags    = &scenarioFlags{}
	exportOut      string
	exportActuated bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Run a scenario and write its light timings as a timing table",
	Long: `Export runs the scenario and then writes the timings every light ended
up with, one row per road. Under fixed control the table mirrors the
configuration; under actuated control it captures what the controllers
adapted to. The written file loads back through --timings.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cmd.SilenceUsage = true

		cfg, err := exportFlags.loadConfig()
		if err != nil {
			return err
		}

		s, _, err := exportFlags.executeScenario(cfg, exportActuated, nil)
		if err != nil {
			return err
		}

		if err := timing.Export(exportOut, s.Network()); err != nil {
			return err
		}
		log.Infof("timings written to %s", exportOut)

		return nil
	},
}

func init() {
	exportFlags.register(exportCmd)
	exportFlags.registerActuation(exportCmd)
	exportCmd.Flags().StringVar(&exportOut, "out", "timings.csv",
		"path of the exported timing table")
	exportCmd.Flags().BoolVar(&exportActuated, "actuated", false,
		"run under pressure-actuated control before exporting")
	rootCmd.AddCommand(exportCmd)
}
