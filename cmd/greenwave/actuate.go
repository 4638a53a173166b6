package main

import (
	"github.com/spf13/cobra"
)

var actuateFlags = &scenarioFlags{}

var actuateCmd = &cobra.Command{
	Use:   "actuate",
	Short: "Run a scenario under pressure-actuated signal control",
	Long: `Actuate replaces the fixed light cycles with per-junction controllers
that shift green time toward the fuller approaches on every actuation
interval.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cmd.SilenceUsage = true

		cfg, err := actuateFlags.loadConfig()
		if err != nil {
			return err
		}

		_, _, err = actuateFlags.executeScenario(cfg, true, nil)

		return err
	},
}

func init() {
	actuateFlags.register(actuateCmd)
	actuateFlags.registerActuation(actuateCmd)
	rootCmd.AddCommand(actuateCmd)
}
