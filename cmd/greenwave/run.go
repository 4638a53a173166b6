package main

import (
	"github.com/spf13/cobra"
)

var runFlags = &scenarioFlags{}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a scenario under fixed signal timings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cmd.SilenceUsage = true

		cfg, err := runFlags.loadConfig()
		if err != nil {
			return err
		}

		_, _, err = runFlags.executeScenario(cfg, false, nil)

		return err
	},
}

func init() {
	runFlags.register(runCmd)
	rootCmd.AddCommand(runCmd)
}
