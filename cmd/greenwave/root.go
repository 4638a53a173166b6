package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	easy "github.com/t-tomalak/logrus-easy-formatter"
)

var log = logrus.WithField("module", "greenwave")

var logLevels = map[string]logrus.Level{
	"trace": logrus.TraceLevel,
	"debug": logrus.DebugLevel,
	"info":  logrus.InfoLevel,
	"warn":  logrus.WarnLevel,
	"error": logrus.ErrorLevel,
	"off":   logrus.PanicLevel,
}

var logLevel string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use: "greenwave",
	Short: "Greenwave simulates signal-controlled road grids and tunes " +
		"their timings.",
	Long: `Greenwave runs discrete-event traffic scenarios on rectangular road
grids. It can run a scenario under fixed or pressure-actuated signal
control, search for better timings with a genetic optimizer, and move
timing tables in and out as CSV files.`,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		return setUpRun()
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"log level (trace debug info warn error off)")
}

func setUpRun() error {
	// A .env file supplies optional environment such as the MongoDB URI.
	_ = godotenv.Load()

	logrus.SetFormatter(&easy.Formatter{
		TimestampFormat: "2006-01-02 15:04:05.0000",
		LogFormat:       "[%module%] [%time%] [%lvl%] %msg%\n",
	})

	level, ok := logLevels[logLevel]
	if !ok {
		return fmt.Errorf(
			"log-level must be one of trace debug info warn error off")
	}
	logrus.SetLevel(level)

	return nil
}
