package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "callisto",
	Short: "Callisto - runtime enforcement interlock for policy evaluators",
	Long: `Callisto gates a policy evaluator running behind a traffic split.

It decides per lane whether the evaluator's verdicts are enforced, fails
closed on the operator kill switch, fails open (logging-only) on repeated
evaluator errors via per-lane circuit breakers, and trips a sticky emergency
rollback when the monitored lane's critical block rate drops below the
configured safety floor.

The reference host exposes an admin HTTP endpoint with gate status, manual
rollback reset and Prometheus metrics.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func main() {
	Execute()
}
