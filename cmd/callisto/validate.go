package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mercator-hq/callisto/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file without starting the host",
	Long: `Load and validate the configuration file, reporting every problem at once.

Examples:
  callisto validate
  callisto validate --config /etc/callisto/config.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
		if err != nil {
			return err
		}
		fmt.Printf("configuration valid: %d lane(s), monitor lane %q\n", len(cfg.Lanes), cfg.MonitorLane)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
