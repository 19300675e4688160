// Package cli implements the tripplan command line.
package cli

import (
	"github.com/spf13/cobra"
)

// NewRoot returns the tripplan root command.
func NewRoot() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "tripplan",
		Short:         "Assemble trip plans from flight, lodging, attraction, culture and transport providers",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: ./config.yaml or ./configs/config.yaml)")

	cmd.AddCommand(NewPlanCmd(&configPath))
	cmd.AddCommand(NewServeCmd(&configPath))
	return cmd
}
