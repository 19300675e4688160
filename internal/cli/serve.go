package cli

import (
	"github.com/spf13/cobra"

	"github.com/alex-user-go/tripplan/internal/app"
)

// NewServeCmd runs the HTTP server until interrupted.
func NewServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Run(cmd.Context(), *configPath)
		},
	}
}
