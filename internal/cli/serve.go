package cli

import (
	"github.com/spf13/cobra"

	"filehub/internal/app"
	"filehub/pkg/config"
)

func NewServeCommand(loadedConfig func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Serve(loadedConfig())
		},
	}
}
