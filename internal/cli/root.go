package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"filehub/pkg/config"
)

type VersionInfo struct {
	Version string
	Commit  string
}

// NewRootCommand returns the filehub command. Without a subcommand it serves HTTP.
func NewRootCommand(info VersionInfo) *cobra.Command {
	var path string
	var cfg *config.Config

	cmd := &cobra.Command{
		Use:           "filehub",
		Short:         "File upload and management service",
		SilenceErrors: true,
		SilenceUsage:  true,

		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(path)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			cfg = loaded
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&path, "config", "", "config file (yaml, json or toml)")
	cmd.Version = fmt.Sprintf("%s.%s", info.Version, info.Commit)

	loadedConfig := func() *config.Config { return cfg }

	serve := NewServeCommand(loadedConfig)
	cmd.RunE = serve.RunE
	cmd.AddCommand(serve)
	cmd.AddCommand(NewReconcileCommand(loadedConfig))

	return cmd
}
