package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"filehub/internal/app"
	"filehub/internal/usecase"
	"filehub/pkg/config"
	"filehub/pkg/logger"
)

func NewReconcileCommand(loadedConfig func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Match stored files against records once and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadedConfig()
			logger.Setup(app.LoggerOptions(cfg))

			store, err := app.OpenRecordStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			report, err := usecase.NewFileUseCase(store, cfg.DefaultPageSize).Reconcile(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "adopted %d files, dropped %d records\n", len(report.Adopted), len(report.Dropped))
			for _, record := range report.Adopted {
				fmt.Fprintf(cmd.OutOrStdout(), "  + %d %s\n", record.ID, record.Filename)
			}
			for _, id := range report.Dropped {
				fmt.Fprintf(cmd.OutOrStdout(), "  - %d\n", id)
			}
			return nil
		},
	}
}
