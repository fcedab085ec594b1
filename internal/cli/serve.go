package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Neutralizer/BookManipulator/internal/config"
	"github.com/Neutralizer/BookManipulator/internal/entrypoint"
	"github.com/Neutralizer/BookManipulator/internal/logging"
)

func NewServeCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server (default if no command given)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.NewConfig()

			logger, err := logging.New(cfg.Log.Level)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			if err := entrypoint.Run(cfg, version, logger); err != nil {
				return fmt.Errorf("server: %w", err)
			}
			return nil
		},
	}
}
