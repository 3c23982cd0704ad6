package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/stockdesk/stockdesk/internal/app"
)

func newSeedCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed users, categories and demo products into the configured store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := root.load()
			if err != nil {
				return err
			}
			rt, err := app.NewRuntime(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer rt.Close()
			if err := rt.Seed(cmd.Context()); err != nil {
				return err
			}
			logger.Info("seed complete", slog.String("driver", cfg.StoreDriver), slog.String("namespace", cfg.StoreNamespace))
			return nil
		},
	}
}
