package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/stockdesk/stockdesk/internal/app"
)

// rootOptions holds flags shared by every command.
type rootOptions struct {
	EnvFile string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "stockdesk",
		Short:         "Admin dashboard backend for stock and user management",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	cmd.AddCommand(newServeCommand(opts), newSeedCommand(opts))
	return cmd
}

func (o *rootOptions) load() (*app.Config, *slog.Logger, error) {
	cfg, err := app.LoadConfig(o.EnvFile)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, app.NewLogger(cfg), nil
}

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		slog.Default().Error("stockdesk", slog.Any("error", err))
		os.Exit(1)
	}
}
