package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/stockdesk/stockdesk/internal/app"
)

const shutdownTimeout = 10 * time.Second

type serveOptions struct {
	*rootOptions
	Addr string
	// ready receives the bound address once the listener is open.
	ready chan<- string
}

func newServeCommand(root *rootOptions) *cobra.Command {
	opts := &serveOptions{rootOptions: root}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API on the configured address.

On startup the user directory, categories and demo products are seeded when
missing, and a session persisted by a previous run is restored.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address, overrides APP_ADDR")
	return cmd
}

func runServe(ctx context.Context, opts *serveOptions) error {
	cfg, logger, err := opts.load()
	if err != nil {
		return err
	}
	if opts.Addr != "" {
		cfg.AppAddr = opts.Addr
	}

	rt, err := app.NewRuntime(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := rt.Close(); err != nil {
			logger.Warn("close store", slog.Any("error", err))
		}
	}()
	if err := rt.Start(ctx); err != nil {
		return err
	}

	listener, err := net.Listen("tcp", cfg.AppAddr)
	if err != nil {
		return err
	}
	server := &http.Server{
		Handler:      rt.Handler(),
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting http server", slog.String("addr", listener.Addr().String()))
		if opts.ready != nil {
			opts.ready <- listener.Addr().String()
		}
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
