package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/kmd/mea/config"
	"github.com/kmd/mea/health"
	"github.com/kmd/mea/observe"
	"github.com/kmd/mea/server"
)

func newServeCmd(opts *options) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the readiness and liveness probes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load(cmd, func(cfg *config.Config) {
				if cmd.Flags().Changed("addr") {
					cfg.Server.Address = addr
				}
			})
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default :8080)")

	return cmd
}

// runServe serves until ctx is done. Startup fails when any check cannot be
// built or registered.
func runServe(ctx context.Context, cfg *config.Config) error {
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := a.close(flushCtx); err != nil {
			a.logger.Error(flushCtx, "telemetry shutdown failed", observe.F("error", err))
		}
	}()

	probes := health.NewHandler(a.executor, health.WithReportFunc(observe.ReportLogger(a.logger)))
	router := server.NewRouter(probes, a.observer.MetricsHandler(), a.logger)
	srv := server.New(server.Config{
		Address:         cfg.Server.Address,
		ReadTimeout:     cfg.Server.ReadTimeout.Duration,
		WriteTimeout:    cfg.Server.WriteTimeout.Duration,
		ShutdownTimeout: cfg.Server.ShutdownTimeout.Duration,
	}, router, a.logger)

	a.logger.Info(ctx, "checks registered",
		observe.F("checks", a.registry.Names()),
		observe.F("ready", len(a.registry.Entries(health.TagReady))),
	)

	if err := srv.Run(ctx); err != nil {
		a.logger.Error(ctx, "server error", observe.F("error", err))
		return err
	}
	return nil
}
