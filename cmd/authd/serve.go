// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/authd/internal/auth"
	"github.com/holomush/authd/internal/config"
	"github.com/holomush/authd/internal/observability"
)

const (
	shutdownTimeout    = 5 * time.Second
	sentryFlushTimeout = 2 * time.Second
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the authd daemon",
		Long: `Connect to the database, expose metrics and health probes and purge
expired refresh sessions periodically until interrupted.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runServe(cmd.Context(), cmd)
		},
	}

	cmd.Flags().String("metrics-addr", "127.0.0.1:9100", "metrics/health HTTP address (empty = disabled)")
	cmd.Flags().Duration("sweep-interval", time.Hour, "interval between expired session purges")
	cmd.Flags().Bool("auto-migrate", false, "apply pending migrations before starting")
	cmd.Flags().String("sentry-dsn", "", "Sentry DSN (empty = disabled)")

	return cmd
}

func (a *app) runServe(ctx context.Context, cmd *cobra.Command) error {
	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := a.setupLogging(cfg)

	logger.Info("starting authd",
		"version", version,
		"metrics_addr", cfg.Metrics.Addr,
		"sweep_interval", cfg.Sessions.SweepInterval,
	)

	reporter, err := a.deps.SentryInit(observability.SentryOptions{
		DSN:         cfg.Sentry.DSN,
		Environment: cfg.Sentry.Environment,
		Release:     version,
		SampleRate:  cfg.Sentry.SampleRate,
	})
	if err != nil {
		return err
	}
	defer reporter.Flush(sentryFlushTimeout)

	if cfg.Database.AutoMigrate {
		if err := a.migrateUp(cfg, logger); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var ready atomic.Bool
	metrics := observability.NewMetrics(prometheus.NewRegistry())

	var obsServer ObservabilityServer
	if cfg.Metrics.Addr != "" {
		obsServer = a.deps.ObservabilityServerFactory(cfg.Metrics.Addr, ready.Load)
		obsErrChan, err := obsServer.Start()
		if err != nil {
			return oops.Code("OBSERVABILITY_START_FAILED").With("addr", cfg.Metrics.Addr).Wrap(err)
		}
		defer stopObservability(obsServer, logger)
		go monitorServerErrors(ctx, cancel, obsErrChan, "observability")
		metrics = obsServer.Metrics()
	}

	var errReporter observability.ErrorReporter
	if reporter != nil {
		errReporter = reporter
	}
	svc, closeStores, err := a.openService(ctx, cfg, logger,
		auth.WithObserver(observability.NewAuthObserver(metrics, errReporter)))
	if err != nil {
		return err
	}
	defer closeStores()

	sweeper, err := auth.NewSweeper(svc, cfg.Sessions.SweepInterval,
		auth.WithSweeperLogger(logger),
		auth.WithPurgeHook(metrics.RecordPurged))
	if err != nil {
		return err
	}

	var wg sync.WaitGroup
	wg.Go(func() { sweeper.Run(ctx) })

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	ready.Store(true)
	cmd.Println("authd started")
	logger.Info("authd ready")

	select {
	case sig := <-sigChan:
		logger.Info("received shutdown signal", "signal", sig)
	case <-ctx.Done():
		logger.Info("context cancelled, shutting down")
	}

	logger.Info("shutting down...")
	ready.Store(false)
	cancel()
	wg.Wait()

	logger.Info("shutdown complete")
	return nil
}

func stopObservability(server ObservabilityServer, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Stop(ctx); err != nil {
		logger.Warn("error stopping observability server", "error", err)
	}
}

// monitorServerErrors cancels ctx when the server reports an error. It
// returns when the channel closes or ctx is done.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, errCh <-chan error, serverName string) {
	select {
	case err, ok := <-errCh:
		if !ok {
			return
		}
		if err != nil {
			slog.Error("server error, triggering shutdown",
				"server", serverName,
				"error", err,
			)
			cancel()
		}
	case <-ctx.Done():
	}
}

// migrateUp applies pending migrations for serve --auto-migrate.
func (a *app) migrateUp(cfg *config.Config, logger *slog.Logger) error {
	if err := cfg.RequireDatabase(); err != nil {
		return err
	}
	migrator, err := a.deps.MigratorFactory(cfg.Database.URL)
	if err != nil {
		return err
	}
	defer closeMigrator(migrator, logger)

	if err := migrator.Up(); err != nil {
		return err
	}
	current, _, err := migrator.Version()
	if err != nil {
		return err
	}
	logger.Info("database schema up to date", "version", current)
	return nil
}

func closeMigrator(m Migrator, logger *slog.Logger) {
	if err := m.Close(); err != nil {
		logger.Warn("failed to close migrator", "error", err)
	}
}
