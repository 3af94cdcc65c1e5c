// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/holomush/authd/internal/auth"
	authpg "github.com/holomush/authd/internal/auth/postgres"
	"github.com/holomush/authd/internal/config"
	"github.com/holomush/authd/internal/observability"
	"github.com/holomush/authd/internal/store"
)

// Deps contains injectable dependencies for the commands.
// All fields with nil values will use their default implementations.
type Deps struct {
	// StoresFactory opens the user and session stores. The returned func
	// releases them.
	// Default: a pgx pool from store.OpenPool wrapped by the postgres
	// repositories.
	StoresFactory func(ctx context.Context, cfg *config.Config, logger *slog.Logger) (auth.Stores, func(), error)

	// MigratorFactory creates a schema migrator from a database URL.
	// Default: store.NewMigrator
	MigratorFactory func(databaseURL string) (Migrator, error)

	// ObservabilityServerFactory creates an observability server.
	// Default: observability.NewServer
	ObservabilityServerFactory func(addr string, readinessChecker observability.ReadinessChecker) ObservabilityServer

	// SentryInit configures error reporting.
	// Default: observability.InitSentry
	SentryInit func(opts observability.SentryOptions) (*observability.SentryReporter, error)

	// LogWriter receives structured logs.
	// Default: os.Stderr
	LogWriter io.Writer
}

// Migrator interface wraps the methods used from store.Migrator.
type Migrator interface {
	Up() error
	Down() error
	Steps(n int) error
	Version() (version uint, dirty bool, err error)
	Force(version int) error
	PendingMigrations() ([]uint, error)
	Close() error
}

// ObservabilityServer interface wraps the methods used from observability.Server.
type ObservabilityServer interface {
	Start() (<-chan error, error)
	Stop(ctx context.Context) error
	Addr() string
	Metrics() *observability.Metrics
}

// withDefaults returns a copy of d with every nil field filled in.
func (d *Deps) withDefaults() *Deps {
	out := Deps{}
	if d != nil {
		out = *d
	}
	if out.StoresFactory == nil {
		out.StoresFactory = openPostgresStores
	}
	if out.MigratorFactory == nil {
		out.MigratorFactory = func(databaseURL string) (Migrator, error) {
			return store.NewMigrator(databaseURL)
		}
	}
	if out.ObservabilityServerFactory == nil {
		out.ObservabilityServerFactory = func(addr string, readinessChecker observability.ReadinessChecker) ObservabilityServer {
			return observability.NewServer(addr, readinessChecker)
		}
	}
	if out.SentryInit == nil {
		out.SentryInit = observability.InitSentry
	}
	if out.LogWriter == nil {
		out.LogWriter = os.Stderr
	}
	return &out
}

// openPostgresStores connects to the configured database and builds the
// repositories on top of the pool.
func openPostgresStores(ctx context.Context, cfg *config.Config, logger *slog.Logger) (auth.Stores, func(), error) {
	if err := cfg.RequireDatabase(); err != nil {
		return auth.Stores{}, nil, err
	}
	pool, err := store.OpenPool(ctx, cfg.Database.URL, cfg.RetryConfig(), logger)
	if err != nil {
		return auth.Stores{}, nil, err
	}
	stores := auth.Stores{
		Users:    authpg.NewUserRepository(pool),
		Sessions: authpg.NewSessionRepository(pool),
		Tx:       authpg.NewTransactor(pool),
	}
	return stores, pool.Close, nil
}
