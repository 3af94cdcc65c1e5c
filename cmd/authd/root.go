// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/holomush/authd/internal/auth"
	"github.com/holomush/authd/internal/config"
	"github.com/holomush/authd/internal/logging"
	"github.com/holomush/authd/internal/xdg"
)

const serviceName = "authd"

// rootOptions holds the flags shared by every subcommand.
type rootOptions struct {
	configFile string
	envFiles   []string
}

// app carries what the subcommands share.
type app struct {
	opts *rootOptions
	deps *Deps
}

// NewRootCmd creates the root command for the authd CLI. A nil deps uses
// the production defaults.
func NewRootCmd(deps *Deps) *cobra.Command {
	a := &app{
		opts: &rootOptions{},
		deps: deps.withDefaults(),
	}

	cmd := &cobra.Command{
		Use:   serviceName,
		Short: "authd - credential and session service",
		Long: `authd registers users, verifies their credentials and manages the
refresh sessions behind access and refresh tokens.`,
		SilenceUsage: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.opts.configFile, "config", "", "config file path (default: XDG_CONFIG_HOME/authd/authd.yaml)")
	flags.StringSliceVar(&a.opts.envFiles, "env-file", []string{".env"}, "dotenv files loaded before reading the environment")
	flags.String("database-url", "", "PostgreSQL connection URL")
	flags.String("secret-key", "", "token signing secret (prefer SECRET_KEY in the environment)")
	flags.String("algorithm", auth.DefaultAlgorithm, "token signing algorithm (HS256, HS384 or HS512)")
	flags.String("log-format", "json", "log format (json or text)")
	flags.String("log-level", "info", "log level (debug, info, warn or error)")

	cmd.AddCommand(newServeCmd(a))
	cmd.AddCommand(newMigrateCmd(a))
	cmd.AddCommand(newUserCmd(a))
	cmd.AddCommand(newSessionsCmd(a))
	cmd.AddCommand(newTokenCmd(a))

	return cmd
}

// loadConfig resolves configuration for cmd. An explicit --config must
// exist; the XDG default is optional.
func (a *app) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path := a.opts.configFile
	required := path != ""
	if path == "" {
		// Without a resolvable home there is simply no default file.
		if p, err := xdg.DefaultConfigFile(); err == nil {
			path = p
		}
	}

	return config.Load(config.LoadOptions{
		File:         path,
		FileRequired: required,
		DotEnv:       a.opts.envFiles,
		Flags:        cmd.Flags(),
	})
}

// setupLogging installs the configured logger as the slog default.
func (a *app) setupLogging(cfg *config.Config) *slog.Logger {
	return logging.SetDefault(serviceName, version, cfg.Log.Format, cfg.LogLevel(), a.deps.LogWriter)
}

// openService builds the auth service over the configured stores. The
// returned func releases the stores.
func (a *app) openService(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...auth.ServiceOption) (*auth.Service, func(), error) {
	codec, err := auth.NewTokenCodec(cfg.TokenConfig())
	if err != nil {
		return nil, nil, err
	}

	stores, closeStores, err := a.deps.StoresFactory(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	opts = append([]auth.ServiceOption{auth.WithLogger(logger)}, opts...)
	svc, err := auth.NewService(stores, auth.NewArgon2idHasher(), codec, opts...)
	if err != nil {
		closeStores()
		return nil, nil, err
	}
	return svc, closeStores, nil
}
