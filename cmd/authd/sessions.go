// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"github.com/spf13/cobra"
)

func newSessionsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Manage refresh sessions",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "purge",
		Short: "Delete every expired refresh session once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.loadConfig(cmd)
			if err != nil {
				return err
			}
			logger := a.setupLogging(cfg)

			svc, closeStores, err := a.openService(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer closeStores()

			n, err := svc.PurgeExpiredSessions(cmd.Context())
			if err != nil {
				return err
			}
			cmd.Printf("Purged %d expired session(s)\n", n)
			return nil
		},
	})

	return cmd
}
