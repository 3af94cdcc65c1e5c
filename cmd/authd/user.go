// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"encoding/json"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
)

func newUserCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}

	var username, email, password string
	register := &cobra.Command{
		Use:   "register",
		Short: "Register a new user",
		Long: `Register a user with the same validation and hashing as the service.
The created user is printed as JSON.`,
		Args: cobra.NoArgs,
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

			user, err := svc.Register(cmd.Context(), username, email, password)
			if err != nil {
				return err
			}
			return writeJSON(cmd, user.Summary())
		},
	}
	register.Flags().StringVar(&username, "username", "", "username (3-50 letters, digits or underscores)")
	register.Flags().StringVar(&email, "email", "", "email address")
	register.Flags().StringVar(&password, "password", "", "initial password")
	for _, name := range []string{"username", "email", "password"} {
		_ = register.MarkFlagRequired(name) //nolint:errcheck // flag defined above
	}
	cmd.AddCommand(register)

	return cmd
}

// writeJSON prints v indented to the command's output.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return oops.Code("OUTPUT_FAILED").Wrap(err)
	}
	return nil
}
