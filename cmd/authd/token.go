// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/holomush/authd/internal/auth"
)

func newTokenCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Work with issued tokens",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "inspect TOKEN",
		Short: "Verify a token with the configured secret and print its claims",
		Long: `Verify the signature, algorithm and expiry of a token and print its
claims as JSON. Any invalid token is an error; nothing is printed for it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig(cmd)
			if err != nil {
				return err
			}
			a.setupLogging(cfg)

			codec, err := auth.NewTokenCodec(cfg.TokenConfig())
			if err != nil {
				return err
			}
			claims, err := codec.Decode(strings.TrimSpace(args[0]))
			if err != nil {
				return err
			}
			return writeJSON(cmd, claims)
		},
	})

	return cmd
}
