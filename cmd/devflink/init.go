// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"devflink/internal/store"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Prepare the data store and create the bootstrap admin",
	Long:  "init creates the data directory and collection files (file backend) or applies the schema (postgres backend), then provisions the bootstrap admin if no user exists. It is safe to run more than once.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, closeBackend, err := openBackend(cfg)
		if err != nil {
			return err
		}
		defer closeBackend()

		if err := bootstrapAdmin(cmd.Context(), cfg, store.NewUserStore(backend)); err != nil {
			return err
		}
		slog.Info("store initialized", "backend", cfg.StoreBackend)
		return nil
	},
}
