// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"context"
	"fmt"
	"log/slog"

	"devflink/internal/config"
	"devflink/internal/database"
	"devflink/internal/store"
	"devflink/internal/store/filestore"
	"devflink/internal/store/pgstore"
)

// openBackend returns the CollectionStore selected by STORE_BACKEND, with
// its schema or files in place, and a function releasing it.
func openBackend(c *config.Config) (store.CollectionStore, func(), error) {
	switch c.StoreBackend {
	case config.BackendPostgres:
		db, err := database.Connect(c.DSN())
		if err != nil {
			return nil, nil, err
		}
		if err := database.Migrate(db); err != nil {
			db.Close()
			return nil, nil, err
		}
		return pgstore.New(db), func() { db.Close() }, nil

	default:
		fs := filestore.New(c.DataDir)
		if err := fs.Init(); err != nil {
			return nil, nil, fmt.Errorf("init data dir: %w", err)
		}
		slog.Info("file store ready", "dir", fs.Dir())
		return fs, func() {}, nil
	}
}

// bootstrapAdmin creates the configured admin when there are no users yet.
func bootstrapAdmin(ctx context.Context, c *config.Config, users *store.UserStore) error {
	created, err := users.EnsureAdmin(ctx, c.AdminEmail, c.AdminPassword, c.AdminName)
	if err != nil {
		return err
	}
	if !created {
		slog.Debug("users present, bootstrap admin skipped")
	}
	return nil
}
