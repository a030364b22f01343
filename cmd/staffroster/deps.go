// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 StaffRoster Contributors

package main

import (
	"context"
	"net"

	"github.com/samber/oops"

	"github.com/staffroster/staffroster/internal/config"
	"github.com/staffroster/staffroster/internal/store"
)

// Pool is the database handle the commands run against. *pgxpool.Pool and
// pgxmock pools satisfy it.
type Pool interface {
	store.DB
	store.Pinger
	Close()
}

// SchemaMigrator wraps the methods used from store.Migrator.
type SchemaMigrator interface {
	Up() error
	Down() error
	Steps(n int) error
	Version() (uint, bool, error)
	Force(version int) error
	PendingMigrations() ([]uint, error)
	AppliedMigrations() ([]uint, error)
	Close() error
}

// Deps contains injectable dependencies for the serve, migrate and seed
// commands. All fields with nil values use their default implementations.
type Deps struct {
	// PoolFactory opens the database pool.
	// Default: store.Connect
	PoolFactory func(ctx context.Context, url string, opts store.ConnectOptions) (Pool, error)

	// MigratorFactory creates a schema migrator.
	// Default: store.NewMigrator
	MigratorFactory func(url string) (SchemaMigrator, error)

	// Listen binds the API listener.
	// Default: net.Listen
	Listen func(network, address string) (net.Listener, error)

	// OnListening is called with the bound API address once serving starts.
	OnListening func(addr string)
}

func (d *Deps) withDefaults() *Deps {
	out := Deps{}
	if d != nil {
		out = *d
	}
	if out.PoolFactory == nil {
		out.PoolFactory = func(ctx context.Context, url string, opts store.ConnectOptions) (Pool, error) {
			return store.Connect(ctx, url, opts)
		}
	}
	if out.MigratorFactory == nil {
		out.MigratorFactory = func(url string) (SchemaMigrator, error) {
			return store.NewMigrator(url)
		}
	}
	if out.Listen == nil {
		out.Listen = net.Listen
	}
	if out.OnListening == nil {
		out.OnListening = func(string) {}
	}
	return &out
}

func requireDatabaseURL(cfg *config.Config) error {
	if cfg.Database.URL == "" {
		return oops.Code("CONFIG_INVALID").
			Errorf("database.url is required (set %sDATABASE__URL or --database-url)", config.EnvPrefix)
	}
	return nil
}

// openPool connects using the configured retry budget.
func openPool(ctx context.Context, cfg *config.Config, deps *Deps) (Pool, error) {
	if err := requireDatabaseURL(cfg); err != nil {
		return nil, err
	}
	attempts := cfg.Database.ConnectAttempts
	if attempts < 1 {
		attempts = 1
	}
	pool, err := deps.PoolFactory(ctx, cfg.Database.URL, store.ConnectOptions{Attempts: uint64(attempts)})
	if err != nil {
		return nil, oops.Code("DB_CONNECT_FAILED").With("operation", "connect to database").Wrap(err)
	}
	return pool, nil
}

// migrateUp applies pending migrations.
func migrateUp(cfg *config.Config, deps *Deps) error {
	migrator, err := deps.MigratorFactory(cfg.Database.URL)
	if err != nil {
		return oops.Code("MIGRATION_FAILED").With("operation", "create migrator").Wrap(err)
	}
	defer func() { _ = migrator.Close() }()

	if err := migrator.Up(); err != nil {
		return oops.Code("MIGRATION_FAILED").With("operation", "run migrations").Wrap(err)
	}
	return nil
}
