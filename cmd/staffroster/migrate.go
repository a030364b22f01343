// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 StaffRoster Contributors

package main

import (
	"fmt"
	"strconv"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/staffroster/staffroster/internal/config"
	"github.com/staffroster/staffroster/internal/store"
)

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	return newMigrateCmd(nil)
}

func newMigrateCmd(deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
		Long:  `Apply, roll back, inspect or force schema migrations against PostgreSQL.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, deps, func(m SchemaMigrator) error {
				if err := m.Up(); err != nil {
					return err
				}
				cmd.Println("Migrations applied")
				return nil
			})
		},
	})

	var (
		confirm bool
		steps   int
	)
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations (drops data)",
		Long: `Roll back every migration, or only the last N with --steps.
Rolled back tables and their data are dropped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if steps < 0 {
				return oops.Code("INVALID_STEPS").With("steps", steps).Errorf("--steps must not be negative")
			}
			if !confirm {
				return oops.Code("MIGRATION_NOT_CONFIRMED").Errorf("down drops tables; pass --yes to confirm")
			}
			return withMigrator(cmd, deps, func(m SchemaMigrator) error {
				if steps > 0 {
					if err := m.Steps(-steps); err != nil {
						return err
					}
					cmd.Printf("Rolled back %d migration(s)\n", steps)
					return nil
				}
				if err := m.Down(); err != nil {
					return err
				}
				cmd.Println("All migrations rolled back")
				return nil
			})
		},
	}
	down.Flags().BoolVar(&confirm, "yes", false, "confirm dropping tables")
	down.Flags().IntVar(&steps, "steps", 0, "roll back only the last N migrations (0 = all)")
	cmd.AddCommand(down)

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the current schema version, applied and pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, deps, func(m SchemaMigrator) error {
				return printStatus(cmd, m)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "force <version>",
		Short: "Mark a version as applied without running it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := strconv.Atoi(args[0])
			if err != nil {
				return oops.Code("INVALID_VERSION").With("version", args[0]).Wrap(err)
			}
			return withMigrator(cmd, deps, func(m SchemaMigrator) error {
				if err := m.Force(version); err != nil {
					return err
				}
				cmd.Printf("Forced schema version %d\n", version)
				return nil
			})
		},
	})

	return cmd
}

func withMigrator(cmd *cobra.Command, deps *Deps, fn func(SchemaMigrator) error) error {
	deps = deps.withDefaults()
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return runWithMigrator(cfg, deps, fn)
}

func runWithMigrator(cfg *config.Config, deps *Deps, fn func(SchemaMigrator) error) error {
	if err := requireDatabaseURL(cfg); err != nil {
		return err
	}
	m, err := deps.MigratorFactory(cfg.Database.URL)
	if err != nil {
		return err
	}
	defer func() { _ = m.Close() }()
	return fn(m)
}

func printStatus(cmd *cobra.Command, m SchemaMigrator) error {
	version, dirty, err := m.Version()
	if err != nil {
		return err
	}
	state := "clean"
	if dirty {
		state = "dirty"
	}
	cmd.Printf("Current version: %d (%s)\n", version, state)

	applied, err := m.AppliedMigrations()
	if err != nil {
		return err
	}
	if len(applied) > 0 {
		cmd.Println("Applied migrations:")
		if err := printMigrations(cmd, applied); err != nil {
			return err
		}
	}

	pending, err := m.PendingMigrations()
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		cmd.Println("No pending migrations")
		return nil
	}
	cmd.Println("Pending migrations:")
	return printMigrations(cmd, pending)
}

func printMigrations(cmd *cobra.Command, versions []uint) error {
	for _, v := range versions {
		name, err := store.MigrationName(v)
		if err != nil {
			return err
		}
		if name == "" {
			name = fmt.Sprintf("%06d", v)
		}
		cmd.Println("  " + name)
	}
	return nil
}
