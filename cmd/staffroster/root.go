// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 StaffRoster Contributors

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/staffroster/staffroster/internal/config"
	"github.com/staffroster/staffroster/internal/logging"
	"github.com/staffroster/staffroster/internal/xdg"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the StaffRoster CLI.
func NewRootCmd() *cobra.Command {
	return newRootCmd(nil)
}

func newRootCmd(deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "staffroster",
		Short: "StaffRoster - employee management backend",
		Long: `StaffRoster is the backend for an employee management dashboard.
Administrators sign in with a username and password and maintain
employee records with avatar images.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")
	config.RegisterFlags(cmd.PersistentFlags())

	cmd.AddCommand(newServeCmd(deps))
	cmd.AddCommand(newMigrateCmd(deps))
	cmd.AddCommand(newSeedCmd(deps))

	return cmd
}

// loadConfig reads the layered configuration for cmd and installs the
// default logger.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(config.Options{
		File:  resolveConfigFile(configFile),
		Flags: cmd.Flags(),
	})
	if err != nil {
		return nil, err
	}
	logging.SetDefault(logging.Options{
		Service: "staffroster",
		Version: version,
		Format:  cfg.Log.Format,
		Level:   cfg.Log.Level,
		Output:  cmd.ErrOrStderr(),
	})
	return cfg, nil
}

// resolveConfigFile returns explicit, or the XDG config file when it exists.
func resolveConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	path, err := xdg.ConfigFile()
	if err != nil {
		return ""
	}
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}
