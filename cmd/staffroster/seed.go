// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 StaffRoster Contributors

package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/staffroster/staffroster/internal/auth"
	authpg "github.com/staffroster/staffroster/internal/auth/postgres"
	"github.com/staffroster/staffroster/internal/config"
)

// Default timeout for seed command.
const defaultSeedTimeout = 30 * time.Second

// seedFile lists administrators to create.
type seedFile struct {
	Administrators []seedAdmin `yaml:"administrators"`
}

type seedAdmin struct {
	UserName string `yaml:"userName"`
	Password string `yaml:"password"`
	// PasswordEnv names an environment variable holding the password.
	PasswordEnv string `yaml:"passwordEnv"`
}

// seedOptions holds configuration for the seed command.
type seedOptions struct {
	file        string
	timeout     time.Duration
	skipMigrate bool
}

// seedResult counts what a seed run did.
type seedResult struct {
	created int
	skipped int
}

// NewSeedCmd creates the seed subcommand.
func NewSeedCmd() *cobra.Command {
	return newSeedCmd(nil)
}

func newSeedCmd(deps *Deps) *cobra.Command {
	opts := &seedOptions{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create administrators from a YAML file",
		Long: `Registers the administrators listed in a YAML file.
This command is idempotent - usernames that already exist are skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			res, err := runSeed(ctx, cfg, opts, deps, os.Getenv)
			if err != nil {
				return err
			}
			cmd.Printf("Seeding complete: %d created, %d already present\n", res.created, res.skipped)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.file, "file", "", "YAML file listing administrators")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", defaultSeedTimeout, "timeout for database operations (e.g., 30s, 1m)")
	cmd.Flags().BoolVar(&opts.skipMigrate, "skip-migrate", false, "do not apply pending migrations first")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runSeed(ctx context.Context, cfg *config.Config, opts *seedOptions, deps *Deps, getenv func(string) string) (seedResult, error) {
	deps = deps.withDefaults()

	f, err := os.Open(opts.file)
	if err != nil {
		return seedResult{}, oops.Code("SEED_READ_FAILED").With("path", opts.file).Wrap(err)
	}
	defer func() { _ = f.Close() }()

	admins, err := parseSeedFile(f, getenv)
	if err != nil {
		return seedResult{}, oops.With("path", opts.file).Wrap(err)
	}

	pool, err := openPool(ctx, cfg, deps)
	if err != nil {
		return seedResult{}, err
	}
	defer pool.Close()

	if !opts.skipMigrate {
		if err := migrateUp(cfg, deps); err != nil {
			return seedResult{}, err
		}
	}

	authn, err := auth.NewAuthenticatorWithLogger(authpg.NewAdministratorRepository(pool), auth.NewArgon2idHasher(), slog.Default())
	if err != nil {
		return seedResult{}, err
	}
	return seedAdministrators(ctx, authn, admins)
}

// parseSeedFile decodes and validates a seed file. Passwords given through
// passwordEnv are resolved with getenv.
func parseSeedFile(r io.Reader, getenv func(string) string) ([]seedAdmin, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var sf seedFile
	if err := dec.Decode(&sf); err != nil && !errors.Is(err, io.EOF) {
		return nil, oops.Code("SEED_INVALID").With("operation", "decode seed file").Wrap(err)
	}

	seen := make(map[string]bool, len(sf.Administrators))
	out := make([]seedAdmin, 0, len(sf.Administrators))
	for i, a := range sf.Administrators {
		if a.UserName == "" {
			return nil, oops.Code("SEED_INVALID").With("index", i).Errorf("administrator %d has no userName", i)
		}
		if seen[a.UserName] {
			return nil, oops.Code("SEED_INVALID").With("username", a.UserName).Errorf("duplicate userName %q", a.UserName)
		}
		seen[a.UserName] = true

		if a.PasswordEnv != "" {
			if a.Password != "" {
				return nil, oops.Code("SEED_INVALID").
					With("username", a.UserName).
					Errorf("%q sets both password and passwordEnv", a.UserName)
			}
			a.Password = getenv(a.PasswordEnv)
		}
		if a.Password == "" {
			return nil, oops.Code("SEED_INVALID").
				With("username", a.UserName).
				Errorf("%q has no password", a.UserName)
		}
		out = append(out, a)
	}
	return out, nil
}

// registrar is the part of auth.Authenticator seeding needs.
type registrar interface {
	Register(ctx context.Context, username, password string) (*auth.Administrator, error)
}

func seedAdministrators(ctx context.Context, r registrar, admins []seedAdmin) (seedResult, error) {
	var res seedResult
	for _, a := range admins {
		_, err := r.Register(ctx, a.UserName, a.Password)
		switch auth.KindOf(err) {
		case auth.KindNone:
			res.created++
			slog.Info("seeded administrator", "username", a.UserName)
		case auth.KindAlreadyRegistered:
			res.skipped++
			slog.Info("administrator already exists, skipping", "username", a.UserName)
		default:
			return res, oops.Code("SEED_FAILED").With("username", a.UserName).Wrap(err)
		}
	}
	return res, nil
}
