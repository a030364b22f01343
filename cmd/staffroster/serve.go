// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 StaffRoster Contributors

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/staffroster/staffroster/internal/auth"
	authpg "github.com/staffroster/staffroster/internal/auth/postgres"
	"github.com/staffroster/staffroster/internal/config"
	"github.com/staffroster/staffroster/internal/employee"
	employeepg "github.com/staffroster/staffroster/internal/employee/postgres"
	"github.com/staffroster/staffroster/internal/httpapi"
	"github.com/staffroster/staffroster/internal/media"
	"github.com/staffroster/staffroster/internal/observability"
	"github.com/staffroster/staffroster/internal/store"
	"github.com/staffroster/staffroster/internal/xdg"
	"github.com/staffroster/staffroster/pkg/errutil"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	return newServeCmd(nil)
}

func newServeCmd(deps *Deps) *cobra.Command {
	var skipMigrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long: `Start the HTTP API. Connects to PostgreSQL, applies pending schema
migrations, and serves until SIGINT or SIGTERM.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cmd, cfg, serveOptions{skipMigrate: skipMigrate}, deps)
		},
	}

	cmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "do not apply pending migrations on startup")

	return cmd
}

type serveOptions struct {
	skipMigrate bool
}

// runServe runs the API until ctx is cancelled or a server fails.
func runServe(ctx context.Context, cmd *cobra.Command, cfg *config.Config, opts serveOptions, deps *Deps) error {
	deps = deps.withDefaults()
	logger := slog.Default()

	stopTracing, err := observability.StartTracing(ctx, observability.TracingOptions{
		Service:      "staffroster",
		Version:      version,
		OTLPEndpoint: cfg.Tracing.OTLPEndpoint,
		Insecure:     cfg.Tracing.Insecure,
		SampleRatio:  cfg.Tracing.SampleRatio,
	})
	if err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := stopTracing(stopCtx); err != nil {
			errutil.LogError(logger, "error stopping tracing", err)
		}
	}()

	pool, err := openPool(ctx, cfg, deps)
	if err != nil {
		return err
	}
	defer pool.Close()
	logger.Info("connected to database")

	if !opts.skipMigrate {
		if err := migrateUp(cfg, deps); err != nil {
			return err
		}
		logger.Info("schema up to date")
	}

	api, obs, err := buildAPI(cfg, pool, logger)
	if err != nil {
		return err
	}

	listener, err := deps.Listen("tcp", cfg.HTTP.Addr)
	if err != nil {
		return oops.Code("HTTP_LISTEN_FAILED").With("addr", cfg.HTTP.Addr).Wrap(err)
	}
	srv := &http.Server{
		Handler:           api,
		ReadHeaderTimeout: readHeaderTimeout,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}

	apiErr := make(chan error, 1)
	go func() {
		defer close(apiErr)
		if serveErr := srv.Serve(listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			apiErr <- serveErr
		}
	}()

	var obsErr <-chan error
	if cfg.Metrics.Addr != "" {
		obsErr, err = obs.Start()
		if err != nil {
			shutdownHTTP(srv, logger)
			return oops.Code("OBSERVABILITY_START_FAILED").Wrap(err)
		}
	}

	addr := listener.Addr().String()
	deps.OnListening(addr)
	cmd.Println("API listening on " + addr)
	logger.Info("api server started", "addr", addr)

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case err := <-apiErr:
		if err != nil {
			runErr = oops.Code("HTTP_SERVE_FAILED").Wrap(err)
		}
	case err := <-obsErr:
		if err != nil {
			runErr = oops.Code("OBSERVABILITY_SERVE_FAILED").Wrap(err)
		}
	}
	if runErr != nil {
		logger.Error("server error, shutting down", "error", runErr)
	}

	shutdownHTTP(srv, logger)
	stopCtx, stopCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stopCancel()
	if err := obs.Stop(stopCtx); err != nil {
		logger.Warn("error stopping observability server", "error", err)
	}

	logger.Info("shutdown complete")
	return runErr
}

// buildAPI wires repositories, services and the router over pool.
func buildAPI(cfg *config.Config, pool Pool, logger *slog.Logger) (http.Handler, *observability.Server, error) {
	authn, err := auth.NewAuthenticatorWithLogger(authpg.NewAdministratorRepository(pool), auth.NewArgon2idHasher(), logger)
	if err != nil {
		return nil, nil, err
	}
	issuer, err := auth.NewSessionIssuer(cfg.SessionConfig())
	if err != nil {
		return nil, nil, err
	}

	mediaDir := cfg.Media.Dir
	if mediaDir == "" {
		if mediaDir, err = xdg.MediaDir(); err != nil {
			return nil, nil, err
		}
	}
	if err := xdg.EnsureDir(mediaDir); err != nil {
		return nil, nil, err
	}
	uploader, err := media.NewLocalUploader(mediaDir, cfg.Media.BaseURL, cfg.Media.MaxUploadBytes)
	if err != nil {
		return nil, nil, err
	}

	employees, err := employee.NewService(employeepg.NewEmployeeRepository(pool), uploader, logger)
	if err != nil {
		return nil, nil, err
	}

	obs := observability.NewServer(cfg.Metrics.Addr, func(ctx context.Context) error {
		return store.Ping(ctx, pool)
	}, logger)

	api, err := httpapi.NewRouter(httpapi.Deps{
		Auth:           authn,
		Issuer:         issuer,
		Employees:      employees,
		Metrics:        obs.Metrics(),
		Logger:         logger,
		Media:          uploader.Handler(),
		MediaPath:      mediaPath(cfg.Media.BaseURL),
		RequestTimeout: cfg.HTTP.RequestTimeout,
		MaxUploadBytes: cfg.Media.MaxUploadBytes,
	})
	if err != nil {
		return nil, nil, err
	}
	return api, obs, nil
}

// mediaPath returns the local mount path for the public media base URL. An
// absolute base URL mounts at its path component.
func mediaPath(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil || u.Path == "" || u.Path == "/" {
		return "/media"
	}
	return "/" + strings.Trim(u.Path, "/")
}

func shutdownHTTP(srv *http.Server, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("error stopping api server", "error", err)
	}
}
