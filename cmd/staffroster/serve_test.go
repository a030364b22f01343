// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 StaffRoster Contributors

package main

import (
	"bytes"
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staffroster/staffroster/internal/config"
	"github.com/staffroster/staffroster/internal/store"
	"github.com/staffroster/staffroster/pkg/errutil"
)

func serveConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load(config.Options{Environ: []string{
		"STAFFROSTER_HTTP__ADDR=127.0.0.1:0",
		"STAFFROSTER_METRICS__ADDR=",
		"STAFFROSTER_DATABASE__URL=postgres://test@localhost/staffroster",
		"STAFFROSTER_AUTH__SIGNING_SECRET=serve-test-secret",
		"STAFFROSTER_MEDIA__DIR=" + t.TempDir(),
	}})
	require.NoError(t, err)
	return cfg
}

func mockDeps(t *testing.T, m *fakeMigrator, addrs chan<- string) *Deps {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	return &Deps{
		PoolFactory: func(context.Context, string, store.ConnectOptions) (Pool, error) {
			return mock, nil
		},
		MigratorFactory: func(string) (SchemaMigrator, error) { return m, nil },
		OnListening:     func(addr string) { addrs <- addr },
	}
}

func TestRunServe_ServesUntilCancelled(t *testing.T) {
	cfg := serveConfig(t)
	m := &fakeMigrator{}
	addrs := make(chan string, 1)
	deps := mockDeps(t, m, addrs)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cmd := &cobra.Command{}
	cmd.SetOut(new(bytes.Buffer))

	done := make(chan error, 1)
	go func() { done <- runServe(ctx, cmd, cfg, serveOptions{}, deps) }()

	var addr string
	select {
	case addr = <-addrs:
	case err := <-done:
		t.Fatalf("serve exited early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not start")
	}
	assert.Equal(t, 1, m.upCalls, "migrations applied on startup")

	client := &http.Client{Timeout: 5 * time.Second, Transport: &http.Transport{DisableKeepAlives: true}}
	resp, err := client.Post("http://"+addr+"/api/v1/admin/login", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = client.Get("http://" + addr + "/api/v1/employees")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestRunServe_SkipMigrate(t *testing.T) {
	cfg := serveConfig(t)
	m := &fakeMigrator{}
	addrs := make(chan string, 1)
	deps := mockDeps(t, m, addrs)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runServe(ctx, &cobra.Command{}, cfg, serveOptions{skipMigrate: true}, deps) }()

	<-addrs
	cancel()
	require.NoError(t, <-done)
	assert.Zero(t, m.upCalls)
}

func TestRunServe_StartupFailures(t *testing.T) {
	t.Run("migration failure", func(t *testing.T) {
		cfg := serveConfig(t)
		deps := mockDeps(t, &fakeMigrator{err: errors.New("dirty")}, make(chan string, 1))

		err := runServe(context.Background(), &cobra.Command{}, cfg, serveOptions{}, deps)
		require.Error(t, err)
	})

	t.Run("connect failure", func(t *testing.T) {
		cfg := serveConfig(t)
		deps := &Deps{
			PoolFactory: func(context.Context, string, store.ConnectOptions) (Pool, error) {
				return nil, errors.New("refused")
			},
		}
		err := runServe(context.Background(), &cobra.Command{}, cfg, serveOptions{}, deps)
		errutil.AssertErrorCode(t, err, "DB_CONNECT_FAILED")
	})

	t.Run("listen failure", func(t *testing.T) {
		cfg := serveConfig(t)
		deps := mockDeps(t, &fakeMigrator{}, make(chan string, 1))
		deps.Listen = func(string, string) (net.Listener, error) { return nil, errors.New("in use") }

		err := runServe(context.Background(), &cobra.Command{}, cfg, serveOptions{}, deps)
		errutil.AssertErrorCode(t, err, "HTTP_LISTEN_FAILED")
	})

	t.Run("missing database url", func(t *testing.T) {
		cfg := serveConfig(t)
		cfg.Database.URL = ""
		err := runServe(context.Background(), &cobra.Command{}, cfg, serveOptions{}, &Deps{})
		errutil.AssertErrorCode(t, err, "CONFIG_INVALID")
	})
}

func TestMediaPath(t *testing.T) {
	tests := []struct {
		base string
		want string
	}{
		{"", "/media"},
		{"/", "/media"},
		{"/media", "/media"},
		{"/static/avatars/", "/static/avatars"},
		{"https://cdn.example.com/avatars", "/avatars"},
		{"https://cdn.example.com", "/media"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, mediaPath(tt.base), tt.base)
	}
}
