// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 StaffRoster Contributors

package observability

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func startServer(t *testing.T, checker ReadinessChecker) *Server {
	t.Helper()
	server := NewServer("127.0.0.1:0", checker, nil)
	_, err := server.Start()
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Stop(ctx)
	})
	return server
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	resp, err := client.Get(url)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestServer_MetricsEndpoint(t *testing.T) {
	server := startServer(t, nil)
	server.Metrics().RecordLogin(OutcomeSuccess)

	status, body := get(t, "http://"+server.Addr()+"/metrics")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "# HELP")
	assert.Contains(t, body, "go_")
	assert.Contains(t, body, `staffroster_login_attempts_total{outcome="success"} 1`)
}

func TestServer_Probes(t *testing.T) {
	tests := []struct {
		name    string
		checker ReadinessChecker
		path    string
		status  int
		body    string
	}{
		{"liveness", nil, "/healthz/liveness", http.StatusOK, "ok\n"},
		{"ready", func(context.Context) error { return nil }, "/healthz/readiness", http.StatusOK, "ok\n"},
		{"nil checker", nil, "/healthz/readiness", http.StatusOK, "ok\n"},
		{"not ready", func(context.Context) error { return errors.New("db down") }, "/healthz/readiness", http.StatusServiceUnavailable, "not ready\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := NewServer("127.0.0.1:0", tt.checker, nil)
			rec := httptest.NewRecorder()
			server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.body, rec.Body.String())
		})
	}
}

func TestServer_ReadinessHasDeadline(t *testing.T) {
	var deadline bool
	server := NewServer("127.0.0.1:0", func(ctx context.Context) error {
		_, deadline = ctx.Deadline()
		return nil
	}, nil)

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz/readiness", nil))
	assert.True(t, deadline)
}

func TestServer_DoubleStartFails(t *testing.T) {
	server := startServer(t, nil)
	_, err := server.Start()
	require.Error(t, err)
}

func TestServer_StopIdempotent(t *testing.T) {
	server := NewServer("127.0.0.1:0", nil, nil)
	require.NoError(t, server.Stop(context.Background()))
	assert.Empty(t, server.Addr())
}

func TestServer_ListenFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer func() { _ = ln.Close() }()

	server := NewServer(ln.Addr().String(), nil, nil)
	_, err = server.Start()
	require.Error(t, err)

	// A failed start leaves the server startable.
	_, err = server.Start()
	require.Error(t, err)
	assert.False(t, strings.Contains(err.Error(), "already running"))
}

func TestServer_ErrorChannelClosesOnShutdown(t *testing.T) {
	server := NewServer("127.0.0.1:0", nil, nil)
	errCh, err := server.Start()
	require.NoError(t, err)

	require.NoError(t, server.Stop(context.Background()))

	select {
	case err, ok := <-errCh:
		assert.False(t, ok, "channel should close without an error, got %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("error channel was not closed")
	}
}

func TestMetrics_Record(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordLogin(OutcomeRejected)
	m.RecordLogin(OutcomeRejected)
	m.RecordRegistration(OutcomeSuccess)
	m.RecordRequest("/api/v1/admin/login", http.StatusBadRequest)
	m.RecordRequest("", http.StatusNotFound)

	assert.InDelta(t, 2, testutil.ToFloat64(m.LoginAttempts.WithLabelValues(OutcomeRejected)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Registrations.WithLabelValues(OutcomeSuccess)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("/api/v1/admin/login", "400")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("unmatched", "404")), 0)
}
