// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 StaffRoster Contributors

package observability

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for authentication counters.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeInvalid  = "invalid"
	OutcomeError    = "error"
)

// Metrics holds the application counters.
type Metrics struct {
	LoginAttempts *prometheus.CounterVec
	Registrations *prometheus.CounterVec
	HTTPRequests  *prometheus.CounterVec
}

// NewMetrics creates the application counters and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		LoginAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "staffroster_login_attempts_total",
				Help: "Administrator login attempts by outcome",
			},
			[]string{"outcome"},
		),
		Registrations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "staffroster_registrations_total",
				Help: "Administrator registrations by outcome",
			},
			[]string{"outcome"},
		),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "staffroster_http_requests_total",
				Help: "HTTP requests by route pattern and status code",
			},
			[]string{"route", "status"},
		),
	}

	reg.MustRegister(m.LoginAttempts, m.Registrations, m.HTTPRequests)
	return m
}

// RecordLogin counts a login attempt.
func (m *Metrics) RecordLogin(outcome string) {
	m.LoginAttempts.WithLabelValues(outcome).Inc()
}

// RecordRegistration counts a registration attempt.
func (m *Metrics) RecordRegistration(outcome string) {
	m.Registrations.WithLabelValues(outcome).Inc()
}

// RecordRequest counts a served HTTP request.
func (m *Metrics) RecordRequest(route string, status int) {
	if route == "" {
		route = "unmatched"
	}
	m.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
}
