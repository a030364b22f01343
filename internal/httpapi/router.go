// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 StaffRoster Contributors

// Package httpapi exposes administrator sessions and employee management
// over HTTP.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/staffroster/staffroster/internal/auth"
	"github.com/staffroster/staffroster/internal/employee"
)

// Authenticator verifies and manages administrator credentials.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (*auth.Administrator, error)
	Register(ctx context.Context, username, password string) (*auth.Administrator, error)
	ChangePassword(ctx context.Context, id ulid.ULID, current, next string) error
	Lookup(ctx context.Context, id ulid.ULID) (*auth.Administrator, error)
}

// SessionIssuer signs and verifies session tokens.
type SessionIssuer interface {
	TokenVerifier
	Issue(admin *auth.Administrator) (*auth.Session, error)
	ClearCookies() []*http.Cookie
}

// EmployeeService manages employee records.
type EmployeeService interface {
	Create(ctx context.Context, in employee.Input, avatar *employee.File) (*employee.Employee, error)
	List(ctx context.Context) ([]*employee.Employee, error)
	Get(ctx context.Context, id string) (*employee.Employee, error)
	Update(ctx context.Context, id string, body []byte) (*employee.Employee, error)
	Delete(ctx context.Context, id string) error
}

// Recorder receives request and authentication outcomes.
type Recorder interface {
	RecordLogin(outcome string)
	RecordRegistration(outcome string)
	RecordRequest(route string, status int)
}

// Deps are the collaborators the router dispatches to.
type Deps struct {
	Auth      Authenticator
	Issuer    SessionIssuer
	Employees EmployeeService
	Metrics   Recorder
	Logger    *slog.Logger

	// Media serves uploaded avatars under MediaPath. Optional.
	Media     http.Handler
	MediaPath string

	RequestTimeout time.Duration
	MaxUploadBytes int64
}

const (
	defaultRequestTimeout = 30 * time.Second
	defaultMediaPath      = "/media"
	maxJSONBodyBytes      = 1 << 20
	// multipartOverhead allows for the text fields sent next to an avatar.
	multipartOverhead = 1 << 20
)

type server struct {
	auth      Authenticator
	issuer    SessionIssuer
	employees EmployeeService
	metrics   Recorder
	logger    *slog.Logger
	maxUpload int64
}

// NewRouter builds the API handler.
func NewRouter(deps Deps) (http.Handler, error) {
	if deps.Auth == nil || deps.Issuer == nil {
		return nil, oops.Code("HTTP_INVALID_CONFIG").Errorf("authenticator and session issuer are required")
	}
	if deps.Employees == nil {
		return nil, oops.Code("HTTP_INVALID_CONFIG").Errorf("employee service is required")
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Metrics == nil {
		deps.Metrics = nopRecorder{}
	}
	if deps.RequestTimeout <= 0 {
		deps.RequestTimeout = defaultRequestTimeout
	}
	if deps.MediaPath == "" {
		deps.MediaPath = defaultMediaPath
	}

	s := &server{
		auth:      deps.Auth,
		issuer:    deps.Issuer,
		employees: deps.Employees,
		metrics:   deps.Metrics,
		logger:    deps.Logger,
		maxUpload: deps.MaxUploadBytes,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(deps.Logger, deps.Metrics))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(deps.RequestTimeout))

	r.Route("/api/v1", func(api chi.Router) {
		api.Route("/admin", func(a chi.Router) {
			a.Post("/register", s.handleRegister)
			a.Post("/login", s.handleLogin)
			a.Post("/logout", s.handleLogout)

			a.Group(func(g chi.Router) {
				g.Use(RequireAdmin(deps.Issuer, deps.Logger))
				g.Get("/me", s.handleMe)
				g.Post("/password", s.handleChangePassword)
			})
		})

		api.Route("/employees", func(e chi.Router) {
			e.Use(RequireAdmin(deps.Issuer, deps.Logger))
			e.Post("/", s.handleCreateEmployee)
			e.Get("/", s.handleListEmployees)
			e.Get("/{id}", s.handleGetEmployee)
			e.Patch("/{id}", s.handleUpdateEmployee)
			e.Put("/{id}", s.handleUpdateEmployee)
			e.Delete("/{id}", s.handleDeleteEmployee)
		})
	})

	if deps.Media != nil {
		r.Method(http.MethodGet, deps.MediaPath+"/*", http.StripPrefix(deps.MediaPath, deps.Media))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.respond(w, r, http.StatusNotFound, messageResponse{Message: "Route not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		s.respond(w, r, http.StatusMethodNotAllowed, messageResponse{Message: "Method not allowed"})
	})

	return otelhttp.NewHandler(r, "staffroster.http"), nil
}

type nopRecorder struct{}

func (nopRecorder) RecordLogin(string)        {}
func (nopRecorder) RecordRegistration(string) {}
func (nopRecorder) RecordRequest(string, int) {}
