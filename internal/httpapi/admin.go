// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 StaffRoster Contributors

package httpapi

import (
	"net/http"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/staffroster/staffroster/internal/auth"
	"github.com/staffroster/staffroster/internal/observability"
)

// sessionResponse is returned by login and registration.
type sessionResponse struct {
	Success   bool                `json:"success"`
	Message   string              `json:"message"`
	Token     string              `json:"token"`
	ExpiresAt time.Time           `json:"expiresAt"`
	Admin     *auth.Administrator `json:"user"`
}

type adminResponse struct {
	Success bool                `json:"success"`
	Admin   *auth.Administrator `json:"user"`
}

type successResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (s *server) handleRegister(w http.ResponseWriter, r *http.Request) {
	creds, err := readCredentials(w, r)
	if err != nil {
		s.fail(w, r, err, nil)
		return
	}

	admin, err := s.auth.Register(r.Context(), creds.UserName, creds.Password)
	if err != nil {
		s.metrics.RecordRegistration(outcomeOf(err))
		s.fail(w, r, err, messages{auth.CodeMissingFields: "Please fill full form"})
		return
	}
	s.metrics.RecordRegistration(observability.OutcomeSuccess)

	s.startSession(w, r, admin, "Admin registered")
}

func (s *server) handleLogin(w http.ResponseWriter, r *http.Request) {
	creds, err := readCredentials(w, r)
	if err != nil {
		s.fail(w, r, err, nil)
		return
	}

	admin, err := s.auth.Authenticate(r.Context(), creds.UserName, creds.Password)
	if err != nil {
		s.metrics.RecordLogin(outcomeOf(err))
		s.fail(w, r, err, nil)
		return
	}
	s.metrics.RecordLogin(observability.OutcomeSuccess)

	s.startSession(w, r, admin, "user LoggedIn successfully")
}

// startSession issues a token for admin and writes it as cookies and body.
func (s *server) startSession(w http.ResponseWriter, r *http.Request, admin *auth.Administrator, message string) {
	session, err := s.issuer.Issue(admin)
	if err != nil {
		s.fail(w, r, err, nil)
		return
	}
	for _, c := range session.Cookies() {
		http.SetCookie(w, c)
	}
	s.respond(w, r, http.StatusOK, sessionResponse{
		Success:   true,
		Message:   message,
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		Admin:     admin,
	})
}

func (s *server) handleLogout(w http.ResponseWriter, r *http.Request) {
	for _, c := range s.issuer.ClearCookies() {
		http.SetCookie(w, c)
	}
	s.respond(w, r, http.StatusOK, successResponse{Success: true, Message: "Logged out successfully"})
}

func (s *server) handleMe(w http.ResponseWriter, r *http.Request) {
	id, ok := s.adminID(w, r)
	if !ok {
		return
	}
	admin, err := s.auth.Lookup(r.Context(), id)
	if err != nil {
		s.fail(w, r, err, nil)
		return
	}
	s.respond(w, r, http.StatusOK, adminResponse{Success: true, Admin: admin})
}

func (s *server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
	var req changePasswordRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		s.fail(w, r, err, nil)
		return
	}

	id, ok := s.adminID(w, r)
	if !ok {
		return
	}
	if err := s.auth.ChangePassword(r.Context(), id, req.CurrentPassword, req.NewPassword); err != nil {
		s.fail(w, r, err, messages{auth.CodeInvalidCredentials: "Current password is incorrect"})
		return
	}
	s.respond(w, r, http.StatusOK, successResponse{Success: true, Message: "Password updated successfully"})
}

// adminID returns the authenticated administrator's ID, answering 401
// when the request carries no valid session.
func (s *server) adminID(w http.ResponseWriter, r *http.Request) (ulid.ULID, bool) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		s.fail(w, r, errNoSession(), nil)
		return ulid.ULID{}, false
	}
	id, err := claims.AdminID()
	if err != nil {
		s.fail(w, r, err, nil)
		return ulid.ULID{}, false
	}
	return id, true
}

// outcomeOf buckets an authentication error for the outcome counters.
func outcomeOf(err error) string {
	switch auth.KindOf(err) {
	case auth.KindNone:
		return observability.OutcomeSuccess
	case auth.KindMissingFields:
		return observability.OutcomeInvalid
	case auth.KindInvalidCredentials, auth.KindAlreadyRegistered:
		return observability.OutcomeRejected
	default:
		return observability.OutcomeError
	}
}
