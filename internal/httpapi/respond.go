// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 StaffRoster Contributors

package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/staffroster/staffroster/internal/auth"
	"github.com/staffroster/staffroster/internal/employee"
	"github.com/staffroster/staffroster/pkg/errutil"
)

type messageResponse struct {
	Message string `json:"message"`
}

const internalMessage = "Internal server error"

// failure is the client-facing side of an error code.
type failure struct {
	status  int
	message string
}

// failures maps error codes to responses. Codes not listed are internal
// failures and answer 500.
var failures = map[string]failure{
	auth.CodeMissingFields:      {http.StatusBadRequest, "Please provide all details!"},
	auth.CodeInvalidCredentials: {http.StatusBadRequest, "Invalid Password or username"},
	auth.CodeAlreadyRegistered:  {http.StatusBadRequest, "User already registered"},
	"AUTH_INVALID_USERNAME":     {http.StatusBadRequest, "Invalid username"},
	auth.CodeSessionInvalid:     {http.StatusUnauthorized, "Please login to continue"},
	auth.CodeSessionExpired:     {http.StatusUnauthorized, "Session expired, please login again"},

	employee.CodeAvatarRequired: {http.StatusBadRequest, "Employee avatar required!"},
	employee.CodeAvatarFormat:   {http.StatusBadRequest, "File format not supported!"},
	employee.CodeMissingFields:  {http.StatusBadRequest, "Please fill full form"},
	employee.CodeEmailExists:    {http.StatusBadRequest, "Employee with this email already exist!"},
	employee.CodeInvalidPatch:   {http.StatusBadRequest, "Invalid employee update"},
	employee.CodeNotFound:       {http.StatusNotFound, "User no exists"},

	"MEDIA_UNSUPPORTED_TYPE": {http.StatusBadRequest, "File format not supported!"},
	"MEDIA_TOO_LARGE":        {http.StatusBadRequest, "Employee avatar is too large"},
	codeBadRequest:           {http.StatusBadRequest, "Invalid request body"},
}

// messages overrides the default message for individual codes.
type messages map[string]string

// resolve returns the status and message for err.
func resolve(err error, overrides messages) failure {
	code := errutil.Code(err)
	f, ok := failures[code]
	if !ok {
		return failure{http.StatusInternalServerError, internalMessage}
	}
	if msg, ok := overrides[code]; ok {
		f.message = msg
	}
	return f
}

// fail writes the response for err. Internal failures are logged; their
// details never reach the client.
func (s *server) fail(w http.ResponseWriter, r *http.Request, err error, overrides messages) {
	f := resolve(err, overrides)
	if f.status >= http.StatusInternalServerError {
		errutil.LogErrorContext(r.Context(), s.logger, "request failed", err)
	}
	s.respond(w, r, f.status, messageResponse{Message: f.message})
}

func (s *server) respond(w http.ResponseWriter, r *http.Request, status int, v any) {
	if err := writeJSON(w, status, v); err != nil && !errors.Is(err, http.ErrHandlerTimeout) {
		s.logger.WarnContext(r.Context(), "failed to write response", "status", status, "error", err)
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON response: %w", err)
	}
	return nil
}
