// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 StaffRoster Contributors

package auth

import (
	"errors"

	"github.com/samber/oops"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrAlreadyExists is returned by repositories when a uniqueness constraint
// rejects a write.
var ErrAlreadyExists = errors.New("already exists")

// Error codes surfaced to handlers.
const (
	CodeMissingFields      = "AUTH_MISSING_FIELDS"
	CodeInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	CodeAlreadyRegistered  = "AUTH_ALREADY_REGISTERED"
	CodeInternal           = "AUTH_INTERNAL"
	CodeSessionInvalid     = "SESSION_INVALID"
	CodeSessionExpired     = "SESSION_EXPIRED"
)

// Kind classifies authentication failures.
type Kind int

// Failure kinds.
const (
	KindNone Kind = iota
	KindMissingFields
	KindInvalidCredentials
	KindAlreadyRegistered
	KindInvalidSession
	KindInternalFailure
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNone:
		return "None"
	case KindMissingFields:
		return "MissingFields"
	case KindInvalidCredentials:
		return "InvalidCredentials"
	case KindAlreadyRegistered:
		return "AlreadyRegistered"
	case KindInvalidSession:
		return "InvalidSession"
	default:
		return "InternalFailure"
	}
}

// KindOf maps err onto the failure taxonomy. Errors without a recognized
// code are InternalFailure; a nil error is KindNone.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return KindInternalFailure
	}
	switch oopsErr.Code() {
	case CodeMissingFields:
		return KindMissingFields
	case CodeInvalidCredentials:
		return KindInvalidCredentials
	case CodeAlreadyRegistered:
		return KindAlreadyRegistered
	case CodeSessionInvalid, CodeSessionExpired:
		return KindInvalidSession
	default:
		return KindInternalFailure
	}
}

func errMissingFields() error {
	return oops.Code(CodeMissingFields).Errorf("username and password are required")
}

func errInvalidCredentials() error {
	return oops.Code(CodeInvalidCredentials).Errorf("invalid username or password")
}
