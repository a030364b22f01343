// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 StaffRoster Contributors

package auth

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// MaxUsernameLength bounds stored usernames.
const MaxUsernameLength = 64

// Role is an administrator role.
type Role string

// RoleAdmin is the only role this service issues.
const RoleAdmin Role = "Admin"

// Administrator is a stored credential record for a privileged user.
type Administrator struct {
	ID           ulid.ULID `json:"id"`
	Username     string    `json:"userName"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// NewAdministrator creates a validated Administrator with RoleAdmin.
func NewAdministrator(username, passwordHash string) (*Administrator, error) {
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}
	if strings.TrimSpace(passwordHash) == "" {
		return nil, oops.Code("AUTH_INVALID_PASSWORD").Errorf("password hash cannot be empty")
	}

	now := time.Now().UTC()
	return &Administrator{
		ID:           ulid.Make(),
		Username:     username,
		PasswordHash: passwordHash,
		Role:         RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Public returns a copy safe to hand outside the package boundary, with the
// password hash cleared.
func (a *Administrator) Public() *Administrator {
	if a == nil {
		return nil
	}
	cp := *a
	cp.PasswordHash = ""
	return &cp
}

// ValidateUsername validates a username for registration.
func ValidateUsername(username string) error {
	if username == "" {
		return oops.Code("AUTH_INVALID_USERNAME").Errorf("username cannot be empty")
	}
	if len(username) > MaxUsernameLength {
		return oops.Code("AUTH_INVALID_USERNAME").
			With("max", MaxUsernameLength).
			Errorf("username must be at most %d characters", MaxUsernameLength)
	}
	if !utf8.ValidString(username) {
		return oops.Code("AUTH_INVALID_USERNAME").Errorf("username must be valid UTF-8")
	}
	return nil
}

// AdministratorRepository is the credential store.
type AdministratorRepository interface {
	// Create stores a new administrator. Returns an error wrapping
	// ErrAlreadyExists if the username is taken.
	Create(ctx context.Context, admin *Administrator) error

	// GetByID retrieves an administrator by ID.
	GetByID(ctx context.Context, id ulid.ULID) (*Administrator, error)

	// GetByUsername retrieves an administrator by exact username.
	// Returns an error wrapping ErrNotFound if absent.
	GetByUsername(ctx context.Context, username string) (*Administrator, error)

	// UpdatePassword replaces the password hash for an administrator.
	UpdatePassword(ctx context.Context, id ulid.ULID, passwordHash string) error
}
