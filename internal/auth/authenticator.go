// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 StaffRoster Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"unicode/utf8"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/staffroster/staffroster/pkg/errutil"
)

const tracerName = "github.com/staffroster/staffroster/internal/auth"

// Authenticator registers administrators and verifies their credentials.
type Authenticator struct {
	admins AdministratorRepository
	hasher PasswordHasher
	logger *slog.Logger
	tracer trace.Tracer
}

// NewAuthenticator creates a new Authenticator using the default logger.
func NewAuthenticator(admins AdministratorRepository, hasher PasswordHasher) (*Authenticator, error) {
	return NewAuthenticatorWithLogger(admins, hasher, slog.Default())
}

// NewAuthenticatorWithLogger creates a new Authenticator with an explicit logger.
func NewAuthenticatorWithLogger(admins AdministratorRepository, hasher PasswordHasher, logger *slog.Logger) (*Authenticator, error) {
	if admins == nil {
		return nil, oops.Code("AUTH_INVALID_SERVICE").Errorf("administrator repository is required")
	}
	if hasher == nil {
		return nil, oops.Code("AUTH_INVALID_SERVICE").Errorf("password hasher is required")
	}
	if logger == nil {
		return nil, oops.Code("AUTH_INVALID_SERVICE").Errorf("logger is required")
	}
	return &Authenticator{
		admins: admins,
		hasher: hasher,
		logger: logger,
		tracer: otel.Tracer(tracerName),
	}, nil
}

// dummyPasswordHash is verified when a username doesn't exist so the
// response time matches a wrong password.
//
//nolint:gosec // G101: intentionally fake hash for timing attack prevention, not a credential.
const dummyPasswordHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// Authenticate verifies username and password against the credential store.
// Unknown usernames and wrong passwords fail identically with
// AUTH_INVALID_CREDENTIALS. The store is only read.
func (a *Authenticator) Authenticate(ctx context.Context, username, password string) (*Administrator, error) {
	if username == "" || password == "" {
		return nil, errMissingFields()
	}

	ctx, span := a.tracer.Start(ctx, "auth.Authenticate", trace.WithAttributes(attribute.String("username", username)))
	defer span.End()

	// A username the store cannot encode cannot exist in it.
	var admin *Administrator
	lookupErr := error(ErrNotFound)
	if utf8.ValidString(username) {
		admin, lookupErr = a.admins.GetByUsername(ctx, username)
	}

	var targetHash string
	var exists bool
	switch {
	case lookupErr == nil:
		targetHash = admin.PasswordHash
		exists = true
	case errors.Is(lookupErr, ErrNotFound):
		targetHash = dummyPasswordHash
	default:
		span.SetStatus(codes.Error, "lookup failed")
		return nil, oops.Code(CodeInternal).
			With("operation", "get administrator by username").
			Wrap(lookupErr)
	}

	valid, verifyErr := a.hasher.Verify(password, targetHash)
	if verifyErr != nil {
		if !exists {
			return nil, errInvalidCredentials()
		}
		span.SetStatus(codes.Error, "verify failed")
		errutil.LogError(a.logger, "stored password hash could not be verified", verifyErr)
		return nil, oops.Code(CodeInternal).
			With("operation", "verify password").
			With("admin_id", admin.ID.String()).
			Wrap(verifyErr)
	}

	if !exists || !valid {
		a.logger.InfoContext(ctx, "login rejected", "username", username)
		return nil, errInvalidCredentials()
	}

	return admin.Public(), nil
}

// Register creates a new administrator.
//
// Uniqueness is checked before the insert. The check and the insert are not
// atomic; a concurrent registration can still lose to the store's unique
// index, which surfaces as the same AUTH_ALREADY_REGISTERED error.
func (a *Authenticator) Register(ctx context.Context, username, password string) (*Administrator, error) {
	if username == "" || password == "" {
		return nil, errMissingFields()
	}

	ctx, span := a.tracer.Start(ctx, "auth.Register", trace.WithAttributes(attribute.String("username", username)))
	defer span.End()

	_, lookupErr := a.admins.GetByUsername(ctx, username)
	switch {
	case lookupErr == nil:
		return nil, errAlreadyRegistered(username)
	case !errors.Is(lookupErr, ErrNotFound):
		span.SetStatus(codes.Error, "lookup failed")
		return nil, oops.Code(CodeInternal).
			With("operation", "check existing administrator").
			Wrap(lookupErr)
	}

	hash, err := a.hasher.Hash(password)
	if err != nil {
		return nil, oops.Code(CodeInternal).With("operation", "hash password").Wrap(err)
	}

	admin, err := NewAdministrator(username, hash)
	if err != nil {
		return nil, oops.Code(CodeInternal).With("operation", "build administrator").Wrap(err)
	}

	if err := a.admins.Create(ctx, admin); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			return nil, errAlreadyRegistered(username)
		}
		span.SetStatus(codes.Error, "create failed")
		return nil, oops.Code(CodeInternal).
			With("operation", "create administrator").
			Wrap(err)
	}

	a.logger.InfoContext(ctx, "administrator registered", "admin_id", admin.ID.String(), "username", username)
	return admin.Public(), nil
}

// ChangePassword replaces an administrator's password after checking the
// current one.
func (a *Authenticator) ChangePassword(ctx context.Context, id ulid.ULID, current, next string) error {
	if current == "" || next == "" {
		return errMissingFields()
	}

	admin, err := a.admins.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return errInvalidCredentials()
		}
		return oops.Code(CodeInternal).With("operation", "get administrator by id").Wrap(err)
	}

	valid, err := a.hasher.Verify(current, admin.PasswordHash)
	if err != nil {
		return oops.Code(CodeInternal).With("operation", "verify password").Wrap(err)
	}
	if !valid {
		return errInvalidCredentials()
	}

	hash, err := a.hasher.Hash(next)
	if err != nil {
		return oops.Code(CodeInternal).With("operation", "hash password").Wrap(err)
	}
	if err := a.admins.UpdatePassword(ctx, id, hash); err != nil {
		return oops.Code(CodeInternal).
			With("operation", "update password").
			With("admin_id", id.String()).
			Wrap(err)
	}
	return nil
}

// Lookup returns the public view of an administrator by ID.
func (a *Authenticator) Lookup(ctx context.Context, id ulid.ULID) (*Administrator, error) {
	admin, err := a.admins.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code(CodeSessionInvalid).
				With("admin_id", id.String()).
				Errorf("administrator no longer exists")
		}
		return nil, oops.Code(CodeInternal).With("operation", "get administrator by id").Wrap(err)
	}
	return admin.Public(), nil
}

func errAlreadyRegistered(username string) error {
	return oops.Code(CodeAlreadyRegistered).
		With("username", username).
		Errorf("administrator already registered")
}
