// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 StaffRoster Contributors

// Package postgres implements the auth repositories on PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/staffroster/staffroster/internal/auth"
	"github.com/staffroster/staffroster/internal/store"
)

const adminColumns = `id, username, password_hash, role, created_at, updated_at`

// AdministratorRepository implements auth.AdministratorRepository.
type AdministratorRepository struct {
	db store.DB
}

// NewAdministratorRepository creates a repository over db.
func NewAdministratorRepository(db store.DB) *AdministratorRepository {
	return &AdministratorRepository{db: db}
}

// Create inserts a new administrator. A username collision on the unique
// index returns an error wrapping auth.ErrAlreadyExists.
func (r *AdministratorRepository) Create(ctx context.Context, admin *auth.Administrator) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO administrators (`+adminColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		admin.ID.String(),
		admin.Username,
		admin.PasswordHash,
		string(admin.Role),
		admin.CreatedAt,
		admin.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return oops.Code("ADMIN_ALREADY_EXISTS").
				With("username", admin.Username).
				Wrap(auth.ErrAlreadyExists)
		}
		return oops.Code("ADMIN_CREATE_FAILED").
			With("operation", "insert administrator").
			With("username", admin.Username).
			Wrap(err)
	}
	return nil
}

// GetByID retrieves an administrator by ID.
func (r *AdministratorRepository) GetByID(ctx context.Context, id ulid.ULID) (*auth.Administrator, error) {
	row := r.db.QueryRow(ctx, `SELECT `+adminColumns+` FROM administrators WHERE id = $1`, id.String())
	admin, err := scanAdministrator(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("ADMIN_NOT_FOUND").With("id", id.String()).Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("ADMIN_GET_FAILED").
			With("operation", "get administrator by id").
			With("id", id.String()).
			Wrap(err)
	}
	return admin, nil
}

// GetByUsername retrieves an administrator by exact username.
func (r *AdministratorRepository) GetByUsername(ctx context.Context, username string) (*auth.Administrator, error) {
	row := r.db.QueryRow(ctx, `SELECT `+adminColumns+` FROM administrators WHERE username = $1`, username)
	admin, err := scanAdministrator(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("ADMIN_NOT_FOUND").With("username", username).Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("ADMIN_GET_FAILED").
			With("operation", "get administrator by username").
			With("username", username).
			Wrap(err)
	}
	return admin, nil
}

// UpdatePassword replaces the stored hash.
func (r *AdministratorRepository) UpdatePassword(ctx context.Context, id ulid.ULID, passwordHash string) error {
	result, err := r.db.Exec(ctx, `
		UPDATE administrators SET password_hash = $2, updated_at = $3
		WHERE id = $1
	`, id.String(), passwordHash, time.Now().UTC())
	if err != nil {
		return oops.Code("ADMIN_UPDATE_PASSWORD_FAILED").
			With("operation", "update password").
			With("id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("ADMIN_NOT_FOUND").With("id", id.String()).Wrap(auth.ErrNotFound)
	}
	return nil
}

// scanAdministrator scans one row. pgx.ErrNoRows is returned unwrapped.
func scanAdministrator(row pgx.Row) (*auth.Administrator, error) {
	var (
		idStr     string
		admin     auth.Administrator
		role      string
		createdAt time.Time
		updatedAt time.Time
	)
	if err := row.Scan(&idStr, &admin.Username, &admin.PasswordHash, &role, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // callers add lookup context
		}
		return nil, oops.With("operation", "scan administrator").Wrap(err)
	}

	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("ADMIN_INVALID_ID").With("id", idStr).Wrap(err)
	}
	admin.ID = id
	admin.Role = auth.Role(role)
	admin.CreatedAt = createdAt
	admin.UpdatedAt = updatedAt
	return &admin, nil
}

var _ auth.AdministratorRepository = (*AdministratorRepository)(nil)
