// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 StaffRoster Contributors

// Package postgres implements employee.Repository on PostgreSQL.
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

	"github.com/staffroster/staffroster/internal/employee"
	"github.com/staffroster/staffroster/internal/store"
)

const employeeColumns = `id, name, email, phone, gender, designation, course,
	avatar_public_id, avatar_url, created_at, updated_at`

// EmployeeRepository implements employee.Repository.
type EmployeeRepository struct {
	db store.DB
}

// NewEmployeeRepository creates a repository over db.
func NewEmployeeRepository(db store.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

// Create inserts e.
func (r *EmployeeRepository) Create(ctx context.Context, e *employee.Employee) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO employees (`+employeeColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		e.ID.String(), e.Name, e.Email, e.Phone, e.Gender, e.Designation, e.Course,
		e.Avatar.PublicID, e.Avatar.URL, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return mapWriteError(err, "insert employee", e)
	}
	return nil
}

// List returns all employees ordered by creation time.
func (r *EmployeeRepository) List(ctx context.Context) ([]*employee.Employee, error) {
	rows, err := r.db.Query(ctx, `SELECT `+employeeColumns+` FROM employees ORDER BY created_at, id`)
	if err != nil {
		return nil, oops.Code("EMPLOYEE_LIST_FAILED").With("operation", "list employees").Wrap(err)
	}
	defer rows.Close()

	var out []*employee.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("EMPLOYEE_LIST_FAILED").With("operation", "iterate employees").Wrap(err)
	}
	return out, nil
}

// GetByID retrieves one employee.
func (r *EmployeeRepository) GetByID(ctx context.Context, id ulid.ULID) (*employee.Employee, error) {
	row := r.db.QueryRow(ctx, `SELECT `+employeeColumns+` FROM employees WHERE id = $1`, id.String())
	e, err := scanEmployee(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("EMPLOYEE_ROW_MISSING").With("id", id.String()).Wrap(employee.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("EMPLOYEE_GET_FAILED").With("id", id.String()).Wrap(err)
	}
	return e, nil
}

// ExistsByEmail reports whether any employee uses email.
func (r *EmployeeRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM employees WHERE email = $1)`, email).Scan(&exists)
	if err != nil {
		return false, oops.Code("EMPLOYEE_LOOKUP_FAILED").With("operation", "check email").Wrap(err)
	}
	return exists, nil
}

// Update writes every mutable column of e.
func (r *EmployeeRepository) Update(ctx context.Context, e *employee.Employee) error {
	result, err := r.db.Exec(ctx, `
		UPDATE employees SET
			name = $2,
			email = $3,
			phone = $4,
			gender = $5,
			designation = $6,
			course = $7,
			avatar_public_id = $8,
			avatar_url = $9,
			updated_at = $10
		WHERE id = $1
	`,
		e.ID.String(), e.Name, e.Email, e.Phone, e.Gender, e.Designation, e.Course,
		e.Avatar.PublicID, e.Avatar.URL, e.UpdatedAt,
	)
	if err != nil {
		return mapWriteError(err, "update employee", e)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("EMPLOYEE_ROW_MISSING").With("id", e.ID.String()).Wrap(employee.ErrNotFound)
	}
	return nil
}

// Delete removes one employee.
func (r *EmployeeRepository) Delete(ctx context.Context, id ulid.ULID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM employees WHERE id = $1`, id.String())
	if err != nil {
		return oops.Code("EMPLOYEE_DELETE_FAILED").With("id", id.String()).Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("EMPLOYEE_ROW_MISSING").With("id", id.String()).Wrap(employee.ErrNotFound)
	}
	return nil
}

func mapWriteError(err error, operation string, e *employee.Employee) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return oops.Code("EMPLOYEE_ROW_EXISTS").
			With("email", e.Email).
			With("constraint", pgErr.ConstraintName).
			Wrap(employee.ErrAlreadyExists)
	}
	return oops.Code("EMPLOYEE_WRITE_FAILED").
		With("operation", operation).
		With("id", e.ID.String()).
		Wrap(err)
}

func scanEmployee(row pgx.Row) (*employee.Employee, error) {
	var (
		e         employee.Employee
		idStr     string
		createdAt time.Time
		updatedAt time.Time
	)
	err := row.Scan(&idStr, &e.Name, &e.Email, &e.Phone, &e.Gender, &e.Designation, &e.Course,
		&e.Avatar.PublicID, &e.Avatar.URL, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // callers add lookup context
		}
		return nil, oops.Code("EMPLOYEE_SCAN_FAILED").Wrap(err)
	}
	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("EMPLOYEE_INVALID_ID").With("id", idStr).Wrap(err)
	}
	e.ID = id
	e.CreatedAt = createdAt
	e.UpdatedAt = updatedAt
	return &e, nil
}

var _ employee.Repository = (*EmployeeRepository)(nil)
