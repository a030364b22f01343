// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 StaffRoster Contributors

// Package employee manages the employee records administrators maintain.
package employee

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// Sentinel errors returned by Repository implementations.
var (
	ErrNotFound      = errors.New("employee not found")
	ErrAlreadyExists = errors.New("employee already exists")
)

// Error codes carried by service errors.
const (
	CodeAvatarRequired = "EMPLOYEE_AVATAR_REQUIRED"
	CodeAvatarFormat   = "EMPLOYEE_AVATAR_FORMAT"
	CodeMissingFields  = "EMPLOYEE_MISSING_FIELDS"
	CodeEmailExists    = "EMPLOYEE_EMAIL_EXISTS"
	CodeNotFound       = "EMPLOYEE_NOT_FOUND"
	CodeInvalidPatch   = "EMPLOYEE_INVALID_PATCH"
	CodeInternal       = "EMPLOYEE_INTERNAL"
)

// Avatar points at an uploaded image on the media host.
type Avatar struct {
	PublicID string `json:"publicId"`
	URL      string `json:"url"`
}

// Employee is a staff record.
type Employee struct {
	ID          ulid.ULID `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	Gender      string    `json:"gender"`
	Designation string    `json:"designation"`
	Course      string    `json:"course"`
	Avatar      Avatar    `json:"avatar"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Input is the form submitted to create an employee.
type Input struct {
	Name        string
	Email       string
	Phone       string
	Gender      string
	Designation string
	Course      string
}

// complete reports whether every field is non-blank.
func (in Input) complete() bool {
	for _, v := range []string{in.Name, in.Email, in.Phone, in.Gender, in.Designation, in.Course} {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return true
}

// Patch is a partial update. Nil fields are left unchanged.
type Patch struct {
	Name        *string `json:"name,omitempty" jsonschema:"minLength=1,maxLength=200"`
	Email       *string `json:"email,omitempty" jsonschema:"format=email,maxLength=320"`
	Phone       *string `json:"phone,omitempty" jsonschema:"minLength=1,maxLength=32"`
	Gender      *string `json:"gender,omitempty" jsonschema:"minLength=1,maxLength=32"`
	Designation *string `json:"designation,omitempty" jsonschema:"minLength=1,maxLength=100"`
	Course      *string `json:"course,omitempty" jsonschema:"minLength=1,maxLength=100"`
}

// Apply copies the set fields onto e.
func (p *Patch) Apply(e *Employee) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&e.Name, p.Name)
	set(&e.Email, p.Email)
	set(&e.Phone, p.Phone)
	set(&e.Gender, p.Gender)
	set(&e.Designation, p.Designation)
	set(&e.Course, p.Course)
}

// Repository persists employees.
type Repository interface {
	Create(ctx context.Context, e *Employee) error
	List(ctx context.Context) ([]*Employee, error)
	GetByID(ctx context.Context, id ulid.ULID) (*Employee, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, e *Employee) error
	Delete(ctx context.Context, id ulid.ULID) error
}
