// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 StaffRoster Contributors

package employee

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/staffroster/staffroster/internal/media"
	"github.com/staffroster/staffroster/pkg/errutil"
)

// File is an uploaded avatar.
type File struct {
	Name        string
	ContentType string
	Body        io.Reader
}

// Service implements employee management on top of a Repository and a
// media host.
type Service struct {
	repo   Repository
	media  media.Uploader
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a Service.
func NewService(repo Repository, uploader media.Uploader, logger *slog.Logger) (*Service, error) {
	if repo == nil {
		return nil, oops.Code("EMPLOYEE_INVALID_SERVICE").Errorf("employee repository is required")
	}
	if uploader == nil {
		return nil, oops.Code("EMPLOYEE_INVALID_SERVICE").Errorf("media uploader is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, media: uploader, logger: logger, now: time.Now}, nil
}

// Create registers a new employee. Checks run in order: avatar present,
// avatar format, form complete, email unused. The avatar is uploaded last
// and removed again if the insert fails.
func (s *Service) Create(ctx context.Context, in Input, avatar *File) (*Employee, error) {
	if avatar == nil || avatar.Body == nil {
		return nil, oops.Code(CodeAvatarRequired).Errorf("employee avatar required")
	}
	if !media.Supported(avatar.ContentType) {
		return nil, oops.Code(CodeAvatarFormat).
			With("content_type", avatar.ContentType).
			Errorf("avatar format not supported")
	}
	if !in.complete() {
		return nil, oops.Code(CodeMissingFields).Errorf("all employee fields are required")
	}

	exists, err := s.repo.ExistsByEmail(ctx, in.Email)
	if err != nil {
		return nil, oops.Code(CodeInternal).With("operation", "check employee email").Wrap(err)
	}
	if exists {
		return nil, errEmailExists(in.Email)
	}

	asset, err := s.media.Upload(ctx, avatar.Name, avatar.ContentType, avatar.Body)
	if err != nil {
		return nil, oops.Code(CodeInternal).With("operation", "upload avatar").Wrap(err)
	}

	now := s.now().UTC()
	e := &Employee{
		ID:          ulid.Make(),
		Name:        in.Name,
		Email:       in.Email,
		Phone:       in.Phone,
		Gender:      in.Gender,
		Designation: in.Designation,
		Course:      in.Course,
		Avatar:      Avatar{PublicID: asset.PublicID, URL: asset.URL},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, e); err != nil {
		s.discardAvatar(ctx, asset.PublicID)
		if errors.Is(err, ErrAlreadyExists) {
			return nil, errEmailExists(in.Email)
		}
		return nil, oops.Code(CodeInternal).With("operation", "create employee").Wrap(err)
	}

	s.logger.InfoContext(ctx, "employee registered", "employee_id", e.ID.String())
	return e, nil
}

// List returns every employee, oldest first.
func (s *Service) List(ctx context.Context) ([]*Employee, error) {
	employees, err := s.repo.List(ctx)
	if err != nil {
		return nil, oops.Code(CodeInternal).With("operation", "list employees").Wrap(err)
	}
	if employees == nil {
		employees = []*Employee{}
	}
	return employees, nil
}

// Get returns one employee. Malformed and unknown IDs both yield
// EMPLOYEE_NOT_FOUND.
func (s *Service) Get(ctx context.Context, rawID string) (*Employee, error) {
	id, err := parseID(rawID)
	if err != nil {
		return nil, err
	}
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, rawID, "get employee")
	}
	return e, nil
}

// Update applies a schema-validated partial update from a raw JSON body.
func (s *Service) Update(ctx context.Context, rawID string, body []byte) (*Employee, error) {
	id, err := parseID(rawID)
	if err != nil {
		return nil, err
	}
	patch, err := DecodePatch(body)
	if err != nil {
		return nil, err
	}

	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, rawID, "get employee")
	}

	previousEmail := e.Email
	patch.Apply(e)
	if e.Email != previousEmail {
		exists, err := s.repo.ExistsByEmail(ctx, e.Email)
		if err != nil {
			return nil, oops.Code(CodeInternal).With("operation", "check employee email").Wrap(err)
		}
		if exists {
			return nil, errEmailExists(e.Email)
		}
	}
	e.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, e); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			return nil, errEmailExists(e.Email)
		}
		return nil, notFoundOr(err, rawID, "update employee")
	}
	return e, nil
}

// Delete removes an employee and, best effort, its avatar.
func (s *Service) Delete(ctx context.Context, rawID string) error {
	id, err := parseID(rawID)
	if err != nil {
		return err
	}
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return notFoundOr(err, rawID, "get employee")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return notFoundOr(err, rawID, "delete employee")
	}
	s.discardAvatar(ctx, e.Avatar.PublicID)
	s.logger.InfoContext(ctx, "employee deleted", "employee_id", id.String())
	return nil
}

func (s *Service) discardAvatar(ctx context.Context, publicID string) {
	if publicID == "" {
		return
	}
	if err := s.media.Delete(ctx, publicID); err != nil {
		errutil.LogErrorContext(ctx, s.logger, "failed to remove avatar", err)
	}
}

func parseID(raw string) (ulid.ULID, error) {
	id, err := ulid.ParseStrict(raw)
	if err != nil {
		return ulid.ULID{}, oops.Code(CodeNotFound).With("id", raw).Errorf("employee not found")
	}
	return id, nil
}

func notFoundOr(err error, rawID, operation string) error {
	if errors.Is(err, ErrNotFound) {
		return oops.Code(CodeNotFound).With("id", rawID).Errorf("employee not found")
	}
	return oops.Code(CodeInternal).With("operation", operation).With("id", rawID).Wrap(err)
}

func errEmailExists(email string) error {
	return oops.Code(CodeEmailExists).With("email", email).Errorf("employee with this email already exists")
}
