// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 StaffRoster Contributors

package httpapi

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/samber/oops"

	"github.com/staffroster/staffroster/internal/employee"
)

// AvatarField is the multipart field carrying an employee's avatar.
const AvatarField = "employeeAvatar"

// multipartMemory is how much of a multipart body is held in memory before
// spilling to temporary files.
const multipartMemory = 8 << 20

type employeeResponse struct {
	Success  bool               `json:"success"`
	Employee *employee.Employee `json:"employee"`
}

type updatedEmployeeResponse struct {
	Message         string             `json:"message"`
	UpdatedEmployee *employee.Employee `json:"updatedEmployee"`
}

type deletedResponse struct {
	Msg string `json:"msg"`
}

func (s *server) handleCreateEmployee(w http.ResponseWriter, r *http.Request) {
	if s.maxUpload > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload+multipartOverhead)
	}

	err := r.ParseMultipartForm(multipartMemory)
	switch {
	case err == nil:
		defer func() { _ = r.MultipartForm.RemoveAll() }()
	case errors.Is(err, http.ErrNotMultipart):
		// No file part; the service reports the missing avatar.
	default:
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.fail(w, r, oops.Code("MEDIA_TOO_LARGE").With("limit", tooLarge.Limit).Wrap(err), nil)
			return
		}
		s.fail(w, r, oops.Code(codeBadRequest).With("reason", "multipart").Wrap(err), nil)
		return
	}

	var avatar *employee.File
	f, header, err := r.FormFile(AvatarField)
	switch {
	case err == nil:
		defer func() { _ = f.Close() }()
		avatar = &employee.File{
			Name:        header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Body:        f,
		}
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		s.fail(w, r, oops.Code(codeBadRequest).With("reason", "avatar").Wrap(err), nil)
		return
	}

	in := employee.Input{
		Name:        r.FormValue("name"),
		Email:       r.FormValue("email"),
		Phone:       r.FormValue("phone"),
		Gender:      r.FormValue("gender"),
		Designation: r.FormValue("designation"),
		Course:      r.FormValue("course"),
	}
	if _, err := s.employees.Create(r.Context(), in, avatar); err != nil {
		s.fail(w, r, err, nil)
		return
	}
	s.respond(w, r, http.StatusOK, successResponse{Success: true, Message: "New Employee registered!"})
}

func (s *server) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := s.employees.List(r.Context())
	if err != nil {
		s.fail(w, r, err, nil)
		return
	}
	if employees == nil {
		employees = []*employee.Employee{}
	}
	s.respond(w, r, http.StatusOK, employees)
}

func (s *server) handleGetEmployee(w http.ResponseWriter, r *http.Request) {
	e, err := s.employees.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err, nil)
		return
	}
	s.respond(w, r, http.StatusOK, employeeResponse{Success: true, Employee: e})
}

func (s *server) handleUpdateEmployee(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxJSONBodyBytes))
	if err != nil {
		s.fail(w, r, oops.Code(codeBadRequest).With("reason", "read body").Wrap(err), nil)
		return
	}

	e, err := s.employees.Update(r.Context(), chi.URLParam(r, "id"), body)
	if err != nil {
		s.fail(w, r, err, messages{employee.CodeNotFound: "Employee not found"})
		return
	}
	s.respond(w, r, http.StatusOK, updatedEmployeeResponse{
		Message:         "Employee updated successfully",
		UpdatedEmployee: e,
	})
}

func (s *server) handleDeleteEmployee(w http.ResponseWriter, r *http.Request) {
	if err := s.employees.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err, nil)
		return
	}
	s.respond(w, r, http.StatusOK, deletedResponse{Msg: "User deleted successfully"})
}
