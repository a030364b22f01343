// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 StaffRoster Contributors

package media

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/staffroster/staffroster/internal/xdg"
)

// LocalUploader stores files in a directory and serves them over HTTP.
type LocalUploader struct {
	dir      string
	baseURL  string
	maxBytes int64
}

// NewLocalUploader creates dir if needed. baseURL is the public prefix the
// files are served under, e.g. "/media".
func NewLocalUploader(dir, baseURL string, maxBytes int64) (*LocalUploader, error) {
	if dir == "" {
		return nil, oops.Code("MEDIA_INVALID_CONFIG").Errorf("media directory is required")
	}
	if maxBytes <= 0 {
		return nil, oops.Code("MEDIA_INVALID_CONFIG").Errorf("max upload size must be positive")
	}
	if err := xdg.EnsureDir(dir); err != nil {
		return nil, oops.Code("MEDIA_INVALID_CONFIG").With("dir", dir).Wrap(err)
	}
	return &LocalUploader{
		dir:      dir,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		maxBytes: maxBytes,
	}, nil
}

// Upload writes r to a new file named by a fresh ULID. The write goes to a
// temporary file first so readers never see a partial image.
func (u *LocalUploader) Upload(ctx context.Context, name, contentType string, r io.Reader) (Asset, error) {
	ext, ok := extensions[contentType]
	if !ok {
		return Asset{}, oops.Code("MEDIA_UNSUPPORTED_TYPE").
			With("content_type", contentType).
			Errorf("unsupported media type %q", contentType)
	}
	if err := ctx.Err(); err != nil {
		return Asset{}, oops.Code("MEDIA_UPLOAD_FAILED").Wrap(err)
	}

	publicID := strings.ToLower(ulid.Make().String()) + ext
	tmp, err := os.CreateTemp(u.dir, ".upload-*")
	if err != nil {
		return Asset{}, oops.Code("MEDIA_UPLOAD_FAILED").With("operation", "create temp file").Wrap(err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	n, err := io.Copy(tmp, io.LimitReader(r, u.maxBytes+1))
	closeErr := tmp.Close()
	if err != nil {
		return Asset{}, oops.Code("MEDIA_UPLOAD_FAILED").With("operation", "write file").With("name", name).Wrap(err)
	}
	if closeErr != nil {
		return Asset{}, oops.Code("MEDIA_UPLOAD_FAILED").With("operation", "close file").Wrap(closeErr)
	}
	if n > u.maxBytes {
		return Asset{}, oops.Code("MEDIA_TOO_LARGE").
			With("name", name).
			With("max_bytes", u.maxBytes).
			Errorf("upload exceeds %d bytes", u.maxBytes)
	}

	if err := os.Rename(tmp.Name(), filepath.Join(u.dir, publicID)); err != nil {
		return Asset{}, oops.Code("MEDIA_UPLOAD_FAILED").With("operation", "rename file").Wrap(err)
	}

	return Asset{PublicID: publicID, URL: u.baseURL + "/" + publicID}, nil
}

// Delete removes the file for publicID.
func (u *LocalUploader) Delete(_ context.Context, publicID string) error {
	if !validPublicID(publicID) {
		return oops.Code("MEDIA_INVALID_ID").With("public_id", publicID).Errorf("invalid public id")
	}
	err := os.Remove(filepath.Join(u.dir, publicID))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return oops.Code("MEDIA_DELETE_FAILED").With("public_id", publicID).Wrap(err)
	}
	return nil
}

// Handler serves stored files read-only. Directory listings and dot files
// are not served. Mount it with http.StripPrefix(baseURL, ...).
func (u *LocalUploader) Handler() http.Handler {
	files := http.FileServer(http.Dir(u.dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
		if !validPublicID(name) {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("X-Content-Type-Options", "nosniff")
		files.ServeHTTP(w, r)
	})
}

func validPublicID(id string) bool {
	return id != "" && !strings.HasPrefix(id, ".") && !strings.ContainsAny(id, `/\`) && id == filepath.Base(id)
}

var _ Uploader = (*LocalUploader)(nil)
