// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 StaffRoster Contributors

// Package media stores uploaded employee avatars.
package media

import (
	"context"
	"io"
)

// Asset identifies a stored file.
type Asset struct {
	PublicID string
	URL      string
}

// Uploader is a media host.
type Uploader interface {
	// Upload stores r and returns where it can be fetched.
	Upload(ctx context.Context, name, contentType string, r io.Reader) (Asset, error)
	// Delete removes a stored file. Deleting a missing file is not an error.
	Delete(ctx context.Context, publicID string) error
}

// Extensions for the image formats the media host accepts.
var extensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
}

// Supported reports whether contentType is an accepted image format.
func Supported(contentType string) bool {
	_, ok := extensions[contentType]
	return ok
}
