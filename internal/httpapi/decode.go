// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 StaffRoster Contributors

package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/samber/oops"
)

const codeBadRequest = "HTTP_BAD_REQUEST"

const formContentType = "application/x-www-form-urlencoded"

// credentials is the login and registration payload.
type credentials struct {
	UserName string `json:"userName"`
	Password string `json:"password"`
}

// readCredentials accepts JSON or a urlencoded form. An empty body decodes
// to empty credentials.
func readCredentials(w http.ResponseWriter, r *http.Request) (credentials, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
	if mediaType(r) == formContentType {
		if err := r.ParseForm(); err != nil {
			return credentials{}, oops.Code(codeBadRequest).With("reason", "form").Wrap(err)
		}
		return credentials{
			UserName: r.PostForm.Get("userName"),
			Password: r.PostForm.Get("password"),
		}, nil
	}
	var c credentials
	if err := decodeJSON(r.Body, &c); err != nil {
		return credentials{}, err
	}
	return c, nil
}

func decodeJSON(body io.Reader, dst any) error {
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return oops.Code(codeBadRequest).With("reason", "json").Wrap(err)
	}
	return nil
}

func mediaType(r *http.Request) string {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return ""
	}
	return mt
}
