// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 StaffRoster Contributors

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_WritesPatchSchema(t *testing.T) {
	out := filepath.Join(t.TempDir(), "schemas", "employee-patch.schema.json")
	var stdout bytes.Buffer

	require.NoError(t, run(out, &stdout))
	assert.Contains(t, stdout.String(), out)

	data, err := os.ReadFile(out)
	require.NoError(t, err)

	var schema struct {
		Title                string                     `json:"title"`
		AdditionalProperties *bool                      `json:"additionalProperties"`
		Properties           map[string]json.RawMessage `json:"properties"`
	}
	require.NoError(t, json.Unmarshal(data, &schema))
	assert.Equal(t, "Employee update", schema.Title)
	require.NotNil(t, schema.AdditionalProperties)
	assert.False(t, *schema.AdditionalProperties)
	for _, field := range []string{"name", "email", "phone", "gender", "designation", "course"} {
		assert.Contains(t, schema.Properties, field)
	}
}
