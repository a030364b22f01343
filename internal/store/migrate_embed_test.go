// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 StaffRoster Contributors

package store

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsFS_EmbeddedFiles(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	require.NoError(t, err)
	require.Len(t, entries, 2*latestVersion, "every migration has an up and a down file")

	pattern := regexp.MustCompile(`^\d{6}_\w+\.(up|down)\.sql$`)
	for _, entry := range entries {
		assert.True(t, pattern.MatchString(entry.Name()), "unexpected migration file %s", entry.Name())
	}
}

func TestMigrationsFS_UniqueIndexes(t *testing.T) {
	for file, index := range map[string]string{
		"migrations/000001_administrators.up.sql": "administrators_username_key",
		"migrations/000002_employees.up.sql":      "employees_email_key",
	} {
		body, err := migrationsFS.ReadFile(file)
		require.NoError(t, err)
		sql := string(body)
		assert.True(t, strings.Contains(sql, "CREATE UNIQUE INDEX") && strings.Contains(sql, index),
			"%s should declare %s", file, index)
	}
}
