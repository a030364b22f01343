// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 StaffRoster Contributors

package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staffroster/staffroster/pkg/errutil"
)

// fakeMigrator records calls made by the migrate commands.
type fakeMigrator struct {
	upCalls   int
	downCalls int
	steps     []int
	forced    int
	version   uint
	dirty     bool
	pending   []uint
	applied   []uint
	err       error
	closed    bool
}

func (f *fakeMigrator) Up() error {
	f.upCalls++
	return f.err
}

func (f *fakeMigrator) Down() error {
	f.downCalls++
	return f.err
}

func (f *fakeMigrator) Steps(n int) error {
	f.steps = append(f.steps, n)
	return f.err
}

func (f *fakeMigrator) Version() (uint, bool, error) { return f.version, f.dirty, f.err }

func (f *fakeMigrator) Force(v int) error {
	f.forced = v
	return f.err
}

func (f *fakeMigrator) PendingMigrations() ([]uint, error) { return f.pending, f.err }

func (f *fakeMigrator) AppliedMigrations() ([]uint, error) { return f.applied, f.err }

func (f *fakeMigrator) Close() error {
	f.closed = true
	return nil
}

func setTestEnv(t *testing.T) {
	t.Helper()
	configFile = ""
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("STAFFROSTER_DATABASE__URL", "postgres://test@localhost/staffroster")
	t.Setenv("STAFFROSTER_AUTH__SIGNING_SECRET", "test-secret")
}

func runMigrateCmd(t *testing.T, m *fakeMigrator, args ...string) (string, error) {
	t.Helper()
	deps := &Deps{MigratorFactory: func(string) (SchemaMigrator, error) { return m, nil }}
	cmd := newRootCmd(deps)
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs(append([]string{"migrate"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestMigrateCmd(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		setup   func(*fakeMigrator)
		check   func(t *testing.T, m *fakeMigrator, out string)
		wantErr string
	}{
		{
			name: "up applies migrations",
			args: []string{"up"},
			check: func(t *testing.T, m *fakeMigrator, out string) {
				assert.Equal(t, 1, m.upCalls)
				assert.Contains(t, out, "Migrations applied")
			},
		},
		{
			name:    "down requires confirmation",
			args:    []string{"down"},
			wantErr: "MIGRATION_NOT_CONFIRMED",
			check: func(t *testing.T, m *fakeMigrator, _ string) {
				assert.Zero(t, m.downCalls)
			},
		},
		{
			name: "down with confirmation",
			args: []string{"down", "--yes"},
			check: func(t *testing.T, m *fakeMigrator, _ string) {
				assert.Equal(t, 1, m.downCalls)
				assert.Empty(t, m.steps)
			},
		},
		{
			name: "down with steps rolls back that many",
			args: []string{"down", "--steps", "1", "--yes"},
			check: func(t *testing.T, m *fakeMigrator, out string) {
				assert.Equal(t, []int{-1}, m.steps)
				assert.Zero(t, m.downCalls)
				assert.Contains(t, out, "Rolled back 1 migration(s)")
			},
		},
		{
			name:    "down with steps still requires confirmation",
			args:    []string{"down", "--steps", "1"},
			wantErr: "MIGRATION_NOT_CONFIRMED",
			check: func(t *testing.T, m *fakeMigrator, _ string) {
				assert.Empty(t, m.steps)
			},
		},
		{
			name:    "down rejects negative steps",
			args:    []string{"down", "--steps=-2", "--yes"},
			wantErr: "INVALID_STEPS",
			check: func(t *testing.T, m *fakeMigrator, _ string) {
				assert.Empty(t, m.steps)
				assert.Zero(t, m.downCalls)
			},
		},
		{
			name:  "status lists pending migrations by name",
			args:  []string{"status"},
			setup: func(m *fakeMigrator) { m.version = 1; m.applied = []uint{1}; m.pending = []uint{2} },
			check: func(t *testing.T, _ *fakeMigrator, out string) {
				assert.Contains(t, out, "Current version: 1 (clean)")
				assert.Contains(t, out, "Applied migrations:\n  000001_administrators")
				assert.Contains(t, out, "Pending migrations:\n  000002_employees")
			},
		},
		{
			name:  "status up to date",
			args:  []string{"status"},
			setup: func(m *fakeMigrator) { m.version = 2; m.dirty = true },
			check: func(t *testing.T, _ *fakeMigrator, out string) {
				assert.Contains(t, out, "(dirty)")
				assert.Contains(t, out, "No pending migrations")
			},
		},
		{
			name: "force sets version",
			args: []string{"force", "1"},
			check: func(t *testing.T, m *fakeMigrator, _ string) {
				assert.Equal(t, 1, m.forced)
			},
		},
		{
			name:    "force rejects non numbers",
			args:    []string{"force", "latest"},
			wantErr: "INVALID_VERSION",
		},
		{
			name:    "migrator errors surface",
			args:    []string{"up"},
			setup:   func(m *fakeMigrator) { m.err = errors.New("boom") },
			wantErr: "-",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setTestEnv(t)
			m := &fakeMigrator{}
			if tt.setup != nil {
				tt.setup(m)
			}

			out, err := runMigrateCmd(t, m, tt.args...)
			switch tt.wantErr {
			case "":
				require.NoError(t, err)
			case "-":
				require.Error(t, err)
			default:
				errutil.AssertErrorCode(t, err, tt.wantErr)
			}
			if tt.check != nil {
				tt.check(t, m, out)
			}
		})
	}
}

func TestMigrateCmd_RequiresDatabaseURL(t *testing.T) {
	setTestEnv(t)
	t.Setenv("STAFFROSTER_DATABASE__URL", "")

	m := &fakeMigrator{}
	_, err := runMigrateCmd(t, m, "up")
	errutil.AssertErrorCode(t, err, "CONFIG_INVALID")
	assert.Zero(t, m.upCalls)
}

func TestMigrateCmd_ClosesMigrator(t *testing.T) {
	setTestEnv(t)
	m := &fakeMigrator{}
	_, err := runMigrateCmd(t, m, "up")
	require.NoError(t, err)
	assert.True(t, m.closed)
}
