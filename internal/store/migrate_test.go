// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 StaffRoster Contributors

package store

import (
	"errors"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staffroster/staffroster/pkg/errutil"
)

// latestVersion is the highest embedded migration.
const latestVersion = 2

// fakeMigrate implements migrateIface.
type fakeMigrate struct {
	upErr, downErr, stepsErr, forceErr error
	versionVal                         uint
	versionErr                         error
	dirty                              bool
	closeSourceErr, closeDbErr         error

	steps  []int
	forced []int
}

func (m *fakeMigrate) Up() error   { return m.upErr }
func (m *fakeMigrate) Down() error { return m.downErr }
func (m *fakeMigrate) Steps(n int) error {
	m.steps = append(m.steps, n)
	return m.stepsErr
}
func (m *fakeMigrate) Version() (uint, bool, error) { return m.versionVal, m.dirty, m.versionErr }
func (m *fakeMigrate) Force(v int) error {
	m.forced = append(m.forced, v)
	return m.forceErr
}
func (m *fakeMigrate) Close() (error, error) { return m.closeSourceErr, m.closeDbErr }

func TestNewMigrator_InitFailures(t *testing.T) {
	for _, url := range []string{"invalid://url", "badscheme://localhost:5432/db"} {
		t.Run(url, func(t *testing.T) {
			_, err := NewMigrator(url)
			require.Error(t, err)
			errutil.AssertErrorCode(t, err, "MIGRATION_INIT_FAILED")
		})
	}
}

func TestMigrateURL(t *testing.T) {
	tests := map[string]string{
		"postgres://u:p@db:5432/staff":   "pgx5://u:p@db:5432/staff",
		"postgresql://u:p@db:5432/staff": "pgx5://u:p@db:5432/staff",
		"pgx5://u:p@db:5432/staff":       "pgx5://u:p@db:5432/staff",
	}
	for in, want := range tests {
		assert.Equal(t, want, migrateURL(in), in)
	}
}

func TestMigrator_NoChangeIsSuccess(t *testing.T) {
	m := &Migrator{m: &fakeMigrate{
		upErr:    migrate.ErrNoChange,
		downErr:  migrate.ErrNoChange,
		stepsErr: migrate.ErrNoChange,
	}}
	require.NoError(t, m.Up())
	require.NoError(t, m.Down())
	require.NoError(t, m.Steps(0))
}

func TestMigrator_Errors(t *testing.T) {
	boom := errors.New("database locked")
	tests := []struct {
		name string
		fake *fakeMigrate
		call func(*Migrator) error
		code string
	}{
		{"up", &fakeMigrate{upErr: boom}, (*Migrator).Up, "MIGRATION_UP_FAILED"},
		{"down", &fakeMigrate{downErr: boom}, (*Migrator).Down, "MIGRATION_DOWN_FAILED"},
		{"steps", &fakeMigrate{stepsErr: boom}, func(m *Migrator) error { return m.Steps(-1) }, "MIGRATION_STEPS_FAILED"},
		{"force", &fakeMigrate{forceErr: boom}, func(m *Migrator) error { return m.Force(1) }, "MIGRATION_FORCE_FAILED"},
		{"version", &fakeMigrate{versionErr: boom}, func(m *Migrator) error {
			_, _, err := m.Version()
			return err
		}, "MIGRATION_VERSION_FAILED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call(&Migrator{m: tt.fake})
			require.Error(t, err)
			errutil.AssertErrorCode(t, err, tt.code)
		})
	}
}

func TestMigrator_Version(t *testing.T) {
	t.Run("nil version reads as zero", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{versionErr: migrate.ErrNilVersion}}
		version, dirty, err := m.Version()
		require.NoError(t, err)
		assert.Equal(t, uint(0), version)
		assert.False(t, dirty)
	})

	t.Run("dirty state is reported", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{versionVal: 2, dirty: true}}
		version, dirty, err := m.Version()
		require.NoError(t, err)
		assert.Equal(t, uint(2), version)
		assert.True(t, dirty)
	})
}

func TestMigrator_Force(t *testing.T) {
	fake := &fakeMigrate{}
	m := &Migrator{m: fake}

	require.NoError(t, m.Force(1))
	assert.Equal(t, []int{1}, fake.forced)

	err := m.Force(-1)
	errutil.AssertErrorCode(t, err, "INVALID_VERSION")
	assert.Equal(t, []int{1}, fake.forced, "negative version never reaches the driver")
}

func TestMigrator_Close(t *testing.T) {
	tests := []struct {
		name      string
		src, db   error
		component string
	}{
		{"source", errors.New("source close failed"), nil, "source"},
		{"database", nil, errors.New("db close failed"), "database"},
		{"both", errors.New("source close failed"), errors.New("db close failed"), "both"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Migrator{m: &fakeMigrate{closeSourceErr: tt.src, closeDbErr: tt.db}}
			err := m.Close()
			require.Error(t, err)
			errutil.AssertErrorCode(t, err, "MIGRATION_CLOSE_FAILED")
			errutil.AssertErrorContext(t, err, "component", tt.component)
		})
	}

	require.NoError(t, (&Migrator{m: &fakeMigrate{}}).Close())
}

func TestMigrator_PendingAndApplied(t *testing.T) {
	tests := []struct {
		name    string
		fake    *fakeMigrate
		pending []uint
		applied []uint
	}{
		{"fresh database", &fakeMigrate{versionErr: migrate.ErrNilVersion}, []uint{1, 2}, nil},
		{"partially migrated", &fakeMigrate{versionVal: 1}, []uint{2}, []uint{1}},
		{"at latest", &fakeMigrate{versionVal: latestVersion}, nil, []uint{1, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Migrator{m: tt.fake}

			pending, err := m.PendingMigrations()
			require.NoError(t, err)
			assert.Equal(t, tt.pending, pending)

			applied, err := m.AppliedMigrations()
			require.NoError(t, err)
			assert.Equal(t, tt.applied, applied)
		})
	}

	t.Run("version error carries operation", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{versionErr: errors.New("connection lost")}}
		_, err := m.PendingMigrations()
		errutil.AssertErrorContext(t, err, "operation", "get pending migrations")
		_, err = m.AppliedMigrations()
		errutil.AssertErrorContext(t, err, "operation", "get applied migrations")
	})
}

func TestMigrationName(t *testing.T) {
	tests := map[uint]string{
		1:   "000001_administrators",
		2:   "000002_employees",
		999: "",
	}
	for version, want := range tests {
		name, err := MigrationName(version)
		require.NoError(t, err)
		assert.Equal(t, want, name)
	}
}

func TestAllMigrationVersions_ReturnsCopy(t *testing.T) {
	first, err := allMigrationVersions()
	require.NoError(t, err)
	require.Len(t, first, latestVersion)

	first[0] = 99999

	second, err := allMigrationVersions()
	require.NoError(t, err)
	assert.Equal(t, uint(1), second[0])
}
