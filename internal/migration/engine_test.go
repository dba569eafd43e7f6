package migration

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A single connection keeps every session on the same in-memory database.
	sqlDB.SetMaxOpenConns(1)

	return db
}

func TestRunnerAppliesInOrderAndRecordsWatermark(t *testing.T) {
	db := openTestDB(t)

	var applied []int
	runner := NewRunner(db, []Migration{
		{Version: 2, Name: "second", Run: func(tx *gorm.DB) error {
			applied = append(applied, 2)
			return nil
		}},
		{Version: 1, Name: "first", Run: func(tx *gorm.DB) error {
			applied = append(applied, 1)
			return nil
		}},
	})

	require.NoError(t, runner.Up())
	assert.Equal(t, []int{1, 2}, applied, "migrations run in version order regardless of registration order")

	version, err := runner.AppliedVersion()
	require.NoError(t, err)
	assert.Equal(t, 2, version)

	pending, err := runner.Pending()
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestRunnerSkipsAppliedVersions(t *testing.T) {
	db := openTestDB(t)

	runs := 0
	migrations := []Migration{
		{Version: 1, Name: "only", Run: func(tx *gorm.DB) error {
			runs++
			return nil
		}},
	}

	require.NoError(t, NewRunner(db, migrations).Up())
	require.NoError(t, NewRunner(db, migrations).Up())
	assert.Equal(t, 1, runs, "an applied version is never re-run")
}

func TestRunnerFailedMigrationLeavesNoLedgerEntry(t *testing.T) {
	db := openTestDB(t)

	boom := errors.New("boom")
	migrations := []Migration{
		{Version: 1, Name: "ok", Run: func(tx *gorm.DB) error { return nil }},
		{Version: 2, Name: "broken", Run: func(tx *gorm.DB) error { return boom }},
	}

	err := NewRunner(db, migrations).Up()
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	runner := NewRunner(db, migrations)
	version, err := runner.AppliedVersion()
	require.NoError(t, err)
	assert.Equal(t, 1, version, "the failed version is not recorded")

	pending, err := runner.Pending()
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, 2, pending[0].Version)
}

func TestAppliedVersionOnEmptyDatabase(t *testing.T) {
	db := openTestDB(t)

	version, err := NewRunner(db, nil).AppliedVersion()
	require.NoError(t, err)
	assert.Zero(t, version)
}
