package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const migrationsDir = "../../migrations"

func TestMigrateUpCreatesTracksTable(t *testing.T) {
	database, err := OpenDB(filepath.Join(t.TempDir(), "migrate.db"))
	require.NoError(t, err)
	defer database.Close()

	require.NoError(t, database.MigrateUp(migrationsDir))

	version, dirty, err := database.MigrateVersion(migrationsDir)
	require.NoError(t, err)
	assert.False(t, dirty)
	assert.Equal(t, uint(1), version)

	var name string
	err = database.QueryRow(
		`SELECT name FROM sqlite_master WHERE type='table' AND name='tracks'`).Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "tracks", name)

	// Up again is a no-op.
	require.NoError(t, database.MigrateUp(migrationsDir))
}

func TestMigrateDownDropsTracksTable(t *testing.T) {
	database, err := OpenDB(filepath.Join(t.TempDir(), "migrate.db"))
	require.NoError(t, err)
	defer database.Close()

	require.NoError(t, database.MigrateUp(migrationsDir))
	require.NoError(t, database.MigrateDown(migrationsDir))

	var count int
	err = database.QueryRow(
		`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='tracks'`).Scan(&count)
	require.NoError(t, err)
	assert.Zero(t, count)
}
