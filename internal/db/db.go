// Package db is the sqlite persistence layer for processed tracks.
package db

import (
	"database/sql"

	_ "modernc.org/sqlite"

	"github.com/banshee-data/track.report/internal/timeutil"
)

type DB struct {
	*sql.DB
	clock timeutil.Clock
}

// NewDB opens (creating if necessary) the sqlite database at path and
// ensures the tracks schema exists.
func NewDB(path string) (*DB, error) {
	db, err := OpenDB(path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS tracks (
			track_id    TEXT PRIMARY KEY,
			name        TEXT NOT NULL,
			file_hash   TEXT NOT NULL UNIQUE,
			gpx_data    BLOB NOT NULL,
			waypoints   TEXT NOT NULL,
			metadata    TEXT NOT NULL,
			statistics  TEXT NOT NULL,
			config      TEXT NOT NULL,
			created_at  TIMESTAMP NOT NULL,
			updated_at  TIMESTAMP NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_tracks_created_at ON tracks (created_at);
	`)
	if err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// OpenDB opens the database without touching the schema. The migrate
// subcommand uses this so migrations alone manage the tables.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	return &DB{DB: db, clock: timeutil.RealClock{}}, nil
}

// SetClock swaps the clock used for row timestamps. Tests use this to
// pin created_at/updated_at.
func (db *DB) SetClock(c timeutil.Clock) {
	db.clock = c
}
