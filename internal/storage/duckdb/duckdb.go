// Package duckdb implements the DuckDB storage backend: a single-file
// analytical warehouse suited to the star-schema queries run after the load.
//
// The schema declares no foreign keys; DuckDB refuses ON CONFLICT DO UPDATE
// on a table that other tables reference, and users are upserted.
package duckdb

import (
	"context"

	// DuckDB database/sql driver, registered as "duckdb".
	_ "github.com/duckdb/duckdb-go/v2"

	"sparkify/internal/storage"
	"sparkify/internal/storage/sqldb"
)

// Dialect is the DuckDB statement table. DuckDB's round() rounds half away
// from zero.
var Dialect = storage.Dialect{
	Name: "duckdb",
	Statements: map[storage.Op]string{
		storage.OpInsertSong: `INSERT INTO songs (song_id, title, artist_id, year, duration)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (song_id) DO NOTHING`,

		storage.OpInsertArtist: `INSERT INTO artists (artist_id, name, location, latitude, longitude)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (artist_id) DO NOTHING`,

		storage.OpInsertTime: `INSERT INTO "time" (start_time, hour, day, week, month, year, weekday)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (start_time) DO NOTHING`,

		storage.OpInsertUser: `INSERT INTO users (user_id, first_name, last_name, gender, level)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (user_id) DO UPDATE SET
    first_name = excluded.first_name,
    last_name  = excluded.last_name,
    gender     = excluded.gender,
    level      = excluded.level`,

		storage.OpInsertSongPlay: `INSERT INTO songplays (start_time, user_id, level, song_id, artist_id, session_id, location, user_agent)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,

		storage.OpLookupSongArtist: `SELECT s.song_id, a.artist_id
FROM songs s
JOIN artists a ON a.artist_id = s.artist_id
WHERE s.title = ? AND a.name = ? AND round(s.duration) = ?
ORDER BY s.song_id, a.artist_id
LIMIT 1`,
	},
	Schema: []string{
		`CREATE TABLE IF NOT EXISTS songs (
    song_id   VARCHAR PRIMARY KEY,
    title     VARCHAR NOT NULL,
    artist_id VARCHAR NOT NULL,
    year      INTEGER,
    duration  DOUBLE NOT NULL
)`,
		`CREATE TABLE IF NOT EXISTS artists (
    artist_id VARCHAR PRIMARY KEY,
    name      VARCHAR NOT NULL,
    location  VARCHAR,
    latitude  DOUBLE,
    longitude DOUBLE
)`,
		`CREATE TABLE IF NOT EXISTS "time" (
    start_time TIMESTAMP PRIMARY KEY,
    hour       INTEGER NOT NULL,
    day        INTEGER NOT NULL,
    week       INTEGER NOT NULL,
    month      INTEGER NOT NULL,
    year       INTEGER NOT NULL,
    weekday    INTEGER NOT NULL
)`,
		`CREATE TABLE IF NOT EXISTS users (
    user_id    VARCHAR PRIMARY KEY,
    first_name VARCHAR,
    last_name  VARCHAR,
    gender     VARCHAR,
    level      VARCHAR NOT NULL
)`,
		`CREATE SEQUENCE IF NOT EXISTS songplays_seq START 1`,
		`CREATE TABLE IF NOT EXISTS songplays (
    songplay_id BIGINT PRIMARY KEY DEFAULT nextval('songplays_seq'),
    start_time  TIMESTAMP NOT NULL,
    user_id     VARCHAR NOT NULL,
    level       VARCHAR NOT NULL,
    song_id     VARCHAR,
    artist_id   VARCHAR,
    session_id  BIGINT NOT NULL,
    location    VARCHAR,
    user_agent  VARCHAR
)`,
	},
}

// Open opens (or creates) a DuckDB database file such as "sparkify.duckdb".
// ":memory:" gives a throwaway in-memory database.
func Open(ctx context.Context, dsn string) (*sqldb.Gateway, error) {
	return sqldb.Open(ctx, "duckdb", dsn, Dialect)
}

func init() {
	storage.Register("duckdb", func(ctx context.Context, cfg storage.Config) (storage.Gateway, error) {
		return Open(ctx, cfg.DSN)
	})
}
