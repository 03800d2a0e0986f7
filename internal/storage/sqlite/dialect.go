package sqlite

import "sparkify/internal/storage"

// Dialect is the SQLite statement table. Upserts use ON CONFLICT, which
// needs SQLite 3.24 or newer.
var Dialect = storage.Dialect{
	Name: "sqlite",
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

		// round() in SQLite rounds half away from zero, like math.Round.
		storage.OpLookupSongArtist: `SELECT s.song_id, a.artist_id
FROM songs s
JOIN artists a ON a.artist_id = s.artist_id
WHERE s.title = ? AND a.name = ? AND round(s.duration) = ?
ORDER BY s.song_id, a.artist_id
LIMIT 1`,
	},
	Schema: []string{
		`CREATE TABLE IF NOT EXISTS songs (
    song_id   TEXT PRIMARY KEY,
    title     TEXT NOT NULL,
    artist_id TEXT NOT NULL,
    year      INTEGER,
    duration  REAL NOT NULL
)`,
		`CREATE TABLE IF NOT EXISTS artists (
    artist_id TEXT PRIMARY KEY,
    name      TEXT NOT NULL,
    location  TEXT,
    latitude  REAL,
    longitude REAL
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
    user_id    TEXT PRIMARY KEY,
    first_name TEXT,
    last_name  TEXT,
    gender     TEXT,
    level      TEXT NOT NULL
)`,
		`CREATE TABLE IF NOT EXISTS songplays (
    songplay_id INTEGER PRIMARY KEY AUTOINCREMENT,
    start_time  TIMESTAMP NOT NULL REFERENCES "time" (start_time),
    user_id     TEXT NOT NULL REFERENCES users (user_id),
    level       TEXT NOT NULL,
    song_id     TEXT REFERENCES songs (song_id),
    artist_id   TEXT REFERENCES artists (artist_id),
    session_id  INTEGER NOT NULL,
    location    TEXT,
    user_agent  TEXT
)`,
		`CREATE INDEX IF NOT EXISTS songs_title_idx ON songs (title)`,
		`CREATE INDEX IF NOT EXISTS artists_name_idx ON artists (name)`,
	},
}
