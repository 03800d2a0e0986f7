package postgres

import "sparkify/internal/storage"

// Dialect is the Postgres statement table. The lookup rounds through numeric
// because round(double precision) rounds half to even while round(numeric)
// rounds half away from zero, the rule the transformer uses.
var Dialect = storage.Dialect{
	Name: "postgres",
	Statements: map[storage.Op]string{
		storage.OpInsertSong: `INSERT INTO songs (song_id, title, artist_id, year, duration)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (song_id) DO NOTHING`,

		storage.OpInsertArtist: `INSERT INTO artists (artist_id, name, location, latitude, longitude)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (artist_id) DO NOTHING`,

		storage.OpInsertTime: `INSERT INTO "time" (start_time, hour, day, week, month, year, weekday)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (start_time) DO NOTHING`,

		storage.OpInsertUser: `INSERT INTO users (user_id, first_name, last_name, gender, level)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (user_id) DO UPDATE SET
    first_name = EXCLUDED.first_name,
    last_name  = EXCLUDED.last_name,
    gender     = EXCLUDED.gender,
    level      = EXCLUDED.level`,

		storage.OpInsertSongPlay: `INSERT INTO songplays (start_time, user_id, level, song_id, artist_id, session_id, location, user_agent)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,

		storage.OpLookupSongArtist: `SELECT s.song_id, a.artist_id
FROM songs s
JOIN artists a ON a.artist_id = s.artist_id
WHERE s.title = $1 AND a.name = $2 AND round(s.duration::numeric) = round($3::numeric)
ORDER BY s.song_id, a.artist_id
LIMIT 1`,
	},
	Schema: []string{
		`CREATE TABLE IF NOT EXISTS songs (
    song_id   VARCHAR PRIMARY KEY,
    title     VARCHAR NOT NULL,
    artist_id VARCHAR NOT NULL,
    year      INT,
    duration  DOUBLE PRECISION NOT NULL
)`,
		`CREATE TABLE IF NOT EXISTS artists (
    artist_id VARCHAR PRIMARY KEY,
    name      VARCHAR NOT NULL,
    location  VARCHAR,
    latitude  DOUBLE PRECISION,
    longitude DOUBLE PRECISION
)`,
		`CREATE TABLE IF NOT EXISTS "time" (
    start_time TIMESTAMP PRIMARY KEY,
    hour       INT NOT NULL,
    day        INT NOT NULL,
    week       INT NOT NULL,
    month      INT NOT NULL,
    year       INT NOT NULL,
    weekday    INT NOT NULL
)`,
		`CREATE TABLE IF NOT EXISTS users (
    user_id    VARCHAR PRIMARY KEY,
    first_name VARCHAR,
    last_name  VARCHAR,
    gender     VARCHAR,
    level      VARCHAR NOT NULL
)`,
		`CREATE TABLE IF NOT EXISTS songplays (
    songplay_id SERIAL PRIMARY KEY,
    start_time  TIMESTAMP NOT NULL REFERENCES "time" (start_time),
    user_id     VARCHAR NOT NULL REFERENCES users (user_id),
    level       VARCHAR NOT NULL,
    song_id     VARCHAR REFERENCES songs (song_id),
    artist_id   VARCHAR REFERENCES artists (artist_id),
    session_id  BIGINT NOT NULL,
    location    VARCHAR,
    user_agent  VARCHAR
)`,
		`CREATE INDEX IF NOT EXISTS songs_title_idx ON songs (title)`,
		`CREATE INDEX IF NOT EXISTS artists_name_idx ON artists (name)`,
	},
}
