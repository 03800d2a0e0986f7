// Package mysql implements the MySQL storage backend using
// go-sql-driver/mysql. Upserts use ON DUPLICATE KEY UPDATE; a self-assignment
// of the key column turns the statement into an insert-or-ignore that still
// reports foreign-key and type errors, unlike INSERT IGNORE.
package mysql

import (
	"context"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"

	"sparkify/internal/storage"
	"sparkify/internal/storage/sqldb"
)

// Dialect is the MySQL statement table.
var Dialect = storage.Dialect{
	Name: "mysql",
	Statements: map[storage.Op]string{
		storage.OpInsertSong: "INSERT INTO songs (song_id, title, artist_id, year, duration)\n" +
			"VALUES (?, ?, ?, ?, ?)\n" +
			"ON DUPLICATE KEY UPDATE song_id = song_id",

		storage.OpInsertArtist: "INSERT INTO artists (artist_id, name, location, latitude, longitude)\n" +
			"VALUES (?, ?, ?, ?, ?)\n" +
			"ON DUPLICATE KEY UPDATE artist_id = artist_id",

		storage.OpInsertTime: "INSERT INTO `time` (start_time, hour, day, week, month, year, weekday)\n" +
			"VALUES (?, ?, ?, ?, ?, ?, ?)\n" +
			"ON DUPLICATE KEY UPDATE start_time = start_time",

		storage.OpInsertUser: "INSERT INTO users (user_id, first_name, last_name, gender, level)\n" +
			"VALUES (?, ?, ?, ?, ?)\n" +
			"ON DUPLICATE KEY UPDATE\n" +
			"    first_name = VALUES(first_name),\n" +
			"    last_name  = VALUES(last_name),\n" +
			"    gender     = VALUES(gender),\n" +
			"    level      = VALUES(level)",

		storage.OpInsertSongPlay: "INSERT INTO songplays (start_time, user_id, level, song_id, artist_id, session_id, location, user_agent)\n" +
			"VALUES (?, ?, ?, ?, ?, ?, ?, ?)",

		// ROUND on DOUBLE follows the C library (usually half-even); on
		// DECIMAL it rounds half away from zero.
		storage.OpLookupSongArtist: "SELECT s.song_id, a.artist_id\n" +
			"FROM songs s\n" +
			"JOIN artists a ON a.artist_id = s.artist_id\n" +
			"WHERE s.title = ? AND a.name = ? AND ROUND(CAST(s.duration AS DECIMAL(12, 5))) = ?\n" +
			"ORDER BY s.song_id, a.artist_id\n" +
			"LIMIT 1",
	},
	Schema: []string{
		`CREATE TABLE IF NOT EXISTS songs (
    song_id   VARCHAR(64)  NOT NULL PRIMARY KEY,
    title     VARCHAR(512) NOT NULL,
    artist_id VARCHAR(64)  NOT NULL,
    year      INT,
    duration  DOUBLE       NOT NULL,
    INDEX songs_title_idx (title)
) CHARACTER SET utf8mb4 COLLATE utf8mb4_bin`,
		`CREATE TABLE IF NOT EXISTS artists (
    artist_id VARCHAR(64)  NOT NULL PRIMARY KEY,
    name      VARCHAR(512) NOT NULL,
    location  VARCHAR(512),
    latitude  DOUBLE,
    longitude DOUBLE,
    INDEX artists_name_idx (name)
) CHARACTER SET utf8mb4 COLLATE utf8mb4_bin`,
		"CREATE TABLE IF NOT EXISTS `time` (\n" +
			"    start_time DATETIME(3) NOT NULL PRIMARY KEY,\n" +
			"    hour       INT NOT NULL,\n" +
			"    day        INT NOT NULL,\n" +
			"    week       INT NOT NULL,\n" +
			"    month      INT NOT NULL,\n" +
			"    year       INT NOT NULL,\n" +
			"    weekday    INT NOT NULL\n" +
			")",
		`CREATE TABLE IF NOT EXISTS users (
    user_id    VARCHAR(64) NOT NULL PRIMARY KEY,
    first_name VARCHAR(255),
    last_name  VARCHAR(255),
    gender     VARCHAR(16),
    level      VARCHAR(16) NOT NULL
) CHARACTER SET utf8mb4 COLLATE utf8mb4_bin`,
		"CREATE TABLE IF NOT EXISTS songplays (\n" +
			"    songplay_id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,\n" +
			"    start_time  DATETIME(3) NOT NULL,\n" +
			"    user_id     VARCHAR(64) NOT NULL,\n" +
			"    level       VARCHAR(16) NOT NULL,\n" +
			"    song_id     VARCHAR(64),\n" +
			"    artist_id   VARCHAR(64),\n" +
			"    session_id  BIGINT NOT NULL,\n" +
			"    location    VARCHAR(512),\n" +
			"    user_agent  TEXT,\n" +
			"    FOREIGN KEY (start_time) REFERENCES `time` (start_time),\n" +
			"    FOREIGN KEY (user_id) REFERENCES users (user_id),\n" +
			"    FOREIGN KEY (song_id) REFERENCES songs (song_id),\n" +
			"    FOREIGN KEY (artist_id) REFERENCES artists (artist_id)\n" +
			") CHARACTER SET utf8mb4 COLLATE utf8mb4_bin",
	},
}

// Open opens a MySQL warehouse. DSN uses the driver's format, e.g.
//
//	student:student@tcp(127.0.0.1:3306)/sparkifydb
//
// Timestamps are written in UTC regardless of the DSN's loc setting.
func Open(ctx context.Context, dsn string) (*sqldb.Gateway, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("mysql dsn: %w", err)
	}
	cfg.Loc = time.UTC
	return sqldb.Open(ctx, "mysql", cfg.FormatDSN(), Dialect)
}

func init() {
	storage.Register("mysql", func(ctx context.Context, cfg storage.Config) (storage.Gateway, error) {
		return Open(ctx, cfg.DSN)
	})
}
