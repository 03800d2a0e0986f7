package storage

import "fmt"

// Op names one of the parameterized statements a Tx executes.
type Op string

const (
	OpInsertSong       Op = "insert_song"
	OpInsertArtist     Op = "insert_artist"
	OpInsertTime       Op = "insert_time"
	OpInsertUser       Op = "insert_user"
	OpInsertSongPlay   Op = "insert_songplay"
	OpLookupSongArtist Op = "lookup_song_artist"
)

// Ops lists every statement a Dialect must provide, in execution order.
var Ops = []Op{
	OpInsertSong,
	OpInsertArtist,
	OpInsertTime,
	OpInsertUser,
	OpInsertSongPlay,
	OpLookupSongArtist,
}

// Arity is the number of positional parameters each statement takes.
var Arity = map[Op]int{
	OpInsertSong:       5, // song_id, title, artist_id, year, duration
	OpInsertArtist:     5, // artist_id, name, location, latitude, longitude
	OpInsertTime:       7, // start_time, hour, day, week, month, year, weekday
	OpInsertUser:       5, // user_id, first_name, last_name, gender, level
	OpInsertSongPlay:   8, // start_time, user_id, level, song_id, artist_id, session_id, location, user_agent
	OpLookupSongArtist: 3, // title, artist_name, rounded length
}

// Dialect is the SQL a backend speaks: one statement per Op plus the DDL that
// creates the star schema. Backends build a Dialect value once and hand it to
// their gateway; nothing in the core reads SQL text.
type Dialect struct {
	Name       string
	Statements map[Op]string
	// Schema is executed statement by statement by EnsureSchema and must be
	// safe to run against an existing schema.
	Schema []string
}

// Statement returns the SQL registered for op.
func (d Dialect) Statement(op Op) (string, error) {
	s, ok := d.Statements[op]
	if !ok || s == "" {
		return "", fmt.Errorf("%s: no statement for %s", d.Name, op)
	}
	return s, nil
}

// Check reports the first Op with no statement.
func (d Dialect) Check() error {
	for _, op := range Ops {
		if _, err := d.Statement(op); err != nil {
			return err
		}
	}
	return nil
}
