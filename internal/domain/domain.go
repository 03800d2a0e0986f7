// Package domain holds the typed rows of the sparkify star schema: the
// songplays fact and the songs, artists, users and time dimensions.
//
// Rows are built by the transformer package and handed to a storage.Tx; they
// carry no behavior of their own. Pointer fields are nullable columns.
package domain

import "time"

// PageNextSong is the log "page" value that marks a song play.
const PageNextSong = "NextSong"

// Song is a row of the songs dimension. Title is normalized.
type Song struct {
	SongID   string
	Title    string
	ArtistID string
	Year     int
	Duration float64
}

// Artist is a row of the artists dimension. Name is normalized.
type Artist struct {
	ArtistID  string
	Name      string
	Location  *string
	Latitude  *float64
	Longitude *float64
}

// TimeEntry is a row of the time dimension, keyed by StartTime.
//
// Week is the ISO-8601 week number and Weekday counts from Monday=0 to
// Sunday=6.
type TimeEntry struct {
	StartTime time.Time
	Hour      int
	Day       int
	Week      int
	Month     int
	Year      int
	Weekday   int
}

// User is a row of the users dimension. Level is overwritten on every upsert.
type User struct {
	UserID    string
	FirstName *string
	LastName  *string
	Gender    *string
	Level     string
}

// SongPlay is a row of the songplays fact table. SongID and ArtistID are nil
// when the play could not be matched against the catalog.
type SongPlay struct {
	StartTime time.Time
	UserID    string
	Level     string
	SongID    *string
	ArtistID  *string
	SessionID int64
	Location  *string
	UserAgent *string
}

// Matched reports whether the play resolved to a catalog song.
func (p SongPlay) Matched() bool { return p.SongID != nil && p.ArtistID != nil }
