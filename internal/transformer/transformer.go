// Package transformer turns one input file into star-schema rows.
//
// SongFile handles song-catalog files and LogFile handles listening-log
// files. Both write through a storage.Tx opened by the caller, so the rows of
// a file become visible only when the caller commits.
package transformer

import (
	"context"
	"io"

	"sparkify/internal/storage"
)

// FileFunc transforms the file at path, read from r, into rows on tx.
type FileFunc func(ctx context.Context, tx storage.Tx, path string, r io.Reader) (Stats, error)

// Stats counts what a transform wrote.
type Stats struct {
	Songs   int // song rows offered to InsertSong
	Artists int // artist rows offered to InsertArtist
	Events  int // log events read, before filtering
	Times   int
	Users   int
	Plays   int // songplay rows offered to InsertSongPlay
	Matched int // plays resolved to a catalog song
	Missed  int // plays stored with null song_id and artist_id
}

// Add accumulates o into s.
func (s *Stats) Add(o Stats) {
	s.Songs += o.Songs
	s.Artists += o.Artists
	s.Events += o.Events
	s.Times += o.Times
	s.Users += o.Users
	s.Plays += o.Plays
	s.Matched += o.Matched
	s.Missed += o.Missed
}
