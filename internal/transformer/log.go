package transformer

import (
	"context"
	"fmt"
	"io"

	"sparkify/internal/domain"
	"sparkify/internal/parser/json"
	"sparkify/internal/storage"
)

// play is a NextSong event with its lookup key already normalized.
type play struct {
	row    domain.SongPlay
	title  *string
	artist *string
	length float64
}

// LogFile loads a listening-log file.
//
// Events whose page is not NextSong are dropped. The remaining events are
// validated as a whole, then written in three passes: every time row, every
// user row, and finally one songplay per event. The songplay pass resolves
// (title, artist, rounded length) against the catalog; a miss leaves both
// song_id and artist_id null.
func LogFile(ctx context.Context, tx storage.Tx, path string, r io.Reader) (Stats, error) {
	var st Stats
	events, err := json.DecodeEvents(path, r)
	if err != nil {
		return st, err
	}
	st.Events = len(events)

	var (
		times []domain.TimeEntry
		users []domain.User
		plays []play
	)
	for i := range events {
		ev := &events[i]
		if ev.Page != domain.PageNextSong {
			continue
		}
		if err := json.Validate(path, i+1, ev); err != nil {
			return st, err
		}

		te := NewTimeEntry(int64(*ev.TS))
		times = append(times, te)
		users = append(users, domain.User{
			UserID:    string(ev.UserID),
			FirstName: ev.FirstName,
			LastName:  ev.LastName,
			Gender:    ev.Gender,
			Level:     ev.Level,
		})

		p := play{row: domain.SongPlay{
			StartTime: te.StartTime,
			UserID:    string(ev.UserID),
			Level:     ev.Level,
			SessionID: *ev.SessionID,
			Location:  ev.Location,
			UserAgent: ev.UserAgent,
		}}
		if ev.Song != nil && ev.Artist != nil && ev.Length != nil {
			title, artist := Normalize(*ev.Song), Normalize(*ev.Artist)
			p.title, p.artist, p.length = &title, &artist, RoundDuration(*ev.Length)
		}
		plays = append(plays, p)
	}

	for _, te := range times {
		if err := tx.InsertTime(ctx, te); err != nil {
			return st, fmt.Errorf("time %s: %w", te.StartTime.Format("2006-01-02T15:04:05.000Z"), err)
		}
		st.Times++
	}
	for _, u := range users {
		if err := tx.InsertUser(ctx, u); err != nil {
			return st, fmt.Errorf("user %s: %w", u.UserID, err)
		}
		st.Users++
	}
	for _, p := range plays {
		row := p.row
		if p.title != nil {
			songID, artistID, found, err := tx.LookupSongArtist(ctx, *p.title, *p.artist, p.length)
			if err != nil {
				return st, fmt.Errorf("lookup %q by %q: %w", *p.title, *p.artist, err)
			}
			if found {
				row.SongID, row.ArtistID = &songID, &artistID
			}
		}
		if err := tx.InsertSongPlay(ctx, row); err != nil {
			return st, fmt.Errorf("songplay user %s session %d: %w", row.UserID, row.SessionID, err)
		}
		st.Plays++
		if row.Matched() {
			st.Matched++
		} else {
			st.Missed++
		}
	}
	return st, nil
}
