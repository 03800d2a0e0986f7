package transformer

import (
	"context"
	"errors"
	"fmt"

	"sparkify/internal/domain"
)

// lookupKey is the normalized join key a fakeTx resolves.
type lookupKey struct {
	title, artist string
	length        float64
}

// fakeTx records every row it is handed and resolves lookups from a fixed
// catalog. failOn makes the named method return an error.
type fakeTx struct {
	songs   []domain.Song
	artists []domain.Artist
	times   []domain.TimeEntry
	users   []domain.User
	plays   []domain.SongPlay
	lookups []lookupKey
	calls   []string

	catalog map[lookupKey][2]string
	failOn  string
}

func (f *fakeTx) fail(name string) error {
	f.calls = append(f.calls, name)
	if f.failOn == name {
		return errors.New("fake: " + name + " rejected")
	}
	return nil
}

func (f *fakeTx) InsertSong(ctx context.Context, s domain.Song) error {
	if err := f.fail("InsertSong"); err != nil {
		return err
	}
	f.songs = append(f.songs, s)
	return nil
}

func (f *fakeTx) InsertArtist(ctx context.Context, a domain.Artist) error {
	if err := f.fail("InsertArtist"); err != nil {
		return err
	}
	f.artists = append(f.artists, a)
	return nil
}

func (f *fakeTx) InsertTime(ctx context.Context, t domain.TimeEntry) error {
	if err := f.fail("InsertTime"); err != nil {
		return err
	}
	f.times = append(f.times, t)
	return nil
}

func (f *fakeTx) InsertUser(ctx context.Context, u domain.User) error {
	if err := f.fail("InsertUser"); err != nil {
		return err
	}
	f.users = append(f.users, u)
	return nil
}

func (f *fakeTx) InsertSongPlay(ctx context.Context, p domain.SongPlay) error {
	if err := f.fail("InsertSongPlay"); err != nil {
		return err
	}
	f.plays = append(f.plays, p)
	return nil
}

func (f *fakeTx) LookupSongArtist(ctx context.Context, title, artist string, length float64) (string, string, bool, error) {
	if err := f.fail("LookupSongArtist"); err != nil {
		return "", "", false, err
	}
	k := lookupKey{title, artist, length}
	f.lookups = append(f.lookups, k)
	ids, ok := f.catalog[k]
	return ids[0], ids[1], ok, nil
}

func (f *fakeTx) Commit(ctx context.Context) error   { return fmt.Errorf("fakeTx: Commit not expected") }
func (f *fakeTx) Rollback(ctx context.Context) error { return fmt.Errorf("fakeTx: Rollback not expected") }
