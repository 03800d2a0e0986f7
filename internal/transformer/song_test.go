package transformer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"sparkify/internal/parser/json"
)

func TestSongFile_NormalizesAndEmitsBothRows(t *testing.T) {
	t.Parallel()

	const in = `{"num_songs":1,"artist_id":"A1","artist_latitude":1.0,"artist_longitude":2.0,"artist_location":"NY","artist_name":"  World ","song_id":"S1","title":"  Test Song  ","duration":180.5,"year":2000}`
	tx := &fakeTx{}
	st, err := SongFile(context.Background(), tx, "s.json", strings.NewReader(in))
	if err != nil {
		t.Fatalf("SongFile error: %v", err)
	}
	if st.Songs != 1 || st.Artists != 1 {
		t.Fatalf("stats = %+v", st)
	}

	s := tx.songs[0]
	if s.SongID != "S1" || s.Title != "test song" || s.ArtistID != "A1" || s.Year != 2000 || s.Duration != 180.5 {
		t.Fatalf("song = %+v", s)
	}
	a := tx.artists[0]
	if a.ArtistID != "A1" || a.Name != "world" || *a.Location != "NY" || *a.Latitude != 1.0 || *a.Longitude != 2.0 {
		t.Fatalf("artist = %+v", a)
	}
	if strings.Join(tx.calls, ",") != "InsertSong,InsertArtist" {
		t.Fatalf("calls = %v", tx.calls)
	}
}

func TestSongFile_InvalidRecordWritesNothing(t *testing.T) {
	t.Parallel()

	in := `{"song_id":"S1","title":"a","artist_id":"A1","artist_name":"x","year":1,"duration":1}` + "\n" +
		`{"song_id":"S2","title":"b","artist_id":"A1","artist_name":"x","year":1}`
	tx := &fakeTx{}
	_, err := SongFile(context.Background(), tx, "s.json", strings.NewReader(in))

	var pe *json.ParseError
	if !errors.As(err, &pe) || pe.Record != 2 {
		t.Fatalf("expected ParseError at record 2, got %v", err)
	}
	if len(tx.calls) != 0 {
		t.Fatalf("expected no writes, got %v", tx.calls)
	}
}

func TestSongFile_GatewayError(t *testing.T) {
	t.Parallel()

	const in = `{"song_id":"S1","title":"a","artist_id":"A1","artist_name":"x","year":1,"duration":1}`
	tx := &fakeTx{failOn: "InsertArtist"}
	st, err := SongFile(context.Background(), tx, "s.json", strings.NewReader(in))
	if err == nil || !strings.Contains(err.Error(), "artist A1") {
		t.Fatalf("err = %v", err)
	}
	if st.Songs != 1 || st.Artists != 0 {
		t.Fatalf("stats = %+v", st)
	}
}
