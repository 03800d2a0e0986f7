package transformer

import (
	"context"
	"fmt"
	"io"

	"sparkify/internal/domain"
	"sparkify/internal/parser/json"
	"sparkify/internal/storage"
)

// SongFile loads a song-catalog file. Every record is decoded and validated
// before the first row is written, then each record yields one Song and one
// Artist row.
func SongFile(ctx context.Context, tx storage.Tx, path string, r io.Reader) (Stats, error) {
	var st Stats
	recs, err := json.DecodeSongs(path, r)
	if err != nil {
		return st, err
	}

	for _, rec := range recs {
		song := domain.Song{
			SongID:   rec.SongID,
			Title:    Normalize(rec.Title),
			ArtistID: rec.ArtistID,
			Year:     *rec.Year,
			Duration: *rec.Duration,
		}
		if err := tx.InsertSong(ctx, song); err != nil {
			return st, fmt.Errorf("song %s: %w", rec.SongID, err)
		}
		st.Songs++

		artist := domain.Artist{
			ArtistID:  rec.ArtistID,
			Name:      Normalize(rec.ArtistName),
			Location:  rec.ArtistLocation,
			Latitude:  rec.ArtistLatitude,
			Longitude: rec.ArtistLongitude,
		}
		if err := tx.InsertArtist(ctx, artist); err != nil {
			return st, fmt.Errorf("artist %s: %w", rec.ArtistID, err)
		}
		st.Artists++
	}
	return st, nil
}
