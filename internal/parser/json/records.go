package json

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

// SongRecord is one song-catalog entry.
//
// Year and Duration are pointers so that a legitimate zero (year 0 is common
// in the catalog) can be told apart from an absent field.
type SongRecord struct {
	NumSongs        int      `json:"num_songs"`
	SongID          string   `json:"song_id" validate:"required"`
	Title           string   `json:"title" validate:"required"`
	ArtistID        string   `json:"artist_id" validate:"required"`
	ArtistName      string   `json:"artist_name" validate:"required"`
	ArtistLocation  *string  `json:"artist_location"`
	ArtistLatitude  *float64 `json:"artist_latitude"`
	ArtistLongitude *float64 `json:"artist_longitude"`
	Year            *int     `json:"year" validate:"required"`
	Duration        *float64 `json:"duration" validate:"required"`
}

// LogEvent is one listening-log event. Only the fields the ETL job reads are
// declared; the rest of the event is ignored.
//
// Validation tags apply to NextSong events only; callers filter by Page
// before calling Validate.
type LogEvent struct {
	Page      string       `json:"page"`
	TS        *EpochMillis `json:"ts" validate:"required"`
	UserID    FlexString   `json:"userId" validate:"required"`
	FirstName *string      `json:"firstName"`
	LastName  *string      `json:"lastName"`
	Gender    *string      `json:"gender"`
	Level     string       `json:"level" validate:"required"`
	Song      *string      `json:"song"`
	Artist    *string      `json:"artist"`
	Length    *float64     `json:"length"`
	SessionID *int64       `json:"sessionId" validate:"required"`
	Location  *string      `json:"location"`
	UserAgent *string      `json:"userAgent"`
}

// FlexString accepts a JSON string or number. The event logs carry userId as
// a string, but numeric ids show up in older exports. null decodes as "".
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*f = ""
		return nil
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("want string or number, got %s", b)
	}
	*f = FlexString(n.String())
	return nil
}

// EpochMillis is an epoch timestamp in milliseconds. Exports that passed
// through a float column write it as 1541990400000.0; any fraction of a
// millisecond is dropped.
type EpochMillis int64

func (m *EpochMillis) UnmarshalJSON(b []byte) error {
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("want epoch milliseconds, got %s", b)
	}
	if i, err := n.Int64(); err == nil {
		*m = EpochMillis(i)
		return nil
	}
	f, err := n.Float64()
	if err != nil || math.IsNaN(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return fmt.Errorf("epoch milliseconds out of range: %s", b)
	}
	*m = EpochMillis(math.Trunc(f))
	return nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the required fields of a decoded record. A failure is
// returned as a *ParseError wrapping ErrMissingField.
func Validate(path string, record int, v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &ParseError{Path: path, Record: record, Err: err}
	}
	names := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		names = append(names, fe.Field())
	}
	return &ParseError{
		Path:   path,
		Record: record,
		Err:    fmt.Errorf("%w: %s", ErrMissingField, strings.Join(names, ", ")),
	}
}

// DecodeSongs reads every song record from r and validates each of them.
// Nothing is returned unless the whole file is well formed.
func DecodeSongs(path string, r io.Reader) ([]SongRecord, error) {
	recs, err := decodeAll[SongRecord](path, r)
	if err != nil {
		return nil, err
	}
	for i := range recs {
		if err := Validate(path, i+1, &recs[i]); err != nil {
			return nil, err
		}
	}
	return recs, nil
}

// DecodeEvents reads every log event from r. Events are not validated here
// because only NextSong events carry the required fields.
func DecodeEvents(path string, r io.Reader) ([]LogEvent, error) {
	return decodeAll[LogEvent](path, r)
}

func decodeAll[T any](path string, r io.Reader) ([]T, error) {
	dec := NewDecoder(r, Options{AllowArrays: true})
	var out []T
	for {
		raw, err := dec.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, &ParseError{Path: path, Record: dec.Count() + 1, Err: err}
		}
		var rec T
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, &ParseError{Path: path, Record: dec.Count(), Err: err}
		}
		out = append(out, rec)
	}
}
