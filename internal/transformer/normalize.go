package transformer

import (
	"math"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"sparkify/internal/domain"
)

// Normalize builds the join key used for song titles and artist names on
// both sides of the songplay lookup: surrounding whitespace is trimmed, the
// text is put in NFC form and lowercased.
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	// Casers carry state, so a fresh one is built per call.
	return cases.Lower(language.Und).String(norm.NFC.String(s))
}

// RoundDuration rounds a duration in seconds to the nearest whole second,
// halves away from zero. Catalog durations are stored unrounded; the lookup
// rounds them the same way in SQL.
func RoundDuration(d float64) float64 {
	return math.Round(d)
}

// NewTimeEntry derives the time-dimension row for an event timestamp given in
// epoch milliseconds. All parts are taken in UTC.
func NewTimeEntry(ms int64) domain.TimeEntry {
	t := time.UnixMilli(ms).UTC()
	_, week := t.ISOWeek()
	return domain.TimeEntry{
		StartTime: t,
		Hour:      t.Hour(),
		Day:       t.Day(),
		Week:      week,
		Month:     int(t.Month()),
		Year:      t.Year(),
		Weekday:   (int(t.Weekday()) + 6) % 7,
	}
}
