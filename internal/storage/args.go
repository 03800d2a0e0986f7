package storage

import "sparkify/internal/domain"

// The functions below fix the positional parameter order of each statement
// so every Dialect binds rows identically.

func SongArgs(s domain.Song) []any {
	return []any{s.SongID, s.Title, s.ArtistID, s.Year, s.Duration}
}

func ArtistArgs(a domain.Artist) []any {
	return []any{a.ArtistID, a.Name, a.Location, a.Latitude, a.Longitude}
}

func TimeArgs(t domain.TimeEntry) []any {
	return []any{t.StartTime, t.Hour, t.Day, t.Week, t.Month, t.Year, t.Weekday}
}

func UserArgs(u domain.User) []any {
	return []any{u.UserID, u.FirstName, u.LastName, u.Gender, u.Level}
}

func SongPlayArgs(p domain.SongPlay) []any {
	return []any{p.StartTime, p.UserID, p.Level, p.SongID, p.ArtistID, p.SessionID, p.Location, p.UserAgent}
}

func LookupArgs(title, artist string, length float64) []any {
	return []any{title, artist, length}
}
