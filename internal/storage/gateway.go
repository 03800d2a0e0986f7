// Package storage defines the warehouse-facing contract of the ETL job.
//
// The core never issues SQL itself. It asks a Gateway for a Tx per input file
// and calls one typed method per row. Each backend package (postgres, sqlite,
// mssql, mysql, duckdb) owns its SQL text through a Dialect and registers a
// factory at init time, so callers pick a backend by Config.Kind alone:
//
//	import _ "sparkify/internal/storage/all"
//
//	gw, err := storage.New(ctx, storage.Config{Kind: "postgres", DSN: dsn})
//	if err != nil { ... }
//	defer gw.Close()
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"sparkify/internal/domain"
)

// Config is the backend-agnostic configuration used by New.
type Config struct {
	// Kind selects a registered backend: "postgres", "sqlite", "mssql", "mysql", "duckdb".
	Kind string
	// DSN is passed through to the backend driver unchanged.
	DSN string
}

// Gateway is an open warehouse connection. It hands out one Tx at a time.
type Gateway interface {
	// Begin starts the unit of work for a single input file.
	Begin(ctx context.Context) (Tx, error)

	// EnsureSchema creates the five star-schema tables when they are missing.
	EnsureSchema(ctx context.Context) error

	// Close releases the underlying connection. Call once.
	Close()
}

// Tx is the per-file unit of work. Nothing written through a Tx is visible to
// later files until Commit returns nil.
type Tx interface {
	// InsertSong inserts a song, ignoring an existing song_id.
	InsertSong(ctx context.Context, s domain.Song) error
	// InsertArtist inserts an artist, ignoring an existing artist_id.
	InsertArtist(ctx context.Context, a domain.Artist) error
	// InsertTime inserts a time row, ignoring an existing start_time.
	InsertTime(ctx context.Context, t domain.TimeEntry) error
	// InsertUser upserts a user; the latest row wins on user_id conflict.
	InsertUser(ctx context.Context, u domain.User) error
	// InsertSongPlay inserts a fact row, ignoring a repeated
	// (start_time, user_id, session_id).
	InsertSongPlay(ctx context.Context, p domain.SongPlay) error

	// LookupSongArtist resolves a normalized title, normalized artist name and
	// rounded length to a (song_id, artist_id) pair. found is false on a miss,
	// which is not an error. With several candidates the lowest
	// (song_id, artist_id) wins.
	LookupSongArtist(ctx context.Context, title, artist string, length float64) (songID, artistID string, found bool, err error)

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Factory opens a Gateway for a registered backend kind.
type Factory func(ctx context.Context, cfg Config) (Gateway, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register makes a backend available to New under kind. It is meant to be
// called from a backend package's init function and panics on an empty kind,
// a nil factory or a duplicate registration.
func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if kind == "" {
		panic("storage: Register called with empty kind")
	}
	if f == nil {
		panic("storage: Register called with nil factory")
	}
	if _, exists := factories[kind]; exists {
		panic(fmt.Sprintf("storage: factory already registered for kind=%q", kind))
	}
	factories[kind] = f
}

// New opens a Gateway using the factory registered for cfg.Kind.
func New(ctx context.Context, cfg Config) (Gateway, error) {
	if cfg.Kind == "" {
		return nil, fmt.Errorf("storage: missing kind")
	}

	mu.RLock()
	f := factories[cfg.Kind]
	mu.RUnlock()

	if f == nil {
		return nil, fmt.Errorf("storage: unsupported kind=%s (registered: %v)", cfg.Kind, ListKinds())
	}
	return f(ctx, cfg)
}

// ListKinds lists the registered backend kinds in sorted order.
func ListKinds() []string {
	mu.RLock()
	defer mu.RUnlock()

	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
