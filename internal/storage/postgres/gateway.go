// Package postgres implements the Postgres storage backend using pgx v5.
//
// The pool is capped at one connection so the batch runs on a single
// session, and pgx's statement cache prepares each Dialect statement once.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"sparkify/internal/domain"
	"sparkify/internal/storage"
)

// Gateway is a pgx-backed storage.Gateway.
type Gateway struct {
	pool    *pgxpool.Pool
	dialect storage.Dialect
}

var _ storage.Gateway = (*Gateway)(nil)

// newPool is a test hook; tests may replace it to avoid a live server.
var newPool = func(ctx context.Context, cfg *pgxpool.Config) (*pgxpool.Pool, error) {
	return pgxpool.NewWithConfig(ctx, cfg)
}

// Open connects to Postgres. dsn may be a URL or a keyword/value string:
//
//	"host=127.0.0.1 dbname=sparkifydb user=student password=student"
func Open(ctx context.Context, dsn string) (*Gateway, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres dsn: %w", err)
	}
	cfg.MaxConns = 1
	cfg.MinConns = 0

	pool, err := newPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("pgxpool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", describe(err))
	}
	return &Gateway{pool: pool, dialect: Dialect}, nil
}

func (g *Gateway) Close() { g.pool.Close() }

// Pool exposes the pool for read-side queries (reports, tests).
func (g *Gateway) Pool() *pgxpool.Pool { return g.pool }

func (g *Gateway) EnsureSchema(ctx context.Context) error {
	for _, stmt := range g.dialect.Schema {
		if _, err := g.pool.Exec(ctx, stmt); err != nil {
			return storage.Wrap(g.dialect.Name, storage.OpSchema, describe(err))
		}
	}
	return nil
}

func (g *Gateway) Begin(ctx context.Context) (storage.Tx, error) {
	tx, err := g.pool.Begin(ctx)
	if err != nil {
		return nil, storage.Wrap(g.dialect.Name, storage.OpBegin, describe(err))
	}
	return &Tx{tx: tx, dialect: g.dialect}, nil
}

// Tx is a storage.Tx over a pgx transaction.
type Tx struct {
	tx      pgx.Tx
	dialect storage.Dialect
}

var _ storage.Tx = (*Tx)(nil)

func (t *Tx) exec(ctx context.Context, op storage.Op, args []any) error {
	sql, err := t.dialect.Statement(op)
	if err != nil {
		return storage.Wrap(t.dialect.Name, op, err)
	}
	_, err = t.tx.Exec(ctx, sql, args...)
	return storage.Wrap(t.dialect.Name, op, describe(err))
}

func (t *Tx) InsertSong(ctx context.Context, s domain.Song) error {
	return t.exec(ctx, storage.OpInsertSong, storage.SongArgs(s))
}

func (t *Tx) InsertArtist(ctx context.Context, a domain.Artist) error {
	return t.exec(ctx, storage.OpInsertArtist, storage.ArtistArgs(a))
}

func (t *Tx) InsertTime(ctx context.Context, e domain.TimeEntry) error {
	return t.exec(ctx, storage.OpInsertTime, storage.TimeArgs(e))
}

func (t *Tx) InsertUser(ctx context.Context, u domain.User) error {
	return t.exec(ctx, storage.OpInsertUser, storage.UserArgs(u))
}

func (t *Tx) InsertSongPlay(ctx context.Context, p domain.SongPlay) error {
	return t.exec(ctx, storage.OpInsertSongPlay, storage.SongPlayArgs(p))
}

func (t *Tx) LookupSongArtist(ctx context.Context, title, artist string, length float64) (string, string, bool, error) {
	sql, err := t.dialect.Statement(storage.OpLookupSongArtist)
	if err != nil {
		return "", "", false, storage.Wrap(t.dialect.Name, storage.OpLookupSongArtist, err)
	}
	var songID, artistID string
	err = t.tx.QueryRow(ctx, sql, storage.LookupArgs(title, artist, length)...).Scan(&songID, &artistID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", "", false, nil
	}
	if err != nil {
		return "", "", false, storage.Wrap(t.dialect.Name, storage.OpLookupSongArtist, describe(err))
	}
	return songID, artistID, true, nil
}

func (t *Tx) Commit(ctx context.Context) error {
	return storage.Wrap(t.dialect.Name, storage.OpCommit, describe(t.tx.Commit(ctx)))
}

// Rollback is safe to call after Commit.
func (t *Tx) Rollback(ctx context.Context) error {
	err := t.tx.Rollback(ctx)
	if errors.Is(err, pgx.ErrTxClosed) {
		return nil
	}
	return storage.Wrap(t.dialect.Name, storage.OpRollback, describe(err))
}

// describe folds the server-side detail and SQLSTATE of a *pgconn.PgError
// into the message while keeping the original error reachable.
func describe(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Detail != "" {
		return fmt.Errorf("%s (%s): %w", pgErr.Detail, pgErr.SQLState(), err)
	}
	return err
}

func init() {
	storage.Register("postgres", func(ctx context.Context, cfg storage.Config) (storage.Gateway, error) {
		return Open(ctx, cfg.DSN)
	})
}
