// Package sqldb implements storage.Gateway on top of database/sql. Backends
// whose driver plugs into database/sql (sqlite, mssql, duckdb) only supply a
// driver name, a DSN and a storage.Dialect.
package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"sparkify/internal/domain"
	"sparkify/internal/storage"
)

// Gateway is a storage.Gateway backed by a single database/sql connection.
type Gateway struct {
	db      *sql.DB
	dialect storage.Dialect
}

var _ storage.Gateway = (*Gateway)(nil)

// Open opens driverName with dsn, pings it and wraps it in a Gateway.
func Open(ctx context.Context, driverName, dsn string, d storage.Dialect) (*Gateway, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("%s: DSN must not be empty", d.Name)
	}
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: open: %w", d.Name, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: ping: %w", d.Name, err)
	}
	g, err := New(db, d)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return g, nil
}

// New wraps an already open *sql.DB. The pool is pinned to one connection:
// the batch runs on a single connection and in-memory databases live and die
// with it.
func New(db *sql.DB, d storage.Dialect) (*Gateway, error) {
	if err := d.Check(); err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	return &Gateway{db: db, dialect: d}, nil
}

// DB exposes the underlying handle for read-side queries (reports, tests).
func (g *Gateway) DB() *sql.DB { return g.db }

// Dialect returns the statement table this gateway executes.
func (g *Gateway) Dialect() storage.Dialect { return g.dialect }

func (g *Gateway) Close() { _ = g.db.Close() }

// EnsureSchema runs the dialect's DDL outside of any file transaction.
func (g *Gateway) EnsureSchema(ctx context.Context) error {
	for _, stmt := range g.dialect.Schema {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := g.db.ExecContext(ctx, stmt); err != nil {
			return storage.Wrap(g.dialect.Name, storage.OpSchema, err)
		}
	}
	return nil
}

func (g *Gateway) Begin(ctx context.Context) (storage.Tx, error) {
	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, storage.Wrap(g.dialect.Name, storage.OpBegin, err)
	}
	return &Tx{tx: tx, dialect: g.dialect, stmts: make(map[storage.Op]*sql.Stmt, len(storage.Ops))}, nil
}

// Tx is one file's transaction. Statements are prepared on first use and
// closed when the transaction ends.
type Tx struct {
	tx      *sql.Tx
	dialect storage.Dialect
	stmts   map[storage.Op]*sql.Stmt
}

var _ storage.Tx = (*Tx)(nil)

func (t *Tx) stmt(ctx context.Context, op storage.Op) (*sql.Stmt, error) {
	if s, ok := t.stmts[op]; ok {
		return s, nil
	}
	text, err := t.dialect.Statement(op)
	if err != nil {
		return nil, err
	}
	s, err := t.tx.PrepareContext(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("prepare: %w", err)
	}
	t.stmts[op] = s
	return s, nil
}

func (t *Tx) exec(ctx context.Context, op storage.Op, args []any) error {
	s, err := t.stmt(ctx, op)
	if err != nil {
		return storage.Wrap(t.dialect.Name, op, err)
	}
	_, err = s.ExecContext(ctx, args...)
	return storage.Wrap(t.dialect.Name, op, err)
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
	s, err := t.stmt(ctx, storage.OpLookupSongArtist)
	if err != nil {
		return "", "", false, storage.Wrap(t.dialect.Name, storage.OpLookupSongArtist, err)
	}
	var songID, artistID string
	err = s.QueryRowContext(ctx, storage.LookupArgs(title, artist, length)...).Scan(&songID, &artistID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", false, nil
	}
	if err != nil {
		return "", "", false, storage.Wrap(t.dialect.Name, storage.OpLookupSongArtist, err)
	}
	return songID, artistID, true, nil
}

func (t *Tx) Commit(ctx context.Context) error {
	t.closeStmts()
	return storage.Wrap(t.dialect.Name, storage.OpCommit, t.tx.Commit())
}

// Rollback is safe to call after Commit; the sql.ErrTxDone it would report is
// swallowed.
func (t *Tx) Rollback(ctx context.Context) error {
	t.closeStmts()
	err := t.tx.Rollback()
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}
	return storage.Wrap(t.dialect.Name, storage.OpRollback, err)
}

func (t *Tx) closeStmts() {
	for op, s := range t.stmts {
		_ = s.Close()
		delete(t.stmts, op)
	}
}
