// Package sqlite implements the SQLite storage backend using the pure-Go
// modernc.org/sqlite driver. It backs local runs and the test suite, where an
// in-memory database (":memory:") gives every test a fresh warehouse.
package sqlite

import (
	"context"
	"fmt"

	// Pure-Go SQLite driver, registered as "sqlite".
	_ "modernc.org/sqlite"

	"sparkify/internal/storage"
	"sparkify/internal/storage/sqldb"
)

// Open opens a SQLite warehouse. DSN is passed to the driver unchanged, e.g.
//
//	"file:sparkify.db"
//	":memory:"
//
// Foreign keys are switched on for the (single) connection.
func Open(ctx context.Context, dsn string) (*sqldb.Gateway, error) {
	g, err := sqldb.Open(ctx, "sqlite", dsn, Dialect)
	if err != nil {
		return nil, err
	}
	if _, err := g.DB().ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		g.Close()
		return nil, fmt.Errorf("sqlite: enable foreign keys: %w", err)
	}
	return g, nil
}

func init() {
	storage.Register("sqlite", func(ctx context.Context, cfg storage.Config) (storage.Gateway, error) {
		return Open(ctx, cfg.DSN)
	})
}
