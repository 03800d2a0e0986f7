// Package all wires every built-in warehouse backend into the storage
// factory.
//
// It exists purely for side effects: importing it runs the init functions of
// each backend, which register themselves with storage.Register. After
//
//	import _ "sparkify/internal/storage/all"
//
// storage.New accepts the kinds "postgres", "sqlite", "mssql", "mysql" and
// "duckdb". A binary that needs only a subset can blank-import the backend packages it
// wants instead.
package all

import (
	_ "sparkify/internal/storage/duckdb"
	_ "sparkify/internal/storage/mssql"
	_ "sparkify/internal/storage/mysql"
	_ "sparkify/internal/storage/postgres"
	_ "sparkify/internal/storage/sqlite"
)
