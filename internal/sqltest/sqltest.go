// Package sqltest opens migrated in-memory SQLite databases for tests.
package sqltest

import (
	"database/sql"
	"fmt"
	"sync/atomic"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/JaimeStill/invoicer/migrations"
	"github.com/JaimeStill/invoicer/pkg/database"
)

var seq atomic.Int64

// Open returns a fresh, fully migrated in-memory database that is closed
// when the test ends. The pool is limited to one connection so every
// statement sees the same in-memory schema.
func Open(t testing.TB) *sql.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:sqltest%d?mode=memory&cache=shared&_pragma=foreign_keys(1)", seq.Add(1))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if err := migrations.Up(db, database.SQLite); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// Count returns the number of rows in table.
func Count(t testing.TB, db *sql.DB, table string) int {
	t.Helper()
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM ` + table).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}
