package repository_test

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	_ "modernc.org/sqlite"

	"github.com/JaimeStill/invoicer/pkg/repository"
)

var (
	errNotFound  = errors.New("not found")
	errDuplicate = errors.New("duplicate")
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if _, err := db.Exec(`CREATE TABLE items (id INTEGER PRIMARY KEY, name TEXT NOT NULL UNIQUE)`); err != nil {
		t.Fatalf("create table: %v", err)
	}
	return db
}

func count(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM items`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func TestMapError(t *testing.T) {
	other := errors.New("some other error")

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil", nil, nil},
		{"no rows", sql.ErrNoRows, errNotFound},
		{"wrapped no rows", fmt.Errorf("find: %w", sql.ErrNoRows), errNotFound},
		{"postgres unique", &pgconn.PgError{Code: "23505"}, errDuplicate},
		{"mysql duplicate entry", &mysql.MySQLError{Number: 1062}, errDuplicate},
		{"passthrough", other, other},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := repository.MapError(tt.err, errNotFound, errDuplicate)
			if got != tt.want {
				t.Errorf("MapError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestMapErrorPgNonDuplicate(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23503"}
	got := repository.MapError(pgErr, errNotFound, errDuplicate)
	if got != pgErr {
		t.Errorf("MapError(PgError 23503) should pass through, got %v", got)
	}
}

func TestMapErrorSQLiteUnique(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()

	if _, err := db.ExecContext(ctx, `INSERT INTO items (name) VALUES (?)`, "a"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	_, err := db.ExecContext(ctx, `INSERT INTO items (name) VALUES (?)`, "a")
	if err == nil {
		t.Fatal("expected unique violation")
	}

	if got := repository.MapError(err, errNotFound, errDuplicate); got != errDuplicate {
		t.Errorf("MapError(sqlite unique) = %v, want %v", got, errDuplicate)
	}
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"bad conn", driver.ErrBadConn, true},
		{"mysql invalid conn", mysql.ErrInvalidConn, true},
		{"postgres connection failure", &pgconn.PgError{Code: "08006"}, true},
		{"postgres serialization", &pgconn.PgError{Code: "40001"}, true},
		{"postgres unique", &pgconn.PgError{Code: "23505"}, false},
		{"mysql deadlock", &mysql.MySQLError{Number: 1213}, true},
		{"mysql duplicate", &mysql.MySQLError{Number: 1062}, false},
		{"plain error", errors.New("syntax"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := repository.IsTransient(tt.err); got != tt.want {
				t.Errorf("IsTransient(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestSession(t *testing.T) {
	ctx := context.Background()

	t.Run("commit persists", func(t *testing.T) {
		db := openDB(t)

		s, err := repository.Begin(ctx, db)
		if err != nil {
			t.Fatalf("begin: %v", err)
		}
		defer s.Rollback()

		if _, err := s.Tx().ExecContext(ctx, `INSERT INTO items (name) VALUES (?)`, "a"); err != nil {
			t.Fatalf("insert: %v", err)
		}
		if err := s.Commit(); err != nil {
			t.Fatalf("commit: %v", err)
		}
		if err := s.Rollback(); err != nil {
			t.Errorf("rollback after commit = %v, want nil", err)
		}
		if err := s.Commit(); !errors.Is(err, repository.ErrSessionClosed) {
			t.Errorf("second commit = %v, want ErrSessionClosed", err)
		}

		if n := count(t, db); n != 1 {
			t.Errorf("rows = %d, want 1", n)
		}
	})

	t.Run("rollback discards", func(t *testing.T) {
		db := openDB(t)

		s, err := repository.Begin(ctx, db)
		if err != nil {
			t.Fatalf("begin: %v", err)
		}
		if _, err := s.Tx().ExecContext(ctx, `INSERT INTO items (name) VALUES (?)`, "a"); err != nil {
			t.Fatalf("insert: %v", err)
		}
		if err := s.Rollback(); err != nil {
			t.Fatalf("rollback: %v", err)
		}
		if !s.Done() {
			t.Error("session should be done after rollback")
		}

		if n := count(t, db); n != 0 {
			t.Errorf("rows = %d, want 0", n)
		}
	})
}

func TestWithTx(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)

	_, err := repository.WithTx(ctx, db, func(tx *sql.Tx) (struct{}, error) {
		if _, err := tx.ExecContext(ctx, `INSERT INTO items (name) VALUES (?)`, "a"); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, errors.New("abort")
	})
	if err == nil {
		t.Fatal("expected error from fn")
	}
	if n := count(t, db); n != 0 {
		t.Errorf("rows after failed tx = %d, want 0", n)
	}

	id, err := repository.WithTx(ctx, db, func(tx *sql.Tx) (int64, error) {
		res, err := tx.ExecContext(ctx, `INSERT INTO items (name) VALUES (?)`, "b")
		if err != nil {
			return 0, err
		}
		return res.LastInsertId()
	})
	if err != nil {
		t.Fatalf("with tx: %v", err)
	}
	if id == 0 {
		t.Error("expected generated id")
	}
}

func TestQueryHelpers(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)

	for _, name := range []string{"a", "b", "c"} {
		if _, err := db.ExecContext(ctx, `INSERT INTO items (name) VALUES (?)`, name); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	scanName := func(s repository.Scanner) (string, error) {
		var name string
		err := s.Scan(&name)
		return name, err
	}

	names, err := repository.QueryMany(ctx, db, `SELECT name FROM items ORDER BY name`, nil, scanName)
	if err != nil {
		t.Fatalf("query many: %v", err)
	}
	if len(names) != 3 || names[0] != "a" {
		t.Errorf("names = %v", names)
	}

	name, err := repository.QueryOne(ctx, db, `SELECT name FROM items WHERE name = ?`, []any{"b"}, scanName)
	if err != nil || name != "b" {
		t.Errorf("query one = %q, %v", name, err)
	}

	ok, err := repository.Exists(ctx, db, `SELECT 1 FROM items WHERE name = ?`, "z")
	if err != nil || ok {
		t.Errorf("exists(z) = %v, %v; want false, nil", ok, err)
	}

	if err := repository.ExecExpectOne(ctx, db, `DELETE FROM items WHERE name = ?`, "z"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("exec expect one = %v, want ErrNoRows", err)
	}
}
