// Package migrations embeds the relational schema for each supported dialect.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/JaimeStill/invoicer/pkg/database"
)

//go:embed postgres/*.sql mysql/*.sql sqlite/*.sql
var files embed.FS

// Source returns the migration files for the dialect.
func Source(d database.Dialect) (source.Driver, error) {
	src, err := iofs.New(files, string(d))
	if err != nil {
		return nil, fmt.Errorf("migration source %s: %w", d, err)
	}
	return src, nil
}

// Up applies every pending migration to db.
//
// The migrator is not closed because closing it closes db. The postgres and
// mysql drivers pin one pooled connection until db itself is closed.
func Up(db *sql.DB, d database.Dialect) error {
	src, err := Source(d)
	if err != nil {
		return err
	}

	var drv migratedb.Driver
	switch d {
	case database.Postgres:
		drv, err = postgres.WithInstance(db, &postgres.Config{})
	case database.MySQL:
		drv, err = migratemysql.WithInstance(db, &migratemysql.Config{})
	case database.SQLite:
		drv, err = sqlite.WithInstance(db, &sqlite.Config{})
	default:
		return fmt.Errorf("%w %q", database.ErrUnsupportedDialect, d)
	}
	if err != nil {
		return fmt.Errorf("migration driver %s: %w", d, err)
	}

	m, err := migrate.NewWithInstance("iofs", src, string(d), drv)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}
