package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/golang-migrate/migrate/v4"

	"github.com/JaimeStill/invoicer/internal/config"
	"github.com/JaimeStill/invoicer/migrations"
	"github.com/JaimeStill/invoicer/pkg/database"
)

const envDSN = "INVOICER_DB_DSN"

func main() {
	var (
		configPath = flag.String("config", config.BaseConfigFile, "Base config file")
		dialect    = flag.String("dialect", "", "SQL dialect: postgres, mysql, or sqlite (defaults to config)")
		dsn        = flag.String("dsn", "", "golang-migrate database URL (defaults to config)")
		up         = flag.Bool("up", false, "Run all up migrations")
		down       = flag.Bool("down", false, "Run all down migrations")
		steps      = flag.Int("steps", 0, "Number of migrations (positive=up, negative=down)")
		version    = flag.Bool("version", false, "Print current migration version")
		force      = flag.Int("force", -1, "Force set version (use with caution)")
	)
	flag.Parse()

	forceSet := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "force" {
			forceSet = true
		}
	})

	d, url, err := target(*configPath, *dialect, *dsn)
	if err != nil {
		log.Fatalf("resolve target: %v", err)
	}

	source, err := migrations.Source(d)
	if err != nil {
		log.Fatalf("failed to create migration source: %v", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, url)
	if err != nil {
		log.Fatalf("failed to create migrator: %v", err)
	}
	defer m.Close()

	switch {
	case *version:
		v, dirty, err := m.Version()
		if err != nil {
			log.Fatalf("failed to get version: %v", err)
		}
		fmt.Printf("%s version: %d, dirty: %v\n", d, v, dirty)
	case forceSet:
		if err := m.Force(*force); err != nil {
			log.Fatalf("failed to force version: %v", err)
		}
		fmt.Printf("forced to version %d\n", *force)
	case *up:
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatalf("failed to run up migrations: %v", err)
		}
		fmt.Printf("%s migrations applied successfully\n", d)
	case *down:
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatalf("failed to run down migrations: %v", err)
		}
		fmt.Printf("%s migrations reverted successfully\n", d)
	case *steps != 0:
		if err := m.Steps(*steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatalf("failed to run migrations: %v", err)
		}
		fmt.Printf("applied %d migration steps\n", *steps)
	default:
		fmt.Println("usage: migrate [-config path] [-dialect d] [-dsn url] [-up|-down|-steps N|-version|-force N]")
		flag.PrintDefaults()
	}
}

// target resolves the dialect and migration URL. Flags win over the
// environment, which wins over the config file.
func target(configPath, dialect, dsn string) (database.Dialect, string, error) {
	if dsn == "" {
		dsn = os.Getenv(envDSN)
	}

	if dialect != "" && dsn != "" {
		d, err := database.ParseDialect(dialect)
		return d, dsn, err
	}

	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return "", "", err
	}

	if dialect != "" {
		cfg.Database.Dialect = dialect
	}
	d, err := database.ParseDialect(cfg.Database.Dialect)
	if err != nil {
		return "", "", err
	}
	if dsn == "" {
		dsn = cfg.Database.MigrationURL()
	}
	return d, dsn, nil
}
