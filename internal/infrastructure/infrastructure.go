// Package infrastructure provides core service initialization for application startup.
// It assembles the dependencies every entry point needs: logging, the relational
// database, the document store, archive storage, and the lease backend.
package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/JaimeStill/invoicer/internal/config"
	"github.com/JaimeStill/invoicer/internal/docstore"
	"github.com/JaimeStill/invoicer/internal/lease"
	"github.com/JaimeStill/invoicer/pkg/database"
	"github.com/JaimeStill/invoicer/pkg/lifecycle"
	"github.com/JaimeStill/invoicer/pkg/storage"
)

// Infrastructure holds the core systems required by all domain modules.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Database  database.System
	Docstore  docstore.System
	Storage   storage.System
	Lease     lease.Locker
}

// NewLogger builds the root logger from the logging config.
func NewLogger(cfg *config.LoggingConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LevelValue()}
	if cfg.Format == config.FormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// New creates an Infrastructure from the application configuration.
// Only the lease backend connects eagerly; the rest connect when Start runs
// the lifecycle startup hooks.
func New(ctx context.Context, cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := NewLogger(&cfg.Logging, os.Stderr)

	db, err := database.New(&cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}

	docs, err := docstore.New(&cfg.Docstore, logger)
	if err != nil {
		return nil, fmt.Errorf("docstore init failed: %w", err)
	}

	store, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("storage init failed: %w", err)
	}

	locker, err := lease.New(ctx, &cfg.Lease, logger)
	if err != nil {
		return nil, fmt.Errorf("lease init failed: %w", err)
	}

	return &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		Database:  db,
		Docstore:  docs,
		Storage:   store,
		Lease:     locker,
	}, nil
}

// Start registers all infrastructure systems with the lifecycle coordinator,
// along with the readiness probes served on /readyz.
func (i *Infrastructure) Start() error {
	if err := i.Database.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("database start failed: %w", err)
	}
	if err := i.Docstore.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("docstore start failed: %w", err)
	}
	if err := i.Storage.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("storage start failed: %w", err)
	}

	i.Lifecycle.OnShutdown(func() {
		<-i.Lifecycle.Context().Done()
		if err := i.Lease.Close(); err != nil {
			i.Logger.Error("lease close failed", "error", err)
		}
	})

	i.Lifecycle.Register("database", i.Database.Ping)
	i.Lifecycle.Register("docstore", i.Docstore.Ping)
	i.Lifecycle.Register("lease", i.Lease.Ping)
	return nil
}
