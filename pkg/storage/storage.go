// Package storage provides blob storage operations with Azure Blob Storage and
// local filesystem implementations.
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/JaimeStill/invoicer/pkg/lifecycle"
)

// System manages blob storage operations and lifecycle coordination.
type System interface {
	// Start registers a startup hook that prepares the container or root directory.
	Start(lc *lifecycle.Coordinator) error
	// Upload streams data to a blob at the given key with the specified content type.
	Upload(ctx context.Context, key string, reader io.Reader, contentType string) error
	// Download returns a stream for the blob at the given key. The caller must close the reader.
	// Returns ErrNotFound if the blob does not exist.
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete removes the blob at the given key. Returns ErrNotFound if the blob does not exist.
	Delete(ctx context.Context, key string) error
	// Exists reports whether a blob exists at the given key.
	Exists(ctx context.Context, key string) (bool, error)
}

// New creates the storage system selected by cfg.Backend.
// Neither backend touches the network or filesystem until Start is called.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	logger = logger.With("system", "storage", "backend", cfg.Backend)

	switch cfg.Backend {
	case BackendAzure:
		a, err := newAzure(cfg, logger)
		if err != nil {
			return nil, err
		}
		return a, nil
	case BackendLocal:
		return newLocal(cfg, logger), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
