// Package lease serializes processing of the same document across workers.
// A lease is exclusive per document id and must be released when processing ends.
package lease

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// ErrHeld is returned when another worker holds the lease for a document.
var ErrHeld = errors.New("document is being processed")

// Locker grants per-document leases.
type Locker interface {
	Acquire(ctx context.Context, documentID string) (*Lease, error)
	Ping(ctx context.Context) error
	Close() error
}

// Lease is an acquired per-document lock.
type Lease struct {
	DocumentID string
	Owner      string

	once    sync.Once
	release func(ctx context.Context) error
	err     error
}

// Release gives up the lease. Repeated calls return the first result.
func (l *Lease) Release(ctx context.Context) error {
	l.once.Do(func() {
		l.err = l.release(ctx)
	})
	return l.err
}

// Key maps a document id to a key safe for any backend: the hex SHA-256 of the id.
func Key(documentID string) string {
	sum := sha256.Sum256([]byte(documentID))
	return hex.EncodeToString(sum[:])
}

// New returns the Locker selected by cfg.Backend.
func New(ctx context.Context, cfg *Config, logger *slog.Logger) (Locker, error) {
	logger = logger.With("system", "lease", "backend", cfg.Backend)

	switch cfg.Backend {
	case BackendLocal:
		return NewLocal(logger), nil
	case BackendNATS:
		n, err := NewNATS(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		return n, nil
	default:
		return nil, fmt.Errorf("unknown lease backend %q", cfg.Backend)
	}
}
