package lease

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Local is an in-process Locker. It serializes workers within one process only.
type Local struct {
	mu     sync.Mutex
	held   map[string]string
	logger *slog.Logger
}

// NewLocal creates an empty in-process Locker.
func NewLocal(logger *slog.Logger) *Local {
	return &Local{
		held:   make(map[string]string),
		logger: logger,
	}
}

func (l *Local) Acquire(_ context.Context, documentID string) (*Lease, error) {
	key := Key(documentID)

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.held[key]; ok {
		return nil, ErrHeld
	}

	owner := uuid.NewString()
	l.held[key] = owner

	return &Lease{
		DocumentID: documentID,
		Owner:      owner,
		release: func(context.Context) error {
			l.mu.Lock()
			defer l.mu.Unlock()
			if l.held[key] == owner {
				delete(l.held, key)
			}
			return nil
		},
	}, nil
}

func (l *Local) Close() error {
	return nil
}

func (l *Local) Ping(context.Context) error {
	return nil
}
