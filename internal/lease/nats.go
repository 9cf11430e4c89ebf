package lease

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// NATS grants leases through a JetStream key-value bucket. Create only
// succeeds for an absent key, and the bucket TTL expires leases whose holder died.
type NATS struct {
	nc     *nats.Conn
	kv     jetstream.KeyValue
	logger *slog.Logger
}

// NewNATS connects to cfg.URL and creates or updates the lease bucket.
func NewNATS(ctx context.Context, cfg *Config, logger *slog.Logger) (*NATS, error) {
	nc, err := nats.Connect(cfg.URL,
		nats.Name("invoicer-lease"),
		nats.Timeout(cfg.ConnTimeoutDuration()),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      cfg.Bucket,
		Description: "per-document processing leases",
		TTL:         cfg.TTLDuration(),
		History:     1,
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("lease bucket %s: %w", cfg.Bucket, err)
	}

	logger.Info("lease bucket ready", "bucket", cfg.Bucket, "ttl", cfg.TTL)
	return &NATS{nc: nc, kv: kv, logger: logger}, nil
}

func (n *NATS) Acquire(ctx context.Context, documentID string) (*Lease, error) {
	key := Key(documentID)
	owner := uuid.NewString()

	rev, err := n.kv.Create(ctx, key, []byte(owner))
	if errors.Is(err, jetstream.ErrKeyExists) {
		return nil, ErrHeld
	}
	if err != nil {
		return nil, fmt.Errorf("acquire lease: %w", err)
	}

	return &Lease{
		DocumentID: documentID,
		Owner:      owner,
		release: func(ctx context.Context) error {
			err := n.kv.Delete(ctx, key, jetstream.LastRevision(rev))
			if err != nil {
				// the bucket TTL reclaims a lease that could not be deleted
				n.logger.Warn("lease release failed", "document_id", documentID, "error", err)
				return fmt.Errorf("release lease: %w", err)
			}
			return nil
		},
	}, nil
}

func (n *NATS) Close() error {
	return n.nc.Drain()
}

// Ping reports an error unless the NATS connection is established.
func (n *NATS) Ping(context.Context) error {
	if s := n.nc.Status(); s != nats.CONNECTED {
		return fmt.Errorf("nats connection %s", s)
	}
	return nil
}
