// Package docstore persists denormalized invoice documents to MongoDB.
// Writes are idempotent upserts keyed by document name and must be
// acknowledged under the configured write concern to count as durable.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/JaimeStill/invoicer/internal/invoice"
	"github.com/JaimeStill/invoicer/pkg/lifecycle"
)

var (
	ErrNotFound       = errors.New("document not found")
	ErrWrite          = errors.New("document write failed")
	ErrUnacknowledged = fmt.Errorf("%w: write not acknowledged", ErrWrite)
	ErrNotReady       = errors.New("document store not ready")
)

// System is the document store used by the persistence coordinator and the
// verification checks.
type System interface {
	Persist(ctx context.Context, rec invoice.Record) (string, error)
	Find(ctx context.Context, id string) (*Document, error)
	Exists(ctx context.Context, id string) (bool, error)
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
	Start(lc *lifecycle.Coordinator) error
}

type collection interface {
	ReplaceOne(ctx context.Context, filter, replacement any, opts ...*options.ReplaceOptions) (*mongo.UpdateResult, error)
	FindOne(ctx context.Context, filter any, opts ...*options.FindOneOptions) *mongo.SingleResult
	CountDocuments(ctx context.Context, filter any, opts ...*options.CountOptions) (int64, error)
	DeleteOne(ctx context.Context, filter any, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error)
}

type store struct {
	client      *mongo.Client
	coll        collection
	logger      *slog.Logger
	connTimeout time.Duration
	opTimeout   time.Duration
}

// New configures a client for cfg. No connection is made until the first
// operation or the startup ping.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(cfg.ConnTimeoutDuration()).
		SetServerSelectionTimeout(cfg.ConnTimeoutDuration()).
		SetWriteConcern(cfg.Durability())

	client, err := mongo.Connect(context.Background(), opts)
	if err != nil {
		return nil, fmt.Errorf("configure mongo client: %w", err)
	}

	coll := client.Database(cfg.Database).Collection(cfg.Collection)

	s := newStore(coll, logger.With("system", "docstore", "collection", cfg.Collection), cfg.OpTimeoutDuration())
	s.client = client
	s.connTimeout = cfg.ConnTimeoutDuration()
	return s, nil
}

func newStore(coll collection, logger *slog.Logger, opTimeout time.Duration) *store {
	return &store{
		coll:      coll,
		logger:    logger,
		opTimeout: opTimeout,
	}
}

func byID(id string) bson.D {
	return bson.D{{Key: "_id", Value: id}}
}

func (s *store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.opTimeout)
}

// Persist upserts the document for rec. Repeating the call with the same
// record leaves exactly one document.
func (s *store) Persist(ctx context.Context, rec invoice.Record) (string, error) {
	doc := NewDocument(rec)

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := s.coll.ReplaceOne(ctx, byID(doc.ID), doc, options.Replace().SetUpsert(true))
	if errors.Is(err, mongo.ErrUnacknowledgedWrite) {
		return "", ErrUnacknowledged
	}
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrWrite, err)
	}
	if res == nil || (res.MatchedCount == 0 && res.UpsertedCount == 0) {
		return "", ErrUnacknowledged
	}

	s.logger.Info("document written",
		"document_id", doc.ID,
		"matched", res.MatchedCount,
		"upserted", res.UpsertedCount,
	)
	return doc.ID, nil
}

func (s *store) Find(ctx context.Context, id string) (*Document, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var doc Document
	if err := s.coll.FindOne(ctx, byID(id)).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find document %s: %w", id, err)
	}
	return &doc, nil
}

func (s *store) Exists(ctx context.Context, id string) (bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	n, err := s.coll.CountDocuments(ctx, byID(id), options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count document %s: %w", id, err)
	}
	return n > 0, nil
}

func (s *store) Delete(ctx context.Context, id string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := s.coll.DeleteOne(ctx, byID(id))
	if err != nil {
		return fmt.Errorf("delete document %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *store) Ping(ctx context.Context) error {
	if s.client == nil {
		return nil
	}

	pingCtx, cancel := context.WithTimeout(ctx, s.connTimeout)
	defer cancel()

	if err := s.client.Ping(pingCtx, nil); err != nil {
		return fmt.Errorf("%w: %w", ErrNotReady, err)
	}
	return nil
}

func (s *store) Start(lc *lifecycle.Coordinator) error {
	s.logger.Info("starting document store")

	lc.OnStartup(func() {
		if err := s.Ping(lc.Context()); err != nil {
			s.logger.Error("document store ping failed", "error", err)
			return
		}
		s.logger.Info("document store connected")
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		if s.client == nil {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), s.connTimeout)
		defer cancel()

		if err := s.client.Disconnect(ctx); err != nil {
			s.logger.Error("document store disconnect failed", "error", err)
			return
		}
		s.logger.Info("document store disconnected")
	})

	return nil
}
