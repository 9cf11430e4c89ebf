// Package dualwrite sequences the relational and document-store writes for one
// document as a saga. The relational transaction stays open until the document
// write is acknowledged, so a document failure is compensated by a rollback
// and no relational row outlives a failed pipeline.
package dualwrite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/JaimeStill/invoicer/internal/extract"
	"github.com/JaimeStill/invoicer/internal/invoice"
	"github.com/JaimeStill/invoicer/internal/relational"
	"github.com/JaimeStill/invoicer/pkg/repository"
)

// ErrCommit wraps a failed relational commit after the document was written.
var ErrCommit = errors.New("relational commit failed")

// RelationalWriter stages a record inside a caller-owned transaction.
type RelationalWriter interface {
	Persist(ctx context.Context, tx *sql.Tx, rec invoice.Record) (int64, error)
}

// DocumentWriter durably upserts a record's document.
type DocumentWriter interface {
	Persist(ctx context.Context, rec invoice.Record) (string, error)
}

// Input is one document ready for assembly. Name, when set, is the document
// name recorded in both stores; otherwise the base name of Path is used.
type Input struct {
	Path      string
	Name      string
	Text      string
	StartedAt time.Time
}

// Outcome is the terminal result of processing one document.
type Outcome struct {
	State      State
	InvoiceID  int64
	DocumentID string
	Record     *invoice.Record
	Err        error
	History    []Transition
}

// Succeeded reports whether both stores hold the record.
func (o Outcome) Succeeded() bool {
	return o.State == StateCommitted
}

// Retryable reports whether re-running the pipeline on the same input may succeed.
func (o Outcome) Retryable() bool {
	switch o.State {
	case StateExtractionFailed, StateCommitted:
		return false
	case StateDocumentFailedRolledBack:
		return true
	case StateRelationalFailed:
		return relational.IsRetryable(o.Err)
	}
	return false
}

// Coordinator runs the per-document write pipeline.
type Coordinator struct {
	db         repository.Beginner
	relational RelationalWriter
	documents  DocumentWriter
	logger     *slog.Logger
	now        func() time.Time
}

// New creates a Coordinator. db opens the relational transaction for each document.
func New(db repository.Beginner, rel RelationalWriter, docs DocumentWriter, logger *slog.Logger) *Coordinator {
	return &Coordinator{
		db:         db,
		relational: rel,
		documents:  docs,
		logger:     logger.With("system", "dualwrite"),
		now:        time.Now,
	}
}

type machine struct {
	outcome Outcome
	now     func() time.Time
	logger  *slog.Logger
}

func (m *machine) advance(to State, reason string) {
	from := m.outcome.State
	if !from.allows(to) {
		panic(fmt.Sprintf("dualwrite: illegal transition %s -> %s", from, to))
	}
	m.outcome.History = append(m.outcome.History, Transition{
		From:   from,
		To:     to,
		At:     m.now(),
		Reason: reason,
	})
	m.outcome.State = to
	m.logger.Debug("state transition", "from", from, "to", to, "reason", reason)
}

func (m *machine) fail(to State, err error) Outcome {
	m.advance(to, err.Error())
	m.outcome.Err = err
	m.logger.Warn("pipeline failed", "state", to, "error", err)
	return m.outcome
}

// Process assembles the record from in and writes it to both stores. The
// returned Outcome is always terminal.
func (c *Coordinator) Process(ctx context.Context, in Input) Outcome {
	started := in.StartedAt
	if started.IsZero() {
		started = c.now()
	}

	m := &machine{
		outcome: Outcome{State: StateExtracting},
		now:     c.now,
		logger:  c.logger.With("path", in.Path),
	}

	name := in.Path
	if in.Name != "" {
		name = in.Name
	}

	rec, err := extract.Assemble(name, in.Text, c.now())
	if err != nil {
		return m.fail(StateExtractionFailed, err)
	}
	m.logger = m.logger.With("pdf_name", rec.DocumentID)
	m.advance(StateAssembled, "record assembled")

	var session *repository.Session
	defer func() {
		if session != nil {
			session.Rollback()
		}
	}()

	s := &saga{
		logger: m.logger,
		steps: []step{
			{
				name: "relational-write",
				run: func(ctx context.Context) error {
					rec = rec.WithProcessingTime(c.now().Sub(started))

					var err error
					if session, err = repository.Begin(ctx, c.db); err != nil {
						return fmt.Errorf("%w: begin: %w", relational.ErrWrite, err)
					}
					id, err := c.relational.Persist(ctx, session.Tx(), rec)
					if err != nil {
						return err
					}
					m.outcome.InvoiceID = id
					return nil
				},
				compensate: func(context.Context) error {
					if session == nil {
						return nil
					}
					return session.Rollback()
				},
				success: StateRelationalCommittedPending,
				failure: StateRelationalFailed,
			},
			{
				name: "document-write",
				run: func(ctx context.Context) error {
					id, err := c.documents.Persist(ctx, rec)
					if err != nil {
						return err
					}
					m.outcome.DocumentID = id
					return nil
				},
				success: StateDocumentWritten,
				failure: StateDocumentFailedRolledBack,
			},
			{
				name: "relational-commit",
				run: func(context.Context) error {
					if err := session.Commit(); err != nil {
						return fmt.Errorf("%w: %w", ErrCommit, err)
					}
					return nil
				},
				success: StateCommitted,
				failure: StateRelationalFailed,
			},
		},
	}

	failed, err := s.execute(ctx, m.advance)
	if failed != nil {
		if failed.name == "relational-commit" {
			m.logger.Error("document written without relational counterpart",
				"document_id", m.outcome.DocumentID,
				"error", err,
			)
		}
		m.outcome.InvoiceID = 0
		return m.fail(failed.failure, err)
	}

	m.outcome.Record = &rec
	m.logger.Info("invoice committed",
		"invoice_id", m.outcome.InvoiceID,
		"document_id", m.outcome.DocumentID,
		"usage_rows", rec.Usage.RecordCount(),
		"seconds", *rec.ProcessingSeconds,
	)
	return m.outcome
}
