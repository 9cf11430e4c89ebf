// Package relational persists canonical invoice records into the invoices and
// usage_details tables and reads them back for verification and listing.
package relational

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/JaimeStill/invoicer/internal/invoice"
	"github.com/JaimeStill/invoicer/pkg/database"
	"github.com/JaimeStill/invoicer/pkg/repository"
)

// DuplicatePolicy decides what happens when a record's document was already persisted.
type DuplicatePolicy string

const (
	// Replace deletes the previous invoice and its usage rows in the same transaction.
	Replace DuplicatePolicy = "replace"
	// Reject fails the write with ErrDuplicate.
	Reject DuplicatePolicy = "reject"
)

// ParseDuplicatePolicy validates a configured policy name.
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch p := DuplicatePolicy(s); p {
	case Replace, Reject:
		return p, nil
	case "":
		return Replace, nil
	default:
		return "", fmt.Errorf("unknown duplicate policy %q", s)
	}
}

// Persister writes records inside a caller-owned transaction.
// It never commits or rolls back.
type Persister struct {
	dialect database.Dialect
	policy  DuplicatePolicy
	logger  *slog.Logger
}

// NewPersister creates a Persister for the dialect.
func NewPersister(dialect database.Dialect, policy DuplicatePolicy, logger *slog.Logger) *Persister {
	return &Persister{
		dialect: dialect,
		policy:  policy,
		logger:  logger.With("system", "relational"),
	}
}

// Persist inserts the invoice row and one usage row per record and returns
// the generated invoice id. Any failure aborts the call; the caller decides
// the fate of tx.
func (p *Persister) Persist(ctx context.Context, tx *sql.Tx, rec invoice.Record) (int64, error) {
	if rec.DocumentID == "" {
		return 0, fmt.Errorf("%w: empty document id", ErrWrite)
	}

	if err := p.resolveDuplicate(ctx, tx, rec.DocumentID); err != nil {
		return 0, err
	}

	id, err := p.insertInvoice(ctx, tx, rec)
	if err != nil {
		return 0, fmt.Errorf("%w: insert invoice: %w", ErrWrite, repository.MapError(err, ErrNotFound, ErrDuplicate))
	}

	q := p.dialect.Rebind(`
		INSERT INTO usage_details (invoice_id, category, date, time, to_number, duration, amount)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)

	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		return 0, fmt.Errorf("%w: prepare usage insert: %w", ErrWrite, err)
	}
	defer stmt.Close()

	rows := 0
	for _, category := range invoice.Categories() {
		for _, u := range rec.Usage[category].Records {
			date, err := time.Parse(usageDateInput, u.Date)
			if err != nil {
				return 0, fmt.Errorf("%w: usage date %q: %w", ErrWrite, u.Date, err)
			}

			if _, err := stmt.ExecContext(ctx,
				id, string(category), timeValue{date}, u.Time, u.ToNumber, u.Duration, u.Amount,
			); err != nil {
				return 0, fmt.Errorf("%w: insert usage detail: %w", ErrWrite, err)
			}
			rows++
		}
	}

	p.logger.Info("invoice staged", "pdf_name", rec.DocumentID, "invoice_id", id, "usage_rows", rows)
	return id, nil
}

func (p *Persister) resolveDuplicate(ctx context.Context, tx *sql.Tx, name string) error {
	var existing int64
	err := tx.QueryRowContext(ctx,
		p.dialect.Rebind(`SELECT id FROM invoices WHERE pdf_name = ?`), name,
	).Scan(&existing)

	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: duplicate check: %w", ErrWrite, err)
	}

	if p.policy == Reject {
		return fmt.Errorf("%w: %w: %s", ErrWrite, ErrDuplicate, name)
	}

	if _, err := tx.ExecContext(ctx,
		p.dialect.Rebind(`DELETE FROM usage_details WHERE invoice_id = ?`), existing,
	); err != nil {
		return fmt.Errorf("%w: replace usage details: %w", ErrWrite, err)
	}
	if err := repository.ExecExpectOne(ctx, tx,
		p.dialect.Rebind(`DELETE FROM invoices WHERE id = ?`), existing,
	); err != nil {
		return fmt.Errorf("%w: replace invoice: %w", ErrWrite, err)
	}

	p.logger.Info("replacing existing invoice", "pdf_name", name, "previous_id", existing)
	return nil
}

func (p *Persister) insertInvoice(ctx context.Context, tx *sql.Tx, rec invoice.Record) (int64, error) {
	q := `
		INSERT INTO invoices (account_number, bill_period, current_charges, total_due, pdf_name, processed_at, processing_time_seconds)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	args := []any{
		rec.Header.AccountNumber,
		rec.Header.BillPeriod,
		rec.Header.CurrentCharges,
		rec.Header.TotalDue,
		rec.DocumentID,
		timeValue{rec.ProcessedAt},
		rec.ProcessingSeconds,
	}

	if p.dialect.Returning() {
		var id int64
		err := tx.QueryRowContext(ctx, p.dialect.Rebind(q+` RETURNING id`), args...).Scan(&id)
		return id, err
	}

	res, err := tx.ExecContext(ctx, p.dialect.Rebind(q), args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}
