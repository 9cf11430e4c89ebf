package relational

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/invoicer/pkg/database"
	"github.com/JaimeStill/invoicer/pkg/pagination"
	"github.com/JaimeStill/invoicer/pkg/query"
	"github.com/JaimeStill/invoicer/pkg/repository"
)

// Store reads and removes persisted invoices outside the write pipeline.
type Store struct {
	db      *sql.DB
	dialect database.Dialect
	logger  *slog.Logger
}

// NewStore creates a Store over db.
func NewStore(db *sql.DB, dialect database.Dialect, logger *slog.Logger) *Store {
	return &Store{
		db:      db,
		dialect: dialect,
		logger:  logger.With("system", "relational"),
	}
}

// Exists reports whether an invoice row exists for name. In strict mode the
// latest invoice for name must also have at least one usage detail.
func (s *Store) Exists(ctx context.Context, name string, strict bool) (bool, error) {
	if !strict {
		return repository.Exists(ctx, s.db,
			s.dialect.Rebind(`SELECT 1 FROM invoices WHERE pdf_name = ?`), name)
	}

	return repository.Exists(ctx, s.db, s.dialect.Rebind(`
		SELECT 1 FROM usage_details
		WHERE invoice_id = (
			SELECT id FROM invoices WHERE pdf_name = ? ORDER BY processed_at DESC, id DESC LIMIT 1
		)
		LIMIT 1`), name)
}

// Find returns the invoice for name with its usage details.
func (s *Store) Find(ctx context.Context, name string) (*Invoice, error) {
	q, args := query.NewBuilder(invoiceProjection).WhereEquals("pdf_name", name).Build()

	inv, err := repository.QueryOne(ctx, s.db, s.dialect.Rebind(q), args, scanInvoice)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	usage, err := repository.QueryMany(ctx, s.db, s.dialect.Rebind(`
		SELECT id, category, date, time, to_number, duration, amount
		FROM usage_details
		WHERE invoice_id = ?
		ORDER BY id`), []any{inv.ID}, scanUsageDetail)
	if err != nil {
		return nil, fmt.Errorf("query usage details: %w", err)
	}

	inv.Usage = usage
	return &inv, nil
}

// List returns a page of invoices, newest first unless page.Sort names
// other columns. The search term matches the document name or account number.
func (s *Store) List(ctx context.Context, page pagination.PageRequest) (*pagination.PageResult[Invoice], error) {
	b := query.NewBuilder(invoiceProjection, defaultSort...).
		WhereSearch(page.SearchPattern(), "pdf_name", "account_number").
		OrderBy(query.ParseSortFields(page.Sort))

	countSQL, countArgs := b.BuildCount()

	var total int
	if err := s.db.QueryRowContext(ctx, s.dialect.Rebind(countSQL), countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count invoices: %w", err)
	}

	pageSQL, pageArgs := b.BuildPage(page.PageSize, page.Offset())

	invoices, err := repository.QueryMany(ctx, s.db, s.dialect.Rebind(pageSQL), pageArgs, scanInvoice)
	if err != nil {
		return nil, fmt.Errorf("query invoices: %w", err)
	}

	result := pagination.NewPageResult(invoices, total, page.Page, page.PageSize)
	return &result, nil
}

// Delete removes the invoice for name and its usage details.
func (s *Store) Delete(ctx context.Context, name string) error {
	_, err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) (struct{}, error) {
		if _, err := tx.ExecContext(ctx, s.dialect.Rebind(`
			DELETE FROM usage_details
			WHERE invoice_id IN (SELECT id FROM invoices WHERE pdf_name = ?)`), name,
		); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, repository.ExecExpectOne(ctx, tx,
			s.dialect.Rebind(`DELETE FROM invoices WHERE pdf_name = ?`), name)
	})
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	s.logger.Info("invoice deleted", "pdf_name", name)
	return nil
}
