package invoices

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/invoicer/internal/docstore"
	"github.com/JaimeStill/invoicer/internal/dualwrite"
	"github.com/JaimeStill/invoicer/internal/lease"
	"github.com/JaimeStill/invoicer/internal/pdftext"
	"github.com/JaimeStill/invoicer/internal/relational"
	"github.com/JaimeStill/invoicer/internal/verify"
	"github.com/JaimeStill/invoicer/pkg/pagination"
	"github.com/JaimeStill/invoicer/pkg/storage"
)

// TextExtractor reads the text layer of a PDF.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (pdftext.Text, error)
}

// Pipeline runs the dual write for one document.
type Pipeline interface {
	Process(ctx context.Context, in dualwrite.Input) dualwrite.Outcome
}

// Verifier confirms a document is visible in both stores.
type Verifier interface {
	Confirm(ctx context.Context, name string) verify.Report
	CheckStrict(ctx context.Context, name string, strict bool) verify.Report
}

// Archiver keeps processed source files.
type Archiver interface {
	Archive(ctx context.Context, localPath, name string) (string, error)
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	Remove(ctx context.Context, name string) error
}

// InvoiceStore reads and deletes relational invoices.
type InvoiceStore interface {
	List(ctx context.Context, page pagination.PageRequest) (*pagination.PageResult[relational.Invoice], error)
	Find(ctx context.Context, name string) (*relational.Invoice, error)
	Delete(ctx context.Context, name string) error
}

// DocumentStore reads and deletes stored documents.
type DocumentStore interface {
	Find(ctx context.Context, id string) (*docstore.Document, error)
	Delete(ctx context.Context, id string) error
}

// Deps are the collaborators of the invoice service.
type Deps struct {
	Texts     TextExtractor
	Pipeline  Pipeline
	Verifier  Verifier
	Locker    lease.Locker
	Archiver  Archiver
	Invoices  InvoiceStore
	Documents DocumentStore
}

type service struct {
	Deps
	uploadDir  string
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates the invoice service. Uploads are written to uploadDir.
func New(
	deps Deps,
	uploadDir string,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &service{
		Deps:       deps,
		uploadDir:  uploadDir,
		logger:     logger.With("system", "invoices"),
		pagination: pagination,
	}
}

func (s *service) Handler(maxUploadSize int64) *Handler {
	return NewHandler(s, s.logger, s.pagination, maxUploadSize)
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SanitizeName reduces an uploaded filename to a safe base name. It returns
// ErrInvalidFile unless the result is a non-empty .pdf name.
func SanitizeName(filename string) (string, error) {
	name := filepath.Base(strings.ReplaceAll(filename, `\`, "/"))
	name = strings.Trim(unsafeChars.ReplaceAllString(name, "_"), "._")

	ext := filepath.Ext(name)
	if !strings.EqualFold(ext, ".pdf") || len(name) == len(ext) {
		return "", ErrInvalidFile
	}
	return name, nil
}

func (s *service) Upload(ctx context.Context, filename string, r io.Reader) (Result, error) {
	name, err := SanitizeName(filename)
	if err != nil {
		return Result{}, err
	}

	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("create upload dir: %w", err)
	}

	stem := strings.TrimSuffix(name, filepath.Ext(name))
	path := filepath.Join(s.uploadDir, fmt.Sprintf("%s_%s.pdf", stem, uuid.NewString()[:8]))

	f, err := os.Create(path)
	if err != nil {
		return Result{}, fmt.Errorf("save upload: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return Result{}, fmt.Errorf("save upload: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return Result{}, fmt.Errorf("save upload: %w", err)
	}

	s.logger.Info("upload saved", "pdf_name", name, "path", path)
	return s.Process(ctx, path, name), nil
}

func (s *service) Process(ctx context.Context, path, name string) Result {
	start := time.Now()
	out := s.process(ctx, path, name, start, &Result{PDFName: name})
	out.Seconds = time.Since(start).Seconds()

	s.logger.Info("document processed",
		"pdf_name", name,
		"status", out.Status,
		"state", out.State,
		"seconds", out.Seconds,
	)
	return out
}

func (s *service) process(ctx context.Context, path, name string, start time.Time, res *Result) Result {
	l, err := s.Locker.Acquire(ctx, name)
	if err != nil {
		if errors.Is(err, lease.ErrHeld) {
			return res.fail(StatusBusy, err)
		}
		res.Retryable = true
		return res.fail(StatusPersistenceFailed, err)
	}
	defer func() {
		if err := l.Release(context.WithoutCancel(ctx)); err != nil {
			s.logger.Warn("lease release failed", "pdf_name", name, "error", err)
		}
	}()

	text, err := s.Texts.Extract(ctx, path)
	if err != nil {
		return res.fail(StatusExtractionFailed, err)
	}

	out := s.Pipeline.Process(ctx, dualwrite.Input{
		Path:      path,
		Name:      name,
		Text:      text.Content,
		StartedAt: start,
	})
	res.State = out.State
	res.InvoiceID = out.InvoiceID
	res.DocumentID = out.DocumentID

	if !out.Succeeded() {
		if out.State == dualwrite.StateExtractionFailed {
			return res.fail(StatusExtractionFailed, out.Err)
		}
		res.Retryable = out.Retryable()
		return res.fail(StatusPersistenceFailed, out.Err)
	}

	report := s.Verifier.Confirm(ctx, name)
	res.Verification = &report
	res.Success = true

	if !report.Confirmed() {
		res.Status = StatusDelayed
		return *res
	}

	res.Status = StatusConfirmed
	key, err := s.Archiver.Archive(ctx, path, name)
	if err != nil {
		s.logger.Warn("archive failed", "pdf_name", name, "error", err)
		return *res
	}
	res.Archived = key
	return *res
}

func (s *service) List(ctx context.Context, page pagination.PageRequest) (*pagination.PageResult[relational.Invoice], error) {
	page.Normalize(s.pagination)
	return s.Invoices.List(ctx, page)
}

func (s *service) Find(ctx context.Context, name string) (*relational.Invoice, error) {
	return s.Invoices.Find(ctx, name)
}

func (s *service) Document(ctx context.Context, name string) (*docstore.Document, error) {
	return s.Documents.Find(ctx, name)
}

func (s *service) File(ctx context.Context, name string) (io.ReadCloser, error) {
	return s.Archiver.Open(ctx, name)
}

func (s *service) Verify(ctx context.Context, name string, strict bool) verify.Report {
	return s.Verifier.CheckStrict(ctx, name, strict)
}

// Delete removes the invoice from both stores and drops the archived file.
// It returns ErrNotFound only when neither store held the document.
func (s *service) Delete(ctx context.Context, name string) error {
	l, err := s.Locker.Acquire(ctx, name)
	if err != nil {
		return err
	}
	defer l.Release(context.WithoutCancel(ctx))

	var errs []error
	missing := 0

	if err := s.Invoices.Delete(ctx, name); err != nil {
		if errors.Is(err, relational.ErrNotFound) {
			missing++
		} else {
			errs = append(errs, err)
		}
	}

	if err := s.Documents.Delete(ctx, name); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			missing++
		} else {
			errs = append(errs, err)
		}
	}

	if err := s.Archiver.Remove(ctx, name); err != nil && !errors.Is(err, storage.ErrNotFound) {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	if missing == 2 {
		return ErrNotFound
	}

	s.logger.Info("invoice removed", "pdf_name", name)
	return nil
}
