// Package pdftext turns an uploaded PDF into the plain text the extractor reads.
package pdftext

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var (
	ErrInvalidPDF = errors.New("invalid pdf")
	ErrNoText     = errors.New("pdf has no extractable text")
)

// Text is the concatenated page text of one document.
type Text struct {
	Content string
	Pages   int
	Skipped int
}

// Extractor reads PDFs from the local filesystem.
type Extractor struct {
	logger *slog.Logger
}

// New creates an Extractor.
func New(logger *slog.Logger) *Extractor {
	return &Extractor{logger: logger.With("system", "pdftext")}
}

// Extract validates the file at path and returns its text. Pages are joined
// with newlines; pages without text are skipped.
func (e *Extractor) Extract(ctx context.Context, path string) (Text, error) {
	cfg := model.NewDefaultConfiguration()
	cfg.ValidationMode = model.ValidationRelaxed

	if err := api.ValidateFile(path, cfg); err != nil {
		return Text{}, fmt.Errorf("%w: %w", ErrInvalidPDF, err)
	}

	count, err := api.PageCountFile(path)
	if err != nil {
		return Text{}, fmt.Errorf("%w: page count: %w", ErrInvalidPDF, err)
	}

	f, r, err := pdf.Open(path)
	if err != nil {
		return Text{}, fmt.Errorf("%w: %w", ErrInvalidPDF, err)
	}
	defer f.Close()

	pages := make([]string, 0, count)
	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return Text{}, err
		}

		p := r.Page(i)
		if p.V.IsNull() {
			pages = append(pages, "")
			continue
		}

		content, err := p.GetPlainText(nil)
		if err != nil {
			e.logger.Warn("page text unavailable", "path", path, "page", i, "error", err)
			content = ""
		}
		pages = append(pages, content)
	}

	text := Join(pages)
	text.Pages = count

	if text.Content == "" {
		return text, ErrNoText
	}

	e.logger.Debug("text extracted", "path", path, "pages", count, "skipped", text.Skipped)
	return text, nil
}

// Join concatenates page texts with newlines, skipping blank pages.
func Join(pages []string) Text {
	kept := make([]string, 0, len(pages))
	for _, p := range pages {
		if strings.TrimSpace(p) == "" {
			continue
		}
		kept = append(kept, p)
	}

	return Text{
		Content: strings.Join(kept, "\n"),
		Pages:   len(pages),
		Skipped: len(pages) - len(kept),
	}
}
