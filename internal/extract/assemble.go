package extract

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/JaimeStill/invoicer/internal/invoice"
)

var (
	// ErrExtractionFailed is wrapped by every reason a document yields no record.
	ErrExtractionFailed = errors.New("extraction failed")
	ErrNoDocumentID     = fmt.Errorf("%w: document name is empty", ErrExtractionFailed)
	ErrNoHeader         = fmt.Errorf("%w: no header fields recognized", ErrExtractionFailed)
	ErrNoUsage          = fmt.Errorf("%w: usage section not found", ErrExtractionFailed)
	ErrEmptyUsage       = fmt.Errorf("%w: usage section has no summaries or records", ErrExtractionFailed)
)

// Assemble builds the canonical record for the document at pdfPath from its
// extracted text. The record is stamped with now.
func Assemble(pdfPath, rawText string, now time.Time) (invoice.Record, error) {
	id := documentID(pdfPath)
	if id == "" {
		return invoice.Record{}, ErrNoDocumentID
	}

	header, _ := ExtractHeader(rawText)
	if header.Empty() {
		return invoice.Record{}, ErrNoHeader
	}

	usage, ok := ExtractUsage(rawText)
	if !ok {
		return invoice.Record{}, ErrNoUsage
	}
	if usage.Empty() {
		return invoice.Record{}, ErrEmptyUsage
	}

	return invoice.Record{
		DocumentID:  id,
		ProcessedAt: now,
		Header:      header,
		Usage:       usage,
	}, nil
}

func documentID(path string) string {
	base := filepath.Base(path)
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	return base
}
