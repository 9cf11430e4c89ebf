package invoices

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/invoicer/internal/docstore"
	"github.com/JaimeStill/invoicer/internal/lease"
	"github.com/JaimeStill/invoicer/internal/relational"
	"github.com/JaimeStill/invoicer/pkg/storage"
)

// Domain errors for invoice operations.
var (
	ErrInvalidFile  = errors.New("invalid file: only .pdf uploads are accepted")
	ErrFileTooLarge = errors.New("file exceeds maximum upload size")
	ErrNotFound     = errors.New("invoice not found")
)

// MapHTTPStatus maps invoice, store, and storage errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, relational.ErrNotFound),
		errors.Is(err, docstore.ErrNotFound),
		errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidFile),
		errors.Is(err, storage.ErrEmptyKey),
		errors.Is(err, storage.ErrInvalidKey):
		return http.StatusBadRequest
	case errors.Is(err, ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, relational.ErrDuplicate),
		errors.Is(err, lease.ErrHeld):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
