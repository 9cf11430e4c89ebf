// Package archive moves processed source documents out of the upload area
// into blob storage under the processed/ prefix.
package archive

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"github.com/JaimeStill/invoicer/pkg/storage"
)

// Prefix is the storage key prefix for archived documents.
const Prefix = "processed"

// Archiver stores processed PDFs and serves them back by document name.
type Archiver struct {
	store  storage.System
	logger *slog.Logger
}

// New creates an Archiver over store.
func New(store storage.System, logger *slog.Logger) *Archiver {
	return &Archiver{
		store:  store,
		logger: logger.With("system", "archive"),
	}
}

// Key returns the storage key for a document name.
func Key(name string) string {
	return path.Join(Prefix, name)
}

// Archive uploads the file at localPath as name and removes the local copy.
// The local file is kept when the upload fails.
func (a *Archiver) Archive(ctx context.Context, localPath, name string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", filepath.Base(localPath), err)
	}

	key := Key(name)
	err = a.store.Upload(ctx, key, f, "application/pdf")
	f.Close()
	if err != nil {
		return "", fmt.Errorf("archive %s: %w", name, err)
	}

	if err := os.Remove(localPath); err != nil {
		a.logger.Warn("local copy not removed", "path", localPath, "error", err)
	}

	a.logger.Info("document archived", "pdf_name", name, "key", key)
	return key, nil
}

// Open streams an archived document. The caller must close the reader.
func (a *Archiver) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	return a.store.Download(ctx, Key(name))
}

// Remove deletes an archived document.
func (a *Archiver) Remove(ctx context.Context, name string) error {
	return a.store.Delete(ctx, Key(name))
}
