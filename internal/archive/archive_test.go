package archive_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/JaimeStill/invoicer/internal/archive"
	"github.com/JaimeStill/invoicer/pkg/storage"
)

func newArchiver(t *testing.T) (*archive.Archiver, string) {
	t.Helper()
	root := t.TempDir()
	cfg := &storage.Config{Backend: storage.BackendLocal, Root: root}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatal(err)
	}
	store, err := storage.New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatal(err)
	}
	return archive.New(store, slog.New(slog.NewTextHandler(io.Discard, nil))), root
}

func TestArchiveMovesFile(t *testing.T) {
	a, root := newArchiver(t)
	ctx := context.Background()

	src := filepath.Join(t.TempDir(), "inv_001_ab12cd34.pdf")
	if err := os.WriteFile(src, []byte("%PDF-1.4 body"), 0o644); err != nil {
		t.Fatal(err)
	}

	key, err := a.Archive(ctx, src, "inv_001.pdf")
	if err != nil {
		t.Fatalf("Archive() error = %v", err)
	}
	if key != "processed/inv_001.pdf" {
		t.Errorf("key = %q", key)
	}

	if _, err := os.Stat(src); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("source should be removed, stat err = %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "processed", "inv_001.pdf")); err != nil {
		t.Errorf("archived file missing: %v", err)
	}

	rc, err := a.Open(ctx, "inv_001.pdf")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != "%PDF-1.4 body" {
		t.Errorf("content = %q", data)
	}

	if err := a.Remove(ctx, "inv_001.pdf"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, err := a.Open(ctx, "inv_001.pdf"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Open() after remove error = %v, want ErrNotFound", err)
	}
}

func TestArchiveMissingSource(t *testing.T) {
	a, _ := newArchiver(t)
	if _, err := a.Archive(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"), "missing.pdf"); err == nil {
		t.Error("expected error for missing source")
	}
}
