package storage_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/JaimeStill/invoicer/pkg/storage"
)

const azuriteConnString = "DefaultEndpointsProtocol=http;AccountName=devstoreaccount1;AccountKey=Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw==;BlobEndpoint=http://127.0.0.1:10000/devstoreaccount1;"

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func localSystem(t *testing.T) storage.System {
	t.Helper()
	cfg := &storage.Config{Backend: storage.BackendLocal, Root: t.TempDir()}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatal(err)
	}
	sys, err := storage.New(cfg, discard())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return sys
}

func TestNewAzure(t *testing.T) {
	tests := []struct {
		name    string
		conn    string
		wantErr bool
	}{
		{"valid connection string", azuriteConnString, false},
		{"invalid connection string", "not-a-connection-string", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &storage.Config{
				Backend:          storage.BackendAzure,
				ContainerName:    "invoices",
				ConnectionString: tt.conn,
			}

			sys, err := storage.New(cfg, discard())
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && sys == nil {
				t.Fatal("New() returned nil system")
			}
		})
	}
}

func TestNewUnknownBackend(t *testing.T) {
	if _, err := storage.New(&storage.Config{Backend: "s3"}, discard()); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestLocalRoundTrip(t *testing.T) {
	sys := localSystem(t)
	ctx := context.Background()
	key := "processed/inv_001.pdf"

	ok, err := sys.Exists(ctx, key)
	if err != nil || ok {
		t.Fatalf("Exists() before upload = %v, %v", ok, err)
	}

	if err := sys.Upload(ctx, key, bytes.NewReader([]byte("%PDF-1.4")), "application/pdf"); err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	ok, err = sys.Exists(ctx, key)
	if err != nil || !ok {
		t.Fatalf("Exists() after upload = %v, %v", ok, err)
	}

	rc, err := sys.Download(ctx, key)
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if string(data) != "%PDF-1.4" {
		t.Errorf("Download() = %q", data)
	}

	if err := sys.Delete(ctx, key); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := sys.Delete(ctx, key); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
	if _, err := sys.Download(ctx, key); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Download() after delete error = %v, want ErrNotFound", err)
	}
}

func TestKeyValidation(t *testing.T) {
	sys := localSystem(t)
	ctx := context.Background()

	tests := []struct {
		name string
		key  string
		want error
	}{
		{"empty key", "", storage.ErrEmptyKey},
		{"traversal", "../etc/passwd", storage.ErrInvalidKey},
		{"nested traversal", "processed/../../x", storage.ErrInvalidKey},
		{"absolute", "/etc/passwd", storage.ErrInvalidKey},
		{"backslash", `processed\a.pdf`, storage.ErrInvalidKey},
		{"unclean", "processed//a.pdf", storage.ErrInvalidKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := sys.Upload(ctx, tt.key, bytes.NewReader(nil), "application/pdf"); !errors.Is(err, tt.want) {
				t.Errorf("Upload() error = %v, want %v", err, tt.want)
			}
			if _, err := sys.Download(ctx, tt.key); !errors.Is(err, tt.want) {
				t.Errorf("Download() error = %v, want %v", err, tt.want)
			}
			if err := sys.Delete(ctx, tt.key); !errors.Is(err, tt.want) {
				t.Errorf("Delete() error = %v, want %v", err, tt.want)
			}
			if _, err := sys.Exists(ctx, tt.key); !errors.Is(err, tt.want) {
				t.Errorf("Exists() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestConfigFinalize(t *testing.T) {
	tests := []struct {
		name    string
		cfg     storage.Config
		env     map[string]string
		wantErr bool
		check   func(*testing.T, storage.Config)
	}{
		{
			name: "defaults to local",
			check: func(t *testing.T, c storage.Config) {
				if c.Backend != storage.BackendLocal || c.Root != "storage" {
					t.Errorf("defaults = %+v", c)
				}
			},
		},
		{
			name:    "azure requires connection string or service url",
			cfg:     storage.Config{Backend: storage.BackendAzure},
			wantErr: true,
		},
		{
			name: "azure accepts service url",
			cfg: storage.Config{
				Backend:    storage.BackendAzure,
				ServiceURL: "https://account.blob.core.windows.net/",
			},
			check: func(t *testing.T, c storage.Config) {
				if c.ContainerName != "invoices" {
					t.Errorf("container default = %q", c.ContainerName)
				}
			},
		},
		{
			name: "env selects azure",
			env: map[string]string{
				"TEST_STORAGE_BACKEND": "azure",
				"TEST_STORAGE_CONN":    azuriteConnString,
			},
			check: func(t *testing.T, c storage.Config) {
				if c.Backend != storage.BackendAzure || c.ConnectionString != azuriteConnString {
					t.Errorf("env not applied: %+v", c)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cfg := tt.cfg
			err := cfg.Finalize(&storage.Env{
				Backend:          "TEST_STORAGE_BACKEND",
				ConnectionString: "TEST_STORAGE_CONN",
			})
			if (err != nil) != tt.wantErr {
				t.Fatalf("Finalize() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}
