package invoices

import (
	"context"
	"io"

	"github.com/JaimeStill/invoicer/internal/docstore"
	"github.com/JaimeStill/invoicer/internal/relational"
	"github.com/JaimeStill/invoicer/internal/verify"
	"github.com/JaimeStill/invoicer/pkg/pagination"
)

// System defines the public contract for invoice processing and lookup.
type System interface {
	Handler(maxUploadSize int64) *Handler

	// Upload saves r under the uploads directory and processes it.
	Upload(ctx context.Context, filename string, r io.Reader) (Result, error)

	// Process runs a document already on disk. name is the document name
	// recorded in both stores.
	Process(ctx context.Context, path, name string) Result

	List(ctx context.Context, page pagination.PageRequest) (*pagination.PageResult[relational.Invoice], error)
	Find(ctx context.Context, name string) (*relational.Invoice, error)
	Document(ctx context.Context, name string) (*docstore.Document, error)
	File(ctx context.Context, name string) (io.ReadCloser, error)
	Verify(ctx context.Context, name string, strict bool) verify.Report
	Delete(ctx context.Context, name string) error
}
