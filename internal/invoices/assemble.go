package invoices

import (
	"log/slog"

	"github.com/JaimeStill/invoicer/internal/archive"
	"github.com/JaimeStill/invoicer/internal/config"
	"github.com/JaimeStill/invoicer/internal/dualwrite"
	"github.com/JaimeStill/invoicer/internal/infrastructure"
	"github.com/JaimeStill/invoicer/internal/pdftext"
	"github.com/JaimeStill/invoicer/internal/relational"
	"github.com/JaimeStill/invoicer/internal/verify"
	"github.com/JaimeStill/invoicer/pkg/pagination"
)

// FromInfrastructure wires the invoice service over the shared systems.
// The server and the batch runner both build their service here.
func FromInfrastructure(
	infra *infrastructure.Infrastructure,
	cfg *config.PipelineConfig,
	page pagination.Config,
	logger *slog.Logger,
) System {
	db := infra.Database.Connection()
	dialect := infra.Database.Dialect()

	store := relational.NewStore(db, dialect, logger)
	persister := relational.NewPersister(dialect, cfg.DuplicatePolicy(), logger)

	deps := Deps{
		Texts:     pdftext.New(logger),
		Pipeline:  dualwrite.New(db, persister, infra.Docstore, logger),
		Verifier:  verify.New(store, infra.Docstore, cfg.VerifyOptions(), logger),
		Locker:    infra.Lease,
		Archiver:  archive.New(infra.Storage, logger),
		Invoices:  store,
		Documents: infra.Docstore,
	}

	return New(deps, cfg.UploadDir, logger, page)
}
