package api

import (
	"net/http"

	"github.com/JaimeStill/invoicer/internal/config"
	"github.com/JaimeStill/invoicer/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
	runtime *Runtime,
) {
	patterns := routes.Register(
		mux,
		domain.Invoices.Handler(cfg.API.MaxUploadSizeBytes()).Routes(),
		newClientErrorHandler(runtime.Logger).routes(),
	)

	runtime.Logger.Debug("routes registered", "base_path", cfg.API.BasePath, "patterns", patterns)
}
