package api

import (
	"github.com/JaimeStill/invoicer/internal/config"
	"github.com/JaimeStill/invoicer/internal/infrastructure"
	"github.com/JaimeStill/invoicer/pkg/pagination"
)

// Runtime extends Infrastructure with API-specific configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	Pipeline   config.PipelineConfig
	Pagination pagination.Config
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	scoped := *infra
	scoped.Logger = infra.Logger.With("module", "api")

	return &Runtime{
		Infrastructure: &scoped,
		Pipeline:       cfg.Pipeline,
		Pagination:     cfg.API.Pagination,
	}
}
