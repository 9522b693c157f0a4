package api

import (
	"github.com/gavelhq/gavel/internal/config"
	"github.com/gavelhq/gavel/internal/infrastructure"
	"github.com/gavelhq/gavel/pkg/pagination"
)

// Runtime extends Infrastructure with API-specific configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	Pagination pagination.Config
	Pipeline   config.PipelineConfig
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle: infra.Lifecycle,
			Logger:    infra.Logger.With("module", "api"),
			Database:  infra.Database,
			Generator: infra.Generator,
			Embedder:  infra.Embedder,
			Reranker:  infra.Reranker,
		},
		Pagination: cfg.API.Pagination,
		Pipeline:   cfg.Pipeline,
	}
}
