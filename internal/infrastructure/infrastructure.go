// Package infrastructure provides core service initialization for application startup.
// It assembles common dependencies (logging, database, generation, retrieval)
// that domain systems require.
package infrastructure

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/gavelhq/gavel/internal/config"
	"github.com/gavelhq/gavel/pkg/database"
	"github.com/gavelhq/gavel/pkg/embedding"
	"github.com/gavelhq/gavel/pkg/genai"
	"github.com/gavelhq/gavel/pkg/lifecycle"
	"github.com/gavelhq/gavel/pkg/retrieval"
)

// Infrastructure holds the core systems required by all domain modules.
// It provides a single point of initialization for lifecycle coordination,
// logging, database access, and the generation/retrieval collaborators.
// Reranker is nil when reranking is disabled; dependent systems fall back to
// truncation.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Database  database.System
	Generator genai.Generator
	Embedder  embedding.Embedder
	Reranker  retrieval.Reranker
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	db, err := database.New(&cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}

	return &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		Database:  db,
		Generator: genai.New(cfg.Agent, logger),
		Embedder:  embedding.New(&cfg.Embedding, logger),
		Reranker:  retrieval.NewCohereReranker(&cfg.Rerank, logger),
	}, nil
}

// Start registers all infrastructure systems with the lifecycle coordinator.
func (i *Infrastructure) Start() error {
	if err := i.Database.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("database start failed: %w", err)
	}
	return nil
}
