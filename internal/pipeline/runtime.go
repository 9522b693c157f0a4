package pipeline

import (
	"log/slog"

	"github.com/gavelhq/gavel/internal/attacker"
	"github.com/gavelhq/gavel/internal/auditor"
	"github.com/gavelhq/gavel/internal/audits"
	"github.com/gavelhq/gavel/internal/config"
	"github.com/gavelhq/gavel/internal/documents"
	"github.com/gavelhq/gavel/internal/issues"
	"github.com/gavelhq/gavel/internal/lawentries"
	"github.com/gavelhq/gavel/internal/projects"
	"github.com/gavelhq/gavel/internal/retriever"
)

// Runtime bundles the dependencies that pipeline nodes require.
// It is constructed by higher-level composition code from Infrastructure and
// Domain systems. Retriever, Attacker, and Auditor may be backed by a nil
// generator; the corresponding stage then takes its degraded path.
type Runtime struct {
	Projects  projects.System
	Documents documents.System
	Laws      lawentries.System
	Retriever retriever.System
	Attacker  attacker.System
	Auditor   auditor.System
	Audits    audits.System
	Issues    issues.System
	Config    config.PipelineConfig
	Logger    *slog.Logger
}
