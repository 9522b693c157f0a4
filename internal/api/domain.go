package api

import (
	"github.com/gavelhq/gavel/internal/attacker"
	"github.com/gavelhq/gavel/internal/auditor"
	"github.com/gavelhq/gavel/internal/audits"
	"github.com/gavelhq/gavel/internal/casestudies"
	"github.com/gavelhq/gavel/internal/conversations"
	"github.com/gavelhq/gavel/internal/documents"
	"github.com/gavelhq/gavel/internal/issues"
	"github.com/gavelhq/gavel/internal/lawentries"
	"github.com/gavelhq/gavel/internal/pipeline"
	"github.com/gavelhq/gavel/internal/projects"
	"github.com/gavelhq/gavel/internal/reports"
	"github.com/gavelhq/gavel/internal/retriever"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Projects      projects.System
	Documents     documents.System
	Laws          lawentries.System
	Cases         casestudies.System
	Audits        audits.System
	Issues        issues.System
	Conversations conversations.System
	Reports       reports.System
	Pipeline      pipeline.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	db := runtime.Database.Connection()
	attempts := runtime.Pipeline.RetryAttempts
	retryBase := runtime.Pipeline.RetryBaseDuration()

	projectsSystem := projects.New(db, runtime.Logger, runtime.Pagination)
	documentsSystem := documents.New(db, runtime.Logger, runtime.Pagination)
	lawsSystem := lawentries.New(db, runtime.Embedder, runtime.Logger)
	casesSystem := casestudies.New(db, runtime.Embedder, runtime.Logger)
	auditsSystem := audits.New(db, runtime.Logger)
	issuesSystem := issues.New(db, documentsSystem, runtime.Logger)

	conversationsSystem := conversations.New(
		db,
		issuesSystem,
		lawsSystem,
		runtime.Generator,
		attempts,
		retryBase,
		runtime.Logger,
	)

	retrieverSystem := retriever.New(
		documentsSystem,
		lawsSystem,
		casesSystem,
		runtime.Generator,
		runtime.Embedder,
		runtime.Reranker,
		attempts,
		retryBase,
		runtime.Logger,
	)

	attackerSystem := attacker.New(lawsSystem, runtime.Generator, runtime.Logger)

	auditorSystem := auditor.New(
		lawsSystem,
		runtime.Generator,
		attempts,
		retryBase,
		runtime.Logger,
	)

	reportsSystem := reports.New(
		auditsSystem,
		projectsSystem,
		documentsSystem,
		issuesSystem,
		conversationsSystem,
		lawsSystem,
		runtime.Generator,
		attempts,
		retryBase,
		runtime.Logger,
	)

	pipelineSystem := pipeline.New(&pipeline.Runtime{
		Projects:  projectsSystem,
		Documents: documentsSystem,
		Laws:      lawsSystem,
		Retriever: retrieverSystem,
		Attacker:  attackerSystem,
		Auditor:   auditorSystem,
		Audits:    auditsSystem,
		Issues:    issuesSystem,
		Config:    runtime.Pipeline,
		Logger:    runtime.Logger,
	})

	return &Domain{
		Projects:      projectsSystem,
		Documents:     documentsSystem,
		Laws:          lawsSystem,
		Cases:         casesSystem,
		Audits:        auditsSystem,
		Issues:        issuesSystem,
		Conversations: conversationsSystem,
		Reports:       reportsSystem,
		Pipeline:      pipelineSystem,
	}
}
