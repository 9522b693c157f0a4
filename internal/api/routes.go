package api

import (
	"net/http"

	"github.com/gavelhq/gavel/pkg/routes"
)

func registerRoutes(mux *http.ServeMux, domain *Domain) {
	projectsHandler := domain.Projects.Handler()
	documentsHandler := domain.Documents.Handler()
	auditsHandler := domain.Audits.Handler()
	issuesHandler := domain.Issues.Handler()
	conversationsHandler := domain.Conversations.Handler()

	routes.Register(
		mux,
		projectsHandler.Routes(),
		documentsHandler.Routes(),
		documentsHandler.ProjectRoutes(),
		domain.Laws.Handler().Routes(),
		domain.Cases.Handler().Routes(),
		auditsHandler.Routes(),
		auditsHandler.ProjectRoutes(),
		domain.Pipeline.Handler().Routes(),
		issuesHandler.Routes(),
		conversationsHandler.Routes(),
		conversationsHandler.IssueRoutes(),
		domain.Reports.Handler().Routes(),
	)
}
