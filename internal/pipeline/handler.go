package pipeline

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gavelhq/gavel/pkg/handlers"
	"github.com/gavelhq/gavel/pkg/routes"
)

// Handler provides the HTTP endpoint that triggers an audit run.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "pipeline"),
	}
}

// Routes returns the audit-scoped run route.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/audits",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/run", Handler: h.Run},
		},
	}
}

// Run triggers a pipeline run from a JSON body. With background=true the
// response carries the audit id to poll; otherwise the full result.
func (h *Handler) Run(w http.ResponseWriter, r *http.Request) {
	var cmd RunCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRun)
		return
	}

	if cmd.Background {
		started, err := h.sys.RunDetached(r.Context(), cmd)
		if err != nil {
			handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
			return
		}
		handlers.RespondJSON(w, http.StatusAccepted, started)
		return
	}

	result, err := h.sys.Run(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
