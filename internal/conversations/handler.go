package conversations

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/gavelhq/gavel/pkg/handlers"
	"github.com/gavelhq/gavel/pkg/routes"
)

// Handler provides HTTP endpoints for conversation operations.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "conversations"),
	}
}

// Routes returns the route group definition for conversation endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/conversations",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/{id}/messages", Handler: h.Messages},
			{Method: "POST", Pattern: "/{id}/messages", Handler: h.PostMessage},
		},
	}
}

// IssueRoutes returns the issue-scoped adjudication route.
func (h *Handler) IssueRoutes() routes.Group {
	return routes.Group{
		Prefix: "/issues",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/{id}/adjudicate", Handler: h.Adjudicate},
		},
	}
}

// Messages returns the conversation history, oldest first.
func (h *Handler) Messages(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalid)
		return
	}

	items, err := h.sys.Messages(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, items)
}

// PostMessage appends a user message from a JSON body {"content": "..."}.
func (h *Handler) PostMessage(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalid)
		return
	}

	var body struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalid)
		return
	}

	m, err := h.sys.Append(r.Context(), id, TypeUser, body.Content)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, m)
}

// Adjudicate runs agent adjudication for the issue's conversation.
func (h *Handler) Adjudicate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalid)
		return
	}

	verdict, err := h.sys.Adjudicate(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, verdict)
}
