package lawentries

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gavelhq/gavel/pkg/handlers"
	"github.com/gavelhq/gavel/pkg/routes"
)

// Handler provides HTTP endpoints for law corpus operations.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// SearchRequest is the JSON body for the hybrid search endpoint.
type SearchRequest struct {
	Query   string        `json:"query"`
	K       int           `json:"k"`
	Filters SearchFilters `json:"filters"`
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "laws"),
	}
}

// Routes returns the route group definition for law endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/laws",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.Create},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "POST", Pattern: "/search", Handler: h.Search},
		},
	}
}

// Create ingests a new law entry, computing its embedding.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var cmd CreateCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalid)
		return
	}

	e, err := h.sys.Create(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, e)
}

// Find returns a single law entry by its numeric path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	entID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalid)
		return
	}

	e, err := h.sys.Find(r.Context(), entID)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, e)
}

// Search runs the hybrid dense + lexical query from a JSON body.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalid)
		return
	}

	if req.Query == "" {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalid)
		return
	}
	if req.K < 1 {
		req.K = 10
	}

	hits, err := h.sys.Search(r.Context(), req.Query, req.K, req.Filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, hits)
}
