// Package pipeline orchestrates one audit run as a state graph:
// resolve → retrieve → attack → adjudicate. Retrieval and generation stages
// degrade to mock output when their collaborator is unavailable or times
// out; only resolve failures and persistence-wide exceptions fail the audit.
package pipeline

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/gavelhq/gavel/internal/audits"
)

// State bag keys shared across pipeline nodes.
const (
	KeyAuditID      = "audit_id"
	KeyProjectID    = "project_id"
	KeyMaxScenarios = "max_scenarios"
	KeyBill         = "bill"
	KeyDocs         = "docs"
	KeyPRD          = "prd"
	KeyTDD          = "tdd"
	KeyEntIDs       = "ent_ids"
	KeyCaseContext  = "case_context"
	KeyScenarios    = "scenarios"
	KeyIssues       = "issues"
)

// Pipeline errors.
var (
	// ErrNoDocuments fails the run before any generation: auditing nothing
	// is a caller mistake, not a degradable condition.
	ErrNoDocuments = errors.New("project has no documents")

	ErrProjectNotFound = errors.New("project not found")
	ErrInvalidRun      = errors.New("invalid run request")
)

// MapHTTPStatus maps pipeline errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrProjectNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrNoDocuments) || errors.Is(err, ErrInvalidRun) {
		return http.StatusBadRequest
	}
	if errors.Is(err, audits.ErrAlreadyRunning) {
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// RunCommand carries the parameters of one pipeline invocation.
type RunCommand struct {
	ProjectID    uuid.UUID `json:"project_id"`
	MaxScenarios int       `json:"max_scenarios,omitempty"`
	Bill         string    `json:"bill,omitempty"`
	Background   bool      `json:"background,omitempty"`
}

// IssueRef is the per-scenario summary returned in the pipeline result.
type IssueRef struct {
	IssueID         uuid.UUID `json:"issue_id"`
	ConvID          uuid.UUID `json:"conv_id"`
	Reason          string    `json:"reason"`
	ClarificationQn string    `json:"clarification_qn"`
}

// Result aggregates one completed pipeline run. Count may be smaller than
// the scenario batch: partial success is success.
type Result struct {
	AuditID   uuid.UUID   `json:"audit_id"`
	ProjectID uuid.UUID   `json:"project_id"`
	DocIDs    []uuid.UUID `json:"doc_ids"`
	EntIDs    []int64     `json:"ent_ids"`
	Issues    []IssueRef  `json:"issues"`
	Count     int         `json:"count"`
}

// Started is the immediate response for a background invocation; the client
// polls the audit status endpoint for progress.
type Started struct {
	Started bool      `json:"started"`
	AuditID uuid.UUID `json:"audit_id"`
	Status  string    `json:"status"`
}
