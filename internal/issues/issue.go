// Package issues implements the compliance finding aggregate. One Issue
// records the auditor's judgment for one attack scenario: the primary cited
// law, the reasoning, and evidence spans pointing back into the project's
// documents.
package issues

import (
	"time"

	"github.com/google/uuid"
)

// Issue status values. open is the initial state; adjudication moves an
// issue to document (confirmed, needs documentation) or resolved.
const (
	StatusOpen     = "open"
	StatusDocument = "document"
	StatusResolved = "resolved"
)

// SentinelEntID marks an issue whose scenario produced no law citations.
const SentinelEntID int64 = -1

// Issue is one persisted compliance finding. Evidence maps document ids to
// the span ids supporting the reasoning; it may be empty.
type Issue struct {
	IssueID          uuid.UUID           `json:"issue_id"`
	AuditID          uuid.UUID           `json:"audit_id"`
	EntID            int64               `json:"ent_id"`
	IssueDescription string              `json:"issue_description"`
	Evidence         map[uuid.UUID][]int `json:"evidence"`
	ClarificationQn  string              `json:"clarification_qn"`
	Status           string              `json:"status"`
	CreatedAt        time.Time           `json:"created_at"`
}

// CreateCommand carries the fields for persisting a new issue.
type CreateCommand struct {
	AuditID          uuid.UUID           `json:"audit_id"`
	EntID            int64               `json:"ent_id"`
	IssueDescription string              `json:"issue_description"`
	Evidence         map[uuid.UUID][]int `json:"evidence"`
	ClarificationQn  string              `json:"clarification_qn"`
}

// Seeded is the result of creating an issue together with its conversation.
type Seeded struct {
	Issue          Issue     `json:"issue"`
	ConversationID uuid.UUID `json:"conversation_id"`
}

// Highlight is one resolved evidence range in a document's canonical text.
type Highlight struct {
	DocumentID uuid.UUID `json:"document_id"`
	Start      int       `json:"start"`
	End        int       `json:"end"`
	Text       string    `json:"text"`
}

// HighlightResult is the UI payload for an issue's evidence: the resolved
// ranges plus the reasoning and clarification question they support.
type HighlightResult struct {
	IssueID         uuid.UUID   `json:"issue_id"`
	Reason          string      `json:"reason"`
	ClarificationQn string      `json:"clarification_qn"`
	Highlights      []Highlight `json:"highlights"`
}
