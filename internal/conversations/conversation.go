// Package conversations implements the per-issue discussion thread: one
// Conversation per Issue, append-only Messages, and agent adjudication of a
// flagged issue against the conversation transcript.
package conversations

import (
	"time"

	"github.com/google/uuid"
)

// Message author types.
const (
	TypeUser = "user"
	TypeAI   = "ai"
)

// Conversation is the 1:1 discussion thread for an issue, created in the
// same transaction as the issue itself.
type Conversation struct {
	ConvID    uuid.UUID `json:"conv_id"`
	AuditID   uuid.UUID `json:"audit_id"`
	IssueID   uuid.UUID `json:"issue_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Message is one entry in a conversation, ordered by created_at ascending.
type Message struct {
	MsgID     uuid.UUID `json:"msg_id"`
	ConvID    uuid.UUID `json:"conv_id"`
	Type      string    `json:"type"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Adjudication is the agent's verdict after reviewing a flagged issue with
// its conversation transcript.
type Adjudication struct {
	AgentResponseMessage string `json:"agent_response_message"`
	NewStatus            string `json:"new_status"`
}
