package issues

import (
	"context"

	"github.com/google/uuid"
)

// System defines the public contract for the issue aggregate.
type System interface {
	Handler() *Handler

	// CreateWithConversation persists the issue, its 1:1 conversation, and
	// the seed AI message in a single transaction, so a crash can never
	// leave an issue without a conversation.
	CreateWithConversation(ctx context.Context, cmd CreateCommand, seedMessage string) (*Seeded, error)

	Find(ctx context.Context, issueID uuid.UUID) (*Issue, error)
	ByAudit(ctx context.Context, auditID uuid.UUID) ([]Issue, error)
	UpdateStatus(ctx context.Context, issueID uuid.UUID, status string) (*Issue, error)

	// Highlights resolves the issue's evidence spans to character offsets in
	// the owning documents' canonical text. Spans that no longer match are
	// dropped silently.
	Highlights(ctx context.Context, issueID uuid.UUID) (*HighlightResult, error)
}
