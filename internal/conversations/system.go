package conversations

import (
	"context"

	"github.com/google/uuid"
)

// System defines the public contract for conversation operations.
type System interface {
	Handler() *Handler

	Find(ctx context.Context, convID uuid.UUID) (*Conversation, error)
	ByIssue(ctx context.Context, issueID uuid.UUID) (*Conversation, error)

	// Messages returns the conversation history, oldest first.
	Messages(ctx context.Context, convID uuid.UUID) ([]Message, error)

	// Append adds a message of the given type to the conversation.
	Append(ctx context.Context, convID uuid.UUID, msgType, content string) (*Message, error)

	// Adjudicate re-evaluates a flagged issue: the agent reviews the issue,
	// the cited law, the resolved evidence, and the conversation transcript,
	// replies into the conversation, and may move the issue's status.
	Adjudicate(ctx context.Context, issueID uuid.UUID) (*Adjudication, error)
}
