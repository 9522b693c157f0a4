package conversations

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/gavelhq/gavel/internal/issues"
	"github.com/gavelhq/gavel/internal/lawentries"
	"github.com/gavelhq/gavel/pkg/genai"
	"github.com/gavelhq/gavel/pkg/repository"
)

const (
	convColumns    = "conv_id, audit_id, issue_id, created_at"
	messageColumns = "msg_id, conv_id, type, content, created_at"
)

type repo struct {
	db        *sql.DB
	issues    issues.System
	laws      lawentries.System
	generator genai.Generator
	attempts  int
	retryBase time.Duration
	logger    *slog.Logger
}

// New creates a conversation repository implementing the System interface.
// generator may be nil; Adjudicate then returns ErrUnavailable.
func New(
	db *sql.DB,
	issueSys issues.System,
	laws lawentries.System,
	generator genai.Generator,
	attempts int,
	retryBase time.Duration,
	logger *slog.Logger,
) System {
	return &repo{
		db:        db,
		issues:    issueSys,
		laws:      laws,
		generator: generator,
		attempts:  attempts,
		retryBase: retryBase,
		logger:    logger.With("system", "conversations"),
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger)
}

func (r *repo) Find(ctx context.Context, convID uuid.UUID) (*Conversation, error) {
	q := fmt.Sprintf("SELECT %s FROM conversations WHERE conv_id = $1", convColumns)

	c, err := repository.QueryOne(ctx, r.db, q, []any{convID}, scanConversation)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &c, nil
}

func (r *repo) ByIssue(ctx context.Context, issueID uuid.UUID) (*Conversation, error) {
	q := fmt.Sprintf("SELECT %s FROM conversations WHERE issue_id = $1", convColumns)

	c, err := repository.QueryOne(ctx, r.db, q, []any{issueID}, scanConversation)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &c, nil
}

func (r *repo) Messages(ctx context.Context, convID uuid.UUID) ([]Message, error) {
	// conversation must exist: absent conversations are 404, not empty lists
	if _, err := r.Find(ctx, convID); err != nil {
		return nil, err
	}

	q := fmt.Sprintf(
		"SELECT %s FROM messages WHERE conv_id = $1 ORDER BY created_at",
		messageColumns,
	)

	items, err := repository.QueryMany(ctx, r.db, q, []any{convID}, scanMessage)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	return items, nil
}

func (r *repo) Append(ctx context.Context, convID uuid.UUID, msgType, content string) (*Message, error) {
	if msgType != TypeUser && msgType != TypeAI {
		return nil, fmt.Errorf("%w: message type %q", ErrInvalid, msgType)
	}
	if content == "" {
		return nil, fmt.Errorf("%w: content is required", ErrInvalid)
	}

	if _, err := r.Find(ctx, convID); err != nil {
		return nil, err
	}

	q := fmt.Sprintf(`
		INSERT INTO messages(msg_id, conv_id, type, content)
		VALUES ($1, $2, $3, $4)
		RETURNING %s`, messageColumns)

	m, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Message, error) {
		return repository.QueryOne(ctx, tx, q, []any{uuid.New(), convID, msgType, content}, scanMessage)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	return &m, nil
}

func scanConversation(s repository.Scanner) (Conversation, error) {
	var c Conversation
	err := s.Scan(
		&c.ConvID,
		&c.AuditID,
		&c.IssueID,
		&c.CreatedAt,
	)
	return c, err
}

func scanMessage(s repository.Scanner) (Message, error) {
	var m Message
	err := s.Scan(
		&m.MsgID,
		&m.ConvID,
		&m.Type,
		&m.Content,
		&m.CreatedAt,
	)
	return m, err
}
