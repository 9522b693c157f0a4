package issues

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"github.com/gavelhq/gavel/internal/documents"
	"github.com/gavelhq/gavel/pkg/repository"
	"github.com/gavelhq/gavel/pkg/spanindex"
)

const issueColumns = "issue_id, audit_id, ent_id, issue_description, evidence, clarification_qn, status, created_at"

type repo struct {
	db     *sql.DB
	docs   documents.System
	logger *slog.Logger
}

// New creates an issue repository implementing the System interface.
func New(db *sql.DB, docs documents.System, logger *slog.Logger) System {
	return &repo{
		db:     db,
		docs:   docs,
		logger: logger.With("system", "issues"),
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger)
}

func (r *repo) CreateWithConversation(ctx context.Context, cmd CreateCommand, seedMessage string) (*Seeded, error) {
	if err := validateCreate(cmd); err != nil {
		return nil, err
	}

	evidence, err := json.Marshal(evidenceOrEmpty(cmd.Evidence))
	if err != nil {
		return nil, fmt.Errorf("encode evidence: %w", err)
	}

	seeded, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Seeded, error) {
		issueQuery := fmt.Sprintf(`
			INSERT INTO issues(issue_id, audit_id, ent_id, issue_description, evidence, clarification_qn, status)
			VALUES ($1, $2, $3, $4, $5, $6, '%s')
			RETURNING %s`, StatusOpen, issueColumns)

		issue, err := repository.QueryOne(ctx, tx, issueQuery, []any{
			uuid.New(), cmd.AuditID, cmd.EntID, cmd.IssueDescription, evidence, cmd.ClarificationQn,
		}, scanIssue)
		if err != nil {
			return Seeded{}, fmt.Errorf("insert issue: %w", err)
		}

		convID := uuid.New()
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO conversations(conv_id, audit_id, issue_id) VALUES ($1, $2, $3)",
			convID, issue.AuditID, issue.IssueID,
		); err != nil {
			return Seeded{}, fmt.Errorf("insert conversation: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			"INSERT INTO messages(msg_id, conv_id, type, content) VALUES ($1, $2, 'ai', $3)",
			uuid.New(), convID, seedMessage,
		); err != nil {
			return Seeded{}, fmt.Errorf("insert seed message: %w", err)
		}

		return Seeded{Issue: issue, ConversationID: convID}, nil
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("issue created",
		"issue_id", seeded.Issue.IssueID,
		"audit_id", seeded.Issue.AuditID,
		"conv_id", seeded.ConversationID,
	)
	return &seeded, nil
}

func (r *repo) Find(ctx context.Context, issueID uuid.UUID) (*Issue, error) {
	q := fmt.Sprintf("SELECT %s FROM issues WHERE issue_id = $1", issueColumns)

	i, err := repository.QueryOne(ctx, r.db, q, []any{issueID}, scanIssue)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &i, nil
}

func (r *repo) ByAudit(ctx context.Context, auditID uuid.UUID) ([]Issue, error) {
	q := fmt.Sprintf(
		"SELECT %s FROM issues WHERE audit_id = $1 ORDER BY created_at",
		issueColumns,
	)

	items, err := repository.QueryMany(ctx, r.db, q, []any{auditID}, scanIssue)
	if err != nil {
		return nil, fmt.Errorf("query audit issues: %w", err)
	}
	return items, nil
}

func (r *repo) UpdateStatus(ctx context.Context, issueID uuid.UUID, status string) (*Issue, error) {
	if !validStatus(status) {
		return nil, fmt.Errorf("%w: status %q", ErrInvalid, status)
	}

	err := repository.ExecExpectOne(
		ctx, r.db,
		"UPDATE issues SET status = $2 WHERE issue_id = $1",
		issueID, status,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update issue status: %w", err)
	}

	r.logger.Info("issue status updated", "issue_id", issueID, "status", status)
	return r.Find(ctx, issueID)
}

func (r *repo) Highlights(ctx context.Context, issueID uuid.UUID) (*HighlightResult, error) {
	issue, err := r.Find(ctx, issueID)
	if err != nil {
		return nil, err
	}

	result := &HighlightResult{
		IssueID:         issue.IssueID,
		Reason:          issue.IssueDescription,
		ClarificationQn: issue.ClarificationQn,
		Highlights:      make([]Highlight, 0),
	}

	// stable output regardless of map iteration order
	docIDs := make([]uuid.UUID, 0, len(issue.Evidence))
	for id := range issue.Evidence {
		docIDs = append(docIDs, id)
	}
	sort.Slice(docIDs, func(i, j int) bool {
		return docIDs[i].String() < docIDs[j].String()
	})

	for _, docID := range docIDs {
		doc, err := r.docs.Find(ctx, docID)
		if err != nil {
			if errors.Is(err, documents.ErrNotFound) {
				r.logger.Warn("evidence references missing document", "issue_id", issueID, "document_id", docID)
				continue
			}
			return nil, err
		}

		for _, rng := range spanindex.Resolve(doc.Content, doc.ContentSpan, issue.Evidence[docID]) {
			result.Highlights = append(result.Highlights, Highlight{
				DocumentID: docID,
				Start:      rng.Start,
				End:        rng.End,
				Text:       doc.Content[rng.Start:rng.End],
			})
		}
	}

	return result, nil
}

func validateCreate(cmd CreateCommand) error {
	if cmd.AuditID == uuid.Nil {
		return fmt.Errorf("%w: audit_id is required", ErrInvalid)
	}
	if cmd.IssueDescription == "" {
		return fmt.Errorf("%w: issue_description is required", ErrInvalid)
	}
	return nil
}

func validStatus(status string) bool {
	switch status {
	case StatusOpen, StatusDocument, StatusResolved:
		return true
	}
	return false
}

func evidenceOrEmpty(evidence map[uuid.UUID][]int) map[uuid.UUID][]int {
	if evidence == nil {
		return map[uuid.UUID][]int{}
	}
	return evidence
}

func scanIssue(s repository.Scanner) (Issue, error) {
	var (
		i        Issue
		evidence []byte
	)

	err := s.Scan(
		&i.IssueID,
		&i.AuditID,
		&i.EntID,
		&i.IssueDescription,
		&evidence,
		&i.ClarificationQn,
		&i.Status,
		&i.CreatedAt,
	)
	if err != nil {
		return Issue{}, err
	}

	if err := json.Unmarshal(evidence, &i.Evidence); err != nil {
		return Issue{}, fmt.Errorf("decode evidence: %w", err)
	}
	return i, nil
}
