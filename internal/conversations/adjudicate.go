package conversations

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/gavelhq/gavel/internal/issues"
	"github.com/gavelhq/gavel/internal/lawentries"
	"github.com/gavelhq/gavel/pkg/genai"
)

func (r *repo) Adjudicate(ctx context.Context, issueID uuid.UUID) (*Adjudication, error) {
	if r.generator == nil {
		return nil, ErrUnavailable
	}

	issue, err := r.issues.Find(ctx, issueID)
	if err != nil {
		if errors.Is(err, issues.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	conv, err := r.ByIssue(ctx, issueID)
	if err != nil {
		return nil, err
	}

	highlights, err := r.issues.Highlights(ctx, issueID)
	if err != nil {
		return nil, err
	}

	transcript, err := r.Messages(ctx, conv.ConvID)
	if err != nil {
		return nil, err
	}

	var law *lawentries.Entry
	if issue.EntID != issues.SentinelEntID {
		law, err = r.laws.Find(ctx, issue.EntID)
		if err != nil {
			return nil, fmt.Errorf("fetch cited law: %w", err)
		}
	}

	prompt := buildAdjudicationPrompt(issue, law, highlights, transcript)

	verdict, err := genai.Retry(ctx, r.attempts, r.retryBase, func(ctx context.Context) (Adjudication, error) {
		parsed, err := genai.GenerateStructured[Adjudication](ctx, r.generator, prompt)
		if err != nil {
			return Adjudication{}, err
		}
		if strings.TrimSpace(parsed.AgentResponseMessage) == "" {
			return Adjudication{}, fmt.Errorf("%w: missing agent_response_message", genai.ErrInvalidResponse)
		}
		return parsed, nil
	})
	if err != nil {
		return nil, fmt.Errorf("adjudicate issue: %w", err)
	}

	if _, err := r.Append(ctx, conv.ConvID, TypeAI, verdict.AgentResponseMessage); err != nil {
		return nil, err
	}

	switch verdict.NewStatus {
	case issues.StatusDocument, issues.StatusResolved:
		if _, err := r.issues.UpdateStatus(ctx, issueID, verdict.NewStatus); err != nil {
			return nil, err
		}
	case "", issues.StatusOpen:
		// no transition
	default:
		r.logger.Warn("adjudication returned unknown status, leaving issue open",
			"issue_id", issueID, "new_status", verdict.NewStatus)
	}

	r.logger.Info("issue adjudicated", "issue_id", issueID, "new_status", verdict.NewStatus)
	return &verdict, nil
}

func buildAdjudicationPrompt(
	issue *issues.Issue,
	law *lawentries.Entry,
	highlights *issues.HighlightResult,
	transcript []Message,
) string {
	var sb strings.Builder

	sb.WriteString(`You are a compliance adjudicator reviewing a previously flagged issue
with the discussion that followed it. Decide whether the discussion resolves
the concern, requires documentation, or leaves it open.

Respond with JSON only, in the shape:
{"agent_response_message": "...", "new_status": "open|document|resolved"}

agent_response_message is your reply to the discussion. new_status is
"resolved" if the concern is addressed, "document" if it stands and must be
documented, "open" if more discussion is needed.
`)

	fmt.Fprintf(&sb, "\n## Issue\n%s\n\nClarification question: %s\nCurrent status: %s\n",
		issue.IssueDescription, issue.ClarificationQn, issue.Status)

	if law != nil {
		fmt.Fprintf(&sb, "\n## Cited law\n[ent_id=%d] %s art. %s:\n%s\n",
			law.EntID, law.BelongsTo, law.ArtNum, law.Contents)
	}

	if len(highlights.Highlights) > 0 {
		sb.WriteString("\n## Evidence from the project documents\n")
		for _, h := range highlights.Highlights {
			fmt.Fprintf(&sb, "- %q\n", h.Text)
		}
	}

	sb.WriteString("\n## Discussion transcript\n")
	for _, m := range transcript {
		fmt.Fprintf(&sb, "[%s] %s\n", m.Type, m.Content)
	}

	return sb.String()
}
