// Package auditor adjudicates one attack scenario against the cited law and
// the project's design documents, producing a reasoned judgment with evidence
// spans and a clarification question.
package auditor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gavelhq/gavel/internal/attacker"
	"github.com/gavelhq/gavel/internal/documents"
	"github.com/gavelhq/gavel/internal/lawentries"
	"github.com/gavelhq/gavel/pkg/genai"
)

// ErrUnavailable indicates no generator is configured; the pipeline degrades
// to a templated mock judgment.
var ErrUnavailable = errors.New("auditor unavailable")

// Judgment is the auditor's verdict for one scenario. Evidence maps document
// ids to the span ids supporting the reasoning; it may be empty, meaning no
// highlightable evidence.
type Judgment struct {
	Reasoning             string              `json:"reasoning"`
	Evidence              map[uuid.UUID][]int `json:"evidence"`
	ClarificationQuestion string              `json:"clarification_question"`
}

// System defines the public contract for scenario adjudication.
type System interface {
	// Audit evaluates one scenario under the standard bounded retry policy.
	// Missing law citations fail fast; exhausted retries return an error the
	// pipeline treats as a recoverable per-scenario failure.
	Audit(ctx context.Context, scenario attacker.Scenario, docs []documents.Document) (*Judgment, error)
}

type auditor struct {
	laws      lawentries.System
	generator genai.Generator
	attempts  int
	retryBase time.Duration
	logger    *slog.Logger
}

// New creates a scenario auditor. generator may be nil; Audit then returns
// ErrUnavailable.
func New(
	laws lawentries.System,
	generator genai.Generator,
	attempts int,
	retryBase time.Duration,
	logger *slog.Logger,
) System {
	return &auditor{
		laws:      laws,
		generator: generator,
		attempts:  attempts,
		retryBase: retryBase,
		logger:    logger.With("system", "auditor"),
	}
}

func (a *auditor) Audit(ctx context.Context, scenario attacker.Scenario, docs []documents.Document) (*Judgment, error) {
	if a.generator == nil {
		return nil, ErrUnavailable
	}

	// a scenario citing nonexistent entries is a data integrity failure,
	// surfaced before any generator call
	entries, err := a.laws.Fetch(ctx, scenario.LawCitations)
	if err != nil {
		return nil, fmt.Errorf("fetch cited law: %w", err)
	}

	prompt := buildPrompt(scenario, entries, docs)

	judgment, err := genai.Retry(ctx, a.attempts, a.retryBase, func(ctx context.Context) (Judgment, error) {
		parsed, err := genai.GenerateStructured[Judgment](ctx, a.generator, prompt)
		if err != nil {
			return Judgment{}, err
		}
		if strings.TrimSpace(parsed.Reasoning) == "" {
			return Judgment{}, fmt.Errorf("%w: missing reasoning", genai.ErrInvalidResponse)
		}
		return parsed, nil
	})
	if err != nil {
		return nil, fmt.Errorf("audit scenario: %w", err)
	}

	a.logger.Info("scenario adjudicated", "citations", len(scenario.LawCitations), "evidence_docs", len(judgment.Evidence))
	return &judgment, nil
}

func buildPrompt(scenario attacker.Scenario, entries []lawentries.Entry, docs []documents.Document) string {
	var sb strings.Builder

	sb.WriteString(`You are a compliance auditor. Evaluate whether the documented design,
exploited as described in the attack scenario below, violates the cited law.

Respond with JSON only, in the shape:
{"reasoning": "...", "evidence": {"<document_id>": [span, ...]},
"clarification_question": "..."}

evidence maps document ids to span numbers from the span-wrapped documents
that support your reasoning; it may be empty. clarification_question is one
question whose answer would most change your judgment.
`)

	fmt.Fprintf(&sb, "\n## Attack scenario\n%s\n\nRationale: %s\n", scenario.Description, scenario.Rationale)

	sb.WriteString("\n## Cited law\n")
	for _, e := range entries {
		fmt.Fprintf(&sb, "\n[ent_id=%d] %s art. %s:\n%s\n", e.EntID, e.BelongsTo, e.ArtNum, e.Contents)
	}

	sb.WriteString("\n## Design documents (span-wrapped)\n")
	for _, d := range docs {
		fmt.Fprintf(&sb, "\n[document_id=%s type=%s]\n%s\n", d.ID, d.Type, d.ContentSpan)
	}

	return sb.String()
}
