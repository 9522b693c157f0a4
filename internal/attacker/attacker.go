package attacker

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gavelhq/gavel/internal/documents"
	"github.com/gavelhq/gavel/internal/lawentries"
	"github.com/gavelhq/gavel/pkg/genai"
)

// System defines the public contract for attack scenario generation.
type System interface {
	// Generate produces exactly maxN scenarios for the target documents and
	// cited law. There is no retry at this layer: a contract violation is a
	// hard error and the caller owns the fallback.
	Generate(
		ctx context.Context,
		entIDs []int64,
		prd *documents.Document,
		tdd *documents.Document,
		caseContext string,
		maxN int,
	) ([]Scenario, error)
}

type attacker struct {
	laws      lawentries.System
	generator genai.Generator
	logger    *slog.Logger
}

// New creates a scenario generator. generator may be nil; Generate then
// returns ErrUnavailable so the pipeline can take its degraded path.
func New(laws lawentries.System, generator genai.Generator, logger *slog.Logger) System {
	return &attacker{
		laws:      laws,
		generator: generator,
		logger:    logger.With("system", "attacker"),
	}
}

func (a *attacker) Generate(
	ctx context.Context,
	entIDs []int64,
	prd *documents.Document,
	tdd *documents.Document,
	caseContext string,
	maxN int,
) ([]Scenario, error) {
	if a.generator == nil {
		return nil, ErrUnavailable
	}

	lawContext, err := a.laws.Context(ctx, entIDs)
	if err != nil {
		return nil, fmt.Errorf("law context: %w", err)
	}

	prompt := buildPrompt(prd, tdd, lawContext, caseContext, maxN)

	raw, err := a.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate scenarios: %w", err)
	}

	batch, err := genai.ParseStructured[Batch](raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBatch, err)
	}

	if errs := ValidateBatch(&batch, maxN); len(errs) > 0 {
		return nil, fmt.Errorf(
			"%w: %s; raw output: %s",
			ErrInvalidBatch, joinErrors(errs), genai.Preview(raw),
		)
	}

	a.logger.Info("scenario batch generated", "scenarios", len(batch.Scenarios))
	return batch.Scenarios, nil
}

func buildPrompt(prd, tdd *documents.Document, lawContext, caseContext string, maxN int) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, `You are an adversarial compliance analyst. Given the product design
documents and the applicable law below, produce exactly %d attack scenarios:
concrete ways a malicious or careless actor could use the documented design
to violate the cited law.

Respond with JSON only, in the shape:
{"scenarios": [{"description": "... (Attack vector: ...)",
"potential_violations": ["..."], "jurisdictions": ["..."],
"law_citations": [ent_id, ...], "rationale": "...", "prd_spans": [span, ...]}]}

Every description must end with a literal "(Attack vector: ...)" annotation.
law_citations must reference ent_id values from the law context.
prd_spans must reference span numbers from the span-wrapped PRD.
`, maxN)

	fmt.Fprintf(&sb, "\n## PRD (span-wrapped)\n%s\n", prd.ContentSpan)
	fmt.Fprintf(&sb, "\n## PRD (plain)\n%s\n", prd.Content)

	if tdd != nil {
		fmt.Fprintf(&sb, "\n## TDD\n%s\n", tdd.Content)
	}

	fmt.Fprintf(&sb, "\n## Applicable law\n%s\n", lawContext)

	if caseContext != "" {
		fmt.Fprintf(&sb, "\n## Related enforcement cases\n%s\n", caseContext)
	}

	return sb.String()
}

func joinErrors(errs []error) string {
	msgs := make([]string, len(errs))
	for i, err := range errs {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}
