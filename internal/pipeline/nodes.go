package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/gavelhq/gavel/internal/attacker"
	"github.com/gavelhq/gavel/internal/auditor"
	"github.com/gavelhq/gavel/internal/documents"
	"github.com/gavelhq/gavel/internal/issues"
	"github.com/gavelhq/gavel/internal/lawentries"
)

// caseSnippetLimit bounds the document excerpt used for case-study retrieval.
const caseSnippetLimit = 2000

// ResolveNode returns a state node that loads the project's current
// documents. An empty project fails the run: auditing nothing is a caller
// mistake, not a degradable condition.
func ResolveNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		projectID, err := stateValue[uuid.UUID](s, KeyProjectID)
		if err != nil {
			return s, fmt.Errorf("resolve: %w", err)
		}

		docs, err := rt.Documents.ByProject(ctx, projectID)
		if err != nil {
			return s, fmt.Errorf("resolve: %w", err)
		}
		if len(docs) == 0 {
			return s, fmt.Errorf("resolve: %w", ErrNoDocuments)
		}

		prd, tdd := pickDocuments(docs)

		rt.Logger.InfoContext(
			ctx, "resolve node complete",
			"project_id", projectID,
			"documents", len(docs),
		)

		s = s.Set(KeyDocs, docs)
		s = s.Set(KeyPRD, prd)
		s = s.Set(KeyTDD, tdd)
		return s, nil
	})
}

// RetrieveNode returns a state node that surfaces relevant law citations and
// case-study context. Retrieval failure or timeout degrades to a sampled
// citation list: degraded retrieval lowers quality, it does not block.
func RetrieveNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		docs, err := stateValue[[]documents.Document](s, KeyDocs)
		if err != nil {
			return s, fmt.Errorf("retrieve: %w", err)
		}
		prd, err := stateValue[*documents.Document](s, KeyPRD)
		if err != nil {
			return s, fmt.Errorf("retrieve: %w", err)
		}
		bill, err := stateValue[string](s, KeyBill)
		if err != nil {
			return s, fmt.Errorf("retrieve: %w", err)
		}

		stageCtx, cancel := context.WithTimeout(ctx, rt.Config.StageTimeoutDuration())
		defer cancel()

		docIDs := documentIDs(docs)

		entIDs, err := rt.Retriever.RetrieveLaw(stageCtx, docIDs, bill, rt.Config.LawTopK)
		if err != nil {
			rt.Logger.WarnContext(ctx, "law retrieval degraded to sampled citations", "error", err)

			entIDs, err = rt.Laws.Sample(ctx, rt.Config.LawTopK)
			if err != nil {
				return s, fmt.Errorf("retrieve: sample law entries: %w", err)
			}
		}

		caseContext := rt.Retriever.RetrieveCaseContext(stageCtx, snippet(prd.Content), rt.Config.CaseTopK)

		rt.Logger.InfoContext(
			ctx, "retrieve node complete",
			"citations", len(entIDs),
			"case_context", caseContext != "",
		)

		s = s.Set(KeyEntIDs, entIDs)
		s = s.Set(KeyCaseContext, caseContext)
		return s, nil
	})
}

// AttackNode returns a state node that generates the attack scenario batch,
// falling back to templated scenarios citing the retrieved law ids when
// generation is unavailable, times out, or returns an empty batch.
func AttackNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		prd, err := stateValue[*documents.Document](s, KeyPRD)
		if err != nil {
			return s, fmt.Errorf("attack: %w", err)
		}
		tdd, err := stateValue[*documents.Document](s, KeyTDD)
		if err != nil {
			return s, fmt.Errorf("attack: %w", err)
		}
		entIDs, err := stateValue[[]int64](s, KeyEntIDs)
		if err != nil {
			return s, fmt.Errorf("attack: %w", err)
		}
		caseContext, err := stateValue[string](s, KeyCaseContext)
		if err != nil {
			return s, fmt.Errorf("attack: %w", err)
		}
		maxN, err := stateValue[int](s, KeyMaxScenarios)
		if err != nil {
			return s, fmt.Errorf("attack: %w", err)
		}

		stageCtx, cancel := context.WithTimeout(ctx, rt.Config.StageTimeoutDuration())
		defer cancel()

		scenarios, err := rt.Attacker.Generate(stageCtx, entIDs, prd, tdd, caseContext, maxN)
		if err != nil || len(scenarios) == 0 {
			rt.Logger.WarnContext(ctx, "scenario generation degraded to templated batch", "error", err)
			scenarios = mockScenarios(entIDs, maxN)
		}

		rt.Logger.InfoContext(ctx, "attack node complete", "scenarios", len(scenarios))

		s = s.Set(KeyScenarios, scenarios)
		return s, nil
	})
}

// AdjudicateNode returns a state node that audits each scenario with bounded
// errgroup concurrency and persists one Issue + Conversation + seed Message
// triple per usable judgment. A scenario whose adjudication exhausts its
// retries is skipped: partial success is success.
func AdjudicateNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		auditID, err := stateValue[uuid.UUID](s, KeyAuditID)
		if err != nil {
			return s, fmt.Errorf("adjudicate: %w", err)
		}
		docs, err := stateValue[[]documents.Document](s, KeyDocs)
		if err != nil {
			return s, fmt.Errorf("adjudicate: %w", err)
		}
		scenarios, err := stateValue[[]attacker.Scenario](s, KeyScenarios)
		if err != nil {
			return s, fmt.Errorf("adjudicate: %w", err)
		}

		stageCtx, cancel := context.WithTimeout(ctx, rt.Config.StageTimeoutDuration())
		defer cancel()

		refs := make([]*IssueRef, len(scenarios))

		g, gctx := errgroup.WithContext(stageCtx)
		g.SetLimit(rt.Config.Workers)

		for i, scenario := range scenarios {
			g.Go(func() error {
				if gctx.Err() != nil {
					return gctx.Err()
				}

				ref, err := adjudicateScenario(gctx, rt, auditID, scenario, docs)
				if err != nil {
					return err
				}

				refs[i] = ref
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return s, fmt.Errorf("adjudicate: %w", err)
		}

		persisted := make([]IssueRef, 0, len(refs))
		for _, ref := range refs {
			if ref != nil {
				persisted = append(persisted, *ref)
			}
		}

		rt.Logger.InfoContext(
			ctx, "adjudicate node complete",
			"scenarios", len(scenarios),
			"issues", len(persisted),
		)

		s = s.Set(KeyIssues, persisted)
		return s, nil
	})
}

// adjudicateScenario runs the auditor for one scenario and persists the
// finding. It returns (nil, nil) for a recoverable per-scenario failure.
func adjudicateScenario(
	ctx context.Context,
	rt *Runtime,
	auditID uuid.UUID,
	scenario attacker.Scenario,
	docs []documents.Document,
) (*IssueRef, error) {
	judgment, err := rt.Auditor.Audit(ctx, scenario, docs)
	switch {
	case err == nil:
	case errors.Is(err, auditor.ErrUnavailable):
		rt.Logger.WarnContext(ctx, "adjudication degraded to templated judgment")
		judgment = mockJudgment(scenario)
	case errors.Is(err, lawentries.ErrMissingEntries):
		// persisting an issue against nonexistent law is worse than failing
		return nil, err
	default:
		rt.Logger.WarnContext(ctx, "scenario adjudication failed, skipping", "error", err)
		return nil, nil
	}

	entID := issues.SentinelEntID
	if len(scenario.LawCitations) > 0 {
		entID = scenario.LawCitations[0]
	}

	seed := judgment.ClarificationQuestion
	if seed == "" {
		seed = defaultSeedPrompt
	}

	seeded, err := rt.Issues.CreateWithConversation(ctx, issues.CreateCommand{
		AuditID:          auditID,
		EntID:            entID,
		IssueDescription: judgment.Reasoning,
		Evidence:         judgment.Evidence,
		ClarificationQn:  judgment.ClarificationQuestion,
	}, seed)
	if err != nil {
		return nil, fmt.Errorf("persist issue: %w", err)
	}

	return &IssueRef{
		IssueID:         seeded.Issue.IssueID,
		ConvID:          seeded.ConversationID,
		Reason:          seeded.Issue.IssueDescription,
		ClarificationQn: seeded.Issue.ClarificationQn,
	}, nil
}

// pickDocuments selects the primary audited document and the optional
// technical design. A project without a PRD audits its first document.
func pickDocuments(docs []documents.Document) (*documents.Document, *documents.Document) {
	var prd, tdd *documents.Document
	for i := range docs {
		switch docs[i].Type {
		case documents.TypePRD:
			prd = &docs[i]
		case documents.TypeTDD:
			tdd = &docs[i]
		}
	}
	if prd == nil {
		prd = &docs[0]
	}
	return prd, tdd
}

func documentIDs(docs []documents.Document) []uuid.UUID {
	ids := make([]uuid.UUID, len(docs))
	for i := range docs {
		ids[i] = docs[i].ID
	}
	return ids
}

func snippet(content string) string {
	if len(content) > caseSnippetLimit {
		return content[:caseSnippetLimit]
	}
	return content
}
