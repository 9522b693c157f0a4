package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	gaoconfig "github.com/JaimeStill/go-agents-orchestration/pkg/config"
	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/gavelhq/gavel/internal/documents"
)

// Execute runs the audit pipeline for a claimed audit. It builds the state
// graph (resolve → retrieve → attack → adjudicate), executes it, and
// extracts the Result from the final state. Audit status transitions are
// owned by the caller.
func Execute(
	ctx context.Context,
	rt *Runtime,
	auditID, projectID uuid.UUID,
	maxScenarios int,
	bill string,
) (*Result, error) {
	graph, err := buildGraph(rt)
	if err != nil {
		return nil, fmt.Errorf("build graph: %w", err)
	}

	initialState := state.New(nil)
	initialState = initialState.Set(KeyAuditID, auditID)
	initialState = initialState.Set(KeyProjectID, projectID)
	initialState = initialState.Set(KeyMaxScenarios, maxScenarios)
	initialState = initialState.Set(KeyBill, bill)

	finalState, err := graph.Execute(ctx, initialState)
	if err != nil {
		return nil, fmt.Errorf("execute graph: %w", err)
	}

	return extractResult(finalState, auditID, projectID)
}

func buildGraph(rt *Runtime) (state.StateGraph, error) {
	cfg := gaoconfig.DefaultGraphConfig("gavel-audit")
	cfg.Observer = "noop"

	graph, err := state.NewGraph(cfg)
	if err != nil {
		return nil, err
	}

	if err := graph.AddNode("resolve", ResolveNode(rt)); err != nil {
		return nil, err
	}

	if err := graph.AddNode("retrieve", RetrieveNode(rt)); err != nil {
		return nil, err
	}

	if err := graph.AddNode("attack", AttackNode(rt)); err != nil {
		return nil, err
	}

	if err := graph.AddNode("adjudicate", AdjudicateNode(rt)); err != nil {
		return nil, err
	}

	// the four stages are strictly sequential; each consumes the previous
	// stage's state
	if err := graph.AddEdge("resolve", "retrieve", nil); err != nil {
		return nil, err
	}

	if err := graph.AddEdge("retrieve", "attack", nil); err != nil {
		return nil, err
	}

	if err := graph.AddEdge("attack", "adjudicate", nil); err != nil {
		return nil, err
	}

	if err := graph.SetEntryPoint("resolve"); err != nil {
		return nil, err
	}

	if err := graph.SetExitPoint("adjudicate"); err != nil {
		return nil, err
	}

	return graph, nil
}

func extractResult(s state.State, auditID, projectID uuid.UUID) (*Result, error) {
	docs, err := stateValue[[]documents.Document](s, KeyDocs)
	if err != nil {
		return nil, err
	}

	entIDs, err := stateValue[[]int64](s, KeyEntIDs)
	if err != nil {
		return nil, err
	}

	refs, err := stateValue[[]IssueRef](s, KeyIssues)
	if err != nil {
		return nil, err
	}

	return &Result{
		AuditID:   auditID,
		ProjectID: projectID,
		DocIDs:    documentIDs(docs),
		EntIDs:    entIDs,
		Issues:    refs,
		Count:     len(refs),
	}, nil
}

// stateValue extracts a typed value from the workflow state bag.
func stateValue[T any](s state.State, key string) (T, error) {
	var zero T

	val, ok := s.Get(key)
	if !ok {
		return zero, fmt.Errorf("missing %s in state", key)
	}

	typed, ok := val.(T)
	if !ok {
		return zero, fmt.Errorf("%s is not %T", key, zero)
	}

	return typed, nil
}
