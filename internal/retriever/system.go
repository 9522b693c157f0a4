// Package retriever orchestrates hybrid retrieval for the audit pipeline:
// multi-document synthesis, hypothetical document expansion, dense + lexical
// search with reciprocal rank fusion, and optional cross-encoder reranking.
package retriever

import (
	"context"

	"github.com/google/uuid"
)

// NoExtraContext is returned by RetrieveCaseContext when no case-study
// chunks are available, so prompts always have a well-defined context block.
const NoExtraContext = "NO_EXTRA_CONTEXT"

// System defines the public contract for retrieval orchestration.
type System interface {
	// ExpandHyDE asks the generator to draft a hypothetical document
	// answering the query; the draft replaces the query as the dense
	// retrieval surrogate. Generation failure degrades to the original
	// query, never a hard failure.
	ExpandHyDE(ctx context.Context, query string) string

	// RetrieveLaw surfaces the law entry ids relevant to a set of design
	// documents, optionally restricted to one named bill ("All" or empty
	// means unrestricted).
	RetrieveLaw(ctx context.Context, docIDs []uuid.UUID, bill string, topK int) ([]int64, error)

	// RetrieveCaseContext returns reranked case-study excerpts formatted as
	// prompt blocks for the given document snippet, or NoExtraContext.
	RetrieveCaseContext(ctx context.Context, snippet string, topK int) string
}
