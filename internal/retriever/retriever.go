package retriever

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gavelhq/gavel/internal/casestudies"
	"github.com/gavelhq/gavel/internal/documents"
	"github.com/gavelhq/gavel/internal/lawentries"
	"github.com/gavelhq/gavel/pkg/embedding"
	"github.com/gavelhq/gavel/pkg/genai"
	"github.com/gavelhq/gavel/pkg/retrieval"
)

type retriever struct {
	docs      documents.System
	laws      lawentries.System
	cases     casestudies.System
	generator genai.Generator
	embedder  embedding.Embedder
	reranker  retrieval.Reranker
	attempts  int
	retryBase time.Duration
	logger    *slog.Logger
}

// New creates a retrieval orchestrator. The reranker may be nil, in which
// case the fused order is truncated instead of reranked.
func New(
	docs documents.System,
	laws lawentries.System,
	cases casestudies.System,
	generator genai.Generator,
	embedder embedding.Embedder,
	reranker retrieval.Reranker,
	attempts int,
	retryBase time.Duration,
	logger *slog.Logger,
) System {
	return &retriever{
		docs:      docs,
		laws:      laws,
		cases:     cases,
		generator: generator,
		embedder:  embedder,
		reranker:  reranker,
		attempts:  attempts,
		retryBase: retryBase,
		logger:    logger.With("system", "retriever"),
	}
}

func (r *retriever) ExpandHyDE(ctx context.Context, query string) string {
	if r.generator == nil {
		return query
	}

	prompt := fmt.Sprintf(
		"Draft a short, plausible legal analysis paragraph that would fully answer "+
			"the following question, written in the style of statute and regulatory text. "+
			"Output the paragraph only.\n\nQuestion: %s",
		query,
	)

	draft, err := r.generator.Generate(ctx, prompt)
	if err != nil || strings.TrimSpace(draft) == "" {
		r.logger.Warn("hyde expansion failed, using raw query", "error", err)
		return query
	}
	return draft
}

func (r *retriever) RetrieveLaw(ctx context.Context, docIDs []uuid.UUID, bill string, topK int) ([]int64, error) {
	if len(docIDs) == 0 {
		return nil, ErrNoDocuments
	}
	if r.generator == nil || r.embedder == nil {
		return nil, ErrUnavailable
	}

	contents := make([]string, 0, len(docIDs))
	for _, id := range docIDs {
		doc, err := r.docs.Find(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("fetch document %s: %w", id, err)
		}
		contents = append(contents, doc.Content)
	}

	description, err := r.synthesize(ctx, contents)
	if err != nil {
		return nil, fmt.Errorf("synthesize document description: %w", err)
	}

	query := buildLawQuery(description, bill)
	hyde := r.ExpandHyDE(ctx, query)

	vecs, err := r.embedder.Embed(ctx, []string{hyde})
	if err != nil {
		return nil, fmt.Errorf("embed retrieval query: %w", err)
	}

	filters := lawentries.SearchFilters{BelongsTo: bill}

	dense, err := r.laws.DenseSearch(ctx, vecs[0], topK*2, filters)
	if err != nil {
		return nil, err
	}

	lexical, err := r.laws.LexicalSearch(ctx, description, topK*2, filters)
	if err != nil {
		return nil, err
	}

	fused := retrieval.FuseRRF(
		[][]retrieval.Candidate{lawCandidates(dense), lawCandidates(lexical)},
		retrieval.DefaultKRRF,
		topK*2,
	)

	entries := make([]lawentries.Entry, len(fused))
	texts := make([]string, len(fused))
	for i, c := range fused {
		entries[i] = c.Payload.(lawentries.Entry)
		texts[i] = entries[i].Contents
	}

	order := r.rank(ctx, query, texts, topK)

	entIDs := make([]int64, 0, len(order))
	for _, idx := range order {
		entIDs = append(entIDs, entries[idx].EntID)
	}

	r.logger.Info("law retrieval complete", "documents", len(docIDs), "citations", len(entIDs))
	return entIDs, nil
}

func (r *retriever) RetrieveCaseContext(ctx context.Context, snippet string, topK int) string {
	if r.cases == nil || r.embedder == nil {
		return NoExtraContext
	}

	hyde := r.ExpandHyDE(ctx, snippet)

	inputs := []string{snippet}
	if hyde != snippet {
		inputs = append(inputs, hyde)
	}

	vecs, err := r.embedder.Embed(ctx, inputs)
	if err != nil {
		r.logger.Warn("case context embedding failed", "error", err)
		return NoExtraContext
	}

	lists := make([][]retrieval.Candidate, 0, 3)
	for _, vec := range vecs {
		hits, err := r.cases.DenseSearch(ctx, vec, topK*2)
		if err != nil {
			r.logger.Warn("case dense search failed", "error", err)
			continue
		}
		lists = append(lists, caseCandidates(hits))
	}

	if lexical, err := r.cases.LexicalSearch(ctx, snippet, topK*2); err == nil {
		lists = append(lists, caseCandidates(lexical))
	} else {
		r.logger.Warn("case lexical search failed", "error", err)
	}

	fused := retrieval.FuseRRF(lists, retrieval.DefaultKRRF, topK*2)
	if len(fused) == 0 {
		return NoExtraContext
	}

	chunks := make([]casestudies.Chunk, len(fused))
	texts := make([]string, len(fused))
	for i, c := range fused {
		chunks[i] = c.Payload.(casestudies.Chunk)
		texts[i] = chunks[i].Text
	}

	order := r.rank(ctx, snippet, texts, topK)

	blocks := make([]string, 0, len(order))
	for _, idx := range order {
		blocks = append(blocks, chunks[idx].Block())
	}
	return strings.Join(blocks, "\n\n")
}

// synthesize compresses multi-document context into one retrieval query under
// the standard bounded retry policy.
func (r *retriever) synthesize(ctx context.Context, contents []string) (string, error) {
	prompt := fmt.Sprintf(
		"Summarize the following product design documents into a single coherent "+
			"description of the feature being built, its data flows, and its user-facing "+
			"behavior. Output the description only.\n\n%s",
		strings.Join(contents, "\n\n---\n\n"),
	)

	return genai.Retry(ctx, r.attempts, r.retryBase, func(ctx context.Context) (string, error) {
		out, err := r.generator.Generate(ctx, prompt)
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(out) == "" {
			return "", genai.ErrEmptyResponse
		}
		return out, nil
	})
}

// rank orders candidate texts by relevance via the reranker, degrading to
// fused-order truncation when no reranker is configured or the call fails.
func (r *retriever) rank(ctx context.Context, query string, texts []string, topK int) []int {
	if r.reranker == nil {
		return retrieval.Truncate(len(texts), topK)
	}

	order, err := r.reranker.Rerank(ctx, query, texts, topK)
	if err != nil {
		r.logger.Warn("rerank failed, truncating fused order", "error", err)
		return retrieval.Truncate(len(texts), topK)
	}
	return order
}

func buildLawQuery(description, bill string) string {
	scope := "any applicable law"
	if bill != "" && bill != "All" {
		scope = bill
	}
	return fmt.Sprintf(
		"Which legal articles of %s are relevant to the following feature?\n\n%s",
		scope, description,
	)
}

func lawCandidates(hits []lawentries.Hit) []retrieval.Candidate {
	out := make([]retrieval.Candidate, len(hits))
	for i, h := range hits {
		out[i] = retrieval.Candidate{
			Key:     fmt.Sprintf("%d", h.Entry.EntID),
			Score:   h.Score,
			Payload: h.Entry,
		}
	}
	return out
}

func caseCandidates(hits []casestudies.Hit) []retrieval.Candidate {
	out := make([]retrieval.Candidate, len(hits))
	for i, h := range hits {
		out[i] = retrieval.Candidate{
			Key:     fmt.Sprintf("%s:%d", h.Chunk.DocRef, h.Chunk.ChunkID),
			Score:   h.Score,
			Payload: h.Chunk,
		}
	}
	return out
}
