package retrieval

import (
	"context"
	"fmt"
	"log/slog"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"
)

type cohereReranker struct {
	client *cohereclient.Client
	model  string
	logger *slog.Logger
}

// NewCohereReranker creates a Reranker backed by the Cohere rerank endpoint.
// Returns nil when reranking is disabled; callers treat a nil Reranker as the
// truncation fallback.
func NewCohereReranker(cfg *Config, logger *slog.Logger) Reranker {
	if !cfg.Enabled {
		return nil
	}

	return &cohereReranker{
		client: cohereclient.NewClient(cohereclient.WithToken(cfg.APIKey)),
		model:  cfg.Model,
		logger: logger.With("system", "reranker"),
	}
}

func (r *cohereReranker) Rerank(ctx context.Context, query string, docs []string, topK int) ([]int, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	if topK > len(docs) {
		topK = len(docs)
	}

	resp, err := r.client.V2.Rerank(ctx, &cohere.V2RerankRequest{
		Model:     r.model,
		Query:     query,
		Documents: docs,
		TopN:      cohere.Int(topK),
	})
	if err != nil {
		return nil, fmt.Errorf("rerank: %w", err)
	}

	indices := make([]int, 0, len(resp.Results))
	for _, result := range resp.Results {
		indices = append(indices, result.Index)
	}

	r.logger.Debug("reranked candidates", "docs", len(docs), "returned", len(indices))
	return indices, nil
}
