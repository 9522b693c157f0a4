package retrieval

import "context"

// Reranker scores documents for relevance to a query and returns their
// indices in descending relevance order, truncated to topK.
type Reranker interface {
	Rerank(ctx context.Context, query string, docs []string, topK int) ([]int, error)
}

// Truncate returns the first min(topK, n) indices in their existing order.
// It is the degraded ordering used when no reranker is available: the fused
// order already ranks by combined retrieval signal, so truncation preserves
// the best candidates.
func Truncate(n, topK int) []int {
	if topK > n {
		topK = n
	}
	if topK < 0 {
		topK = 0
	}

	idx := make([]int, topK)
	for i := range idx {
		idx[i] = i
	}
	return idx
}
