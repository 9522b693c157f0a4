package casestudies

import "context"

// System defines the public contract for case-study corpus operations.
type System interface {
	Handler() *Handler

	Create(ctx context.Context, cmd CreateCommand) (*Chunk, error)

	// DenseSearch ranks chunks by cosine similarity to a query vector.
	DenseSearch(ctx context.Context, vec []float32, k int) ([]Hit, error)

	// LexicalSearch ranks chunks by full-text relevance to a query string.
	LexicalSearch(ctx context.Context, query string, k int) ([]Hit, error)
}
