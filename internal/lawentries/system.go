package lawentries

import "context"

// System defines the public contract for law corpus operations.
type System interface {
	Handler() *Handler

	Find(ctx context.Context, entID int64) (*Entry, error)
	Create(ctx context.Context, cmd CreateCommand) (*Entry, error)

	// DenseSearch ranks entries by cosine similarity to a query vector.
	DenseSearch(ctx context.Context, vec []float32, k int, filters SearchFilters) ([]Hit, error)

	// LexicalSearch ranks entries by full-text relevance to a query string.
	LexicalSearch(ctx context.Context, query string, k int, filters SearchFilters) ([]Hit, error)

	// Search runs the hybrid query: embed, dense + lexical, rank fusion.
	Search(ctx context.Context, query string, k int, filters SearchFilters) ([]Hit, error)

	// Sample returns up to n existing entry ids, used as the degraded
	// citation list when retrieval is unavailable.
	Sample(ctx context.Context, n int) ([]int64, error)

	// Fetch returns the entries for the given ids. Any missing id is a data
	// integrity failure: it returns ErrMissingEntries rather than a partial set.
	Fetch(ctx context.Context, entIDs []int64) ([]Entry, error)

	// Context formats the cited entries as compact prompt bullets.
	Context(ctx context.Context, entIDs []int64) (string, error)
}
