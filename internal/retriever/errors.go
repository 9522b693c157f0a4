package retriever

import "errors"

// Domain errors for retrieval orchestration.
var (
	ErrNoDocuments = errors.New("no documents to retrieve against")
	ErrUnavailable = errors.New("retriever unavailable")
)
