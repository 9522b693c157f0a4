// Package casestudies implements the external case-study corpus: chunked
// enforcement-action excerpts retrieved as supporting context for attack
// scenario generation.
package casestudies

import (
	"fmt"

	"github.com/google/uuid"
)

// Chunk is one retrievable excerpt of an external case study.
type Chunk struct {
	ID      uuid.UUID `json:"id"`
	DocRef  string    `json:"doc_ref"`
	ChunkID int       `json:"chunk_id"`
	Law     string    `json:"law"`
	Company string    `json:"company"`
	Link    string    `json:"link"`
	Text    string    `json:"text"`
}

// CreateCommand carries the data needed to ingest a case-study chunk.
type CreateCommand struct {
	DocRef  string `json:"doc_ref"`
	ChunkID int    `json:"chunk_id"`
	Law     string `json:"law"`
	Company string `json:"company"`
	Link    string `json:"link"`
	Text    string `json:"text"`
}

// Hit is one ranked search result.
type Hit struct {
	Chunk Chunk   `json:"chunk"`
	Score float64 `json:"score"`
}

// Block formats a chunk as a prompt context block with its provenance header.
func (c Chunk) Block() string {
	return fmt.Sprintf(
		"[doc_ref=%s] [chunk=%d]\nlaw=%s, company=%s, link=%s\n%s",
		c.DocRef, c.ChunkID, c.Law, c.Company, c.Link, c.Text,
	)
}
