// Package documents implements the design-document domain. Documents are
// immutable once written: revising content appends a new version rather than
// mutating in place, so issues raised against an audited version keep
// resolvable evidence offsets.
package documents

import (
	"time"

	"github.com/google/uuid"
)

// Document types audited by the pipeline.
const (
	TypePRD   = "PRD"
	TypeTDD   = "TDD"
	TypeOther = "other"
)

// Document is one version of a project design document. ContentSpan holds the
// span-wrapped encoding of Content used for LLM citation; it is stored
// alongside the canonical content, never instead of it.
type Document struct {
	ID          uuid.UUID `json:"id"`
	ProjectID   uuid.UUID `json:"project_id"`
	Type        string    `json:"type"`
	Content     string    `json:"content"`
	ContentSpan string    `json:"content_span"`
	Version     int       `json:"version"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateCommand carries the data needed to append a new document version.
// Version and ContentSpan are computed at insert.
type CreateCommand struct {
	ProjectID uuid.UUID `json:"project_id"`
	Type      string    `json:"type"`
	Content   string    `json:"content"`
}

// ValidType reports whether t is a recognized document type.
func ValidType(t string) bool {
	return t == TypePRD || t == TypeTDD || t == TypeOther
}
