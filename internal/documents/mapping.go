package documents

import (
	"net/url"

	"github.com/gavelhq/gavel/pkg/query"
	"github.com/gavelhq/gavel/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "documents", "d").
	Project("id", "ID").
	Project("project_id", "ProjectID").
	Project("type", "Type").
	Project("content", "Content").
	Project("content_span", "ContentSpan").
	Project("version", "Version").
	Project("created_at", "CreatedAt")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for document queries.
// Nil fields are ignored; all use exact matching.
type Filters struct {
	ProjectID *string `json:"project_id,omitempty"`
	Type      *string `json:"type,omitempty"`
	Version   *int    `json:"version,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("ProjectID", f.ProjectID).
		WhereEquals("Type", f.Type).
		WhereEquals("Version", f.Version)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if p := values.Get("project_id"); p != "" {
		f.ProjectID = &p
	}
	if t := values.Get("type"); t != "" {
		f.Type = &t
	}

	return f
}

func scanDocument(s repository.Scanner) (Document, error) {
	var d Document
	err := s.Scan(
		&d.ID,
		&d.ProjectID,
		&d.Type,
		&d.Content,
		&d.ContentSpan,
		&d.Version,
		&d.CreatedAt,
	)
	return d, err
}
