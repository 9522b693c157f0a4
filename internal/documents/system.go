package documents

import (
	"context"

	"github.com/google/uuid"

	"github.com/gavelhq/gavel/pkg/pagination"
)

// System defines the public contract for document domain operations.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Document], error)

	Find(ctx context.Context, id uuid.UUID) (*Document, error)
	Create(ctx context.Context, cmd CreateCommand) (*Document, error)

	// ByProject returns the latest version of every document type for a project.
	ByProject(ctx context.Context, projectID uuid.UUID) ([]Document, error)

	// LatestByType returns the newest version of the given type for a project.
	LatestByType(ctx context.Context, projectID uuid.UUID, docType string) (*Document, error)
}
