package documents

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/gavelhq/gavel/pkg/pagination"
	"github.com/gavelhq/gavel/pkg/query"
	"github.com/gavelhq/gavel/pkg/repository"
	"github.com/gavelhq/gavel/pkg/spanindex"
)

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a document repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "documents"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Document], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Content")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	docs, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanDocument)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}

	result := pagination.NewPageResult(docs, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Document, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	d, err := repository.QueryOne(ctx, r.db, q, args, scanDocument)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &d, nil
}

// Create appends a new document version. The span-wrapped content and the
// next version number for (project, type) are computed inside the insert
// transaction so concurrent appends cannot claim the same version.
func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Document, error) {
	if cmd.ProjectID == uuid.Nil {
		return nil, fmt.Errorf("%w: project_id required", ErrInvalid)
	}
	if !ValidType(cmd.Type) {
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalid, cmd.Type)
	}
	if cmd.Content == "" {
		return nil, fmt.Errorf("%w: content required", ErrInvalid)
	}

	q := `
		INSERT INTO documents(id, project_id, type, content, content_span, version)
		VALUES (
			$1, $2, $3, $4, $5,
			COALESCE((SELECT MAX(version) FROM documents WHERE project_id = $2 AND type = $3), 0) + 1
		)
		RETURNING id, project_id, type, content, content_span, version, created_at`

	args := []any{
		uuid.New(),
		cmd.ProjectID,
		cmd.Type,
		cmd.Content,
		spanindex.Encode(cmd.Content),
	}

	d, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Document, error) {
		return repository.QueryOne(ctx, tx, q, args, scanDocument)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("document created", "id", d.ID, "project_id", d.ProjectID, "type", d.Type, "version", d.Version)
	return &d, nil
}

func (r *repo) ByProject(ctx context.Context, projectID uuid.UUID) ([]Document, error) {
	q := `
		SELECT DISTINCT ON (type)
			id, project_id, type, content, content_span, version, created_at
		FROM documents
		WHERE project_id = $1
		ORDER BY type, version DESC`

	docs, err := repository.QueryMany(ctx, r.db, q, []any{projectID}, scanDocument)
	if err != nil {
		return nil, fmt.Errorf("query project documents: %w", err)
	}
	return docs, nil
}

func (r *repo) LatestByType(ctx context.Context, projectID uuid.UUID, docType string) (*Document, error) {
	q := `
		SELECT id, project_id, type, content, content_span, version, created_at
		FROM documents
		WHERE project_id = $1 AND type = $2
		ORDER BY version DESC
		LIMIT 1`

	d, err := repository.QueryOne(ctx, r.db, q, []any{projectID, docType}, scanDocument)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &d, nil
}
