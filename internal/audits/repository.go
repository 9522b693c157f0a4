package audits

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/gavelhq/gavel/pkg/repository"
)

const auditColumns = "audit_id, project_id, status, created_at"

type repo struct {
	db     *sql.DB
	logger *slog.Logger
}

// New creates an audit repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger) System {
	return &repo{
		db:     db,
		logger: logger.With("system", "audits"),
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger)
}

func (r *repo) Create(ctx context.Context, projectID uuid.UUID) (*Audit, error) {
	q := fmt.Sprintf(`
		INSERT INTO audits(audit_id, project_id, status)
		VALUES ($1, $2, '%s')
		RETURNING %s`, StatusPending, auditColumns)

	a, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Audit, error) {
		return repository.QueryOne(ctx, tx, q, []any{uuid.New(), projectID}, scanAudit)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("audit created", "audit_id", a.AuditID, "project_id", a.ProjectID)
	return &a, nil
}

func (r *repo) Find(ctx context.Context, auditID uuid.UUID) (*Audit, error) {
	q := fmt.Sprintf("SELECT %s FROM audits WHERE audit_id = $1", auditColumns)

	a, err := repository.QueryOne(ctx, r.db, q, []any{auditID}, scanAudit)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &a, nil
}

func (r *repo) ByProject(ctx context.Context, projectID uuid.UUID) ([]Audit, error) {
	q := fmt.Sprintf(
		"SELECT %s FROM audits WHERE project_id = $1 ORDER BY created_at DESC",
		auditColumns,
	)

	items, err := repository.QueryMany(ctx, r.db, q, []any{projectID}, scanAudit)
	if err != nil {
		return nil, fmt.Errorf("query project audits: %w", err)
	}
	return items, nil
}

func (r *repo) Begin(ctx context.Context, auditID uuid.UUID) error {
	err := repository.ExecExpectOne(
		ctx, r.db,
		fmt.Sprintf("UPDATE audits SET status = '%s' WHERE audit_id = $1 AND status = '%s'", StatusInProgress, StatusPending),
		auditID,
	)
	if err == nil {
		r.logger.Info("audit claimed", "audit_id", auditID)
		return nil
	}

	if !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	// zero rows: distinguish a missing audit from a lost claim race
	if _, findErr := r.Find(ctx, auditID); findErr != nil {
		return findErr
	}
	return ErrAlreadyRunning
}

func (r *repo) Complete(ctx context.Context, auditID uuid.UUID) error {
	return r.finish(ctx, auditID, StatusCompleted)
}

func (r *repo) Fail(ctx context.Context, auditID uuid.UUID) error {
	return r.finish(ctx, auditID, StatusFailed)
}

func (r *repo) finish(ctx context.Context, auditID uuid.UUID, status string) error {
	err := repository.ExecExpectOne(
		ctx, r.db,
		fmt.Sprintf("UPDATE audits SET status = '%s' WHERE audit_id = $1 AND status = '%s'", status, StatusInProgress),
		auditID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: audit %s not in progress", ErrInvalid, auditID)
	}
	if err != nil {
		return err
	}

	r.logger.Info("audit finished", "audit_id", auditID, "status", status)
	return nil
}

func scanAudit(s repository.Scanner) (Audit, error) {
	var a Audit
	err := s.Scan(
		&a.AuditID,
		&a.ProjectID,
		&a.Status,
		&a.CreatedAt,
	)
	return a, err
}
