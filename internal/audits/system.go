package audits

import (
	"context"

	"github.com/google/uuid"
)

// System defines the public contract for the audit aggregate.
type System interface {
	Handler() *Handler

	Create(ctx context.Context, projectID uuid.UUID) (*Audit, error)
	Find(ctx context.Context, auditID uuid.UUID) (*Audit, error)
	ByProject(ctx context.Context, projectID uuid.UUID) ([]Audit, error)

	// Begin claims the audit for a pipeline run with a compare-and-set
	// transition pending → in_progress. A non-pending audit returns
	// ErrAlreadyRunning.
	Begin(ctx context.Context, auditID uuid.UUID) error

	// Complete and Fail apply the terminal transition, guarded on the audit
	// being in_progress so a finished audit can never move backward.
	Complete(ctx context.Context, auditID uuid.UUID) error
	Fail(ctx context.Context, auditID uuid.UUID) error
}
