// Package audits implements the audit aggregate: one Audit groups all issues
// found in one pipeline run. Status transitions are monotonic and guarded by
// compare-and-set updates so concurrent triggers cannot double-run.
package audits

import (
	"time"

	"github.com/google/uuid"
)

// Audit status values. Transitions are monotonic:
// pending → in_progress → {completed, failed}.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Audit groups the issues found in one pipeline run for a project.
type Audit struct {
	AuditID   uuid.UUID `json:"audit_id"`
	ProjectID uuid.UUID `json:"project_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}
