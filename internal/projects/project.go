// Package projects implements the project domain: the root aggregate owning
// documents and audits.
package projects

import (
	"time"

	"github.com/google/uuid"
)

// Project is the root aggregate owning Documents and Audits. Created by user
// action; never auto-deleted.
type Project struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateCommand carries the data needed to register a new project.
type CreateCommand struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}
