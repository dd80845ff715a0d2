// Package models contains domain types for inkwell-engine.
package models

import (
	"time"

	"github.com/google/uuid"
)

// DocumentStatus is the lifecycle state of a document.
type DocumentStatus string

const (
	DocumentStatusActive   DocumentStatus = "active"
	DocumentStatusArchived DocumentStatus = "archived"
	DocumentStatusDeleted  DocumentStatus = "deleted"
)

// IsValid returns true if the status is a known lifecycle state.
func (s DocumentStatus) IsValid() bool {
	switch s {
	case DocumentStatusActive, DocumentStatusArchived, DocumentStatusDeleted:
		return true
	default:
		return false
	}
}

// Document represents a document owned by a department within an organization.
// Delete is a soft status flip: the row is retained so the audit trail keeps
// a valid reference, but deleted documents are invisible to every read path.
type Document struct {
	ID           uuid.UUID      `json:"id"`
	OrgID        uuid.UUID      `json:"org_id"`
	DepartmentID uuid.UUID      `json:"department_id"`
	OwnerID      uuid.UUID      `json:"owner_id"`
	Title        string         `json:"title"`
	Body         string         `json:"body"`
	Status       DocumentStatus `json:"status"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// Maximum field lengths enforced before any mutation.
const (
	MaxDocumentTitleLength = 200
	MaxDocumentBodyLength  = 100_000
)
