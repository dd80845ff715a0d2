package models

import (
	"time"

	"github.com/google/uuid"
)

// AuditResourceType identifies the kind of resource an audit record refers to.
const (
	AuditResourceDocument   = "document"
	AuditResourceComment    = "comment"
	AuditResourceMembership = "membership"
)

// AuditAction tags the logical action captured by an audit record.
type AuditAction string

const (
	AuditActionCreated        AuditAction = "CREATED"
	AuditActionDeleted        AuditAction = "DELETED"
	AuditActionArchived       AuditAction = "ARCHIVED"
	AuditActionUnarchived     AuditAction = "UNARCHIVED"
	AuditActionCommentCreated AuditAction = "COMMENT_CREATED"
	AuditActionCommentDeleted AuditAction = "COMMENT_DELETED"

	AuditActionMembershipGranted AuditAction = "MEMBERSHIP_GRANTED"
	AuditActionMembershipRevoked AuditAction = "MEMBERSHIP_REVOKED"
)

// AuditRecord is an immutable, append-only record of a mutation.
// Stored in engine_audit_log. CreatedAt is assigned by the store at write
// time, never by the client. Records are never updated or deleted; the
// migration installs a trigger rejecting both.
type AuditRecord struct {
	ID           uuid.UUID      `json:"id"`
	OrgID        uuid.UUID      `json:"org_id"`
	ResourceType string         `json:"resource_type"`
	ResourceID   uuid.UUID      `json:"resource_id"`
	ActorID      uuid.UUID      `json:"actor_id"`
	Action       AuditAction    `json:"action"`
	RequestID    string         `json:"request_id,omitempty"`
	Details      map[string]any `json:"details,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}
