package models

import (
	"time"

	"github.com/google/uuid"
)

// DeletedCommentBody is the sentinel that replaces a comment's body on soft
// delete. The original text is overwritten in place and cannot be restored.
const DeletedCommentBody = "[deleted]"

// MaxCommentBodyLength is the maximum comment length enforced before mutation.
const MaxCommentBodyLength = 10_000

// Comment represents a comment on a document. Comments inherit the document's
// organization and department for access control purposes.
type Comment struct {
	ID           uuid.UUID `json:"id"`
	DocumentID   uuid.UUID `json:"document_id"`
	OrgID        uuid.UUID `json:"org_id"`
	DepartmentID uuid.UUID `json:"department_id"`
	AuthorID     uuid.UUID `json:"author_id"`
	Body         string    `json:"body"`
	Deleted      bool      `json:"deleted"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
