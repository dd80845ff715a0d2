// Package permissions centralizes the allow/deny matrix for document and
// comment operations. Evaluate is a pure function of the caller, the
// resource, and the requested action, so the whole matrix is testable
// without a database or HTTP layer. The mapping from a denial to the
// caller-visible error also lives here, which keeps the existence-hiding
// policy in one place instead of scattered across handlers.
package permissions

import (
	"github.com/google/uuid"

	"github.com/inkwell-hq/inkwell-engine/pkg/apperrors"
	"github.com/inkwell-hq/inkwell-engine/pkg/models"
)

// Action is a requested operation on a resource.
type Action string

const (
	ActionRead      Action = "read"
	ActionCreate    Action = "create"
	ActionComment   Action = "comment"
	ActionDelete    Action = "delete"
	ActionArchive   Action = "archive"
	ActionUnarchive Action = "unarchive"
)

// Caller is the acting identity plus its role memberships, keyed by
// department. Built from the membership store before evaluation.
type Caller struct {
	UserID uuid.UUID
	OrgID  uuid.UUID
	Roles  map[uuid.UUID]models.Role
}

// Resource is the access-control view of a document or comment.
type Resource struct {
	OrgID        uuid.UUID
	DepartmentID uuid.UUID
	OwnerID      uuid.UUID
}

// DenyReason explains why an action was denied.
type DenyReason string

const (
	// ReasonCrossTenant: the resource belongs to another organization.
	ReasonCrossTenant DenyReason = "cross_tenant"
	// ReasonNoMembership: the caller holds no role in the resource's department.
	ReasonNoMembership DenyReason = "no_membership"
	// ReasonInsufficientRole: the caller can see the resource but fails the
	// role or ownership threshold for the action.
	ReasonInsufficientRole DenyReason = "insufficient_role"
)

// Decision is the result of evaluating an action against a resource.
type Decision struct {
	Allowed bool
	Reason  DenyReason
}

// Err maps a denial to the caller-visible error. Cross-tenant access and
// missing department membership are indistinguishable from an absent
// resource: both return ErrNotFound so denied callers cannot probe for
// existence. Only callers who already have read visibility receive
// ErrForbidden.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	switch d.Reason {
	case ReasonInsufficientRole:
		return apperrors.ErrForbidden
	default:
		return apperrors.ErrNotFound
	}
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(reason DenyReason) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// Evaluate decides whether the caller may perform action on the resource.
// Checks run in a fixed order: tenancy, then department membership, then the
// per-action role threshold.
//
// Thresholds: read requires any role; create and comment require member;
// delete requires ownership or manager; archive and unarchive require
// manager.
func Evaluate(caller Caller, res Resource, action Action) Decision {
	if caller.OrgID == uuid.Nil || caller.OrgID != res.OrgID {
		return deny(ReasonCrossTenant)
	}

	role, ok := caller.Roles[res.DepartmentID]
	if !ok || !models.IsValidRole(role) {
		return deny(ReasonNoMembership)
	}

	switch action {
	case ActionRead:
		return allow()
	case ActionCreate, ActionComment:
		if role.AtLeast(models.RoleMember) {
			return allow()
		}
	case ActionDelete:
		if caller.UserID == res.OwnerID || role.AtLeast(models.RoleManager) {
			return allow()
		}
	case ActionArchive, ActionUnarchive:
		if role.AtLeast(models.RoleManager) {
			return allow()
		}
	}

	return deny(ReasonInsufficientRole)
}
