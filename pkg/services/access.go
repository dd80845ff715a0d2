package services

import (
	"context"
	"fmt"

	"github.com/inkwell-hq/inkwell-engine/pkg/auth"
	"github.com/inkwell-hq/inkwell-engine/pkg/permissions"
	"github.com/inkwell-hq/inkwell-engine/pkg/repositories"
)

// callerFor builds the permission evaluator's view of the caller: the
// identity plus its role memberships across the organization's departments.
// Services call this once per operation, before any permission decision, so
// the evaluation runs against a single consistent snapshot of the caller's
// roles.
func callerFor(ctx context.Context, memberships repositories.MembershipRepository, ident auth.Identity) (permissions.Caller, error) {
	roles, err := memberships.RolesForUser(ctx, ident.OrgID, ident.UserID)
	if err != nil {
		return permissions.Caller{}, fmt.Errorf("resolve caller roles: %w", err)
	}
	return permissions.Caller{
		UserID: ident.UserID,
		OrgID:  ident.OrgID,
		Roles:  roles,
	}, nil
}
