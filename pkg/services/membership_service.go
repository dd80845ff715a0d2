package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/inkwell-hq/inkwell-engine/pkg/apperrors"
	"github.com/inkwell-hq/inkwell-engine/pkg/auth"
	"github.com/inkwell-hq/inkwell-engine/pkg/models"
	"github.com/inkwell-hq/inkwell-engine/pkg/repositories"
)

// MembershipService manages department role assignments. Both operations
// require the caller to hold the manager role in the department being
// administered; a caller with no membership there gets the same not-found
// answer as for a department that does not exist.
type MembershipService interface {
	Grant(ctx context.Context, ident auth.Identity, departmentID, userID uuid.UUID, role models.Role) (*models.Membership, error)
	Revoke(ctx context.Context, ident auth.Identity, departmentID, userID uuid.UUID) error
}

type membershipService struct {
	memberships repositories.MembershipRepository
	audit       AuditService
	logger      *zap.Logger
}

// NewMembershipService creates a new MembershipService.
func NewMembershipService(memberships repositories.MembershipRepository, audit AuditService, logger *zap.Logger) MembershipService {
	return &membershipService{
		memberships: memberships,
		audit:       audit,
		logger:      logger.Named("membership-service"),
	}
}

var _ MembershipService = (*membershipService)(nil)

func (s *membershipService) Grant(ctx context.Context, ident auth.Identity, departmentID, userID uuid.UUID, role models.Role) (*models.Membership, error) {
	if !models.IsValidRole(role) {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrInvalidRole, role)
	}

	if err := s.requireDepartmentManager(ctx, ident, departmentID); err != nil {
		return nil, err
	}

	membership := &models.Membership{
		UserID:       userID,
		OrgID:        ident.OrgID,
		DepartmentID: departmentID,
		Role:         role,
	}

	if err := s.memberships.Upsert(ctx, membership); err != nil {
		s.logger.Error("Failed to grant membership",
			zap.String("department_id", departmentID.String()),
			zap.String("user_id", userID.String()),
			zap.Error(err))
		return nil, fmt.Errorf("grant membership: %w", err)
	}

	s.audit.Record(ctx, ident, models.AuditActionMembershipGranted, models.AuditResourceMembership, userID, map[string]any{
		"department_id": departmentID.String(),
		"role":          string(role),
	})

	return membership, nil
}

func (s *membershipService) Revoke(ctx context.Context, ident auth.Identity, departmentID, userID uuid.UUID) error {
	if err := s.requireDepartmentManager(ctx, ident, departmentID); err != nil {
		return err
	}

	targetRoles, err := s.memberships.RolesForUser(ctx, ident.OrgID, userID)
	if err != nil {
		return fmt.Errorf("resolve target roles: %w", err)
	}
	revoked, ok := targetRoles[departmentID]
	if !ok {
		return apperrors.ErrNotFound
	}

	if err := s.memberships.Remove(ctx, ident.OrgID, departmentID, userID); err != nil {
		s.logger.Error("Failed to revoke membership",
			zap.String("department_id", departmentID.String()),
			zap.String("user_id", userID.String()),
			zap.Error(err))
		return fmt.Errorf("revoke membership: %w", err)
	}

	s.audit.Record(ctx, ident, models.AuditActionMembershipRevoked, models.AuditResourceMembership, userID, map[string]any{
		"department_id": departmentID.String(),
		"role":          string(revoked),
	})

	return nil
}

// requireDepartmentManager checks the caller holds the manager role in the
// given department. No membership at all looks like a missing department.
func (s *membershipService) requireDepartmentManager(ctx context.Context, ident auth.Identity, departmentID uuid.UUID) error {
	roles, err := s.memberships.RolesForUser(ctx, ident.OrgID, ident.UserID)
	if err != nil {
		return fmt.Errorf("resolve caller roles: %w", err)
	}

	role, ok := roles[departmentID]
	if !ok {
		return apperrors.ErrNotFound
	}
	if !role.AtLeast(models.RoleManager) {
		return apperrors.ErrForbidden
	}
	return nil
}
