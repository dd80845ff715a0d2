package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/inkwell-hq/inkwell-engine/pkg/apperrors"
	"github.com/inkwell-hq/inkwell-engine/pkg/auth"
	"github.com/inkwell-hq/inkwell-engine/pkg/metrics"
	"github.com/inkwell-hq/inkwell-engine/pkg/models"
	"github.com/inkwell-hq/inkwell-engine/pkg/repositories"
	"github.com/inkwell-hq/inkwell-engine/pkg/requestid"
)

// AuditService records mutations to the append-only audit log and exposes
// read access for managers.
//
// Record is strictly best-effort: a failed audit write never surfaces to the
// caller and never rolls back the mutation it describes. Failures go to the
// operational log only.
type AuditService interface {
	// Record appends one audit record for a completed mutation. The details
	// payload must carry pre-mutation state for destructive actions, captured
	// from the resource as fetched at decision time.
	Record(ctx context.Context, ident auth.Identity, action models.AuditAction, resourceType string, resourceID uuid.UUID, details map[string]any)

	// ListByOrg returns the organization's audit records, newest first.
	// Requires a manager role in at least one department.
	ListByOrg(ctx context.Context, ident auth.Identity, limit int) ([]*models.AuditRecord, error)

	// ListByResource returns all audit records for a resource, newest first.
	// Requires a manager role in at least one department.
	ListByResource(ctx context.Context, ident auth.Identity, resourceType string, resourceID uuid.UUID) ([]*models.AuditRecord, error)
}

type auditService struct {
	repo        repositories.AuditRepository
	memberships repositories.MembershipRepository
	logger      *zap.Logger
}

// NewAuditService creates a new AuditService.
func NewAuditService(repo repositories.AuditRepository, memberships repositories.MembershipRepository, logger *zap.Logger) AuditService {
	return &auditService{
		repo:        repo,
		memberships: memberships,
		logger:      logger.Named("audit-service"),
	}
}

var _ AuditService = (*auditService)(nil)

func (s *auditService) Record(ctx context.Context, ident auth.Identity, action models.AuditAction, resourceType string, resourceID uuid.UUID, details map[string]any) {
	record := &models.AuditRecord{
		OrgID:        ident.OrgID,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		ActorID:      ident.UserID,
		Action:       action,
		RequestID:    requestid.FromContext(ctx),
		Details:      details,
	}

	if err := s.repo.Create(ctx, record); err != nil {
		// The primary operation already succeeded; only telemetry sees this.
		metrics.IncAuditWriteFailure()
		s.logger.Error("Failed to write audit record",
			zap.String("resource_type", resourceType),
			zap.String("resource_id", resourceID.String()),
			zap.String("action", string(action)),
			zap.String("actor_id", ident.UserID.String()),
			zap.Error(err))
	}
}

func (s *auditService) ListByOrg(ctx context.Context, ident auth.Identity, limit int) ([]*models.AuditRecord, error) {
	if err := s.requireManager(ctx, ident); err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = 100 // Default limit
	}

	records, err := s.repo.ListByOrg(ctx, ident.OrgID, limit)
	if err != nil {
		s.logger.Error("Failed to list audit records",
			zap.String("org_id", ident.OrgID.String()),
			zap.Error(err))
		return nil, fmt.Errorf("list audit records: %w", err)
	}

	return records, nil
}

func (s *auditService) ListByResource(ctx context.Context, ident auth.Identity, resourceType string, resourceID uuid.UUID) ([]*models.AuditRecord, error) {
	if err := s.requireManager(ctx, ident); err != nil {
		return nil, err
	}

	records, err := s.repo.ListByResource(ctx, resourceType, resourceID)
	if err != nil {
		s.logger.Error("Failed to list audit records by resource",
			zap.String("resource_type", resourceType),
			zap.String("resource_id", resourceID.String()),
			zap.Error(err))
		return nil, fmt.Errorf("list audit records: %w", err)
	}

	return records, nil
}

// requireManager gates audit reads on holding a manager role somewhere in
// the organization.
func (s *auditService) requireManager(ctx context.Context, ident auth.Identity) error {
	roles, err := s.memberships.RolesForUser(ctx, ident.OrgID, ident.UserID)
	if err != nil {
		return fmt.Errorf("resolve caller roles: %w", err)
	}
	for _, role := range roles {
		if role.AtLeast(models.RoleManager) {
			return nil
		}
	}
	return apperrors.ErrForbidden
}
