package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/inkwell-hq/inkwell-engine/pkg/apperrors"
	"github.com/inkwell-hq/inkwell-engine/pkg/auth"
	"github.com/inkwell-hq/inkwell-engine/pkg/models"
)

type membershipFixture struct {
	memberships *mockMembershipRepository
	audit       *mockAuditRepository
	service     MembershipService

	orgID uuid.UUID
	dept  uuid.UUID
}

func newMembershipFixture(t *testing.T) *membershipFixture {
	t.Helper()
	memberships := &mockMembershipRepository{}
	audit := &mockAuditRepository{}
	logger := zap.NewNop()
	return &membershipFixture{
		memberships: memberships,
		audit:       audit,
		service:     NewMembershipService(memberships, NewAuditService(audit, memberships, logger), logger),
		orgID:       uuid.New(),
		dept:        uuid.New(),
	}
}

func (f *membershipFixture) identity(role models.Role) auth.Identity {
	userID := uuid.New()
	if role != "" {
		f.memberships.grant(userID, f.dept, role)
	}
	return auth.Identity{UserID: userID, OrgID: f.orgID}
}

func TestMembershipService_Grant(t *testing.T) {
	ctx := context.Background()

	t.Run("manager grants a role and the grant is audited", func(t *testing.T) {
		f := newMembershipFixture(t)
		manager := f.identity(models.RoleManager)
		target := uuid.New()

		membership, err := f.service.Grant(ctx, manager, f.dept, target, models.RoleMember)
		require.NoError(t, err)
		assert.Equal(t, models.RoleMember, membership.Role)
		assert.Equal(t, f.orgID, membership.OrgID)

		roles, err := f.memberships.RolesForUser(ctx, f.orgID, target)
		require.NoError(t, err)
		assert.Equal(t, models.RoleMember, roles[f.dept])

		require.Len(t, f.audit.records, 1)
		assert.Equal(t, models.AuditActionMembershipGranted, f.audit.records[0].Action)
		assert.Equal(t, target, f.audit.records[0].ResourceID)
	})

	t.Run("grant overwrites an existing role", func(t *testing.T) {
		f := newMembershipFixture(t)
		manager := f.identity(models.RoleManager)
		target := uuid.New()

		_, err := f.service.Grant(ctx, manager, f.dept, target, models.RoleViewer)
		require.NoError(t, err)
		_, err = f.service.Grant(ctx, manager, f.dept, target, models.RoleManager)
		require.NoError(t, err)

		roles, err := f.memberships.RolesForUser(ctx, f.orgID, target)
		require.NoError(t, err)
		assert.Equal(t, models.RoleManager, roles[f.dept])
	})

	t.Run("member cannot grant", func(t *testing.T) {
		f := newMembershipFixture(t)
		member := f.identity(models.RoleMember)

		_, err := f.service.Grant(ctx, member, f.dept, uuid.New(), models.RoleViewer)
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("manager of another department cannot grant here", func(t *testing.T) {
		f := newMembershipFixture(t)
		outsider := auth.Identity{UserID: uuid.New(), OrgID: f.orgID}
		f.memberships.grant(outsider.UserID, uuid.New(), models.RoleManager)

		_, err := f.service.Grant(ctx, outsider, f.dept, uuid.New(), models.RoleViewer)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("unknown role is rejected", func(t *testing.T) {
		f := newMembershipFixture(t)
		manager := f.identity(models.RoleManager)

		_, err := f.service.Grant(ctx, manager, f.dept, uuid.New(), models.Role("admin"))
		assert.ErrorIs(t, err, apperrors.ErrInvalidRole)
	})
}

func TestMembershipService_Revoke(t *testing.T) {
	ctx := context.Background()

	t.Run("manager revokes and the revoked role is audited", func(t *testing.T) {
		f := newMembershipFixture(t)
		manager := f.identity(models.RoleManager)
		target := uuid.New()
		_, err := f.service.Grant(ctx, manager, f.dept, target, models.RoleMember)
		require.NoError(t, err)

		require.NoError(t, f.service.Revoke(ctx, manager, f.dept, target))

		roles, err := f.memberships.RolesForUser(ctx, f.orgID, target)
		require.NoError(t, err)
		assert.NotContains(t, roles, f.dept)

		require.Len(t, f.audit.records, 2)
		record := f.audit.records[1]
		assert.Equal(t, models.AuditActionMembershipRevoked, record.Action)
		assert.Equal(t, string(models.RoleMember), record.Details["role"])
	})

	t.Run("revoking an absent membership returns not found", func(t *testing.T) {
		f := newMembershipFixture(t)
		manager := f.identity(models.RoleManager)

		err := f.service.Revoke(ctx, manager, f.dept, uuid.New())
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("member cannot revoke", func(t *testing.T) {
		f := newMembershipFixture(t)
		manager := f.identity(models.RoleManager)
		member := f.identity(models.RoleMember)
		target := uuid.New()
		_, err := f.service.Grant(ctx, manager, f.dept, target, models.RoleViewer)
		require.NoError(t, err)

		err = f.service.Revoke(ctx, member, f.dept, target)
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})
}
