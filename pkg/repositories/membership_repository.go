package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/inkwell-hq/inkwell-engine/pkg/database"
	"github.com/inkwell-hq/inkwell-engine/pkg/models"
)

// MembershipRepository provides data access for department role memberships.
type MembershipRepository interface {
	// Upsert inserts or updates a user's role in a department.
	Upsert(ctx context.Context, m *models.Membership) error

	// RolesForUser returns the caller's roles across all departments of the
	// organization, keyed by department id.
	RolesForUser(ctx context.Context, orgID, userID uuid.UUID) (map[uuid.UUID]models.Role, error)

	// Remove deletes a user's membership in a department.
	Remove(ctx context.Context, orgID, departmentID, userID uuid.UUID) error
}

type membershipRepository struct{}

// NewMembershipRepository creates a new MembershipRepository.
func NewMembershipRepository() MembershipRepository {
	return &membershipRepository{}
}

var _ MembershipRepository = (*membershipRepository)(nil)

func (r *membershipRepository) Upsert(ctx context.Context, m *models.Membership) error {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return fmt.Errorf("no tenant scope in context")
	}

	now := time.Now()
	m.UpdatedAt = now
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}

	query := `
		INSERT INTO engine_memberships (
			user_id, org_id, department_id, role, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (org_id, department_id, user_id)
		DO UPDATE SET role = EXCLUDED.role, updated_at = EXCLUDED.updated_at`

	_, err := scope.Conn.Exec(ctx, query,
		m.UserID, m.OrgID, m.DepartmentID, m.Role, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert membership: %w", err)
	}

	return nil
}

func (r *membershipRepository) RolesForUser(ctx context.Context, orgID, userID uuid.UUID) (map[uuid.UUID]models.Role, error) {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no tenant scope in context")
	}

	query := `
		SELECT department_id, role
		FROM engine_memberships
		WHERE org_id = $1 AND user_id = $2`

	rows, err := scope.Conn.Query(ctx, query, orgID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query memberships: %w", err)
	}
	defer rows.Close()

	roles := make(map[uuid.UUID]models.Role)
	for rows.Next() {
		var departmentID uuid.UUID
		var role models.Role
		if err := rows.Scan(&departmentID, &role); err != nil {
			return nil, fmt.Errorf("failed to scan membership: %w", err)
		}
		roles[departmentID] = role
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating memberships: %w", err)
	}

	return roles, nil
}

func (r *membershipRepository) Remove(ctx context.Context, orgID, departmentID, userID uuid.UUID) error {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return fmt.Errorf("no tenant scope in context")
	}

	query := `
		DELETE FROM engine_memberships
		WHERE org_id = $1 AND department_id = $2 AND user_id = $3`

	tag, err := scope.Conn.Exec(ctx, query, orgID, departmentID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove membership: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	return nil
}
