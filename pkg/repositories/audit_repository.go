package repositories

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/inkwell-hq/inkwell-engine/pkg/database"
	"github.com/inkwell-hq/inkwell-engine/pkg/models"
)

// AuditRepository provides data access for the append-only audit log.
// There is deliberately no Update or Delete: the table trigger rejects both,
// and this interface never grows them.
type AuditRepository interface {
	// Create inserts a new audit record. The store assigns created_at;
	// any client-supplied timestamp is ignored.
	Create(ctx context.Context, record *models.AuditRecord) error

	// ListByOrg returns audit records for an organization, newest first.
	ListByOrg(ctx context.Context, orgID uuid.UUID, limit int) ([]*models.AuditRecord, error)

	// ListByResource returns all audit records for a specific resource,
	// newest first.
	ListByResource(ctx context.Context, resourceType string, resourceID uuid.UUID) ([]*models.AuditRecord, error)
}

type auditRepository struct{}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository() AuditRepository {
	return &auditRepository{}
}

var _ AuditRepository = (*auditRepository)(nil)

func (r *auditRepository) Create(ctx context.Context, record *models.AuditRecord) error {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return fmt.Errorf("no tenant scope in context")
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	var detailsJSON []byte
	var err error
	if len(record.Details) > 0 {
		detailsJSON, err = json.Marshal(record.Details)
		if err != nil {
			return fmt.Errorf("failed to marshal details: %w", err)
		}
	}

	query := `
		INSERT INTO engine_audit_log (
			id, org_id, resource_type, resource_id, actor_id, action, request_id, details, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
		RETURNING created_at`

	err = scope.Conn.QueryRow(ctx, query,
		record.ID,
		record.OrgID,
		record.ResourceType,
		record.ResourceID,
		record.ActorID,
		record.Action,
		record.RequestID,
		detailsJSON,
	).Scan(&record.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create audit record: %w", err)
	}

	return nil
}

func (r *auditRepository) ListByOrg(ctx context.Context, orgID uuid.UUID, limit int) ([]*models.AuditRecord, error) {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no tenant scope in context")
	}

	query := `
		SELECT id, org_id, resource_type, resource_id, actor_id, action, request_id, details, created_at
		FROM engine_audit_log
		WHERE org_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := scope.Conn.Query(ctx, query, orgID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit log: %w", err)
	}
	defer rows.Close()

	return collectAuditRecords(rows)
}

func (r *auditRepository) ListByResource(ctx context.Context, resourceType string, resourceID uuid.UUID) ([]*models.AuditRecord, error) {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no tenant scope in context")
	}

	query := `
		SELECT id, org_id, resource_type, resource_id, actor_id, action, request_id, details, created_at
		FROM engine_audit_log
		WHERE resource_type = $1 AND resource_id = $2
		ORDER BY created_at DESC`

	rows, err := scope.Conn.Query(ctx, query, resourceType, resourceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit log by resource: %w", err)
	}
	defer rows.Close()

	return collectAuditRecords(rows)
}

func collectAuditRecords(rows pgx.Rows) ([]*models.AuditRecord, error) {
	records := make([]*models.AuditRecord, 0)
	for rows.Next() {
		record, err := scanAuditRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit records: %w", err)
	}
	return records, nil
}

func scanAuditRecord(row pgx.Row) (*models.AuditRecord, error) {
	var record models.AuditRecord
	var detailsJSON []byte

	err := row.Scan(
		&record.ID,
		&record.OrgID,
		&record.ResourceType,
		&record.ResourceID,
		&record.ActorID,
		&record.Action,
		&record.RequestID,
		&detailsJSON,
		&record.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan audit record: %w", err)
	}

	if len(detailsJSON) > 0 && string(detailsJSON) != "null" {
		if err := json.Unmarshal(detailsJSON, &record.Details); err != nil {
			return nil, fmt.Errorf("failed to unmarshal details: %w", err)
		}
	}

	return &record, nil
}
