// Package repositories provides data access over tenant-scoped pgx
// connections. Every method requires a TenantScope in the context; the
// scope's connection carries app.current_org_id for RLS evaluation.
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

// DocumentRepository provides data access for documents.
type DocumentRepository interface {
	// Create inserts a new document.
	Create(ctx context.Context, doc *models.Document) error

	// Find returns the document with the given id, or nil if absent.
	// Soft-deleted and archived rows are returned as-is; visibility rules
	// belong to the service layer, which needs the row to decide between
	// not-found and conflict.
	Find(ctx context.Context, id uuid.UUID) (*models.Document, error)

	// ListByDepartments returns active documents in the given departments,
	// newest first.
	ListByDepartments(ctx context.Context, orgID uuid.UUID, departmentIDs []uuid.UUID) ([]*models.Document, error)

	// UpdateStatus transitions the document lifecycle state.
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.DocumentStatus) error
}

type documentRepository struct{}

// NewDocumentRepository creates a new DocumentRepository.
func NewDocumentRepository() DocumentRepository {
	return &documentRepository{}
}

var _ DocumentRepository = (*documentRepository)(nil)

func (r *documentRepository) Create(ctx context.Context, doc *models.Document) error {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return fmt.Errorf("no tenant scope in context")
	}

	now := time.Now()
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	doc.Status = models.DocumentStatusActive
	doc.CreatedAt = now
	doc.UpdatedAt = now

	query := `
		INSERT INTO engine_documents (
			id, org_id, department_id, owner_id, title, body, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := scope.Conn.Exec(ctx, query,
		doc.ID, doc.OrgID, doc.DepartmentID, doc.OwnerID,
		doc.Title, doc.Body, doc.Status, doc.CreatedAt, doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}

	return nil
}

func (r *documentRepository) Find(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no tenant scope in context")
	}

	query := `
		SELECT id, org_id, department_id, owner_id, title, body, status, created_at, updated_at
		FROM engine_documents
		WHERE id = $1`

	row := scope.Conn.QueryRow(ctx, query, id)
	doc, err := scanDocument(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to find document: %w", err)
	}

	return doc, nil
}

func (r *documentRepository) ListByDepartments(ctx context.Context, orgID uuid.UUID, departmentIDs []uuid.UUID) ([]*models.Document, error) {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no tenant scope in context")
	}

	if len(departmentIDs) == 0 {
		return []*models.Document{}, nil
	}

	query := `
		SELECT id, org_id, department_id, owner_id, title, body, status, created_at, updated_at
		FROM engine_documents
		WHERE org_id = $1 AND department_id = ANY($2) AND status = $3
		ORDER BY created_at DESC`

	rows, err := scope.Conn.Query(ctx, query, orgID, departmentIDs, models.DocumentStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	docs := make([]*models.Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating documents: %w", err)
	}

	return docs, nil
}

func (r *documentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.DocumentStatus) error {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return fmt.Errorf("no tenant scope in context")
	}

	query := `
		UPDATE engine_documents
		SET status = $2, updated_at = now()
		WHERE id = $1`

	tag, err := scope.Conn.Exec(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("failed to update document status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("document %s not found", id)
	}

	return nil
}

func scanDocument(row pgx.Row) (*models.Document, error) {
	var doc models.Document
	err := row.Scan(
		&doc.ID,
		&doc.OrgID,
		&doc.DepartmentID,
		&doc.OwnerID,
		&doc.Title,
		&doc.Body,
		&doc.Status,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan document: %w", err)
	}
	return &doc, nil
}
