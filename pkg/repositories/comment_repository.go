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

// CommentRepository provides data access for document comments.
type CommentRepository interface {
	// Create inserts a new comment.
	Create(ctx context.Context, comment *models.Comment) error

	// Find returns the comment with the given id, or nil if absent.
	Find(ctx context.Context, id uuid.UUID) (*models.Comment, error)

	// ListByDocument returns all comments on a document, oldest first.
	// Soft-deleted comments are included; their body already carries the
	// sentinel value.
	ListByDocument(ctx context.Context, documentID uuid.UUID) ([]*models.Comment, error)

	// SoftDelete overwrites the comment body with the sentinel and marks it
	// deleted. The original text is not retained anywhere in the row.
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type commentRepository struct{}

// NewCommentRepository creates a new CommentRepository.
func NewCommentRepository() CommentRepository {
	return &commentRepository{}
}

var _ CommentRepository = (*commentRepository)(nil)

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return fmt.Errorf("no tenant scope in context")
	}

	now := time.Now()
	if comment.ID == uuid.Nil {
		comment.ID = uuid.New()
	}
	comment.Deleted = false
	comment.CreatedAt = now
	comment.UpdatedAt = now

	query := `
		INSERT INTO engine_comments (
			id, document_id, org_id, department_id, author_id, body, deleted, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := scope.Conn.Exec(ctx, query,
		comment.ID, comment.DocumentID, comment.OrgID, comment.DepartmentID,
		comment.AuthorID, comment.Body, comment.Deleted, comment.CreatedAt, comment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}

	return nil
}

func (r *commentRepository) Find(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no tenant scope in context")
	}

	query := `
		SELECT id, document_id, org_id, department_id, author_id, body, deleted, created_at, updated_at
		FROM engine_comments
		WHERE id = $1`

	row := scope.Conn.QueryRow(ctx, query, id)
	comment, err := scanComment(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to find comment: %w", err)
	}

	return comment, nil
}

func (r *commentRepository) ListByDocument(ctx context.Context, documentID uuid.UUID) ([]*models.Comment, error) {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no tenant scope in context")
	}

	query := `
		SELECT id, document_id, org_id, department_id, author_id, body, deleted, created_at, updated_at
		FROM engine_comments
		WHERE document_id = $1
		ORDER BY created_at ASC`

	rows, err := scope.Conn.Query(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	comments := make([]*models.Comment, 0)
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating comments: %w", err)
	}

	return comments, nil
}

func (r *commentRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return fmt.Errorf("no tenant scope in context")
	}

	query := `
		UPDATE engine_comments
		SET body = $2, deleted = TRUE, updated_at = now()
		WHERE id = $1 AND deleted = FALSE`

	tag, err := scope.Conn.Exec(ctx, query, id, models.DeletedCommentBody)
	if err != nil {
		return fmt.Errorf("failed to soft delete comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("comment %s not found or already deleted", id)
	}

	return nil
}

func scanComment(row pgx.Row) (*models.Comment, error) {
	var c models.Comment
	err := row.Scan(
		&c.ID,
		&c.DocumentID,
		&c.OrgID,
		&c.DepartmentID,
		&c.AuthorID,
		&c.Body,
		&c.Deleted,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan comment: %w", err)
	}
	return &c, nil
}
