package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/inkwell-hq/inkwell-engine/pkg/apperrors"
	"github.com/inkwell-hq/inkwell-engine/pkg/auth"
	"github.com/inkwell-hq/inkwell-engine/pkg/logging"
	"github.com/inkwell-hq/inkwell-engine/pkg/models"
	"github.com/inkwell-hq/inkwell-engine/pkg/permissions"
	"github.com/inkwell-hq/inkwell-engine/pkg/repositories"
)

// CommentService implements comment operations on documents. Comments
// inherit the document's department for access control; deleting a comment
// overwrites its body with the sentinel and the original text survives only
// in the audit record written at delete time.
type CommentService interface {
	Create(ctx context.Context, ident auth.Identity, docID uuid.UUID, body string) (*models.Comment, error)
	List(ctx context.Context, ident auth.Identity, docID uuid.UUID) ([]*models.Comment, error)
	Delete(ctx context.Context, ident auth.Identity, docID, commentID uuid.UUID) error
}

type commentService struct {
	comments    repositories.CommentRepository
	docs        repositories.DocumentRepository
	memberships repositories.MembershipRepository
	audit       AuditService
	logger      *zap.Logger
}

// NewCommentService creates a new CommentService.
func NewCommentService(comments repositories.CommentRepository, docs repositories.DocumentRepository, memberships repositories.MembershipRepository, audit AuditService, logger *zap.Logger) CommentService {
	return &commentService{
		comments:    comments,
		docs:        docs,
		memberships: memberships,
		audit:       audit,
		logger:      logger.Named("comment-service"),
	}
}

var _ CommentService = (*commentService)(nil)

func (s *commentService) Create(ctx context.Context, ident auth.Identity, docID uuid.UUID, body string) (*models.Comment, error) {
	doc, err := s.fetchDocument(ctx, ident, docID, permissions.ActionComment)
	if err != nil {
		return nil, err
	}

	switch doc.Status {
	case models.DocumentStatusDeleted:
		return nil, apperrors.ErrNotFound
	case models.DocumentStatusArchived:
		return nil, fmt.Errorf("%w: document is archived", apperrors.ErrConflict)
	}

	body = strings.TrimSpace(body)
	if body == "" {
		return nil, fmt.Errorf("%w: comment body is required", apperrors.ErrInvalidInput)
	}
	if len(body) > models.MaxCommentBodyLength {
		return nil, fmt.Errorf("%w: comment exceeds %d characters", apperrors.ErrInvalidInput, models.MaxCommentBodyLength)
	}

	comment := &models.Comment{
		DocumentID:   doc.ID,
		OrgID:        doc.OrgID,
		DepartmentID: doc.DepartmentID,
		AuthorID:     ident.UserID,
		Body:         body,
	}

	if err := s.comments.Create(ctx, comment); err != nil {
		s.logger.Error("Failed to create comment",
			zap.String("document_id", doc.ID.String()),
			zap.Error(err))
		return nil, fmt.Errorf("create comment: %w", err)
	}

	s.audit.Record(ctx, ident, models.AuditActionCommentCreated, models.AuditResourceComment, comment.ID, map[string]any{
		"document_id": doc.ID.String(),
		"body":        logging.SanitizeBody(comment.Body),
	})

	return comment, nil
}

func (s *commentService) List(ctx context.Context, ident auth.Identity, docID uuid.UUID) ([]*models.Comment, error) {
	doc, err := s.fetchDocument(ctx, ident, docID, permissions.ActionRead)
	if err != nil {
		return nil, err
	}

	// Comments on an archived or deleted document are as invisible as the
	// document itself.
	if doc.Status != models.DocumentStatusActive {
		return nil, apperrors.ErrNotFound
	}

	comments, err := s.comments.ListByDocument(ctx, doc.ID)
	if err != nil {
		s.logger.Error("Failed to list comments",
			zap.String("document_id", doc.ID.String()),
			zap.Error(err))
		return nil, fmt.Errorf("list comments: %w", err)
	}

	return comments, nil
}

func (s *commentService) Delete(ctx context.Context, ident auth.Identity, docID, commentID uuid.UUID) error {
	caller, err := callerFor(ctx, s.memberships, ident)
	if err != nil {
		return err
	}

	doc, err := s.docs.Find(ctx, docID)
	if err != nil {
		s.logger.Error("Failed to fetch document",
			zap.String("document_id", docID.String()),
			zap.Error(err))
		return fmt.Errorf("fetch document: %w", err)
	}
	// A deleted parent hides everything under it, comments included.
	// Archived parents still accept comment deletes: the comment is the
	// mutated resource, and moderating an archived thread is legitimate.
	if doc == nil || doc.OrgID != ident.OrgID || doc.Status == models.DocumentStatusDeleted {
		return apperrors.ErrNotFound
	}

	comment, err := s.comments.Find(ctx, commentID)
	if err != nil {
		s.logger.Error("Failed to fetch comment",
			zap.String("comment_id", commentID.String()),
			zap.Error(err))
		return fmt.Errorf("fetch comment: %w", err)
	}
	// A comment under a different document than the URL names is treated as
	// absent, same as a miss.
	if comment == nil || comment.DocumentID != docID {
		return apperrors.ErrNotFound
	}

	target := permissions.Resource{
		OrgID:        comment.OrgID,
		DepartmentID: comment.DepartmentID,
		OwnerID:      comment.AuthorID,
	}
	if err := permissions.Evaluate(caller, target, permissions.ActionDelete).Err(); err != nil {
		return err
	}

	if comment.Deleted {
		return fmt.Errorf("%w: comment is already deleted", apperrors.ErrConflict)
	}

	// Pre-delete state: this is the only place the original text survives,
	// so it is redacted but never truncated.
	details := map[string]any{
		"document_id": comment.DocumentID.String(),
		"author_id":   comment.AuthorID.String(),
		"body":        logging.RedactBody(comment.Body),
	}

	if err := s.comments.SoftDelete(ctx, comment.ID); err != nil {
		s.logger.Error("Failed to delete comment",
			zap.String("comment_id", comment.ID.String()),
			zap.Error(err))
		return fmt.Errorf("delete comment: %w", err)
	}

	s.audit.Record(ctx, ident, models.AuditActionCommentDeleted, models.AuditResourceComment, comment.ID, details)

	return nil
}

// fetchDocument fetches the parent document and evaluates the caller's
// permission for the given action, with the same uniform not-found behavior
// as the document service.
func (s *commentService) fetchDocument(ctx context.Context, ident auth.Identity, docID uuid.UUID, action permissions.Action) (*models.Document, error) {
	caller, err := callerFor(ctx, s.memberships, ident)
	if err != nil {
		return nil, err
	}

	doc, err := s.docs.Find(ctx, docID)
	if err != nil {
		s.logger.Error("Failed to fetch document",
			zap.String("document_id", docID.String()),
			zap.Error(err))
		return nil, fmt.Errorf("fetch document: %w", err)
	}
	if doc == nil {
		return nil, apperrors.ErrNotFound
	}

	target := permissions.Resource{
		OrgID:        doc.OrgID,
		DepartmentID: doc.DepartmentID,
		OwnerID:      doc.OwnerID,
	}
	if err := permissions.Evaluate(caller, target, action).Err(); err != nil {
		return nil, err
	}

	return doc, nil
}
