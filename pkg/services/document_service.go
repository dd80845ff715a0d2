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

// DocumentService implements document operations. Every method follows the
// same short-circuit order: resolve caller roles, fetch, evaluate
// permission, check lifecycle, validate fields, mutate, audit. The
// permission check runs before any lifecycle check so callers without
// access never learn a document's state, and the audit detail payload is
// built from the document as fetched before the mutation.
type DocumentService interface {
	Create(ctx context.Context, ident auth.Identity, departmentID uuid.UUID, title, body string) (*models.Document, error)
	Get(ctx context.Context, ident auth.Identity, docID uuid.UUID) (*models.Document, error)
	List(ctx context.Context, ident auth.Identity) ([]*models.Document, error)
	Delete(ctx context.Context, ident auth.Identity, docID uuid.UUID) error
	Archive(ctx context.Context, ident auth.Identity, docID uuid.UUID) (*models.Document, error)
	Unarchive(ctx context.Context, ident auth.Identity, docID uuid.UUID) (*models.Document, error)
}

type documentService struct {
	docs        repositories.DocumentRepository
	memberships repositories.MembershipRepository
	audit       AuditService
	logger      *zap.Logger
}

// NewDocumentService creates a new DocumentService.
func NewDocumentService(docs repositories.DocumentRepository, memberships repositories.MembershipRepository, audit AuditService, logger *zap.Logger) DocumentService {
	return &documentService{
		docs:        docs,
		memberships: memberships,
		audit:       audit,
		logger:      logger.Named("document-service"),
	}
}

var _ DocumentService = (*documentService)(nil)

func (s *documentService) Create(ctx context.Context, ident auth.Identity, departmentID uuid.UUID, title, body string) (*models.Document, error) {
	if departmentID == uuid.Nil {
		return nil, fmt.Errorf("%w: department ID is required", apperrors.ErrInvalidInput)
	}

	caller, err := callerFor(ctx, s.memberships, ident)
	if err != nil {
		return nil, err
	}

	target := permissions.Resource{OrgID: ident.OrgID, DepartmentID: departmentID}
	if err := permissions.Evaluate(caller, target, permissions.ActionCreate).Err(); err != nil {
		return nil, err
	}

	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", apperrors.ErrInvalidInput)
	}
	if len(title) > models.MaxDocumentTitleLength {
		return nil, fmt.Errorf("%w: title exceeds %d characters", apperrors.ErrInvalidInput, models.MaxDocumentTitleLength)
	}
	if len(body) > models.MaxDocumentBodyLength {
		return nil, fmt.Errorf("%w: body exceeds %d characters", apperrors.ErrInvalidInput, models.MaxDocumentBodyLength)
	}

	doc := &models.Document{
		OrgID:        ident.OrgID,
		DepartmentID: departmentID,
		OwnerID:      ident.UserID,
		Title:        title,
		Body:         body,
	}

	if err := s.docs.Create(ctx, doc); err != nil {
		s.logger.Error("Failed to create document",
			zap.String("org_id", ident.OrgID.String()),
			zap.String("department_id", departmentID.String()),
			zap.Error(err))
		return nil, fmt.Errorf("create document: %w", err)
	}

	s.audit.Record(ctx, ident, models.AuditActionCreated, models.AuditResourceDocument, doc.ID, map[string]any{
		"title":         doc.Title,
		"department_id": doc.DepartmentID.String(),
	})

	return doc, nil
}

func (s *documentService) Get(ctx context.Context, ident auth.Identity, docID uuid.UUID) (*models.Document, error) {
	doc, err := s.fetchForAction(ctx, ident, docID, permissions.ActionRead)
	if err != nil {
		return nil, err
	}

	// Archived and deleted documents are invisible to reads; only the
	// unarchive path may observe an archived document.
	if doc.Status != models.DocumentStatusActive {
		return nil, apperrors.ErrNotFound
	}

	return doc, nil
}

func (s *documentService) List(ctx context.Context, ident auth.Identity) ([]*models.Document, error) {
	caller, err := callerFor(ctx, s.memberships, ident)
	if err != nil {
		return nil, err
	}

	departments := make([]uuid.UUID, 0, len(caller.Roles))
	for departmentID := range caller.Roles {
		departments = append(departments, departmentID)
	}

	docs, err := s.docs.ListByDepartments(ctx, ident.OrgID, departments)
	if err != nil {
		s.logger.Error("Failed to list documents",
			zap.String("org_id", ident.OrgID.String()),
			zap.Error(err))
		return nil, fmt.Errorf("list documents: %w", err)
	}

	return docs, nil
}

func (s *documentService) Delete(ctx context.Context, ident auth.Identity, docID uuid.UUID) error {
	doc, err := s.fetchForAction(ctx, ident, docID, permissions.ActionDelete)
	if err != nil {
		return err
	}

	switch doc.Status {
	case models.DocumentStatusDeleted:
		return apperrors.ErrNotFound
	case models.DocumentStatusArchived:
		return fmt.Errorf("%w: document is archived", apperrors.ErrConflict)
	}

	// Capture forensic detail before the row changes. The body is the only
	// surviving copy after the status flip, so redact without truncating.
	details := map[string]any{
		"title":         doc.Title,
		"body":          logging.RedactBody(doc.Body),
		"owner_id":      doc.OwnerID.String(),
		"department_id": doc.DepartmentID.String(),
		"status":        string(doc.Status),
	}

	if err := s.docs.UpdateStatus(ctx, doc.ID, models.DocumentStatusDeleted); err != nil {
		s.logger.Error("Failed to delete document",
			zap.String("document_id", doc.ID.String()),
			zap.Error(err))
		return fmt.Errorf("delete document: %w", err)
	}

	s.audit.Record(ctx, ident, models.AuditActionDeleted, models.AuditResourceDocument, doc.ID, details)

	return nil
}

func (s *documentService) Archive(ctx context.Context, ident auth.Identity, docID uuid.UUID) (*models.Document, error) {
	doc, err := s.fetchForAction(ctx, ident, docID, permissions.ActionArchive)
	if err != nil {
		return nil, err
	}

	switch doc.Status {
	case models.DocumentStatusDeleted:
		return nil, apperrors.ErrNotFound
	case models.DocumentStatusArchived:
		return nil, fmt.Errorf("%w: document is already archived", apperrors.ErrConflict)
	}

	if err := s.docs.UpdateStatus(ctx, doc.ID, models.DocumentStatusArchived); err != nil {
		s.logger.Error("Failed to archive document",
			zap.String("document_id", doc.ID.String()),
			zap.Error(err))
		return nil, fmt.Errorf("archive document: %w", err)
	}

	s.audit.Record(ctx, ident, models.AuditActionArchived, models.AuditResourceDocument, doc.ID, map[string]any{
		"title": doc.Title,
	})

	doc.Status = models.DocumentStatusArchived
	return doc, nil
}

func (s *documentService) Unarchive(ctx context.Context, ident auth.Identity, docID uuid.UUID) (*models.Document, error) {
	doc, err := s.fetchForAction(ctx, ident, docID, permissions.ActionUnarchive)
	if err != nil {
		return nil, err
	}

	switch doc.Status {
	case models.DocumentStatusDeleted:
		return nil, apperrors.ErrNotFound
	case models.DocumentStatusActive:
		return nil, fmt.Errorf("%w: document is not archived", apperrors.ErrConflict)
	}

	if err := s.docs.UpdateStatus(ctx, doc.ID, models.DocumentStatusActive); err != nil {
		s.logger.Error("Failed to unarchive document",
			zap.String("document_id", doc.ID.String()),
			zap.Error(err))
		return nil, fmt.Errorf("unarchive document: %w", err)
	}

	s.audit.Record(ctx, ident, models.AuditActionUnarchived, models.AuditResourceDocument, doc.ID, map[string]any{
		"title": doc.Title,
	})

	doc.Status = models.DocumentStatusActive
	return doc, nil
}

// fetchForAction fetches a document and evaluates the caller's permission
// for the given action. An absent document and a denied caller produce the
// same error, so the response never reveals whether the id exists.
func (s *documentService) fetchForAction(ctx context.Context, ident auth.Identity, docID uuid.UUID, action permissions.Action) (*models.Document, error) {
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
