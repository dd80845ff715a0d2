package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/inkwell-hq/inkwell-engine/pkg/models"
)

// mockMembershipRepository serves role lookups from an in-memory map keyed
// by user id.
type mockMembershipRepository struct {
	roles map[uuid.UUID]map[uuid.UUID]models.Role // userID -> departmentID -> role
	err   error
}

func (m *mockMembershipRepository) Upsert(ctx context.Context, mem *models.Membership) error {
	if m.roles == nil {
		m.roles = make(map[uuid.UUID]map[uuid.UUID]models.Role)
	}
	if m.roles[mem.UserID] == nil {
		m.roles[mem.UserID] = make(map[uuid.UUID]models.Role)
	}
	m.roles[mem.UserID][mem.DepartmentID] = mem.Role
	return nil
}

func (m *mockMembershipRepository) RolesForUser(ctx context.Context, orgID, userID uuid.UUID) (map[uuid.UUID]models.Role, error) {
	if m.err != nil {
		return nil, m.err
	}
	roles := make(map[uuid.UUID]models.Role)
	for departmentID, role := range m.roles[userID] {
		roles[departmentID] = role
	}
	return roles, nil
}

func (m *mockMembershipRepository) Remove(ctx context.Context, orgID, departmentID, userID uuid.UUID) error {
	delete(m.roles[userID], departmentID)
	return nil
}

// grant is a test helper to register a role for a user.
func (m *mockMembershipRepository) grant(userID, departmentID uuid.UUID, role models.Role) {
	if m.roles == nil {
		m.roles = make(map[uuid.UUID]map[uuid.UUID]models.Role)
	}
	if m.roles[userID] == nil {
		m.roles[userID] = make(map[uuid.UUID]models.Role)
	}
	m.roles[userID][departmentID] = role
}

// mockDocumentRepository stores documents in memory.
type mockDocumentRepository struct {
	docs      map[uuid.UUID]*models.Document
	createErr error
	findErr   error
	updateErr error
}

func newMockDocumentRepository() *mockDocumentRepository {
	return &mockDocumentRepository{docs: make(map[uuid.UUID]*models.Document)}
}

func (m *mockDocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	if m.createErr != nil {
		return m.createErr
	}
	now := time.Now()
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	doc.Status = models.DocumentStatusActive
	doc.CreatedAt = now
	doc.UpdatedAt = now
	copied := *doc
	m.docs[doc.ID] = &copied
	return nil
}

func (m *mockDocumentRepository) Find(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	doc, ok := m.docs[id]
	if !ok {
		return nil, nil
	}
	copied := *doc
	return &copied, nil
}

func (m *mockDocumentRepository) ListByDepartments(ctx context.Context, orgID uuid.UUID, departmentIDs []uuid.UUID) ([]*models.Document, error) {
	members := make(map[uuid.UUID]bool, len(departmentIDs))
	for _, id := range departmentIDs {
		members[id] = true
	}
	var result []*models.Document
	for _, doc := range m.docs {
		if doc.OrgID == orgID && members[doc.DepartmentID] && doc.Status == models.DocumentStatusActive {
			copied := *doc
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (m *mockDocumentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.DocumentStatus) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	doc, ok := m.docs[id]
	if !ok {
		return fmt.Errorf("document %s not found", id)
	}
	doc.Status = status
	doc.UpdatedAt = time.Now()
	return nil
}

// mockCommentRepository stores comments in memory. SoftDelete mimics the
// real repository: the body is overwritten in place.
type mockCommentRepository struct {
	comments  map[uuid.UUID]*models.Comment
	createErr error
	findErr   error
	deleteErr error
}

func newMockCommentRepository() *mockCommentRepository {
	return &mockCommentRepository{comments: make(map[uuid.UUID]*models.Comment)}
}

func (m *mockCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if m.createErr != nil {
		return m.createErr
	}
	now := time.Now()
	if comment.ID == uuid.Nil {
		comment.ID = uuid.New()
	}
	comment.Deleted = false
	comment.CreatedAt = now
	comment.UpdatedAt = now
	copied := *comment
	m.comments[comment.ID] = &copied
	return nil
}

func (m *mockCommentRepository) Find(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	comment, ok := m.comments[id]
	if !ok {
		return nil, nil
	}
	copied := *comment
	return &copied, nil
}

func (m *mockCommentRepository) ListByDocument(ctx context.Context, documentID uuid.UUID) ([]*models.Comment, error) {
	var result []*models.Comment
	for _, c := range m.comments {
		if c.DocumentID == documentID {
			copied := *c
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (m *mockCommentRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	comment, ok := m.comments[id]
	if !ok || comment.Deleted {
		return fmt.Errorf("comment %s not found or already deleted", id)
	}
	comment.Body = models.DeletedCommentBody
	comment.Deleted = true
	comment.UpdatedAt = time.Now()
	return nil
}

// mockAuditRepository records audit entries in memory.
type mockAuditRepository struct {
	records   []*models.AuditRecord
	createErr error
}

func (m *mockAuditRepository) Create(ctx context.Context, record *models.AuditRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	record.CreatedAt = time.Now()
	copied := *record
	m.records = append(m.records, &copied)
	return nil
}

func (m *mockAuditRepository) ListByOrg(ctx context.Context, orgID uuid.UUID, limit int) ([]*models.AuditRecord, error) {
	var result []*models.AuditRecord
	for _, r := range m.records {
		if r.OrgID == orgID {
			result = append(result, r)
		}
	}
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *mockAuditRepository) ListByResource(ctx context.Context, resourceType string, resourceID uuid.UUID) ([]*models.AuditRecord, error) {
	var result []*models.AuditRecord
	for _, r := range m.records {
		if r.ResourceType == resourceType && r.ResourceID == resourceID {
			result = append(result, r)
		}
	}
	return result, nil
}
